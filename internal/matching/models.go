// Package matching ranks catalog products against a computed requirement.
package matching

import "blower-selector/internal/refdata"

// Category classifies how a product relates to the requirement.
type Category string

const (
	CategoryPerfect        Category = "perfect"
	CategoryOverSpecified  Category = "over_specified"
	CategoryHigherCapacity Category = "higher_capacity"
)

// Base scores per category. The stock bonus is smaller than every gap
// between categories, so availability reorders products only within a
// category, never across one.
const (
	scorePerfect        = 100
	scoreOverSpecified  = 80
	scoreHigherCapacity = 70
	stockBonus          = 5
)

// Margin constants. A product whose minimums sit above the requirement
// still counts as over-specified while the requirement reaches at least
// overspecifiedMargin of each minimum; beyond that it is only a
// higher-capacity alternative while its airflow floor stays within
// oversizeLimit of the requirement, and is excluded past that.
const (
	overspecifiedMargin = 0.8
	oversizeLimit       = 1.3
)

// Match is one ranked candidate.
type Match struct {
	Product           refdata.Product `json:"product"`
	Score             int             `json:"score"`
	Category          Category        `json:"category"`
	StockBonusApplied bool            `json:"stock_bonus_applied"`
	Rationale         string          `json:"rationale"`
}

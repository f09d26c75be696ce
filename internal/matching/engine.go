package matching

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"blower-selector/internal/common/logger"
	"blower-selector/internal/refdata"
	"blower-selector/internal/sizing"
)

// TopN is the number of matches returned to callers.
const TopN = 3

// Engine scores catalog snapshots against requirements. Stateless and safe
// for concurrent use.
type Engine struct {
	logger logger.Logger
}

// NewEngine creates a matching engine.
func NewEngine(log logger.Logger) *Engine {
	return &Engine{logger: log}
}

// Match returns the top candidates for the requirement, best first. An empty
// catalog yields an empty list, never an error.
func (e *Engine) Match(req *sizing.Requirement, snap *refdata.Snapshot) []Match {
	ranked := e.Rank(req, snap)
	if len(ranked) > TopN {
		ranked = ranked[:TopN]
	}
	return ranked
}

// Rank scores every candidate product and returns the full ordered list.
// Ordering is deterministic: descending score, then ascending price, then
// catalog order.
func (e *Engine) Rank(req *sizing.Requirement, snap *refdata.Snapshot) []Match {
	type indexed struct {
		match Match
		pos   int
	}

	var candidates []indexed
	for i, p := range snap.Products {
		m, ok := score(req, p)
		if !ok {
			continue
		}
		candidates = append(candidates, indexed{match: m, pos: i})
	}

	sort.SliceStable(candidates, func(a, b int) bool {
		if candidates[a].match.Score != candidates[b].match.Score {
			return candidates[a].match.Score > candidates[b].match.Score
		}
		if candidates[a].match.Product.Price != candidates[b].match.Product.Price {
			return candidates[a].match.Product.Price < candidates[b].match.Product.Price
		}
		return candidates[a].pos < candidates[b].pos
	})

	results := make([]Match, 0, len(candidates))
	for _, c := range candidates {
		results = append(results, c.match)
	}

	e.logger.Debug("catalog ranked",
		zap.Float64("airflow_m3_min", req.AirflowM3Min),
		zap.Float64("pressure_mbar", req.TotalPressureMbar),
		zap.Int("catalog_size", len(snap.Products)),
		zap.Int("candidates", len(results)))

	return results
}

// score classifies one product. The second return value is false when the
// product is not a candidate at all.
func score(req *sizing.Requirement, p refdata.Product) (Match, bool) {
	airflow := req.AirflowM3Min
	pressure := req.TotalPressureMbar

	// The product must be able to deliver the requirement.
	if p.AirflowMax < airflow || p.PressureMaxMbr < pressure {
		return Match{}, false
	}

	var category Category
	var base int
	var rationale string

	switch {
	case p.AirflowMin <= airflow && p.PressureMinMbr <= pressure:
		category = CategoryPerfect
		base = scorePerfect
		rationale = fmt.Sprintf("operating point %.1f m3/min at %.0f mbar sits inside both ranges",
			airflow, pressure)
	case airflow >= p.AirflowMin*overspecifiedMargin && pressure >= p.PressureMinMbr*overspecifiedMargin:
		category = CategoryOverSpecified
		base = scoreOverSpecified
		rationale = fmt.Sprintf("slightly above the duty point, turndown to %.1f m3/min required",
			airflow)
	case p.AirflowMin <= airflow*oversizeLimit:
		category = CategoryHigherCapacity
		base = scoreHigherCapacity
		rationale = "substantially larger than the duty point, workable with throttling"
	default:
		return Match{}, false
	}

	m := Match{
		Product:   p,
		Score:     base,
		Category:  category,
		Rationale: rationale,
	}
	if p.InStock() {
		m.Score += stockBonus
		m.StockBonusApplied = true
	}
	return m, true
}

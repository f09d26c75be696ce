// Package quote assembles, persists, and dispatches the final quotation
// produced from a completed conversation.
package quote

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"blower-selector/internal/common/logger"
	"blower-selector/internal/common/metrics"
	"blower-selector/internal/conversation"
	"blower-selector/internal/matching"
	"blower-selector/internal/sizing"
)

// Quote is the complete handoff structure for downstream consumers (email,
// PDF, persistence). Immutable once assembled; schema changes here are
// breaking changes for every consumer.
type Quote struct {
	ID          string               `json:"quote_id"`
	Timestamp   time.Time            `json:"timestamp"`
	Answers     conversation.Answers `json:"answers"`
	Requirement *sizing.Requirement  `json:"requirement"`
	Matches     []matching.Match     `json:"ranked_matches"`
}

// Assembler builds quotes from pipeline outputs.
type Assembler struct {
	logger logger.Logger
	now    func() time.Time
}

// NewAssembler creates a quote assembler.
func NewAssembler(log logger.Logger) *Assembler {
	return &Assembler{logger: log, now: time.Now}
}

// Assemble merges the answer set, requirement, and ranked matches into a
// quote with a fresh identifier.
func (a *Assembler) Assemble(answers conversation.Answers, req *sizing.Requirement, matches []matching.Match) *Quote {
	q := &Quote{
		ID:          newQuoteID(a.now().UTC()),
		Timestamp:   a.now().UTC(),
		Answers:     answers,
		Requirement: req,
		Matches:     matches,
	}

	topMatch := "none"
	if len(matches) > 0 {
		topMatch = string(matches[0].Category)
	}
	metrics.QuotesIssuedTotal.WithLabelValues(topMatch).Inc()

	a.logger.Info("quote assembled",
		zap.String("quote_id", q.ID),
		zap.Float64("airflow_m3_min", req.AirflowM3Min),
		zap.Float64("pressure_mbar", req.TotalPressureMbar),
		zap.Int("matches", len(matches)),
		zap.String("top_match", topMatch))

	return q
}

// newQuoteID produces identifiers like Q20260829-3FA85F64.
func newQuoteID(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("Q%s-%s", now.Format("20060102"), suffix)
}

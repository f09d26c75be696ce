package quote

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blower-selector/internal/common/logger"
	"blower-selector/internal/conversation"
	"blower-selector/internal/matching"
	"blower-selector/internal/refdata"
	"blower-selector/internal/sizing"
)

func sampleAnswers() conversation.Answers {
	op := "compression"
	app := refdata.AppWasteWater
	env := refdata.EnvNormal
	diffuser := refdata.DiffuserFineBubble
	email := "ops@plant.co.za"

	return conversation.Answers{
		OperationType:  &op,
		Location:       &conversation.Location{Name: "durban", Coastal: true},
		Application:    &app,
		Environment:    &env,
		TankConfig:     &conversation.TankConfig{Count: 1, Layout: sizing.LayoutSingle},
		TankDimensions: &conversation.TankDimensions{LengthM: 6, WidthM: 3, DepthM: 2},
		Pipe:           &sizing.Pipe{DiameterMM: 100, LengthM: 50, Bends: 4},
		Diffuser:       &diffuser,
		Email:          &email,
	}
}

func sampleRequirement() *sizing.Requirement {
	return &sizing.Requirement{
		AirflowM3Min:      4.5,
		TotalPressureMbar: 196.2,
		PowerKW:           2.94,
		Breakdown:         sizing.Breakdown{StaticMbar: 196.2},
	}
}

func sampleMatches() []matching.Match {
	return []matching.Match{
		{
			Product: refdata.Product{
				Model: "GHBH-005-36-2R6", AirflowMin: 2.4, AirflowMax: 5.3,
				PressureMinMbr: 100, PressureMaxMbr: 240, PowerKW: 3.0,
				Price: 18600, StockState: refdata.StockInStock,
			},
			Score: 105, Category: matching.CategoryPerfect, StockBonusApplied: true,
		},
	}
}

var quoteIDRe = regexp.MustCompile(`^Q\d{8}-[0-9A-F]{8}$`)

func TestAssemble(t *testing.T) {
	assembler := NewAssembler(logger.NewTestLogger(t))

	q := assembler.Assemble(sampleAnswers(), sampleRequirement(), sampleMatches())

	assert.Regexp(t, quoteIDRe, q.ID)
	assert.WithinDuration(t, time.Now().UTC(), q.Timestamp, 2*time.Second)
	assert.Equal(t, "ops@plant.co.za", *q.Answers.Email)
	assert.Equal(t, 4.5, q.Requirement.AirflowM3Min)
	require.Len(t, q.Matches, 1)
	assert.Equal(t, matching.CategoryPerfect, q.Matches[0].Category)
}

func TestAssembleIDsAreUnique(t *testing.T) {
	assembler := NewAssembler(logger.NewTestLogger(t))

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		q := assembler.Assemble(sampleAnswers(), sampleRequirement(), nil)
		require.False(t, seen[q.ID], "duplicate quote id %s", q.ID)
		seen[q.ID] = true
	}
}

func TestRenderText(t *testing.T) {
	assembler := NewAssembler(logger.NewTestLogger(t))

	t.Run("with matches", func(t *testing.T) {
		q := assembler.Assemble(sampleAnswers(), sampleRequirement(), sampleMatches())
		body := renderText(q)

		assert.Contains(t, body, q.ID)
		assert.Contains(t, body, "4.50 m3/min")
		assert.Contains(t, body, "196.2 mbar")
		assert.Contains(t, body, "GHBH-005-36-2R6")
		assert.Contains(t, body, "in stock")
	})

	t.Run("without matches", func(t *testing.T) {
		q := assembler.Assemble(sampleAnswers(), sampleRequirement(), nil)
		body := renderText(q)

		assert.Contains(t, body, "No catalog product covers this duty point")
	})

	t.Run("warnings are listed", func(t *testing.T) {
		req := sampleRequirement()
		req.Warnings = []string{"pipe velocity 28.0 m/s exceeds the recommended 20 m/s"}
		q := assembler.Assemble(sampleAnswers(), req, nil)

		assert.Contains(t, renderText(q), "velocity")
	})
}

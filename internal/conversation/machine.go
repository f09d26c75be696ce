package conversation

import (
	"fmt"

	"go.uber.org/zap"

	"blower-selector/internal/common/errors"
	"blower-selector/internal/common/logger"
	"blower-selector/internal/common/metrics"
)

// State is the caller-echoed conversation position. It is serialized out to
// the caller after every call and reconstructed from their echo, so it must
// stay self-consistent: answers exist exactly for the steps already passed.
type State struct {
	CurrentStep int     `json:"current_step"`
	Answers     Answers `json:"answers"`
	Completed   bool    `json:"completed"`
}

// NewState returns the initial state awaiting the first step.
func NewState() State {
	return State{}
}

// Prompt returns the question for the active step, or "" once complete.
func (s State) Prompt() string {
	if s.Completed || s.CurrentStep >= len(steps) {
		return ""
	}
	return steps[s.CurrentStep].Prompt
}

// ActiveStep returns the key of the awaited step, or "" once complete.
func (s State) ActiveStep() StepKey {
	if s.Completed || s.CurrentStep >= len(steps) {
		return ""
	}
	return steps[s.CurrentStep].Key
}

// Machine advances conversation state. It holds no per-conversation data and
// is safe for concurrent use.
type Machine struct {
	logger logger.Logger
}

// NewMachine creates a conversation state machine.
func NewMachine(log logger.Logger) *Machine {
	return &Machine{logger: log}
}

// Validate checks the structural integrity of caller-supplied state. A
// failure here means the calling layer corrupted or fabricated state, not
// that the user typed something wrong.
func (m *Machine) Validate(state State) error {
	if state.CurrentStep < 0 || state.CurrentStep > len(steps) {
		return errors.NewStructuralError(errors.ErrCodeStateIndexOutOfRange,
			fmt.Sprintf("current_step %d is outside 0..%d", state.CurrentStep, len(steps)), "")
	}

	if state.Completed != (state.CurrentStep == len(steps)) {
		return errors.NewStructuralError(errors.ErrCodeStateInconsistent,
			fmt.Sprintf("completed=%t contradicts current_step=%d", state.Completed, state.CurrentStep), "")
	}

	for i := range steps {
		answered := state.Answers.answered(i)
		if i < state.CurrentStep && !answered {
			return errors.NewStructuralError(errors.ErrCodeStateInconsistent,
				fmt.Sprintf("step %q precedes current_step but has no answer", steps[i].Key), "")
		}
		if i >= state.CurrentStep && answered {
			return errors.NewStructuralError(errors.ErrCodeStateInconsistent,
				fmt.Sprintf("step %q is ahead of current_step but already has an answer", steps[i].Key), "")
		}
	}

	return nil
}

// Advance applies one raw answer to the state. On a validation failure the
// returned state equals the input state, so the caller can re-prompt without
// losing earlier answers. Advancing a completed conversation is a no-op.
func (m *Machine) Advance(state State, raw string) (State, error) {
	if err := m.Validate(state); err != nil {
		m.logger.WithError(err).Warn("rejected malformed conversation state",
			zap.Int("current_step", state.CurrentStep))
		return state, err
	}

	if state.Completed {
		return state, nil
	}

	step := steps[state.CurrentStep]

	next := state
	next.Answers = state.Answers // pointer fields are written, never mutated
	if err := applyAnswer(state.CurrentStep, raw, &next.Answers); err != nil {
		metrics.ConversationStepsTotal.WithLabelValues(string(step.Key), "rejected").Inc()
		m.logger.Debug("answer rejected",
			zap.String("step", string(step.Key)),
			zap.String("reason", err.Error()))
		return state, err
	}

	next.CurrentStep++
	if next.CurrentStep == len(steps) {
		next.Completed = true
		metrics.ConversationsCompletedTotal.Inc()
	}

	metrics.ConversationStepsTotal.WithLabelValues(string(step.Key), "accepted").Inc()
	m.logger.Debug("answer accepted",
		zap.String("step", string(step.Key)),
		zap.Int("next_step", next.CurrentStep),
		zap.Bool("completed", next.Completed))

	return next, nil
}

// RequireComplete confirms the answer set is whole before sizing. The state
// machine guarantees this for states it produced; this guards direct calls.
func RequireComplete(state State) error {
	if !state.Completed {
		return errors.NewStructuralError(errors.ErrCodeAnswersIncomplete,
			fmt.Sprintf("conversation is at step %d of %d", state.CurrentStep, len(steps)), "")
	}
	for i := range steps {
		if !state.Answers.answered(i) {
			return errors.NewStructuralError(errors.ErrCodeAnswersIncomplete,
				fmt.Sprintf("step %q has no answer", steps[i].Key), "")
		}
	}
	return nil
}

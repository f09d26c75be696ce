package logger

import (
	"testing"

	"go.uber.org/zap/zaptest"
)

// NewTestLogger creates a logger that writes through t.Log, so output is
// attached to the failing test instead of being interleaved on stdout.
func NewTestLogger(t *testing.T) Logger {
	return &zapLogger{logger: zaptest.NewLogger(t)}
}

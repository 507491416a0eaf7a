package logging

import (
	"context"
	"os"

	"github.com/sirupsen/logrus"
)

// Logger wraps a *logrus.Logger with context-aware field injection, used
// by every core component (C1-C6) for its per-event log lines.
type Logger struct {
	*logrus.Logger
}

// New builds a Logger with logrus's text formatter, colorized when
// stdout is a TTY (the mattn/go-isatty + go-colorable pairing the
// teacher's gcolor package also relies on).
func New() *Logger {
	l := logrus.New()
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
	l.SetOutput(os.Stdout)
	return &Logger{Logger: l}
}

// WithTrace returns an entry pre-populated with every field TraceBuilder
// injected into ctx, so callers never have to manually thread a trace ID
// into log statements.
func (l *Logger) WithTrace(ctx context.Context) *logrus.Entry {
	return l.WithFields(Fields(ctx))
}

package server

import (
	"log"
	"os"

	"github.com/go-logr/logr"
	"github.com/go-logr/stdr"
)

// Logger interface for structured logging
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
}

// logrLogger adapts a logr.Logger to the Logger interface.
type logrLogger struct {
	log logr.Logger
}

// NewLogger wraps a logr.Logger. Debug messages are emitted at V(1).
func NewLogger(l logr.Logger) Logger {
	return &logrLogger{log: l}
}

// NewStderrLogr returns a logr.Logger writing to stderr. Stdout belongs to
// the stdio transport and must stay clean.
func NewStderrLogr(debug bool) logr.Logger {
	if debug {
		stdr.SetVerbosity(1)
	} else {
		stdr.SetVerbosity(0)
	}
	return stdr.New(log.New(os.Stderr, "", log.LstdFlags)).WithName("prometheus-mcp")
}

func (l *logrLogger) Debug(msg string, args ...interface{}) {
	l.log.V(1).Info(msg, args...)
}

func (l *logrLogger) Info(msg string, args ...interface{}) {
	l.log.Info(msg, args...)
}

func (l *logrLogger) Warn(msg string, args ...interface{}) {
	l.log.Info(msg, append([]interface{}{"level", "warning"}, args...)...)
}

func (l *logrLogger) Error(msg string, args ...interface{}) {
	l.log.Error(nil, msg, args...)
}

// noopLogger is a logger that does nothing
type noopLogger struct{}

func (l *noopLogger) Debug(msg string, args ...interface{}) {}
func (l *noopLogger) Info(msg string, args ...interface{})  {}
func (l *noopLogger) Warn(msg string, args ...interface{})  {}
func (l *noopLogger) Error(msg string, args ...interface{}) {}

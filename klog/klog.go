// Package klog provides the narrow structured-logging contract that the
// render core logs through. The windowing, asset, and scene/ECS layers
// are external collaborators (spec §1); logging is likewise treated as
// an external concern with a narrow contract, backed here by
// github.com/charmbracelet/log.
package klog

import (
	"os"

	charmlog "github.com/charmbracelet/log"
)

// Logger is the structured, leveled logging contract consumed by the
// RHI, resource manager, RDG, and passes packages.
type Logger interface {
	Debug(msg string, kv ...any)
	Info(msg string, kv ...any)
	Warn(msg string, kv ...any)
	Error(msg string, kv ...any)

	// With returns a Logger that prefixes every call with the given
	// key-value pairs (e.g. With("pass", "GBuffer")).
	With(kv ...any) Logger
}

// charmLogger adapts *charmlog.Logger to Logger.
type charmLogger struct{ l *charmlog.Logger }

// New creates a Logger writing to stderr at the given minimum level.
// level is one of "debug", "info", "warn", "error"; unrecognized
// values default to "info".
func New(level string) Logger {
	l := charmlog.NewWithOptions(os.Stderr, charmlog.Options{
		ReportTimestamp: true,
		ReportCaller:    false,
	})
	switch level {
	case "debug":
		l.SetLevel(charmlog.DebugLevel)
	case "warn":
		l.SetLevel(charmlog.WarnLevel)
	case "error":
		l.SetLevel(charmlog.ErrorLevel)
	default:
		l.SetLevel(charmlog.InfoLevel)
	}
	return &charmLogger{l}
}

// Nop returns a Logger that discards everything. Useful for tests that
// don't want log noise but still need a non-nil Logger.
func Nop() Logger { return nopLogger{} }

func (c *charmLogger) Debug(msg string, kv ...any) { c.l.Debug(msg, kv...) }
func (c *charmLogger) Info(msg string, kv ...any)  { c.l.Info(msg, kv...) }
func (c *charmLogger) Warn(msg string, kv ...any)  { c.l.Warn(msg, kv...) }
func (c *charmLogger) Error(msg string, kv ...any) { c.l.Error(msg, kv...) }

func (c *charmLogger) With(kv ...any) Logger {
	return &charmLogger{c.l.With(kv...)}
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any)  {}
func (nopLogger) Info(string, ...any)   {}
func (nopLogger) Warn(string, ...any)   {}
func (nopLogger) Error(string, ...any)  {}
func (n nopLogger) With(...any) Logger  { return n }

// Package logging wraps github.com/charmbracelet/log with the three
// structured call sites this module's core produces events for: safety
// gate rejections, coordinator state transitions, and byte-channel
// I/O errors.
//
// Never a global singleton: every constructor that needs a logger is
// handed one explicitly, so the core packages stay testable without
// stdout capture.
package logging

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
)

// Logger is the shared structured logger type, re-exported so callers
// outside this package don't need to import charmbracelet/log
// directly.
type Logger = log.Logger

// New builds a logger writing to w (os.Stderr if nil) with the given
// component name attached as a persistent field, at the given level.
func New(w io.Writer, component string, level log.Level) *Logger {
	if w == nil {
		w = os.Stderr
	}
	l := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Level:           level,
		Prefix:          component,
	})
	return l
}

// GateRejection logs a safety-gate refusal at Warn, tagging the
// rejection reason (destination/length/duty/runlength/interlock).
func GateRejection(l *Logger, dest, reason string) {
	l.Warn("safety gate rejected bitstream", "dest", dest, "reason", reason)
}

// StateTransition logs a coordinator lifecycle move at Debug.
func StateTransition(l *Logger, from, to string) {
	l.Debug("coordinator state transition", "from", from, "to", to)
}

// IOError logs a byte-channel failure at Error, tagging the owning
// component.
func IOError(l *Logger, component string, err error) {
	l.Error("i/o error", "component", component, "err", err)
}

package render

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// nopHandler discards all records. Enabled returns false so callers skip
// formatting entirely.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(newNopLogger())
}

// SetLogger configures the fallback logger for owners created without
// WithLogger. By default nothing is logged. Pass nil to restore that.
//
// Log levels used by the pipeline:
//   - [slog.LevelDebug]: per-flush statistics
//   - [slog.LevelWarn]: layout and paint failures
//   - [slog.LevelError]: panics recovered from node kinds
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)
}

// Logger returns the fallback logger. It is safe for concurrent use.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}

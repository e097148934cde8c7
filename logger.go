package glcmd

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// nopHandler is a slog.Handler that silently discards all log records.
// Enabled returns false so callers skip message formatting entirely.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

// loggerPtr stores the active logger. Accessed atomically so that
// SetLogger can be called concurrently with logging from any goroutine.
var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(newNopLogger())
}

// SetLogger configures the logger for glcmd and its sub-packages.
// By default glcmd produces no log output. Pass nil to restore silence.
//
// Log levels used by glcmd:
//   - [slog.LevelDebug]: compilation details (procedures, links, cache misses)
//   - [slog.LevelInfo]: lifecycle events (context created, state refreshed)
//   - [slog.LevelWarn]: ignored options (uniforms the program does not use)
//
// Example:
//
//	glcmd.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)
}

// Logger returns the current logger used by glcmd.
// Sub-packages (shader/, specfile/) call this to share the configuration.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}

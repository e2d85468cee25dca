package errors

import (
	"github.com/charmbracelet/log"
)

// LogHandler is an ErrorHandler that logs through charmbracelet/log.
type LogHandler struct {
	// Logger receives the records. Nil uses log.Default().
	Logger *log.Logger
	// Verbose enables detailed output including stack traces.
	Verbose bool
}

func (h *LogHandler) logger() *log.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return log.Default()
}

// HandleError logs a UsageError.
func (h *LogHandler) HandleError(err *UsageError) {
	if err == nil {
		return
	}
	keyvals := []any{"op", err.Op, "kind", err.Kind.String(), "err", err.Err}
	if h.Verbose && err.StackTrace != "" {
		keyvals = append(keyvals, "stack", err.StackTrace)
	}
	h.logger().Error("usage error", keyvals...)
}

// HandlePanic logs a PanicError.
func (h *LogHandler) HandlePanic(err *PanicError) {
	if err == nil {
		return
	}
	keyvals := []any{"value", err.Value}
	if err.Op != "" {
		keyvals = append([]any{"op", err.Op}, keyvals...)
	}
	if h.Verbose && err.StackTrace != "" {
		keyvals = append(keyvals, "stack", err.StackTrace)
	}
	h.logger().Error("panic", keyvals...)
}

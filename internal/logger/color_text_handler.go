package logger

import (
	"context"
	"io"
	"log/slog"
)

// ColorTextHandler wraps slog.TextHandler to colorize the level and,
// when present, call out the job/instance a record is about, so a
// foreground "pcron run" session reads as a stream of per-job events
// rather than undifferentiated text. Only attributes carried by the
// record itself are seen. WithAttrs and WithGroup are not overridden,
// so a logger derived through With (Named, ForJob) writes through a
// plain slog.TextHandler, without color or job/instance prefix.
type ColorTextHandler struct {
	*slog.TextHandler
}

// NewColorTextHandler creates a new ColorTextHandler writing to w.
func NewColorTextHandler(w io.Writer, opts *slog.HandlerOptions) *ColorTextHandler {
	return &ColorTextHandler{TextHandler: slog.NewTextHandler(w, opts)}
}

// Handle implements slog.Handler.
func (h *ColorTextHandler) Handle(ctx context.Context, r slog.Record) error {
	const reset = "\033[0m"
	const bold = "\033[1m"

	var job, instance string
	r.Attrs(func(a slog.Attr) bool {
		switch a.Key {
		case "job":
			job = a.Value.String()
		case "instance":
			instance = a.Value.String()
		}
		return true
	})

	prefix := levelColor(r.Level) + r.Level.String() + reset + "  "
	if job != "" {
		prefix += bold + job + reset
		if instance != "" {
			prefix += "[" + instance + "]"
		}
		prefix += ": "
	}

	r.Message = prefix + r.Message
	return h.TextHandler.Handle(ctx, r)
}

// levelColor picks an ANSI color by severity threshold rather than
// exact level, so custom levels between the named ones still render
// sensibly.
func levelColor(l slog.Level) string {
	switch {
	case l >= slog.LevelError:
		return "\033[31m" // red
	case l >= slog.LevelWarn:
		return "\033[33m" // yellow
	case l >= slog.LevelInfo:
		return "\033[32m" // green
	default:
		return "\033[36m" // cyan
	}
}

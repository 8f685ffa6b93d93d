package logger

import (
	"log/slog"
	"os"
)

// New builds the daemon's root logger. When cfg.Path is set, records
// go to a rotated file (logfile.txt once detached); otherwise they go
// to stderr with ANSI coloring, which suits running "pcron run" in the
// foreground.
func New(cfg Config, level slog.Level) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if out := cfg.Writer(); out != nil {
		return slog.New(slog.NewTextHandler(out, opts))
	}
	return slog.New(NewColorTextHandler(os.Stderr, opts))
}

// Named returns a sub-logger tagged with component=name, one per
// pcron subsystem (scheduler, mailer, runner, ...).
func Named(base *slog.Logger, name string) *slog.Logger {
	return base.With("component", name)
}

// ForJob returns a sub-logger carrying the job/instance/group
// attributes that belong on every log line about one firing, so call
// sites that log repeatedly about the same instance don't have to
// restate them.
func ForJob(base *slog.Logger, name, instanceID, group string) *slog.Logger {
	return base.With("job", name, "instance", instanceID, "group", group)
}

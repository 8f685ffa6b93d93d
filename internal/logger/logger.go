// Package logger builds pcron's structured root logger: plain
// log/slog records, colorized on a foreground terminal, rotated
// through a file once the daemon has detached from its controlling
// terminal.
package logger

import (
	"io"

	lj "gopkg.in/natefinch/lumberjack.v2"
)

// Default rotation limits, used whenever a Config leaves the
// corresponding field at its zero value.
const (
	DefaultMaxSizeMB  = 10 // MB
	DefaultMaxBackups = 3  // number of backup files
	DefaultMaxAgeDays = 7  // days
)

// Config describes where pcron's own log records go. An empty Config
// means "write to stderr with ANSI coloring", suited to running
// "pcron run" interactively; setting Path switches to a rotated file,
// the way the daemon writes logfile.txt once it has detached.
type Config struct {
	Path       string // rotated log file; empty means stderr
	MaxSizeMB  int    // megabytes before rotation (default 10)
	MaxBackups int    // number of backups to keep (default 3)
	MaxAgeDays int    // days to keep (default 7)
	Compress   bool   // gzip rotated files
}

// Writer returns a rotating io.WriteCloser for c.Path, or nil if no
// path is configured.
func (c Config) Writer() io.WriteCloser {
	if c.Path == "" {
		return nil
	}
	return &lj.Logger{
		Filename:   c.Path,
		MaxSize:    valOr(c.MaxSizeMB, DefaultMaxSizeMB),
		MaxBackups: valOr(c.MaxBackups, DefaultMaxBackups),
		MaxAge:     valOr(c.MaxAgeDays, DefaultMaxAgeDays),
		Compress:   c.Compress,
	}
}

func valOr(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

// Package pcron is a thin facade over internal/scheduler for embedding
// the daemon's main loop into another Go program, the way an operator
// might normally run cmd/pcron as a subprocess instead.
package pcron

import (
	"context"
	"log/slog"

	"github.com/gustaebel/pcron/internal/clock"
	"github.com/gustaebel/pcron/internal/history"
	"github.com/gustaebel/pcron/internal/scheduler"
)

// Clock re-exports the testable clock interface Scheduler's timing
// decisions are driven by.
type Clock = clock.Clock

// Scheduler re-exports internal/scheduler.Scheduler's public surface.
type Scheduler struct{ inner *scheduler.Scheduler }

// DumpReport re-exports the status-dump shape for embedders that want
// to poll Snapshot without reaching into internal packages.
type DumpReport = scheduler.DumpReport

// HistoryStore re-exports the optional job-run history backend.
type HistoryStore = history.Store

// Options configures a new Scheduler.
type Options struct {
	Dir     string
	History *HistoryStore
	Log     *slog.Logger
	Clock   Clock // optional; defaults to the real wall clock
}

// New builds a Scheduler rooted at opts.Dir. Call Load (or just Run,
// which loads on first entry) before expecting any job table.
func New(opts Options) *Scheduler {
	return &Scheduler{inner: scheduler.New(scheduler.Options{
		Dir:     opts.Dir,
		History: opts.History,
		Log:     opts.Log,
		Clock:   opts.Clock,
	})}
}

func OpenHistory(dsn string) (*HistoryStore, error) { return history.Open(dsn) }

func (s *Scheduler) Load()                          { s.inner.Load() }
func (s *Scheduler) Run(ctx context.Context) error   { return s.inner.Run(ctx) }
func (s *Scheduler) Snapshot() DumpReport            { return s.inner.Snapshot() }
func (s *Scheduler) ServerConfig() (addr string, ok bool) {
	cfg := s.inner.ServerConfig()
	return cfg.Addr, cfg.Enabled
}

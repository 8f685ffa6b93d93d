// Package scheduler is the scheduling and execution engine: it owns
// the job table, the per-group queues and running set, and runs the
// single-threaded main loop that decides when each template fires,
// resolves overlap conflicts, and supervises the child it starts.
package scheduler

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/gustaebel/pcron/internal/clock"
	"github.com/gustaebel/pcron/internal/crontab"
	"github.com/gustaebel/pcron/internal/env"
	"github.com/gustaebel/pcron/internal/history"
	"github.com/gustaebel/pcron/internal/job"
	"github.com/gustaebel/pcron/internal/logger"
	"github.com/gustaebel/pcron/internal/mailer"
	"github.com/gustaebel/pcron/internal/metrics"
	"github.com/gustaebel/pcron/internal/runner"
	"github.com/gustaebel/pcron/internal/signalbus"
	"github.com/gustaebel/pcron/internal/state"
)

// running is one group's active instance plus the Runner driving it.
type running struct {
	inst   *job.Instance
	runner *runner.Runner
}

// Scheduler is the core control loop. It is not safe for concurrent
// use beyond Run and the signal it listens for: everything it touches
// is owned exclusively by the goroutine running the main loop.
type Scheduler struct {
	dir     string
	jobsDir string

	templates map[string]*job.Template
	queues    map[string][]*job.Instance
	running   map[string]*running

	state   *state.Store
	history *history.Store
	mail    *mailer.Mailer
	env     *env.Env
	log     *slog.Logger
	inbox   *signalbus.Inbox
	clk     clock.Clock

	dirty        bool
	serverConfig crontab.ServerConfig

	snapMu sync.RWMutex
	snap   DumpReport
}

// Options configures a new Scheduler.
type Options struct {
	Dir     string
	History *history.Store // optional; nil disables history recording
	Log     *slog.Logger
	Clock   clock.Clock // optional; defaults to clock.Real{}
}

// New builds a Scheduler rooted at opts.Dir. It does not load the
// crontab; call Load before Run, or let Run do it on first entry.
func New(opts Options) *Scheduler {
	clk := opts.Clock
	if clk == nil {
		clk = clock.Real{}
	}
	log := opts.Log
	if log == nil {
		log = slog.Default()
	}
	return &Scheduler{
		dir:       opts.Dir,
		jobsDir:   filepath.Join(opts.Dir, "jobs"),
		templates: map[string]*job.Template{},
		queues:    map[string][]*job.Instance{},
		running:   map[string]*running{},
		state:     state.New(opts.Dir),
		history:   opts.History,
		mail:      mailer.New(logger.Named(log, "mailer")),
		env:       env.New(),
		log:       log,
		inbox:     signalbus.New(),
		clk:       clk,
	}
}

// Load reads crontab.ini, builds the job table from scratch, and
// restores next_run for templates the state store still remembers.
// Crontab errors are logged and leave the scheduler with whatever
// templates it already had (or none, on first load) rather than
// exiting: a broken crontab.ini must never take the daemon down.
func (s *Scheduler) Load() {
	res, err := crontab.Load(s.dir)
	if err != nil {
		s.log.Error("failed to load crontab, keeping previous job table", "error", err)
		return
	}

	saved := s.state.Load()
	now := s.clk.Now()

	next := map[string]*job.Template{}
	for name, cfg := range res.Jobs {
		cfg.Init = res.Init
		tpl, err := job.NewTemplate(*cfg, now)
		if err != nil {
			s.log.Error("rejecting job definition", "job", name, "error", err)
			continue
		}
		if at, ok := saved[name]; ok {
			tpl.NextRun = at
		}
		next[name] = tpl
	}
	for name, cfg := range res.Startup {
		cfg.Init = res.Init
		tpl, err := job.NewTemplate(*cfg, now)
		if err != nil {
			s.log.Error("rejecting startup job definition", "job", name, "error", err)
			continue
		}
		next[name] = tpl
	}

	removed := make(map[string]bool)
	for name := range s.templates {
		if _, ok := next[name]; !ok {
			removed[name] = true
		}
	}

	s.templates = next
	s.serverConfig = res.Server
	s.log.Info("crontab loaded", "jobs", len(res.Jobs), "startup", len(res.Startup))

	if len(removed) > 0 {
		s.drainRemoved(removed)
	}
}

// drainRemoved clears queued instances and terminates the running
// instance of any template named in removed, so a crontab reload that
// drops a job stops driving it immediately rather than letting stale
// queue entries fire against a template that no longer exists.
func (s *Scheduler) drainRemoved(removed map[string]bool) {
	for group, q := range s.queues {
		kept := q[:0]
		for _, inst := range q {
			if removed[inst.TemplateName] {
				s.log.Info("dropping queued instance for removed job", "job", inst.TemplateName, "instance", inst.ID)
				continue
			}
			kept = append(kept, inst)
		}
		s.queues[group] = kept
	}

	for group, r := range s.running {
		if !removed[r.inst.TemplateName] {
			continue
		}
		s.log.Info("terminating running instance of removed job", "job", r.inst.TemplateName, "instance", r.inst.ID)
		r.runner.RequestTermination()
		delete(s.running, group)
	}
}

// Reload re-reads the crontab and swaps in the new job table, carrying
// over persisted next_run for templates that still exist; templates no
// longer present simply disappear, with their queues drained and any
// running instance sent an asynchronous termination request.
func (s *Scheduler) Reload() {
	s.log.Info("reload requested")
	s.persistState()
	s.Load()
}

// triggerReboot enqueues every @reboot template exactly once, before
// the periodic wheel starts turning.
func (s *Scheduler) triggerReboot(now time.Time) {
	names := make([]string, 0, len(s.templates))
	for name, tpl := range s.templates {
		if tpl.Reboot {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	for _, name := range names {
		tpl := s.templates[name]
		if !tpl.Active {
			continue
		}
		inst := tpl.NewInstance(job.TriggerReboot, now)
		s.enqueue(tpl, inst)
	}
}

// Run drives the main loop until ctx is cancelled or a shutdown signal
// arrives. It always persists state and terminates running instances
// before returning.
func (s *Scheduler) Run(ctx context.Context) error {
	if len(s.templates) == 0 {
		s.Load()
	}
	if err := os.MkdirAll(s.jobsDir, 0o750); err != nil {
		return err
	}

	s.triggerReboot(s.clk.Now())

	for {
		select {
		case <-ctx.Done():
			s.shutdown()
			return ctx.Err()
		default:
		}

		now := s.clk.Now()
		s.processPendingJobs(now)
		s.processFinishedJobs(now)
		s.processWaitingJobs()
		if s.dirty {
			s.persistState()
		}
		s.publishSnapshot()

		sig := s.wait(ctx, now)
		if sig == nil {
			if ctx.Err() != nil {
				s.shutdown()
				return ctx.Err()
			}
			continue
		}
		switch sig {
		case os.Interrupt, sigTerm:
			s.shutdown()
			return nil
		case sigHup:
			s.Reload()
		case sigUsr1:
			s.dump()
		case sigChld:
			// wake-only; the next iteration's processFinishedJobs picks it up
		default:
			s.log.Info("ignoring unhandled signal", "signal", sig)
		}
	}
}

// shutdown terminates every running instance, waits for them to exit,
// and persists final state. Called on INT/TERM and on context
// cancellation; blocking here is acceptable since the daemon is
// exiting regardless.
func (s *Scheduler) shutdown() {
	s.log.Info("shutting down", "running", len(s.running))
	for group, r := range s.running {
		if err := r.runner.Terminate(); err != nil {
			s.log.Error("failed to terminate job during shutdown", "group", group, "instance", r.inst.ID, "error", err)
		}
		_ = r.runner.Finalize()
	}
	s.inbox.Stop()
	s.persistState()
}

func (s *Scheduler) persistState() {
	next := map[string]time.Time{}
	for name, tpl := range s.templates {
		if !clock.IsInfinity(tpl.NextRun) {
			next[name] = tpl.NextRun
		}
		metrics.SetNextRun(name, float64(tpl.NextRun.Unix()))
	}
	if err := s.state.Save(next); err != nil {
		s.log.Error("failed to persist state", "error", err)
	}
	s.dirty = false
}

package scheduler

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gustaebel/pcron/internal/clock"
)

// RunningJob describes one entry of the Running Set for a DumpReport.
type RunningJob struct {
	Group     string `json:"group"`
	Job       string `json:"job"`
	Instance  string `json:"instance"`
	PID       int    `json:"pid"`
	StartedAt string `json:"started_at"`
}

// WaitingJob describes one queued instance for a DumpReport.
type WaitingJob struct {
	Group    string `json:"group"`
	Job      string `json:"job"`
	Instance string `json:"instance"`
	Trigger  string `json:"trigger"`
}

// SleepingJob describes one active, currently idle template.
type SleepingJob struct {
	Job     string `json:"job"`
	NextRun string `json:"next_run"` // "never" if the template has no periodic trigger pending
}

// DumpReport is the structured snapshot the SIGUSR1 handler produces:
// one code path renders it as the text the log carries, the HTTP
// status server renders the same report as JSON.
type DumpReport struct {
	Running  []RunningJob  `json:"running"`
	Waiting  []WaitingJob  `json:"waiting"`
	Sleeping []SleepingJob `json:"sleeping"`
	Inactive []string      `json:"inactive"`
}

// Dump builds a point-in-time snapshot of running, waiting, sleeping,
// and inactive jobs. Only the main loop goroutine calls it; other
// goroutines read the copy the loop last published, through
// Scheduler.Snapshot.
func (s *Scheduler) Dump() DumpReport {
	var report DumpReport

	groups := make([]string, 0, len(s.running))
	for g := range s.running {
		groups = append(groups, g)
	}
	sort.Strings(groups)
	for _, g := range groups {
		r := s.running[g]
		report.Running = append(report.Running, RunningJob{
			Group:     g,
			Job:       r.inst.TemplateName,
			Instance:  r.inst.ID,
			PID:       r.runner.PID(),
			StartedAt: r.inst.StartedAt.Format("2006-01-02T15:04:05"),
		})
	}

	qgroups := make([]string, 0, len(s.queues))
	for g := range s.queues {
		qgroups = append(qgroups, g)
	}
	sort.Strings(qgroups)
	for _, g := range qgroups {
		for _, inst := range s.queues[g] {
			report.Waiting = append(report.Waiting, WaitingJob{
				Group: g, Job: inst.TemplateName, Instance: inst.ID, Trigger: inst.Trigger,
			})
		}
	}

	for _, name := range s.sortedTemplateNames() {
		tpl := s.templates[name]
		switch {
		case tpl.Reboot:
			continue
		case !tpl.Active:
			report.Inactive = append(report.Inactive, name)
		case clock.IsInfinity(tpl.NextRun):
			report.Sleeping = append(report.Sleeping, SleepingJob{Job: name, NextRun: "never"})
		default:
			report.Sleeping = append(report.Sleeping, SleepingJob{Job: name, NextRun: tpl.NextRun.Format("2006-01-02T15:04:05")})
		}
	}
	return report
}

// Text renders a DumpReport as the human-readable table the SIGUSR1
// handler prints: running, waiting, sleeping, and inactive jobs.
func (r DumpReport) Text() string {
	var b strings.Builder
	b.WriteString("pcron status dump\n")
	for _, j := range r.Running {
		fmt.Fprintf(&b, "running   group=%s job=%s instance=%s pid=%d started=%s\n", j.Group, j.Job, j.Instance, j.PID, j.StartedAt)
	}
	for _, j := range r.Waiting {
		fmt.Fprintf(&b, "waiting   group=%s job=%s instance=%s trigger=%s\n", j.Group, j.Job, j.Instance, j.Trigger)
	}
	for _, j := range r.Sleeping {
		fmt.Fprintf(&b, "sleeping  job=%s next_run=%s\n", j.Job, j.NextRun)
	}
	for _, j := range r.Inactive {
		fmt.Fprintf(&b, "inactive  job=%s\n", j)
	}
	return b.String()
}

// dump logs the human-readable dump in response to SIGUSR1.
func (s *Scheduler) dump() {
	s.log.Info(s.Dump().Text())
}

// publishSnapshot refreshes the guarded copy Snapshot serves to callers
// outside the main loop goroutine (the HTTP status server). Called once
// per loop iteration from Run.
func (s *Scheduler) publishSnapshot() {
	report := s.Dump()
	s.snapMu.Lock()
	s.snap = report
	s.snapMu.Unlock()
}

// Snapshot returns the most recent DumpReport published by the main
// loop. Safe for concurrent use by any goroutine; this is the only
// Scheduler method the HTTP status server is allowed to call, since
// everything else assumes the single main-loop goroutine.
func (s *Scheduler) Snapshot() DumpReport {
	s.snapMu.RLock()
	defer s.snapMu.RUnlock()
	return s.snap
}

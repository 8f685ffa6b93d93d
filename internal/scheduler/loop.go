package scheduler

import (
	"context"
	"os"
	"sort"
	"time"

	"github.com/gustaebel/pcron/internal/clock"
	"github.com/gustaebel/pcron/internal/env"
	"github.com/gustaebel/pcron/internal/job"
	"github.com/gustaebel/pcron/internal/logger"
	"github.com/gustaebel/pcron/internal/metrics"
	"github.com/gustaebel/pcron/internal/runner"
)

// processPendingJobs enqueues an instance for every active, non-reboot
// template whose next_run has arrived, then advances that template's
// generator to its following trigger.
func (s *Scheduler) processPendingJobs(now time.Time) {
	names := s.sortedTemplateNames()
	for _, name := range names {
		tpl := s.templates[name]
		if tpl.Reboot || !tpl.Active {
			continue
		}
		if tpl.NextRun.After(now) {
			continue
		}
		inst := tpl.NewInstance(tpl.NextTrigger, now)
		s.enqueue(tpl, inst)
		tpl.Advance()
		s.dirty = true
	}
}

// processFinishedJobs reaps every completed running instance: it
// finalizes output, records history, sends completion mail, then
// enqueues a post-triggered instance for every active template that
// lists the finished template in its post set, rebasing that
// template's interval anchor onto the actual completion time.
func (s *Scheduler) processFinishedJobs(now time.Time) {
	groups := make([]string, 0, len(s.running))
	for g := range s.running {
		groups = append(groups, g)
	}
	sort.Strings(groups)

	for _, group := range groups {
		r := s.running[group]
		if !r.runner.HasFinished() {
			continue
		}
		delete(s.running, group)

		jlog := logger.ForJob(s.log, r.inst.TemplateName, r.inst.ID, r.inst.Group)

		r.inst.FinishedAt = now
		r.inst.ExitCode = r.runner.Wait()
		r.inst.Killed = r.inst.ExitCode < 0
		if err := r.runner.Finalize(); err != nil {
			jlog.Error("failed to finalize job output", "error", err)
		}

		jlog.Info("job finished", "exit_code", r.inst.ExitCode, "duration", r.inst.Duration())
		metrics.ObserveDuration(r.inst.TemplateName, r.inst.Duration().Seconds())

		s.recordHistory(r)

		workDir := s.jobDir(r.inst.TemplateName)
		environ := s.env.ForJob(env.JobContext{Name: r.inst.TemplateName, ID: r.inst.ID, Group: r.inst.Group, JobsDir: s.jobsDir})
		if err := s.mail.NotifyFinished(r.inst, r.runner.OutputPath(), workDir, environ); err != nil {
			jlog.Error("failed to send completion mail", "error", err)
		}

		s.dirty = true
		s.triggerPost(r.inst.TemplateName, now)
	}
}

// triggerPost enqueues a post-triggered instance for every active
// template whose post list names finishedTemplate, and rebases that
// template's interval anchor to the next-minute boundary so interval
// timing rebases onto the actual completion rather than drifting from
// the original schedule.
func (s *Scheduler) triggerPost(finishedTemplate string, now time.Time) {
	names := s.sortedTemplateNames()
	for _, name := range names {
		tpl := s.templates[name]
		if !tpl.Active || !tpl.TriggersOn(finishedTemplate) {
			continue
		}
		inst := tpl.NewInstance(job.TriggerPost, now)
		s.enqueue(tpl, inst)
		tpl.ResetIntervalAnchor(clock.NextMinute(now))
	}
}

// processWaitingJobs starts, for each group in deterministic order, the
// head of its queue as long as no instance of that group is currently
// running. A spawn failure drops the instance and moves on to the next
// head in the same pass.
func (s *Scheduler) processWaitingJobs() {
	groups := make([]string, 0, len(s.queues))
	for g := range s.queues {
		groups = append(groups, g)
	}
	sort.Strings(groups)

	for _, group := range groups {
		for {
			if _, busy := s.running[group]; busy {
				break
			}
			q := s.queues[group]
			if len(q) == 0 {
				break
			}
			inst, rest := q[0], q[1:]
			s.queues[group] = rest

			if !s.precheckCondition(inst) {
				s.log.Info("condition check failed, skipping instance", "job", inst.TemplateName, "instance", inst.ID)
				continue
			}

			rn, err := s.start(inst)
			if err != nil {
				s.log.Error("failed to start job", "job", inst.TemplateName, "instance", inst.ID, "error", err)
				continue
			}
			s.running[group] = &running{inst: inst, runner: rn}
			metrics.IncStarted(inst.TemplateName)
		}
		metrics.SetQueueDepth(group, len(s.queues[group]))
	}
}

// precheckCondition runs the instance's optional condition command to
// completion and reports whether it exited zero. An instance with no
// condition always runs.
func (s *Scheduler) precheckCondition(inst *job.Instance) bool {
	if inst.Condition == "" {
		return true
	}
	spec := runner.Spec{
		Name:    inst.TemplateName + ".condition",
		Command: inst.Condition,
		WorkDir: s.jobDir(inst.TemplateName),
		Env:     s.env.ForJob(env.JobContext{Name: inst.TemplateName, ID: inst.ID, Group: inst.Group, JobsDir: s.jobsDir}),
		JobsDir: s.jobsDir,
	}
	rn := runner.New(spec)
	if err := rn.Start(); err != nil {
		s.log.Error("failed to start condition check", "job", inst.TemplateName, "error", err)
		return false
	}
	return rn.Wait() == 0
}

// start spawns inst's Runner.
func (s *Scheduler) start(inst *job.Instance) (*runner.Runner, error) {
	spec := runner.Spec{
		Name:    inst.TemplateName,
		Command: inst.Command,
		Init:    inst.Init,
		WorkDir: s.jobDir(inst.TemplateName),
		Env:     s.env.ForJob(env.JobContext{Name: inst.TemplateName, ID: inst.ID, Group: inst.Group, JobsDir: s.jobsDir}),
		JobsDir: s.jobsDir,
	}
	rn := runner.New(spec)
	if err := rn.Start(); err != nil {
		return nil, err
	}
	inst.StartedAt = s.clk.Now()
	return rn, nil
}

// wait sleeps until the earliest active template's next_run, or one
// hour if every template is currently infinite (no periodic trigger
// pending), returning early with whatever signal woke it.
func (s *Scheduler) wait(ctx context.Context, now time.Time) os.Signal {
	earliest := now.Add(time.Hour)
	found := false
	for _, tpl := range s.templates {
		if tpl.Reboot || !tpl.Active || clock.IsInfinity(tpl.NextRun) {
			continue
		}
		if !found || tpl.NextRun.Before(earliest) {
			earliest = tpl.NextRun
			found = true
		}
	}
	d := earliest.Sub(now)
	if d < 0 {
		d = 0
	}
	return s.inbox.SleepContext(ctx, d)
}

func (s *Scheduler) sortedTemplateNames() []string {
	names := make([]string, 0, len(s.templates))
	for name := range s.templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

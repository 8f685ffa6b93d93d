package scheduler

import (
	"github.com/gustaebel/pcron/internal/env"
	"github.com/gustaebel/pcron/internal/job"
	"github.com/gustaebel/pcron/internal/metrics"
)

// enqueue applies the conflict policy described for a newly triggered
// instance of tpl: it may be appended to its group's queue, dropped, or
// (for conflict=kill) cause the currently running instance of the same
// template to be terminated to make room.
func (s *Scheduler) enqueue(tpl *job.Template, inst *job.Instance) {
	group := tpl.Group
	metrics.IncTriggered(tpl.Name, inst.Trigger)

	if r, ok := s.running[group]; ok && r.inst.TemplateName == tpl.Name {
		s.log.Info("conflict: exceeding runtime", "job", tpl.Name, "instance", inst.ID, "policy", tpl.Conflict)
		metrics.IncConflict(tpl.Name, "runtime-"+string(tpl.Conflict))
		switch tpl.Conflict {
		case job.ConflictKill:
			r.runner.RequestTermination()
			s.queues[group] = append(s.queues[group], inst)
			s.notifyConflict("kill-running", inst, r)
		case job.ConflictSkip:
			s.notifyConflict("skip-running", inst, r)
		case job.ConflictMail:
			s.notifyConflict("skip-running", inst, r)
		default: // ignore
			s.queues[group] = append(s.queues[group], inst)
		}
		return
	}

	if congested := s.queueHasTemplate(group, tpl.Name); congested {
		s.log.Info("conflict: wait congestion", "job", tpl.Name, "instance", inst.ID, "policy", tpl.Conflict)
		metrics.IncConflict(tpl.Name, "waiting-"+string(tpl.Conflict))
		if tpl.Conflict == job.ConflictIgnore {
			s.queues[group] = append(s.queues[group], inst)
			return
		}
		if tpl.Conflict == job.ConflictMail {
			s.notifyConflict("skip-waiting", inst, nil)
		}
		return
	}

	s.queues[group] = append(s.queues[group], inst)
}

func (s *Scheduler) queueHasTemplate(group, templateName string) bool {
	for _, qi := range s.queues[group] {
		if qi.TemplateName == templateName {
			return true
		}
	}
	return false
}

// notifyConflict sends the appropriate conflict mail. r is the running
// entry the new instance collided with, or nil for skip-waiting where
// there is no running process to describe.
func (s *Scheduler) notifyConflict(kind string, inst *job.Instance, r *running) {
	workDir := s.jobDir(inst.TemplateName)
	environ := s.env.ForJob(env.JobContext{Name: inst.TemplateName, ID: inst.ID, Group: inst.Group, JobsDir: s.jobsDir})

	var runningCommand string
	var runningPID int
	if r != nil {
		runningCommand = r.inst.Command
		runningPID = r.runner.PID()
	}
	if err := s.mail.NotifyConflict(kind, inst, workDir, environ, runningCommand, runningPID); err != nil {
		s.log.Error("failed to send conflict mail", "job", inst.TemplateName, "kind", kind, "error", err)
	}
}

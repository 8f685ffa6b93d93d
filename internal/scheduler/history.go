package scheduler

import (
	"context"

	"github.com/gustaebel/pcron/internal/history"
)

// recordHistory is a no-op when history recording is disabled.
func (s *Scheduler) recordHistory(r *running) {
	if s.history == nil {
		return
	}
	rec := history.RecordFromInstance(r.inst, r.runner.PID())
	if err := s.history.RecordRun(context.Background(), rec); err != nil {
		s.log.Error("failed to record job history", "job", r.inst.TemplateName, "instance", r.inst.ID, "error", err)
	}
}

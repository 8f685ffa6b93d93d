package pcron_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/gustaebel/pcron"
	"github.com/gustaebel/pcron/internal/clock"
)

// writeWorkDir creates a minimal working directory with a single
// every-minute job, mirroring the layout cmd/pcron's `init` writes.
func writeWorkDir(t *testing.T, crontabBody string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "crontab.ini"), []byte(crontabBody), 0o640))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "environment.sh"), []byte(""), 0o640))
	return dir
}

func TestSchedulerRunsAnIntervalJobThenShutsDownOnCancel(t *testing.T) {
	dir := writeWorkDir(t, "[tick]\ncommand = echo hi\ninterval = 1\n")

	fake := clock.NewFake(time.Date(2026, 7, 31, 12, 0, 0, 0, time.UTC))
	sched := pcron.New(pcron.Options{Dir: dir, Clock: fake})
	sched.Load()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- sched.Run(ctx) }()

	require.Eventually(t, func() bool {
		return len(sched.Snapshot().Sleeping) == 1 || len(sched.Snapshot().Running) == 1
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not shut down after context cancellation")
	}
}

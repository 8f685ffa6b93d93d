package runner

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunnerRejectsUnsupportedShell(t *testing.T) {
	r := New(Spec{Name: "foo", Command: "true", Shell: "/bin/fish", JobsDir: t.TempDir()})
	err := r.Start()
	assert.Error(t, err)
}

func TestRunnerRunsAndCapturesOutput(t *testing.T) {
	dir := t.TempDir()
	r := New(Spec{Name: "foo", Command: "echo hello", JobsDir: dir})
	require.NoError(t, r.Start())

	deadline := time.Now().Add(2 * time.Second)
	for !r.HasFinished() && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	require.True(t, r.HasFinished())

	code := r.Wait()
	assert.Equal(t, 0, code)
	require.NoError(t, r.Finalize())

	out, err := os.ReadFile(filepath.Join(dir, "foo", "output.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(out), "hello")
}

func TestRunnerNonZeroExit(t *testing.T) {
	dir := t.TempDir()
	r := New(Spec{Name: "bar", Command: "exit 3", JobsDir: dir})
	require.NoError(t, r.Start())
	code := r.Wait()
	assert.Equal(t, 3, code)
	require.NoError(t, r.Finalize())
}

func TestRunnerTerminate(t *testing.T) {
	dir := t.TempDir()
	r := New(Spec{Name: "baz", Command: "trap '' TERM; sleep 30", JobsDir: dir})
	require.NoError(t, r.Start())
	time.Sleep(100 * time.Millisecond)
	assert.True(t, r.DetectAlive())

	start := time.Now()
	err := r.Terminate()
	require.NoError(t, err)
	assert.False(t, r.DetectAlive())
	assert.GreaterOrEqual(t, time.Since(start), gracePeriod)
}

package mailer

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gustaebel/pcron/internal/job"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}

func TestNotifyFinishedNeverPolicySkipsSend(t *testing.T) {
	dir := t.TempDir()
	m := New(discardLogger())
	inst := &job.Instance{ID: "foo.1", Mail: job.MailNever, ExitCode: 1, FiredAt: time.Now(), Sendmail: "cat > /dev/null"}
	require.NoError(t, m.NotifyFinished(inst, "", dir, nil))

	_, err := os.Stat(filepath.Join(dir, "sendmail.txt"))
	assert.True(t, os.IsNotExist(err))
}

func TestNotifyFinishedErrorPolicySendsOnFailure(t *testing.T) {
	dir := t.TempDir()
	m := New(discardLogger())
	inst := &job.Instance{ID: "foo.1", Mail: job.MailError, ExitCode: 1, FiredAt: time.Now(), MailTo: "root", Sendmail: "cat > /dev/null; true"}
	require.NoError(t, m.NotifyFinished(inst, "", dir, nil))

	b, err := os.ReadFile(filepath.Join(dir, "sendmail.txt"))
	require.NoError(t, err)
	assert.Empty(t, string(b)) // sendmail stub discards stdin; transcript captures only sendmail's own stdout
}

func TestNotifyConflictKillRunning(t *testing.T) {
	dir := t.TempDir()
	m := New(discardLogger())
	inst := &job.Instance{ID: "foo.2", MailTo: "root", FiredAt: time.Now(), Sendmail: "cat > /dev/null; true"}
	require.NoError(t, m.NotifyConflict("kill-running", inst, dir, nil, "echo hi", 1234))

	_, err := os.Stat(filepath.Join(dir, "sendmail.txt"))
	require.NoError(t, err)
}

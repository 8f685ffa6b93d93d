package crontab

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gustaebel/pcron/internal/job"
)

func writeCrontab(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "crontab.ini"), []byte(body), 0644))
	return dir
}

func TestLoadRejectsEmptyCrontab(t *testing.T) {
	dir := writeCrontab(t, "[default]\nmail = error\n")
	_, err := Load(dir)
	assert.ErrorIs(t, err, ErrEmptyCrontab{})
}

func TestLoadBasicJob(t *testing.T) {
	dir := writeCrontab(t, `
[backup]
command = /usr/local/bin/backup.sh
time = 0 2 * * *
mail = always
`)
	res, err := Load(dir)
	require.NoError(t, err)
	require.Contains(t, res.Jobs, "backup")
	c := res.Jobs["backup"]
	assert.Equal(t, "/usr/local/bin/backup.sh", c.Command)
	assert.Equal(t, job.MailAlways, c.Mail)
	assert.Equal(t, "backup", c.Group)
	assert.Equal(t, job.ConflictIgnore, c.Conflict)
	assert.Equal(t, "/usr/lib/sendmail", c.Sendmail)
}

func TestLoadRebootGoesToStartup(t *testing.T) {
	dir := writeCrontab(t, `
[warmup]
command = /usr/local/bin/warm.sh
time = @reboot
`)
	res, err := Load(dir)
	require.NoError(t, err)
	require.Contains(t, res.Startup, "warmup")
	assert.True(t, res.Startup["warmup"].Reboot)
	assert.Empty(t, res.Jobs)
}

func TestLoadDefaultSectionAppliesToAllJobs(t *testing.T) {
	dir := writeCrontab(t, `
[default]
mailto = ops@example.com
loglevel = debug

[a]
command = echo a
time = * * * * *

[b]
command = echo b
time = * * * * *
mailto = override@example.com
`)
	res, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "debug", res.LogLevel)
	assert.Equal(t, "ops@example.com", res.Jobs["a"].MailTo)
	assert.Equal(t, "override@example.com", res.Jobs["b"].MailTo)
}

func TestLoadDottedInheritance(t *testing.T) {
	dir := writeCrontab(t, `
[db]
command = /usr/local/bin/db.sh
group = database
conflict = kill
time = * * * * *

[db.backup]
command = /usr/local/bin/db-backup.sh
time = 0 3 * * *
`)
	res, err := Load(dir)
	require.NoError(t, err)
	child := res.Jobs["db.backup"]
	assert.Equal(t, "database", child.Group)
	assert.Equal(t, job.ConflictKill, child.Conflict)
	assert.Equal(t, "/usr/local/bin/db-backup.sh", child.Command)
}

func TestLoadMissingParentIsError(t *testing.T) {
	dir := writeCrontab(t, `
[a.b]
command = echo hi
time = * * * * *
`)
	_, err := Load(dir)
	require.Error(t, err)
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
}

func TestLoadUnknownKeyIsError(t *testing.T) {
	dir := writeCrontab(t, `
[a]
command = echo hi
time = * * * * *
bogus = 1
`)
	_, err := Load(dir)
	require.Error(t, err)
}

func TestLoadRequiresTrigger(t *testing.T) {
	dir := writeCrontab(t, `
[a]
command = echo hi
`)
	_, err := Load(dir)
	require.Error(t, err)
}

func TestLoadPostTargetMustExist(t *testing.T) {
	dir := writeCrontab(t, `
[a]
command = echo a
post = missing
`)
	_, err := Load(dir)
	require.Error(t, err)
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
}

func TestLoadPostTargetMayBeStartupJob(t *testing.T) {
	dir := writeCrontab(t, `
[warmup]
command = echo warm
time = @reboot

[a]
command = echo a
post = warmup
`)
	res, err := Load(dir)
	require.NoError(t, err)
	require.Contains(t, res.Jobs, "a")
	assert.Equal(t, []string{"warmup"}, res.Jobs["a"].Post)
}

func TestLoadReadsEnvironmentSh(t *testing.T) {
	dir := writeCrontab(t, `
[a]
command = echo hi
time = * * * * *
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "environment.sh"), []byte("export FOO=bar\n"), 0644))
	res, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "export FOO=bar\n", res.Init)
}

package env

import (
	"os"
	"os/user"
)

// JobContext carries the per-instance identity pcron injects into every
// child's environment, on top of the base/global layers Merge already
// composes.
type JobContext struct {
	Name    string
	ID      string
	Group   string
	JobsDir string
}

// DefaultPath is used for an unprivileged job when the crontab-wide
// globals layer (environment.sh) does not set PATH; the daemon's own
// inherited PATH is not consulted.
const DefaultPath = "/usr/local/bin:/usr/bin:/bin"

// PrivilegedPath is DefaultPath's root-run counterpart, adding the
// sbin directories a privileged cron job conventionally gets, the way
// a traditional cron daemon's own built-in PATH differs for root.
const PrivilegedPath = "/usr/local/sbin:/usr/local/bin:/usr/sbin:/usr/bin:/sbin:/bin"

// ForJob returns the per-job overrides merged on top of base/globals:
// the account identity (USER/LOGNAME/UID/GID/HOME/SHELL), a PATH
// (the globals layer's PATH when one is set, otherwise PrivilegedPath
// when the daemon runs as root and DefaultPath when it does not), and the
// job identity pcron exposes to scripts (JOB_NAME/JOB_ID/JOB_GROUP,
// PCRONDIR).
func (e *Env) ForJob(ctx JobContext) []string {
	base := e.ensureBase()
	out := make([]string, 0, 12)

	u, err := user.Current()
	if err == nil {
		out = append(out,
			"USER="+u.Username,
			"LOGNAME="+u.Username,
			"HOME="+u.HomeDir,
			"UID="+u.Uid,
			"GID="+u.Gid,
		)
	}

	var path string
	if v, ok := e.globals["PATH"]; ok {
		path = v
	}
	if path == "" {
		if os.Geteuid() == 0 {
			path = PrivilegedPath
		} else {
			path = DefaultPath
		}
	}
	out = append(out, "PATH="+path)

	shell := base["SHELL"]
	if shell == "" {
		shell = "/bin/sh"
	}
	out = append(out, "SHELL="+shell)

	if lang, ok := base["LANG"]; ok {
		out = append(out, "LANG="+lang)
	}

	out = append(out,
		"PCRONDIR="+ctx.JobsDir,
		"JOB_NAME="+ctx.Name,
		"JOB_ID="+ctx.ID,
	)
	if ctx.Group != "" {
		out = append(out, "JOB_GROUP="+ctx.Group)
	}
	return out
}

// Hostname is a small convenience used when composing mail headers and
// log lines that want to identify the machine a job ran on.
func Hostname() string {
	h, err := os.Hostname()
	if err != nil {
		return "localhost"
	}
	return h
}

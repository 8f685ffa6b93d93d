package scheduler

import (
	"path/filepath"

	"github.com/gustaebel/pcron/internal/crontab"
)

// jobDir returns the per-template working directory, shared by every
// instance of name: jobs/<name>/command.sh, output.txt, sendmail.txt.
func (s *Scheduler) jobDir(name string) string {
	return filepath.Join(s.jobsDir, name)
}

// ServerConfig returns the HTTP status server configuration the most
// recent Load found in crontab.ini's reserved [server] section.
func (s *Scheduler) ServerConfig() crontab.ServerConfig {
	return s.serverConfig
}

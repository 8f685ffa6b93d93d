// Package runner stages and executes the shell script for one job
// instance, mirroring the spawn/detect/terminate idiom of a process
// supervisor but scoped to a single run-to-completion child.
package runner

import (
	"fmt"
	"path/filepath"
)

// SupportedShells lists the interpreter basenames a Runner is willing
// to exec. Anything else in a job's login shell is rejected at start.
var SupportedShells = map[string]bool{
	"sh": true, "bash": true, "ksh": true, "zsh": true, "dash": true,
}

// Spec describes the child a Runner will launch.
type Spec struct {
	Name    string   // job name, used for the staging directory and log tag
	Command string   // the job's command line, dropped verbatim into the script
	Init    string   // shell fragment written into the script before Command (environment.sh contents)
	Shell   string   // path to the login shell to exec, defaults to /bin/sh
	WorkDir string   // child's working directory
	Env     []string // fully composed child environment
	JobsDir string   // root directory under which per-job staging lives
}

func (s Spec) shellPath() string {
	if s.Shell == "" {
		return "/bin/sh"
	}
	return s.Shell
}

func (s Spec) validate() error {
	if !SupportedShells[filepath.Base(s.shellPath())] {
		return fmt.Errorf("job %q: unsupported shell %q", s.Name, s.Shell)
	}
	if s.Command == "" {
		return fmt.Errorf("job %q: empty command", s.Name)
	}
	return nil
}

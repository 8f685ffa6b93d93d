package runner

import (
	"fmt"
	"os"
	"path/filepath"
)

// scriptHeader wraps the job's command in a strict-mode shell prelude
// so a bad substitution or a failing command in the init fragment
// aborts the job instead of silently continuing.
const scriptHeader = "set -ea\n"

// stage creates the job's working directory under jobsDir/<name>/ and
// (re)writes its command.sh script. Each template has exactly one
// command.sh and output.txt, reused across instances: the Running Set
// guarantees at most one instance of a job's group is live at a time,
// so there is never a concurrent writer.
func stage(jobsDir, name, init, command string) (dir, scriptPath, outputPath string, err error) {
	dir = filepath.Join(jobsDir, name)
	if err = os.MkdirAll(dir, 0o750); err != nil {
		return "", "", "", fmt.Errorf("create job directory %s: %w", dir, err)
	}

	var body string
	body += scriptHeader
	if init != "" {
		body += init + "\n"
	}
	body += "set +ea\n"
	body += command + "\n"

	scriptPath = filepath.Join(dir, "command.sh")
	if err = os.WriteFile(scriptPath, []byte(body), 0o750); err != nil {
		return "", "", "", fmt.Errorf("write script %s: %w", scriptPath, err)
	}

	outputPath = filepath.Join(dir, "output.txt")
	return dir, scriptPath, outputPath, nil
}

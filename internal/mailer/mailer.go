// Package mailer sends job-completion and conflict notifications
// through the local sendmail-compatible MTA, the way a traditional
// cron daemon does: it never speaks SMTP itself, it just feeds a
// message to an external command's stdin.
package mailer

import (
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/gustaebel/pcron/internal/job"
)

// DefaultSendmail is used when a job doesn't override the sendmail
// command in its crontab stanza.
const DefaultSendmail = "/usr/lib/sendmail"

// Mailer composes and dispatches notification mail for one pcron
// instance.
type Mailer struct {
	log *slog.Logger
}

func New(log *slog.Logger) *Mailer {
	return &Mailer{log: log}
}

// NotifyFinished decides, from the instance's mail policy and outcome,
// whether to send a completion mail, then sends it if so. outputPath is
// read again here (after Runner.Finalize has closed it) so the
// attached output reflects everything the job printed.
func (m *Mailer) NotifyFinished(inst *job.Instance, outputPath, workDir string, env []string) error {
	send := inst.Mail == job.MailAlways
	switch {
	case inst.ExitCode != 0:
		send = inst.Mail != job.MailNever
	case inst.Mail == job.MailOutput:
		send = outputNonEmpty(outputPath)
	}
	if !send {
		return nil
	}

	var body string
	ts := inst.FiredAt.Format(time.RFC1123)
	switch {
	case inst.ExitCode == 0:
		body = fmt.Sprintf(infoTemplate, username(), inst.MailTo, ts, inst.ID)
	case inst.ExitCode > 0:
		body = fmt.Sprintf(errorTemplate, username(), inst.MailTo, ts, inst.ID, inst.ID, inst.ExitCode)
	default:
		body = fmt.Sprintf(killedTemplate, username(), inst.MailTo, ts, inst.ID, inst.ID, signalName(-inst.ExitCode))
	}

	return m.send(inst.Sendmail, inst.MailTo, workDir, env, body, outputPath)
}

// NotifyConflict sends one of the three conflict-policy mails: a job
// skipped while another instance is still queued, a job skipped while
// another instance is running, or a running instance killed to make
// room for a new one.
func (m *Mailer) NotifyConflict(kind string, inst *job.Instance, workDir string, env []string, runningCommand string, runningPID int) error {
	ts := inst.FiredAt.Format(time.RFC1123)
	var body string
	switch kind {
	case "skip-waiting":
		body = fmt.Sprintf(skipWaitingTemplate, username(), inst.MailTo, ts, inst.ID, inst.ID)
	case "skip-running":
		body = fmt.Sprintf(skipRunningTemplate, username(), inst.MailTo, ts, inst.ID, inst.ID, runningCommand, runningPID)
	case "kill-running":
		body = fmt.Sprintf(killRunningTemplate, username(), inst.MailTo, ts, inst.ID, inst.ID)
	default:
		return fmt.Errorf("mailer: unknown conflict kind %q", kind)
	}
	return m.send(inst.Sendmail, inst.MailTo, workDir, env, body, "")
}

// send shells out to sendmail, writing the header+body text to its
// stdin and, if outputPath is non-empty, appending the job's captured
// output afterward. Whatever sendmail itself prints on stdout and
// stderr is saved to sendmail.txt in the job's working directory; the
// message text fed to its stdin is not copied there.
func (m *Mailer) send(sendmail, mailto, workDir string, env []string, body, outputPath string) error {
	if sendmail == "" {
		sendmail = DefaultSendmail
	}
	var command string
	if strings.Contains(sendmail, "{}") {
		command = strings.ReplaceAll(sendmail, "{}", mailto)
	} else {
		command = sendmail + " " + mailto
	}

	transcript, err := os.OpenFile(filepath.Join(workDir, "sendmail.txt"), os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o640)
	if err != nil {
		return fmt.Errorf("open sendmail transcript: %w", err)
	}
	defer func() { _ = transcript.Close() }()

	// #nosec G204 -- sendmail command comes from trusted crontab config
	cmd := exec.Command("/bin/sh", "-c", command)
	cmd.Dir = workDir
	cmd.Env = env
	cmd.Stdout = transcript
	cmd.Stderr = transcript

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("open sendmail stdin: %w", err)
	}
	if err := cmd.Start(); err != nil {
		m.log.Error("sendmail failed to start", "command", command, "error", err)
		return err
	}

	_, _ = stdin.Write([]byte(body))
	if outputPath != "" {
		if out, err := os.Open(outputPath); err == nil {
			buf := make([]byte, 4096)
			for {
				n, rerr := out.Read(buf)
				if n > 0 {
					_, _ = stdin.Write(buf[:n])
				}
				if rerr != nil {
					break
				}
			}
			_ = out.Close()
		}
	}
	_ = stdin.Close()

	if err := cmd.Wait(); err != nil {
		m.log.Error("sendmail exited non-zero", "command", command, "error", err)
		return err
	}
	return nil
}

func outputNonEmpty(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Size() > 0
}

func username() string {
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	return "pcron"
}

func signalName(n int) string {
	s := syscall.Signal(n)
	if name := s.String(); name != "" {
		return strings.ToUpper(name)
	}
	return "NONE"
}

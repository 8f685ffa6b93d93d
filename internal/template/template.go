// Package template generates a starter working directory for `pcron
// init`: a crontab.ini with calendar, interval and @reboot example
// stanzas and a comment-only environment.sh, so a new installation has something to edit
// rather than an empty directory and a blank page.
package template

import "fmt"

// Kind selects which example stanza Generate writes.
type Kind string

const (
	KindInterval Kind = "interval"
	KindCalendar Kind = "calendar"
	KindPost     Kind = "post"
	KindReboot   Kind = "reboot"
	KindMinimal  Kind = "minimal"
)

// Generator builds crontab.ini section text for one of the Kinds.
type Generator struct{}

func NewGenerator() *Generator { return &Generator{} }

// GetSupportedKinds lists every Kind Generate accepts.
func (g *Generator) GetSupportedKinds() []string {
	return []string{
		string(KindInterval), string(KindCalendar), string(KindPost),
		string(KindReboot), string(KindMinimal),
	}
}

// Generate returns a crontab.ini section (including its [name] header)
// demonstrating kind.
func (g *Generator) Generate(kind Kind, name string) (string, error) {
	switch kind {
	case KindInterval:
		return fmt.Sprintf(
			"[%s]\ncommand = echo hello from %s\ninterval = 15\nconflict = skip\nmail = error\n",
			name, name), nil
	case KindCalendar:
		return fmt.Sprintf(
			"[%s]\ncommand = echo hello from %s\ntime = 0 * * * *\nconflict = ignore\nmail = error\n",
			name, name), nil
	case KindPost:
		return fmt.Sprintf(
			"[%s]\ncommand = echo hello from %s\npost = %s-upstream\nmail = error\n",
			name, name, name), nil
	case KindReboot:
		return fmt.Sprintf(
			"[%s]\ncommand = echo hello from %s\ntime = @reboot\nmail = never\n",
			name, name), nil
	case KindMinimal:
		return fmt.Sprintf("[%s]\ncommand = echo hello from %s\ninterval = 1h\n", name, name), nil
	default:
		return "", fmt.Errorf("template: unknown kind %q (supported: %v)", kind, g.GetSupportedKinds())
	}
}

// Skeleton returns a ready-to-edit crontab.ini: a [default] section
// with a conservative loglevel plus one calendar, one interval and one
// @reboot example (no post example, whose upstream job would not
// exist), the way a fresh `pcron init` should leave something runnable.
func (g *Generator) Skeleton() string {
	var out string
	out += "[default]\nloglevel = info\n\n"
	for _, k := range []Kind{KindCalendar, KindInterval, KindReboot} {
		s, _ := g.Generate(k, "example-"+string(k))
		out += s + "\n"
	}
	return out
}

// EnvironmentSkeleton is the starter environment.sh: a comment-only
// fragment, since init code is optional and an empty one is valid.
const EnvironmentSkeleton = "# shell fragment sourced before every job's command\n"

// Package job holds the two core data shapes the scheduler works with:
// a Template, parsed once from a crontab stanza and carrying the
// generator that decides when it is next due, and an Instance, the
// lightweight snapshot created each time a template fires (only its
// start/finish times, exit code and killed flag are filled in later).
package job

import (
	"fmt"
	"regexp"
	"sync/atomic"
	"time"

	"github.com/gustaebel/pcron/internal/clock"
	"github.com/gustaebel/pcron/internal/timespec"
)

// ConflictPolicy decides what happens when a template becomes due while
// its group already has an instance of the same template running or
// queued.
type ConflictPolicy string

const (
	ConflictIgnore ConflictPolicy = "ignore"
	ConflictSkip   ConflictPolicy = "skip"
	ConflictMail   ConflictPolicy = "mail"
	ConflictKill   ConflictPolicy = "kill"
)

// MailPolicy decides whether a finished instance's output is mailed.
type MailPolicy string

const (
	MailNever  MailPolicy = "never"
	MailAlways MailPolicy = "always"
	MailError  MailPolicy = "error"
	MailOutput MailPolicy = "output"
)

const (
	TriggerReboot = "reboot"
	TriggerPost   = "post"
)

var nameRe = regexp.MustCompile(`^\w+([-.]\w+)*$`)

// Config is the plain-data form a Template is built from, decoded
// straight out of a crontab.ini stanza (including inherited defaults).
type Config struct {
	Name     string
	Command  string
	Active   bool
	Reboot   bool
	Time     string
	Interval string
	Post     []string
	Condition string
	Group    string
	Conflict ConflictPolicy
	Mail     MailPolicy
	MailTo   string
	Sendmail string
	Init     string
}

// Template is one parsed crontab stanza plus the generator that tracks
// when it next becomes due. A Template is owned exclusively by the
// scheduler's main loop; Instance never holds a pointer back to it, so
// a Reload can swap Template values out from under running instances
// without racing them.
type Template struct {
	Name      string
	Command   string
	Active    bool
	Reboot    bool
	Condition string
	Group     string
	Conflict  ConflictPolicy
	Mail      MailPolicy
	MailTo    string
	Sendmail  string
	Init      string
	Post      []string

	TimeExpr     string
	IntervalExpr string

	NextTrigger string
	NextRun     time.Time

	gen    *timespec.Merged
	serial uint64
}

// NewTemplate validates cfg and, unless it is a @reboot template,
// builds its trigger generator anchored at now.
func NewTemplate(cfg Config, now time.Time) (*Template, error) {
	if !nameRe.MatchString(cfg.Name) {
		return nil, fmt.Errorf("job %q: invalid name", cfg.Name)
	}
	if cfg.Command == "" {
		return nil, fmt.Errorf("job %q: command is required", cfg.Name)
	}
	if cfg.Conflict == "" {
		cfg.Conflict = ConflictIgnore
	}
	if cfg.Mail == "" {
		cfg.Mail = MailError
	}
	if cfg.Group == "" {
		cfg.Group = cfg.Name
	}

	t := &Template{
		Name:         cfg.Name,
		Command:      cfg.Command,
		Active:       cfg.Active,
		Reboot:       cfg.Reboot,
		Condition:    cfg.Condition,
		Group:        cfg.Group,
		Conflict:     cfg.Conflict,
		Mail:         cfg.Mail,
		MailTo:       cfg.MailTo,
		Sendmail:     cfg.Sendmail,
		Init:         cfg.Init,
		Post:         cfg.Post,
		TimeExpr:     cfg.Time,
		IntervalExpr: cfg.Interval,
		NextRun:      clock.Infinity(),
	}

	if t.Reboot {
		return t, nil
	}

	var ts *timespec.TimeSpec
	var is *timespec.IntervalSpec
	var err error
	if cfg.Time != "" {
		if ts, err = timespec.Parse(cfg.Time); err != nil {
			return nil, fmt.Errorf("job %q: %w", cfg.Name, err)
		}
	}
	if cfg.Interval != "" {
		if is, err = timespec.ParseInterval(cfg.Interval); err != nil {
			return nil, fmt.Errorf("job %q: %w", cfg.Name, err)
		}
	}
	if ts == nil && is == nil && len(cfg.Post) == 0 {
		return nil, fmt.Errorf("job %q: needs a time, interval or post trigger", cfg.Name)
	}

	if ts != nil || is != nil {
		t.gen = timespec.NewMerged(ts, is, now)
		t.Advance()
	}
	return t, nil
}

// Advance pulls the next trigger from the template's generator. It is a
// no-op for reboot or post-only templates, which never self-schedule.
func (t *Template) Advance() {
	if t.gen == nil {
		t.NextRun = clock.Infinity()
		return
	}
	trigger, at := t.gen.Next()
	t.NextTrigger = trigger
	t.NextRun = at
}

// ResetIntervalAnchor rebases the template's interval branch, used after
// one of its listed post-triggers fires.
func (t *Template) ResetIntervalAnchor(anchor time.Time) {
	if t.gen != nil {
		t.gen.ResetInterval(anchor)
	}
}

// TriggersOn reports whether name appears in this template's post list.
func (t *Template) TriggersOn(name string) bool {
	for _, p := range t.Post {
		if p == name {
			return true
		}
	}
	return false
}

// NextSerial returns a monotonically increasing per-template counter
// used to build unique instance IDs.
func (t *Template) NextSerial() uint64 {
	return atomic.AddUint64(&t.serial, 1)
}

// NewInstance snapshots the fields a runner and mailer need to act on
// one firing of the template, decoupled from the Template's lifetime.
func (t *Template) NewInstance(trigger string, firedAt time.Time) *Instance {
	return &Instance{
		ID:           fmt.Sprintf("%s-%04d", t.Name, t.NextSerial()),
		TemplateName: t.Name,
		Group:        t.Group,
		Command:      t.Command,
		Condition:    t.Condition,
		Mail:         t.Mail,
		MailTo:       t.MailTo,
		Sendmail:     t.Sendmail,
		Init:         t.Init,
		Trigger:      trigger,
		FiredAt:      firedAt,
	}
}

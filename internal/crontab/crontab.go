// Package crontab loads crontab.ini into job.Config values, resolving
// the dotted-name inheritance and implicit [default] section the
// working directory format allows, via gopkg.in/ini.v1.
package crontab

import (
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"strings"

	"gopkg.in/ini.v1"

	"github.com/gustaebel/pcron/internal/job"
)

// ParseError carries a human-readable reason for a crontab.ini problem,
// tagged with the offending section so the CLI's "pcron validate" can
// point at exactly what to fix.
type ParseError struct {
	Section string
	Reason  string
}

func (e *ParseError) Error() string {
	if e.Section == "" {
		return "crontab: " + e.Reason
	}
	return fmt.Sprintf("crontab: section %q: %s", e.Section, e.Reason)
}

// ErrEmptyCrontab is returned when crontab.ini defines no job sections
// at all (only [DEFAULT]/[default]/[server], or the file is empty). A
// missing crontab.ini is reported as a *ParseError instead.
type ErrEmptyCrontab struct{}

func (ErrEmptyCrontab) Error() string { return "crontab: no job sections defined" }

var recognizedKeys = map[string]bool{
	"command": true, "active": true, "condition": true, "group": true,
	"conflict": true, "time": true, "interval": true, "post": true,
	"mail": true, "mailto": true, "sendmail": true,
}

// Result is everything the loader extracts from a working directory.
type Result struct {
	Startup  map[string]*job.Config // time == @reboot
	Jobs     map[string]*job.Config // everything else
	Init     string                 // environment.sh contents, prepended to every job script
	LogLevel string                 // from [default] loglevel: quiet|info|debug
	Server   ServerConfig           // from the reserved [server] section, if present
}

// ServerConfig configures the optional HTTP status surface
// (internal/server). It lives in a reserved top-level [server] section,
// sitting alongside [default] rather than among the job stanzas.
type ServerConfig struct {
	Enabled bool
	Addr    string
}

// Load reads crontab.ini and environment.sh from dir.
func Load(dir string) (*Result, error) {
	initCode, err := os.ReadFile(filepath.Join(dir, "environment.sh"))
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read environment.sh: %w", err)
	}

	path := filepath.Join(dir, "crontab.ini")
	cfg, err := ini.LoadSources(ini.LoadOptions{AllowBooleanKeys: false}, path)
	if err != nil {
		return nil, &ParseError{Reason: err.Error()}
	}

	defaults := map[string]string{}
	logLevel := "info"
	if s, err := cfg.GetSection("default"); err == nil {
		defaults = s.KeysHash()
		if lv, ok := defaults["loglevel"]; ok {
			logLevel = lv
			delete(defaults, "loglevel")
		}
	}

	var server ServerConfig
	if s, err := cfg.GetSection("server"); err == nil {
		keys := s.KeysHash()
		server.Addr = keys["addr"]
		if server.Addr == "" {
			server.Addr = "127.0.0.1:9090"
		}
		server.Enabled = true
	}

	raw := map[string]map[string]string{}
	for _, s := range cfg.Sections() {
		name := s.Name()
		if name == ini.DefaultSection || name == "default" || name == "server" {
			continue
		}
		raw[name] = s.KeysHash()
	}
	if len(raw) == 0 {
		return nil, ErrEmptyCrontab{}
	}

	resolved := map[string]map[string]string{}
	var resolve func(name string) (map[string]string, error)
	resolving := map[string]bool{}
	resolve = func(name string) (map[string]string, error) {
		if m, ok := resolved[name]; ok {
			return m, nil
		}
		if resolving[name] {
			return nil, &ParseError{Section: name, Reason: "inheritance cycle"}
		}
		resolving[name] = true
		defer delete(resolving, name)

		own, ok := raw[name]
		if !ok {
			return nil, &ParseError{Section: name, Reason: "parent section not found"}
		}

		merged := map[string]string{}
		for k, v := range defaults {
			merged[k] = v
		}
		if idx := strings.LastIndex(name, "."); idx >= 0 {
			parentName := name[:idx]
			parentMerged, err := resolve(parentName)
			if err != nil {
				return nil, err
			}
			for k, v := range parentMerged {
				merged[k] = v
			}
		}
		for k, v := range own {
			merged[k] = v
		}
		resolved[name] = merged
		return merged, nil
	}

	startup := map[string]*job.Config{}
	jobs := map[string]*job.Config{}

	for name := range raw {
		merged, err := resolve(name)
		if err != nil {
			return nil, err
		}
		for k := range merged {
			if !recognizedKeys[k] {
				return nil, &ParseError{Section: name, Reason: fmt.Sprintf("unknown key %q", k)}
			}
		}

		c, err := toConfig(name, merged)
		if err != nil {
			return nil, err
		}
		if c.Reboot {
			startup[name] = c
		} else {
			jobs[name] = c
		}
	}

	for name, c := range jobs {
		for _, target := range c.Post {
			if _, ok := jobs[target]; ok {
				continue
			}
			if _, ok := startup[target]; ok {
				continue
			}
			return nil, &ParseError{Section: name, Reason: fmt.Sprintf("post target %q is not defined in this crontab", target)}
		}
	}

	return &Result{Startup: startup, Jobs: jobs, Init: string(initCode), LogLevel: logLevel, Server: server}, nil
}

func toConfig(name string, m map[string]string) (*job.Config, error) {
	c := &job.Config{Name: name}

	c.Command = m["command"]
	if c.Command == "" {
		return nil, &ParseError{Section: name, Reason: "command is required"}
	}

	active := true
	if v, ok := m["active"]; ok {
		b, err := parseBool(v)
		if err != nil {
			return nil, &ParseError{Section: name, Reason: fmt.Sprintf("active: %s", err)}
		}
		active = b
	}
	c.Active = active

	c.Condition = m["condition"]

	c.Group = m["group"]
	if c.Group == "" {
		c.Group = name
	}

	c.Conflict = job.ConflictIgnore
	if v, ok := m["conflict"]; ok {
		p := job.ConflictPolicy(strings.ToLower(v))
		switch p {
		case job.ConflictIgnore, job.ConflictSkip, job.ConflictMail, job.ConflictKill:
			c.Conflict = p
		default:
			return nil, &ParseError{Section: name, Reason: fmt.Sprintf("conflict: invalid value %q", v)}
		}
	}

	timeExpr := m["time"]
	if timeExpr == "@reboot" {
		c.Reboot = true
	} else {
		c.Time = timeExpr
	}
	c.Interval = m["interval"]

	if v, ok := m["post"]; ok && v != "" {
		c.Post = strings.Fields(v)
	}

	c.Mail = job.MailError
	if v, ok := m["mail"]; ok {
		p := job.MailPolicy(strings.ToLower(v))
		switch p {
		case job.MailNever, job.MailAlways, job.MailError, job.MailOutput:
			c.Mail = p
		default:
			return nil, &ParseError{Section: name, Reason: fmt.Sprintf("mail: invalid value %q", v)}
		}
	}

	c.MailTo = m["mailto"]
	if c.MailTo == "" {
		c.MailTo = currentUsername()
	}

	c.Sendmail = m["sendmail"]
	if c.Sendmail == "" {
		c.Sendmail = "/usr/lib/sendmail"
	}

	if !c.Reboot && c.Time == "" && c.Interval == "" && len(c.Post) == 0 {
		return nil, &ParseError{Section: name, Reason: "needs at least one of time, interval, post"}
	}

	return c, nil
}

var boolValues = map[string]bool{
	"true": true, "t": true, "yes": true, "y": true, "1": true,
	"false": false, "f": false, "no": false, "n": false, "0": false,
}

func parseBool(s string) (bool, error) {
	v, ok := boolValues[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return false, fmt.Errorf("invalid boolean %q", s)
	}
	return v, nil
}

func currentUsername() string {
	if u, err := user.Current(); err == nil {
		return u.Username
	}
	return "root"
}

package timespec

import (
	"fmt"
	"strings"
	"time"

	"github.com/gustaebel/pcron/internal/clock"
)

// Reboot is the sentinel raw expression marking a startup-only template.
// TimeSpec parsing never sees it; the crontab loader buckets "@reboot"
// templates before a TimeSpec is ever built.
const Reboot = "@reboot"

var aliases = map[string]string{
	"@hourly":  "0 * * * *",
	"@daily":   "0 0 * * *",
	"@midnight": "0 0 * * *",
	"@weekly":  "0 0 * * 0",
	"@monthly": "0 0 1 * *",
	"@yearly":  "0 0 1 1 *",
	"@annually": "0 0 1 1 *",
}

// maxLookahead bounds how many minutes the calendar generator will walk
// forward before giving up and reporting Infinity. Five years is far
// beyond any legitimate calendar spec's gap between matches.
const maxLookahead = 5 * 366 * 24 * 60

// TimeSpec is a parsed five-field calendar expression (minute hour dom
// month dow), expanded from an @alias if one was given.
type TimeSpec struct {
	raw                       string
	minute, hour, dom, month, dow field
}

// Parse parses a raw calendar expression, expanding built-in aliases.
// It never accepts Reboot; callers must special-case that beforehand.
func Parse(raw string) (*TimeSpec, error) {
	expr := strings.TrimSpace(raw)
	if expr == Reboot {
		return nil, fmt.Errorf("%q is a startup trigger, not a calendar spec", raw)
	}
	if expanded, ok := aliases[expr]; ok {
		expr = expanded
	}

	fields := strings.Fields(expr)
	if len(fields) != 5 {
		return nil, fmt.Errorf("time spec %q: expected 5 fields, got %d", raw, len(fields))
	}

	ts := &TimeSpec{raw: raw}
	var err error
	if ts.minute, err = parseField(fields[0], 0, 59, nil); err != nil {
		return nil, err
	}
	if ts.hour, err = parseField(fields[1], 0, 23, nil); err != nil {
		return nil, err
	}
	if ts.dom, err = parseField(fields[2], 1, 31, nil); err != nil {
		return nil, err
	}
	if ts.month, err = parseField(fields[3], 1, 12, monthNames); err != nil {
		return nil, err
	}
	if ts.dow, err = parseField(fields[4], 0, 7, weekdayNames); err != nil {
		return nil, err
	}
	return ts, nil
}

func (ts *TimeSpec) String() string { return ts.raw }

// matches reports whether t satisfies every field, applying the classic
// cron union rule for day-of-month vs day-of-week: when both fields are
// restricted (neither is the bare "*"), a match in either is sufficient.
func (ts *TimeSpec) matches(t time.Time) bool {
	if !ts.month.matches(int(t.Month())) {
		return false
	}
	if !ts.dayMatches(t.Day(), int(t.Weekday())) {
		return false
	}
	if !ts.hour.matches(t.Hour()) {
		return false
	}
	if !ts.minute.matches(t.Minute()) {
		return false
	}
	return true
}

func (ts *TimeSpec) dayMatches(dom, dow int) bool {
	switch {
	case ts.dom.wildcard && ts.dow.wildcard:
		return true
	case ts.dom.wildcard:
		return ts.dow.matches(dow)
	case ts.dow.wildcard:
		return ts.dom.matches(dom)
	default:
		return ts.dom.matches(dom) || ts.dow.matches(dow)
	}
}

// next returns the first minute strictly after "after" that matches all
// fields, walking minute by minute. Calendar specs are sparse enough
// (at most a handful of due minutes a day) that a direct walk is simpler
// and just as correct as a field-skipping search, at the cost of more
// iterations for rare specs like "Feb 29 at midnight".
func (ts *TimeSpec) next(after time.Time) time.Time {
	t := after.Truncate(time.Minute).Add(time.Minute)
	for i := 0; i < maxLookahead; i++ {
		if ts.matches(t) {
			return t
		}
		t = t.Add(time.Minute)
	}
	return clock.Infinity()
}

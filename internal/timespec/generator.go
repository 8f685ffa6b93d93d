package timespec

import (
	"time"

	"github.com/gustaebel/pcron/internal/clock"
)

// Trigger kinds a Generator can produce. The scheduler uses these to
// label the instance it creates.
const (
	TriggerTime     = "time"
	TriggerInterval = "interval"
)

// Generator is a lazy, stateful source of trigger timestamps. Each call
// to Next advances internal state and returns strictly increasing
// times; callers pull one value at a time rather than materializing a
// schedule up front.
type Generator interface {
	Next() (trigger string, at time.Time)
}

// calendarGen walks a TimeSpec minute by minute from a cursor.
type calendarGen struct {
	spec   *TimeSpec
	cursor time.Time
}

func newCalendarGen(spec *TimeSpec, after time.Time) *calendarGen {
	return &calendarGen{spec: spec, cursor: after}
}

func (g *calendarGen) Next() (string, time.Time) {
	t := g.spec.next(g.cursor)
	g.cursor = t
	return TriggerTime, t
}

// intervalGen yields anchor, anchor+d, anchor+2d, ... from a cursor
// that starts at the construction-time anchor. Resetting the anchor
// (done by the scheduler after a post-trigger completes) rebases the
// sequence onto a new baseline without waiting for the old schedule.
type intervalGen struct {
	d      time.Duration
	cursor time.Time
}

func newIntervalGen(spec *IntervalSpec, anchor time.Time) *intervalGen {
	return &intervalGen{d: spec.d, cursor: anchor}
}

func (g *intervalGen) Next() (string, time.Time) {
	t := g.cursor
	g.cursor = g.cursor.Add(g.d)
	return TriggerInterval, t
}

func (g *intervalGen) reset(anchor time.Time) {
	g.cursor = anchor
}

// pending holds one unconsumed value pulled from a sub-generator.
type pending struct {
	trigger string
	at      time.Time
}

// Merged combines an optional calendar generator and an optional
// interval generator, always yielding the earlier of the two pending
// values and breaking ties in favor of the calendar ("time") trigger.
type Merged struct {
	timeGen     *calendarGen
	intervalGen *intervalGen
	timeNext    *pending
	intervalNext *pending
}

// NewMerged builds a combined generator. Either sub-generator may be
// nil for a template that only uses one kind of trigger; if both are
// nil, Next always returns Infinity.
func NewMerged(ts *TimeSpec, is *IntervalSpec, now time.Time) *Merged {
	m := &Merged{}
	if ts != nil {
		m.timeGen = newCalendarGen(ts, now)
	}
	if is != nil {
		m.intervalGen = newIntervalGen(is, now)
	}
	return m
}

func (m *Merged) Next() (string, time.Time) {
	if m.timeGen != nil && m.timeNext == nil {
		tr, at := m.timeGen.Next()
		m.timeNext = &pending{tr, at}
	}
	if m.intervalGen != nil && m.intervalNext == nil {
		tr, at := m.intervalGen.Next()
		m.intervalNext = &pending{tr, at}
	}

	switch {
	case m.timeNext != nil && m.intervalNext != nil:
		if !m.intervalNext.at.Before(m.timeNext.at) {
			p := m.timeNext
			m.timeNext = nil
			return p.trigger, p.at
		}
		p := m.intervalNext
		m.intervalNext = nil
		return p.trigger, p.at
	case m.timeNext != nil:
		p := m.timeNext
		m.timeNext = nil
		return p.trigger, p.at
	case m.intervalNext != nil:
		p := m.intervalNext
		m.intervalNext = nil
		return p.trigger, p.at
	default:
		return "", clock.Infinity()
	}
}

// ResetInterval rebases the interval branch's anchor, discarding any
// pending unconsumed interval value so the next pull reflects the new
// baseline. No-op if the template has no interval generator.
func (m *Merged) ResetInterval(anchor time.Time) {
	if m.intervalGen == nil {
		return
	}
	m.intervalGen.reset(anchor)
	m.intervalNext = nil
}

// HasTime reports whether a calendar generator is present.
func (m *Merged) HasTime() bool { return m.timeGen != nil }

// HasInterval reports whether an interval generator is present.
func (m *Merged) HasInterval() bool { return m.intervalGen != nil }

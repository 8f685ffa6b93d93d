package timespec

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAliases(t *testing.T) {
	ts, err := Parse("@daily")
	require.NoError(t, err)
	at := time.Date(2026, 7, 31, 23, 59, 0, 0, time.UTC)
	next := ts.next(at)
	assert.Equal(t, time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC), next)
}

func TestParseRejectsReboot(t *testing.T) {
	_, err := Parse(Reboot)
	assert.Error(t, err)
}

func TestDayOfMonthAndWeekUnion(t *testing.T) {
	ts, err := Parse("0 0 1 * mon")
	require.NoError(t, err)
	// Both restricted: any Monday OR the 1st of the month should match.
	monday := time.Date(2026, 8, 3, 0, 0, 0, 0, time.UTC)
	assert.True(t, ts.matches(monday))
	first := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	assert.True(t, ts.matches(first))
	other := time.Date(2026, 8, 4, 0, 0, 0, 0, time.UTC)
	assert.False(t, ts.matches(other))
}

func TestWildcardDayDoesNotUnion(t *testing.T) {
	ts, err := Parse("0 0 * * mon")
	require.NoError(t, err)
	monday := time.Date(2026, 8, 3, 0, 0, 0, 0, time.UTC)
	tuesday := time.Date(2026, 8, 4, 0, 0, 0, 0, time.UTC)
	assert.True(t, ts.matches(monday))
	assert.False(t, ts.matches(tuesday))
}

func TestWeekdayOnlyMatchesNone(t *testing.T) {
	// A spec that can only ever match Wednesday, checked across a single
	// non-Wednesday day, should simply not fire within that window.
	ts, err := Parse("0 0 * * wed")
	require.NoError(t, err)
	monday := time.Date(2026, 8, 3, 0, 0, 0, 0, time.UTC)
	count := 0
	cursor := monday
	for i := 0; i < 24*60; i++ {
		if ts.matches(cursor) {
			count++
		}
		cursor = cursor.Add(time.Minute)
	}
	assert.Equal(t, 0, count)
}

func TestStepAndRangeWithExceptions(t *testing.T) {
	ts, err := Parse("*/15 9-17~12~13 * * mon-fri")
	require.NoError(t, err)
	assert.True(t, ts.hour.matches(9))
	assert.False(t, ts.hour.matches(12))
	assert.False(t, ts.hour.matches(13))
	assert.True(t, ts.minute.matches(0))
	assert.True(t, ts.minute.matches(45))
	assert.False(t, ts.minute.matches(5))
}

func TestSundaySynonym(t *testing.T) {
	ts, err := Parse("0 0 * * 7")
	require.NoError(t, err)
	sunday := time.Date(2026, 8, 2, 0, 0, 0, 0, time.UTC)
	assert.True(t, ts.matches(sunday))
}

func TestParseIntervalCompactGrammar(t *testing.T) {
	is, err := ParseInterval("1m2w3d4h5")
	require.NoError(t, err)
	expected := 1*4*7*24*time.Hour + 2*7*24*time.Hour + 3*24*time.Hour + 4*time.Hour + 5*time.Minute
	assert.Equal(t, expected, is.Duration())
}

func TestParseIntervalRejectsZero(t *testing.T) {
	_, err := ParseInterval("0h")
	assert.Error(t, err)
}

func TestParseIntervalRejectsGarbage(t *testing.T) {
	_, err := ParseInterval("3x")
	assert.Error(t, err)
}

func TestMergedGeneratorTieBreaksToTime(t *testing.T) {
	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	ts, err := Parse("@hourly")
	require.NoError(t, err)
	is, err := ParseInterval("60")
	require.NoError(t, err)
	m := NewMerged(ts, is, now)
	// The interval branch yields its anchor first; the next values of
	// both branches then coincide at now+1h.
	trigger, at := m.Next()
	assert.Equal(t, TriggerInterval, trigger)
	assert.Equal(t, now, at)
	trigger, at = m.Next()
	assert.Equal(t, TriggerTime, trigger)
	assert.Equal(t, now.Add(time.Hour), at)
}

func TestMergedGeneratorResetInterval(t *testing.T) {
	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	is, err := ParseInterval("5")
	require.NoError(t, err)
	m := NewMerged(nil, is, now)
	_, first := m.Next()
	assert.Equal(t, now, first)

	reset := now.Add(90 * time.Second)
	m.ResetInterval(reset)
	_, second := m.Next()
	assert.Equal(t, reset, second)
}

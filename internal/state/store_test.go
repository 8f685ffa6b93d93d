package state

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsEmpty(t *testing.T) {
	s := New(t.TempDir())
	assert.Empty(t, s.Load())
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	s := New(dir)
	now := time.Date(2026, 7, 31, 12, 0, 0, 0, time.UTC)
	next := map[string]time.Time{"foo": now, "bar": now.Add(time.Hour)}

	require.NoError(t, s.Save(next))
	got := s.Load()
	assert.True(t, got["foo"].Equal(now))
	assert.True(t, got["bar"].Equal(now.Add(time.Hour)))
}

func TestLoadCorruptFileReturnsEmpty(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "state.db"), []byte("not json"), 0o600))
	s := New(dir)
	assert.Empty(t, s.Load())
}

func TestLoadVersionMismatchReturnsEmpty(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "state.db"), []byte(`{"version":99,"next_run":{}}`), 0o600))
	s := New(dir)
	assert.Empty(t, s.Load())
}

func TestSaveLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	s := New(dir)
	require.NoError(t, s.Save(map[string]time.Time{"foo": time.Now()}))
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
	assert.Equal(t, "state.db", entries[0].Name())
}

// Package state persists the scheduler's next_run timestamps across
// restarts: the one piece of state a reload must not lose, since a
// recomputed generator anchored at "now" would otherwise skip or
// duplicate a trigger that was already due before the daemon restarted.
package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Version is bumped whenever the on-disk shape changes incompatibly.
// Load treats a mismatched version the same as a missing file: start
// fresh rather than fail the daemon over stale state.
const Version = 1

type document struct {
	Version int                  `json:"version"`
	NextRun map[string]time.Time `json:"next_run"`
}

// Store reads and writes state.db under a fixed directory.
type Store struct {
	path string
}

// New returns a Store backed by <dir>/state.db.
func New(dir string) *Store {
	return &Store{path: filepath.Join(dir, "state.db")}
}

// Load returns the persisted next_run map. A missing file, corrupt
// JSON, or version mismatch all return an empty map rather than an
// error: the scheduler falls back to generator-computed next_run for
// every template it can't find a saved value for.
func (s *Store) Load() map[string]time.Time {
	b, err := os.ReadFile(s.path)
	if err != nil {
		return map[string]time.Time{}
	}
	var doc document
	if err := json.Unmarshal(b, &doc); err != nil {
		return map[string]time.Time{}
	}
	if doc.Version != Version || doc.NextRun == nil {
		return map[string]time.Time{}
	}
	return doc.NextRun
}

// Save atomically replaces state.db with next via a temp file plus
// rename, so a crash mid-write never leaves a truncated or partially
// written file behind.
func (s *Store) Save(next map[string]time.Time) error {
	doc := document{Version: Version, NextRun: next}
	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create state directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".state-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp state file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(b); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("write temp state file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("sync temp state file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("close temp state file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename temp state file: %w", err)
	}
	return nil
}

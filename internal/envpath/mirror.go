package envpath

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"flutter-bootstrap/internal/logger"
)

// Snapshot is the PATH the process sees after the most recent refresh.
type Snapshot struct {
	Path string
}

// Dirs splits the snapshot into its non-empty directories.
func (s Snapshot) Dirs() []string {
	return SplitList(s.Path)
}

// Mirror copies the persistent PATH into the process environment on demand.
type Mirror struct {
	store  Store
	setenv func(key, value string) error
}

// NewMirror creates a mirror that writes the refreshed PATH with os.Setenv.
func NewMirror(store Store) *Mirror {
	return &Mirror{store: store, setenv: os.Setenv}
}

// Refresh re-reads machine and user PATH (machine first) and replaces the process PATH
// with their concatenation. Any error means PATH-based decisions can no longer be trusted.
func (m *Mirror) Refresh() (Snapshot, error) {
	var parts []string
	for _, scope := range []Scope{Machine, User} {
		raw, err := m.store.Get(scope)
		if err != nil {
			return Snapshot{}, fmt.Errorf("refresh PATH: %w", err)
		}
		value, err := m.store.Expand(raw)
		if err != nil {
			return Snapshot{}, fmt.Errorf("refresh PATH: expand %s value: %w", scope, err)
		}
		if value = strings.Trim(value, string(filepath.ListSeparator)); value != "" {
			parts = append(parts, value)
		}
	}

	snap := Snapshot{Path: strings.Join(parts, string(filepath.ListSeparator))}
	if err := m.setenv("PATH", snap.Path); err != nil {
		return Snapshot{}, fmt.Errorf("refresh PATH: set process environment: %w", err)
	}
	logger.Debug("[DEBUG] Refreshed PATH: %s\n", snap.Path)
	return snap, nil
}

// SplitList splits a PATH value on the platform separator, dropping empty entries.
func SplitList(value string) []string {
	var dirs []string
	for _, d := range filepath.SplitList(value) {
		if d = strings.TrimSpace(d); d != "" {
			dirs = append(dirs, d)
		}
	}
	return dirs
}

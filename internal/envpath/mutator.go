package envpath

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strings"

	"flutter-bootstrap/internal/logger"
)

// Mutator appends directories to a persistent PATH scope.
type Mutator struct {
	store Store
}

// NewMutator creates a mutator over store.
func NewMutator(store Store) *Mutator {
	return &Mutator{store: store}
}

// Append reads the current value of scope, appends dir and writes the combined value
// back to that scope only. It reports false without writing when dir is already listed.
// A non-nil error is a recoverable degradation: the caller warns and carries on.
func (m *Mutator) Append(dir string, scope Scope) (bool, error) {
	current, err := m.store.Get(scope)
	if err != nil {
		return false, fmt.Errorf("read %s PATH before append: %w", scope, err)
	}

	if Contains(current, dir) {
		logger.Debug("[DEBUG] %s already on %s PATH\n", dir, scope)
		return false, nil
	}

	updated := dir
	if trimmed := strings.TrimRight(current, string(filepath.ListSeparator)); trimmed != "" {
		updated = trimmed + string(filepath.ListSeparator) + dir
	}

	if err := m.store.Set(scope, updated); err != nil {
		return false, fmt.Errorf("append %s to %s PATH: %w", dir, scope, err)
	}
	logger.Debug("[DEBUG] Appended %s to %s PATH\n", dir, scope)
	return true, nil
}

// Contains reports whether dir is an entry of the PATH value.
// Comparison ignores trailing separators, and case on Windows.
func Contains(value, dir string) bool {
	want := normalize(dir)
	for _, d := range SplitList(value) {
		if normalize(d) == want {
			return true
		}
	}
	return false
}

func normalize(dir string) string {
	dir = strings.TrimRight(strings.TrimSpace(dir), `/\`)
	if runtime.GOOS == "windows" {
		return strings.ToLower(dir)
	}
	return dir
}

// Package envpath keeps the running process's PATH consistent with the persistent
// environment store that installers and PATH appends mutate.
package envpath

import (
	"errors"
	"fmt"
	"strings"
)

// Scope selects which persistent PATH entry is read or written.
type Scope int

const (
	Machine Scope = iota
	User
)

func (s Scope) String() string {
	switch s {
	case Machine:
		return "machine"
	case User:
		return "user"
	}
	return fmt.Sprintf("Scope(%d)", int(s))
}

// ParseScope maps "machine" or "user" to a Scope.
func ParseScope(name string) (Scope, error) {
	switch strings.ToLower(name) {
	case "machine":
		return Machine, nil
	case "user":
		return User, nil
	}
	return Machine, fmt.Errorf("unknown PATH scope %q", name)
}

// ErrNotPersistent is returned by stores that applied a write to the current session
// only; the change will not survive the process.
var ErrNotPersistent = errors.New("PATH change is not persisted on this platform")

// Store is the operating system's persistent environment authority.
type Store interface {
	// Get returns the raw persistent PATH value for scope (references unexpanded).
	Get(scope Scope) (string, error)
	// Set replaces the persistent PATH value for scope only.
	Set(scope Scope, value string) error
	// Expand resolves environment references inside a raw value.
	Expand(raw string) (string, error)
}

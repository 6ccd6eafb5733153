//go:build !windows

package envpath

import (
	"fmt"
	"os"
	"runtime"
	"sync"
)

// SessionStore stands in for a persistent store on platforms without one.
// The PATH seen at startup is the machine scope; writes land in memory and
// are reported as ErrNotPersistent.
type SessionStore struct {
	mu     sync.Mutex
	values map[Scope]string
}

// NewSystemStore returns a session store seeded from the current PATH.
func NewSystemStore() Store {
	return &SessionStore{values: map[Scope]string{
		Machine: os.Getenv("PATH"),
		User:    "",
	}}
}

func (s *SessionStore) Get(scope Scope) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.values[scope], nil
}

func (s *SessionStore) Set(scope Scope, value string) error {
	s.mu.Lock()
	s.values[scope] = value
	s.mu.Unlock()
	return fmt.Errorf("%s PATH on %s: %w", scope, runtime.GOOS, ErrNotPersistent)
}

func (s *SessionStore) Expand(raw string) (string, error) {
	return os.ExpandEnv(raw), nil
}

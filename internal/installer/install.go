package installer

import (
	"context"
	"errors"
	"fmt"

	"flutter-bootstrap/internal/envpath"
	"flutter-bootstrap/internal/logger"
)

// Channel is one way of getting a tool onto the machine.
type Channel interface {
	// Name is used in log lines ("winget", "manual download").
	Name() string
	// Install performs the channel's action. A nil error only means the action
	// itself reported success; the locator decides whether the tool is present.
	Install(ctx context.Context) error
	// Cleanup runs after the tool became locatable through this channel.
	Cleanup() error
}

// DirProvider is implemented by channels that know where they put the executable.
// Those directories are searched when the refreshed PATH still does not expose the tool,
// which happens when persisting the PATH change failed.
type DirProvider interface {
	ProvidedDirs() []string
}

// Status classifies an install attempt.
type Status int

const (
	// StatusFound means the tool was already locatable.
	StatusFound Status = iota
	// StatusInstalled means a channel made the tool locatable.
	StatusInstalled
	// StatusFailed means every channel was exhausted, or PATH could not be refreshed.
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusFound:
		return "found"
	case StatusInstalled:
		return "installed"
	case StatusFailed:
		return "failed"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// Outcome is the result of driving one tool.
type Outcome struct {
	Tool    string
	Status  Status
	Channel string // channel that installed the tool
	Path    string // absolute executable location when not failed
	Err     error
}

// Ok reports whether the tool is usable.
func (o Outcome) Ok() bool {
	return o.Status != StatusFailed
}

// ErrChannelsExhausted is the Outcome error when no channel made the tool locatable.
var ErrChannelsExhausted = errors.New("all installation channels failed")

// Target describes the tool being installed.
type Target struct {
	Name       string // display name, e.g. "Git"
	Executable string // name looked up on PATH, e.g. "git"
	ManualURL  string
}

// Install drives target from absent to present. It refreshes PATH and returns
// StatusFound when the tool is already there; otherwise it tries channels in order,
// refreshing and re-locating after each attempt, and stops at the first success.
func (i *Installer) Install(ctx context.Context, target Target, channels []Channel) Outcome {
	out := Outcome{Tool: target.Name}

	logger.Info("[INFO] Checking for %s...\n", target.Name)
	path, ok, err := i.locate(target.Executable)
	if err != nil {
		out.Status, out.Err = StatusFailed, err
		logger.Critical("[CRITICAL] Cannot read the system PATH: %v\n", err)
		return out
	}
	if ok {
		logger.Info("[INFO] %s found at %s\n", target.Name, path)
		out.Status, out.Path = StatusFound, path
		return out
	}

	for idx, ch := range channels {
		if err := ctx.Err(); err != nil {
			out.Status, out.Err = StatusFailed, err
			return out
		}
		logger.Info("[INFO] Attempting to install %s with %s...\n", target.Name, ch.Name())
		actionErr := ch.Install(ctx)
		if actionErr != nil {
			logger.Debug("[DEBUG] %s channel %s: %v\n", target.Name, ch.Name(), actionErr)
		}

		path, ok, err := i.locate(target.Executable)
		if err != nil {
			out.Status, out.Err = StatusFailed, err
			logger.Critical("[CRITICAL] Cannot read the system PATH: %v\n", err)
			return out
		}
		if actionErr == nil && !ok {
			path, ok = i.locateProvided(target, ch)
		}

		if actionErr == nil && ok {
			logger.Info("[INFO] %s successfully installed with %s\n", target.Name, ch.Name())
			if err := ch.Cleanup(); err != nil {
				logger.Warn("[WARN] Cleanup after %s failed: %v\n", ch.Name(), err)
			}
			out.Status, out.Channel, out.Path = StatusInstalled, ch.Name(), path
			return out
		}

		if ctx.Err() != nil {
			out.Status, out.Err = StatusFailed, ctx.Err()
			return out
		}
		if idx < len(channels)-1 {
			logger.Warn("[WARN] Failed to install %s with %s, trying %s\n", target.Name, ch.Name(), channels[idx+1].Name())
			continue
		}
		out.Err = fmt.Errorf("%s: %w", target.Name, ErrChannelsExhausted)
		if actionErr != nil {
			out.Err = fmt.Errorf("%s: %w: %w", target.Name, ErrChannelsExhausted, actionErr)
		}
	}

	if out.Err == nil {
		out.Err = fmt.Errorf("%s: %w", target.Name, ErrChannelsExhausted)
	}
	out.Status = StatusFailed
	logger.Error("[ERROR] Failed to install %s, install manually from %s and try running again\n", target.Name, target.ManualURL)
	return out
}

func (i *Installer) locate(executable string) (string, bool, error) {
	snap, err := i.env.Mirror.Refresh()
	if err != nil {
		return "", false, err
	}
	path, ok := i.env.Locator.Locate(executable, snap.Path)
	if !ok {
		logger.Debug("[DEBUG] %s not found in %d PATH entries\n", executable, len(snap.Dirs()))
	}
	return path, ok, nil
}

func (i *Installer) locateProvided(target Target, ch Channel) (string, bool) {
	dp, ok := ch.(DirProvider)
	if !ok {
		return "", false
	}
	for _, dir := range dp.ProvidedDirs() {
		if path, ok := i.env.Locator.Locate(target.Executable, dir); ok {
			logger.Warn("[WARN] %s is not on PATH yet; using %s for this run\n", target.Name, path)
			return path, true
		}
	}
	return "", false
}

// scopeOf maps a manifest scope to an envpath scope, defaulting to user.
func scopeOf(name string) envpath.Scope {
	if s, err := envpath.ParseScope(name); err == nil {
		return s
	}
	return envpath.User
}

package installer

import (
	"context"
	"errors"
	"fmt"

	"flutter-bootstrap/internal/config"
	"flutter-bootstrap/internal/envpath"
	"flutter-bootstrap/internal/logger"
)

var (
	// ErrAborted is returned by Session.Run when a step failed terminally.
	ErrAborted = errors.New("installation aborted")
	// ErrDeclined marks an optional step the user chose to skip.
	ErrDeclined = errors.New("declined by user")
)

// Resolved holds executable locations discovered during a run. Each field is set
// once, by the step that made the tool available.
type Resolved struct {
	Git     string // used by the Flutter clone
	Flutter string // runs the license and doctor subcommands
	SDKMgr  string // empty when Android was declined
}

// Session sequences the toolchain installation for one invocation.
type Session struct {
	inst     *Installer
	cfg      *config.Config
	resolved Resolved // filled in step order, never rewritten
}

// NewSession creates a session over env using the given manifest.
func NewSession(env *Env, cfg *config.Config) *Session {
	return &Session{inst: New(env), cfg: cfg}
}

// Resolved returns the executable locations found so far.
func (s *Session) Resolved() Resolved {
	return s.resolved
}

// Run installs Git, then Flutter, then optionally the Android command-line tools, and
// finishes with the Flutter diagnostics. The returned error wraps ErrAborted when the
// run failed; a declined optional step is not an error.
func (s *Session) Run(ctx context.Context) error {
	logger.Debug("[DEBUG] Starting run with work dir %s\n", s.inst.env.WorkDir)

	git, err := s.installTool(ctx, s.cfg.Git, "")
	if err != nil {
		return err
	}
	s.resolved.Git = git

	flutter, err := s.installTool(ctx, s.cfg.Flutter.Tool, s.resolved.Git)
	if err != nil {
		return err
	}
	s.resolved.Flutter = flutter

	switch err := s.android(ctx); {
	case errors.Is(err, ErrDeclined):
		logger.Info("[INFO] Skipping %s\n", s.cfg.Android.Name)
	case err != nil:
		return err
	}

	return s.diagnose(ctx)
}

func (s *Session) installTool(ctx context.Context, tool config.Tool, git string) (string, error) {
	channels, err := s.inst.Channels(tool, git)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrAborted, err)
	}
	out := s.inst.Install(ctx, Target{Name: tool.Name, Executable: tool.Executable, ManualURL: tool.ManualURL}, channels)
	if !out.Ok() {
		return "", fmt.Errorf("%w: %w", ErrAborted, out.Err)
	}
	if out.Status == StatusInstalled {
		logger.Info("[INFO] %s installed at %s via %s\n", tool.Name, out.Path, out.Channel)
	} else {
		logger.Debug("[DEBUG] %s is %s at %s\n", tool.Name, out.Status, out.Path)
	}
	return out.Path, nil
}

// android installs the command-line tools and the SDK packages. It returns ErrDeclined
// without touching anything when the user does not opt in.
func (s *Session) android(ctx context.Context) error {
	a := s.cfg.Android
	if !s.inst.env.Prompt.Confirm(a.Prompt) {
		return ErrDeclined
	}

	sdkmanager, err := s.installTool(ctx, a.Tool, s.resolved.Git)
	if err != nil {
		return err
	}
	s.resolved.SDKMgr = sdkmanager
	root := "--sdk_root=" + a.SDKRoot

	logger.Info("[INFO] Installing Android SDK packages...\n")
	res, err := s.inst.env.Commands.Run(ctx, sdkmanager, append([]string{root}, a.Packages...)...)
	if err != nil {
		logger.Error("[ERROR] Could not run sdkmanager: %v\n", err)
		return fmt.Errorf("%w: sdkmanager: %w", ErrAborted, err)
	}
	if !res.Success() {
		logger.Error("[ERROR] sdkmanager exited with status %d, install the packages manually from %s\n", res.ExitCode, a.ManualURL)
		return fmt.Errorf("%w: sdkmanager exited with status %d", ErrAborted, res.ExitCode)
	}
	logger.Info("[INFO] Installed Android SDK packages\n")

	if a.PlatformToolsDir != "" {
		s.inst.env.appendPath(a.PlatformToolsDir, envpath.User)
		if _, err := s.inst.env.Mirror.Refresh(); err != nil {
			logger.Critical("[CRITICAL] Cannot read the system PATH: %v\n", err)
			return fmt.Errorf("%w: %w", ErrAborted, err)
		}
	}

	logger.Info("[INFO] Updating Android SDK packages...\n")
	res, err = s.inst.env.Commands.Run(ctx, sdkmanager, root, "--update")
	switch {
	case err != nil:
		logger.Warn("[WARN] sdkmanager --update failed: %v\n", err)
	case !res.Success():
		logger.Warn("[WARN] sdkmanager --update exited with status %d\n", res.ExitCode)
	}
	return ctxErr(ctx)
}

// diagnose runs the license acceptance and flutter doctor. Neither result aborts the run.
func (s *Session) diagnose(ctx context.Context) error {
	f := s.cfg.Flutter
	if len(f.Licenses.Args) > 0 {
		logger.Info("[INFO] Accepting Android licenses...\n")
		res, err := s.inst.env.Commands.Run(ctx, s.resolved.Flutter, f.Licenses.Args...)
		if err != nil || !res.Success() {
			logger.Error("[ERROR] Failed to accept Android licenses, see %s\n", f.Licenses.ManualURL)
		}
		if err := ctxErr(ctx); err != nil {
			return err
		}
	}

	logger.Info("[INFO] Running flutter doctor...\n")
	if _, err := s.inst.env.Commands.Run(ctx, s.resolved.Flutter, f.Doctor.Args...); err != nil {
		logger.Debug("[DEBUG] flutter doctor: %v\n", err)
	}
	return ctxErr(ctx)
}

func ctxErr(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrAborted, err)
	}
	return nil
}

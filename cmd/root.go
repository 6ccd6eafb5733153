package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"flutter-bootstrap/internal/command"
	"flutter-bootstrap/internal/config"
	"flutter-bootstrap/internal/download"
	"flutter-bootstrap/internal/envpath"
	"flutter-bootstrap/internal/installer"
	"flutter-bootstrap/internal/locator"
	"flutter-bootstrap/internal/logger"
	"flutter-bootstrap/internal/prompt"
)

// verbosity is the -v flag value. Implementing pflag.Value lets cobra reject
// unknown levels while parsing.
type verbosity struct {
	level logger.Level
}

var _ pflag.Value = (*verbosity)(nil)

func (v *verbosity) String() string { return v.level.String() }

func (v *verbosity) Set(s string) error {
	lvl, err := logger.ParseLevel(s)
	if err != nil {
		return err
	}
	v.level = lvl
	return nil
}

func (v *verbosity) Type() string { return "level" }

// runFunc performs the installation once flags are parsed.
type runFunc func(ctx context.Context, p *prompt.Prompter) error

// newRootCmd builds the `flutter-bootstrap` command. run is swapped out in tests.
func newRootCmd(p *prompt.Prompter, run runFunc) *cobra.Command {
	level := &verbosity{level: logger.LevelInfo}

	root := &cobra.Command{
		Use:   "flutter-bootstrap",
		Short: "Install Git, the Flutter SDK and optionally the Android command-line tools",
		Long: `flutter-bootstrap provisions a Flutter development toolchain on a clean machine.

It installs Git (winget first, then the latest Git for Windows installer), clones the
Flutter SDK stable branch, optionally installs the Android command-line tools and SDK
packages, updates PATH and finishes with flutter doctor. Re-running it is safe: tools
that are already reachable on PATH are skipped.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,

		// Logging is configured before the run so every later line honors -v.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return logger.Init(level.String())
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), p)
		},
	}
	root.Flags().VarP(level, "verbosity", "v", fmt.Sprintf("log level, one of %v", logger.Levels))
	return root
}

// Execute runs the root command and exits. The process always pauses before exiting
// so a window opened by double-click stays readable.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	p := prompt.NewStdio()

	code := 0
	if err := newRootCmd(p, runSession).ExecuteContext(ctx); err != nil {
		code = 1
		report(err)
	}
	stop()

	p.Pause()
	os.Exit(code)
}

func report(err error) {
	switch {
	case errors.Is(err, context.Canceled):
		logger.Error("[ERROR] Interrupted, run flutter-bootstrap again to resume\n")
	case errors.Is(err, installer.ErrAborted):
		logger.Error("[ERROR] Setup did not complete: %v\n", err)
	default:
		logger.Error("[ERROR] %v\n", err)
	}
}

// runSession wires the real machine into an installer session and runs it.
func runSession(ctx context.Context, p *prompt.Prompter) error {
	cfg, err := config.Default()
	if err != nil {
		return err
	}

	fs := afero.NewOsFs()
	if err := fs.MkdirAll(cfg.WorkDir, 0o755); err != nil {
		return fmt.Errorf("create work directory %s: %w", cfg.WorkDir, err)
	}

	// Children read stdin through the prompter so answers typed or piped ahead
	// are not swallowed by its buffer.
	runner := command.NewExecRunner()
	runner.Input = p.Stdin

	store := envpath.NewSystemStore()
	env := &installer.Env{
		Fs:       fs,
		Mirror:   envpath.NewMirror(store),
		Paths:    envpath.NewMutator(store),
		Locator:  locator.New(fs),
		Commands: runner,
		Downloader: download.NewClient(fs, func(name string) download.Progress {
			return download.NewProgress(name, os.Stdout)
		}),
		Prompt:  p,
		WorkDir: cfg.WorkDir,
	}

	if err := installer.NewSession(env, cfg).Run(ctx); err != nil {
		return err
	}
	logger.Info("[INFO] Setup complete\n")
	return nil
}

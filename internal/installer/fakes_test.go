package installer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/spf13/afero"

	"flutter-bootstrap/internal/command"
	"flutter-bootstrap/internal/config"
	"flutter-bootstrap/internal/envpath"
	"flutter-bootstrap/internal/locator"
	"flutter-bootstrap/internal/logger"
)

// fakePaths is an in-memory persistent PATH store acting as both Mirror and PathAppender.
type fakePaths struct {
	machine    []string
	user       []string
	denied     map[envpath.Scope]bool
	refreshErr error

	refreshes int
	appends   []string // "scope:dir" for every successful write
}

func (p *fakePaths) Refresh() (envpath.Snapshot, error) {
	p.refreshes++
	if p.refreshErr != nil {
		return envpath.Snapshot{}, p.refreshErr
	}
	dirs := append(append([]string{}, p.machine...), p.user...)
	return envpath.Snapshot{Path: strings.Join(dirs, ":")}, nil
}

func (p *fakePaths) Append(dir string, scope envpath.Scope) (bool, error) {
	if p.denied[scope] {
		return false, errors.New("access is denied")
	}
	list := &p.user
	if scope == envpath.Machine {
		list = &p.machine
	}
	for _, d := range *list {
		if d == dir {
			return false, nil
		}
	}
	*list = append(*list, dir)
	p.appends = append(p.appends, fmt.Sprintf("%s:%s", scope, dir))
	return true, nil
}

type call struct {
	name string
	args []string
}

func (c call) String() string {
	return path.Base(c.name) + " " + strings.Join(c.args, " ")
}

// fakeRunner records every command and answers with per-program handlers.
// Programs without a handler exit 0.
type fakeRunner struct {
	handlers map[string]func(args []string) (command.Result, error)
	calls    []call
}

func (r *fakeRunner) Run(_ context.Context, name string, args ...string) (command.Result, error) {
	r.calls = append(r.calls, call{name: name, args: args})
	if h, ok := r.handlers[path.Base(name)]; ok {
		return h(args)
	}
	return command.Result{}, nil
}

func (r *fakeRunner) on(program string, h func(args []string) (command.Result, error)) {
	if r.handlers == nil {
		r.handlers = map[string]func(args []string) (command.Result, error){}
	}
	r.handlers[program] = h
}

func (r *fakeRunner) called(program string) []call {
	var out []call
	for _, c := range r.calls {
		if path.Base(c.name) == program {
			out = append(out, c)
		}
	}
	return out
}

// fakeDownloader serves canned pages and writes canned artifacts into fs.
type fakeDownloader struct {
	fs        afero.Fs
	pages     map[string]string
	artifacts map[string][]byte

	fetched    []string
	downloaded []string
}

func (d *fakeDownloader) Fetch(_ context.Context, url string) (string, error) {
	d.fetched = append(d.fetched, url)
	body, ok := d.pages[url]
	if !ok {
		return "", fmt.Errorf("GET %s: HTTP 404", url)
	}
	return body, nil
}

func (d *fakeDownloader) Download(_ context.Context, url, dir string) (string, error) {
	d.downloaded = append(d.downloaded, url)
	data, ok := d.artifacts[url]
	if !ok {
		return "", fmt.Errorf("GET %s: HTTP 404", url)
	}
	dest := path.Join(dir, path.Base(url))
	if err := afero.WriteFile(d.fs, dest, data, 0o644); err != nil {
		return "", err
	}
	return dest, nil
}

// fakePrompt answers questions in order; once answers run out it declines.
type fakePrompt struct {
	answers []bool
	asked   []string
}

func (p *fakePrompt) Confirm(question string) bool {
	p.asked = append(p.asked, question)
	if len(p.answers) == 0 {
		return false
	}
	ans := p.answers[0]
	p.answers = p.answers[1:]
	return ans
}

// world wires the fakes into an Env over an in-memory filesystem.
type world struct {
	fs     afero.Fs
	paths  *fakePaths
	runner *fakeRunner
	dl     *fakeDownloader
	prompt *fakePrompt
	env    *Env
}

func newWorld(t *testing.T) *world {
	t.Helper()
	logger.SetOutput(io.Discard)
	t.Cleanup(func() { logger.SetOutput(color.Output) })

	fs := afero.NewMemMapFs()
	w := &world{
		fs:     fs,
		paths:  &fakePaths{},
		runner: &fakeRunner{},
		dl:     &fakeDownloader{fs: fs, pages: map[string]string{}, artifacts: map[string][]byte{}},
		prompt: &fakePrompt{},
	}
	w.env = &Env{
		Fs:         fs,
		Mirror:     w.paths,
		Paths:      w.paths,
		Locator:    locator.NewUnix(fs),
		Commands:   w.runner,
		Downloader: w.dl,
		Prompt:     w.prompt,
		WorkDir:    "/tmp",
	}
	return w
}

// install places an executable in dir and optionally puts dir on the machine PATH.
func (w *world) install(t *testing.T, dir, name string, onPath bool) string {
	t.Helper()
	p := path.Join(dir, name)
	if err := afero.WriteFile(w.fs, p, []byte("#!/bin/sh\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	if onPath {
		w.paths.machine = append(w.paths.machine, dir)
	}
	return p
}

const (
	gitPageURL     = "https://git.test/releases/latest"
	gitArtifactURL = "https://git.test/download/v2.44.0/Git-2.44.0-64-bit.exe"
	studioURL      = "https://android.test/studio"
	toolsURL       = "https://dl.test/commandlinetools-win-11076708_latest.zip"
)

func testConfig() *config.Config {
	return &config.Config{
		WorkDir: "/tmp",
		Git: config.Tool{
			Name:       "Git",
			Executable: "git",
			ManualURL:  "https://git-scm.com/download/win",
			Channels: []config.Channel{
				{Kind: config.KindWinget, Name: "winget", PackageID: "Git.Git"},
				{Kind: config.KindDownload, Name: "manual download", Args: []string{"/VERYSILENT"}, Resolvers: []config.Resolver{{
					Kind:    config.ResolverPage,
					URL:     gitPageURL,
					Pattern: `/download/\S*64-bit\.exe`,
					Prefix:  "https://git.test",
				}}},
			},
		},
		Flutter: config.Flutter{
			Tool: config.Tool{
				Name:       "Flutter SDK",
				Executable: "flutter",
				ManualURL:  "https://docs.flutter.dev/get-started/install/windows",
				Channels: []config.Channel{{
					Kind:   config.KindClone,
					Name:   "git clone",
					Repo:   "https://github.com/flutter/flutter.git",
					Branch: "stable",
					Dest:   "/src/flutter",
					BinDir: "/src/flutter/bin",
					Scope:  config.ScopeMachine,
				}},
			},
			Licenses: config.Subcommand{Args: []string{"doctor", "--android-licenses"}, ManualURL: "https://docs.flutter.dev/android-setup"},
			Doctor:   config.Subcommand{Args: []string{"doctor"}},
		},
		Android: config.Android{
			Tool: config.Tool{
				Name:       "Android command-line tools",
				Executable: "sdkmanager",
				ManualURL:  "https://developer.android.com/studio#command-line-tools-only",
				Channels: []config.Channel{{
					Kind: config.KindArchive,
					Name: "command-line tools download",
					Resolvers: []config.Resolver{{
						Kind:    config.ResolverPage,
						URL:     studioURL,
						Pattern: `https://dl\.test/commandlinetools-win-[0-9]+_latest\.zip`,
					}},
					Dest:     "/sdk/cmdline-tools",
					RenameTo: "latest",
					BinDir:   "bin",
					Scope:    config.ScopeUser,
				}},
			},
			Prompt:           "Install the Android SDK command-line tools?",
			SDKRoot:          "/sdk",
			Packages:         []string{"platform-tools", "platforms;android-33", "build-tools;33.0.2", "emulator", "extras;google;usb_driver"},
			PlatformToolsDir: "/sdk/platform-tools",
		},
	}
}

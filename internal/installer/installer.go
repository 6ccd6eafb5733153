// Package installer provisions the Flutter toolchain: it drives each tool through
// an ordered list of installation channels and sequences the tools in a run.
package installer

import (
	"context"

	"github.com/spf13/afero"

	"flutter-bootstrap/internal/command"
	"flutter-bootstrap/internal/envpath"
)

// Mirror refreshes the process view of PATH from the persistent store.
type Mirror interface {
	Refresh() (envpath.Snapshot, error)
}

// PathAppender persists a directory onto a PATH scope.
type PathAppender interface {
	Append(dir string, scope envpath.Scope) (bool, error)
}

// Locator finds an executable on an explicit PATH value.
type Locator interface {
	Locate(name, pathValue string) (string, bool)
}

// Downloader fetches pages and artifacts.
type Downloader interface {
	Fetch(ctx context.Context, url string) (string, error)
	Download(ctx context.Context, url, dir string) (string, error)
}

// Confirmer asks the user a yes/no question.
type Confirmer interface {
	Confirm(question string) bool
}

// Env bundles the capabilities the installer works through.
type Env struct {
	// Fs holds checkouts, extracted SDKs and downloads.
	Fs afero.Fs
	// Mirror is refreshed before every locate.
	Mirror Mirror
	// Paths persists PATH additions made by clone and archive channels.
	Paths PathAppender
	// Locator is only ever given a freshly mirrored PATH value.
	Locator Locator
	// Commands runs installers, git, sdkmanager and flutter.
	Commands command.Runner
	// Downloader fetches landing pages for resolvers and downloads artifacts.
	Downloader Downloader
	// Prompt asks the Android opt-in and overwrite questions.
	Prompt Confirmer
	// WorkDir receives downloaded installers and archives.
	WorkDir string
}

// Installer runs the channel-fallback algorithm against an Env.
type Installer struct {
	env *Env // shared with every channel it builds
}

// New creates an installer.
func New(env *Env) *Installer {
	return &Installer{env: env}
}

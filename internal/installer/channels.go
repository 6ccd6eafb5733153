package installer

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"flutter-bootstrap/internal/config"
	"flutter-bootstrap/internal/envpath"
	"flutter-bootstrap/internal/logger"
	"flutter-bootstrap/internal/resolver"
)

// Channels builds the channel list for a tool from the manifest.
// git is the resolved VCS client, needed by clone channels.
func (i *Installer) Channels(tool config.Tool, git string) ([]Channel, error) {
	channels := make([]Channel, 0, len(tool.Channels))
	for _, c := range tool.Channels {
		name := c.Name
		if name == "" {
			name = c.Kind
		}
		switch c.Kind {
		case config.KindWinget:
			channels = append(channels, &wingetChannel{env: i.env, name: name, id: c.PackageID})
		case config.KindDownload:
			chain, err := resolver.FromConfig(c.Resolvers, i.env.Downloader)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", tool.Name, err)
			}
			channels = append(channels, &downloadChannel{env: i.env, name: name, resolver: chain, args: c.Args})
		case config.KindClone:
			channels = append(channels, &cloneChannel{
				env: i.env, name: name, git: git,
				repo: c.Repo, branch: c.Branch, dest: c.Dest, binDir: c.BinDir, scope: scopeOf(c.Scope),
			})
		case config.KindArchive:
			chain, err := resolver.FromConfig(c.Resolvers, i.env.Downloader)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", tool.Name, err)
			}
			channels = append(channels, &archiveChannel{
				env: i.env, name: name, resolver: chain,
				dest: c.Dest, renameTo: c.RenameTo, binDir: c.BinDir, scope: scopeOf(c.Scope),
			})
		default:
			return nil, fmt.Errorf("%s: unknown channel kind %q", tool.Name, c.Kind)
		}
	}
	return channels, nil
}

// run executes a command and turns a non-zero exit into an error.
func (e *Env) run(ctx context.Context, name string, args ...string) error {
	res, err := e.Commands.Run(ctx, name, args...)
	if err != nil {
		return err
	}
	if !res.Success() {
		return fmt.Errorf("%s %s exited with status %d", filepath.Base(name), strings.Join(args, " "), res.ExitCode)
	}
	return nil
}

// appendPath persists dir on scope. Failure only degrades the run: the caller keeps
// going and the user is told to fix PATH by hand.
func (e *Env) appendPath(dir string, scope envpath.Scope) {
	logger.Info("[INFO] Attempting to update %s PATH with %s...\n", scope, dir)
	added, err := e.Paths.Append(dir, scope)
	if err != nil {
		logger.Warn("[WARN] Could not update the %s PATH: %v\n", scope, err)
		logger.Warn("[WARN] Add %s to your PATH manually\n", dir)
		return
	}
	if added {
		logger.Info("[INFO] Updated PATH\n")
	} else {
		logger.Info("[INFO] %s is already on the %s PATH\n", dir, scope)
	}
}

// wingetChannel installs a package from the winget source.
type wingetChannel struct {
	env  *Env
	name string
	id   string
}

func (c *wingetChannel) Name() string { return c.name }

func (c *wingetChannel) Install(ctx context.Context) error {
	return c.env.run(ctx, "winget", "install", "--id", c.id, "-e", "--source", "winget")
}

func (c *wingetChannel) Cleanup() error { return nil }

// downloadChannel fetches the latest installer and runs it.
type downloadChannel struct {
	env      *Env
	name     string
	resolver resolver.ArtifactResolver
	args     []string

	artifact string
}

func (c *downloadChannel) Name() string { return c.name }

func (c *downloadChannel) Install(ctx context.Context) error {
	url, err := c.resolver.Resolve(ctx)
	if err != nil {
		return fmt.Errorf("resolve installer URL: %w", err)
	}
	logger.Debug("[DEBUG] Resolved installer URL: %s\n", url)

	c.artifact, err = c.env.Downloader.Download(ctx, url, c.env.WorkDir)
	if err != nil {
		return err
	}
	return c.env.run(ctx, c.artifact, c.args...)
}

// Cleanup deletes the downloaded installer. Failed attempts keep it for diagnosis.
func (c *downloadChannel) Cleanup() error {
	if c.artifact == "" {
		return nil
	}
	logger.Debug("[DEBUG] Removing %s\n", c.artifact)
	return c.env.Fs.Remove(c.artifact)
}

// cloneChannel checks a repository out with git and puts its bin directory on PATH.
type cloneChannel struct {
	env    *Env
	name   string
	git    string
	repo   string
	branch string
	dest   string
	binDir string
	scope  envpath.Scope
}

func (c *cloneChannel) Name() string { return c.name }

func (c *cloneChannel) Install(ctx context.Context) error {
	if ok, _ := afero.DirExists(c.env.Fs, filepath.Join(c.dest, ".git")); ok {
		logger.Info("[INFO] %s already contains a checkout, skipping clone\n", c.dest)
	} else {
		logger.Info("[INFO] Attempting to clone %s in %s...\n", c.repo, c.dest)
		args := []string{"clone", c.repo}
		if c.branch != "" {
			args = append(args, "-b", c.branch)
		}
		if err := c.env.run(ctx, c.git, append(args, c.dest)...); err != nil {
			return err
		}
		logger.Info("[INFO] Cloned %s to %s\n", c.repo, c.dest)
	}

	if c.binDir != "" {
		c.env.appendPath(c.binDir, c.scope)
	}
	return nil
}

func (c *cloneChannel) Cleanup() error { return nil }

func (c *cloneChannel) ProvidedDirs() []string {
	if c.binDir == "" {
		return nil
	}
	return []string{c.binDir}
}

// archiveChannel downloads an archive, unpacks it under dest as renameTo and puts
// renameTo/binDir on PATH. An existing renameTo directory is only replaced after
// the user agrees.
type archiveChannel struct {
	env      *Env
	name     string
	resolver resolver.ArtifactResolver
	dest     string
	renameTo string
	binDir   string
	scope    envpath.Scope

	artifact string
}

func (c *archiveChannel) Name() string { return c.name }

func (c *archiveChannel) target() string {
	return filepath.Join(c.dest, c.renameTo)
}

func (c *archiveChannel) bin() string {
	return filepath.Join(c.target(), c.binDir)
}

func (c *archiveChannel) Install(ctx context.Context) error {
	target := c.target()
	exists, err := afero.DirExists(c.env.Fs, target)
	if err != nil {
		return fmt.Errorf("inspect %s: %w", target, err)
	}

	if exists && !c.env.Prompt.Confirm(fmt.Sprintf("%s already exists. Overwrite it?", target)) {
		logger.Info("[INFO] Keeping existing %s, skipping extraction\n", target)
	} else if err := c.replace(ctx, target, exists); err != nil {
		return err
	}

	c.env.appendPath(c.bin(), c.scope)
	return nil
}

func (c *archiveChannel) replace(ctx context.Context, target string, exists bool) error {
	url, err := c.resolver.Resolve(ctx)
	if err != nil {
		return fmt.Errorf("resolve archive URL: %w", err)
	}
	logger.Debug("[DEBUG] Resolved archive URL: %s\n", url)

	c.artifact, err = c.env.Downloader.Download(ctx, url, c.env.WorkDir)
	if err != nil {
		return err
	}

	fs := c.env.Fs
	if err := fs.MkdirAll(c.dest, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", c.dest, err)
	}
	staging, err := afero.TempDir(fs, c.dest, ".extract-")
	if err != nil {
		return fmt.Errorf("create staging directory: %w", err)
	}
	defer fs.RemoveAll(staging)

	logger.Info("[INFO] Extracting %s to %s...\n", filepath.Base(c.artifact), c.dest)
	top, err := ExtractArchive(fs, c.artifact, staging)
	if err != nil {
		return fmt.Errorf("extract %s: %w", c.artifact, err)
	}
	if top == "" {
		return fmt.Errorf("extract %s: archive is empty", c.artifact)
	}

	if exists {
		logger.Info("[INFO] Removing existing %s\n", target)
		if err := fs.RemoveAll(target); err != nil {
			return fmt.Errorf("remove %s: %w", target, err)
		}
	}
	if err := fs.Rename(filepath.Join(staging, top), target); err != nil {
		return fmt.Errorf("rename %s to %s: %w", top, c.renameTo, err)
	}
	logger.Info("[INFO] Extracted to %s\n", target)
	return nil
}

// Cleanup deletes the downloaded archive.
func (c *archiveChannel) Cleanup() error {
	if c.artifact == "" {
		return nil
	}
	logger.Debug("[DEBUG] Removing %s\n", c.artifact)
	return c.env.Fs.Remove(c.artifact)
}

func (c *archiveChannel) ProvidedDirs() []string {
	return []string{c.bin()}
}

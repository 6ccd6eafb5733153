package config

import (
	_ "embed"
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

//go:embed toolchain.yaml
var defaultManifest []byte

// Default parses the toolchain manifest compiled into the binary,
// expanding ${VAR} references against the process environment.
func Default() (*Config, error) {
	return Parse(defaultManifest, LookupEnv)
}

// Parse decodes a manifest, expands ${VAR} references with lookup and validates the result.
func Parse(raw []byte, lookup func(string) string) (*Config, error) {
	expanded := os.Expand(string(raw), lookup)

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal toolchain manifest: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LookupEnv resolves a manifest variable. LOCALAPPDATA and TEMP fall back to the
// platform's user cache and temp directories when unset.
func LookupEnv(name string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	switch name {
	case "LOCALAPPDATA":
		if dir, err := os.UserCacheDir(); err == nil {
			return dir
		}
	case "TEMP":
		return os.TempDir()
	}
	return ""
}

// Validate checks that every tool can be driven by the installer.
func (c *Config) Validate() error {
	for _, tool := range []Tool{c.Git, c.Flutter.Tool, c.Android.Tool} {
		if err := tool.validate(); err != nil {
			return err
		}
	}
	if c.Android.SDKRoot == "" {
		return fmt.Errorf("android: sdk_root is required")
	}
	if len(c.Flutter.Doctor.Args) == 0 {
		return fmt.Errorf("flutter: doctor args are required")
	}
	return nil
}

func (t Tool) validate() error {
	if t.Executable == "" {
		return fmt.Errorf("tool %q: executable is required", t.Name)
	}
	if len(t.Channels) == 0 {
		return fmt.Errorf("tool %q: at least one channel is required", t.Name)
	}
	for i, ch := range t.Channels {
		if err := ch.validate(); err != nil {
			return fmt.Errorf("tool %q channel %d: %w", t.Name, i, err)
		}
	}
	return nil
}

func (ch Channel) validate() error {
	switch ch.Kind {
	case KindWinget:
		if ch.PackageID == "" {
			return fmt.Errorf("winget channel needs package_id")
		}
	case KindDownload, KindArchive:
		if len(ch.Resolvers) == 0 {
			return fmt.Errorf("%s channel needs at least one resolver", ch.Kind)
		}
		for _, r := range ch.Resolvers {
			if err := r.validate(); err != nil {
				return err
			}
		}
		if ch.Kind == KindArchive && (ch.Dest == "" || ch.RenameTo == "") {
			return fmt.Errorf("archive channel needs dest and rename_to")
		}
	case KindClone:
		if ch.Repo == "" || ch.Dest == "" {
			return fmt.Errorf("clone channel needs repo and dest")
		}
	default:
		return fmt.Errorf("unknown channel kind %q", ch.Kind)
	}
	if ch.Scope != "" && ch.Scope != ScopeMachine && ch.Scope != ScopeUser {
		return fmt.Errorf("unknown PATH scope %q", ch.Scope)
	}
	return nil
}

func (r Resolver) validate() error {
	switch r.Kind {
	case ResolverPage:
		if r.URL == "" {
			return fmt.Errorf("page resolver needs url")
		}
	case ResolverGitHubRelease:
		if r.Repo == "" {
			return fmt.Errorf("github-release resolver needs repo")
		}
	default:
		return fmt.Errorf("unknown resolver kind %q", r.Kind)
	}
	if _, err := regexp.Compile(r.Pattern); err != nil {
		return fmt.Errorf("invalid resolver pattern %q: %w", r.Pattern, err)
	}
	return nil
}

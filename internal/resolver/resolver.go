// Package resolver discovers the download URL of the latest installer artifact.
package resolver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"flutter-bootstrap/internal/config"
	"flutter-bootstrap/internal/logger"
)

// ErrNoArtifact means the source was reachable but nothing matched.
var ErrNoArtifact = errors.New("no matching artifact found")

// Fetcher returns the body of a URL as text.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// ArtifactResolver turns a source description into a download URL.
type ArtifactResolver interface {
	Resolve(ctx context.Context) (string, error)
}

// Page matches Pattern against the content of a landing page.
type Page struct {
	Fetcher Fetcher
	URL     string
	Pattern *regexp.Regexp
	Prefix  string // prepended to relative matches
}

func (p *Page) Resolve(ctx context.Context) (string, error) {
	body, err := p.Fetcher.Fetch(ctx, p.URL)
	if err != nil {
		return "", err
	}
	match := p.Pattern.FindString(body)
	if match == "" {
		return "", fmt.Errorf("%s on %s: %w", p.Pattern, p.URL, ErrNoArtifact)
	}
	if strings.HasPrefix(match, "http://") || strings.HasPrefix(match, "https://") {
		return match, nil
	}
	return p.Prefix + match, nil
}

// GitHubRelease picks an asset of the latest release of Repo.
type GitHubRelease struct {
	Fetcher Fetcher
	Repo    string
	Pattern *regexp.Regexp
	APIBase string // https://api.github.com when empty
}

// githubRelease is the subset of the release JSON response used here.
type githubRelease struct {
	TagName string `json:"tag_name"`
	Assets  []struct {
		Name               string `json:"name"`
		BrowserDownloadURL string `json:"browser_download_url"`
	} `json:"assets"`
}

func (g *GitHubRelease) Resolve(ctx context.Context) (string, error) {
	base := g.APIBase
	if base == "" {
		base = "https://api.github.com"
	}
	url := fmt.Sprintf("%s/repos/%s/releases/latest", strings.TrimRight(base, "/"), g.Repo)
	body, err := g.Fetcher.Fetch(ctx, url)
	if err != nil {
		return "", err
	}

	var release githubRelease
	if err := json.Unmarshal([]byte(body), &release); err != nil {
		return "", fmt.Errorf("failed to decode GitHub release JSON for %s: %w", g.Repo, err)
	}
	logger.Debug("[DEBUG] Release tag: %s with %d assets\n", release.TagName, len(release.Assets))

	for _, asset := range release.Assets {
		if g.Pattern.MatchString(asset.Name) {
			logger.Debug("[DEBUG] Found matching asset: %s\n", asset.Name)
			return asset.BrowserDownloadURL, nil
		}
	}
	return "", fmt.Errorf("%s in release %s of %s: %w", g.Pattern, release.TagName, g.Repo, ErrNoArtifact)
}

// Chain tries resolvers in order and returns the first URL found.
type Chain []ArtifactResolver

func (c Chain) Resolve(ctx context.Context) (string, error) {
	if len(c) == 0 {
		return "", ErrNoArtifact
	}
	var errs []error
	for _, r := range c {
		url, err := r.Resolve(ctx)
		if err == nil {
			return url, nil
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		logger.Debug("[DEBUG] Resolver failed: %v\n", err)
		errs = append(errs, err)
	}
	return "", errors.Join(errs...)
}

// FromConfig builds a chain for the resolvers declared in the manifest.
func FromConfig(specs []config.Resolver, fetcher Fetcher) (Chain, error) {
	chain := make(Chain, 0, len(specs))
	for _, s := range specs {
		pattern, err := regexp.Compile(s.Pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid resolver pattern %q: %w", s.Pattern, err)
		}
		switch s.Kind {
		case config.ResolverPage:
			chain = append(chain, &Page{Fetcher: fetcher, URL: s.URL, Pattern: pattern, Prefix: s.Prefix})
		case config.ResolverGitHubRelease:
			chain = append(chain, &GitHubRelease{Fetcher: fetcher, Repo: s.Repo, Pattern: pattern})
		default:
			return nil, fmt.Errorf("unknown resolver kind %q", s.Kind)
		}
	}
	return chain, nil
}

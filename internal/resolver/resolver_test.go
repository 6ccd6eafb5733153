package resolver

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"flutter-bootstrap/internal/config"
)

// cannedFetcher serves fixed bodies per URL and records requests.
type cannedFetcher struct {
	bodies    map[string]string
	requested []string
}

func (c *cannedFetcher) Fetch(_ context.Context, url string) (string, error) {
	c.requested = append(c.requested, url)
	body, ok := c.bodies[url]
	if !ok {
		return "", errors.New("HTTP 404")
	}
	return body, nil
}

const gitPage = `<a href="/git-for-windows/git/releases/download/v2.44.0.windows.1/Git-2.44.0-64-bit.exe" rel="nofollow">`

func TestPage_RelativeMatch(t *testing.T) {
	f := &cannedFetcher{bodies: map[string]string{"https://github.com/git-for-windows/git/releases/latest": gitPage}}
	p := &Page{
		Fetcher: f,
		URL:     "https://github.com/git-for-windows/git/releases/latest",
		Pattern: regexp.MustCompile(`/git-for-windows/git/releases/download/\S*64-bit\.exe`),
		Prefix:  "https://github.com",
	}

	url, err := p.Resolve(context.Background())
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	want := "https://github.com/git-for-windows/git/releases/download/v2.44.0.windows.1/Git-2.44.0-64-bit.exe"
	if url != want {
		t.Errorf("Resolve() = %q, want %q", url, want)
	}
}

func TestPage_AbsoluteMatchIgnoresPrefix(t *testing.T) {
	f := &cannedFetcher{bodies: map[string]string{
		"https://developer.android.com/studio": `<a href="https://dl.google.com/android/repository/commandlinetools-win-11076708_latest.zip">`,
	}}
	p := &Page{
		Fetcher: f,
		URL:     "https://developer.android.com/studio",
		Pattern: regexp.MustCompile(`https://dl\.google\.com/android/repository/commandlinetools-win-[0-9]+_latest\.zip`),
		Prefix:  "https://ignored",
	}
	url, err := p.Resolve(context.Background())
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if url != "https://dl.google.com/android/repository/commandlinetools-win-11076708_latest.zip" {
		t.Errorf("Resolve() = %q", url)
	}
}

func TestPage_NoMatch(t *testing.T) {
	f := &cannedFetcher{bodies: map[string]string{"https://example.test/latest": "<html>nothing here</html>"}}
	p := &Page{Fetcher: f, URL: "https://example.test/latest", Pattern: regexp.MustCompile(`64-bit\.exe`)}

	_, err := p.Resolve(context.Background())
	if !errors.Is(err, ErrNoArtifact) {
		t.Fatalf("expected ErrNoArtifact, got %v", err)
	}
}

const releaseJSON = `{
  "tag_name": "v2.44.0.windows.1",
  "assets": [
    {"name": "Git-2.44.0-32-bit.exe", "browser_download_url": "https://example.test/32.exe"},
    {"name": "Git-2.44.0-64-bit.exe", "browser_download_url": "https://example.test/64.exe"}
  ]
}`

func TestGitHubRelease(t *testing.T) {
	f := &cannedFetcher{bodies: map[string]string{
		"https://api.test/repos/git-for-windows/git/releases/latest": releaseJSON,
	}}
	g := &GitHubRelease{
		Fetcher: f,
		Repo:    "git-for-windows/git",
		Pattern: regexp.MustCompile(`-64-bit\.exe$`),
		APIBase: "https://api.test/",
	}
	url, err := g.Resolve(context.Background())
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if url != "https://example.test/64.exe" {
		t.Errorf("Resolve() = %q", url)
	}
}

func TestGitHubRelease_NoAsset(t *testing.T) {
	f := &cannedFetcher{bodies: map[string]string{
		"https://api.github.com/repos/git-for-windows/git/releases/latest": releaseJSON,
	}}
	g := &GitHubRelease{Fetcher: f, Repo: "git-for-windows/git", Pattern: regexp.MustCompile(`arm64\.exe$`)}
	if _, err := g.Resolve(context.Background()); !errors.Is(err, ErrNoArtifact) {
		t.Fatalf("expected ErrNoArtifact, got %v", err)
	}
}

func TestGitHubRelease_BadJSON(t *testing.T) {
	f := &cannedFetcher{bodies: map[string]string{
		"https://api.github.com/repos/o/r/releases/latest": "not json",
	}}
	g := &GitHubRelease{Fetcher: f, Repo: "o/r", Pattern: regexp.MustCompile(`.`)}
	if _, err := g.Resolve(context.Background()); err == nil {
		t.Fatal("expected decode error")
	}
}

type staticResolver struct {
	url    string
	err    error
	called bool
}

func (s *staticResolver) Resolve(context.Context) (string, error) {
	s.called = true
	return s.url, s.err
}

func TestChain_FirstSuccessWins(t *testing.T) {
	first := &staticResolver{err: ErrNoArtifact}
	second := &staticResolver{url: "https://example.test/a.exe"}
	third := &staticResolver{url: "https://example.test/b.exe"}

	url, err := Chain{first, second, third}.Resolve(context.Background())
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if url != "https://example.test/a.exe" {
		t.Errorf("Resolve() = %q", url)
	}
	if !first.called || third.called {
		t.Error("chain must stop at the first success")
	}
}

func TestChain_AllFail(t *testing.T) {
	_, err := Chain{&staticResolver{err: ErrNoArtifact}, &staticResolver{err: errors.New("HTTP 500")}}.Resolve(context.Background())
	if !errors.Is(err, ErrNoArtifact) {
		t.Fatalf("expected joined ErrNoArtifact, got %v", err)
	}
	if _, err := (Chain{}).Resolve(context.Background()); !errors.Is(err, ErrNoArtifact) {
		t.Fatalf("empty chain: expected ErrNoArtifact, got %v", err)
	}
}

func TestFromConfig(t *testing.T) {
	chain, err := FromConfig([]config.Resolver{
		{Kind: config.ResolverPage, URL: "https://example.test", Pattern: `x`},
		{Kind: config.ResolverGitHubRelease, Repo: "o/r", Pattern: `y`},
	}, &cannedFetcher{})
	if err != nil {
		t.Fatalf("FromConfig() error: %v", err)
	}
	if len(chain) != 2 {
		t.Fatalf("chain length = %d", len(chain))
	}
	if _, ok := chain[0].(*Page); !ok {
		t.Errorf("chain[0] is %T", chain[0])
	}
	if _, ok := chain[1].(*GitHubRelease); !ok {
		t.Errorf("chain[1] is %T", chain[1])
	}

	if _, err := FromConfig([]config.Resolver{{Kind: "ftp"}}, &cannedFetcher{}); err == nil {
		t.Error("expected error for unknown kind")
	}
}

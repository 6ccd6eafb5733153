// Package download fetches landing pages and installer artifacts over HTTP.
package download

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path"
	"path/filepath"

	"github.com/spf13/afero"

	"flutter-bootstrap/internal/logger"
)

// maxPageSize bounds how much of a landing page is read for URL discovery.
const maxPageSize = 16 << 20

// Client downloads into a filesystem.
type Client struct {
	HTTP *http.Client
	Fs   afero.Fs
	// NewProgress builds the reporter for one transfer; nil disables reporting.
	NewProgress func(name string) Progress
}

// NewClient returns a client using http.DefaultClient.
func NewClient(fs afero.Fs, newProgress func(name string) Progress) *Client {
	return &Client{HTTP: http.DefaultClient, Fs: fs, NewProgress: newProgress}
}

func (c *Client) get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request for %s: %w", url, err)
	}
	req.Header.Set("User-Agent", "flutter-bootstrap")
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to GET %s: %w", url, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("GET %s returned HTTP %d", url, resp.StatusCode)
	}
	return resp, nil
}

// Fetch returns the body of url as text.
func (c *Client) Fetch(ctx context.Context, url string) (string, error) {
	logger.Debug("[DEBUG] Fetching %s\n", url)
	resp, err := c.get(ctx, url)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageSize))
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", url, err)
	}
	return string(body), nil
}

// Download saves url into dir under the URL's base name and returns the file path.
// The file is written to a temporary name first and renamed once complete.
func (c *Client) Download(ctx context.Context, url, dir string) (string, error) {
	name := path.Base(url)
	dest := filepath.Join(dir, name)

	resp, err := c.get(ctx, url)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if err := c.Fs.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create download dir %s: %w", dir, err)
	}
	tmp, err := afero.TempFile(c.Fs, dir, ".download-*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	var body io.Reader = resp.Body
	var prog Progress
	if c.NewProgress != nil {
		prog = c.NewProgress(name)
		if resp.ContentLength > 0 {
			prog.SetTotal(resp.ContentLength)
		}
		body = &progressReader{r: resp.Body, progress: prog}
	}

	logger.Info("[INFO] Downloading %s to %s\n", url, dest)
	_, copyErr := io.Copy(tmp, body)
	closeErr := tmp.Close()
	if copyErr != nil {
		c.Fs.Remove(tmpPath)
		return "", fmt.Errorf("write %s: %w", name, copyErr)
	}
	if closeErr != nil {
		c.Fs.Remove(tmpPath)
		return "", fmt.Errorf("close temp file: %w", closeErr)
	}
	if prog != nil {
		prog.Done()
	}

	if err := c.Fs.Rename(tmpPath, dest); err != nil {
		c.Fs.Remove(tmpPath)
		return "", fmt.Errorf("rename download: %w", err)
	}
	logger.Debug("[DEBUG] Downloaded %s\n", dest)
	return dest, nil
}

type progressReader struct {
	r        io.Reader
	progress Progress
	done     int64
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.done += int64(n)
		p.progress.Update(p.done)
	}
	return n, err
}

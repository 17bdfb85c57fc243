// Package assets resolves scene resource references, either http(s) URLs
// from the generation service or local file paths, into bytes and decoded
// images.
package assets

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

// Fetcher retrieves scene resources. A single instance is shared across a
// composition job; it holds no per-scene state.
type Fetcher struct {
	client *http.Client
}

// NewFetcher builds a fetcher whose remote requests time out after the given
// duration.
func NewFetcher(timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Fetcher{client: &http.Client{Timeout: timeout}}
}

// Fetch returns the raw bytes behind a resource reference. References with an
// http or https scheme are fetched over the network; everything else is read
// from the local filesystem.
func (f *Fetcher) Fetch(ctx context.Context, ref string) ([]byte, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, fmt.Errorf("fetch: empty resource reference")
	}

	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return f.fetchRemote(ctx, ref)
	}

	data, err := os.ReadFile(ref)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", ref, err)
	}
	return data, nil
}

// FetchToFile resolves a reference to a local file path. Local references
// are returned as-is; remote ones are downloaded into dir. The cleanup
// function removes any file this call created.
func (f *Fetcher) FetchToFile(ctx context.Context, ref, dir string) (string, func(), error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", nil, fmt.Errorf("fetch: empty resource reference")
	}

	if !strings.HasPrefix(ref, "http://") && !strings.HasPrefix(ref, "https://") {
		if _, err := os.Stat(ref); err != nil {
			return "", nil, fmt.Errorf("stat %s: %w", ref, err)
		}
		return ref, func() {}, nil
	}

	data, err := f.fetchRemote(ctx, ref)
	if err != nil {
		return "", nil, err
	}
	tmp, err := os.CreateTemp(dir, "asset-*")
	if err != nil {
		return "", nil, fmt.Errorf("stage asset: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", nil, fmt.Errorf("stage asset: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", nil, fmt.Errorf("stage asset: %w", err)
	}
	path := tmp.Name()
	return path, func() { os.Remove(path) }, nil
}

func (f *Fetcher) fetchRemote(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: unexpected status %d", url, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response %s: %w", url, err)
	}
	return data, nil
}

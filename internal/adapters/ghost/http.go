package ghost

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/time/rate"

	"github.com/BigBang1112/tmwrr-sub000/internal/domain/model"
)

// Default downloader configuration constants.
const (
	defaultHTTPTimeout = 30 * time.Second
	defaultRate        = rate.Limit(2) // downloads per second
	dirPermissions     = 0o755
	filePermissions    = 0o644
)

// HTTPDownloader implements Downloader against the scoreboard's replay
// endpoint, storing replays on disk. Requests are throttled so a burst of
// new records cannot overload the evidence source.
type HTTPDownloader struct {
	baseURL string
	destDir string
	client  *http.Client
	limiter *rate.Limiter
}

// Option applies a configuration option to the HTTPDownloader.
type Option func(*HTTPDownloader)

// WithHTTPClient substitutes the underlying http.Client.
func WithHTTPClient(c *http.Client) Option {
	return func(d *HTTPDownloader) {
		if c != nil {
			d.client = c
		}
	}
}

// WithRate caps downloads per second.
func WithRate(perSecond float64) Option {
	return func(d *HTTPDownloader) {
		if perSecond > 0 {
			d.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
		}
	}
}

// NewHTTPDownloader creates a downloader fetching from baseURL and writing
// replays under destDir.
func NewHTTPDownloader(baseURL, destDir string, opts ...Option) *HTTPDownloader {
	d := &HTTPDownloader{
		baseURL: baseURL,
		destDir: destDir,
		client:  &http.Client{Timeout: defaultHTTPTimeout},
		limiter: rate.NewLimiter(defaultRate, 1),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Download fetches the replay for the record and writes it to disk.
func (d *HTTPDownloader) Download(ctx context.Context, mapUID, login string, score int) (*model.GhostRef, error) {
	if err := d.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("throttle replay download: %w", err)
	}

	url := fmt.Sprintf("%s/replays/%s/%s?score=%d", d.baseURL, mapUID, login, score)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build replay request: %w", err)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch replay %s: %w", url, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		// The scoreboard has no replay for this score. Not an error.
		return nil, nil
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("fetch replay %s: unexpected status %s", url, resp.Status)
	}

	mapDir := filepath.Join(d.destDir, mapUID)
	if err := os.MkdirAll(mapDir, dirPermissions); err != nil {
		return nil, fmt.Errorf("create replay directory: %w", err)
	}
	dest := filepath.Join(mapDir, fmt.Sprintf("%s_%d.Replay.Gbx", login, score))

	f, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, filePermissions)
	if err != nil {
		return nil, fmt.Errorf("create replay file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, resp.Body); err != nil {
		return nil, fmt.Errorf("write replay file: %w", err)
	}
	return &model.GhostRef{URI: dest}, nil
}

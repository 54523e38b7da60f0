package fetcher

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/transport-catalogue/internal/common/logger"
)

// ErrNotZip is returned when a download does not contain a zip archive.
var ErrNotZip = errors.New("downloaded file is not a zip archive")

// Downloader fetches a feed archive to a local path.
type Downloader interface {
	Download(ctx context.Context, url string, destPath string) error
}

type HTTPDownloader struct {
	client *http.Client
	logger logger.Logger
	// ProgressInterval spaces the debug progress logs of large downloads.
	ProgressInterval time.Duration
}

func NewHTTPDownloader(logger logger.Logger) *HTTPDownloader {
	return &HTTPDownloader{
		client:           &http.Client{Timeout: 5 * time.Minute},
		logger:           logger,
		ProgressInterval: 5 * time.Second,
	}
}

// Download fetches a feed archive into destPath. The body is staged in a
// temp file next to destPath and only renamed into place once it has been
// read completely and opens as a zip, so a failed or truncated transfer
// never replaces a good feed.
func (d *HTTPDownloader) Download(ctx context.Context, url string, destPath string) error {
	dir := filepath.Dir(destPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating destination directory: %w", err)
	}

	staged, err := os.CreateTemp(dir, "feed_*.partial")
	if err != nil {
		return fmt.Errorf("creating staging file: %w", err)
	}
	stagedPath := staged.Name()
	defer os.Remove(stagedPath)

	size, err := d.fetch(ctx, url, staged)
	if closeErr := staged.Close(); err == nil && closeErr != nil {
		err = fmt.Errorf("closing staging file: %w", closeErr)
	}
	if err != nil {
		return err
	}

	if err := checkZip(stagedPath); err != nil {
		return fmt.Errorf("feed %s: %w", url, err)
	}
	if err := os.Rename(stagedPath, destPath); err != nil {
		return fmt.Errorf("moving feed into place: %w", err)
	}

	d.logger.Info("Feed downloaded", "url", url, "dest", destPath, "size_bytes", size)
	return nil
}

func (d *HTTPDownloader) fetch(ctx context.Context, url string, dst io.Writer) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("creating request: %w", err)
	}

	d.logger.Info("Downloading feed", "url", url)
	resp, err := d.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("requesting feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	progress := &progressWriter{
		logger:   d.logger,
		total:    resp.ContentLength,
		interval: d.ProgressInterval,
		last:     time.Now(),
	}
	n, err := io.Copy(io.MultiWriter(dst, progress), resp.Body)
	if err != nil {
		return n, fmt.Errorf("reading feed body: %w", err)
	}
	if resp.ContentLength > 0 && n != resp.ContentLength {
		return n, fmt.Errorf("feed truncated: got %d of %d bytes", n, resp.ContentLength)
	}
	return n, nil
}

func checkZip(path string) error {
	r, err := zip.OpenReader(path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNotZip, err)
	}
	return r.Close()
}

// progressWriter counts bytes and logs at most once per interval.
type progressWriter struct {
	logger   logger.Logger
	total    int64
	written  int64
	interval time.Duration
	last     time.Time
}

func (p *progressWriter) Write(b []byte) (int, error) {
	p.written += int64(len(b))
	if p.total > 0 && time.Since(p.last) >= p.interval {
		p.logger.Debug("Download progress",
			"progress_percent", fmt.Sprintf("%.1f", float64(p.written)/float64(p.total)*100),
			"bytes_downloaded", p.written,
			"total_bytes", p.total)
		p.last = time.Now()
	}
	return len(b), nil
}

// Resolve returns a local path for source. http and https URLs are
// downloaded into dir; anything else is taken as a path already on disk.
func Resolve(ctx context.Context, d Downloader, source, dir string) (string, error) {
	u, err := url.Parse(source)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		if _, statErr := os.Stat(source); statErr != nil {
			return "", fmt.Errorf("feed source %q: %w", source, statErr)
		}
		return source, nil
	}

	name := path.Base(u.Path)
	if name == "." || name == "/" || filepath.Ext(name) != ".zip" {
		name = "gtfs.zip"
	}
	dest := filepath.Join(dir, name)
	if err := d.Download(ctx, source, dest); err != nil {
		return "", err
	}
	return dest, nil
}

package fetcher

import (
	"archive/zip"
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/transport-catalogue/internal/common/logger"
)

func zipBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	f, err := w.Create("stops.txt")
	require.NoError(t, err)
	_, err = f.Write([]byte("stop_id,stop_name,stop_lat,stop_lon\n"))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestDownload(t *testing.T) {
	body := zipBytes(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(body)
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "nested", "feed.zip")
	d := NewHTTPDownloader(logger.Nop())
	d.ProgressInterval = 0
	require.NoError(t, d.Download(context.Background(), srv.URL, dest))

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, body, data)

	leftovers, err := filepath.Glob(filepath.Join(filepath.Dir(dest), "*.partial"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}

func TestDownloadRejectsNonZip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>maintenance</html>"))
	}))
	defer srv.Close()

	dir := t.TempDir()
	dest := filepath.Join(dir, "feed.zip")
	previous := zipBytes(t)
	require.NoError(t, os.WriteFile(dest, previous, 0644))

	err := NewHTTPDownloader(logger.Nop()).Download(context.Background(), srv.URL, dest)
	assert.ErrorIs(t, err, ErrNotZip)

	data, readErr := os.ReadFile(dest)
	require.NoError(t, readErr)
	assert.Equal(t, previous, data, "previous feed is kept")

	leftovers, globErr := filepath.Glob(filepath.Join(dir, "*.partial"))
	require.NoError(t, globErr)
	assert.Empty(t, leftovers)
}

func TestDownloadBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "feed.zip")
	err := NewHTTPDownloader(logger.Nop()).Download(context.Background(), srv.URL, dest)
	assert.ErrorContains(t, err, "404")
	_, statErr := os.Stat(dest)
	assert.True(t, os.IsNotExist(statErr))
}

type recordingDownloader struct {
	url, dest string
}

func (r *recordingDownloader) Download(_ context.Context, url, dest string) error {
	r.url, r.dest = url, dest
	return nil
}

func TestResolve(t *testing.T) {
	dir := t.TempDir()

	rec := &recordingDownloader{}
	got, err := Resolve(context.Background(), rec, "https://example.org/feeds/metro.zip", dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "metro.zip"), got)
	assert.Equal(t, "https://example.org/feeds/metro.zip", rec.url)

	got, err = Resolve(context.Background(), rec, "http://example.org/download?id=1", dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "gtfs.zip"), got)

	local := filepath.Join(dir, "local.zip")
	require.NoError(t, os.WriteFile(local, []byte("x"), 0o644))
	rec = &recordingDownloader{}
	got, err = Resolve(context.Background(), rec, local, dir)
	require.NoError(t, err)
	assert.Equal(t, local, got)
	assert.Empty(t, rec.url)

	_, err = Resolve(context.Background(), rec, filepath.Join(dir, "missing.zip"), dir)
	assert.Error(t, err)
}

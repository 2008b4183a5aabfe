package ghost_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BigBang1112/tmwrr-sub000/internal/adapters/ghost"
)

func TestHTTPDownloader_Download(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/replays/RaceA1/ayoub", r.URL.Path)
		assert.Equal(t, "40110", r.URL.Query().Get("score"))
		_, _ = w.Write([]byte("GBX replay bytes"))
	}))
	t.Cleanup(srv.Close)

	dest := t.TempDir()
	d := ghost.NewHTTPDownloader(srv.URL, dest, ghost.WithRate(1000))

	ref, err := d.Download(context.Background(), "RaceA1", "ayoub", 40110)
	require.NoError(t, err)
	require.NotNil(t, ref)

	want := filepath.Join(dest, "RaceA1", "ayoub_40110.Replay.Gbx")
	assert.Equal(t, want, ref.URI)

	data, err := os.ReadFile(ref.URI)
	require.NoError(t, err)
	assert.Equal(t, "GBX replay bytes", string(data))
}

func TestHTTPDownloader_MissingReplay(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	t.Cleanup(srv.Close)

	d := ghost.NewHTTPDownloader(srv.URL, t.TempDir(), ghost.WithRate(1000))

	ref, err := d.Download(context.Background(), "RaceA1", "ghostless", 40110)
	assert.NoError(t, err)
	assert.Nil(t, ref)
}

func TestHTTPDownloader_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	d := ghost.NewHTTPDownloader(srv.URL, t.TempDir(), ghost.WithRate(1000))

	ref, err := d.Download(context.Background(), "RaceA1", "ayoub", 40110)
	assert.Error(t, err)
	assert.Nil(t, ref)
}

func TestHTTPDownloader_CancelledWhileThrottled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("x"))
	}))
	t.Cleanup(srv.Close)

	// One token per minute: the second download must wait on the limiter.
	d := ghost.NewHTTPDownloader(srv.URL, t.TempDir(), ghost.WithRate(1.0/60.0))

	ctx, cancel := context.WithCancel(context.Background())
	_, err := d.Download(ctx, "RaceA1", "ayoub", 1)
	require.NoError(t, err)

	cancel()
	_, err = d.Download(ctx, "RaceA1", "benny", 2)
	assert.Error(t, err)
}

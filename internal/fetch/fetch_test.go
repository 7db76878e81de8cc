package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(t *testing.T, contentType string, body []byte) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if contentType != "" {
			w.Header().Set("Content-Type", contentType)
		}
		_, _ = w.Write(body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetch_Segment(t *testing.T) {
	body := []byte("fake mp4 bytes")
	srv := serve(t, "video/mp4", body)
	dir := t.TempDir()

	f := New(5 * time.Second)
	path, err := f.Fetch(context.Background(), srv.URL+"/seg.mp4", dir, RoleSegment, 3, ".mp4")
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "segment_003.mp4"), path)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, body, data)
}

func TestFetch_WebMContentTypeWins(t *testing.T) {
	srv := serve(t, "video/webm", []byte("webm"))
	dir := t.TempDir()

	f := New(5 * time.Second)
	path, err := f.Fetch(context.Background(), srv.URL+"/seg.mp4", dir, RoleSegment, 0, ".mp4")
	require.NoError(t, err)
	assert.Equal(t, "segment_000.webm", filepath.Base(path))
}

func TestFetch_WebMURLSuffix(t *testing.T) {
	srv := serve(t, "application/octet-stream", []byte("webm"))
	dir := t.TempDir()

	f := New(5 * time.Second)
	path, err := f.Fetch(context.Background(), srv.URL+"/clip.webm?token=abc", dir, RoleSegment, 1, ".mp4")
	require.NoError(t, err)
	assert.Equal(t, "segment_001.webm", filepath.Base(path))
}

func TestFetch_SegmentDefaultsToRequestedContainer(t *testing.T) {
	srv := serve(t, "application/octet-stream", []byte("x"))
	dir := t.TempDir()

	f := New(5 * time.Second)
	path, err := f.Fetch(context.Background(), srv.URL+"/clip", dir, RoleSegment, 0, ".webm")
	require.NoError(t, err)
	assert.Equal(t, "segment_000.webm", filepath.Base(path))
}

func TestFetch_AudioExtensions(t *testing.T) {
	cases := []struct {
		name        string
		contentType string
		urlPath     string
		wantExt     string
	}{
		{"wav content type", "audio/wav", "/a", ".wav"},
		{"mp3 content type", "audio/mpeg", "/a", ".mp3"},
		{"m4a content type", "audio/mp4", "/a", ".m4a"},
		{"aac content type", "audio/aac", "/a", ".m4a"},
		{"wav url suffix", "application/octet-stream", "/track.wav", ".wav"},
		{"m4a url suffix", "", "/track.m4a?sig=zz", ".m4a"},
		{"generic lossy default", "application/octet-stream", "/track", ".mp3"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := serve(t, tc.contentType, []byte("audio"))
			dir := t.TempDir()

			f := New(5 * time.Second)
			path, err := f.Fetch(context.Background(), srv.URL+tc.urlPath, dir, RoleAudio, 0, "")
			require.NoError(t, err)
			assert.Equal(t, "audio"+tc.wantExt, filepath.Base(path))
		})
	}
}

func TestFetch_HTTPErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	t.Cleanup(srv.Close)

	f := New(5 * time.Second)
	_, err := f.Fetch(context.Background(), srv.URL, t.TempDir(), RoleSegment, 0, ".mp4")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
}

func TestFetch_TruncatedStream(t *testing.T) {
	// Announce more bytes than are sent: the copy must fail, and the
	// fetch must report an error rather than a partial file.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Length", "1000")
		_, _ = w.Write([]byte("short"))
	}))
	t.Cleanup(srv.Close)

	f := New(5 * time.Second)
	_, err := f.Fetch(context.Background(), srv.URL, t.TempDir(), RoleSegment, 0, ".mp4")
	require.Error(t, err)
}

func TestFetch_UnreachableServer(t *testing.T) {
	f := New(500 * time.Millisecond)
	_, err := f.Fetch(context.Background(), "http://127.0.0.1:1/none", t.TempDir(), RoleSegment, 0, ".mp4")
	require.Error(t, err)
}

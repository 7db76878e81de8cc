// Package fetch retrieves remote sources into job scratch space. Transfers
// stream straight to disk, so memory use is bounded to one copy buffer
// regardless of resource size.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/backmassage/stitchd/internal/logging"
)

// Role labels what a fetched resource is used for; it selects the
// extension inference rules and the scratch file name.
type Role string

const (
	RoleSegment Role = "segment"
	RoleAudio   Role = "audio"
)

// Fetcher downloads remote resources over HTTP.
type Fetcher struct {
	client *http.Client
}

// New returns a Fetcher whose requests time out after the given duration.
func New(timeout time.Duration) *Fetcher {
	return &Fetcher{
		client: &http.Client{Timeout: timeout},
	}
}

// Fetch downloads url fully into destDir and returns the file path.
// defaultExt (with leading dot) is the video extension used when no
// content signal overrides it; it is ignored for RoleAudio. The index
// orders segment files; it is ignored for RoleAudio.
//
// On any error the returned path is empty; a partially written file may
// remain in destDir but is never reported as usable.
func (f *Fetcher) Fetch(ctx context.Context, url, destDir string, role Role, index int, defaultExt string) (string, error) {
	log := logging.WithComponent("fetch")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return "", fmt.Errorf("build request for %s: %w", url, err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("download %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download %s: unexpected status %d", url, resp.StatusCode)
	}

	contentType := resp.Header.Get("Content-Type")

	var name string
	switch role {
	case RoleAudio:
		name = "audio" + inferAudioExt(contentType, url)
	default:
		name = fmt.Sprintf("segment_%03d%s", index, inferVideoExt(contentType, url, defaultExt))
	}
	path := filepath.Join(destDir, name)

	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", path, err)
	}
	defer file.Close()

	written, err := io.Copy(file, resp.Body)
	if err != nil {
		return "", fmt.Errorf("stream %s: %w", url, err)
	}
	if err := file.Sync(); err != nil {
		return "", fmt.Errorf("sync %s: %w", path, err)
	}

	log.Debug().
		Str(logging.FieldURL, url).
		Str(logging.FieldRole, string(role)).
		Int(logging.FieldIndex, index).
		Int64(logging.FieldBytes, written).
		Str(logging.FieldPath, path).
		Msg("downloaded")

	return path, nil
}

// inferVideoExt picks the segment extension: a webm signal in the transfer
// metadata or URL wins, otherwise the requested container's extension.
func inferVideoExt(contentType, url, defaultExt string) string {
	if strings.Contains(contentType, "webm") || strings.HasSuffix(urlPath(url), ".webm") {
		return ".webm"
	}
	if defaultExt != "" {
		return defaultExt
	}
	return ".mp4"
}

// inferAudioExt picks the audio extension, preferring the content-type
// signal, then the URL suffix, then a generic lossy default.
func inferAudioExt(contentType, url string) string {
	ct := strings.ToLower(contentType)
	switch {
	case strings.Contains(ct, "wav"):
		return ".wav"
	case strings.Contains(ct, "mpeg"), strings.Contains(ct, "mp3"):
		return ".mp3"
	case strings.Contains(ct, "mp4"), strings.Contains(ct, "m4a"), strings.Contains(ct, "aac"):
		return ".m4a"
	}

	p := strings.ToLower(urlPath(url))
	for _, ext := range []string{".wav", ".mp3", ".m4a"} {
		if strings.HasSuffix(p, ext) {
			return ext
		}
	}
	return ".mp3"
}

// urlPath strips query and fragment so suffix matching sees the path only.
func urlPath(url string) string {
	if i := strings.IndexAny(url, "?#"); i >= 0 {
		return url[:i]
	}
	return url
}

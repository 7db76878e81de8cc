package ffmpeg

import (
	"fmt"
	"os"
	"strings"
)

// WriteConcatManifest writes the concat demuxer file list referencing each
// segment path in order. Paths are single-quoted with embedded quotes
// escaped, so a quote character in a path cannot break manifest parsing.
func WriteConcatManifest(manifestPath string, segmentPaths []string) error {
	var b strings.Builder
	for _, p := range segmentPaths {
		fmt.Fprintf(&b, "file '%s'\n", escapeConcatPath(p))
	}
	if err := os.WriteFile(manifestPath, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write concat manifest: %w", err)
	}
	return nil
}

// escapeConcatPath escapes single quotes for the concat demuxer: a quoted
// string is closed, an escaped quote emitted, and the string reopened.
func escapeConcatPath(path string) string {
	return strings.ReplaceAll(path, "'", `'\''`)
}

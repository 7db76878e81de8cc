package ffmpeg

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backmassage/stitchd/internal/config"
)

func joined(args []string) string {
	return strings.Join(args, " ")
}

func TestConcatCopyArgs(t *testing.T) {
	cfg := config.Default()
	args := ConcatCopyArgs(&cfg, "/tmp/s/concat_list.txt", "/tmp/s/stitched.mp4")

	assert.Equal(t, "ffmpeg", args[0])
	s := joined(args)
	assert.Contains(t, s, "-f concat -safe 0 -i /tmp/s/concat_list.txt")
	assert.Contains(t, s, "-c copy")
	assert.Equal(t, "/tmp/s/stitched.mp4", args[len(args)-1])
	assert.NotContains(t, s, "libx264", "copy tier must not re-encode")
}

func TestConcatTranscodeArgs_MP4(t *testing.T) {
	cfg := config.Default()
	args := ConcatTranscodeArgs(&cfg, "/tmp/s/concat_list.txt", "/tmp/s/stitched.mp4", cfg.MP4Target)

	s := joined(args)
	assert.Contains(t, s, "-c:v libx264 -preset fast -crf 23")
	assert.Contains(t, s, "-c:a aac -b:a 128k")
	assert.Equal(t, "/tmp/s/stitched.mp4", args[len(args)-1])
}

func TestConcatTranscodeArgs_WebM(t *testing.T) {
	cfg := config.Default()
	args := ConcatTranscodeArgs(&cfg, "/tmp/s/concat_list.txt", "/tmp/s/stitched.webm", cfg.WebMTarget)

	s := joined(args)
	assert.Contains(t, s, "-c:v libvpx-vp9 -crf 32 -b:v 0")
	assert.Contains(t, s, "-c:a libopus")
}

func TestMuxCopyArgs(t *testing.T) {
	cfg := config.Default()
	args := MuxCopyArgs(&cfg, "/tmp/s/stitched.mp4", "/tmp/s/audio.mp3", "/tmp/s/final.mp4",
		"volume=0.5", cfg.MP4Target)

	s := joined(args)
	assert.Contains(t, s, "-i /tmp/s/stitched.mp4 -i /tmp/s/audio.mp3")
	assert.Contains(t, s, "-map 0:v:0 -map 1:a:0", "video from input 0, audio from input 1")
	assert.Contains(t, s, "-c:v copy")
	assert.Contains(t, s, "-c:a aac -b:a 128k")
	assert.Contains(t, s, "-filter:a volume=0.5")
	assert.Contains(t, s, "-shortest", "output truncates to the shorter stream")
	assert.Equal(t, "/tmp/s/final.mp4", args[len(args)-1])
}

func TestMuxCopyArgs_NoFilter(t *testing.T) {
	cfg := config.Default()
	args := MuxCopyArgs(&cfg, "v.mp4", "a.mp3", "f.mp4", "", cfg.MP4Target)
	assert.NotContains(t, joined(args), "-filter:a")
}

func TestMuxTranscodeArgs(t *testing.T) {
	cfg := config.Default()
	args := MuxTranscodeArgs(&cfg, "v.mp4", "a.mp3", "f.mp4", "volume=2", cfg.MP4Target)

	s := joined(args)
	assert.Contains(t, s, "-c:v libx264 -preset fast -crf 23")
	assert.Contains(t, s, "-filter:a volume=2")
	assert.Contains(t, s, "-shortest")
	assert.NotContains(t, s, "-c:v copy")
}

func TestPreamble_VerboseLoglevel(t *testing.T) {
	cfg := config.Default()
	assert.Contains(t, joined(ConcatCopyArgs(&cfg, "l", "o")), "-loglevel error")

	cfg.Verbose = true
	assert.Contains(t, joined(ConcatCopyArgs(&cfg, "l", "o")), "-loglevel info")
}

func TestWriteConcatManifest_Escaping(t *testing.T) {
	dir := t.TempDir()
	manifest := dir + "/concat_list.txt"

	err := WriteConcatManifest(manifest, []string{
		dir + "/segment_000.mp4",
		dir + "/it's here.mp4",
	})
	require.NoError(t, err)

	data, err := os.ReadFile(manifest)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "file '"+dir+"/segment_000.mp4'", lines[0])
	assert.Equal(t, `file '`+dir+`/it'\''s here.mp4'`, lines[1])
}

package stitch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backmassage/stitchd/internal/config"
	"github.com/backmassage/stitchd/internal/ffmpeg"
	"github.com/backmassage/stitchd/internal/job"
	"github.com/backmassage/stitchd/internal/probe"
)

// scriptedInvoker returns one result per invocation and writes the output
// file (the final argument) on success, like the real tool would.
type scriptedInvoker struct {
	results []ffmpeg.ExecResult
	calls   [][]string
}

func (s *scriptedInvoker) Run(_ context.Context, args []string) ffmpeg.ExecResult {
	s.calls = append(s.calls, args)
	res := s.results[len(s.calls)-1]
	if res.Err == nil {
		_ = os.WriteFile(args[len(args)-1], []byte("media-bytes"), 0o644)
	}
	return res
}

func fixedDuration(d float64) DurationFunc {
	return func(context.Context, string) float64 { return d }
}

// recordingProbe captures the paths it is asked to inspect.
type recordingProbe struct {
	paths []string
	err   error
}

func (r *recordingProbe) probe(_ context.Context, path string) (*probe.Result, error) {
	r.paths = append(r.paths, path)
	if r.err != nil {
		return nil, r.err
	}
	return &probe.Result{
		Format:       probe.FormatInfo{FormatName: "mov,mp4,m4a,3gp,3g2,mj2", Duration: 4.2},
		PrimaryVideo: &probe.VideoStream{Codec: "h264", PixFmt: "yuv420p", Width: 1280, Height: 720},
	}, nil
}

func newTestStitcher(inv ffmpeg.Invoker, dur float64) *Stitcher {
	cfg := config.Default()
	return New(&cfg, inv).
		WithDuration(fixedDuration(dur)).
		WithProbe((&recordingProbe{}).probe)
}

func makeSegments(t *testing.T, dir string, n int) []string {
	t.Helper()
	paths := make([]string, n)
	for i := range paths {
		p := filepath.Join(dir, "segment_"+string(rune('0'+i))+".mp4")
		require.NoError(t, os.WriteFile(p, []byte("seg"), 0o644))
		paths[i] = p
	}
	return paths
}

// --- Concat ---

func TestConcat_CopyTier(t *testing.T) {
	dir := t.TempDir()
	segs := makeSegments(t, dir, 3)
	out := filepath.Join(dir, "stitched.mp4")

	inv := &scriptedInvoker{results: []ffmpeg.ExecResult{{}}}
	s := newTestStitcher(inv, 12.5)

	res, err := s.Concat(context.Background(), segs, out, job.FormatMP4)
	require.NoError(t, err)

	assert.Equal(t, "copy", res.Tier)
	assert.Equal(t, 3, res.Segments)
	assert.Equal(t, 12.5, res.Duration)
	assert.Equal(t, int64(len("media-bytes")), res.SizeBytes)
	assert.Equal(t, out, res.OutputPath)

	// Manifest must reference every segment in request order.
	data, err := os.ReadFile(filepath.Join(dir, "concat_list.txt"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	for i, p := range segs {
		assert.Equal(t, "file '"+p+"'", lines[i])
	}
}

func TestConcat_FallsBackToTranscode(t *testing.T) {
	dir := t.TempDir()
	segs := makeSegments(t, dir, 2)
	out := filepath.Join(dir, "stitched.mp4")

	inv := &scriptedInvoker{results: []ffmpeg.ExecResult{
		{Stderr: "codec parameters mismatch", Err: errors.New("exit 1")},
		{},
	}}
	s := newTestStitcher(inv, 5)

	res, err := s.Concat(context.Background(), segs, out, job.FormatMP4)
	require.NoError(t, err)
	assert.Equal(t, "transcode", res.Tier)

	require.Len(t, inv.calls, 2)
	assert.Contains(t, strings.Join(inv.calls[1], " "), "-c:v libx264")
}

func TestConcat_BothTiersFail(t *testing.T) {
	dir := t.TempDir()
	segs := makeSegments(t, dir, 2)

	inv := &scriptedInvoker{results: []ffmpeg.ExecResult{
		{Err: errors.New("exit 1")},
		{Stderr: "Unknown encoder", Err: errors.New("exit 1")},
	}}
	s := newTestStitcher(inv, 5)

	_, err := s.Concat(context.Background(), segs, filepath.Join(dir, "stitched.mp4"), job.FormatMP4)
	require.Error(t, err)
	assert.ErrorIs(t, err, job.ErrConcat)
	assert.Contains(t, err.Error(), "Unknown encoder", "tool diagnostics must surface")
}

func TestConcat_RejectsSingleSegment(t *testing.T) {
	dir := t.TempDir()
	segs := makeSegments(t, dir, 1)

	inv := &scriptedInvoker{}
	s := newTestStitcher(inv, 5)

	_, err := s.Concat(context.Background(), segs, filepath.Join(dir, "out.mp4"), job.FormatMP4)
	require.ErrorIs(t, err, job.ErrConcat)
	assert.Empty(t, inv.calls, "no tool invocation for invalid input")
}

func TestConcat_InspectsEverySegment(t *testing.T) {
	dir := t.TempDir()
	segs := makeSegments(t, dir, 3)

	inv := &scriptedInvoker{results: []ffmpeg.ExecResult{{}}}
	rec := &recordingProbe{}
	cfg := config.Default()
	s := New(&cfg, inv).WithDuration(fixedDuration(5)).WithProbe(rec.probe)

	_, err := s.Concat(context.Background(), segs, filepath.Join(dir, "stitched.mp4"), job.FormatMP4)
	require.NoError(t, err)
	assert.Equal(t, segs, rec.paths, "each segment is inspected before the concat runs")
}

func TestConcat_ProbeFailureDoesNotFailJob(t *testing.T) {
	dir := t.TempDir()
	segs := makeSegments(t, dir, 2)

	inv := &scriptedInvoker{results: []ffmpeg.ExecResult{{}}}
	rec := &recordingProbe{err: errors.New("ffprobe exit 1")}
	cfg := config.Default()
	s := New(&cfg, inv).WithDuration(fixedDuration(5)).WithProbe(rec.probe)

	res, err := s.Concat(context.Background(), segs, filepath.Join(dir, "stitched.mp4"), job.FormatMP4)
	require.NoError(t, err)
	assert.Equal(t, "copy", res.Tier)
	assert.Len(t, rec.paths, 2)
}

func TestConcat_WebMUsesWebMTarget(t *testing.T) {
	dir := t.TempDir()
	segs := makeSegments(t, dir, 2)

	inv := &scriptedInvoker{results: []ffmpeg.ExecResult{
		{Err: errors.New("exit 1")},
		{},
	}}
	s := newTestStitcher(inv, 5)

	_, err := s.Concat(context.Background(), segs, filepath.Join(dir, "stitched.webm"), job.FormatWebM)
	require.NoError(t, err)
	assert.Contains(t, strings.Join(inv.calls[1], " "), "-c:v libvpx-vp9")
}

// --- Overlay ---

func TestOverlay_CopyTierWithFilter(t *testing.T) {
	dir := t.TempDir()
	video := filepath.Join(dir, "stitched.mp4")
	audio := filepath.Join(dir, "audio.mp3")
	out := filepath.Join(dir, "final.mp4")
	require.NoError(t, os.WriteFile(video, []byte("v"), 0o644))
	require.NoError(t, os.WriteFile(audio, []byte("a"), 0o644))

	inv := &scriptedInvoker{results: []ffmpeg.ExecResult{{}}}
	s := newTestStitcher(inv, 10)

	res, err := s.Overlay(context.Background(), video, audio, out, 0.5, 2, job.FormatMP4)
	require.NoError(t, err)

	assert.Equal(t, "copy", res.Tier)
	assert.Equal(t, "volume=0.5,afade=t=out:st=8:d=2", res.Filter)

	args := strings.Join(inv.calls[0], " ")
	assert.Contains(t, args, "-c:v copy")
	assert.Contains(t, args, "-filter:a volume=0.5,afade=t=out:st=8:d=2")
	assert.Contains(t, args, "-shortest")
}

func TestOverlay_FadeLongerThanClipOmitted(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "final.mp4")

	inv := &scriptedInvoker{results: []ffmpeg.ExecResult{{}}}
	s := newTestStitcher(inv, 10)

	res, err := s.Overlay(context.Background(), "v.mp4", "a.mp3", out, 1.0, 30, job.FormatMP4)
	require.NoError(t, err)
	assert.Empty(t, res.Filter, "fade window longer than the clip means no fade")
	assert.NotContains(t, strings.Join(inv.calls[0], " "), "afade")
}

func TestOverlay_FallsBackToTranscode(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "final.mp4")

	inv := &scriptedInvoker{results: []ffmpeg.ExecResult{
		{Stderr: "could not copy codec", Err: errors.New("exit 1")},
		{},
	}}
	s := newTestStitcher(inv, 10)

	res, err := s.Overlay(context.Background(), "v.mp4", "a.mp3", out, 1.0, 0, job.FormatMP4)
	require.NoError(t, err)
	assert.Equal(t, "transcode", res.Tier)
	assert.Contains(t, strings.Join(inv.calls[1], " "), "-c:v libx264")
}

func TestOverlay_BothTiersFail(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "final.mp4")

	inv := &scriptedInvoker{results: []ffmpeg.ExecResult{
		{Err: errors.New("exit 1")},
		{Stderr: "corrupt audio", Err: errors.New("exit 1")},
	}}
	s := newTestStitcher(inv, 10)

	_, err := s.Overlay(context.Background(), "v.mp4", "a.mp3", out, 1.0, 0, job.FormatMP4)
	require.ErrorIs(t, err, job.ErrOverlay)
}

package stitch

import (
	"context"

	"github.com/backmassage/stitchd/internal/config"
	"github.com/backmassage/stitchd/internal/ffmpeg"
	"github.com/backmassage/stitchd/internal/probe"
)

// DurationFunc reports a media file's duration in seconds, 0 when unknown.
type DurationFunc func(ctx context.Context, path string) float64

// ProbeFunc inspects a media file's streams. Used for the per-segment
// diagnostics logged before concatenation.
type ProbeFunc func(ctx context.Context, path string) (*probe.Result, error)

// Stitcher performs concat and overlay operations against one Invoker.
type Stitcher struct {
	cfg      *config.Config
	inv      ffmpeg.Invoker
	duration DurationFunc
	inspect  ProbeFunc
}

// New returns a Stitcher using the production ffprobe lookups.
func New(cfg *config.Config, inv ffmpeg.Invoker) *Stitcher {
	return &Stitcher{
		cfg:      cfg,
		inv:      inv,
		duration: probe.Duration,
		inspect:  probe.Probe,
	}
}

// WithDuration overrides the duration lookup. Tests use this to exercise
// the fade-out guard without an ffprobe binary.
func (s *Stitcher) WithDuration(fn DurationFunc) *Stitcher {
	s.duration = fn
	return s
}

// WithProbe overrides the stream inspection lookup.
func (s *Stitcher) WithProbe(fn ProbeFunc) *Stitcher {
	s.inspect = fn
	return s
}

package stitch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/backmassage/stitchd/internal/ffmpeg"
	"github.com/backmassage/stitchd/internal/job"
	"github.com/backmassage/stitchd/internal/logging"
)

// ConcatResult describes a successful concatenation.
type ConcatResult struct {
	OutputPath string
	SizeBytes  int64
	Duration   float64 // probed; 0 when unknowable
	Segments   int
	Tier       string // tier that produced the output
}

// Concat joins the segment files, in order, into outputPath. The stream-copy
// tier is tried first; on tool failure the segments are re-encoded to the
// container's fixed targets. Both tiers failing fails the job with the
// tool's diagnostic output attached.
func (s *Stitcher) Concat(ctx context.Context, segmentPaths []string, outputPath string, format job.Format) (ConcatResult, error) {
	if len(segmentPaths) < 2 {
		return ConcatResult{}, fmt.Errorf("%w: need at least 2 segments, got %d", job.ErrConcat, len(segmentPaths))
	}

	log := logging.WithComponent("concat")
	s.logSegmentStreams(ctx, log, segmentPaths)

	manifestPath := filepath.Join(filepath.Dir(outputPath), "concat_list.txt")
	if err := ffmpeg.WriteConcatManifest(manifestPath, segmentPaths); err != nil {
		return ConcatResult{}, fmt.Errorf("%w: %w", job.ErrConcat, err)
	}

	target := s.cfg.TargetFor(string(format))
	plan := ffmpeg.Plan{
		Op: "concat",
		Primary: ffmpeg.Tier{
			Name: "copy",
			Args: ffmpeg.ConcatCopyArgs(s.cfg, manifestPath, outputPath),
		},
		Fallback: ffmpeg.Tier{
			Name: "transcode",
			Args: ffmpeg.ConcatTranscodeArgs(s.cfg, manifestPath, outputPath, target),
		},
		OutputPath: outputPath,
	}

	tier, err := ffmpeg.RunPlan(ctx, s.inv, plan)
	if err != nil {
		return ConcatResult{}, fmt.Errorf("%w: %w", job.ErrConcat, err)
	}

	var size int64
	if fi, err := os.Stat(outputPath); err == nil {
		size = fi.Size()
	}
	duration := s.duration(ctx, outputPath)

	log.Info().
		Int(logging.FieldSegments, len(segmentPaths)).
		Str(logging.FieldTier, tier).
		Int64(logging.FieldBytes, size).
		Float64(logging.FieldDuration, duration).
		Msg("segments concatenated")

	return ConcatResult{
		OutputPath: outputPath,
		SizeBytes:  size,
		Duration:   duration,
		Segments:   len(segmentPaths),
		Tier:       tier,
	}, nil
}

// logSegmentStreams emits one diagnostic event per segment with its codec
// parameters. Mismatched codecs or pixel formats across segments are the
// usual reason the stream-copy tier fails, so having them in the log next
// to the tool error saves a manual ffprobe round. Probe failures are
// logged and skipped; they never fail the job.
func (s *Stitcher) logSegmentStreams(ctx context.Context, log zerolog.Logger, segmentPaths []string) {
	for i, p := range segmentPaths {
		pr, err := s.inspect(ctx, p)
		if err != nil {
			log.Debug().Err(err).
				Int(logging.FieldIndex, i).
				Str(logging.FieldPath, p).
				Msg("segment probe failed")
			continue
		}

		ev := log.Debug().
			Int(logging.FieldIndex, i).
			Str(logging.FieldPath, p).
			Str(logging.FieldFormat, pr.Format.FormatName).
			Str(logging.FieldResolution, pr.Resolution()).
			Bool(logging.FieldHasAudio, pr.HasAudio()).
			Float64(logging.FieldDuration, pr.Format.Duration)
		if v := pr.PrimaryVideo; v != nil {
			ev = ev.Str(logging.FieldCodec, v.Codec).Str(logging.FieldPixFmt, v.PixFmt)
		}
		ev.Msg("segment streams")
	}
}

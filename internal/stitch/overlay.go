package stitch

import (
	"context"
	"fmt"

	"github.com/backmassage/stitchd/internal/ffmpeg"
	"github.com/backmassage/stitchd/internal/job"
	"github.com/backmassage/stitchd/internal/logging"
)

// OverlayResult describes a successful audio mux.
type OverlayResult struct {
	OutputPath string
	Tier       string
	Filter     string // applied audio filter chain, empty when none
}

// Overlay muxes the audio file onto the video file at outputPath, trimmed
// to the shorter of the two streams. Volume and fade-out are applied via
// the audio filter chain when non-default. Tier 1 copies the video codec
// and re-encodes only audio; tier 2 re-encodes both streams with the
// container's fixed targets.
func (s *Stitcher) Overlay(ctx context.Context, videoPath, audioPath, outputPath string, volume, fadeOut float64, format job.Format) (OverlayResult, error) {
	log := logging.WithComponent("overlay")

	videoDuration := s.duration(ctx, videoPath)
	filter := BuildAudioFilter(volume, fadeOut, videoDuration)

	if fadeOut > 0 && fadeOut >= videoDuration {
		log.Debug().
			Float64("fade_out_s", fadeOut).
			Float64(logging.FieldDuration, videoDuration).
			Msg("fade window not shorter than clip, fade omitted")
	}

	target := s.cfg.TargetFor(string(format))
	plan := ffmpeg.Plan{
		Op: "mux",
		Primary: ffmpeg.Tier{
			Name: "copy",
			Args: ffmpeg.MuxCopyArgs(s.cfg, videoPath, audioPath, outputPath, filter, target),
		},
		Fallback: ffmpeg.Tier{
			Name: "transcode",
			Args: ffmpeg.MuxTranscodeArgs(s.cfg, videoPath, audioPath, outputPath, filter, target),
		},
		OutputPath: outputPath,
	}

	tier, err := ffmpeg.RunPlan(ctx, s.inv, plan)
	if err != nil {
		return OverlayResult{}, fmt.Errorf("%w: %w", job.ErrOverlay, err)
	}

	log.Info().
		Str(logging.FieldTier, tier).
		Str("filter", filter).
		Msg("audio track muxed")

	return OverlayResult{
		OutputPath: outputPath,
		Tier:       tier,
		Filter:     filter,
	}, nil
}

// Package pipeline orchestrates one stitch job end to end: fetch the
// segments (and optional audio), concatenate, overlay audio when requested,
// probe the final artifact, and package the result. Scratch space is
// destroyed on every exit path.
package pipeline

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/backmassage/stitchd/internal/config"
	"github.com/backmassage/stitchd/internal/display"
	"github.com/backmassage/stitchd/internal/fetch"
	"github.com/backmassage/stitchd/internal/ffmpeg"
	"github.com/backmassage/stitchd/internal/job"
	"github.com/backmassage/stitchd/internal/logging"
	"github.com/backmassage/stitchd/internal/probe"
	"github.com/backmassage/stitchd/internal/stitch"
)

// Stage names emitted at orchestrator transitions.
const (
	StageInit            = "init"
	StageFetching        = "fetching"
	StageConcatenating   = "concatenating"
	StageOverlayingAudio = "overlaying_audio"
	StageFinalizing      = "finalizing"
	StageSucceeded       = "succeeded"
	StageFailed          = "failed"
)

// Fetcher retrieves one remote source into a scratch directory.
type Fetcher interface {
	Fetch(ctx context.Context, url, destDir string, role fetch.Role, index int, defaultExt string) (string, error)
}

// Stitcher performs the concat and overlay media operations.
type Stitcher interface {
	Concat(ctx context.Context, segmentPaths []string, outputPath string, format job.Format) (stitch.ConcatResult, error)
	Overlay(ctx context.Context, videoPath, audioPath, outputPath string, volume, fadeOut float64, format job.Format) (stitch.OverlayResult, error)
}

// Runner executes stitch jobs to completion, one at a time.
type Runner struct {
	cfg      *config.Config
	fetcher  Fetcher
	stitcher Stitcher
	duration stitch.DurationFunc
}

// New wires a Runner with production collaborators.
func New(cfg *config.Config) *Runner {
	inv := ffmpeg.ExecInvoker{Tee: cfg.Verbose}
	return &Runner{
		cfg:      cfg,
		fetcher:  fetch.New(cfg.FetchTimeout),
		stitcher: stitch.New(cfg, inv),
		duration: probe.Duration,
	}
}

// NewWith wires a Runner with explicit collaborators, for tests.
func NewWith(cfg *config.Config, f Fetcher, s Stitcher, d stitch.DurationFunc) *Runner {
	return &Runner{cfg: cfg, fetcher: f, stitcher: s, duration: d}
}

// Run processes one job request and returns its result. Fatal errors are
// packaged into a failure result, never returned as a Go error: the host
// contract is the result map.
func (r *Runner) Run(ctx context.Context, req job.Request) job.Result {
	jobID := uuid.NewString()
	log := logging.WithComponent("pipeline").With().Str(logging.FieldJobID, jobID).Logger()
	start := time.Now()

	req.Normalize()
	stageEvent(log, StageInit)

	// Validation precedes scratch allocation: an invalid request leaves
	// no trace on disk.
	if err := req.Validate(); err != nil {
		return fail(log, err)
	}

	scratchDir, err := os.MkdirTemp(r.cfg.ScratchRoot, r.cfg.ScratchPrefix)
	if err != nil {
		return fail(log, fmt.Errorf("allocate scratch space: %w", err))
	}
	defer func() {
		// Unconditional recursive teardown; the scratch dir is the only
		// place any stage writes.
		if err := os.RemoveAll(scratchDir); err != nil {
			log.Error().Err(err).Str(logging.FieldPath, scratchDir).Msg("scratch cleanup failed")
		}
	}()

	log.Info().
		Int(logging.FieldSegments, len(req.Segments)).
		Str(logging.FieldFormat, string(req.Format)).
		Bool("audio_requested", req.HasAudio()).
		Str(logging.FieldPath, scratchDir).
		Msg("job accepted")

	// --- Fetching ---
	stageEvent(log, StageFetching)

	segmentPaths, err := r.fetchSegments(ctx, req, scratchDir)
	if err != nil {
		return fail(log, fmt.Errorf("%w: %w", job.ErrFetch, err))
	}

	// Audio acquisition failure degrades to video-only, same as an
	// overlay failure; it never fails the job.
	audioPath := ""
	if req.HasAudio() {
		audioPath, err = r.fetcher.Fetch(ctx, req.AudioURL, scratchDir, fetch.RoleAudio, 0, "")
		if err != nil {
			log.Warn().Err(err).Str(logging.FieldURL, req.AudioURL).
				Msg("audio fetch failed, proceeding without audio")
			audioPath = ""
		}
	}

	// --- Concatenating ---
	stageEvent(log, StageConcatenating)

	concatPath := filepath.Join(scratchDir, "stitched"+req.Format.Ext())
	concatRes, err := r.stitcher.Concat(ctx, segmentPaths, concatPath, req.Format)
	if err != nil {
		return fail(log, err)
	}

	// --- OverlayingAudio (optional, non-fatal) ---
	finalPath := concatRes.OutputPath
	hasAudio := false
	if audioPath != "" {
		stageEvent(log, StageOverlayingAudio)

		muxPath := filepath.Join(scratchDir, "final"+req.Format.Ext())
		overlayRes, err := r.stitcher.Overlay(ctx, concatRes.OutputPath, audioPath, muxPath,
			req.AudioVolume, req.FadeOut, req.Format)
		if err != nil {
			log.Warn().Err(err).Msg("audio overlay failed, delivering video-only output")
		} else {
			finalPath = overlayRes.OutputPath
			hasAudio = true
		}
	}

	// --- Finalizing ---
	stageEvent(log, StageFinalizing)

	duration := r.duration(ctx, finalPath)
	data, err := os.ReadFile(finalPath)
	if err != nil {
		return fail(log, fmt.Errorf("read output: %w", err))
	}

	result := job.Result{
		VideoBase64:   "data:" + req.Format.MIME() + ";base64," + base64.StdEncoding.EncodeToString(data),
		Duration:      duration,
		FileSizeBytes: int64(len(data)),
		SegmentsCount: len(req.Segments),
		Format:        req.Format,
		HasAudio:      hasAudio,
	}

	stageEvent(log, StageSucceeded)
	log.Info().
		Str("size", display.FormatBytes(result.FileSizeBytes)).
		Str("length", display.FormatSeconds(duration)).
		Float64(logging.FieldDuration, duration).
		Bool("has_audio", hasAudio).
		Dur("elapsed", time.Since(start)).
		Msg("job finished")

	return result
}

// fetchSegments downloads every segment concurrently, bounded by the
// configured fetch concurrency. Order of completion is irrelevant; order
// of use is fixed by index.
func (r *Runner) fetchSegments(ctx context.Context, req job.Request, scratchDir string) ([]string, error) {
	paths := make([]string, len(req.Segments))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.FetchConcurrency)

	for i, url := range req.Segments {
		i, url := i, url
		g.Go(func() error {
			path, err := r.fetcher.Fetch(gctx, url, scratchDir, fetch.RoleSegment, i, req.Format.Ext())
			if err != nil {
				return fmt.Errorf("segment %d: %w", i, err)
			}
			paths[i] = path
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return paths, nil
}

func stageEvent(log zerolog.Logger, stage string) {
	log.Info().Str(logging.FieldStage, stage).Msg("stage")
}

func fail(log zerolog.Logger, err error) job.Result {
	stageEvent(log, StageFailed)
	log.Error().Err(err).Msg("job failed")
	return job.Failure(err)
}

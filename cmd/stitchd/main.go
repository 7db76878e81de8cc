// Command stitchd is the video segment stitching worker. It parses flags,
// validates configuration, verifies the ffmpeg toolchain, and serves the
// job endpoint until interrupted.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/backmassage/stitchd/internal/api"
	"github.com/backmassage/stitchd/internal/check"
	"github.com/backmassage/stitchd/internal/config"
	"github.com/backmassage/stitchd/internal/logging"
	"github.com/backmassage/stitchd/internal/pipeline"
)

// version and commit are injected at build time via -ldflags.
var (
	version = "1.0.0"
	commit  = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Phase 1: Bootstrap — the logger doesn't exist yet, so errors go
	// directly to stderr via fmt.
	cfg := config.Default()
	if err := config.ParseFlags(&cfg, version, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "stitchd: %v\n", err)
		return 1
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "stitchd: %v\n", err)
		return 1
	}

	logging.Configure(logging.Config{Level: cfg.LogLevel})
	log := logging.WithComponent("main")

	log.Info().
		Str("version", version).
		Str("commit", commit).
		Str("listen", cfg.ListenAddr).
		Msg("stitchd starting")

	// Phase 2: Fail fast if ffmpeg/ffprobe or the fallback encoders are
	// unavailable.
	if err := check.Deps(&cfg); err != nil {
		log.Error().Err(err).Msg("dependency check failed")
		return 1
	}

	// Phase 3: Serve until SIGINT/SIGTERM, then drain in-flight jobs.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runner := pipeline.New(&cfg)
	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           api.Server{Runner: runner, FFmpegVersion: check.Version()}.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server failed")
			return 1
		}
	case <-ctx.Done():
		log.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("shutdown incomplete")
			return 1
		}
	}

	return 0
}

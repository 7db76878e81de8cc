package config

// This file implements CLI flag parsing and help text. Environment
// variables provide the container-friendly override path; flags win over
// environment, environment wins over defaults.

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"
)

// ParseFlags parses args (without the program name) into cfg. On --help or
// --version it prints and exits. On error it returns non-nil.
func ParseFlags(cfg *Config, version string, args []string) error {
	applyEnv(cfg)

	fs := flag.NewFlagSet("stitchd", flag.ContinueOnError)
	fs.Usage = func() { printUsage(fs) }

	var showVersion bool

	fs.StringVar(&cfg.ListenAddr, "listen", cfg.ListenAddr, "HTTP listen address")
	fs.StringVar(&cfg.ScratchRoot, "scratch", cfg.ScratchRoot, "Scratch directory root (default: system temp)")
	fs.DurationVar(&cfg.FetchTimeout, "fetch-timeout", cfg.FetchTimeout, "Per-request download timeout")
	fs.IntVar(&cfg.FetchConcurrency, "fetch-concurrency", cfg.FetchConcurrency, "Parallel segment downloads (1 = sequential)")
	fs.StringVar(&cfg.AudioBitrate, "audio-bitrate", cfg.AudioBitrate, "Audio bitrate for re-encoded tracks (e.g. 128k)")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level: debug | info | warn | error")
	fs.BoolVar(&cfg.Verbose, "verbose", false, "Debug logging plus live ffmpeg stderr")
	fs.BoolVar(&cfg.Verbose, "v", false, "Same as --verbose")
	fs.BoolVar(&showVersion, "version", false, "Print version and exit")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if showVersion {
		fmt.Fprintln(os.Stdout, "stitchd v"+version)
		os.Exit(0)
	}

	if cfg.Verbose {
		cfg.LogLevel = "debug"
	}

	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected argument %q", fs.Arg(0))
	}
	return nil
}

// applyEnv folds environment overrides into cfg before flag parsing.
func applyEnv(cfg *Config) {
	if v := os.Getenv("STITCHD_LISTEN"); v != "" {
		cfg.ListenAddr = v
	}
	if v := os.Getenv("STITCHD_SCRATCH"); v != "" {
		cfg.ScratchRoot = v
	}
	if v := os.Getenv("STITCHD_FETCH_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.FetchTimeout = d
		}
	}
	if v := os.Getenv("STITCHD_FETCH_CONCURRENCY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.FetchConcurrency = n
		}
	}
	if v := os.Getenv("STITCHD_AUDIO_BITRATE"); v != "" {
		cfg.AudioBitrate = v
	}
	if v := os.Getenv("STITCHD_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
}

func printUsage(fs *flag.FlagSet) {
	fmt.Fprintln(os.Stderr, "Usage: stitchd [flags]")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Video segment stitching worker. Accepts jobs on POST /v1/jobs,")
	fmt.Fprintln(os.Stderr, "concatenates the segments, optionally muxes an audio track, and")
	fmt.Fprintln(os.Stderr, "returns the result as a base64 data URI.")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Flags:")
	fs.PrintDefaults()
}

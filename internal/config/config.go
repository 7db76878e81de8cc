// Package config holds runtime configuration: defaults, CLI flag parsing,
// and validation.
package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// EncodeTarget is the fixed codec/quality pair used by the transcode
// fallback tier for one output container.
type EncodeTarget struct {
	VideoCodec   string
	VideoOpts    []string // quality/preset flags, e.g. -preset fast -crf 23
	AudioCodec   string
	AudioBitrate string
}

// Config holds all runtime settings. It is populated by [Default] and then
// mutated by [ParseFlags] before being passed (by pointer) to packages that
// need it.
type Config struct {
	// HTTP host adapter.
	ListenAddr string // Default: ":8080".

	// Scratch space.
	ScratchRoot   string // Default: "" (system temp dir).
	ScratchPrefix string // Fixed: "stitch_".

	// Fetching.
	FetchTimeout     time.Duration // Default: 120s.
	FetchConcurrency int           // Default: 4. 1 means strictly sequential.

	// Transcode fallback targets, keyed by container.
	MP4Target  EncodeTarget
	WebMTarget EncodeTarget

	// Audio bitrate applied to both targets. Default: "128k".
	AudioBitrate string

	// ffmpeg probe constants (not user-configurable).
	FFmpegProbesize       string
	FFmpegAnalyzeDuration string

	// Logging.
	LogLevel string // Default: "info".
	Verbose  bool   // Debug level plus ffmpeg stderr tee.
}

// Default returns a Config with all defaults. Used as the base before
// [ParseFlags] applies CLI overrides.
func Default() Config {
	return Config{
		ListenAddr:       ":8080",
		ScratchPrefix:    "stitch_",
		FetchTimeout:     120 * time.Second,
		FetchConcurrency: 4,
		MP4Target: EncodeTarget{
			VideoCodec:   "libx264",
			VideoOpts:    []string{"-preset", "fast", "-crf", "23"},
			AudioCodec:   "aac",
			AudioBitrate: "128k",
		},
		WebMTarget: EncodeTarget{
			VideoCodec:   "libvpx-vp9",
			VideoOpts:    []string{"-crf", "32", "-b:v", "0"},
			AudioCodec:   "libopus",
			AudioBitrate: "128k",
		},
		AudioBitrate:          "128k",
		FFmpegProbesize:       "100M",
		FFmpegAnalyzeDuration: "100M",
		LogLevel:              "info",
	}
}

// TargetFor returns the transcode target for the given container name.
// Unknown containers fall back to the MP4 target.
func (c *Config) TargetFor(format string) EncodeTarget {
	if strings.EqualFold(format, "webm") {
		return c.WebMTarget
	}
	return c.MP4Target
}

// Validate checks field ranges and canonicalizes the audio bitrate into
// both encode targets.
func (c *Config) Validate() error {
	if c.ListenAddr == "" {
		return errors.New("listen address must not be empty")
	}
	if c.FetchTimeout <= 0 {
		return errors.New("fetch timeout must be positive")
	}
	if c.FetchConcurrency < 1 {
		return errors.New("fetch concurrency must be at least 1")
	}

	normalized, err := normalizeAudioBitrate(c.AudioBitrate)
	if err != nil {
		return err
	}
	c.AudioBitrate = normalized
	c.MP4Target.AudioBitrate = normalized
	c.WebMTarget.AudioBitrate = normalized
	return nil
}

// normalizeAudioBitrate validates and canonicalizes user bitrate input.
// Accepted forms: "128", "128k", "128K", "128kbps". Output is "<n>k".
func normalizeAudioBitrate(raw string) (string, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return "", errors.New("audio bitrate must not be empty")
	}
	if strings.HasSuffix(s, "kbps") {
		s = strings.TrimSpace(strings.TrimSuffix(s, "kbps"))
	} else if strings.HasSuffix(s, "k") {
		s = strings.TrimSpace(strings.TrimSuffix(s, "k"))
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return "", fmt.Errorf("invalid audio bitrate %q (use positive Kbps value, e.g. 128k)", raw)
	}
	return fmt.Sprintf("%dk", n), nil
}

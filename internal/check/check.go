// Package check provides pre-serve dependency validation for ffmpeg,
// ffprobe, and the encoders the transcode fallback tiers rely on.
package check

import (
	"errors"
	"os/exec"
	"strings"

	"github.com/backmassage/stitchd/internal/config"
	"github.com/backmassage/stitchd/internal/logging"
)

// Sentinel errors returned by Deps when a required tool or encoder is missing.
var (
	ErrFfmpegNotFound  = errors.New("ffmpeg not found on PATH")
	ErrFfprobeNotFound = errors.New("ffprobe not found on PATH")
	ErrMP4EncodeFailed = errors.New("libx264/aac test encode failed (mp4 fallback tier unusable)")
)

// Deps verifies that ffmpeg and ffprobe are on PATH and that the mp4
// fallback encoders actually work. The webm encoders are tested too, but a
// webm failure only logs a warning: mp4 is the default container and webm
// jobs will surface their own tool errors.
func Deps(cfg *config.Config) error {
	log := logging.WithComponent("check")

	if _, err := exec.LookPath("ffmpeg"); err != nil {
		return ErrFfmpegNotFound
	}
	if _, err := exec.LookPath("ffprobe"); err != nil {
		return ErrFfprobeNotFound
	}
	if v := Version(); v != "" {
		log.Debug().Str("ffmpeg", v).Msg("tool found")
	}

	if !testEncode(cfg.MP4Target) {
		return ErrMP4EncodeFailed
	}
	log.Debug().Msg("mp4 fallback encoders ok")

	if !testEncode(cfg.WebMTarget) {
		log.Warn().Msg("libvpx-vp9/libopus test encode failed, webm fallback tier unavailable")
	} else {
		log.Debug().Msg("webm fallback encoders ok")
	}
	return nil
}

// testEncode runs a minimal lavfi encode through the target's video and
// audio codecs to verify both are built into the local ffmpeg.
func testEncode(target config.EncodeTarget) bool {
	args := []string{
		"-hide_banner", "-nostdin", "-loglevel", "error",
		"-f", "lavfi", "-i", "color=black:s=256x256:d=0.1",
		"-f", "lavfi", "-i", "sine=frequency=1000:duration=0.1",
		"-c:v", target.VideoCodec,
	}
	args = append(args, target.VideoOpts...)
	args = append(args,
		"-c:a", target.AudioCodec,
		"-b:a", target.AudioBitrate,
		"-f", "null", "-",
	)
	return runSilent("ffmpeg", args...)
}

// Version returns the first line of ffmpeg -version, or "" when unknown.
func Version() string {
	out, err := exec.Command("ffmpeg", "-version").Output()
	if err != nil {
		return ""
	}
	line := strings.TrimSpace(string(out))
	if idx := strings.Index(line, "\n"); idx > 0 {
		line = line[:idx]
	}
	return line
}

// runSilent runs a command and returns true if it exits with status 0.
// Both stdout and stderr are discarded.
func runSilent(name string, args ...string) bool {
	cmd := exec.Command(name, args...)
	cmd.Stdout = nil
	cmd.Stderr = nil
	return cmd.Run() == nil
}

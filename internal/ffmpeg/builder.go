package ffmpeg

import (
	"github.com/backmassage/stitchd/internal/config"
)

// preamble returns the shared argument skeleton every ffmpeg invocation
// starts with. Loglevel is error unless verbose; probe constants keep
// stream detection stable on unusual inputs.
func preamble(cfg *config.Config) []string {
	args := make([]string, 0, 64)
	args = append(args, "ffmpeg", "-hide_banner", "-nostdin", "-y")

	if cfg.Verbose {
		args = append(args, "-loglevel", "info")
	} else {
		args = append(args, "-loglevel", "error")
	}

	args = append(args,
		"-probesize", cfg.FFmpegProbesize,
		"-analyzeduration", cfg.FFmpegAnalyzeDuration,
		"-ignore_unknown",
	)
	return args
}

// ConcatCopyArgs builds the stream-copy concat command: all codec streams
// are copied byte for byte. Fast and lossless, but only valid when every
// segment shares compatible codec parameters.
func ConcatCopyArgs(cfg *config.Config, manifestPath, outputPath string) []string {
	args := preamble(cfg)
	args = append(args,
		"-f", "concat",
		"-safe", "0",
		"-i", manifestPath,
		"-c", "copy",
		outputPath,
	)
	return args
}

// ConcatTranscodeArgs builds the re-encode concat command used when stream
// copy is rejected. Video and audio are re-encoded to the container's
// fixed targets, which tolerates heterogeneous input codecs.
func ConcatTranscodeArgs(cfg *config.Config, manifestPath, outputPath string, target config.EncodeTarget) []string {
	args := preamble(cfg)
	args = append(args,
		"-f", "concat",
		"-safe", "0",
		"-i", manifestPath,
		"-c:v", target.VideoCodec,
	)
	args = append(args, target.VideoOpts...)
	args = append(args,
		"-c:a", target.AudioCodec,
		"-b:a", target.AudioBitrate,
		outputPath,
	)
	return args
}

// MuxCopyArgs builds the fast mux command: video stream copied from input 0,
// audio taken from input 1 and re-encoded to the container's audio target,
// output truncated to the shorter stream. audioFilter may be empty.
func MuxCopyArgs(cfg *config.Config, videoPath, audioPath, outputPath, audioFilter string, target config.EncodeTarget) []string {
	args := preamble(cfg)
	args = append(args,
		"-i", videoPath,
		"-i", audioPath,
		"-map", "0:v:0",
		"-map", "1:a:0",
		"-c:v", "copy",
		"-c:a", target.AudioCodec,
		"-b:a", target.AudioBitrate,
	)
	if audioFilter != "" {
		args = append(args, "-filter:a", audioFilter)
	}
	args = append(args, "-shortest", outputPath)
	return args
}

// MuxTranscodeArgs builds the mux fallback: both streams re-encoded to the
// container's fixed targets, same mapping and truncation as the copy tier.
func MuxTranscodeArgs(cfg *config.Config, videoPath, audioPath, outputPath, audioFilter string, target config.EncodeTarget) []string {
	args := preamble(cfg)
	args = append(args,
		"-i", videoPath,
		"-i", audioPath,
		"-map", "0:v:0",
		"-map", "1:a:0",
		"-c:v", target.VideoCodec,
	)
	args = append(args, target.VideoOpts...)
	args = append(args,
		"-c:a", target.AudioCodec,
		"-b:a", target.AudioBitrate,
	)
	if audioFilter != "" {
		args = append(args, "-filter:a", audioFilter)
	}
	args = append(args, "-shortest", outputPath)
	return args
}

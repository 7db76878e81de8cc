// Package stitch implements the two media operations at the heart of the
// pipeline: concatenating an ordered set of video segments into one file,
// and muxing an audio track onto a video with optional gain and fade-out.
//
// Both operations share the two-tier strategy: a fast stream-copy attempt
// first, then a deterministic re-encode fallback when the tool rejects the
// copy (typically because segment codec parameters are incompatible, or
// the video codec cannot be carried into the container as-is).
package stitch

// Package job defines the stitch job request and result wire types, the
// validation rules applied before any processing, and the pipeline error
// kinds.
package job

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Format is the output container format.
type Format string

const (
	FormatMP4  Format = "mp4"  // Default.
	FormatWebM Format = "webm"
)

// MIME returns the media type used in the data URI prefix.
func (f Format) MIME() string {
	if f == FormatWebM {
		return "video/webm"
	}
	return "video/mp4"
}

// Ext returns the file extension including the leading dot.
func (f Format) Ext() string {
	if f == FormatWebM {
		return ".webm"
	}
	return ".mp4"
}

// Request is the job input received from the host.
type Request struct {
	Segments    []string `json:"segments"`
	AudioURL    string   `json:"audio_url,omitempty"`
	AudioVolume float64  `json:"audio_volume,omitempty"`
	FadeOut     float64  `json:"fade_out,omitempty"`
	Format      Format   `json:"output_format,omitempty"`
}

// Normalize fills defaulted fields in place: format mp4, volume 1.0.
func (r *Request) Normalize() {
	if r.Format == "" {
		r.Format = FormatMP4
	}
	if r.AudioVolume == 0 {
		r.AudioVolume = 1.0
	}
}

// Validate checks the request against the input contract. It does not
// normalize; call [Request.Normalize] first.
func (r *Request) Validate() error {
	if len(r.Segments) < 2 {
		return fmt.Errorf("%w: at least 2 video segment URLs are required", ErrValidation)
	}
	switch r.Format {
	case FormatMP4, FormatWebM:
		// valid
	default:
		return fmt.Errorf("%w: invalid output_format %q (use 'mp4' or 'webm')", ErrValidation, r.Format)
	}
	if r.AudioVolume <= 0 {
		return fmt.Errorf("%w: audio_volume must be positive", ErrValidation)
	}
	if r.FadeOut < 0 {
		return fmt.Errorf("%w: fade_out must not be negative", ErrValidation)
	}
	return nil
}

// HasAudio reports whether an audio overlay was requested.
func (r *Request) HasAudio() bool {
	return r.AudioURL != ""
}

// Result is the job output returned to the host. On success VideoBase64
// carries the data URI payload; on failure only Error is set.
type Result struct {
	VideoBase64   string  `json:"video_base64"`
	Duration      float64 `json:"duration"`
	FileSizeBytes int64   `json:"file_size_bytes"`
	SegmentsCount int     `json:"segments_count"`
	Format        Format  `json:"format"`
	HasAudio      bool    `json:"has_audio"`
	Error         string  `json:"error,omitempty"`
}

// MarshalJSON keeps the failure shape to a single error key, matching the
// host contract: no partial result fields alongside an error.
func (r Result) MarshalJSON() ([]byte, error) {
	if r.Error != "" {
		return json.Marshal(struct {
			Error string `json:"error"`
		}{r.Error})
	}
	return json.Marshal(struct {
		VideoBase64   string  `json:"video_base64"`
		Duration      float64 `json:"duration"`
		FileSizeBytes int64   `json:"file_size_bytes"`
		SegmentsCount int     `json:"segments_count"`
		Format        Format  `json:"format"`
		HasAudio      bool    `json:"has_audio"`
	}{r.VideoBase64, r.Duration, r.FileSizeBytes, r.SegmentsCount, r.Format, r.HasAudio})
}

// Failure wraps err into a failure Result.
func Failure(err error) Result {
	return Result{Error: err.Error()}
}

// Pipeline error kinds. Fatal kinds end the job; ErrOverlay degrades to
// video-only output.
var (
	ErrValidation = errors.New("validation failed")
	ErrFetch      = errors.New("fetch failed")
	ErrConcat     = errors.New("concatenation failed")
	ErrOverlay    = errors.New("audio overlay failed")
)

package logging

// Canonical field name constants for structured logging.
const (
	FieldComponent = "component"
	FieldJobID     = "job_id"
	FieldRequestID = "request_id"
	FieldStage     = "stage"
	FieldTier      = "tier"

	FieldURL        = "url"
	FieldPath       = "path"
	FieldRole       = "role"
	FieldIndex      = "index"
	FieldFormat     = "format"
	FieldCodec      = "codec"
	FieldPixFmt     = "pix_fmt"
	FieldResolution = "resolution"
	FieldHasAudio   = "has_audio"
	FieldDuration   = "duration_s"
	FieldBytes      = "bytes"
	FieldSegments   = "segments"
)

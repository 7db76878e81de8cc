package stitch

import (
	"strconv"
	"strings"
)

// BuildAudioFilter constructs the comma-joined audio filter chain for the
// overlay mux. Filters are appended in order when non-default:
//
//   - volume gain when the multiplier is not 1.0
//   - fade-out over the final fadeOut seconds, only when the fade window
//     fits strictly inside the video's duration; a window as long as the
//     clip (or longer, or an unknown duration) means no fade, not an error
//
// Returns an empty string when no filters apply.
func BuildAudioFilter(volume, fadeOut, videoDuration float64) string {
	var filters []string

	if volume != 1.0 {
		filters = append(filters, "volume="+formatSeconds(volume))
	}

	if fadeOut > 0 && fadeOut < videoDuration {
		start := videoDuration - fadeOut
		filters = append(filters,
			"afade=t=out:st="+formatSeconds(start)+":d="+formatSeconds(fadeOut))
	}

	return strings.Join(filters, ",")
}

// formatSeconds renders a float without trailing zeros ("0.5", "12", "3.25").
func formatSeconds(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

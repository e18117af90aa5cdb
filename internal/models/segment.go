package models

import (
	"fmt"
	"strings"
)

// ContentSegment is one timed slice of extracted content.
// Sequences are ordered ascending by StartTime with EndTime >= StartTime.
// For untimed sources (articles, documents) the times are synthetic, one
// minute per segment, so the same windowing logic applies uniformly.
type ContentSegment struct {
	Text      string  `json:"text"`
	StartTime float64 `json:"startTime"` // seconds from content start
	EndTime   float64 `json:"endTime"`
}

// Timestamp formats the segment start as M:SS or H:MM:SS.
func (s ContentSegment) Timestamp() string {
	return FormatTimestamp(s.StartTime)
}

// FormatTimestamp renders seconds-from-start as M:SS or H:MM:SS.
func FormatTimestamp(seconds float64) string {
	total := int(seconds)
	mins, secs := total/60, total%60
	hours, mins := mins/60, mins%60
	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, mins, secs)
	}
	return fmt.Sprintf("%d:%02d", mins, secs)
}

// TotalDuration returns the end time of the last segment, or 0 for empty input.
func TotalDuration(segments []ContentSegment) float64 {
	if len(segments) == 0 {
		return 0
	}
	return segments[len(segments)-1].EndTime
}

// FlatText joins segment texts with single spaces, collapsing runs of
// whitespace inside each segment.
func FlatText(segments []ContentSegment) string {
	parts := make([]string, 0, len(segments))
	for _, s := range segments {
		t := strings.Join(strings.Fields(s.Text), " ")
		if t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}

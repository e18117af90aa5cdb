// Package synthesize turns timed content segments into structured
// documents through LLM calls, chunking long sources into windows and
// merging the partial results.
package synthesize

import (
	"time"

	"github.com/loreline/loreline/internal/models"
)

// Partition splits segments into consecutive windows of at most windowMax
// duration, measured from each window's first segment start. Segments are
// never split. A segment whose start falls past the window boundary opens
// the next window, so windows can run slightly over when a segment
// straddles the edge.
func Partition(segments []models.ContentSegment, windowMax time.Duration) [][]models.ContentSegment {
	if len(segments) == 0 {
		return nil
	}

	maxSeconds := windowMax.Seconds()
	var windows [][]models.ContentSegment
	var current []models.ContentSegment
	windowStart := segments[0].StartTime

	for _, segment := range segments {
		if segment.StartTime-windowStart >= maxSeconds && len(current) > 0 {
			windows = append(windows, current)
			current = nil
			windowStart = segment.StartTime
		}
		current = append(current, segment)
	}
	if len(current) > 0 {
		windows = append(windows, current)
	}

	return windows
}

package pipeline

import (
	"errors"
	"strings"

	"github.com/loreline/loreline/internal/extract"
)

// FriendlyError converts a processing error into a message fit for
// showing to the person who submitted the job. Anything technical or
// overly long collapses to a generic message.
func FriendlyError(err error) string {
	if err == nil {
		return ""
	}

	if errors.Is(err, extract.ErrUnsupportedSource) {
		return "This type of content isn't supported yet. Try a video or article link."
	}

	var cascade *extract.CascadeError
	if errors.As(err, &cascade) {
		switch {
		case cascade.HasOutcome(extract.OutcomePermanent):
			return "This source's content is protected or unavailable. Please try a different source."
		case cascade.HasOutcome(extract.OutcomeNotFound) && !cascade.HasOutcome(extract.OutcomeTransient):
			return "No captions or readable content were found for this source. Try a different one."
		default:
			return "The source could not be reached right now. Please try again in a few minutes."
		}
	}

	message := err.Error()
	lower := strings.ToLower(message)

	switch {
	case strings.Contains(lower, "multiple empty responses"):
		return "This source's content is protected. Please try a different source."
	case strings.Contains(lower, "no content found"), strings.Contains(lower, "no transcript"):
		return "No captions or readable content were found for this source. Try a different one."
	case strings.Contains(lower, "timeout"), strings.Contains(lower, "deadline"), strings.Contains(lower, "connection"):
		return "Connection error. Please check the source is reachable and try again."
	case strings.Contains(lower, "rate limit"), strings.Contains(lower, "too many requests"):
		return "Too many requests. Please wait a moment and try again."
	case strings.Contains(lower, "invalid") && strings.Contains(lower, "url"):
		return "That doesn't look like a valid source URL. Please check it and try again."
	}

	if len(message) > 100 {
		return "Something went wrong while processing this source. Please try again."
	}
	return message
}

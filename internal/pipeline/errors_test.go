package pipeline

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/loreline/loreline/internal/extract"
)

func TestFriendlyErrorCascades(t *testing.T) {
	permanent := &extract.CascadeError{Failures: []extract.StrategyFailure{
		{Strategy: "caption_api", Outcome: extract.OutcomeTransient},
		{Strategy: "timedtext", Outcome: extract.OutcomePermanent},
	}}
	assert.Contains(t, FriendlyError(permanent), "protected or unavailable")

	notFound := &extract.CascadeError{Failures: []extract.StrategyFailure{
		{Strategy: "caption_api", Outcome: extract.OutcomeNotFound},
	}}
	assert.Contains(t, FriendlyError(notFound), "No captions or readable content")

	transient := &extract.CascadeError{Failures: []extract.StrategyFailure{
		{Strategy: "caption_api", Outcome: extract.OutcomeTransient},
	}}
	assert.Contains(t, FriendlyError(transient), "try again in a few minutes")
}

func TestFriendlyErrorUnsupportedSource(t *testing.T) {
	err := fmt.Errorf("%w: pdf", extract.ErrUnsupportedSource)
	assert.Contains(t, FriendlyError(err), "isn't supported yet")
}

func TestFriendlyErrorMessages(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{errors.New("strategy hit multiple empty responses"), "protected"},
		{errors.New("dial tcp: connection refused"), "Connection error"},
		{errors.New("context deadline exceeded"), "Connection error"},
		{errors.New("upstream rate limit hit"), "Too many requests"},
		{errors.New("invalid source url given"), "valid source URL"},
	}
	for _, tt := range tests {
		assert.Contains(t, FriendlyError(tt.err), tt.want, "input: %v", tt.err)
	}
}

func TestFriendlyErrorLongMessagesCollapse(t *testing.T) {
	long := errors.New(strings.Repeat("x", 150))
	assert.Equal(t, "Something went wrong while processing this source. Please try again.", FriendlyError(long))
}

func TestFriendlyErrorShortMessagePassesThrough(t *testing.T) {
	assert.Equal(t, "boom", FriendlyError(errors.New("boom")))
	assert.Empty(t, FriendlyError(nil))
}

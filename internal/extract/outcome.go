// Package extract pulls timed content segments out of external sources.
//
// Extraction runs a cascade of strategies. Each strategy reports a
// classified outcome so the engine knows whether to retry, skip ahead,
// or give up on the source entirely.
package extract

import (
	"context"
	"errors"
	"fmt"
)

// Outcome classifies the result of a single extraction attempt.
type Outcome int

const (
	// OutcomeSuccess means segments were produced.
	OutcomeSuccess Outcome = iota
	// OutcomeTransient means the attempt failed in a retryable way,
	// rate limits, timeouts, upstream 5xx.
	OutcomeTransient
	// OutcomePermanent means the source actively refuses this strategy.
	// Retrying the same strategy will not help.
	OutcomePermanent
	// OutcomeNotFound means the source has no content for this strategy.
	OutcomeNotFound
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeTransient:
		return "transient"
	case OutcomePermanent:
		return "permanent"
	case OutcomeNotFound:
		return "not_found"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// ErrNotFound reports that the strategy found no content for the source.
var ErrNotFound = errors.New("no content found")

// ErrUnsupportedSource reports that no strategy in the cascade handles
// the detected source type.
var ErrUnsupportedSource = errors.New("unsupported source type")

type classifiedError struct {
	outcome Outcome
	err     error
}

func (e *classifiedError) Error() string {
	return fmt.Sprintf("%s: %v", e.outcome, e.err)
}

func (e *classifiedError) Unwrap() error { return e.err }

// Transient wraps an error as a retryable failure.
func Transient(err error) error {
	return &classifiedError{outcome: OutcomeTransient, err: err}
}

// Permanent wraps an error as a non-retryable block.
func Permanent(err error) error {
	return &classifiedError{outcome: OutcomePermanent, err: err}
}

// ClassifyError maps an extraction error to an outcome. Timeouts and
// unclassified errors count as transient so the engine retries them.
func ClassifyError(err error) Outcome {
	var ce *classifiedError
	if errors.As(err, &ce) {
		return ce.outcome
	}
	if errors.Is(err, ErrNotFound) {
		return OutcomeNotFound
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return OutcomeTransient
	}
	return OutcomeTransient
}

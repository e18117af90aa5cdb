package extract

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/loreline/loreline/internal/models"
)

// Result is the output of a successful extraction.
type Result struct {
	Segments []models.ContentSegment
	Title    string
	Strategy string
}

// Empty reports whether the extraction produced no usable content.
func (r *Result) Empty() bool {
	if r == nil || len(r.Segments) == 0 {
		return true
	}
	for _, seg := range r.Segments {
		if strings.TrimSpace(seg.Text) != "" {
			return false
		}
	}
	return true
}

// Strategy is one way of getting content out of a source reference.
type Strategy interface {
	Name() string
	// Supports reports whether the strategy can handle this kind of
	// source. The engine skips strategies that don't.
	Supports(t SourceType) bool
	Extract(ctx context.Context, ref string) (*Result, error)
}

// StrategyFailure records how one strategy ended for error reporting.
type StrategyFailure struct {
	Strategy string
	Outcome  Outcome
	Err      error
}

// CascadeError aggregates the failures of every strategy in the cascade.
type CascadeError struct {
	Ref      string
	Failures []StrategyFailure
}

func (e *CascadeError) Error() string {
	parts := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		parts = append(parts, fmt.Sprintf("%s: %s", f.Strategy, f.Outcome))
	}
	return fmt.Sprintf("all extraction strategies failed for %s (%s)", models.ShortRef(e.Ref), strings.Join(parts, ", "))
}

// HasOutcome reports whether any strategy ended with the given outcome.
func (e *CascadeError) HasOutcome(o Outcome) bool {
	for _, f := range e.Failures {
		if f.Outcome == o {
			return true
		}
	}
	return false
}

// Engine runs a strategy cascade with retries and backoff.
type Engine struct {
	strategies     []Strategy
	maxAttempts    int
	backoffBase    time.Duration
	attemptTimeout time.Duration
	logger         *slog.Logger

	sleep func(ctx context.Context, d time.Duration) error
}

// Options tunes the retry behavior of the engine.
type Options struct {
	// MaxAttempts is the per-strategy attempt budget.
	MaxAttempts int
	// BackoffBase is the first retry delay. The delay doubles after each
	// failed attempt.
	BackoffBase time.Duration
	// AttemptTimeout bounds a single strategy attempt.
	AttemptTimeout time.Duration
}

// NewEngine builds an engine over the given strategies, tried in order.
func NewEngine(strategies []Strategy, opts Options, logger *slog.Logger) *Engine {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 3
	}
	if opts.BackoffBase <= 0 {
		opts.BackoffBase = time.Second
	}
	if opts.AttemptTimeout <= 0 {
		opts.AttemptTimeout = 30 * time.Second
	}
	return &Engine{
		strategies:     strategies,
		maxAttempts:    opts.MaxAttempts,
		backoffBase:    opts.BackoffBase,
		attemptTimeout: opts.AttemptTimeout,
		logger:         logger.With("component", "extract"),
		sleep:          sleepCtx,
	}
}

// Extract runs the cascade until a strategy produces content. The
// detected source type picks which strategies take part; the first
// success wins. A strategy that keeps returning empty results without
// erroring is treated as blocked after two empty responses in a row.
func (e *Engine) Extract(ctx context.Context, ref string) (*Result, error) {
	kind := DetectSourceType(ref)
	var failures []StrategyFailure
	attempted := 0

	for _, strategy := range e.strategies {
		if !strategy.Supports(kind) {
			continue
		}
		attempted++
		result, failure := e.runStrategy(ctx, strategy, ref)
		if result != nil {
			e.logger.Info("extraction succeeded",
				"strategy", strategy.Name(),
				"segments", len(result.Segments),
				"source_ref", models.ShortRef(ref))
			result.Strategy = strategy.Name()
			return result, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		failures = append(failures, *failure)
		e.logger.Warn("extraction strategy failed",
			"strategy", strategy.Name(),
			"outcome", failure.Outcome,
			"error", failure.Err)
	}

	if attempted == 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedSource, kind)
	}
	return nil, &CascadeError{Ref: ref, Failures: failures}
}

func (e *Engine) runStrategy(ctx context.Context, strategy Strategy, ref string) (*Result, *StrategyFailure) {
	emptyStreak := 0
	var lastErr error
	lastOutcome := OutcomeTransient

	for attempt := 0; attempt < e.maxAttempts; attempt++ {
		if attempt > 0 {
			delay := e.backoffBase * (1 << (attempt - 1))
			if err := e.sleep(ctx, delay); err != nil {
				return nil, &StrategyFailure{Strategy: strategy.Name(), Outcome: OutcomeTransient, Err: err}
			}
		}

		attemptCtx, cancel := context.WithTimeout(ctx, e.attemptTimeout)
		result, err := strategy.Extract(attemptCtx, ref)
		cancel()

		if err != nil {
			lastErr = err
			lastOutcome = ClassifyError(err)
			// An error between two empty responses breaks the streak:
			// the reclassification below only applies to consecutive
			// empties.
			emptyStreak = 0
			if lastOutcome != OutcomeTransient {
				break
			}
			continue
		}

		if !result.Empty() {
			return result, nil
		}

		// The source answered but sent nothing. One empty response can
		// be a fluke. Two in a row means the source is stonewalling.
		emptyStreak++
		if emptyStreak >= 2 {
			return nil, &StrategyFailure{
				Strategy: strategy.Name(),
				Outcome:  OutcomePermanent,
				Err:      fmt.Errorf("multiple empty responses from source"),
			}
		}
		lastErr = fmt.Errorf("empty response from source")
		lastOutcome = OutcomeTransient
	}

	return nil, &StrategyFailure{Strategy: strategy.Name(), Outcome: lastOutcome, Err: lastErr}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

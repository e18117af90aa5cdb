package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loreline/loreline/internal/extract"
	"github.com/loreline/loreline/internal/jobs"
	"github.com/loreline/loreline/internal/models"
	"github.com/loreline/loreline/internal/publish"
	"github.com/loreline/loreline/internal/store"
	"github.com/loreline/loreline/internal/synthesize"
)

func newSynthEngine(o *stubOracle) *synthesize.Engine {
	return synthesize.NewEngine(o, synthesize.Options{}, discard())
}

type stubStrategy struct {
	result *extract.Result
	err    error
}

func (s *stubStrategy) Name() string { return "stub" }

func (s *stubStrategy) Supports(extract.SourceType) bool { return true }

func (s *stubStrategy) Extract(context.Context, string) (*extract.Result, error) {
	return s.result, s.err
}

type stubOracle struct{ response string }

func (s *stubOracle) Complete(context.Context, string) (string, error) {
	return s.response, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []publish.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, event publish.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

func discard() *slog.Logger { return slog.New(slog.DiscardHandler) }

func newTestRunner(t *testing.T, strategy extract.Strategy, publisher publish.Publisher) (*Runner, *store.Memory, *jobs.Ledger) {
	t.Helper()
	mem := store.NewMemory()
	ledger := jobs.NewLedger(mem, discard())
	extractor := extract.NewEngine([]extract.Strategy{strategy}, extract.Options{MaxAttempts: 1}, discard())
	synthesizer := newSynthEngine(&stubOracle{response: `{"title": "Synth Title", "contentType": "lecture", "overview": "An overview."}`})

	runner, err := NewRunner(ledger, extractor, synthesizer, mem, publisher, Options{Workers: 2}, discard())
	require.NoError(t, err)
	t.Cleanup(runner.Close)
	return runner, mem, ledger
}

func goodStrategy() *stubStrategy {
	return &stubStrategy{result: &extract.Result{
		Title: "Extracted Title",
		Segments: []models.ContentSegment{
			{Text: "some spoken words", StartTime: 0, EndTime: 30},
		},
	}}
}

func TestProcessHappyPath(t *testing.T) {
	publisher := &recordingPublisher{}
	runner, mem, ledger := newTestRunner(t, goodStrategy(), publisher)
	ctx := context.Background()

	job, err := ledger.Create(ctx, "owner-1", "https://example.com/talk")
	require.NoError(t, err)
	runner.Process(ctx, job)

	got, err := ledger.Get(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusComplete, got.Status)
	assert.Equal(t, 100, got.Progress)
	assert.NotEmpty(t, got.Result)

	docs, err := mem.ListDocumentsByOwner(ctx, "owner-1")
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "Extracted Title", docs[0].Title)
	assert.Equal(t, "https://example.com/talk", docs[0].SourceRef)

	require.Len(t, publisher.events, 1)
	assert.Equal(t, job.ID, publisher.events[0].JobID)
}

func TestProcessExtractionFailure(t *testing.T) {
	blocked := &stubStrategy{err: extract.Permanent(errors.New("403 from upstream"))}
	runner, mem, ledger := newTestRunner(t, blocked, publish.Noop{})
	ctx := context.Background()

	job, err := ledger.Create(ctx, "owner-1", "https://example.com/talk")
	require.NoError(t, err)
	runner.Process(ctx, job)

	got, err := ledger.Get(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusFailed, got.Status)
	assert.Contains(t, got.Error, "protected or unavailable")
	assert.NotContains(t, got.Error, "403", "raw upstream detail must not leak")

	docs, _ := mem.ListDocumentsByOwner(ctx, "owner-1")
	assert.Empty(t, docs)
}

func TestProcessPublishFailureStillCompletes(t *testing.T) {
	publisher := &recordingPublisher{err: errors.New("webhook down")}
	runner, _, ledger := newTestRunner(t, goodStrategy(), publisher)
	ctx := context.Background()

	job, err := ledger.Create(ctx, "owner-1", "ref")
	require.NoError(t, err)
	runner.Process(ctx, job)

	got, err := ledger.Get(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusComplete, got.Status)
}

func TestSubmitRunsAsynchronously(t *testing.T) {
	publisher := &recordingPublisher{}
	runner, _, ledger := newTestRunner(t, goodStrategy(), publisher)
	ctx := context.Background()

	job, err := runner.Submit(ctx, "owner-1", "https://example.com/talk")
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusPending, job.Status)

	require.Eventually(t, func() bool {
		got, err := ledger.Get(ctx, job.ID)
		return err == nil && got.Status == models.JobStatusComplete
	}, 5*time.Second, 10*time.Millisecond)
}

// Package pipeline runs submitted sources through extraction, synthesis,
// and persistence, reporting progress through the job ledger.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"

	"github.com/loreline/loreline/internal/extract"
	"github.com/loreline/loreline/internal/jobs"
	"github.com/loreline/loreline/internal/metrics"
	"github.com/loreline/loreline/internal/models"
	"github.com/loreline/loreline/internal/publish"
	"github.com/loreline/loreline/internal/store"
	"github.com/loreline/loreline/internal/synthesize"
)

// Options tunes the worker pool.
type Options struct {
	// Workers is the pool size for concurrent job processing.
	Workers int
	// JobTimeout bounds one job end to end.
	JobTimeout time.Duration
	// Metrics records per-stage timings when set.
	Metrics *metrics.Collector
}

// Runner owns the job worker pool.
type Runner struct {
	ledger      *jobs.Ledger
	extractor   *extract.Engine
	synthesizer *synthesize.Engine
	documents   store.DocumentStore
	publisher   publish.Publisher
	pool        *ants.Pool
	jobTimeout  time.Duration
	collector   *metrics.Collector
	logger      *slog.Logger
}

// NewRunner creates a runner with its worker pool started.
func NewRunner(
	ledger *jobs.Ledger,
	extractor *extract.Engine,
	synthesizer *synthesize.Engine,
	documents store.DocumentStore,
	publisher publish.Publisher,
	opts Options,
	logger *slog.Logger,
) (*Runner, error) {
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	if opts.JobTimeout <= 0 {
		opts.JobTimeout = 30 * time.Minute
	}
	if publisher == nil {
		publisher = publish.Noop{}
	}

	pool, err := ants.NewPool(opts.Workers)
	if err != nil {
		return nil, fmt.Errorf("create worker pool: %w", err)
	}

	return &Runner{
		ledger:      ledger,
		extractor:   extractor,
		synthesizer: synthesizer,
		documents:   documents,
		publisher:   publisher,
		pool:        pool,
		jobTimeout:  opts.JobTimeout,
		collector:   opts.Metrics,
		logger:      logger.With("component", "pipeline"),
	}, nil
}

// Close stops the worker pool. Queued jobs that have not started are
// dropped; their ledger entries stay pending until swept.
func (r *Runner) Close() {
	r.pool.Release()
}

// Submit registers a job for the source and queues it for processing.
// It returns immediately; callers poll the ledger for progress.
func (r *Runner) Submit(ctx context.Context, ownerID, sourceRef string) (*models.Job, error) {
	job, err := r.ledger.Create(ctx, ownerID, sourceRef)
	if err != nil {
		return nil, err
	}

	if err := r.pool.Submit(func() { r.run(job.ID, ownerID, sourceRef) }); err != nil {
		_ = r.ledger.Fail(context.Background(), job.ID, "Processing queue is full. Please try again shortly.")
		return nil, fmt.Errorf("queue job: %w", err)
	}
	return job, nil
}

// Process runs a job synchronously. Submit is the normal entry point;
// this exists for the CLI's wait mode and for tests.
func (r *Runner) Process(ctx context.Context, job *models.Job) {
	r.process(ctx, job.ID, job.OwnerID, job.SourceRef)
}

func (r *Runner) run(jobID, ownerID, sourceRef string) {
	ctx, cancel := context.WithTimeout(context.Background(), r.jobTimeout)
	defer cancel()
	r.process(ctx, jobID, ownerID, sourceRef)
}

func (r *Runner) process(ctx context.Context, jobID, ownerID, sourceRef string) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("job panicked", "job_id", jobID, "panic", rec)
			_ = r.ledger.Fail(context.Background(), jobID,
				"Something went wrong while processing this source. Please try again.")
		}
	}()

	started := time.Now()
	r.logger.Info("job started", "job_id", jobID, "source_ref", models.ShortRef(sourceRef))

	r.advance(ctx, jobID, 5, "Fetching content")
	extractStart := time.Now()
	extracted, err := r.extractor.Extract(ctx, sourceRef)
	r.record(metrics.OpExtraction, extractStart)
	if err != nil {
		r.fail(jobID, err)
		return
	}
	r.advance(ctx, jobID, 25, "Content received")

	r.advance(ctx, jobID, 30, "Analyzing content")
	r.advance(ctx, jobID, 50, "Generating notes")
	doc, err := r.synthesizer.Synthesize(ctx, extracted.Segments, extracted.Title)
	if err != nil {
		r.fail(jobID, err)
		return
	}
	r.advance(ctx, jobID, 85, "Notes complete")

	doc.ID = uuid.NewString()
	doc.OwnerID = ownerID
	doc.SourceRef = sourceRef
	doc.CreatedAt = time.Now().UTC()

	r.advance(ctx, jobID, 90, "Saving document")
	saveStart := time.Now()
	err = r.documents.CreateDocument(ctx, doc)
	r.record(metrics.OpStoreQuery, saveStart)
	if err != nil {
		r.fail(jobID, fmt.Errorf("save document: %w", err))
		return
	}

	r.advance(ctx, jobID, 95, "Publishing")
	publishStart := time.Now()
	if err := r.publisher.Publish(ctx, publish.Event{
		JobID:     jobID,
		OwnerID:   ownerID,
		SourceRef: sourceRef,
		Document:  doc,
		Timestamp: time.Now().UTC(),
	}); err != nil {
		// Delivery is best effort, the document is already saved.
		r.logger.Warn("publish failed", "job_id", jobID, "error", err)
	}
	r.record(metrics.OpPublish, publishStart)

	result, err := json.Marshal(doc)
	if err != nil {
		r.fail(jobID, fmt.Errorf("encode result: %w", err))
		return
	}
	if err := r.ledger.Complete(ctx, jobID, result); err != nil {
		r.logger.Error("could not complete job", "job_id", jobID, "error", err)
		return
	}
	r.logger.Info("job finished",
		"job_id", jobID,
		"document_id", doc.ID,
		"duration", time.Since(started).Round(time.Millisecond))
}

func (r *Runner) record(op string, start time.Time) {
	if r.collector != nil {
		r.collector.RecordTiming(op, time.Since(start))
	}
}

func (r *Runner) advance(ctx context.Context, jobID string, progress int, stage string) {
	if err := r.ledger.Advance(ctx, jobID, progress, stage); err != nil {
		r.logger.Warn("progress update failed", "job_id", jobID, "stage", stage, "error", err)
	}
}

func (r *Runner) fail(jobID string, err error) {
	r.logger.Error("job failed", "job_id", jobID, "error", err)
	if ferr := r.ledger.Fail(context.Background(), jobID, FriendlyError(err)); ferr != nil {
		r.logger.Error("could not record job failure", "job_id", jobID, "error", ferr)
	}
}

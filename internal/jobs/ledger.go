// Package jobs tracks the lifecycle of content processing jobs.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/loreline/loreline/internal/models"
	"github.com/loreline/loreline/internal/store"
)

// ErrTerminal is returned when an update targets a job that already
// reached a terminal state.
var ErrTerminal = errors.New("job is in a terminal state")

// Ledger owns job records. All transitions go through it so the state
// machine invariants hold no matter who asks for an update.
type Ledger struct {
	store  store.JobStore
	logger *slog.Logger
	now    func() time.Time
}

// NewLedger creates a ledger backed by the given job store.
func NewLedger(s store.JobStore, logger *slog.Logger) *Ledger {
	return &Ledger{
		store:  s,
		logger: logger.With("component", "jobs"),
		now:    time.Now,
	}
}

// Create registers a new pending job for the owner and source reference.
func (l *Ledger) Create(ctx context.Context, ownerID, sourceRef string) (*models.Job, error) {
	now := l.now().UTC()
	job := &models.Job{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		SourceRef: sourceRef,
		Status:    models.JobStatusPending,
		Progress:  0,
		Stage:     "queued",
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := l.store.CreateJob(ctx, job); err != nil {
		return nil, fmt.Errorf("create job: %w", err)
	}
	l.logger.Info("job created", "job_id", job.ID, "owner_id", ownerID, "source_ref", models.ShortRef(sourceRef))
	return job.Clone(), nil
}

// Get returns a copy of the job.
func (l *Ledger) Get(ctx context.Context, id string) (*models.Job, error) {
	job, err := l.store.GetJob(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get job %s: %w", models.ShortID(id), err)
	}
	return job, nil
}

// Update applies a partial update to a job. Updates against complete or
// failed jobs are rejected with ErrTerminal.
func (l *Ledger) Update(ctx context.Context, id string, update models.JobUpdate) (*models.Job, error) {
	job, err := l.store.GetJob(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get job %s: %w", models.ShortID(id), err)
	}
	if job.Status.IsTerminal() {
		return nil, fmt.Errorf("update job %s: %w", models.ShortID(id), ErrTerminal)
	}
	job.Apply(update, l.now().UTC())
	if err := l.store.PutJob(ctx, job); err != nil {
		return nil, fmt.Errorf("put job %s: %w", models.ShortID(id), err)
	}
	if update.Status != nil {
		l.logger.Info("job status changed", "job_id", job.ID, "status", job.Status, "stage", job.Stage)
	}
	return job.Clone(), nil
}

// Advance moves a running job forward to the given progress and stage.
func (l *Ledger) Advance(ctx context.Context, id string, progress int, stage string) error {
	status := models.JobStatusProcessing
	_, err := l.Update(ctx, id, models.JobUpdate{
		Status:   &status,
		Progress: &progress,
		Stage:    &stage,
	})
	return err
}

// Complete finishes the job with its result payload.
func (l *Ledger) Complete(ctx context.Context, id string, result []byte) error {
	status := models.JobStatusComplete
	progress := 100
	stage := "done"
	_, err := l.Update(ctx, id, models.JobUpdate{
		Status:   &status,
		Progress: &progress,
		Stage:    &stage,
		Result:   result,
	})
	return err
}

// Fail marks the job failed with a user-facing error message.
func (l *Ledger) Fail(ctx context.Context, id string, message string) error {
	status := models.JobStatusFailed
	_, err := l.Update(ctx, id, models.JobUpdate{
		Status: &status,
		Error:  &message,
	})
	return err
}

// Sweep deletes jobs older than maxAge regardless of status and returns
// how many were removed.
func (l *Ledger) Sweep(ctx context.Context, maxAge time.Duration) (int, error) {
	cutoff := l.now().UTC().Add(-maxAge)
	n, err := l.store.DeleteJobsBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("sweep jobs: %w", err)
	}
	if n > 0 {
		l.logger.Info("swept old jobs", "count", n, "max_age", maxAge)
	}
	return n, nil
}

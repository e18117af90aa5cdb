package store

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/loreline/loreline/internal/models"
)

// Fallback wraps a primary store and degrades to a process-local Memory
// store when the primary fails. Durability is lost in degraded mode (records
// vanish on restart) but the contract seen by callers is unchanged, so
// in-flight pipelines keep working.
//
// Reads consult the local store when the primary errors, and also when the
// primary misses: a record created during an outage only exists locally.
type Fallback struct {
	primary Store
	local   *Memory
	logger  *slog.Logger
}

var _ Store = (*Fallback)(nil)

// NewFallback wraps primary with an in-memory fallback.
func NewFallback(primary Store, logger *slog.Logger) *Fallback {
	if logger == nil {
		logger = slog.Default()
	}
	return &Fallback{primary: primary, local: NewMemory(), logger: logger}
}

// Local exposes the fallback memory store; the retention sweep clears it.
func (f *Fallback) Local() *Memory {
	return f.local
}

func (f *Fallback) CreateJob(ctx context.Context, job *models.Job) error {
	if err := f.primary.CreateJob(ctx, job); err != nil {
		f.logger.Warn("primary job create failed, using fallback store", "job_id", models.ShortID(job.ID), "error", err)
		return f.local.CreateJob(ctx, job)
	}
	return nil
}

func (f *Fallback) GetJob(ctx context.Context, id string) (*models.Job, error) {
	job, err := f.primary.GetJob(ctx, id)
	if err == nil {
		return job, nil
	}
	if !errors.Is(err, ErrNotFound) {
		f.logger.Warn("primary job get failed, checking fallback store", "job_id", models.ShortID(id), "error", err)
	}
	return f.local.GetJob(ctx, id)
}

func (f *Fallback) PutJob(ctx context.Context, job *models.Job) error {
	err := f.primary.PutJob(ctx, job)
	if err == nil {
		return nil
	}
	if !errors.Is(err, ErrNotFound) {
		f.logger.Warn("primary job update failed, using fallback store", "job_id", models.ShortID(job.ID), "error", err)
	}
	return f.local.PutJob(ctx, job)
}

func (f *Fallback) DeleteJobsBefore(ctx context.Context, cutoff time.Time) (int, error) {
	total := 0
	n, err := f.primary.DeleteJobsBefore(ctx, cutoff)
	if err != nil {
		f.logger.Warn("primary job sweep failed", "error", err)
	} else {
		total += n
	}
	n, _ = f.local.DeleteJobsBefore(ctx, cutoff)
	total += n
	return total, nil
}

func (f *Fallback) CreateDocument(ctx context.Context, doc *models.StructuredDocument) error {
	if err := f.primary.CreateDocument(ctx, doc); err != nil {
		f.logger.Warn("primary document create failed, using fallback store", "document_id", models.ShortID(doc.ID), "error", err)
		return f.local.CreateDocument(ctx, doc)
	}
	return nil
}

func (f *Fallback) GetDocument(ctx context.Context, id string) (*models.StructuredDocument, error) {
	doc, err := f.primary.GetDocument(ctx, id)
	if err == nil {
		return doc, nil
	}
	if !errors.Is(err, ErrNotFound) {
		f.logger.Warn("primary document get failed, checking fallback store", "document_id", models.ShortID(id), "error", err)
	}
	return f.local.GetDocument(ctx, id)
}

func (f *Fallback) ListDocumentsByOwner(ctx context.Context, ownerID string) ([]models.StructuredDocument, error) {
	docs, err := f.primary.ListDocumentsByOwner(ctx, ownerID)
	if err != nil {
		f.logger.Warn("primary document list failed, using fallback store", "owner_id", ownerID, "error", err)
		return f.local.ListDocumentsByOwner(ctx, ownerID)
	}
	return docs, nil
}

func (f *Fallback) CountDocumentsByOwner(ctx context.Context, ownerID string) (int, error) {
	count, err := f.primary.CountDocumentsByOwner(ctx, ownerID)
	if err != nil {
		f.logger.Warn("primary document count failed, using fallback store", "owner_id", ownerID, "error", err)
		return f.local.CountDocumentsByOwner(ctx, ownerID)
	}
	return count, nil
}

func (f *Fallback) GetGraph(ctx context.Context, ownerID string) (*models.KnowledgeGraph, error) {
	graph, err := f.primary.GetGraph(ctx, ownerID)
	if err == nil {
		return graph, nil
	}
	if !errors.Is(err, ErrNotFound) {
		f.logger.Warn("primary graph get failed, checking fallback store", "owner_id", ownerID, "error", err)
	}
	return f.local.GetGraph(ctx, ownerID)
}

func (f *Fallback) PutGraph(ctx context.Context, ownerID string, graph *models.KnowledgeGraph) error {
	if err := f.primary.PutGraph(ctx, ownerID, graph); err != nil {
		f.logger.Warn("primary graph put failed, using fallback store", "owner_id", ownerID, "error", err)
		return f.local.PutGraph(ctx, ownerID, graph)
	}
	return nil
}

func (f *Fallback) Close(ctx context.Context) error {
	return f.primary.Close(ctx)
}

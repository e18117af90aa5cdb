// Package store defines the keyed persistence contract for jobs, structured
// documents, and knowledge graphs, and the in-process fallback used when the
// primary backend is unavailable.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/loreline/loreline/internal/models"
)

// Sentinel errors for store operations. Use errors.Is() in calling code.
var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrUnavailable indicates the backend could not be reached. The
	// fallback wrapper treats any non-ErrNotFound failure as unavailability.
	ErrUnavailable = errors.New("store unavailable")
)

// JobStore persists jobs keyed by id.
type JobStore interface {
	CreateJob(ctx context.Context, job *models.Job) error
	GetJob(ctx context.Context, id string) (*models.Job, error)
	// PutJob overwrites the full record, last write wins.
	PutJob(ctx context.Context, job *models.Job) error
	// DeleteJobsBefore removes jobs created before cutoff, any status,
	// and returns how many were removed.
	DeleteJobsBefore(ctx context.Context, cutoff time.Time) (int, error)
}

// DocumentStore persists structured documents keyed by id and owner.
type DocumentStore interface {
	CreateDocument(ctx context.Context, doc *models.StructuredDocument) error
	GetDocument(ctx context.Context, id string) (*models.StructuredDocument, error)
	// ListDocumentsByOwner returns the owner's documents ordered oldest first.
	ListDocumentsByOwner(ctx context.Context, ownerID string) ([]models.StructuredDocument, error)
	CountDocumentsByOwner(ctx context.Context, ownerID string) (int, error)
}

// GraphStore persists one knowledge graph per owner.
type GraphStore interface {
	GetGraph(ctx context.Context, ownerID string) (*models.KnowledgeGraph, error)
	// PutGraph upserts the owner's graph. Version management is the
	// caller's responsibility.
	PutGraph(ctx context.Context, ownerID string, graph *models.KnowledgeGraph) error
}

// Store is the full persistence collaborator.
type Store interface {
	JobStore
	DocumentStore
	GraphStore
	Close(ctx context.Context) error
}

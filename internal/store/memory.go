package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/loreline/loreline/internal/models"
)

// Memory is a process-local keyed store with the same contract as the
// primary backend. It backs unit tests and the degraded mode entered when
// the primary store is unreachable; contents vanish on process restart.
type Memory struct {
	mu     sync.RWMutex
	jobs   map[string]*models.Job
	docs   map[string]*models.StructuredDocument
	graphs map[string]*models.KnowledgeGraph // keyed by owner id
}

var _ Store = (*Memory)(nil)

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		jobs:   make(map[string]*models.Job),
		docs:   make(map[string]*models.StructuredDocument),
		graphs: make(map[string]*models.KnowledgeGraph),
	}
}

func (m *Memory) CreateJob(_ context.Context, job *models.Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.jobs[job.ID] = job.Clone()
	return nil
}

func (m *Memory) GetJob(_ context.Context, id string) (*models.Job, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	job, ok := m.jobs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return job.Clone(), nil
}

func (m *Memory) PutJob(_ context.Context, job *models.Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.jobs[job.ID]; !ok {
		return ErrNotFound
	}
	m.jobs[job.ID] = job.Clone()
	return nil
}

func (m *Memory) DeleteJobsBefore(_ context.Context, cutoff time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for id, job := range m.jobs {
		if job.CreatedAt.Before(cutoff) {
			delete(m.jobs, id)
			count++
		}
	}
	return count, nil
}

func (m *Memory) CreateDocument(_ context.Context, doc *models.StructuredDocument) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	clone := *doc
	if clone.CreatedAt.IsZero() {
		clone.CreatedAt = time.Now().UTC()
	}
	m.docs[doc.ID] = &clone
	return nil
}

func (m *Memory) GetDocument(_ context.Context, id string) (*models.StructuredDocument, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	doc, ok := m.docs[id]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *doc
	return &clone, nil
}

func (m *Memory) ListDocumentsByOwner(_ context.Context, ownerID string) ([]models.StructuredDocument, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	docs := make([]models.StructuredDocument, 0)
	for _, doc := range m.docs {
		if doc.OwnerID == ownerID {
			docs = append(docs, *doc)
		}
	}
	// Oldest first, with the id as a tie break so equal timestamps
	// still list deterministically.
	sort.Slice(docs, func(i, j int) bool {
		if !docs[i].CreatedAt.Equal(docs[j].CreatedAt) {
			return docs[i].CreatedAt.Before(docs[j].CreatedAt)
		}
		return docs[i].ID < docs[j].ID
	})
	return docs, nil
}

func (m *Memory) CountDocumentsByOwner(_ context.Context, ownerID string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	count := 0
	for _, doc := range m.docs {
		if doc.OwnerID == ownerID {
			count++
		}
	}
	return count, nil
}

func (m *Memory) GetGraph(_ context.Context, ownerID string) (*models.KnowledgeGraph, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	graph, ok := m.graphs[ownerID]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *graph
	return &clone, nil
}

func (m *Memory) PutGraph(_ context.Context, ownerID string, graph *models.KnowledgeGraph) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	clone := *graph
	m.graphs[ownerID] = &clone
	return nil
}

func (m *Memory) Close(context.Context) error {
	return nil
}

// Package knowledge reduces an owner's documents into a versioned
// knowledge graph of topics and connections.
package knowledge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/loreline/loreline/internal/models"
	"github.com/loreline/loreline/internal/oracle"
	"github.com/loreline/loreline/internal/store"
)

// ProgressFunc receives stage transitions during a rebuild, typically
// forwarded to a job record.
type ProgressFunc func(percent int, stage string)

// Options tunes the reduction.
type Options struct {
	// BatchSize is the maximum number of condensed documents per LLM
	// call. Collections within the batch size are reduced in one call.
	BatchSize int
	// Concurrency bounds how many batch calls run at once.
	Concurrency int
	// Progress, when set, is called as the rebuild moves through its
	// stages.
	Progress ProgressFunc
}

// Builder rebuilds knowledge graphs from stored documents.
type Builder struct {
	oracle      oracle.Oracle
	documents   store.DocumentStore
	graphs      store.GraphStore
	batchSize   int
	concurrency int
	progress    ProgressFunc
	logger      *slog.Logger
}

// NewBuilder creates a builder. Zero options default to batches of 20
// with 3 concurrent calls.
func NewBuilder(o oracle.Oracle, documents store.DocumentStore, graphs store.GraphStore, opts Options, logger *slog.Logger) *Builder {
	if opts.BatchSize <= 0 {
		opts.BatchSize = 20
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 3
	}
	return &Builder{
		oracle:      o,
		documents:   documents,
		graphs:      graphs,
		batchSize:   opts.BatchSize,
		concurrency: opts.Concurrency,
		progress:    opts.Progress,
		logger:      logger.With("component", "knowledge"),
	}
}

func (b *Builder) report(percent int, stage string) {
	if b.progress != nil {
		b.progress(percent, stage)
	}
}

// Rebuild regenerates the owner's knowledge graph from all their
// documents and persists it with a bumped version.
func (b *Builder) Rebuild(ctx context.Context, ownerID string) (*models.KnowledgeGraph, error) {
	b.report(10, "Collecting documents")
	docs, err := b.documents.ListDocumentsByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	if len(docs) == 0 {
		b.logger.Info("no documents to reduce", "owner_id", ownerID)
		return &models.KnowledgeGraph{}, nil
	}

	condensed := make([]models.CondensedDocument, len(docs))
	for i := range docs {
		condensed[i] = docs[i].Condense()
	}
	b.logger.Info("reducing documents", "owner_id", ownerID, "count", len(condensed))
	b.report(30, "Reducing documents")

	var graph *models.KnowledgeGraph
	if len(condensed) <= b.batchSize {
		graph, err = b.reduceBatch(ctx, buildPrompt(condensed, 0, 0))
	} else {
		graph, err = b.reduceChunked(ctx, condensed)
	}
	if err != nil {
		return nil, err
	}

	graph.SourceCount = len(docs)
	graph.Version = b.nextVersion(ctx, ownerID)

	b.report(90, "Saving graph")
	if err := b.graphs.PutGraph(ctx, ownerID, graph); err != nil {
		return nil, fmt.Errorf("persist graph: %w", err)
	}
	b.logger.Info("knowledge graph rebuilt",
		"owner_id", ownerID,
		"version", graph.Version,
		"topics", len(graph.Topics),
		"sources", graph.SourceCount)
	return graph, nil
}

// reduceChunked splits the collection into batches, reduces each batch
// concurrently, then folds the partial graphs together in pairwise
// merge rounds until one remains.
func (b *Builder) reduceChunked(ctx context.Context, condensed []models.CondensedDocument) (*models.KnowledgeGraph, error) {
	var batches [][]models.CondensedDocument
	for start := 0; start < len(condensed); start += b.batchSize {
		end := min(start+b.batchSize, len(condensed))
		batches = append(batches, condensed[start:end])
	}
	b.logger.Info("chunking reduction", "batches", len(batches), "batch_size", b.batchSize)

	partials := make([]*models.KnowledgeGraph, len(batches))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(b.concurrency)
	for i, batch := range batches {
		group.Go(func() error {
			graph, err := b.reduceBatch(groupCtx, buildPrompt(batch, i+1, len(batches)))
			if err != nil {
				return fmt.Errorf("batch %d/%d: %w", i+1, len(batches), err)
			}
			partials[i] = graph
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	// Merge adjacent pairs round by round. Order is fixed by batch
	// index, so repeated runs merge in the same sequence.
	for round := 1; len(partials) > 1; round++ {
		merged := make([]*models.KnowledgeGraph, 0, (len(partials)+1)/2)
		for i := 0; i < len(partials); i += 2 {
			if i+1 >= len(partials) {
				merged = append(merged, partials[i])
				continue
			}
			b.logger.Debug("merging partial graphs", "round", round, "pair", i/2+1)
			combined, err := b.mergePair(ctx, partials[i], partials[i+1])
			if err != nil {
				return nil, fmt.Errorf("merge round %d: %w", round, err)
			}
			merged = append(merged, combined)
		}
		partials = merged
	}

	return partials[0], nil
}

func (b *Builder) reduceBatch(ctx context.Context, prompt string) (*models.KnowledgeGraph, error) {
	response, err := b.oracle.Complete(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("reduction call: %w", err)
	}
	var graph models.KnowledgeGraph
	if err := oracle.ParseJSON(response, &graph); err != nil {
		return nil, fmt.Errorf("reduction response: %w", err)
	}
	return &graph, nil
}

func (b *Builder) mergePair(ctx context.Context, first, second *models.KnowledgeGraph) (*models.KnowledgeGraph, error) {
	response, err := b.oracle.Complete(ctx, mergePrompt(first, second))
	if err != nil {
		return nil, fmt.Errorf("merge call: %w", err)
	}
	var graph models.KnowledgeGraph
	if err := oracle.ParseJSON(response, &graph); err != nil {
		return nil, fmt.Errorf("merge response: %w", err)
	}
	return &graph, nil
}

// nextVersion is the stored version plus one, or 1 for a first build.
func (b *Builder) nextVersion(ctx context.Context, ownerID string) int {
	existing, err := b.graphs.GetGraph(ctx, ownerID)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			b.logger.Warn("could not read existing graph version", "owner_id", ownerID, "error", err)
		}
		return 1
	}
	return existing.Version + 1
}

// Status returns the owner's stored graph along with a staleness flag.
// The graph is stale when documents were added after it was built. A
// read-only operation, so it needs no oracle.
func Status(ctx context.Context, graphs store.GraphStore, documents store.DocumentStore, ownerID string) (*models.KnowledgeGraph, bool, error) {
	graph, err := graphs.GetGraph(ctx, ownerID)
	if err != nil {
		return nil, false, err
	}
	count, err := documents.CountDocumentsByOwner(ctx, ownerID)
	if err != nil {
		return nil, false, fmt.Errorf("count documents: %w", err)
	}
	return graph, count > graph.SourceCount, nil
}

package surreal

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/surrealdb/surrealdb.go"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"

	"github.com/loreline/loreline/internal/models"
	"github.com/loreline/loreline/internal/store"
)

// Compile-time check that Client satisfies the persistence contract.
var _ store.Store = (*Client)(nil)

// jobRow is the job table shape.
type jobRow struct {
	ID        surrealmodels.RecordID `json:"id,omitempty"`
	OwnerID   string                 `json:"owner_id"`
	SourceRef string                 `json:"source_ref"`
	Status    string                 `json:"status"`
	Progress  int                    `json:"progress"`
	Stage     string                 `json:"stage"`
	Result    *string                `json:"result,omitempty"`
	Error     *string                `json:"error,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
	UpdatedAt time.Time              `json:"updated_at"`
}

func (r *jobRow) toJob() (*models.Job, error) {
	id, err := recordIDString(r.ID)
	if err != nil {
		return nil, err
	}
	job := &models.Job{
		ID:        id,
		OwnerID:   r.OwnerID,
		SourceRef: r.SourceRef,
		Status:    models.JobStatus(r.Status),
		Progress:  r.Progress,
		Stage:     r.Stage,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
	if r.Result != nil {
		job.Result = json.RawMessage(*r.Result)
	}
	if r.Error != nil {
		job.Error = *r.Error
	}
	return job, nil
}

func recordIDString(id surrealmodels.RecordID) (string, error) {
	s, ok := id.ID.(string)
	if !ok {
		return "", fmt.Errorf("unexpected record ID type: %T (expected string)", id.ID)
	}
	return s, nil
}

func jobVars(job *models.Job) map[string]any {
	vars := map[string]any{
		"id":         job.ID,
		"owner_id":   job.OwnerID,
		"source_ref": job.SourceRef,
		"status":     string(job.Status),
		"progress":   job.Progress,
		"stage":      job.Stage,
		"created_at": job.CreatedAt,
		"updated_at": job.UpdatedAt,
	}
	if job.Result != nil {
		vars["result"] = string(job.Result)
	} else {
		vars["result"] = nil
	}
	if job.Error != "" {
		vars["error"] = job.Error
	} else {
		vars["error"] = nil
	}
	return vars
}

// CreateJob inserts a new job record.
func (c *Client) CreateJob(ctx context.Context, job *models.Job) error {
	_, err := surrealdb.Query[any](ctx, c.db, `
		CREATE type::record("job", $id) SET
			owner_id = $owner_id,
			source_ref = $source_ref,
			status = $status,
			progress = $progress,
			stage = $stage,
			result = $result,
			error = $error,
			created_at = <datetime>$created_at,
			updated_at = <datetime>$updated_at
	`, jobVars(job))
	if err != nil {
		return wrapQueryError(err)
	}
	return nil
}

// GetJob fetches a job by id.
func (c *Client) GetJob(ctx context.Context, id string) (*models.Job, error) {
	results, err := surrealdb.Query[[]jobRow](ctx, c.db, `
		SELECT * FROM type::record("job", $id)
	`, map[string]any{"id": id})
	if err != nil {
		return nil, wrapQueryError(err)
	}
	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return nil, store.ErrNotFound
	}
	return (*results)[0].Result[0].toJob()
}

// PutJob overwrites an existing job record, last write wins.
func (c *Client) PutJob(ctx context.Context, job *models.Job) error {
	results, err := surrealdb.Query[[]jobRow](ctx, c.db, `
		UPDATE type::record("job", $id) SET
			owner_id = $owner_id,
			source_ref = $source_ref,
			status = $status,
			progress = $progress,
			stage = $stage,
			result = $result,
			error = $error,
			updated_at = <datetime>$updated_at
		RETURN AFTER
	`, jobVars(job))
	if err != nil {
		return wrapQueryError(err)
	}
	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return store.ErrNotFound
	}
	return nil
}

// DeleteJobsBefore removes jobs created before cutoff and returns the count.
func (c *Client) DeleteJobsBefore(ctx context.Context, cutoff time.Time) (int, error) {
	results, err := surrealdb.Query[[]jobRow](ctx, c.db, `
		DELETE job WHERE created_at < <datetime>$cutoff RETURN BEFORE
	`, map[string]any{"cutoff": cutoff})
	if err != nil {
		return 0, wrapQueryError(err)
	}
	if results == nil || len(*results) == 0 {
		return 0, nil
	}
	return len((*results)[0].Result), nil
}

// documentRow is the document table shape; the full structured document is
// carried in payload as serialized JSON.
type documentRow struct {
	ID          surrealmodels.RecordID `json:"id,omitempty"`
	OwnerID     string                 `json:"owner_id"`
	SourceRef   string                 `json:"source_ref"`
	Title       string                 `json:"title"`
	ContentType string                 `json:"content_type"`
	Payload     string                 `json:"payload"`
	CreatedAt   time.Time              `json:"created_at"`
}

func (r *documentRow) toDocument() (*models.StructuredDocument, error) {
	var doc models.StructuredDocument
	if err := json.Unmarshal([]byte(r.Payload), &doc); err != nil {
		return nil, fmt.Errorf("decode document payload: %w", err)
	}
	id, err := recordIDString(r.ID)
	if err != nil {
		return nil, err
	}
	doc.ID = id
	doc.OwnerID = r.OwnerID
	doc.SourceRef = r.SourceRef
	doc.CreatedAt = r.CreatedAt
	return &doc, nil
}

// CreateDocument inserts a structured document.
func (c *Client) CreateDocument(ctx context.Context, doc *models.StructuredDocument) error {
	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode document payload: %w", err)
	}
	createdAt := doc.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err = surrealdb.Query[any](ctx, c.db, `
		CREATE type::record("document", $id) SET
			owner_id = $owner_id,
			source_ref = $source_ref,
			title = $title,
			content_type = $content_type,
			payload = $payload,
			created_at = <datetime>$created_at
	`, map[string]any{
		"id":           doc.ID,
		"owner_id":     doc.OwnerID,
		"source_ref":   doc.SourceRef,
		"title":        doc.Title,
		"content_type": string(doc.ContentType),
		"payload":      string(payload),
		"created_at":   createdAt,
	})
	if err != nil {
		return wrapQueryError(err)
	}
	return nil
}

// GetDocument fetches a structured document by id.
func (c *Client) GetDocument(ctx context.Context, id string) (*models.StructuredDocument, error) {
	results, err := surrealdb.Query[[]documentRow](ctx, c.db, `
		SELECT * FROM type::record("document", $id)
	`, map[string]any{"id": id})
	if err != nil {
		return nil, wrapQueryError(err)
	}
	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return nil, store.ErrNotFound
	}
	return (*results)[0].Result[0].toDocument()
}

// ListDocumentsByOwner returns the owner's documents oldest first.
func (c *Client) ListDocumentsByOwner(ctx context.Context, ownerID string) ([]models.StructuredDocument, error) {
	results, err := surrealdb.Query[[]documentRow](ctx, c.db, `
		SELECT * FROM document WHERE owner_id = $owner_id ORDER BY created_at ASC
	`, map[string]any{"owner_id": ownerID})
	if err != nil {
		return nil, wrapQueryError(err)
	}
	if results == nil || len(*results) == 0 {
		return []models.StructuredDocument{}, nil
	}
	rows := (*results)[0].Result
	docs := make([]models.StructuredDocument, 0, len(rows))
	for i := range rows {
		doc, err := rows[i].toDocument()
		if err != nil {
			return nil, err
		}
		docs = append(docs, *doc)
	}
	return docs, nil
}

// CountDocumentsByOwner counts the owner's live documents.
func (c *Client) CountDocumentsByOwner(ctx context.Context, ownerID string) (int, error) {
	results, err := surrealdb.Query[[]struct {
		C int `json:"c"`
	}](ctx, c.db, `
		SELECT count() AS c FROM document WHERE owner_id = $owner_id GROUP ALL
	`, map[string]any{"owner_id": ownerID})
	if err != nil {
		return 0, wrapQueryError(err)
	}
	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return 0, nil
	}
	return (*results)[0].Result[0].C, nil
}

// graphRow is the graph table shape, one row per owner.
type graphRow struct {
	ID          surrealmodels.RecordID `json:"id,omitempty"`
	OwnerID     string                 `json:"owner_id"`
	Payload     string                 `json:"payload"`
	Version     int                    `json:"version"`
	SourceCount int                    `json:"source_count"`
	UpdatedAt   time.Time              `json:"updated_at"`
}

// GetGraph fetches the owner's knowledge graph.
func (c *Client) GetGraph(ctx context.Context, ownerID string) (*models.KnowledgeGraph, error) {
	results, err := surrealdb.Query[[]graphRow](ctx, c.db, `
		SELECT * FROM type::record("graph", $owner_id)
	`, map[string]any{"owner_id": ownerID})
	if err != nil {
		return nil, wrapQueryError(err)
	}
	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return nil, store.ErrNotFound
	}
	row := (*results)[0].Result[0]
	var graph models.KnowledgeGraph
	if err := json.Unmarshal([]byte(row.Payload), &graph); err != nil {
		return nil, fmt.Errorf("decode graph payload: %w", err)
	}
	// The row columns are authoritative for version bookkeeping.
	graph.Version = row.Version
	graph.SourceCount = row.SourceCount
	return &graph, nil
}

// PutGraph upserts the owner's knowledge graph record.
func (c *Client) PutGraph(ctx context.Context, ownerID string, graph *models.KnowledgeGraph) error {
	payload, err := json.Marshal(graph)
	if err != nil {
		return fmt.Errorf("encode graph payload: %w", err)
	}
	_, err = surrealdb.Query[any](ctx, c.db, `
		UPSERT type::record("graph", $owner_id) SET
			owner_id = $owner_id,
			payload = $payload,
			version = $version,
			source_count = $source_count,
			updated_at = time::now()
	`, map[string]any{
		"owner_id":     ownerID,
		"payload":      string(payload),
		"version":      graph.Version,
		"source_count": graph.SourceCount,
	})
	if err != nil {
		return wrapQueryError(err)
	}
	return nil
}

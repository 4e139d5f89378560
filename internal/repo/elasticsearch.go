package repo

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/docvault/docvault/pkg/models"
	"github.com/elastic/go-elasticsearch/v8"
)

// ErrNotFound is returned when a document does not exist or the requester
// does not own it. The two cases are indistinguishable on purpose.
var ErrNotFound = errors.New("document not found")

// Config holds Elasticsearch repository configuration.
type Config struct {
	Addresses []string
	Index     string
	Username  string
	Password  string
}

// Repository stores document metadata records in Elasticsearch.
type Repository struct {
	es    *elasticsearch.Client
	index string
}

// New creates a new document repository.
func New(config Config) (*Repository, error) {
	cfg := elasticsearch.Config{
		Addresses: config.Addresses,
		Username:  config.Username,
		Password:  config.Password,
	}

	es, err := elasticsearch.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create ES client: %w", err)
	}

	return &Repository{
		es:    es,
		index: config.Index,
	}, nil
}

// Ping checks if Elasticsearch is available.
func (r *Repository) Ping(ctx context.Context) bool {
	res, err := r.es.Ping(r.es.Ping.WithContext(ctx))
	if err != nil {
		return false
	}
	defer res.Body.Close()
	return !res.IsError()
}

// indexMapping defines the index mapping for document records. The
// embedding field holds an optional vector of the LLM summary.
var indexMapping = `{
	"mappings": {
		"properties": {
			"id": { "type": "keyword" },
			"title": { "type": "text" },
			"filename": { "type": "keyword" },
			"mayan_document_id": { "type": "keyword" },
			"summary": { "type": "text" },
			"tags": { "type": "keyword" },
			"owner_id": { "type": "keyword" },
			"created_at": { "type": "date" },
			"updated_at": { "type": "date" },
			"embedding": {
				"type": "dense_vector",
				"dims": 768,
				"index": true,
				"similarity": "cosine"
			}
		}
	}
}`

// CreateIndex creates the index with proper mapping if it is missing.
func (r *Repository) CreateIndex(ctx context.Context) error {
	res, err := r.es.Indices.Exists([]string{r.index}, r.es.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to check index: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode == 200 {
		return nil
	}

	res, err = r.es.Indices.Create(
		r.index,
		r.es.Indices.Create.WithContext(ctx),
		r.es.Indices.Create.WithBody(bytes.NewReader([]byte(indexMapping))),
	)
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("error creating index: %s", res.String())
	}
	return nil
}

// DeleteIndex removes the index (for testing/cleanup).
func (r *Repository) DeleteIndex(ctx context.Context) error {
	res, err := r.es.Indices.Delete([]string{r.index}, r.es.Indices.Delete.WithContext(ctx))
	if err != nil {
		return err
	}
	defer res.Body.Close()
	return nil
}

// Index writes a document record. Indexing the same id again replaces the
// record; the id never changes after generation.
func (r *Repository) Index(ctx context.Context, doc models.Document) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}

	res, err := r.es.Index(
		r.index,
		bytes.NewReader(data),
		r.es.Index.WithContext(ctx),
		r.es.Index.WithDocumentID(doc.ID),
	)
	if err != nil {
		return fmt.Errorf("failed to index document: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("error indexing document (status %d): %s", res.StatusCode, res.String())
	}
	return nil
}

// Refresh forces an index refresh (useful for testing).
func (r *Repository) Refresh(ctx context.Context) error {
	res, err := r.es.Indices.Refresh(
		r.es.Indices.Refresh.WithContext(ctx),
		r.es.Indices.Refresh.WithIndex(r.index),
	)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	return nil
}

// getResponse represents the ES get response structure.
type getResponse struct {
	Found  bool            `json:"found"`
	Source models.Document `json:"_source"`
}

// Get retrieves a document by id. Non-elevated requesters only see their
// own documents; a foreign document reads as not found.
func (r *Repository) Get(ctx context.Context, id, ownerID string, elevated bool) (*models.Document, error) {
	res, err := r.es.Get(
		r.index,
		id,
		r.es.Get.WithContext(ctx),
	)
	if err != nil {
		return nil, fmt.Errorf("get failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode == 404 {
		return nil, ErrNotFound
	}
	if res.IsError() {
		return nil, fmt.Errorf("get error: %s", res.String())
	}

	var gr getResponse
	if err := json.NewDecoder(res.Body).Decode(&gr); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if !gr.Found {
		return nil, ErrNotFound
	}
	if !elevated && gr.Source.OwnerID != ownerID {
		return nil, ErrNotFound
	}

	return &gr.Source, nil
}

// searchResponse represents the ES search response structure.
type searchResponse struct {
	Hits struct {
		Hits []struct {
			Source models.Document `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// ownerQuery builds the query clause scoping results to one owner, or
// match_all for elevated requesters.
func ownerQuery(ownerID string, elevated bool) map[string]any {
	if elevated {
		return map[string]any{"match_all": map[string]any{}}
	}
	return map[string]any{
		"term": map[string]any{"owner_id": ownerID},
	}
}

// search runs a query body and unmarshals the hits.
func (r *Repository) search(ctx context.Context, body map[string]any) ([]models.Document, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal query: %w", err)
	}

	res, err := r.es.Search(
		r.es.Search.WithContext(ctx),
		r.es.Search.WithIndex(r.index),
		r.es.Search.WithBody(bytes.NewReader(data)),
	)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("search error: %s", res.String())
	}

	var sr searchResponse
	if err := json.NewDecoder(res.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	docs := make([]models.Document, len(sr.Hits.Hits))
	for i, hit := range sr.Hits.Hits {
		docs[i] = hit.Source
	}
	return docs, nil
}

// List returns documents visible to the requester, newest first, with
// offset pagination.
func (r *Repository) List(ctx context.Context, ownerID string, elevated bool, skip, limit int) ([]models.Document, error) {
	if limit <= 0 {
		limit = 100
	}
	body := map[string]any{
		"query": ownerQuery(ownerID, elevated),
		"sort":  []map[string]any{{"created_at": map[string]any{"order": "desc"}}},
		"from":  skip,
		"size":  limit,
	}
	return r.search(ctx, body)
}

// Recent returns the n most recently created documents visible to the
// requester, in descending creation-time order.
func (r *Repository) Recent(ctx context.Context, ownerID string, elevated bool, n int) ([]models.Document, error) {
	body := map[string]any{
		"query": ownerQuery(ownerID, elevated),
		"sort":  []map[string]any{{"created_at": map[string]any{"order": "desc"}}},
		"size":  n,
	}
	return r.search(ctx, body)
}

// ByIDs fetches the given documents, silently excluding any the requester
// does not own (unless elevated). Requesting only foreign ids yields an
// empty result, not an error.
func (r *Repository) ByIDs(ctx context.Context, ids []string, ownerID string, elevated bool) ([]models.Document, error) {
	must := []map[string]any{
		{"ids": map[string]any{"values": ids}},
	}
	if !elevated {
		must = append(must, map[string]any{
			"term": map[string]any{"owner_id": ownerID},
		})
	}
	body := map[string]any{
		"query": map[string]any{"bool": map[string]any{"must": must}},
		"size":  len(ids),
	}
	return r.search(ctx, body)
}

// Update applies metadata changes (title, summary, tags) to an existing
// document and stamps updated_at. Ownership rules match Get.
func (r *Repository) Update(ctx context.Context, id, ownerID string, elevated bool, title, summary *string, tags []string) (*models.Document, error) {
	doc, err := r.Get(ctx, id, ownerID, elevated)
	if err != nil {
		return nil, err
	}

	if title != nil {
		doc.Title = *title
	}
	if summary != nil {
		doc.Summary = *summary
	}
	if tags != nil {
		doc.Tags = tags
	}
	doc.UpdatedAt = time.Now().UTC()

	if err := r.Index(ctx, *doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// Delete removes a document record. Ownership rules match Get.
func (r *Repository) Delete(ctx context.Context, id, ownerID string, elevated bool) (*models.Document, error) {
	doc, err := r.Get(ctx, id, ownerID, elevated)
	if err != nil {
		return nil, err
	}

	res, err := r.es.Delete(
		r.index,
		id,
		r.es.Delete.WithContext(ctx),
	)
	if err != nil {
		return nil, fmt.Errorf("delete failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() && res.StatusCode != 404 {
		return nil, fmt.Errorf("delete error: %s", res.String())
	}
	return doc, nil
}

package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/docvault/docvault/internal/extract"
	"github.com/docvault/docvault/internal/storage"
	"github.com/docvault/docvault/pkg/models"
)

// Analyzer derives summary and tags from extracted text.
type Analyzer interface {
	Analyze(ctx context.Context, text string) (models.AnalysisResult, error)
}

// Embedder turns a summary into a vector. Optional.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Indexer commits the document record. This is the only step whose failure
// fails an upload.
type Indexer interface {
	Index(ctx context.Context, doc models.Document) error
}

// Config holds ingestion configuration.
type Config struct {
	Extract          extract.Options // upload-time extraction options
	AnalysisInputCap int             // truncation applied right before analysis
}

// Engine runs the upload workflow: generate id, persist bytes, extract
// text, analyze, index the record.
type Engine struct {
	storage   *storage.Manager
	extractor *extract.Extractor
	analyzer  Analyzer
	embedder  Embedder // nil if embeddings disabled
	index     Indexer
	config    Config
}

// New creates a new ingestion engine.
func New(
	storageManager *storage.Manager,
	extractor *extract.Extractor,
	analyzer Analyzer,
	embedder Embedder,
	index Indexer,
	config Config,
) *Engine {
	return &Engine{
		storage:   storageManager,
		extractor: extractor,
		analyzer:  analyzer,
		embedder:  embedder,
		index:     index,
		config:    config,
	}
}

// Ingest processes one uploaded file and returns the persisted document.
// The id generated here names both the fallback file and the index record,
// so the two can never disagree. Storage and extraction failures are
// absorbed; an index commit failure is fatal.
func (e *Engine) Ingest(ctx context.Context, filename string, data []byte, contentType, ownerID string) (*models.Document, error) {
	id := models.NewDocumentID()
	slog.Info("ingesting document", "id", id, "filename", filename, "owner", ownerID, "size", len(data))

	stored, err := e.storage.Persist(ctx, id, filename, data, contentType)
	if err != nil {
		// No durable copy exists, but the record still carries the
		// analysis results; re-upload is operator-driven.
		slog.Error("failed to persist file", "id", id, "error", err)
	}

	extraction := e.extractor.Extract(data, filename, e.config.Extract)
	text := extract.Truncate(extraction.Text, e.config.AnalysisInputCap)

	result, err := e.analyzer.Analyze(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("analysis failed: %w", err)
	}

	doc := models.Document{
		ID:              id,
		Title:           filename,
		Filename:        filename,
		MayanDocumentID: stored.Ref,
		Summary:         result.Summary,
		Tags:            result.Tags,
		OwnerID:         ownerID,
		CreatedAt:       time.Now().UTC(),
	}

	if e.embedder != nil && doc.Summary != "" {
		embedding, err := e.embedder.Embed(ctx, doc.Summary)
		if err != nil {
			slog.Warn("failed to embed summary", "id", id, "error", err)
		} else {
			doc.Embedding = embedding
		}
	}

	if err := e.index.Index(ctx, doc); err != nil {
		return nil, fmt.Errorf("failed to commit document record: %w", err)
	}

	slog.Info("document ingested", "id", id, "kind", extraction.Kind, "fell_back", stored.FellBack)
	return &doc, nil
}

package chat

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/docvault/docvault/internal/extract"
	"github.com/docvault/docvault/pkg/models"
)

// Fixed strings used when a document block is missing a piece.
const (
	ContextBanner = "Here is some context from the user's documents:\n\n"
	NoDocuments   = "No documents found to provide context."
	NoSummary     = "No summary available."
	NoTags        = "No tags."
	NoContent     = "No content available."
)

// DocumentSource selects candidate documents for a chat request.
type DocumentSource interface {
	Recent(ctx context.Context, ownerID string, elevated bool, n int) ([]models.Document, error)
	ByIDs(ctx context.Context, ids []string, ownerID string, elevated bool) ([]models.Document, error)
}

// FileLocator finds a document's stored file in fallback storage.
type FileLocator interface {
	Locate(id string) (string, bool)
}

// AssemblerConfig holds context assembly configuration.
type AssemblerConfig struct {
	RecentDocs int             // documents pulled when no explicit IDs are given
	Extract    extract.Options // chat-context extraction options
}

// Assembler reloads stored documents and concatenates bounded per-document
// snippets into one prompt-context string. A ChatContext lives for one
// request and is never persisted.
type Assembler struct {
	source    DocumentSource
	files     FileLocator
	extractor *extract.Extractor
	config    AssemblerConfig
}

// NewAssembler creates a context assembler.
func NewAssembler(source DocumentSource, files FileLocator, extractor *extract.Extractor, config AssemblerConfig) *Assembler {
	if config.RecentDocs == 0 {
		config.RecentDocs = 5
	}
	return &Assembler{
		source:    source,
		files:     files,
		extractor: extractor,
		config:    config,
	}
}

// Assemble selects documents (explicit IDs, ownership-filtered, or the
// most recent N) and renders them into the context string. A document
// whose stored file is missing contributes a placeholder block; it is not
// an error.
func (a *Assembler) Assemble(ctx context.Context, ownerID string, elevated bool, ids []string) (string, error) {
	var docs []models.Document
	var err error
	if len(ids) > 0 {
		docs, err = a.source.ByIDs(ctx, ids, ownerID, elevated)
	} else {
		docs, err = a.source.Recent(ctx, ownerID, elevated, a.config.RecentDocs)
	}
	if err != nil {
		return "", fmt.Errorf("failed to select documents: %w", err)
	}

	if len(docs) == 0 {
		return NoDocuments, nil
	}

	var sb strings.Builder
	sb.WriteString(ContextBanner)
	for _, doc := range docs {
		sb.WriteString(a.renderBlock(doc))
	}
	return sb.String(), nil
}

// renderBlock produces one document's contribution to the context.
func (a *Assembler) renderBlock(doc models.Document) string {
	summary := doc.Summary
	if summary == "" {
		summary = NoSummary
	}
	tags := NoTags
	if len(doc.Tags) > 0 {
		tags = strings.Join(doc.Tags, ", ")
	}

	return fmt.Sprintf("Document: %s\nSummary: %s\nTags: %s\nContent: %s\n\n",
		doc.Title, summary, tags, a.contentSnippet(doc))
}

// contentSnippet re-extracts a bounded snippet from the document's stored
// file. The file bytes are read whole and handed to the extractor by
// value; no stream cursor is shared.
func (a *Assembler) contentSnippet(doc models.Document) string {
	path, ok := a.files.Locate(doc.ID)
	if !ok {
		return NoContent
	}

	data, err := os.ReadFile(path)
	if err != nil {
		slog.Warn("failed to read stored file", "id", doc.ID, "path", path, "error", err)
		return NoContent
	}

	result := a.extractor.Extract(data, path, a.config.Extract)
	if strings.TrimSpace(result.Text) == "" {
		return NoContent
	}
	return result.Text
}

package cmd

import (
	"fmt"
	"log/slog"

	"github.com/docvault/docvault/internal/analysis"
	"github.com/docvault/docvault/internal/chat"
	"github.com/docvault/docvault/internal/config"
	"github.com/docvault/docvault/internal/embeddings"
	"github.com/docvault/docvault/internal/extract"
	"github.com/docvault/docvault/internal/ingest"
	"github.com/docvault/docvault/internal/mayan"
	"github.com/docvault/docvault/internal/repo"
	"github.com/docvault/docvault/internal/storage"
)

// components holds the wired application graph shared by the commands.
type components struct {
	repo      *repo.Repository
	storage   *storage.Manager
	extractor *extract.Extractor
	engine    *ingest.Engine
	assembler *chat.Assembler
	responder *chat.Responder
}

// uploadExtractOptions bounds extraction at upload time.
func uploadExtractOptions(cfg config.Config) extract.Options {
	return extract.Options{
		PDFPages:         cfg.Extraction.UploadPDFPages,
		OCRPages:         cfg.Extraction.OCRPages,
		MinDirectPDFText: cfg.Extraction.MinDirectPDFText,
		Cap:              cfg.Extraction.SnippetCap,
	}
}

// contextExtractOptions bounds extraction at chat-context time. The PDF
// page cap deliberately differs from the upload one.
func contextExtractOptions(cfg config.Config) extract.Options {
	return extract.Options{
		PDFPages:         cfg.Extraction.ContextPDFPages,
		OCRPages:         cfg.Extraction.OCRPages,
		MinDirectPDFText: cfg.Extraction.MinDirectPDFText,
		Cap:              cfg.Extraction.SnippetCap,
	}
}

// newDocumentStore builds the configured primary store backend.
func newDocumentStore(cfg config.Config) (storage.DocumentStore, error) {
	switch cfg.Store.Backend {
	case "mayan":
		return mayan.New(mayan.Config{
			URL:          cfg.Store.Mayan.URL,
			Token:        cfg.Store.Mayan.Token,
			DocumentType: cfg.Store.Mayan.DocumentType,
			Timeout:      cfg.Store.Timeout,
		})
	case "s3":
		return storage.NewS3(storage.S3Config{
			Endpoint:        cfg.Store.S3.Endpoint,
			Bucket:          cfg.Store.S3.Bucket,
			AccessKeyID:     cfg.Store.S3.AccessKeyID,
			SecretAccessKey: cfg.Store.S3.SecretAccessKey,
			UseSSL:          cfg.Store.S3.UseSSL,
		})
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}

// buildComponents wires the full application graph from configuration.
func buildComponents(cfg config.Config) (*components, error) {
	documents, err := repo.New(repo.Config{
		Addresses: cfg.Elasticsearch.Addresses,
		Index:     cfg.Elasticsearch.Index,
		Username:  cfg.Elasticsearch.Username,
		Password:  cfg.Elasticsearch.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create document repository: %w", err)
	}

	store, err := newDocumentStore(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create document store: %w", err)
	}
	manager := storage.NewManager(store, cfg.Fallback.Dir)

	extractor := extract.New(&extract.Tesseract{}, extract.Fitz{})

	strict := cfg.Mode == config.ModeProduction

	analyzer, err := analysis.New(analysis.Config{
		URL:     cfg.Ollama.URL,
		Model:   cfg.Ollama.Model,
		Timeout: cfg.Ollama.Timeout,
		Strict:  strict,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create analysis client: %w", err)
	}

	responder, err := chat.NewResponder(chat.ResponderConfig{
		URL:     cfg.Ollama.URL,
		Model:   cfg.Ollama.Model,
		Timeout: cfg.Ollama.Timeout,
		Strict:  strict,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create chat responder: %w", err)
	}

	var embedder ingest.Embedder
	if cfg.Embeddings.Enabled {
		client, err := embeddings.New(embeddings.Config{
			URL:   cfg.Ollama.URL,
			Model: cfg.Embeddings.Model,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create embeddings client: %w", err)
		}
		embedder = client
		slog.Info("summary embeddings enabled", "model", cfg.Embeddings.Model)
	}

	engine := ingest.New(manager, extractor, analyzer, embedder, documents, ingest.Config{
		Extract:          uploadExtractOptions(cfg),
		AnalysisInputCap: cfg.Extraction.AnalysisInputCap,
	})

	assembler := chat.NewAssembler(documents, manager, extractor, chat.AssemblerConfig{
		RecentDocs: cfg.Chat.RecentDocs,
		Extract:    contextExtractOptions(cfg),
	})

	return &components{
		repo:      documents,
		storage:   manager,
		extractor: extractor,
		engine:    engine,
		assembler: assembler,
		responder: responder,
	}, nil
}

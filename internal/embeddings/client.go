package embeddings

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/ollama/ollama/api"
)

// Config holds embeddings client configuration.
type Config struct {
	URL   string
	Model string // e.g. "nomic-embed-text"
}

// Client generates summary embeddings via the Ollama embeddings API.
type Client struct {
	ollama *api.Client
	model  string
}

// New creates a new embeddings client.
func New(config Config) (*Client, error) {
	if config.URL == "" {
		return nil, fmt.Errorf("ollama url is required")
	}
	if config.Model == "" {
		return nil, fmt.Errorf("model is required")
	}
	base, err := url.Parse(config.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid ollama url: %w", err)
	}

	return &Client{
		ollama: api.NewClient(base, http.DefaultClient),
		model:  config.Model,
	}, nil
}

// maxInputChars keeps the input inside the embedding model's context
// window. Summaries are two sentences, so this only matters for callers
// embedding raw content.
const maxInputChars = 8000

// Embed generates an embedding vector for the given text.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	if len(text) > maxInputChars {
		text = text[:maxInputChars]
	}
	slog.Debug("generating embedding", "len", len(text))

	resp, err := c.ollama.Embeddings(ctx, &api.EmbeddingRequest{
		Model:  c.model,
		Prompt: text,
	})
	if err != nil {
		return nil, fmt.Errorf("embedding request failed: %w", err)
	}
	if len(resp.Embedding) == 0 {
		return nil, fmt.Errorf("no embedding returned")
	}

	embedding := make([]float32, len(resp.Embedding))
	for i, v := range resp.Embedding {
		embedding[i] = float32(v)
	}
	return embedding, nil
}

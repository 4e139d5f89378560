package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/docvault/docvault/internal/extract"
	"github.com/docvault/docvault/pkg/models"
	"github.com/ollama/ollama/api"
)

// ErrUnavailable is returned under the strict policy when the model
// backend cannot be reached.
var ErrUnavailable = errors.New("analysis service unavailable")

// PromptEmbedCap limits how much document text is embedded into the
// analysis prompt, independent of the caller-side input cap.
const PromptEmbedCap = 2000

const analysisPrompt = `Analyze the following document text and provide:
1. A brief summary (max 2 sentences).
2. A list of 5 relevant tags.

Format the output as JSON with keys 'summary' and 'tags'.

Text:
%s`

// FailedResult is substituted when the model's reply cannot be parsed.
// Parse failures never fail an upload.
var FailedResult = models.AnalysisResult{Summary: "Analysis failed", Tags: []string{}}

// mockResult stands in for the model under the lenient policy when the
// backend is unreachable.
var mockResult = models.AnalysisResult{
	Summary: "Mock summary for development.",
	Tags:    []string{"mock", "dev", "test"},
}

// Config holds analysis client configuration.
type Config struct {
	URL     string
	Model   string
	Timeout time.Duration
	Strict  bool // surface ErrUnavailable instead of degrading to a mock
}

// Client derives a summary and tags from document text via the Ollama
// generate API.
type Client struct {
	ollama  *api.Client
	model   string
	timeout time.Duration
	strict  bool
}

// New creates a new analysis client.
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
	timeout := config.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}

	return &Client{
		ollama:  api.NewClient(base, http.DefaultClient),
		model:   config.Model,
		timeout: timeout,
		strict:  config.Strict,
	}, nil
}

// Analyze sends text to the model and parses a {summary, tags} result.
// Transport failures follow the configured policy; a malformed model reply
// degrades to FailedResult without error.
func (c *Client) Analyze(ctx context.Context, text string) (models.AnalysisResult, error) {
	prompt := fmt.Sprintf(analysisPrompt, extract.Truncate(text, PromptEmbedCap))

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	stream := false
	req := &api.GenerateRequest{
		Model:  c.model,
		Prompt: prompt,
		Stream: &stream,
		Format: json.RawMessage(`"json"`),
	}

	var raw string
	err := c.ollama.Generate(ctx, req, func(resp api.GenerateResponse) error {
		raw += resp.Response
		return nil
	})
	if err != nil {
		slog.Warn("analysis request failed", "error", err)
		if c.strict {
			return models.AnalysisResult{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		return mockResult, nil
	}

	var result models.AnalysisResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		slog.Warn("failed to parse analysis response", "error", err)
		return FailedResult, nil
	}
	if result.Tags == nil {
		result.Tags = []string{}
	}
	return result, nil
}

package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/ollama/ollama/api"
)

// ErrUnavailable is returned under the strict policy when the model
// backend cannot be reached.
var ErrUnavailable = errors.New("chat service unavailable")

// Apology is returned under the lenient policy when the model backend
// cannot be reached.
const Apology = "I'm sorry, I couldn't process your request at the moment. Please ensure Ollama is running."

const systemInstruction = "You are a helpful AI assistant for a Document Vault. " +
	"Use the provided document context to answer the user's question. " +
	"If the answer is not in the context, say so, but try to be helpful."

// ResponderConfig holds chat responder configuration.
type ResponderConfig struct {
	URL     string
	Model   string
	Timeout time.Duration
	Strict  bool // surface ErrUnavailable instead of the apology string
}

// Responder submits an assembled context plus user question to the Ollama
// chat API and returns the reply verbatim.
type Responder struct {
	ollama  *api.Client
	model   string
	timeout time.Duration
	strict  bool
}

// NewResponder creates a new chat responder.
func NewResponder(config ResponderConfig) (*Responder, error) {
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

	return &Responder{
		ollama:  api.NewClient(base, http.DefaultClient),
		model:   config.Model,
		timeout: timeout,
		strict:  config.Strict,
	}, nil
}

// Respond builds the fixed two-message exchange and returns the model's
// reply untruncated.
func (r *Responder) Respond(ctx context.Context, contextText, question string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	stream := false
	req := &api.ChatRequest{
		Model: r.model,
		Messages: []api.Message{
			{Role: "system", Content: systemInstruction},
			{Role: "user", Content: fmt.Sprintf("Context:\n%s\n\nQuestion: %s", contextText, question)},
		},
		Stream: &stream,
	}

	var reply string
	err := r.ollama.Chat(ctx, req, func(resp api.ChatResponse) error {
		reply += resp.Message.Content
		return nil
	})
	if err != nil {
		slog.Warn("chat request failed", "error", err)
		if r.strict {
			return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		return Apology, nil
	}

	return reply, nil
}

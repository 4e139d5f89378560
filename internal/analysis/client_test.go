package analysis

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{"missing url", Config{Model: "llama3.1"}, true},
		{"missing model", Config{URL: "http://localhost:11434"}, true},
		{"valid", Config{URL: "http://localhost:11434", Model: "llama3.1"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.config)
			if (err != nil) != tt.wantErr {
				t.Errorf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

// newTestClient backs a Client with a fake Ollama generate endpoint that
// replies with the given model output.
func newTestClient(t *testing.T, modelOutput string, strict bool) (*Client, *string) {
	t.Helper()

	var gotPrompt string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			http.NotFound(w, r)
			return
		}
		var req struct {
			Prompt string `json:"prompt"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		gotPrompt = req.Prompt

		json.NewEncoder(w).Encode(map[string]any{
			"model":    "llama3.1",
			"response": modelOutput,
			"done":     true,
		})
	}))
	t.Cleanup(server.Close)

	client, err := New(Config{URL: server.URL, Model: "llama3.1", Strict: strict})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return client, &gotPrompt
}

func TestAnalyze_Success(t *testing.T) {
	client, _ := newTestClient(t, `{"summary": "A lease agreement. It runs for one year.", "tags": ["lease", "legal"]}`, false)

	result, err := client.Analyze(t.Context(), "lease text")
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	if result.Summary != "A lease agreement. It runs for one year." {
		t.Errorf("Summary = %q", result.Summary)
	}
	if len(result.Tags) != 2 || result.Tags[0] != "lease" {
		t.Errorf("Tags = %v", result.Tags)
	}
}

func TestAnalyze_MalformedReplyDegrades(t *testing.T) {
	client, _ := newTestClient(t, "Sure! Here is your summary: the document is a lease.", false)

	result, err := client.Analyze(t.Context(), "lease text")
	if err != nil {
		t.Fatalf("Analyze() should not error on a malformed reply, got %v", err)
	}

	if result.Summary != FailedResult.Summary {
		t.Errorf("Summary = %q, want %q", result.Summary, FailedResult.Summary)
	}
	if result.Tags == nil || len(result.Tags) != 0 {
		t.Errorf("Tags = %#v, want empty non-nil slice", result.Tags)
	}
}

func TestAnalyze_MissingTagsBecomeEmptySlice(t *testing.T) {
	client, _ := newTestClient(t, `{"summary": "Just a summary."}`, false)

	result, err := client.Analyze(t.Context(), "text")
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if result.Tags == nil {
		t.Error("Tags should never be nil")
	}
}

func TestAnalyze_PromptEmbedsBoundedText(t *testing.T) {
	client, gotPrompt := newTestClient(t, `{"summary": "s", "tags": []}`, false)

	if _, err := client.Analyze(t.Context(), strings.Repeat("q", PromptEmbedCap+500)); err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	if got := strings.Count(*gotPrompt, "q"); got != PromptEmbedCap {
		t.Errorf("prompt embeds %d chars of text, want %d", got, PromptEmbedCap)
	}
	if !strings.Contains(*gotPrompt, "keys 'summary' and 'tags'") {
		t.Errorf("prompt = %q", *gotPrompt)
	}
}

func TestAnalyze_UnreachableLenient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client, err := New(Config{URL: server.URL, Model: "llama3.1", Strict: false})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	result, err := client.Analyze(t.Context(), "text")
	if err != nil {
		t.Fatalf("Analyze() should degrade to a mock result, got %v", err)
	}
	if result.Summary != "Mock summary for development." {
		t.Errorf("Summary = %q", result.Summary)
	}
	if len(result.Tags) == 0 {
		t.Error("mock result should carry tags")
	}
}

func TestAnalyze_UnreachableStrict(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client, err := New(Config{URL: server.URL, Model: "llama3.1", Strict: true})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if _, err := client.Analyze(t.Context(), "text"); !errors.Is(err, ErrUnavailable) {
		t.Errorf("Analyze() error = %v, want ErrUnavailable", err)
	}
}

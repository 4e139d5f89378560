package chat

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestNewResponder_Validation(t *testing.T) {
	tests := []struct {
		name    string
		config  ResponderConfig
		wantErr bool
	}{
		{"missing url", ResponderConfig{Model: "llama3.1"}, true},
		{"missing model", ResponderConfig{URL: "http://localhost:11434"}, true},
		{"valid", ResponderConfig{URL: "http://localhost:11434", Model: "llama3.1"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewResponder(tt.config)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewResponder() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

func newTestResponder(t *testing.T, reply string, strict bool) (*Responder, *[]chatMessage) {
	t.Helper()

	var gotMessages []chatMessage
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			http.NotFound(w, r)
			return
		}
		var req struct {
			Messages []chatMessage `json:"messages"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		gotMessages = req.Messages

		json.NewEncoder(w).Encode(map[string]any{
			"model":   "llama3.1",
			"message": map[string]string{"role": "assistant", "content": reply},
			"done":    true,
		})
	}))
	t.Cleanup(server.Close)

	responder, err := NewResponder(ResponderConfig{URL: server.URL, Model: "llama3.1", Strict: strict})
	if err != nil {
		t.Fatalf("NewResponder() error = %v", err)
	}
	return responder, &gotMessages
}

func TestRespond_ReturnsReplyVerbatim(t *testing.T) {
	responder, _ := newTestResponder(t, "The notice period is 30 days.", false)

	reply, err := responder.Respond(t.Context(), "context", "What is the notice period?")
	if err != nil {
		t.Fatalf("Respond() error = %v", err)
	}
	if reply != "The notice period is 30 days." {
		t.Errorf("reply = %q", reply)
	}
}

func TestRespond_BuildsTwoMessageExchange(t *testing.T) {
	responder, gotMessages := newTestResponder(t, "ok", false)

	_, err := responder.Respond(t.Context(), "Document: Lease\n", "What is the rent?")
	if err != nil {
		t.Fatalf("Respond() error = %v", err)
	}

	msgs := *gotMessages
	if len(msgs) != 2 {
		t.Fatalf("got %d messages, want 2", len(msgs))
	}
	if msgs[0].Role != "system" {
		t.Errorf("first role = %q, want system", msgs[0].Role)
	}
	if !strings.Contains(msgs[0].Content, "Document Vault") {
		t.Errorf("system message = %q", msgs[0].Content)
	}
	if msgs[1].Role != "user" {
		t.Errorf("second role = %q, want user", msgs[1].Role)
	}
	if !strings.HasPrefix(msgs[1].Content, "Context:\nDocument: Lease\n") {
		t.Errorf("user message = %q", msgs[1].Content)
	}
	if !strings.Contains(msgs[1].Content, "Question: What is the rent?") {
		t.Errorf("user message = %q", msgs[1].Content)
	}
}

func TestRespond_UnreachableLenient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	responder, err := NewResponder(ResponderConfig{URL: server.URL, Model: "llama3.1", Strict: false})
	if err != nil {
		t.Fatalf("NewResponder() error = %v", err)
	}

	reply, err := responder.Respond(t.Context(), "context", "question")
	if err != nil {
		t.Fatalf("Respond() should degrade to the apology, got %v", err)
	}
	if reply != Apology {
		t.Errorf("reply = %q, want apology", reply)
	}
}

func TestRespond_UnreachableStrict(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	responder, err := NewResponder(ResponderConfig{URL: server.URL, Model: "llama3.1", Strict: true})
	if err != nil {
		t.Fatalf("NewResponder() error = %v", err)
	}

	if _, err := responder.Respond(t.Context(), "context", "question"); !errors.Is(err, ErrUnavailable) {
		t.Errorf("Respond() error = %v, want ErrUnavailable", err)
	}
}

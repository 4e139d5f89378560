package embeddings

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{
			name:    "empty url",
			config:  Config{URL: "", Model: "nomic-embed-text"},
			wantErr: true,
		},
		{
			name:    "empty model",
			config:  Config{URL: "http://localhost:11434", Model: ""},
			wantErr: true,
		},
		{
			name:    "valid config",
			config:  Config{URL: "http://localhost:11434", Model: "nomic-embed-text"},
			wantErr: false,
		},
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

func TestEmbed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/embeddings" {
			http.NotFound(w, r)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"embedding": []float64{0.1, 0.2, 0.3},
		})
	}))
	defer server.Close()

	client, err := New(Config{URL: server.URL, Model: "nomic-embed-text"})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	vector, err := client.Embed(t.Context(), "A short summary.")
	if err != nil {
		t.Fatalf("Embed() error = %v", err)
	}

	if len(vector) != 3 {
		t.Fatalf("got %d dimensions, want 3", len(vector))
	}
	if vector[0] != 0.1 {
		t.Errorf("vector[0] = %v", vector[0])
	}
}

func TestEmbed_EmptyResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"embedding": []float64{}})
	}))
	defer server.Close()

	client, err := New(Config{URL: server.URL, Model: "nomic-embed-text"})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if _, err := client.Embed(t.Context(), "text"); err == nil {
		t.Error("Embed() should fail when no vector comes back")
	}
}

func TestEmbed_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client, err := New(Config{URL: server.URL, Model: "nomic-embed-text"})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if _, err := client.Embed(t.Context(), "text"); err == nil {
		t.Error("Embed() should fail when the server is unreachable")
	}
}

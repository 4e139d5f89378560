package config

import "time"

// Mode selects how external-service failures are surfaced.
type Mode string

const (
	ModeDevelopment Mode = "development" // degrade to mocks and apologies
	ModeProduction  Mode = "production"  // surface service-unavailable errors
)

// Config holds all application configuration.
type Config struct {
	Mode          Mode          `mapstructure:"mode"`
	Server        Server        `mapstructure:"server"`
	Elasticsearch Elasticsearch `mapstructure:"elasticsearch"`
	Store         Store         `mapstructure:"store"`
	Fallback      Fallback      `mapstructure:"fallback"`
	Ollama        Ollama        `mapstructure:"ollama"`
	Embeddings    Embeddings    `mapstructure:"embeddings"`
	Extraction    Extraction    `mapstructure:"extraction"`
	Chat          Chat          `mapstructure:"chat"`
	MCP           MCP           `mapstructure:"mcp"`
}

// Server holds HTTP API configuration.
type Server struct {
	Addr string `mapstructure:"addr"`
}

// Elasticsearch holds the document index connection configuration.
type Elasticsearch struct {
	Addresses []string `mapstructure:"addresses"`
	Index     string   `mapstructure:"index"`
	Username  string   `mapstructure:"username"`
	Password  string   `mapstructure:"password"`
}

// Store selects and configures the primary document store backend.
type Store struct {
	Backend string        `mapstructure:"backend"` // "mayan" or "s3"
	Timeout time.Duration `mapstructure:"timeout"`
	Mayan   Mayan         `mapstructure:"mayan"`
	S3      S3            `mapstructure:"s3"`
}

// Mayan holds Mayan EDMS API configuration.
type Mayan struct {
	URL          string `mapstructure:"url"`
	Token        string `mapstructure:"token"`
	DocumentType string `mapstructure:"document_type"`
}

// S3 holds S3/MinIO store configuration.
type S3 struct {
	Endpoint        string `mapstructure:"endpoint"`
	Bucket          string `mapstructure:"bucket"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	UseSSL          bool   `mapstructure:"use_ssl"`
}

// Fallback holds local fallback storage configuration.
type Fallback struct {
	Dir string `mapstructure:"dir"`
}

// Ollama holds language-model configuration shared by analysis and chat.
type Ollama struct {
	URL     string        `mapstructure:"url"`
	Model   string        `mapstructure:"model"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// Embeddings holds optional summary-embedding configuration.
type Embeddings struct {
	Enabled bool   `mapstructure:"enabled"`
	Model   string `mapstructure:"model"`
}

// Extraction holds text extraction limits. The upload and chat-context
// call sites deliberately use different PDF page caps.
type Extraction struct {
	UploadPDFPages   int `mapstructure:"upload_pdf_pages"`
	ContextPDFPages  int `mapstructure:"context_pdf_pages"`
	OCRPages         int `mapstructure:"ocr_pages"`
	MinDirectPDFText int `mapstructure:"min_direct_pdf_text"`
	SnippetCap       int `mapstructure:"snippet_cap"`
	AnalysisInputCap int `mapstructure:"analysis_input_cap"`
}

// Chat holds chat-context configuration.
type Chat struct {
	RecentDocs int `mapstructure:"recent_docs"`
}

// MCP holds MCP server configuration.
type MCP struct {
	Name    string `mapstructure:"name"`
	Version string `mapstructure:"version"`
}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	return Config{
		Mode: ModeDevelopment,
		Server: Server{
			Addr: ":8080",
		},
		Elasticsearch: Elasticsearch{
			Addresses: []string{"http://localhost:9200"},
			Index:     "docvault-documents",
		},
		Store: Store{
			Backend: "mayan",
			Timeout: 30 * time.Second,
			Mayan: Mayan{
				URL:          "http://localhost:8000/api/v4",
				DocumentType: "Default",
			},
			S3: S3{
				Endpoint:        "localhost:9000",
				Bucket:          "docvault",
				AccessKeyID:     "minioadmin",
				SecretAccessKey: "minioadmin",
				UseSSL:          false,
			},
		},
		Fallback: Fallback{
			Dir: "./data/fallback",
		},
		Ollama: Ollama{
			URL:     "http://localhost:11434",
			Model:   "llama3.1",
			Timeout: 60 * time.Second,
		},
		Embeddings: Embeddings{
			Enabled: false, // requires an embedding model pulled into Ollama
			Model:   "nomic-embed-text",
		},
		Extraction: Extraction{
			UploadPDFPages:   3,
			ContextPDFPages:  5,
			OCRPages:         3,
			MinDirectPDFText: 50,
			SnippetCap:       6000,
			AnalysisInputCap: 4000,
		},
		Chat: Chat{
			RecentDocs: 5,
		},
		MCP: MCP{
			Name:    "docvault",
			Version: "1.0.0",
		},
	}
}

package models

import (
	"time"

	"github.com/google/uuid"
)

// Document is the metadata record for one uploaded file.
type Document struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Filename        string    `json:"filename"`
	MayanDocumentID string    `json:"mayan_document_id,omitempty"` // empty when stored via local fallback
	Summary         string    `json:"summary,omitempty"`
	Tags            []string  `json:"tags,omitempty"`
	OwnerID         string    `json:"owner_id"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at,omitempty"`
	Embedding       []float32 `json:"embedding,omitempty"` // vector embedding of summary
}

// NewDocumentID generates a document identifier. The ID is created before
// any storage or analysis happens so the fallback file on disk and the
// index record always share the same key.
func NewDocumentID() string {
	return uuid.NewString()
}

// AnalysisResult holds the LLM-derived metadata for a document.
type AnalysisResult struct {
	Summary string   `json:"summary"`
	Tags    []string `json:"tags"`
}

// ExtractionKind identifies which strategy produced the extracted text.
type ExtractionKind string

const (
	KindText     ExtractionKind = "text"      // lossy UTF-8 decode of raw bytes
	KindHTML     ExtractionKind = "html"      // HTML converted to markdown
	KindPDFText  ExtractionKind = "pdf-text"  // embedded PDF text
	KindPDFOCR   ExtractionKind = "pdf-ocr"   // rendered PDF pages through OCR
	KindImageOCR ExtractionKind = "image-ocr" // image file through OCR
	KindBinary   ExtractionKind = "binary"    // unreadable binary content
)

// ExtractionResult is the outcome of one extraction call. Text is always
// populated; when extraction degraded, Note says why.
type ExtractionResult struct {
	Text string
	Kind ExtractionKind
	Note string
}

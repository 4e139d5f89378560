package extract

import (
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/docvault/docvault/pkg/models"
)

// Placeholder strings returned when an extraction strategy degrades.
// Callers always receive text, never an error.
const (
	PlaceholderPDF    = "Could not read PDF content."
	PlaceholderImage  = "Could not read image content."
	PlaceholderBinary = "Could not read file content."
)

// OCREngine turns image bytes into text.
type OCREngine interface {
	ImageText(image []byte) (string, error)
}

// PDFRenderer rasterizes the first pages of a PDF into PNG images.
type PDFRenderer interface {
	RenderPages(pdf []byte, maxPages int) ([][]byte, error)
}

// Options bound one extraction call. The upload and chat-context call
// sites pass different PDF page caps on purpose.
type Options struct {
	PDFPages         int // pages to read for direct PDF text
	OCRPages         int // pages to rasterize when falling back to OCR
	MinDirectPDFText int // below this many trimmed chars, a PDF is treated as scanned
	Cap              int // final text length cap, applied after full extraction
}

// Extractor converts raw file bytes into plain text, selecting a strategy
// by filename extension. OCR and rendering are injected so the strategy
// selection stays testable without a Tesseract install.
type Extractor struct {
	ocr      OCREngine
	renderer PDFRenderer
}

// New creates an Extractor. Either dependency may be nil, in which case
// the paths that need it degrade to placeholders.
func New(ocr OCREngine, renderer PDFRenderer) *Extractor {
	return &Extractor{ocr: ocr, renderer: renderer}
}

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".bmp":  true,
	".tiff": true,
}

// Extract derives plain text from data. The filename is used only for its
// extension. The returned text is truncated to opts.Cap after the full
// extraction, not by limiting how much is read.
func (e *Extractor) Extract(data []byte, filename string, opts Options) models.ExtractionResult {
	ext := strings.ToLower(filepath.Ext(filename))

	var res models.ExtractionResult
	switch {
	case ext == ".pdf":
		res = e.extractPDF(data, opts)
	case imageExtensions[ext]:
		res = e.extractImage(data)
	case ext == ".html" || ext == ".htm":
		res = extractHTML(data)
	default:
		res = extractPlain(data)
	}

	res.Text = Truncate(res.Text, opts.Cap)
	slog.Debug("extracted text", "filename", filename, "kind", res.Kind, "len", len(res.Text))
	return res
}

// extractImage runs OCR directly on the decoded image bytes.
func (e *Extractor) extractImage(data []byte) models.ExtractionResult {
	if e.ocr == nil {
		return models.ExtractionResult{Text: PlaceholderImage, Kind: models.KindImageOCR, Note: "ocr engine not configured"}
	}
	text, err := e.ocr.ImageText(data)
	if err != nil {
		slog.Warn("image OCR failed", "error", err)
		return models.ExtractionResult{Text: PlaceholderImage, Kind: models.KindImageOCR, Note: err.Error()}
	}
	return models.ExtractionResult{Text: strings.TrimSpace(text), Kind: models.KindImageOCR}
}

// extractPlain decodes raw bytes as UTF-8, dropping invalid sequences.
func extractPlain(data []byte) models.ExtractionResult {
	text := strings.ToValidUTF8(string(data), "")
	if strings.TrimSpace(text) == "" && len(data) > 0 {
		return models.ExtractionResult{Text: PlaceholderBinary, Kind: models.KindBinary, Note: "no decodable text"}
	}
	return models.ExtractionResult{Text: text, Kind: models.KindText}
}

// Truncate caps s to at most n characters (runes). A cap of zero or less
// leaves s untouched.
func Truncate(s string, n int) string {
	if n <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

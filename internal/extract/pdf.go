package extract

import (
	"bytes"
	"fmt"
	"log/slog"
	"strings"

	"github.com/docvault/docvault/pkg/models"
	"github.com/ledongthuc/pdf"
)

// extractPDF attempts direct text extraction over the first opts.PDFPages
// pages. A PDF whose direct text trims below opts.MinDirectPDFText chars is
// treated as image-based and goes through the OCR fallback instead.
func (e *Extractor) extractPDF(data []byte, opts Options) models.ExtractionResult {
	text, err := pdfText(data, opts.PDFPages)
	if err != nil {
		slog.Warn("direct PDF extraction failed", "error", err)
	}

	if err == nil && len(strings.TrimSpace(text)) >= opts.MinDirectPDFText {
		return models.ExtractionResult{Text: strings.TrimSpace(text), Kind: models.KindPDFText}
	}

	// Too little embedded text: render the first pages and OCR them.
	ocrText, ocrErr := e.pdfOCR(data, opts.OCRPages)
	if ocrErr != nil {
		slog.Warn("PDF OCR fallback failed", "error", ocrErr)
		return models.ExtractionResult{Text: PlaceholderPDF, Kind: models.KindPDFOCR, Note: ocrErr.Error()}
	}
	return models.ExtractionResult{Text: strings.TrimSpace(ocrText), Kind: models.KindPDFOCR}
}

// pdfText reads embedded text from at most maxPages pages. The pdf library
// panics on some malformed files, so the whole read is fenced.
func pdfText(data []byte, maxPages int) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf parse panic: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open pdf: %w", err)
	}

	pages := reader.NumPage()
	if maxPages > 0 && pages > maxPages {
		pages = maxPages
	}

	var sb strings.Builder
	for i := 1; i <= pages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		sb.WriteString(content)
		sb.WriteString("\n")
	}
	return sb.String(), nil
}

// pdfOCR rasterizes the first maxPages pages and concatenates per-page OCR
// output.
func (e *Extractor) pdfOCR(data []byte, maxPages int) (string, error) {
	if e.renderer == nil || e.ocr == nil {
		return "", fmt.Errorf("ocr pipeline not configured")
	}

	images, err := e.renderer.RenderPages(data, maxPages)
	if err != nil {
		return "", fmt.Errorf("failed to render pdf pages: %w", err)
	}

	var sb strings.Builder
	for i, img := range images {
		pageText, err := e.ocr.ImageText(img)
		if err != nil {
			slog.Debug("page OCR failed", "page", i+1, "error", err)
			continue
		}
		sb.WriteString(pageText)
		sb.WriteString("\n")
	}

	if strings.TrimSpace(sb.String()) == "" {
		return "", fmt.Errorf("ocr produced no text")
	}
	return sb.String(), nil
}

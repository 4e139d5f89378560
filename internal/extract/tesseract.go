package extract

import (
	"fmt"

	"github.com/otiai10/gosseract/v2"
)

// Tesseract is the production OCREngine backed by a local Tesseract
// install via gosseract.
type Tesseract struct {
	Languages []string // e.g. ["eng", "deu"]; empty uses the engine default
}

// ImageText runs OCR over a single encoded image. A fresh client per call
// keeps the engine free of cross-request state.
func (t *Tesseract) ImageText(image []byte) (string, error) {
	client := gosseract.NewClient()
	defer client.Close()

	if len(t.Languages) > 0 {
		if err := client.SetLanguage(t.Languages...); err != nil {
			return "", fmt.Errorf("failed to set ocr languages: %w", err)
		}
	}
	if err := client.SetImageFromBytes(image); err != nil {
		return "", fmt.Errorf("failed to load image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("ocr failed: %w", err)
	}
	return text, nil
}

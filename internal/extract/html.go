package extract

import (
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/docvault/docvault/pkg/models"
	"golang.org/x/net/html"
)

// extractHTML converts an HTML document to markdown text. Conversion
// failures degrade to the plain lossy-decode path.
func extractHTML(data []byte) models.ExtractionResult {
	markdown, err := htmltomarkdown.ConvertString(string(data))
	if err != nil {
		res := extractPlain(data)
		res.Note = "html conversion failed: " + err.Error()
		return res
	}
	return models.ExtractionResult{Text: strings.TrimSpace(markdown), Kind: models.KindHTML}
}

// HTMLTitle extracts the <title> content from an HTML document. Returns
// the empty string when there is none.
func HTMLTitle(data []byte) string {
	doc, err := html.Parse(strings.NewReader(string(data)))
	if err != nil {
		return ""
	}

	var title string
	var findTitle func(*html.Node)
	findTitle = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "title" {
			if n.FirstChild != nil {
				title = n.FirstChild.Data
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			findTitle(c)
		}
	}
	findTitle(doc)

	return strings.TrimSpace(title)
}

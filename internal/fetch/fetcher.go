package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/docvault/docvault/internal/extract"
	"github.com/gocolly/colly/v2"
)

// Config holds fetcher configuration.
type Config struct {
	UserAgent string
	Timeout   time.Duration
}

// Page is one fetched web page, normalized to markdown.
type Page struct {
	URL      string
	Title    string
	Markdown string
}

// Fetcher retrieves a single web page so it can be ingested like an
// uploaded file. No link following, no crawling.
type Fetcher struct {
	config Config
}

// New creates a new Fetcher.
func New(config Config) *Fetcher {
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	if config.UserAgent == "" {
		config.UserAgent = "docvault/1.0"
	}
	return &Fetcher{config: config}
}

// Fetch downloads pageURL and converts it to markdown. Content already in
// markdown passes through untouched.
func (f *Fetcher) Fetch(ctx context.Context, pageURL string) (*Page, error) {
	c := colly.NewCollector(
		colly.UserAgent(f.config.UserAgent),
		colly.MaxDepth(1),
	)
	c.SetRequestTimeout(f.config.Timeout)

	c.OnRequest(func(r *colly.Request) {
		if ctx.Err() != nil {
			r.Abort()
		}
	})

	var body []byte
	var contentType string
	var status int
	c.OnResponse(func(r *colly.Response) {
		body = r.Body
		contentType = r.Headers.Get("Content-Type")
		status = r.StatusCode
	})

	if err := c.Visit(pageURL); err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", pageURL, err)
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if body == nil || status >= 400 {
		return nil, fmt.Errorf("failed to fetch %s: status %d", pageURL, status)
	}

	slog.Debug("fetched page", "url", pageURL, "content_type", contentType, "size", len(body))

	content := string(body)
	if detectMarkdown(pageURL, contentType, content) {
		return &Page{
			URL:      pageURL,
			Title:    markdownTitle(content),
			Markdown: content,
		}, nil
	}

	title := extract.HTMLTitle(body)
	markdown, err := htmltomarkdown.ConvertString(content)
	if err != nil {
		return nil, fmt.Errorf("failed to convert %s to markdown: %w", pageURL, err)
	}

	return &Page{
		URL:      pageURL,
		Title:    title,
		Markdown: strings.TrimSpace(markdown),
	}, nil
}

// markdownTitle extracts the first H1 heading from markdown content.
func markdownTitle(content string) string {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "# ") {
			return strings.TrimPrefix(line, "# ")
		}
	}
	return ""
}

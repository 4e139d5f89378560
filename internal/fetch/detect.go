package fetch

import (
	"regexp"
	"strings"
)

// isMarkdownContentType checks if the Content-Type header indicates markdown.
func isMarkdownContentType(contentType string) bool {
	ct := strings.ToLower(contentType)
	return strings.HasPrefix(ct, "text/markdown") ||
		strings.HasPrefix(ct, "text/x-markdown")
}

// isMarkdownURL checks if the URL indicates a markdown file.
func isMarkdownURL(url string) bool {
	lower := strings.ToLower(url)
	return strings.HasSuffix(lower, ".md") ||
		strings.HasSuffix(lower, ".markdown")
}

var (
	headerPattern = regexp.MustCompile(`^#{1,6}\s+\S`)
	listPattern   = regexp.MustCompile(`(?m)^[\-\*]\s+\S`)
	linkPattern   = regexp.MustCompile(`\[.+?\]\(.+?\)`)
)

// isMarkdownContent uses heuristics to detect if content is markdown.
func isMarkdownContent(content string) bool {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return false
	}
	if looksLikeHTML(trimmed) {
		return false
	}
	return headerPattern.MatchString(trimmed) ||
		listPattern.MatchString(trimmed) ||
		linkPattern.MatchString(trimmed)
}

// looksLikeHTML checks if content appears to be HTML.
func looksLikeHTML(content string) bool {
	lower := strings.ToLower(content)
	return strings.HasPrefix(lower, "<!doctype") ||
		strings.HasPrefix(lower, "<html") ||
		strings.HasPrefix(lower, "<head") ||
		strings.HasPrefix(lower, "<body")
}

// detectMarkdown decides whether fetched content is already markdown.
// Checks in order: Content-Type, URL, then content heuristics.
func detectMarkdown(url, contentType, content string) bool {
	if isMarkdownContentType(contentType) {
		return true
	}
	if isMarkdownURL(url) {
		return true
	}
	return isMarkdownContent(content)
}

package storage

import "context"

// DocumentStore is the primary, best-effort document store. Any error from
// Upload makes the fallback manager write the file locally instead; the
// two paths are mutually exclusive per upload and never retried.
type DocumentStore interface {
	// Upload persists the file and returns an opaque store reference.
	Upload(ctx context.Context, id, filename string, data []byte, contentType string) (string, error)
}

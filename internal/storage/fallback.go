package storage

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Result reports where one upload ended up. Exactly one of Ref and
// LocalPath is set.
type Result struct {
	Ref       string // opaque store reference from the primary path
	LocalPath string // fallback file path when the primary path failed
	FellBack  bool
}

// Manager persists uploads through the primary document store and falls
// back to a local directory when the store errors. The fallback filename
// is the pre-generated document id plus the original extension; that id is
// the sole join key between index record and filesystem blob.
type Manager struct {
	store DocumentStore // may be nil to force the local path
	dir   string
}

// NewManager creates a fallback manager writing to dir.
func NewManager(store DocumentStore, dir string) *Manager {
	return &Manager{store: store, dir: dir}
}

// Persist stores the file. Any primary-path error switches to the local
// fallback; the primary path is never retried and never reconciled later.
func (m *Manager) Persist(ctx context.Context, id, filename string, data []byte, contentType string) (Result, error) {
	if m.store != nil {
		ref, err := m.store.Upload(ctx, id, filename, data, contentType)
		if err == nil {
			return Result{Ref: ref}, nil
		}
		slog.Warn("document store upload failed, falling back to local storage", "id", id, "error", err)
	}

	path, err := m.writeLocal(id, filename, data)
	if err != nil {
		return Result{}, fmt.Errorf("fallback storage failed: %w", err)
	}
	return Result{LocalPath: path, FellBack: true}, nil
}

// writeLocal writes the whole file atomically: bytes land in a temp file
// that is renamed into place, so a retried upload can never observe a
// partial write.
func (m *Manager) writeLocal(id, filename string, data []byte) (string, error) {
	if err := os.MkdirAll(m.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create fallback dir: %w", err)
	}

	target := filepath.Join(m.dir, id+strings.ToLower(filepath.Ext(filename)))

	tmp, err := os.CreateTemp(m.dir, "."+id+"-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpName, target); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("failed to move file into place: %w", err)
	}

	slog.Debug("stored file locally", "id", id, "path", target)
	return target, nil
}

// Locate scans the fallback directory for a file whose basename equals the
// document id, with any extension. There is no manifest; the id prefix is
// the only discovery mechanism.
func (m *Manager) Locate(id string) (string, bool) {
	if id == "" {
		return "", false
	}
	matches, err := filepath.Glob(filepath.Join(m.dir, id+"*"))
	if err != nil {
		return "", false
	}
	for _, match := range matches {
		base := filepath.Base(match)
		if base == id || strings.TrimSuffix(base, filepath.Ext(base)) == id {
			return match, true
		}
	}
	return "", false
}

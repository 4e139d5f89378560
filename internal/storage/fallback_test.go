package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

type fakeStore struct {
	ref     string
	err     error
	uploads int
}

func (f *fakeStore) Upload(ctx context.Context, id, filename string, data []byte, contentType string) (string, error) {
	f.uploads++
	return f.ref, f.err
}

func TestPersist_PrimarySuccess(t *testing.T) {
	dir := t.TempDir()
	store := &fakeStore{ref: "42"}
	m := NewManager(store, dir)

	res, err := m.Persist(t.Context(), "doc-1", "lease.pdf", []byte("content"), "application/pdf")
	if err != nil {
		t.Fatalf("Persist() error = %v", err)
	}

	if res.Ref != "42" {
		t.Errorf("Ref = %q, want %q", res.Ref, "42")
	}
	if res.FellBack {
		t.Error("FellBack should be false on primary success")
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("fallback dir should stay empty, found %d entries", len(entries))
	}
}

func TestPersist_FallsBackOnStoreError(t *testing.T) {
	dir := t.TempDir()
	store := &fakeStore{err: errors.New("mayan unreachable")}
	m := NewManager(store, dir)

	res, err := m.Persist(t.Context(), "doc-1", "Lease.PDF", []byte("file content"), "application/pdf")
	if err != nil {
		t.Fatalf("Persist() error = %v", err)
	}

	if !res.FellBack {
		t.Error("FellBack should be true")
	}
	if res.Ref != "" {
		t.Errorf("Ref = %q, want empty", res.Ref)
	}

	want := filepath.Join(dir, "doc-1.pdf")
	if res.LocalPath != want {
		t.Errorf("LocalPath = %q, want %q", res.LocalPath, want)
	}

	data, err := os.ReadFile(want)
	if err != nil {
		t.Fatalf("reading fallback file: %v", err)
	}
	if string(data) != "file content" {
		t.Errorf("fallback content = %q", string(data))
	}

	// The temp file must be gone after the rename.
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("fallback dir should contain exactly the final file, found %d entries", len(entries))
	}
}

func TestPersist_NilStoreWritesLocally(t *testing.T) {
	dir := t.TempDir()
	m := NewManager(nil, dir)

	res, err := m.Persist(t.Context(), "doc-2", "notes.txt", []byte("notes"), "text/plain")
	if err != nil {
		t.Fatalf("Persist() error = %v", err)
	}
	if !res.FellBack {
		t.Error("FellBack should be true with no primary store")
	}
	if _, err := os.Stat(filepath.Join(dir, "doc-2.txt")); err != nil {
		t.Errorf("fallback file missing: %v", err)
	}
}

func TestPersist_DistinctIDsDoNotCollide(t *testing.T) {
	dir := t.TempDir()
	m := NewManager(nil, dir)

	if _, err := m.Persist(t.Context(), "id-a", "report.txt", []byte("aaa"), ""); err != nil {
		t.Fatalf("Persist() error = %v", err)
	}
	if _, err := m.Persist(t.Context(), "id-b", "report.txt", []byte("bbb"), ""); err != nil {
		t.Fatalf("Persist() error = %v", err)
	}

	a, _ := os.ReadFile(filepath.Join(dir, "id-a.txt"))
	b, _ := os.ReadFile(filepath.Join(dir, "id-b.txt"))
	if string(a) != "aaa" || string(b) != "bbb" {
		t.Errorf("files mixed up: a=%q b=%q", a, b)
	}
}

func TestLocate(t *testing.T) {
	dir := t.TempDir()
	m := NewManager(nil, dir)

	if _, err := m.Persist(t.Context(), "doc-3", "lease.pdf", []byte("x"), ""); err != nil {
		t.Fatalf("Persist() error = %v", err)
	}

	path, ok := m.Locate("doc-3")
	if !ok {
		t.Fatal("Locate() should find the persisted file")
	}
	if filepath.Base(path) != "doc-3.pdf" {
		t.Errorf("path = %q", path)
	}
}

func TestLocate_NoExtension(t *testing.T) {
	dir := t.TempDir()
	m := NewManager(nil, dir)

	if _, err := m.Persist(t.Context(), "doc-4", "README", []byte("x"), ""); err != nil {
		t.Fatalf("Persist() error = %v", err)
	}

	if _, ok := m.Locate("doc-4"); !ok {
		t.Error("Locate() should find a file stored without an extension")
	}
}

func TestLocate_Missing(t *testing.T) {
	m := NewManager(nil, t.TempDir())

	if _, ok := m.Locate("no-such-id"); ok {
		t.Error("Locate() should report missing for an unknown id")
	}
}

func TestLocate_EmptyID(t *testing.T) {
	dir := t.TempDir()
	m := NewManager(nil, dir)
	os.WriteFile(filepath.Join(dir, "something.pdf"), []byte("x"), 0o644)

	if _, ok := m.Locate(""); ok {
		t.Error("Locate(\"\") should never match")
	}
}

func TestLocate_PrefixIsNotEnough(t *testing.T) {
	dir := t.TempDir()
	m := NewManager(nil, dir)
	os.WriteFile(filepath.Join(dir, "doc-5-other.pdf"), []byte("x"), 0o644)

	if _, ok := m.Locate("doc-5"); ok {
		t.Error("Locate() must not match files that merely share the id prefix")
	}
}

package repo

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/docvault/docvault/pkg/models"
)

func newTestRepo(t *testing.T, index string) *Repository {
	t.Helper()

	if os.Getenv("SKIP_ES_TESTS") == "1" {
		t.Skip("Skipping ES tests")
	}
	r, err := New(Config{
		Addresses: []string{"http://localhost:9200"},
		Index:     index,
	})
	if err != nil {
		t.Skipf("Skipping: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if !r.Ping(ctx) {
		t.Skip("Skipping: ES not available")
	}
	return r
}

func seed(t *testing.T, r *Repository, docs []models.Document) {
	t.Helper()
	ctx := context.Background()

	r.DeleteIndex(ctx)
	if err := r.CreateIndex(ctx); err != nil {
		t.Fatalf("CreateIndex() error = %v", err)
	}
	for _, doc := range docs {
		if err := r.Index(ctx, doc); err != nil {
			t.Fatalf("Index() error = %v", err)
		}
	}
	if err := r.Refresh(ctx); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	t.Cleanup(func() { r.DeleteIndex(context.Background()) })
}

func TestIntegration_GetOwnership(t *testing.T) {
	r := newTestRepo(t, "docvault-test-get")
	ctx := context.Background()

	seed(t, r, []models.Document{
		{ID: "doc-1", Title: "Mine", OwnerID: "alice", CreatedAt: time.Now().UTC()},
	})

	doc, err := r.Get(ctx, "doc-1", "alice", false)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if doc.Title != "Mine" {
		t.Errorf("Title = %q", doc.Title)
	}

	// A foreign document reads as not found, same as a missing one.
	if _, err := r.Get(ctx, "doc-1", "bob", false); !errors.Is(err, ErrNotFound) {
		t.Errorf("foreign Get() error = %v, want ErrNotFound", err)
	}
	if _, err := r.Get(ctx, "missing", "alice", false); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing Get() error = %v, want ErrNotFound", err)
	}

	// Elevated requesters see everything.
	if _, err := r.Get(ctx, "doc-1", "bob", true); err != nil {
		t.Errorf("elevated Get() error = %v", err)
	}
}

func TestIntegration_RecentOrder(t *testing.T) {
	r := newTestRepo(t, "docvault-test-recent")
	ctx := context.Background()

	base := time.Now().UTC().Add(-time.Hour)
	seed(t, r, []models.Document{
		{ID: "old", OwnerID: "alice", CreatedAt: base},
		{ID: "mid", OwnerID: "alice", CreatedAt: base.Add(10 * time.Minute)},
		{ID: "new", OwnerID: "alice", CreatedAt: base.Add(20 * time.Minute)},
		{ID: "foreign", OwnerID: "bob", CreatedAt: base.Add(30 * time.Minute)},
	})

	docs, err := r.Recent(ctx, "alice", false, 2)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}

	if len(docs) != 2 {
		t.Fatalf("got %d docs, want 2", len(docs))
	}
	if docs[0].ID != "new" || docs[1].ID != "mid" {
		t.Errorf("order = [%s, %s], want [new, mid]", docs[0].ID, docs[1].ID)
	}
}

func TestIntegration_ByIDsExcludesForeign(t *testing.T) {
	r := newTestRepo(t, "docvault-test-byids")
	ctx := context.Background()

	seed(t, r, []models.Document{
		{ID: "mine", OwnerID: "alice", CreatedAt: time.Now().UTC()},
		{ID: "theirs", OwnerID: "bob", CreatedAt: time.Now().UTC()},
	})

	docs, err := r.ByIDs(ctx, []string{"mine", "theirs"}, "alice", false)
	if err != nil {
		t.Fatalf("ByIDs() error = %v", err)
	}
	if len(docs) != 1 || docs[0].ID != "mine" {
		t.Errorf("docs = %v, want only the owned one", docs)
	}

	// Only foreign ids: empty result, not an error.
	docs, err = r.ByIDs(ctx, []string{"theirs"}, "alice", false)
	if err != nil {
		t.Fatalf("ByIDs() error = %v", err)
	}
	if len(docs) != 0 {
		t.Errorf("got %d docs, want 0", len(docs))
	}
}

func TestIntegration_UpdateAndDelete(t *testing.T) {
	r := newTestRepo(t, "docvault-test-update")
	ctx := context.Background()

	seed(t, r, []models.Document{
		{ID: "doc-1", Title: "Old", OwnerID: "alice", CreatedAt: time.Now().UTC()},
	})

	title := "New"
	doc, err := r.Update(ctx, "doc-1", "alice", false, &title, nil, []string{"tag"})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if doc.Title != "New" {
		t.Errorf("Title = %q", doc.Title)
	}
	if doc.UpdatedAt.IsZero() {
		t.Error("UpdatedAt should be stamped")
	}

	if _, err := r.Update(ctx, "doc-1", "bob", false, &title, nil, nil); !errors.Is(err, ErrNotFound) {
		t.Errorf("foreign Update() error = %v, want ErrNotFound", err)
	}

	if _, err := r.Delete(ctx, "doc-1", "alice", false); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	r.Refresh(ctx)
	if _, err := r.Get(ctx, "doc-1", "alice", false); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() after delete error = %v, want ErrNotFound", err)
	}
}

package registry_test

import (
	"context"
	"errors"
	"testing"

	"github.com/escuriola/edaitorial/internal/model"
	"github.com/escuriola/edaitorial/internal/registry"
	"github.com/escuriola/edaitorial/internal/storage"
	"github.com/escuriola/edaitorial/internal/testutil"
)

func newRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	db, err := storage.Open(t.TempDir())
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	reg, err := registry.NewRegistry(db, &testutil.DummyLogger{})
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	return reg
}

func TestRegistry_UpsertAndGet(t *testing.T) {
	t.Parallel()
	reg := newRegistry(t)
	ctx := context.Background()

	n, err := reg.UpsertNode(ctx, model.Node{ID: "12", Title: " Pricing ", URL: "HTTPS://News.Example/node/12/#top", ContentType: "article"})
	if err != nil {
		t.Fatalf("UpsertNode: %v", err)
	}
	if n.Title != "Pricing" || n.URL != "https://news.example/node/12" {
		t.Errorf("unexpected normalized node %+v", n)
	}
	if n.CreatedAt == 0 || n.CreatedAt != n.UpdatedAt {
		t.Errorf("expected equal creation and update stamps, got %+v", n)
	}

	updated, err := reg.UpsertNode(ctx, model.Node{ID: "12", Title: "Pricing 2026"})
	if err != nil {
		t.Fatalf("UpsertNode update: %v", err)
	}
	if updated.Title != "Pricing 2026" || updated.CreatedAt != n.CreatedAt {
		t.Errorf("update should keep created_at, got %+v", updated)
	}
}

func TestRegistry_GeneratesIDAndValidates(t *testing.T) {
	t.Parallel()
	reg := newRegistry(t)
	ctx := context.Background()

	n, err := reg.UpsertNode(ctx, model.Node{Title: "Untitled draft"})
	if err != nil {
		t.Fatalf("UpsertNode: %v", err)
	}
	if len(n.ID) != 36 {
		t.Errorf("expected uuid id, got %q", n.ID)
	}
	if _, err := reg.UpsertNode(ctx, model.Node{ID: "x", Title: "  "}); !errors.Is(err, registry.ErrTitleEmpty) {
		t.Errorf("expected ErrTitleEmpty, got %v", err)
	}
	if _, err := reg.GetNode(ctx, "missing"); !errors.Is(err, registry.ErrNodeNotFound) {
		t.Errorf("expected ErrNodeNotFound, got %v", err)
	}
}

func TestRegistry_RecentNodes(t *testing.T) {
	t.Parallel()
	reg := newRegistry(t)
	ctx := context.Background()

	for _, id := range []string{"1", "2", "3", "4"} {
		if _, err := reg.UpsertNode(ctx, model.Node{ID: id, Title: "Node " + id}); err != nil {
			t.Fatalf("UpsertNode(%s): %v", id, err)
		}
	}

	all, err := reg.ListRecent(ctx, 0)
	if err != nil {
		t.Fatalf("ListRecent: %v", err)
	}
	if len(all) != 4 || all[0].ID != "4" {
		t.Fatalf("expected newest first, got %+v", all)
	}

	refs, err := reg.RecentNodes(ctx, 2, "4")
	if err != nil {
		t.Fatalf("RecentNodes: %v", err)
	}
	if len(refs) != 2 || refs[0].ID != "3" || refs[1].ID != "2" {
		t.Errorf("expected [3 2] excluding self, got %+v", refs)
	}
}

func TestRegistry_Delete(t *testing.T) {
	t.Parallel()
	reg := newRegistry(t)
	ctx := context.Background()

	if _, err := reg.UpsertNode(ctx, model.Node{ID: "d", Title: "Delete me"}); err != nil {
		t.Fatalf("UpsertNode: %v", err)
	}
	if err := reg.DeleteNode(ctx, "d"); err != nil {
		t.Fatalf("DeleteNode: %v", err)
	}
	if err := reg.DeleteNode(ctx, "d"); !errors.Is(err, registry.ErrNodeNotFound) {
		t.Errorf("expected ErrNodeNotFound on second delete, got %v", err)
	}
}

package pantry

import (
	"context"
	"testing"
	"time"

	"foodhive/internal/testutil"
)

func TestCatalogFollowsStore(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := testutil.NewStore(t)
	repo := NewRepository(store, nil)
	repo.Add(ctx, "u1", Product{Name: "Yogurt", ExpDate: "2025-06-11"})

	catalogs := NewCatalogs(ctx, repo, store)
	catalog, err := catalogs.For("u1")
	if err != nil {
		t.Fatalf("For failed: %v", err)
	}
	catalog.now = func() time.Time { return time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC) }

	if again, _ := catalogs.For("u1"); again != catalog {
		t.Error("Expected the same catalog instance per user")
	}
	if got := catalog.Snapshot(); len(got) != 1 {
		t.Fatalf("Expected initial load, got %+v", got)
	}

	changed := make(chan []Product, 4)
	catalog.OnChange(func(p []Product) { changed <- p })

	repo.Add(ctx, "u1", Product{Name: "Old cheese", ExpDate: "2025-06-01"})
	repo.Add(ctx, "u2", Product{Name: "Not mine", ExpDate: "2025-06-01"})

	deadline := time.After(2 * time.Second)
	for {
		select {
		case p := <-changed:
			if len(p) == 2 {
				if got := catalog.Expired(); len(got) != 1 || got[0].Name != "Old cheese" {
					t.Errorf("unexpected expired list: %+v", got)
				}
				if got := catalog.ExpiringSoon(); len(got) != 1 || got[0].Name != "Yogurt" {
					t.Errorf("unexpected expiring list: %+v", got)
				}
				return
			}
		case <-deadline:
			t.Fatalf("catalog never caught up, snapshot: %+v", catalog.Snapshot())
		}
	}
}

package memory

import (
	"context"
	"errors"
	"testing"

	"quiz-platform/internal/domain"
	"quiz-platform/internal/store"
)

func TestDocumentStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewDocumentStore()

	dirs, err := store.Load[domain.Direction](ctx, s, store.Directions)
	if err != nil {
		t.Fatalf("load empty: %v", err)
	}
	if len(dirs) != 0 {
		t.Fatalf("expected empty collection, got %d", len(dirs))
	}

	if err := store.Save(ctx, s, store.Directions, []domain.Direction{{ID: "d1", Name: "Backend"}}); err != nil {
		t.Fatalf("save: %v", err)
	}
	dirs, err = store.Load[domain.Direction](ctx, s, store.Directions)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(dirs) != 1 || dirs[0].Name != "Backend" {
		t.Fatalf("unexpected directions %+v", dirs)
	}
}

func TestDocumentStoreUpdateFailureKeepsSnapshot(t *testing.T) {
	ctx := context.Background()
	s := NewDocumentStore()
	_ = store.Save(ctx, s, store.Directions, []domain.Direction{{ID: "d1", Name: "Backend"}})

	boom := errors.New("boom")
	err := store.Update(ctx, s, store.Directions, func(items []domain.Direction) ([]domain.Direction, error) {
		return nil, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected callback error, got %v", err)
	}

	dirs, _ := store.Load[domain.Direction](ctx, s, store.Directions)
	if len(dirs) != 1 {
		t.Fatalf("expected snapshot untouched, got %+v", dirs)
	}
}

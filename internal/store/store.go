// Package store defines the whole-collection record store and typed helpers over it.
//
// Every collection is persisted as one JSON array snapshot. Readers load the full
// snapshot; writers replace it. Update runs a read-modify-write that backends execute
// atomically per collection.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"quiz-platform/internal/domain"
)

// Collection names one persisted dataset.
type Collection string

const (
	Accounts      Collection = "users"
	Directions    Collection = "directions"
	Tests         Collection = "tests"
	Results       Collection = "results"
	Verifications Collection = "verification_codes"
)

// All lists every collection the platform persists.
var All = []Collection{Accounts, Directions, Tests, Results, Verifications}

// Backend persists raw collection snapshots.
type Backend interface {
	// Read returns the snapshot, or nil when the collection has never been written.
	Read(ctx context.Context, c Collection) ([]byte, error)
	// Write replaces the snapshot.
	Write(ctx context.Context, c Collection, data []byte) error
	// Update replaces the snapshot with fn's output while excluding other updates of c.
	// If fn fails nothing is written and its error is returned unchanged.
	Update(ctx context.Context, c Collection, fn func(current []byte) ([]byte, error)) error
}

// Load reads a collection. Missing or corrupt snapshots yield an empty slice.
func Load[T any](ctx context.Context, b Backend, c Collection) ([]T, error) {
	raw, err := b.Read(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", domain.ErrStorage, c, err)
	}
	return decode[T](c, raw), nil
}

// Save replaces a collection.
func Save[T any](ctx context.Context, b Backend, c Collection, items []T) error {
	data, err := encode(items)
	if err != nil {
		return fmt.Errorf("%w: encode %s: %v", domain.ErrStorage, c, err)
	}
	if err := b.Write(ctx, c, data); err != nil {
		return fmt.Errorf("%w: write %s: %v", domain.ErrStorage, c, err)
	}
	return nil
}

// Update applies fn to the current items and persists the result atomically.
func Update[T any](ctx context.Context, b Backend, c Collection, fn func(items []T) ([]T, error)) error {
	var fnErr error
	err := b.Update(ctx, c, func(raw []byte) ([]byte, error) {
		next, err := fn(decode[T](c, raw))
		if err != nil {
			fnErr = err
			return nil, err
		}
		return encode(next)
	})
	if fnErr != nil {
		return fnErr
	}
	if err != nil {
		return fmt.Errorf("%w: update %s: %v", domain.ErrStorage, c, err)
	}
	return nil
}

func decode[T any](c Collection, raw []byte) []T {
	items := []T{}
	if len(raw) == 0 {
		return items
	}
	if err := json.Unmarshal(raw, &items); err != nil {
		log.Printf("store: %s snapshot is corrupt, treating as empty: %v", c, err)
		return []T{}
	}
	return items
}

func encode[T any](items []T) ([]byte, error) {
	if items == nil {
		items = []T{}
	}
	return json.MarshalIndent(items, "", "  ")
}

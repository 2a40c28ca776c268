// Package history keeps the per-user activity log.
package history

import (
	"context"
	"fmt"
	"sort"
	"time"

	"foodhive/internal/docstore"
)

const collection = "history"

// Entry types.
const (
	TypeProduct  = "product"
	TypeShopping = "shopping"
	TypeRecipe   = "recipe"
)

// Entry is a single logged action, such as "Added" on "Milk".
type Entry struct {
	ID        string `json:"id"`
	Action    string `json:"action"`
	Target    string `json:"target"`
	Type      string `json:"type"`
	Timestamp int64  `json:"timestamp"`
}

// Repository handles persistence of history entries.
type Repository struct {
	store docstore.Store
	now   func() time.Time
}

// NewRepository creates a new history repository.
func NewRepository(store docstore.Store) *Repository {
	return &Repository{store: store, now: time.Now}
}

// Record appends an entry. Callers treat history as best effort.
func (r *Repository) Record(ctx context.Context, userID, action, target, entryType string) error {
	_, err := r.store.Add(ctx, userID, collection, map[string]any{
		"action":    action,
		"target":    target,
		"type":      entryType,
		"timestamp": r.now().UnixMilli(),
	})
	if err != nil {
		return fmt.Errorf("failed to record history: %w", err)
	}
	return nil
}

// List returns the entries newest first.
func (r *Repository) List(ctx context.Context, userID string) ([]Entry, error) {
	docs, err := r.store.List(ctx, userID, collection)
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}

	entries := make([]Entry, 0, len(docs))
	for _, d := range docs {
		entries = append(entries, Entry{
			ID:        d.ID,
			Action:    docstore.String(d.Data, "action", ""),
			Target:    docstore.String(d.Data, "target", ""),
			Type:      docstore.String(d.Data, "type", ""),
			Timestamp: docstore.Int64(d.Data, "timestamp", 0),
		})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Timestamp > entries[j].Timestamp
	})
	return entries, nil
}

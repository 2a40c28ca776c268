// Package docstore keeps schema-less per-user documents organised in nested
// collections such as "products" or "chats/{id}/messages".
package docstore

import (
	"context"
	"errors"
	"strings"
	"time"
)

// ErrNotFound is returned when a document does not exist.
var ErrNotFound = errors.New("document not found")

// Document is a single stored document.
type Document struct {
	ID        string
	Data      map[string]any
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Store is implemented by every document backend.
type Store interface {
	Get(ctx context.Context, userID, collection, id string) (Document, error)
	// Set creates or fully replaces a document.
	Set(ctx context.Context, userID, collection, id string, data map[string]any) error
	// Add stores a document under a generated id and returns it.
	Add(ctx context.Context, userID, collection string, data map[string]any) (string, error)
	// Update merges fields into an existing document.
	Update(ctx context.Context, userID, collection, id string, fields map[string]any) error
	Delete(ctx context.Context, userID, collection, id string) error
	// List returns the documents of a collection in insertion order.
	List(ctx context.Context, userID, collection string) ([]Document, error)
	// DeleteCollection removes a collection and every collection nested under it.
	DeleteCollection(ctx context.Context, userID, collection string) error
	// Users returns every user id that owns at least one document.
	Users(ctx context.Context) ([]string, error)
}

// Path joins collection and document segments into a collection path.
func Path(segments ...string) string {
	return strings.Join(segments, "/")
}

func isNested(collection, parent string) bool {
	return collection == parent || strings.HasPrefix(collection, parent+"/")
}

package shopping

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"foodhive/internal/category"
	"foodhive/internal/docstore"
	"foodhive/internal/history"
)

const collection = "shoppingList"

// ErrNotFound is returned when a shopping item does not exist.
var ErrNotFound = errors.New("shopping item not found")

// Repository handles persistence of shopping lists.
type Repository struct {
	store   docstore.Store
	history *history.Repository
}

// NewRepository creates a new shopping list repository. hist may be nil.
func NewRepository(store docstore.Store, hist *history.Repository) *Repository {
	return &Repository{store: store, history: hist}
}

// List returns every item of the user's list.
func (r *Repository) List(ctx context.Context, userID string) ([]Item, error) {
	docs, err := r.store.List(ctx, userID, collection)
	if err != nil {
		return nil, fmt.Errorf("failed to list shopping items: %w", err)
	}
	items := make([]Item, 0, len(docs))
	for _, d := range docs {
		items = append(items, itemFromDoc(d))
	}
	return items, nil
}

// Add appends an item. An empty category is guessed from the name.
func (r *Repository) Add(ctx context.Context, userID string, item Item) (*Item, error) {
	item.Name = strings.TrimSpace(item.Name)
	if item.Name == "" {
		return nil, fmt.Errorf("shopping item name is empty")
	}
	if item.Quantity <= 0 {
		item.Quantity = 1
	}
	if item.Category == "" {
		item.Category = category.ForShoppingItem(item.Name)
	}

	id, err := r.store.Add(ctx, userID, collection, item.toDoc())
	if err != nil {
		return nil, fmt.Errorf("failed to add shopping item: %w", err)
	}
	item.ID = id

	if r.history != nil {
		if err := r.history.Record(ctx, userID, "Added to shopping list", item.Name, history.TypeShopping); err != nil {
			log.Printf("Warning: %v", err)
		}
	}
	return &item, nil
}

// Update overwrites the fields of an existing item.
func (r *Repository) Update(ctx context.Context, userID string, item Item) error {
	if item.Category == "" {
		item.Category = category.ForShoppingItem(item.Name)
	}
	err := r.store.Update(ctx, userID, collection, item.ID, item.toDoc())
	if errors.Is(err, docstore.ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to update shopping item: %w", err)
	}
	return nil
}

// ToggleBought flips the bought flag and returns the updated item.
func (r *Repository) ToggleBought(ctx context.Context, userID, id string) (*Item, error) {
	d, err := r.store.Get(ctx, userID, collection, id)
	if errors.Is(err, docstore.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get shopping item: %w", err)
	}

	item := itemFromDoc(d)
	item.Bought = !item.Bought
	if err := r.store.Update(ctx, userID, collection, id, map[string]any{"bought": item.Bought}); err != nil {
		return nil, fmt.Errorf("failed to toggle shopping item: %w", err)
	}
	return &item, nil
}

// Delete removes an item.
func (r *Repository) Delete(ctx context.Context, userID, id string) error {
	if err := r.store.Delete(ctx, userID, collection, id); err != nil {
		return fmt.Errorf("failed to delete shopping item: %w", err)
	}
	return nil
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// MissingIngredients returns the ingredients that are not already waiting on
// the list. Bought items do not count as present.
func (r *Repository) MissingIngredients(ctx context.Context, userID string, ingredients []string) ([]string, error) {
	items, err := r.List(ctx, userID)
	if err != nil {
		return nil, err
	}

	present := make(map[string]bool, len(items))
	for _, it := range items {
		if !it.Bought {
			present[normalize(it.Name)] = true
		}
	}

	var missing []string
	for _, ing := range ingredients {
		key := normalize(ing)
		if key == "" || present[key] {
			continue
		}
		present[key] = true
		missing = append(missing, strings.TrimSpace(ing))
	}
	return missing, nil
}

// AddMissing adds every missing ingredient with quantity 1 and returns the
// names that were added.
func (r *Repository) AddMissing(ctx context.Context, userID string, ingredients []string) ([]string, error) {
	missing, err := r.MissingIngredients(ctx, userID, ingredients)
	if err != nil {
		return nil, err
	}
	for _, name := range missing {
		if _, err := r.Add(ctx, userID, Item{Name: name, Quantity: 1}); err != nil {
			return nil, err
		}
	}
	return missing, nil
}

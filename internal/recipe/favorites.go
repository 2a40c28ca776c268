package recipe

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strconv"
	"time"

	"foodhive/internal/docstore"
	"foodhive/internal/history"
)

const favoritesCollection = "favorites"

// ErrFavoriteNotFound is returned when a favourite does not exist.
var ErrFavoriteNotFound = errors.New("favorite not found")

// Favorite is a saved snapshot of a recipe.
type Favorite struct {
	Recipe
	Timestamp int64 `json:"timestamp"`
}

// Favorites handles persistence of favourite recipes. The document id is the
// recipe id, so saving the same recipe twice keeps one copy.
type Favorites struct {
	store   docstore.Store
	history *history.Repository
	now     func() time.Time
}

// NewFavorites creates a favourites repository. hist may be nil.
func NewFavorites(store docstore.Store, hist *history.Repository) *Favorites {
	return &Favorites{store: store, history: hist, now: time.Now}
}

// Save stores a snapshot of r.
func (f *Favorites) Save(ctx context.Context, userID string, r Recipe) error {
	data := r.Fields()
	data["timestamp"] = f.now().UnixMilli()
	if err := f.store.Set(ctx, userID, favoritesCollection, strconv.Itoa(r.ID), data); err != nil {
		return fmt.Errorf("failed to save favorite: %w", err)
	}
	if f.history != nil {
		if err := f.history.Record(ctx, userID, "Added to favorites", r.Title, history.TypeRecipe); err != nil {
			log.Printf("Warning: %v", err)
		}
	}
	return nil
}

// Get returns one favourite.
func (f *Favorites) Get(ctx context.Context, userID string, id int) (*Favorite, error) {
	d, err := f.store.Get(ctx, userID, favoritesCollection, strconv.Itoa(id))
	if errors.Is(err, docstore.ErrNotFound) {
		return nil, ErrFavoriteNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get favorite: %w", err)
	}
	fav := favoriteFromDoc(d)
	return &fav, nil
}

// List returns the favourites, most recently saved first.
func (f *Favorites) List(ctx context.Context, userID string) ([]Favorite, error) {
	docs, err := f.store.List(ctx, userID, favoritesCollection)
	if err != nil {
		return nil, fmt.Errorf("failed to list favorites: %w", err)
	}
	favs := make([]Favorite, 0, len(docs))
	for _, d := range docs {
		favs = append(favs, favoriteFromDoc(d))
	}
	sort.SliceStable(favs, func(i, j int) bool {
		return favs[i].Timestamp > favs[j].Timestamp
	})
	return favs, nil
}

// Remove deletes a favourite.
func (f *Favorites) Remove(ctx context.Context, userID string, id int) error {
	if _, err := f.Get(ctx, userID, id); err != nil {
		return err
	}
	if err := f.store.Delete(ctx, userID, favoritesCollection, strconv.Itoa(id)); err != nil {
		return fmt.Errorf("failed to remove favorite: %w", err)
	}
	return nil
}

func favoriteFromDoc(d docstore.Document) Favorite {
	r := FromFields(d.Data)
	if r.ID == 0 {
		r.ID, _ = strconv.Atoi(d.ID)
	}
	return Favorite{Recipe: r, Timestamp: docstore.Int64(d.Data, "timestamp", 0)}
}

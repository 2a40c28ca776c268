// Package recipe finds recipes through the Spoonacular API and keeps the
// user's favourites.
package recipe

import (
	"foodhive/internal/docstore"
)

// Recipe is a recipe as shown to the user. It is fetched from the recipe API
// and is not authoritative; stored copies are snapshots.
type Recipe struct {
	ID           int      `json:"id"`
	Title        string   `json:"title"`
	Image        string   `json:"image"`
	Ingredients  []string `json:"ingredients"`
	Instructions string   `json:"instructions"`
	SourceURL    string   `json:"sourceUrl"`
}

// Fields returns the document representation of r.
func (r Recipe) Fields() map[string]any {
	ingredients := r.Ingredients
	if ingredients == nil {
		ingredients = []string{}
	}
	return map[string]any{
		"id":           r.ID,
		"title":        r.Title,
		"image":        r.Image,
		"ingredients":  ingredients,
		"instructions": r.Instructions,
		"sourceUrl":    r.SourceURL,
	}
}

// FromFields reads a recipe back from a document.
func FromFields(data map[string]any) Recipe {
	return Recipe{
		ID:           docstore.Int(data, "id", 0),
		Title:        docstore.String(data, "title", "Untitled"),
		Image:        docstore.String(data, "image", ""),
		Ingredients:  docstore.Strings(data, "ingredients"),
		Instructions: docstore.String(data, "instructions", ""),
		SourceURL:    docstore.String(data, "sourceUrl", ""),
	}
}

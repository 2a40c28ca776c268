package shopping

import (
	"foodhive/internal/docstore"
)

// Item is an entry of a user's shopping list.
type Item struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Bought   bool   `json:"bought"`
	Category string `json:"category"`
}

func (i Item) toDoc() map[string]any {
	return map[string]any{
		"name":     i.Name,
		"quantity": i.Quantity,
		"bought":   i.Bought,
		"category": i.Category,
	}
}

func itemFromDoc(d docstore.Document) Item {
	return Item{
		ID:       d.ID,
		Name:     docstore.String(d.Data, "name", ""),
		Quantity: docstore.Int(d.Data, "quantity", 1),
		Bought:   docstore.Bool(d.Data, "bought", false),
		Category: docstore.String(d.Data, "category", "Other"),
	}
}

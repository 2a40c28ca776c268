// Package pantry tracks the food items a user owns and classifies them by
// expiration date.
package pantry

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"foodhive/internal/docstore"
	"foodhive/internal/history"
)

// DateLayout is the format of AddDate and ExpDate.
const DateLayout = "2006-01-02"

const collection = "products"

// Source records how a product was captured.
type Source string

const (
	SourceBarcode Source = "barcode"
	SourceOCR     Source = "ocr"
	SourceImage   Source = "image"
	SourceManual  Source = "manual"
)

// Product is a food item in a user's pantry.
type Product struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
	AddDate  string `json:"addDate"`
	ExpDate  string `json:"expDate"`
	Quantity int    `json:"quantity"`
	Weight   string `json:"weight"`
	Note     string `json:"note,omitempty"`
	Source   Source `json:"source"`
}

// ErrNotFound is returned when a product does not exist.
var ErrNotFound = errors.New("product not found")

func (p Product) toDoc() map[string]any {
	return map[string]any{
		"name":     p.Name,
		"category": p.Category,
		"addDate":  p.AddDate,
		"expDate":  p.ExpDate,
		"quantity": p.Quantity,
		"weight":   p.Weight,
		"note":     p.Note,
		"source":   string(p.Source),
	}
}

func productFromDoc(d docstore.Document) Product {
	return Product{
		ID:       d.ID,
		Name:     docstore.String(d.Data, "name", "Unnamed"),
		Category: docstore.String(d.Data, "category", "Uncategorized"),
		AddDate:  docstore.String(d.Data, "addDate", ""),
		ExpDate:  docstore.String(d.Data, "expDate", ""),
		Quantity: docstore.Int(d.Data, "quantity", 1),
		Weight:   docstore.String(d.Data, "weight", ""),
		Note:     docstore.String(d.Data, "note", ""),
		Source:   Source(docstore.String(d.Data, "source", string(SourceManual))),
	}
}

// Repository handles persistence of products.
type Repository struct {
	store   docstore.Store
	history *history.Repository
	now     func() time.Time
}

// NewRepository creates a product repository. hist may be nil.
func NewRepository(store docstore.Store, hist *history.Repository) *Repository {
	return &Repository{store: store, history: hist, now: time.Now}
}

// List returns all products of a user.
func (r *Repository) List(ctx context.Context, userID string) ([]Product, error) {
	docs, err := r.store.List(ctx, userID, collection)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	products := make([]Product, 0, len(docs))
	for _, d := range docs {
		products = append(products, productFromDoc(d))
	}
	return products, nil
}

// Get returns a single product.
func (r *Repository) Get(ctx context.Context, userID, id string) (*Product, error) {
	d, err := r.store.Get(ctx, userID, collection, id)
	if errors.Is(err, docstore.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	p := productFromDoc(d)
	return &p, nil
}

// Add stores a new product. AddDate defaults to today, Quantity to 1 and
// Source to manual.
func (r *Repository) Add(ctx context.Context, userID string, p Product) (*Product, error) {
	if p.AddDate == "" {
		p.AddDate = r.now().Format(DateLayout)
	}
	if p.Quantity <= 0 {
		p.Quantity = 1
	}
	if p.Source == "" {
		p.Source = SourceManual
	}

	id, err := r.store.Add(ctx, userID, collection, p.toDoc())
	if err != nil {
		return nil, fmt.Errorf("failed to add product: %w", err)
	}
	p.ID = id
	r.record(ctx, userID, "Added", p.Name)
	return &p, nil
}

// Update replaces the editable fields of an existing product and returns the
// stored result. An empty AddDate or Source keeps the stored value, and a
// Quantity below 1 becomes 1.
func (r *Repository) Update(ctx context.Context, userID string, p Product) (*Product, error) {
	current, err := r.Get(ctx, userID, p.ID)
	if err != nil {
		return nil, err
	}
	if p.AddDate == "" {
		p.AddDate = current.AddDate
	}
	if p.Source == "" {
		p.Source = current.Source
	}
	if p.Quantity <= 0 {
		p.Quantity = 1
	}

	err = r.store.Update(ctx, userID, collection, p.ID, p.toDoc())
	if errors.Is(err, docstore.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	r.record(ctx, userID, "Updated", p.Name)
	return &p, nil
}

// Delete removes a product. Deleting a missing product is not an error.
func (r *Repository) Delete(ctx context.Context, userID, id string) error {
	name := ""
	if p, err := r.Get(ctx, userID, id); err == nil {
		name = p.Name
	}
	if err := r.store.Delete(ctx, userID, collection, id); err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if name != "" {
		r.record(ctx, userID, "Deleted", name)
	}
	return nil
}

func (r *Repository) record(ctx context.Context, userID, action, target string) {
	if r.history == nil {
		return
	}
	if err := r.history.Record(ctx, userID, action, target, history.TypeProduct); err != nil {
		log.Printf("Warning: %v", err)
	}
}

// Package capture turns barcodes, photos and label text into product drafts.
package capture

import (
	"errors"
	"strings"
	"unicode"
	"unicode/utf8"

	"foodhive/internal/pantry"
)

// ErrProductNotFound is returned when a barcode is unknown.
var ErrProductNotFound = errors.New("product not found")

// Draft is a partially filled product coming from one capture path.
type Draft struct {
	Name     string        `json:"name"`
	Category string        `json:"category"`
	Quantity int           `json:"quantity"`
	Weight   string        `json:"weight"`
	ExpDate  string        `json:"expDate"`
	Note     string        `json:"note"`
	Source   pantry.Source `json:"source"`
}

// Apply overlays the non-empty fields of next onto d. Later captures win.
func (d Draft) Apply(next Draft) Draft {
	if next.Name != "" {
		d.Name = next.Name
	}
	if next.Category != "" {
		d.Category = next.Category
	}
	if next.Quantity > 0 {
		d.Quantity = next.Quantity
	}
	if next.Weight != "" {
		d.Weight = next.Weight
	}
	if next.ExpDate != "" {
		d.ExpDate = next.ExpDate
	}
	if next.Note != "" {
		d.Note = next.Note
	}
	if next.Source != "" {
		d.Source = next.Source
	}
	return d
}

// Product converts the draft into a product ready to be stored.
func (d Draft) Product() pantry.Product {
	return pantry.Product{
		Name:     d.Name,
		Category: d.Category,
		Quantity: d.Quantity,
		Weight:   d.Weight,
		ExpDate:  d.ExpDate,
		Note:     d.Note,
		Source:   d.Source,
	}
}

func capitalize(s string) string {
	s = strings.TrimSpace(s)
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

package pantry

import (
	"sort"
	"strings"
	"time"

	"github.com/sahilm/fuzzy"
)

// CategoryCount is the number of products in one category.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// Summary is the dashboard view of a pantry.
type Summary struct {
	Total        int             `json:"total"`
	Expired      int             `json:"expired"`
	ExpiringSoon int             `json:"expiringSoon"`
	Remainder    int             `json:"remainder"`
	Categories   []CategoryCount `json:"categories"`
}

// Summarize counts products per bucket and per category. Categories are
// sorted by count, largest first, then by name.
func Summarize(today time.Time, products []Product) Summary {
	b := Classify(today, products)
	s := Summary{
		Total:        len(products),
		Expired:      len(b.Expired),
		ExpiringSoon: len(b.ExpiringSoon),
	}
	s.Remainder = s.Total - s.Expired - s.ExpiringSoon

	counts := map[string]int{}
	for _, p := range products {
		counts[p.Category]++
	}
	for c, n := range counts {
		s.Categories = append(s.Categories, CategoryCount{Category: c, Count: n})
	}
	sort.Slice(s.Categories, func(i, j int) bool {
		if s.Categories[i].Count != s.Categories[j].Count {
			return s.Categories[i].Count > s.Categories[j].Count
		}
		return s.Categories[i].Category < s.Categories[j].Category
	})
	return s
}

type productNames []Product

func (p productNames) String(i int) string { return p[i].Name }
func (p productNames) Len() int            { return len(p) }

// Search returns products whose names fuzzily match query, best match first.
// A blank query returns every product.
func Search(products []Product, query string) []Product {
	query = strings.TrimSpace(query)
	if query == "" {
		return products
	}
	matches := fuzzy.FindFrom(query, productNames(products))
	out := make([]Product, 0, len(matches))
	for _, m := range matches {
		out = append(out, products[m.Index])
	}
	return out
}

// Filter returns the products in category, ignoring case.
func Filter(products []Product, category string) []Product {
	if category == "" {
		return products
	}
	var out []Product
	for _, p := range products {
		if strings.EqualFold(p.Category, category) {
			out = append(out, p)
		}
	}
	return out
}

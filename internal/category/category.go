// Package category maps free text onto the fixed set of app categories.
package category

import "strings"

const (
	Meat       = "Meat"
	Fruits     = "Fruits"
	Vegetables = "Vegetables"
	Snacks     = "Snacks"
	Drinks     = "Drinks"
	Bakery     = "Bakery"
	Dairy      = "Dairy"
	Other      = "Other"
)

// All lists the app categories in display order.
var All = []string{Meat, Fruits, Vegetables, Snacks, Drinks, Bakery, Dairy, Other}

type rule struct {
	category string
	keywords []string
}

// Order matters: the first rule with a matching keyword wins.
var productRules = []rule{
	{Meat, []string{"meat"}},
	{Fruits, []string{"fruit"}},
	{Vegetables, []string{"vegetable", "legume"}},
	{Snacks, []string{"snack", "chips"}},
	{Drinks, []string{"drink", "soda", "beverage", "boisson", "juice", "beer"}},
	{Bakery, []string{"bread", "bakery", "pastry"}},
	{Dairy, []string{"dairy", "milk", "cheese", "yogurt"}},
}

var shoppingRules = []rule{
	{Dairy, []string{"milk", "cheese", "yogurt", "butter"}},
	{Fruits, []string{"apple", "banana", "orange", "berries", "grapes"}},
	{Vegetables, []string{"carrot", "tomato", "lettuce", "potato", "onion"}},
	{Bakery, []string{"bread", "croissant", "brioche", "bun"}},
	{Drinks, []string{"soda", "cola", "juice", "water"}},
	{Snacks, []string{"chips", "chocolate", "cookie", "candy"}},
}

func match(rules []rule, text string) string {
	text = strings.ToLower(strings.TrimSpace(text))
	if text == "" {
		return Other
	}
	for _, r := range rules {
		for _, kw := range r.keywords {
			if strings.Contains(text, kw) {
				return r.category
			}
		}
	}
	return Other
}

// MapToAppCategory maps an external category string (barcode database tag,
// vision label) to an app category.
func MapToAppCategory(raw string) string {
	return match(productRules, raw)
}

// ForShoppingItem guesses the category of a shopping list entry by name.
func ForShoppingItem(name string) string {
	return match(shoppingRules, name)
}

// Canonical returns the app category matching c, ignoring case.
func Canonical(c string) (string, bool) {
	for _, known := range All {
		if strings.EqualFold(known, strings.TrimSpace(c)) {
			return known, true
		}
	}
	return "", false
}

// Valid reports whether c is one of the app categories.
func Valid(c string) bool {
	_, ok := Canonical(c)
	return ok
}

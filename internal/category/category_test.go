package category

import "testing"

func TestMapToAppCategory(t *testing.T) {
	cases := map[string]string{
		"whole milk":             Dairy,
		"xyz":                    Other,
		"":                       Other,
		"  Fresh-Meats ":         Meat,
		"en:fruits":              Fruits,
		"legumes":                Vegetables,
		"potato chips":           Snacks,
		"Boissons":               Drinks,
		"orange juice":           Drinks,
		"breads":                 Bakery,
		"cheese pastry":          Bakery,
		"Greek Yogurt":           Dairy,
		"fruit-based beverages":  Fruits,
		"plant-based-foods":      Other,
		"beer-and-meat-snacks":   Meat,
		"vegetable-based-snacks": Vegetables,
	}
	for input, want := range cases {
		t.Run(input, func(t *testing.T) {
			if got := MapToAppCategory(input); got != want {
				t.Errorf("MapToAppCategory(%q) = %q, want %q", input, got, want)
			}
		})
	}
}

func TestForShoppingItem(t *testing.T) {
	cases := map[string]string{
		"Butter":          Dairy,
		"green apples":    Fruits,
		"Cherry tomatoes": Vegetables,
		"brioche":         Bakery,
		"Sparkling Water": Drinks,
		"dark chocolate":  Snacks,
		"rice":            Other,
	}
	for input, want := range cases {
		if got := ForShoppingItem(input); got != want {
			t.Errorf("ForShoppingItem(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestValid(t *testing.T) {
	if !Valid("dairy") || !Valid("Other") {
		t.Error("known categories should be valid regardless of case")
	}
	if Valid("Uncategorized") {
		t.Error("Uncategorized is a display fallback, not a category")
	}
}

func TestCanonical(t *testing.T) {
	if got, ok := Canonical(" dairy "); !ok || got != Dairy {
		t.Errorf("Canonical(dairy) = %q, %v", got, ok)
	}
	if _, ok := Canonical("Sweets"); ok {
		t.Error("Sweets is not an app category")
	}
}

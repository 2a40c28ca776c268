package pantry

import (
	"strings"
	"testing"
	"time"
)

var sample = []Product{
	{ID: "1", Name: "Milk", Category: "Dairy", ExpDate: "2025-06-09", Quantity: 1},
	{ID: "2", Name: "Almond milk", Category: "Drinks", ExpDate: "2025-06-12", Quantity: 2},
	{ID: "3", Name: "Cheddar", Category: "Dairy", ExpDate: "2025-07-01", Quantity: 1},
	{ID: "4", Name: "Bread", Category: "Bakery", ExpDate: "bad", Quantity: 1},
}

func TestSummarize(t *testing.T) {
	today := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	s := Summarize(today, sample)

	if s.Total != 4 || s.Expired != 1 || s.ExpiringSoon != 1 || s.Remainder != 2 {
		t.Errorf("unexpected counts: %+v", s)
	}
	if len(s.Categories) != 3 {
		t.Fatalf("Expected 3 categories, got %+v", s.Categories)
	}
	if s.Categories[0] != (CategoryCount{"Dairy", 2}) {
		t.Errorf("Expected Dairy first, got %+v", s.Categories[0])
	}
	if s.Categories[1].Category != "Bakery" || s.Categories[2].Category != "Drinks" {
		t.Errorf("Expected ties sorted by name, got %+v", s.Categories)
	}
}

func TestSearch(t *testing.T) {
	got := Search(sample, "mlk")
	if len(got) != 2 {
		t.Fatalf("Expected both milks, got %+v", got)
	}
	for _, p := range got {
		if !strings.Contains(strings.ToLower(p.Name), "milk") {
			t.Errorf("unexpected match %q", p.Name)
		}
	}
	if len(Search(sample, "  ")) != len(sample) {
		t.Error("blank query should return everything")
	}
	if len(Search(sample, "zzz")) != 0 {
		t.Error("Expected no matches")
	}
}

func TestFilter(t *testing.T) {
	if got := Filter(sample, "dairy"); len(got) != 2 {
		t.Errorf("Expected 2 dairy products, got %+v", got)
	}
	if got := Filter(sample, ""); len(got) != 4 {
		t.Errorf("empty category should not filter, got %d", len(got))
	}
}

func TestCalendar(t *testing.T) {
	now := time.Date(2025, 6, 10, 8, 0, 0, 0, time.UTC)
	out := Calendar(sample, now)

	if !strings.Contains(out, "BEGIN:VCALENDAR") {
		t.Fatal("missing calendar header")
	}
	if got := strings.Count(out, "BEGIN:VEVENT"); got != 3 {
		t.Errorf("Expected 3 events (bad date skipped), got %d", got)
	}
	if !strings.Contains(out, "Milk expires") {
		t.Error("missing event summary")
	}
	if !strings.Contains(out, "20250609") {
		t.Error("missing all-day start date")
	}
	if !strings.Contains(out, "1@foodhive") {
		t.Error("missing event uid")
	}
}

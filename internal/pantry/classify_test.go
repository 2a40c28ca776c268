package pantry

import (
	"testing"
	"time"
)

func TestDayClassification(t *testing.T) {
	today := time.Date(2025, 6, 10, 18, 30, 0, 0, time.UTC)

	tests := []struct {
		exp          string
		wantExpired  bool
		wantExpiring bool
		wantLevel    Level
	}{
		{"2025-06-09", true, false, LevelRed},
		{"2024-12-31", true, false, LevelRed},
		{"2025-06-10", false, true, LevelRed},
		{"2025-06-13", false, true, LevelRed},
		{"2025-06-14", false, false, LevelYellow},
		{"2025-06-20", false, false, LevelYellow},
		{"2025-06-21", false, false, LevelGreen},
		{"", false, false, LevelUnknown},
		{"10/06/2025", false, false, LevelGray},
		{"2025-13-01", false, false, LevelGray},
	}

	for _, tt := range tests {
		t.Run(tt.exp, func(t *testing.T) {
			if got := IsExpired(today, tt.exp); got != tt.wantExpired {
				t.Errorf("IsExpired = %v, want %v", got, tt.wantExpired)
			}
			if got := IsExpiringSoon(today, tt.exp); got != tt.wantExpiring {
				t.Errorf("IsExpiringSoon = %v, want %v", got, tt.wantExpiring)
			}
			if got := ExpirationLevel(today, tt.exp); got != tt.wantLevel {
				t.Errorf("ExpirationLevel = %v, want %v", got, tt.wantLevel)
			}
		})
	}
}

// For every offset around today, a date is expired, expiring soon or neither,
// never both.
func TestClassificationBoundariesHold(t *testing.T) {
	today := time.Date(2025, 1, 1, 0, 0, 1, 0, time.UTC)
	for offset := -40; offset <= 40; offset++ {
		exp := today.AddDate(0, 0, offset).Format(DateLayout)
		expired := IsExpired(today, exp)
		soon := IsExpiringSoon(today, exp)

		if expired != (offset < 0) {
			t.Errorf("offset %d: expired = %v", offset, expired)
		}
		if soon != (offset >= 0 && offset <= 3) {
			t.Errorf("offset %d: expiring soon = %v", offset, soon)
		}
		if expired && soon {
			t.Errorf("offset %d: classified in both buckets", offset)
		}
	}
}

func TestClassify(t *testing.T) {
	today := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)
	products := []Product{
		{Name: "Old milk", ExpDate: "2025-06-01"},
		{Name: "Yogurt", ExpDate: "2025-06-11"},
		{Name: "Rice", ExpDate: "2026-01-01"},
		{Name: "Mystery", ExpDate: "soon"},
		{Name: "No date"},
	}

	b := Classify(today, products)
	if len(b.Expired) != 1 || b.Expired[0].Name != "Old milk" {
		t.Errorf("unexpected expired bucket: %+v", b.Expired)
	}
	if len(b.ExpiringSoon) != 1 || b.ExpiringSoon[0].Name != "Yogurt" {
		t.Errorf("unexpected expiring bucket: %+v", b.ExpiringSoon)
	}
	if len(b.Remainder) != 3 {
		t.Errorf("Expected malformed and distant dates in remainder, got %+v", b.Remainder)
	}
}

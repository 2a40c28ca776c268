package pantry

import (
	"strings"
	"time"
)

// ExpiringSoonDays is the inclusive upper bound of the expiring-soon window.
const ExpiringSoonDays = 3

// Level is the colour code shown next to a product.
type Level string

const (
	LevelRed     Level = "red"
	LevelYellow  Level = "yellow"
	LevelGreen   Level = "green"
	LevelUnknown Level = "unknown"
	LevelGray    Level = "gray"
)

// Buckets is the result of Classify. The buckets are disjoint for
// well-formed dates; malformed dates always land in Remainder.
type Buckets struct {
	Expired      []Product
	ExpiringSoon []Product
	Remainder    []Product
}

// ParseDate parses a stored date as a calendar day in UTC.
func ParseDate(s string) (time.Time, bool) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func dayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DaysUntil returns the calendar-day difference between today and exp.
func DaysUntil(today time.Time, exp string) (int, bool) {
	d, ok := ParseDate(exp)
	if !ok {
		return 0, false
	}
	return int(d.Sub(dayOf(today)).Hours() / 24), true
}

// IsExpired reports whether exp is before today. Malformed dates are never
// expired.
func IsExpired(today time.Time, exp string) bool {
	days, ok := DaysUntil(today, exp)
	return ok && days < 0
}

// IsExpiringSoon reports whether exp is between today and three days from
// now, inclusive.
func IsExpiringSoon(today time.Time, exp string) bool {
	days, ok := DaysUntil(today, exp)
	return ok && days >= 0 && days <= ExpiringSoonDays
}

// Classify splits products into expired, expiring-soon and the rest.
func Classify(today time.Time, products []Product) Buckets {
	var b Buckets
	for _, p := range products {
		switch {
		case IsExpired(today, p.ExpDate):
			b.Expired = append(b.Expired, p)
		case IsExpiringSoon(today, p.ExpDate):
			b.ExpiringSoon = append(b.ExpiringSoon, p)
		default:
			b.Remainder = append(b.Remainder, p)
		}
	}
	return b
}

// ExpirationLevel colour-codes how close exp is.
func ExpirationLevel(today time.Time, exp string) Level {
	if strings.TrimSpace(exp) == "" {
		return LevelUnknown
	}
	days, ok := DaysUntil(today, exp)
	switch {
	case !ok:
		return LevelGray
	case days <= 3:
		return LevelRed
	case days <= 10:
		return LevelYellow
	default:
		return LevelGreen
	}
}

package capture

import (
	"regexp"
	"strconv"
	"strings"

	"foodhive/internal/pantry"
)

var (
	digitsPattern  = regexp.MustCompile(`\d+`)
	isoDatePattern = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)
)

// ParseText extracts a draft from label text: the first word is the name,
// the first number the quantity, then the first weight and ISO date.
func ParseText(text string) Draft {
	d := Draft{Quantity: 1, Source: pantry.SourceOCR}

	if fields := strings.Fields(text); len(fields) > 0 {
		d.Name = capitalize(fields[0])
	}
	if m := digitsPattern.FindString(text); m != "" {
		if n, err := strconv.Atoi(m); err == nil && n > 0 {
			d.Quantity = n
		}
	}
	d.Weight = NormalizeWeight(text)
	d.ExpDate = isoDatePattern.FindString(text)
	return d
}

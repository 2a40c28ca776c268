package capture

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var weightPattern = regexp.MustCompile(`(?i)(\d+(?:[.,]\d+)?)(\s*)(g|kg|ml|l)`)

// NormalizeWeight returns the first weight or volume found in text, trimmed
// and lowercased, or "" when there is none.
//
//	NormalizeWeight("Net Wt 250 G") == "250 g"
func NormalizeWeight(text string) string {
	m := weightPattern.FindString(text)
	return strings.ToLower(strings.TrimSpace(m))
}

// Display units accepted by FormatWeight.
const (
	UnitAuto = "auto"
	UnitG    = "g"
	UnitKg   = "kg"
	UnitMl   = "ml"
	UnitL    = "l"
)

// FormatWeight renders weight in the requested unit. In auto mode grams and
// millilitres switch to kg and L from 1000 up. Text without a recognisable
// weight is returned unchanged.
func FormatWeight(weight, unit string) string {
	m := weightPattern.FindStringSubmatch(weight)
	if m == nil {
		return weight
	}
	value, err := strconv.ParseFloat(strings.Replace(m[1], ",", ".", 1), 64)
	if err != nil {
		return weight
	}

	switch strings.ToLower(m[3]) {
	case "g":
		if unit == UnitKg || (unit == UnitAuto && value >= 1000) {
			return fmt.Sprintf("%.1f kg", value/1000)
		}
		return fmt.Sprintf("%d g", int(value))
	case "kg":
		if unit == UnitG {
			return fmt.Sprintf("%d g", int(math.Round(value*1000)))
		}
		return fmt.Sprintf("%.1f kg", value)
	case "ml":
		if unit == UnitL || (unit == UnitAuto && value >= 1000) {
			return fmt.Sprintf("%.1f L", value/1000)
		}
		return fmt.Sprintf("%d ml", int(value))
	case "l":
		if unit == UnitMl {
			return fmt.Sprintf("%d ml", int(math.Round(value*1000)))
		}
		return fmt.Sprintf("%.1f L", value)
	}
	return weight
}

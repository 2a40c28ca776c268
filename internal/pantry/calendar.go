package pantry

import (
	"fmt"
	"time"

	ical "github.com/arran4/golang-ical"
)

// Calendar renders one all-day event per product expiration date.
// Products without a valid date are left out.
func Calendar(products []Product, now time.Time) string {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId("-//FoodHive//Expiry Calendar//EN")
	cal.SetXWRCalName("FoodHive expiry dates")

	for _, p := range products {
		exp, ok := ParseDate(p.ExpDate)
		if !ok {
			continue
		}
		event := cal.AddEvent(fmt.Sprintf("%s@foodhive", p.ID))
		event.SetDtStampTime(now)
		event.SetAllDayStartAt(exp)
		event.SetAllDayEndAt(exp.AddDate(0, 0, 1))
		event.SetSummary(fmt.Sprintf("%s expires", p.Name))
		event.SetDescription(fmt.Sprintf("%s x%d (%s)", p.Name, p.Quantity, p.Category))
	}

	return cal.Serialize()
}

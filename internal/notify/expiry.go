package notify

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"foodhive/internal/pantry"
)

// ReminderDays are the days before expiry on which a reminder fires.
var ReminderDays = []int{5, 3, 1}

// ExpiryReminders schedules one-shot reminders ahead of product expiry dates.
type ExpiryReminders struct {
	scheduler *Scheduler
	notifier  Notifier
	now       func() time.Time
}

// NewExpiryReminders creates a reminder scheduler.
func NewExpiryReminders(s *Scheduler, n Notifier) *ExpiryReminders {
	return &ExpiryReminders{scheduler: s, notifier: n, now: time.Now}
}

func reminderKey(productID string, daysBefore int) string {
	return fmt.Sprintf("%s_%d", productID, daysBefore)
}

// ReminderText returns the title and body of a reminder N days ahead.
func ReminderText(name string, days int) (string, string) {
	if strings.TrimSpace(name) == "" {
		name = "Unnamed Item"
	}
	if days == 0 {
		return "📦 Expiring Item", fmt.Sprintf("%s expires today! ⚠️", name)
	}
	return "📦 Expiring Item", fmt.Sprintf("%s will expire in %d day(s). Check it soon! 🕐", name, days)
}

// Schedule plans the reminders of p that are still in the future and returns
// how many were scheduled. Rescheduling the same product replaces its
// reminders. Products with an unreadable date get none.
func (r *ExpiryReminders) Schedule(userID string, p pantry.Product) int {
	now := r.now()
	exp, err := time.ParseInLocation(pantry.DateLayout, strings.TrimSpace(p.ExpDate), now.Location())
	if err != nil {
		log.Printf("Warning: skipping reminders for product %s: invalid date %q", p.ID, p.ExpDate)
		r.Forget(p.ID)
		return 0
	}

	scheduled := 0
	for _, days := range ReminderDays {
		key := reminderKey(p.ID, days)
		delay := exp.AddDate(0, 0, -days).Sub(now)
		if delay <= 0 {
			r.scheduler.Cancel(key)
			continue
		}

		title, body := ReminderText(p.Name, days)
		n := Notification{ID: hashID(key), Type: TypeExpiration, Title: title, Body: body}
		r.scheduler.Schedule(key, delay, func() {
			if err := r.notifier.Notify(context.Background(), userID, n); err != nil {
				log.Printf("Warning: failed to deliver reminder %s: %v", key, err)
			}
		})
		scheduled++
	}
	return scheduled
}

// ScheduleAll plans reminders for every product and returns the total.
func (r *ExpiryReminders) ScheduleAll(userID string, products []pantry.Product) int {
	total := 0
	for _, p := range products {
		total += r.Schedule(userID, p)
	}
	return total
}

// Forget cancels every reminder of a product.
func (r *ExpiryReminders) Forget(productID string) {
	for _, days := range ReminderDays {
		r.scheduler.Cancel(reminderKey(productID, days))
	}
}

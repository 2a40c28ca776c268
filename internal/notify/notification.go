// Package notify schedules and delivers expiry reminders and daily tips.
package notify

import (
	"context"
	"errors"
	"hash/fnv"
	"log"
	"sync"
)

// Notification is a message shown to the user.
type Notification struct {
	ID    int
	Type  string
	Title string
	Body  string
}

const (
	TypeExpiration = "expiration"
	TypeTip        = "tip"
)

// Notifier delivers notifications to a user.
type Notifier interface {
	Notify(ctx context.Context, userID string, n Notification) error
}

// LogNotifier writes notifications to the log. Its channel is announced once,
// on the first send.
type LogNotifier struct {
	once sync.Once
}

func (l *LogNotifier) Notify(_ context.Context, userID string, n Notification) error {
	l.once.Do(func() {
		log.Printf("notification channel %q created", "foodhive-log")
	})
	log.Printf("notify user=%s id=%d [%s] %s: %s", userID, n.ID, n.Type, n.Title, n.Body)
	return nil
}

// Dispatcher fans a notification out to every registered Notifier.
type Dispatcher struct {
	mu        sync.RWMutex
	notifiers []Notifier
}

// NewDispatcher creates a dispatcher for the given notifiers.
func NewDispatcher(notifiers ...Notifier) *Dispatcher {
	return &Dispatcher{notifiers: notifiers}
}

// Add registers another notifier.
func (d *Dispatcher) Add(n Notifier) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.notifiers = append(d.notifiers, n)
}

// Notify delivers n through every notifier, even if some fail.
func (d *Dispatcher) Notify(ctx context.Context, userID string, n Notification) error {
	d.mu.RLock()
	notifiers := append([]Notifier(nil), d.notifiers...)
	d.mu.RUnlock()

	var errs []error
	for _, nt := range notifiers {
		if err := nt.Notify(ctx, userID, n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// hashID turns a string into a stable positive notification id.
func hashID(s string) int {
	h := fnv.New32a()
	h.Write([]byte(s))
	return int(h.Sum32() & 0x7fffffff)
}

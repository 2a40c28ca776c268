package notify

import (
	"context"
	_ "embed"
	"fmt"
	"log"
	"math"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"foodhive/internal/pantry"
	"foodhive/internal/profile"
)

const (
	tipNotificationID = 1001

	ExpiryCheckHour = 9
	DailyTipHour    = 10
)

//go:embed tips.toml
var tipsFile []byte

// LoadTips parses the embedded tip list.
func LoadTips() ([]string, error) {
	var f struct {
		Tips []string `toml:"tips"`
	}
	if err := toml.Unmarshal(tipsFile, &f); err != nil {
		return nil, fmt.Errorf("failed to parse tips: %w", err)
	}
	if len(f.Tips) == 0 {
		return nil, fmt.Errorf("tip list is empty")
	}
	return f.Tips, nil
}

// TipForDay picks the tip of the day from its day of year.
func TipForDay(tips []string, day time.Time) string {
	if len(tips) == 0 {
		return ""
	}
	return tips[day.YearDay()%len(tips)]
}

// NextRun returns the next time at hour:minute strictly after now, in now's
// location.
func NextRun(now time.Time, hour, minute int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// UserLister lists every known user.
type UserLister interface {
	Users(ctx context.Context) ([]string, error)
}

// PreferenceReader returns the preferences of a user.
type PreferenceReader interface {
	Preferences(ctx context.Context, userID string) (profile.Preferences, error)
}

// Jobs are the daily notification runs over all users.
type Jobs struct {
	users    UserLister
	products *pantry.Repository
	prefs    PreferenceReader
	notifier Notifier
	tips     []string
	now      func() time.Time
}

// NewJobs creates the daily jobs.
func NewJobs(users UserLister, products *pantry.Repository, prefs PreferenceReader, notifier Notifier, tips []string) *Jobs {
	return &Jobs{
		users:    users,
		products: products,
		prefs:    prefs,
		notifier: notifier,
		tips:     tips,
		now:      time.Now,
	}
}

// expiryCheckText returns the title and body for a product diff days from
// expiry, or ok=false when no alert is due.
func expiryCheckText(name string, diff int) (title, body string, ok bool) {
	switch diff {
	case 5:
		return "🕔 5 days left", name + " expires in 5 days", true
	case 3:
		return "⚠️ 3 days left", name + " expires in 3 days", true
	case 1:
		return "⏰ Tomorrow!", name + " expires tomorrow!", true
	}
	return "", "", false
}

// ExpiryCheck alerts every user with expiration alerts on about products
// 5, 3 or 1 days from expiry. It returns the number of notifications sent.
func (j *Jobs) ExpiryCheck(ctx context.Context) (int, error) {
	users, err := j.users.Users(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list users: %w", err)
	}

	now := j.now()
	sent := 0
	for _, uid := range users {
		prefs, err := j.prefs.Preferences(ctx, uid)
		if err != nil {
			log.Printf("Warning: skipping expiry check for %s: %v", uid, err)
			continue
		}
		if !prefs.ExpirationAlerts {
			continue
		}

		products, err := j.products.List(ctx, uid)
		if err != nil {
			log.Printf("Warning: skipping expiry check for %s: %v", uid, err)
			continue
		}
		for _, p := range products {
			exp, err := time.ParseInLocation(pantry.DateLayout, strings.TrimSpace(p.ExpDate), now.Location())
			if err != nil {
				continue
			}
			diff := int(math.Round(exp.Sub(now).Hours() / 24))
			title, body, ok := expiryCheckText(p.Name, diff)
			if !ok {
				continue
			}
			n := Notification{ID: hashID(p.Name), Type: TypeExpiration, Title: title, Body: body}
			if err := j.notifier.Notify(ctx, uid, n); err != nil {
				log.Printf("Warning: failed to notify %s: %v", uid, err)
				continue
			}
			sent++
		}
	}
	return sent, nil
}

// DailyTip sends the tip of the day to every user with tips on.
func (j *Jobs) DailyTip(ctx context.Context) (int, error) {
	users, err := j.users.Users(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list users: %w", err)
	}

	tip := TipForDay(j.tips, j.now())
	if tip == "" {
		return 0, nil
	}
	n := Notification{ID: tipNotificationID, Type: TypeTip, Title: "💡 Tip of the Day", Body: tip}

	sent := 0
	for _, uid := range users {
		prefs, err := j.prefs.Preferences(ctx, uid)
		if err != nil || !prefs.DailyTip {
			continue
		}
		if err := j.notifier.Notify(ctx, uid, n); err != nil {
			log.Printf("Warning: failed to send tip to %s: %v", uid, err)
			continue
		}
		sent++
	}
	return sent, nil
}

// ScheduleDaily runs job every day at hour:00 local time until the
// scheduler is stopped.
func (j *Jobs) ScheduleDaily(s *Scheduler, name string, hour int, job func(context.Context) (int, error)) {
	run := func() {
		if n, err := job(context.Background()); err != nil {
			log.Printf("Warning: %s failed: %v", name, err)
		} else {
			log.Printf("%s sent %d notification(s)", name, n)
		}
		j.ScheduleDaily(s, name, hour, job)
	}

	now := j.now()
	s.Schedule("job:"+name, NextRun(now, hour, 0).Sub(now), run)
}

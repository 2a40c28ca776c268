// Package profile stores the user's dietary preferences and public profile.
package profile

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"foodhive/internal/docstore"
)

const (
	preferencesCollection = "preferences"
	preferencesDoc        = "settings"
	profileCollection     = "profile"
	profileDoc            = "info"

	dietNone = "none"
)

// Preferences are the dietary and notification settings of a user.
type Preferences struct {
	Diet             string   `json:"diet"`
	Exclusions       []string `json:"exclusions"`
	ExpirationAlerts bool     `json:"expirationAlerts"`
	DailyTip         bool     `json:"dailyTip"`
}

// DefaultPreferences are returned for users that never saved any.
func DefaultPreferences() Preferences {
	return Preferences{
		Diet:             dietNone,
		Exclusions:       []string{},
		ExpirationAlerts: true,
		DailyTip:         true,
	}
}

// Profile is the public identity of a user.
type Profile struct {
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
	AvatarURL   string `json:"avatarUrl"`
}

// Repository handles persistence of preferences and profiles.
type Repository struct {
	store docstore.Store
}

// NewRepository creates a new profile repository.
func NewRepository(store docstore.Store) *Repository {
	return &Repository{store: store}
}

// Preferences returns the stored preferences, falling back to defaults for
// every missing field.
func (r *Repository) Preferences(ctx context.Context, userID string) (Preferences, error) {
	prefs := DefaultPreferences()

	d, err := r.store.Get(ctx, userID, preferencesCollection, preferencesDoc)
	if errors.Is(err, docstore.ErrNotFound) {
		return prefs, nil
	}
	if err != nil {
		return prefs, fmt.Errorf("failed to get preferences: %w", err)
	}

	prefs.Diet = docstore.String(d.Data, "diet", dietNone)
	if strings.TrimSpace(prefs.Diet) == "" {
		prefs.Diet = dietNone
	}
	if ex := docstore.Strings(d.Data, "exclusions"); ex != nil {
		prefs.Exclusions = ex
	}
	prefs.ExpirationAlerts = docstore.Bool(d.Data, "expirationAlerts", true)
	prefs.DailyTip = docstore.Bool(d.Data, "dailyTip", true)
	return prefs, nil
}

// SavePreferences replaces the stored preferences.
func (r *Repository) SavePreferences(ctx context.Context, userID string, p Preferences) error {
	diet := strings.ToLower(strings.TrimSpace(p.Diet))
	if diet == "" {
		diet = dietNone
	}
	exclusions := make([]string, 0, len(p.Exclusions))
	for _, e := range p.Exclusions {
		if e = strings.TrimSpace(e); e != "" {
			exclusions = append(exclusions, e)
		}
	}

	err := r.store.Set(ctx, userID, preferencesCollection, preferencesDoc, map[string]any{
		"diet":             diet,
		"exclusions":       exclusions,
		"expirationAlerts": p.ExpirationAlerts,
		"dailyTip":         p.DailyTip,
	})
	if err != nil {
		return fmt.Errorf("failed to save preferences: %w", err)
	}
	return nil
}

// Profile returns the stored profile. A user without one gets an empty profile.
func (r *Repository) Profile(ctx context.Context, userID string) (Profile, error) {
	d, err := r.store.Get(ctx, userID, profileCollection, profileDoc)
	if errors.Is(err, docstore.ErrNotFound) {
		return Profile{}, nil
	}
	if err != nil {
		return Profile{}, fmt.Errorf("failed to get profile: %w", err)
	}
	return Profile{
		DisplayName: docstore.String(d.Data, "displayName", ""),
		Email:       docstore.String(d.Data, "email", ""),
		AvatarURL:   docstore.String(d.Data, "avatarUrl", ""),
	}, nil
}

// SaveProfile replaces the stored profile.
func (r *Repository) SaveProfile(ctx context.Context, userID string, p Profile) error {
	err := r.store.Set(ctx, userID, profileCollection, profileDoc, map[string]any{
		"displayName": strings.TrimSpace(p.DisplayName),
		"email":       strings.TrimSpace(p.Email),
		"avatarUrl":   p.AvatarURL,
	})
	if err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}
	return nil
}

// setAvatarURL merges the avatar url into the profile, creating it if needed.
func (r *Repository) setAvatarURL(ctx context.Context, userID, url string) error {
	err := r.store.Update(ctx, userID, profileCollection, profileDoc, map[string]any{"avatarUrl": url})
	if errors.Is(err, docstore.ErrNotFound) {
		return r.SaveProfile(ctx, userID, Profile{AvatarURL: url})
	}
	if err != nil {
		return fmt.Errorf("failed to update avatar url: %w", err)
	}
	return nil
}

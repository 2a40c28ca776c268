package api

import (
	"io"
	"net/http"
	"strings"

	"foodhive/internal/profile"
)

const maxAvatarSize = 5 << 20

type preferencesRequest struct {
	Diet             string   `json:"diet" validate:"max=40"`
	Exclusions       []string `json:"exclusions" validate:"max=50,dive,max=60"`
	ExpirationAlerts *bool    `json:"expirationAlerts"`
	DailyTip         *bool    `json:"dailyTip"`
}

type profileRequest struct {
	DisplayName string `json:"displayName" validate:"max=80"`
	Email       string `json:"email" validate:"omitempty,email"`
}

func (s *Server) getPreferences(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	prefs, err := s.deps.Profiles.Preferences(ctx, UserID(ctx))
	if err != nil {
		internalError(w, "failed to load preferences", err)
		return
	}
	writeJSON(w, http.StatusOK, prefs)
}

// savePreferences replaces the preferences. Omitted toggles keep their
// current value.
func (s *Server) savePreferences(w http.ResponseWriter, r *http.Request) {
	var req preferencesRequest
	if !decode(w, r, &req) {
		return
	}
	ctx := r.Context()
	uid := UserID(ctx)

	prefs, err := s.deps.Profiles.Preferences(ctx, uid)
	if err != nil {
		internalError(w, "failed to load preferences", err)
		return
	}
	prefs.Diet = req.Diet
	prefs.Exclusions = req.Exclusions
	if req.ExpirationAlerts != nil {
		prefs.ExpirationAlerts = *req.ExpirationAlerts
	}
	if req.DailyTip != nil {
		prefs.DailyTip = *req.DailyTip
	}

	if err := s.deps.Profiles.SavePreferences(ctx, uid, prefs); err != nil {
		internalError(w, "failed to save preferences", err)
		return
	}
	saved, err := s.deps.Profiles.Preferences(ctx, uid)
	if err != nil {
		internalError(w, "failed to load preferences", err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

func (s *Server) getProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	p, err := s.deps.Profiles.Profile(ctx, UserID(ctx))
	if err != nil {
		internalError(w, "failed to load profile", err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) saveProfile(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if !decode(w, r, &req) {
		return
	}
	ctx := r.Context()
	uid := UserID(ctx)

	current, err := s.deps.Profiles.Profile(ctx, uid)
	if err != nil {
		internalError(w, "failed to load profile", err)
		return
	}
	p := profile.Profile{DisplayName: req.DisplayName, Email: req.Email, AvatarURL: current.AvatarURL}
	if err := s.deps.Profiles.SaveProfile(ctx, uid, p); err != nil {
		internalError(w, "failed to save profile", err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// uploadAvatar takes a multipart form with an "avatar" image file.
func (s *Server) uploadAvatar(w http.ResponseWriter, r *http.Request) {
	if s.deps.Avatars == nil {
		writeError(w, http.StatusServiceUnavailable, "avatar storage is not configured")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxAvatarSize+1<<20)
	if err := r.ParseMultipartForm(maxAvatarSize); err != nil {
		writeError(w, http.StatusBadRequest, "invalid or too large upload")
		return
	}
	file, header, err := r.FormFile("avatar")
	if err != nil {
		writeError(w, http.StatusBadRequest, "avatar file is required")
		return
	}
	defer file.Close()

	if header.Size > maxAvatarSize {
		writeError(w, http.StatusRequestEntityTooLarge, "avatar must be at most 5MB")
		return
	}
	contentType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		writeError(w, http.StatusBadRequest, "avatar must be an image")
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read upload")
		return
	}

	ctx := r.Context()
	url, err := s.deps.Avatars.Upload(ctx, UserID(ctx), contentType, data)
	if err != nil {
		internalError(w, "failed to upload avatar", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"avatarUrl": url})
}

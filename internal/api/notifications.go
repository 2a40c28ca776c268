package api

import (
	"net/http"
)

// scheduleNotifications (re)plans expiry reminders for all of the user's
// products.
func (s *Server) scheduleNotifications(w http.ResponseWriter, r *http.Request) {
	if s.deps.Reminders == nil {
		writeError(w, http.StatusServiceUnavailable, "notifications are not configured")
		return
	}
	ctx := r.Context()
	uid := UserID(ctx)
	products, err := s.deps.Products.List(ctx, uid)
	if err != nil {
		internalError(w, "failed to load products", err)
		return
	}
	n := s.deps.Reminders.ScheduleAll(uid, products)
	writeJSON(w, http.StatusOK, map[string]int{"scheduled": n})
}

func (s *Server) listHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	entries, err := s.deps.History.List(ctx, UserID(ctx))
	if err != nil {
		internalError(w, "failed to load history", err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// Package api exposes the FoodHive features over a JSON HTTP API.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"foodhive/internal/capture"
	"foodhive/internal/chat"
	"foodhive/internal/history"
	"foodhive/internal/notify"
	"foodhive/internal/pantry"
	"foodhive/internal/profile"
	"foodhive/internal/recipe"
	"foodhive/internal/shopping"
)

// BarcodeLookup resolves barcodes to drafts.
type BarcodeLookup interface {
	Lookup(ctx context.Context, code string) (capture.Draft, error)
}

// ImageReader extracts drafts from product photos.
type ImageReader interface {
	Labels(ctx context.Context, image []byte) (capture.Draft, error)
	Text(ctx context.Context, image []byte) (capture.Draft, error)
}

// Deps are the services behind the API. Vision and Avatars may be nil, in
// which case their endpoints answer 503.
type Deps struct {
	Products  *pantry.Repository
	Shopping  *shopping.Repository
	Favorites *recipe.Favorites
	History   *history.Repository
	Profiles  *profile.Repository
	Avatars   *profile.AvatarService
	Chat      *chat.Orchestrator
	Reminders *notify.ExpiryReminders
	Barcodes  BarcodeLookup
	Vision    ImageReader
	JWTSecret string
}

// Server routes API requests.
type Server struct {
	deps   Deps
	router *chi.Mux
	now    func() time.Time
}

// New creates the API server with every route registered.
func New(deps Deps) *Server {
	s := &Server{deps: deps, router: chi.NewRouter(), now: time.Now}

	r := s.router
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(RequireAuth(deps.JWTSecret))

		r.Get("/products", s.listProducts)
		r.Post("/products", s.createProduct)
		r.Get("/products/summary", s.productSummary)
		r.Get("/products/calendar.ics", s.productCalendar)
		r.Get("/products/{id}", s.getProduct)
		r.Put("/products/{id}", s.updateProduct)
		r.Delete("/products/{id}", s.deleteProduct)

		r.Post("/capture/barcode", s.captureBarcode)
		r.Post("/capture/ocr", s.captureOCR)
		r.Post("/capture/label", s.captureLabel)

		r.Get("/shopping", s.listShopping)
		r.Post("/shopping", s.createShopping)
		r.Put("/shopping/{id}", s.updateShopping)
		r.Delete("/shopping/{id}", s.deleteShopping)
		r.Post("/shopping/{id}/toggle", s.toggleShopping)

		r.Get("/favorites", s.listFavorites)
		r.Delete("/favorites/{id}", s.deleteFavorite)

		r.Get("/chats", s.listChats)
		r.Post("/chats", s.createChat)
		r.Patch("/chats/{id}", s.renameChat)
		r.Delete("/chats/{id}", s.deleteChat)
		r.Get("/chats/{id}/messages", s.listMessages)
		r.Post("/chats/{id}/messages", s.sendMessage)
		r.Post("/chats/{id}/recipes/{recipeId}/missing", s.addMissingIngredients)
		r.Post("/chats/{id}/recipes/{recipeId}/favorite", s.addFavorite)

		r.Get("/preferences", s.getPreferences)
		r.Put("/preferences", s.savePreferences)
		r.Get("/profile", s.getProfile)
		r.Put("/profile", s.saveProfile)
		r.Post("/profile/avatar", s.uploadAvatar)

		r.Post("/notifications/schedule", s.scheduleNotifications)
		r.Get("/history", s.listHistory)
	})

	return s
}

// Router returns the root router so other front-ends can mount routes.
func (s *Server) Router() chi.Router {
	return s.router
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

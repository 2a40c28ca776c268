package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"foodhive/internal/category"
	"foodhive/internal/recipe"
	"foodhive/internal/shopping"
)

type shoppingRequest struct {
	Name     string `json:"name" validate:"required,max=120"`
	Quantity int    `json:"quantity" validate:"gte=0,lte=10000"`
	Bought   bool   `json:"bought"`
	Category string `json:"category" validate:"omitempty,category"`
}

func (r shoppingRequest) appCategory() string {
	c, _ := category.Canonical(r.Category)
	return c
}

func (s *Server) listShopping(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	items, err := s.deps.Shopping.List(ctx, UserID(ctx))
	if err != nil {
		internalError(w, "failed to load shopping list", err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) createShopping(w http.ResponseWriter, r *http.Request) {
	var req shoppingRequest
	if !decode(w, r, &req) {
		return
	}
	ctx := r.Context()
	item, err := s.deps.Shopping.Add(ctx, UserID(ctx), shopping.Item{
		Name:     req.Name,
		Quantity: req.Quantity,
		Bought:   req.Bought,
		Category: req.appCategory(),
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func (s *Server) updateShopping(w http.ResponseWriter, r *http.Request) {
	var req shoppingRequest
	if !decode(w, r, &req) {
		return
	}
	ctx := r.Context()
	item := shopping.Item{
		ID:       chi.URLParam(r, "id"),
		Name:     req.Name,
		Quantity: req.Quantity,
		Bought:   req.Bought,
		Category: req.appCategory(),
	}
	err := s.deps.Shopping.Update(ctx, UserID(ctx), item)
	if errors.Is(err, shopping.ErrNotFound) {
		writeError(w, http.StatusNotFound, "shopping item not found")
		return
	}
	if err != nil {
		internalError(w, "failed to update shopping item", err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (s *Server) toggleShopping(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	item, err := s.deps.Shopping.ToggleBought(ctx, UserID(ctx), chi.URLParam(r, "id"))
	if errors.Is(err, shopping.ErrNotFound) {
		writeError(w, http.StatusNotFound, "shopping item not found")
		return
	}
	if err != nil {
		internalError(w, "failed to toggle shopping item", err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (s *Server) deleteShopping(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := s.deps.Shopping.Delete(ctx, UserID(ctx), chi.URLParam(r, "id")); err != nil {
		internalError(w, "failed to delete shopping item", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listFavorites(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	favs, err := s.deps.Favorites.List(ctx, UserID(ctx))
	if err != nil {
		internalError(w, "failed to load favorites", err)
		return
	}
	writeJSON(w, http.StatusOK, favs)
}

func (s *Server) deleteFavorite(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid recipe id")
		return
	}
	ctx := r.Context()
	err = s.deps.Favorites.Remove(ctx, UserID(ctx), id)
	if errors.Is(err, recipe.ErrFavoriteNotFound) {
		writeError(w, http.StatusNotFound, "favorite not found")
		return
	}
	if err != nil {
		internalError(w, "failed to remove favorite", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

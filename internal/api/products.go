package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"foodhive/internal/capture"
	"foodhive/internal/category"
	"foodhive/internal/pantry"
)

type productRequest struct {
	Name     string `json:"name" validate:"required,max=120"`
	Category string `json:"category" validate:"omitempty,category"`
	AddDate  string `json:"addDate" validate:"omitempty,datetime=2006-01-02"`
	ExpDate  string `json:"expDate" validate:"omitempty,datetime=2006-01-02"`
	Quantity int    `json:"quantity" validate:"gte=0,lte=10000"`
	Weight   string `json:"weight" validate:"max=40"`
	Note     string `json:"note" validate:"max=500"`
	Source   string `json:"source" validate:"omitempty,oneof=barcode ocr image manual"`
}

func (p productRequest) product(id string) pantry.Product {
	cat, _ := category.Canonical(p.Category)
	return pantry.Product{
		ID:       id,
		Name:     strings.TrimSpace(p.Name),
		Category: cat,
		AddDate:  p.AddDate,
		ExpDate:  p.ExpDate,
		Quantity: p.Quantity,
		Weight:   p.Weight,
		Note:     p.Note,
		Source:   pantry.Source(p.Source),
	}
}

var weightUnits = map[string]bool{
	capture.UnitAuto: true, capture.UnitG: true, capture.UnitKg: true, capture.UnitMl: true, capture.UnitL: true,
}

// listProducts supports ?q= fuzzy search, ?category=, ?status=expired|expiring
// and ?unit= to render weights.
func (s *Server) listProducts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	products, err := s.deps.Products.List(ctx, UserID(ctx))
	if err != nil {
		internalError(w, "failed to load products", err)
		return
	}

	query := r.URL.Query()
	switch query.Get("status") {
	case "":
	case "expired":
		products = pantry.Classify(s.now(), products).Expired
	case "expiring":
		products = pantry.Classify(s.now(), products).ExpiringSoon
	default:
		writeError(w, http.StatusBadRequest, "status must be expired or expiring")
		return
	}
	if c := query.Get("category"); c != "" {
		products = pantry.Filter(products, c)
	}
	if q := query.Get("q"); q != "" {
		products = pantry.Search(products, q)
	}
	if unit := query.Get("unit"); unit != "" {
		if !weightUnits[unit] {
			writeError(w, http.StatusBadRequest, "unit must be one of auto, g, kg, ml, l")
			return
		}
		for i := range products {
			products[i].Weight = capture.FormatWeight(products[i].Weight, unit)
		}
	}

	if products == nil {
		products = []pantry.Product{}
	}
	writeJSON(w, http.StatusOK, products)
}

func (s *Server) getProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	p, err := s.deps.Products.Get(ctx, UserID(ctx), chi.URLParam(r, "id"))
	if errors.Is(err, pantry.ErrNotFound) {
		writeError(w, http.StatusNotFound, "product not found")
		return
	}
	if err != nil {
		internalError(w, "failed to load product", err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) createProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if !decode(w, r, &req) {
		return
	}

	ctx := r.Context()
	uid := UserID(ctx)
	p, err := s.deps.Products.Add(ctx, uid, req.product(""))
	if err != nil {
		internalError(w, "failed to add product", err)
		return
	}
	if s.deps.Reminders != nil {
		s.deps.Reminders.Schedule(uid, *p)
	}
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) updateProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if !decode(w, r, &req) {
		return
	}

	ctx := r.Context()
	uid := UserID(ctx)
	p, err := s.deps.Products.Update(ctx, uid, req.product(chi.URLParam(r, "id")))
	if errors.Is(err, pantry.ErrNotFound) {
		writeError(w, http.StatusNotFound, "product not found")
		return
	}
	if err != nil {
		internalError(w, "failed to update product", err)
		return
	}
	if s.deps.Reminders != nil {
		s.deps.Reminders.Schedule(uid, *p)
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) deleteProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")
	if err := s.deps.Products.Delete(ctx, UserID(ctx), id); err != nil {
		internalError(w, "failed to delete product", err)
		return
	}
	if s.deps.Reminders != nil {
		s.deps.Reminders.Forget(id)
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) productSummary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	products, err := s.deps.Products.List(ctx, UserID(ctx))
	if err != nil {
		internalError(w, "failed to load products", err)
		return
	}
	writeJSON(w, http.StatusOK, pantry.Summarize(s.now(), products))
}

func (s *Server) productCalendar(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	products, err := s.deps.Products.List(ctx, UserID(ctx))
	if err != nil {
		internalError(w, "failed to load products", err)
		return
	}
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="foodhive.ics"`)
	w.Write([]byte(pantry.Calendar(products, s.now())))
}

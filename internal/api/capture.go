package api

import (
	"encoding/base64"
	"errors"
	"log"
	"net/http"

	"foodhive/internal/capture"
)

// Capture requests may carry the draft built so far; the new capture is
// applied on top of it.
type barcodeRequest struct {
	Code string         `json:"code" validate:"required,numeric,max=32"`
	Base *capture.Draft `json:"base"`
}

type ocrRequest struct {
	Text  string         `json:"text" validate:"max=5000"`
	Image string         `json:"image" validate:"required_without=Text,omitempty,base64"`
	Base  *capture.Draft `json:"base"`
}

type labelRequest struct {
	Image string         `json:"image" validate:"required,base64"`
	Base  *capture.Draft `json:"base"`
}

func merge(base *capture.Draft, d capture.Draft) capture.Draft {
	if base == nil {
		return d
	}
	return base.Apply(d)
}

func writeCaptureError(w http.ResponseWriter, err error) {
	if errors.Is(err, capture.ErrProductNotFound) {
		writeError(w, http.StatusNotFound, "product not found")
		return
	}
	log.Printf("Warning: capture lookup failed: %v", err)
	writeError(w, http.StatusBadGateway, "lookup failed, please try again")
}

func (s *Server) captureBarcode(w http.ResponseWriter, r *http.Request) {
	var req barcodeRequest
	if !decode(w, r, &req) {
		return
	}
	d, err := s.deps.Barcodes.Lookup(r.Context(), req.Code)
	if err != nil {
		writeCaptureError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, merge(req.Base, d))
}

func (s *Server) captureOCR(w http.ResponseWriter, r *http.Request) {
	var req ocrRequest
	if !decode(w, r, &req) {
		return
	}

	if req.Text != "" {
		writeJSON(w, http.StatusOK, merge(req.Base, capture.ParseText(req.Text)))
		return
	}
	if s.deps.Vision == nil {
		writeError(w, http.StatusServiceUnavailable, "image recognition is not configured")
		return
	}

	image, err := base64.StdEncoding.DecodeString(req.Image)
	if err != nil {
		writeError(w, http.StatusBadRequest, "image must be base64")
		return
	}
	d, err := s.deps.Vision.Text(r.Context(), image)
	if err != nil {
		writeCaptureError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, merge(req.Base, d))
}

func (s *Server) captureLabel(w http.ResponseWriter, r *http.Request) {
	var req labelRequest
	if !decode(w, r, &req) {
		return
	}
	if s.deps.Vision == nil {
		writeError(w, http.StatusServiceUnavailable, "image recognition is not configured")
		return
	}

	image, err := base64.StdEncoding.DecodeString(req.Image)
	if err != nil {
		writeError(w, http.StatusBadRequest, "image must be base64")
		return
	}
	d, err := s.deps.Vision.Labels(r.Context(), image)
	if err != nil {
		writeCaptureError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, merge(req.Base, d))
}

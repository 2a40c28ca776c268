package capture

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"google.golang.org/api/option"

	"foodhive/internal/pantry"
)

func TestNormalizeWeight(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Net Wt 250 G", "250 g"},
		{"1,5L bottle", "1,5l"},
		{"pack of 2 x 330ml", "330ml"},
		{"0.75 Kg", "0.75 kg"},
		{"no weight here", ""},
	}
	for _, tt := range tests {
		if got := NormalizeWeight(tt.in); got != tt.want {
			t.Errorf("NormalizeWeight(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatWeight(t *testing.T) {
	tests := []struct {
		weight string
		unit   string
		want   string
	}{
		{"250 g", UnitAuto, "250 g"},
		{"1500 g", UnitAuto, "1.5 kg"},
		{"300 g", UnitKg, "0.3 kg"},
		{"1.2 kg", UnitG, "1200 g"},
		{"1.2 kg", UnitAuto, "1.2 kg"},
		{"330 ml", UnitAuto, "330 ml"},
		{"330 ml", UnitL, "0.3 L"},
		{"2000ml", UnitAuto, "2.0 L"},
		{"1,5 l", UnitMl, "1500 ml"},
		{"1,5 l", UnitAuto, "1.5 L"},
		{"a dozen", UnitAuto, "a dozen"},
	}
	for _, tt := range tests {
		if got := FormatWeight(tt.weight, tt.unit); got != tt.want {
			t.Errorf("FormatWeight(%q, %q) = %q, want %q", tt.weight, tt.unit, got, tt.want)
		}
	}
}

func TestParseText(t *testing.T) {
	d := ParseText("yogurt 4 x 125g best before 2025-07-14")
	if d.Name != "Yogurt" || d.Quantity != 4 || d.Weight != "125g" || d.ExpDate != "2025-07-14" {
		t.Errorf("unexpected draft %+v", d)
	}
	if d.Source != pantry.SourceOCR {
		t.Errorf("Expected ocr source, got %s", d.Source)
	}

	empty := ParseText("   ")
	if empty.Name != "" || empty.Quantity != 1 || empty.ExpDate != "" {
		t.Errorf("unexpected empty draft %+v", empty)
	}
	if zero := ParseText("butter 0 left"); zero.Quantity != 1 {
		t.Errorf("Expected quantity 0 to read as 1, got %d", zero.Quantity)
	}
}

func TestDraftApply(t *testing.T) {
	barcode := Draft{Name: "Milk", Category: "Dairy", Weight: "1 l", Source: pantry.SourceBarcode}
	ocr := Draft{Name: "Lait", Quantity: 2, ExpDate: "2025-07-01", Source: pantry.SourceOCR}

	got := barcode.Apply(ocr)
	want := Draft{Name: "Lait", Category: "Dairy", Quantity: 2, Weight: "1 l", ExpDate: "2025-07-01", Source: pantry.SourceOCR}
	if got != want {
		t.Errorf("Apply = %+v, want %+v", got, want)
	}

	p := got.Product()
	if p.Name != "Lait" || p.Category != "Dairy" || p.Source != pantry.SourceOCR {
		t.Errorf("unexpected product %+v", p)
	}
}

func TestOpenFoodFactsLookup(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		switch r.URL.Path {
		case "/api/v0/product/3017620422003.json":
			w.Write([]byte(`{"status":1,"product":{"product_name":"Nutella","categories_tags":["en:snacks","en:spreads"],"product_quantity":"400","quantity_unit":"g"}}`))
		case "/api/v0/product/111.json":
			w.Write([]byte(`{"status":1,"product":{"product_name":"","categories_tags":["en:plant-based-beverages"],"product_quantity":1.5,"quantity_unit":"L"}}`))
		case "/api/v0/product/222.json":
			w.Write([]byte(`{"status":1,"product":{"product_name":"Mystery"}}`))
		case "/api/v0/product/503.json":
			w.WriteHeader(http.StatusServiceUnavailable)
		default:
			w.Write([]byte(`{"status":0,"status_verbose":"product not found"}`))
		}
	}))
	defer server.Close()

	off, err := NewOpenFoodFacts(server.URL, server.Client(), 8)
	if err != nil {
		t.Fatalf("NewOpenFoodFacts failed: %v", err)
	}
	ctx := context.Background()

	t.Run("Found", func(t *testing.T) {
		d, err := off.Lookup(ctx, "3017620422003")
		if err != nil {
			t.Fatalf("Lookup failed: %v", err)
		}
		want := Draft{Name: "Nutella", Category: "Snacks", Weight: "400 g", Source: pantry.SourceBarcode}
		if d != want {
			t.Errorf("Lookup = %+v, want %+v", d, want)
		}
	})

	t.Run("Cached", func(t *testing.T) {
		before := atomic.LoadInt32(&hits)
		if _, err := off.Lookup(ctx, "3017620422003"); err != nil {
			t.Fatalf("Lookup failed: %v", err)
		}
		if atomic.LoadInt32(&hits) != before {
			t.Error("second lookup should be served from cache")
		}
	})

	t.Run("NumericQuantityAndDefaults", func(t *testing.T) {
		d, err := off.Lookup(ctx, "111")
		if err != nil {
			t.Fatalf("Lookup failed: %v", err)
		}
		if d.Name != "Unknown" || d.Category != "Drinks" || d.Weight != "1.5 l" {
			t.Errorf("unexpected draft %+v", d)
		}
	})

	t.Run("NoCategory", func(t *testing.T) {
		d, _ := off.Lookup(ctx, "222")
		if d.Category != "Other" || d.Weight != "" {
			t.Errorf("unexpected draft %+v", d)
		}
	})

	t.Run("NotFound", func(t *testing.T) {
		if _, err := off.Lookup(ctx, "000"); !errors.Is(err, ErrProductNotFound) {
			t.Errorf("Expected ErrProductNotFound, got %v", err)
		}
	})

	t.Run("ServerError", func(t *testing.T) {
		_, err := off.Lookup(ctx, "503")
		if err == nil || errors.Is(err, ErrProductNotFound) || !strings.Contains(err.Error(), "status=503") {
			t.Errorf("Expected a status error, got %v", err)
		}
	})
}

func newTestVision(t *testing.T, handler http.HandlerFunc) *Vision {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	v, err := NewVision(context.Background(), "test-key",
		option.WithEndpoint(server.URL+"/"),
		option.WithHTTPClient(server.Client()),
	)
	if err != nil {
		t.Fatalf("NewVision failed: %v", err)
	}
	return v
}

func TestVisionLabels(t *testing.T) {
	var feature string
	v := newTestVision(t, func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Requests []struct {
				Image    struct{ Content string } `json:"image"`
				Features []struct {
					Type string `json:"type"`
				} `json:"features"`
			} `json:"requests"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		if len(req.Requests) == 1 && len(req.Requests[0].Features) == 1 {
			feature = req.Requests[0].Features[0].Type
			if req.Requests[0].Image.Content != "aW1n" {
				t.Errorf("unexpected image content %q", req.Requests[0].Image.Content)
			}
		}
		w.Write([]byte(`{"responses":[{"labelAnnotations":[{"description":"banana fruit","score":0.97},{"description":"food"}]}]}`))
	})

	d, err := v.Labels(context.Background(), []byte("img"))
	if err != nil {
		t.Fatalf("Labels failed: %v", err)
	}
	if feature != "LABEL_DETECTION" {
		t.Errorf("unexpected feature %q", feature)
	}
	want := Draft{Name: "Banana fruit", Category: "Fruits", Quantity: 1, Note: "Detected: banana fruit", Source: pantry.SourceImage}
	if d != want {
		t.Errorf("Labels = %+v, want %+v", d, want)
	}
}

func TestVisionText(t *testing.T) {
	v := newTestVision(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"responses":[{"textAnnotations":[{"description":"milk 2 1L 2025-08-01"}]}]}`))
	})

	d, err := v.Text(context.Background(), []byte("img"))
	if err != nil {
		t.Fatalf("Text failed: %v", err)
	}
	if d.Name != "Milk" || d.Quantity != 2 || d.Weight != "1l" || d.ExpDate != "2025-08-01" {
		t.Errorf("unexpected draft %+v", d)
	}
}

func TestVisionNothingDetected(t *testing.T) {
	v := newTestVision(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"responses":[{}]}`))
	})
	if _, err := v.Labels(context.Background(), []byte("img")); !errors.Is(err, ErrProductNotFound) {
		t.Errorf("Expected ErrProductNotFound, got %v", err)
	}
}

package capture

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru"

	"foodhive/internal/category"
	"foodhive/internal/pantry"
)

// OpenFoodFacts looks products up by barcode.
type OpenFoodFacts struct {
	baseURL    string
	httpClient *http.Client
	cache      *lru.Cache
}

// NewOpenFoodFacts creates a client keeping the last cacheSize lookups.
func NewOpenFoodFacts(baseURL string, httpClient *http.Client, cacheSize int) (*OpenFoodFacts, error) {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	cache, err := lru.New(cacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create barcode cache: %w", err)
	}
	return &OpenFoodFacts{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		cache:      cache,
	}, nil
}

type offResponse struct {
	Status  int `json:"status"`
	Product struct {
		ProductName     string          `json:"product_name"`
		CategoriesTags  []string        `json:"categories_tags"`
		ProductQuantity json.RawMessage `json:"product_quantity"`
		QuantityUnit    string          `json:"quantity_unit"`
	} `json:"product"`
}

// Lookup returns the draft for a barcode.
func (c *OpenFoodFacts) Lookup(ctx context.Context, code string) (Draft, error) {
	if d, ok := c.cache.Get(code); ok {
		return d.(Draft), nil
	}

	url := fmt.Sprintf("%s/api/v0/product/%s.json", c.baseURL, code)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Draft{}, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Draft{}, fmt.Errorf("failed to query openfoodfacts: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return Draft{}, ErrProductNotFound
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return Draft{}, fmt.Errorf("openfoodfacts api error: status=%d body=%s", resp.StatusCode, string(body))
	}

	var r offResponse
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return Draft{}, fmt.Errorf("failed to decode openfoodfacts response: %w", err)
	}
	if r.Status == 0 {
		return Draft{}, ErrProductNotFound
	}

	d := Draft{
		Name:     strings.TrimSpace(r.Product.ProductName),
		Category: category.Other,
		Source:   pantry.SourceBarcode,
	}
	if d.Name == "" {
		d.Name = "Unknown"
	}
	if len(r.Product.CategoriesTags) > 0 {
		d.Category = category.MapToAppCategory(strings.TrimPrefix(r.Product.CategoriesTags[0], "en:"))
	}
	d.Weight = NormalizeWeight(strings.TrimSpace(rawQuantity(r.Product.ProductQuantity) + " " + r.Product.QuantityUnit))

	c.cache.Add(code, d)
	return d, nil
}

// rawQuantity reads product_quantity, which is a string or a number.
func rawQuantity(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

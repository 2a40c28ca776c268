package recipe

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	resultsPerSearch = 3
	// Offsets step by resultsPerSearch up to this value, so repeated
	// searches surface different recipes.
	maxOffset       = 30
	noInstructions  = "No instructions provided."
	defaultQuery    = "dinner"
	dietUnspecified = "none"
)

// SearchParams are the inputs of a recipe search.
type SearchParams struct {
	Query      string
	Diet       string
	Exclusions []string
}

// SpoonacularClient is a client for the Spoonacular recipe API.
type SpoonacularClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	randIntn   func(n int) int
}

// NewSpoonacularClient creates a new client. A nil httpClient gets a default
// one with a timeout.
func NewSpoonacularClient(apiKey, baseURL string, httpClient *http.Client) *SpoonacularClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &SpoonacularClient{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		randIntn:   rand.IntN,
	}
}

// Search returns the ids of up to three recipes matching p.
func (c *SpoonacularClient) Search(ctx context.Context, p SearchParams) ([]int, error) {
	query := strings.TrimSpace(p.Query)
	if query == "" {
		query = defaultQuery
	}

	params := url.Values{}
	params.Set("query", query)
	if p.Diet != "" && !strings.EqualFold(p.Diet, dietUnspecified) {
		params.Set("diet", p.Diet)
	}
	if len(p.Exclusions) > 0 {
		params.Set("excludeIngredients", strings.Join(p.Exclusions, ","))
	}
	params.Set("number", strconv.Itoa(resultsPerSearch))
	params.Set("offset", strconv.Itoa(c.randIntn(maxOffset/resultsPerSearch+1)*resultsPerSearch))
	params.Set("instructionsRequired", "true")
	params.Set("addRecipeInformation", "false")
	params.Set("apiKey", c.apiKey)

	var resp struct {
		Results []struct {
			ID int `json:"id"`
		} `json:"results"`
	}
	if err := c.get(ctx, "/recipes/complexSearch", params, &resp); err != nil {
		return nil, fmt.Errorf("failed to search recipes: %w", err)
	}

	ids := make([]int, 0, len(resp.Results))
	for _, r := range resp.Results {
		ids = append(ids, r.ID)
	}
	return ids, nil
}

// Information fetches the full detail of one recipe.
func (c *SpoonacularClient) Information(ctx context.Context, id int) (*Recipe, error) {
	params := url.Values{}
	params.Set("includeNutrition", "false")
	params.Set("apiKey", c.apiKey)

	var resp struct {
		ID                  int    `json:"id"`
		Title               string `json:"title"`
		Image               string `json:"image"`
		SourceURL           string `json:"sourceUrl"`
		Instructions        string `json:"instructions"`
		ExtendedIngredients []struct {
			Name string `json:"name"`
		} `json:"extendedIngredients"`
	}
	if err := c.get(ctx, fmt.Sprintf("/recipes/%d/information", id), params, &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch recipe %d: %w", id, err)
	}

	r := &Recipe{
		ID:           id,
		Title:        strings.TrimSpace(resp.Title),
		Image:        resp.Image,
		SourceURL:    resp.SourceURL,
		Instructions: StripHTML(resp.Instructions),
		Ingredients:  []string{},
	}
	if r.Title == "" {
		r.Title = "Untitled"
	}
	if r.Instructions == "" {
		r.Instructions = noInstructions
	}
	for _, ing := range resp.ExtendedIngredients {
		if name := strings.TrimSpace(ing.Name); name != "" {
			r.Ingredients = append(r.Ingredients, name)
		}
	}
	return r, nil
}

func (c *SpoonacularClient) get(ctx context.Context, path string, params url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("spoonacular api error: status=%d body=%s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

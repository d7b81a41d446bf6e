// Package geocode resolves French postal addresses to coordinates using the
// Base Adresse Nationale search API (api-adresse.data.gouv.fr).
package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/undarez/camper-splatchs-sub001/config"
)

var ErrNoResult = errors.New("geocode: no result")

// Result best match for a query
type Result struct {
	Label      string
	City       string
	PostalCode string
	Lat        float64
	Lng        float64
	Score      float64
}

// Client wraps the search endpoint
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient returns nil when geocoding is disabled
func NewClient(cfg *config.GeocodingConfig) *Client {
	if !cfg.Enabled {
		return nil
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

type searchResponse struct {
	Features []feature `json:"features"`
}

type feature struct {
	Geometry struct {
		Coordinates []float64 `json:"coordinates"` // [lng, lat]
	} `json:"geometry"`
	Properties struct {
		Label    string  `json:"label"`
		City     string  `json:"city"`
		Postcode string  `json:"postcode"`
		Score    float64 `json:"score"`
	} `json:"properties"`
}

// Geocode looks up address, optionally narrowed by postal code
func (c *Client) Geocode(ctx context.Context, address, postalCode string) (*Result, error) {
	q := url.Values{}
	q.Set("q", address)
	q.Set("limit", "1")
	if postalCode != "" {
		q.Set("postcode", postalCode)
	}
	u := fmt.Sprintf("%s/search/?%s", c.baseURL, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geocode request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geocode: unexpected status %d", resp.StatusCode)
	}

	var body searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	if len(body.Features) == 0 || len(body.Features[0].Geometry.Coordinates) < 2 {
		return nil, ErrNoResult
	}

	f := body.Features[0]
	return &Result{
		Label:      f.Properties.Label,
		City:       f.Properties.City,
		PostalCode: f.Properties.Postcode,
		Lng:        f.Geometry.Coordinates[0],
		Lat:        f.Geometry.Coordinates[1],
		Score:      f.Properties.Score,
	}, nil
}

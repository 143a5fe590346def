package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/hashicorp/go-retryablehttp"

	"mspro-labs/shop-sync/internal/ai"
	"mspro-labs/shop-sync/internal/models"
)

const defaultEndpoint = "https://nominatim.openstreetmap.org/search"

// Nominatim geocodes free-text locations via the OpenStreetMap Nominatim
// API. It is the offline-friendly alternative to the Gemini geocoder.
type Nominatim struct {
	client   *retryablehttp.Client
	endpoint string
}

// NewNominatim builds a geocoder against the public Nominatim endpoint.
func NewNominatim() *Nominatim {
	client := retryablehttp.NewClient()
	client.RetryMax = 2
	client.Logger = nil
	return &Nominatim{client: client, endpoint: defaultEndpoint}
}

// NewNominatimWithEndpoint is used by tests and self-hosted instances.
func NewNominatimWithEndpoint(endpoint string) *Nominatim {
	n := NewNominatim()
	n.endpoint = endpoint
	return n
}

type nominatimResult struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// ResolveLocation resolves a location string to coordinates. An empty or
// unparseable result substitutes the deterministic fallback coordinate
// with the query text as the label, matching the Gemini backend.
func (n *Nominatim) ResolveLocation(ctx context.Context, locationText string) (models.Place, error) {
	q := url.Values{}
	q.Set("q", locationText)
	q.Set("format", "json")
	q.Set("limit", "1")

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, n.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return models.Place{}, fmt.Errorf("failed to build geocoding request: %w", err)
	}
	req.Header.Set("User-Agent", "shop-sync/1.0")

	resp, err := n.client.Do(req)
	if err != nil {
		return models.Place{}, fmt.Errorf("geocoding request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.Place{}, fmt.Errorf("geocoding request returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return models.Place{}, fmt.Errorf("failed to read geocoding response: %w", err)
	}

	fallback := models.Place{Lat: ai.FallbackLat, Lng: ai.FallbackLng, Name: locationText}

	var results []nominatimResult
	if err := json.Unmarshal(body, &results); err != nil || len(results) == 0 {
		return fallback, nil
	}

	lat, errLat := strconv.ParseFloat(results[0].Lat, 64)
	lng, errLng := strconv.ParseFloat(results[0].Lon, 64)
	if errLat != nil || errLng != nil {
		return fallback, nil
	}

	name := results[0].DisplayName
	if name == "" {
		name = locationText
	}
	return models.Place{Lat: lat, Lng: lng, Name: name}, nil
}

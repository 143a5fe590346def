package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"mspro-labs/shop-sync/internal/models"
)

// Deterministic fallback coordinate used when the geocoding response
// cannot be parsed (New York City).
const (
	FallbackLat = 40.7128
	FallbackLng = -74.0060
)

// Client wraps the GenAI client and implements the Resolution and
// Geocoding service contracts on top of it.
type Client struct {
	genaiClient *genai.Client
	model       string // structured-output calls
	grounded    string // search-grounded calls
}

// NewClient creates a connected AI client.
func NewClient(ctx context.Context, model, groundedModel string) (*Client, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY environment variable is required")
	}

	c, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create AI client: %w", err)
	}

	return &Client{
		genaiClient: c,
		model:       model,
		grounded:    groundedModel,
	}, nil
}

// Close terminates the connection.
func (c *Client) Close() {
	if c.genaiClient != nil {
		c.genaiClient.Close()
	}
}

// Refine normalizes a free-text item name into a canonical name, emoji
// and ambiguity signal. A response that cannot be parsed falls back to
// the original name rather than failing the item.
func (c *Client) Refine(ctx context.Context, itemName string) (models.Refinement, error) {
	m := c.genaiClient.GenerativeModel(c.model)
	m.ResponseMIMEType = "application/json"
	m.ResponseSchema = &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"refinedName": {Type: genai.TypeString},
			"emoji":       {Type: genai.TypeString},
			"isVague":     {Type: genai.TypeBoolean},
			"suggestions": {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
		},
		Required: []string{"refinedName", "emoji", "isVague", "suggestions"},
	}

	prompt := fmt.Sprintf(`Analyze the shopping list entry: %q. Return JSON with refinedName (a canonical product name), emoji (a single fitting emoji), isVague (true when the entry is too ambiguous to price-search directly) and suggestions (2-4 concrete product names when vague, else empty).`, itemName)

	resp, err := m.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return models.Refinement{}, fmt.Errorf("refine request failed: %w", err)
	}

	var out models.Refinement
	if err := json.Unmarshal([]byte(ExtractJSON(responseText(resp))), &out); err != nil || out.RefinedName == "" {
		// Malformed payload: reuse the original name as a safe default.
		return models.Refinement{RefinedName: itemName, Emoji: "🛒"}, nil
	}
	return out, nil
}

// SearchPrices asks for current per-store prices for an item near the
// given location. The grounded model tends to wrap its JSON in markdown
// fences, so extraction is tolerant. An empty list is a valid answer.
func (c *Client) SearchPrices(ctx context.Context, itemName, locationStr string) ([]models.StorePrice, error) {
	m := c.genaiClient.GenerativeModel(c.grounded)
	m.Tools = []*genai.Tool{{GoogleSearchRetrieval: &genai.GoogleSearchRetrieval{}}}

	prompt := fmt.Sprintf(`Find current prices for %q at major supermarkets near %s.
Return ONLY a JSON array of objects with keys: storeName, price (number), currency, and url.
If no specific price is found for a store, omit it from the array.`, itemName, locationStr)

	resp, err := m.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, fmt.Errorf("price search request failed: %w", err)
	}

	return ParsePrices(responseText(resp)), nil
}

// LocateStores resolves approximate branch locations for the given store
// names. Best-effort: distances are coarse estimates and an empty result
// is not an error.
func (c *Client) LocateStores(ctx context.Context, stores []string, lat, lng float64) ([]models.StoreLocation, error) {
	m := c.genaiClient.GenerativeModel(c.model)
	m.ResponseMIMEType = "application/json"
	m.ResponseSchema = &genai.Schema{
		Type: genai.TypeArray,
		Items: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"storeName":  {Type: genai.TypeString},
				"address":    {Type: genai.TypeString},
				"distanceKm": {Type: genai.TypeNumber},
				"mapsUri":    {Type: genai.TypeString},
			},
			Required: []string{"storeName", "distanceKm"},
		},
	}

	prompt := fmt.Sprintf(`Find the nearest branch of each of these stores: %s near lat:%g, lng:%g. Return a JSON array of objects with storeName, address, distanceKm (estimated distance in kilometers) and mapsUri (a Google Maps link).`,
		strings.Join(stores, ", "), lat, lng)

	resp, err := m.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, fmt.Errorf("store location request failed: %w", err)
	}

	var locations []models.StoreLocation
	if err := json.Unmarshal([]byte(ExtractJSON(responseText(resp))), &locations); err != nil {
		return nil, nil
	}
	return locations, nil
}

// ResolveLocation geocodes a free-text location. A response that cannot
// be parsed substitutes the deterministic fallback coordinate with the
// query text as the label, never an error.
func (c *Client) ResolveLocation(ctx context.Context, locationText string) (models.Place, error) {
	m := c.genaiClient.GenerativeModel(c.model)
	m.ResponseMIMEType = "application/json"
	m.ResponseSchema = &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"lat":  {Type: genai.TypeNumber},
			"lng":  {Type: genai.TypeNumber},
			"name": {Type: genai.TypeString},
		},
		Required: []string{"lat", "lng", "name"},
	}

	prompt := fmt.Sprintf(`Find the approximate latitude and longitude for the location: %q. Return JSON.`, locationText)

	resp, err := m.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return models.Place{}, fmt.Errorf("geocoding request failed: %w", err)
	}

	var place models.Place
	if err := json.Unmarshal([]byte(ExtractJSON(responseText(resp))), &place); err != nil || place.Name == "" {
		return models.Place{Lat: FallbackLat, Lng: FallbackLng, Name: locationText}, nil
	}
	return place, nil
}

// responseText concatenates the text parts of a generation response.
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	return sb.String()
}

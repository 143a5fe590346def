package ai

import (
	"strings"

	"github.com/tidwall/gjson"

	"mspro-labs/shop-sync/internal/models"
)

// ExtractJSON strips the markdown fences the model sometimes wraps JSON
// payloads in, even when told not to.
func ExtractJSON(text string) string {
	cleaned := strings.ReplaceAll(text, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	return strings.TrimSpace(cleaned)
}

// ParsePrices extracts store prices from a possibly messy model
// response. Anything unusable yields an empty list, not an error: "no
// stores have pricing" is a normal answer.
func ParsePrices(text string) []models.StorePrice {
	cleaned := ExtractJSON(text)
	parsed := gjson.Parse(cleaned)

	// The payload is supposed to be a bare array, but tolerate the
	// occasional {"prices": [...]} style wrapper too.
	arr := parsed
	if !parsed.IsArray() {
		arr = parsed.Get("prices")
		if !arr.IsArray() {
			return []models.StorePrice{}
		}
	}

	prices := []models.StorePrice{}
	arr.ForEach(func(_, entry gjson.Result) bool {
		storeName := strings.TrimSpace(entry.Get("storeName").String())
		price := entry.Get("price")
		if storeName == "" || !price.Exists() || price.Float() < 0 {
			return true
		}
		prices = append(prices, models.StorePrice{
			StoreName: storeName,
			Price:     price.Float(),
			Currency:  entry.Get("currency").String(),
			URL:       entry.Get("url").String(),
		})
		return true
	})
	return prices
}

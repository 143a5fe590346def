package strategy

import (
	"sort"
	"strings"

	"mspro-labs/shop-sync/internal/models"
)

// StoreSummary aggregates everything known about one store identity.
type StoreSummary struct {
	Name       string             `json:"name"`
	Total      float64            `json:"total"`
	Count      int                `json:"count"`
	ItemPrices map[string]float64 `json:"itemPrices"`
	DistanceKm *float64           `json:"distanceKm"`
}

// Analysis is the ranked view over all stores with at least one price.
// Cheapest and Closest annotate the ranking; they are not separate
// result sets.
type Analysis struct {
	Stores     []StoreSummary `json:"stores"`
	Top        []StoreSummary `json:"top"`
	ReadyItems int            `json:"readyItems"`
	Cheapest   string         `json:"cheapest"`
	Closest    string         `json:"closest,omitempty"`
}

// TopStores is how many ranked stores are offered as strategy candidates.
const TopStores = 3

// Identity derives the grouping key for a raw store name: the substring
// before the first comma, trimmed ("Walmart, 5th Ave" -> "Walmart").
func Identity(storeName string) string {
	name, _, _ := strings.Cut(storeName, ",")
	return strings.TrimSpace(name)
}

// Analyze recomputes the full store ranking from scratch. It is a pure
// function of its inputs and returns nil when no ready item has prices.
//
// Ranking is coverage-first: a store that stocks more of the list beats a
// cheaper store that stocks less. Equal coverage ranks by ascending
// total, then by name so the order is stable.
func Analyze(items []models.ShoppingItem, locations []models.StoreLocation) *Analysis {
	type accum struct {
		total      float64
		count      int
		itemPrices map[string]float64
	}

	byStore := make(map[string]*accum)
	readyItems := 0

	for _, item := range items {
		if item.Status != models.StatusReady || len(item.Prices) == 0 {
			continue
		}
		readyItems++
		itemName := item.DisplayName()
		for _, p := range item.Prices {
			name := Identity(p.StoreName)
			if name == "" {
				continue
			}
			acc := byStore[name]
			if acc == nil {
				acc = &accum{itemPrices: make(map[string]float64)}
				byStore[name] = acc
			}
			acc.total += p.Price
			acc.count++
			acc.itemPrices[itemName] = p.Price
		}
	}

	if readyItems == 0 || len(byStore) == 0 {
		return nil
	}

	stores := make([]StoreSummary, 0, len(byStore))
	for name, acc := range byStore {
		stores = append(stores, StoreSummary{
			Name:       name,
			Total:      acc.total,
			Count:      acc.count,
			ItemPrices: acc.itemPrices,
			DistanceKm: matchDistance(name, locations),
		})
	}

	sort.Slice(stores, func(i, j int) bool {
		if stores[i].Count != stores[j].Count {
			return stores[i].Count > stores[j].Count
		}
		if stores[i].Total != stores[j].Total {
			return stores[i].Total < stores[j].Total
		}
		return stores[i].Name < stores[j].Name
	})

	top := stores
	if len(top) > TopStores {
		top = top[:TopStores]
	}

	analysis := &Analysis{
		Stores:     stores,
		Top:        top,
		ReadyItems: readyItems,
		Cheapest:   cheapest(stores),
		Closest:    closest(stores),
	}
	return analysis
}

// matchDistance attaches a cached distance by fuzzy bidirectional
// substring match: the cache entry name contains the store identity, or
// vice versa, case-insensitive. First match wins.
func matchDistance(name string, locations []models.StoreLocation) *float64 {
	lower := strings.ToLower(name)
	for _, loc := range locations {
		cached := strings.ToLower(loc.StoreName)
		if cached == "" {
			continue
		}
		if strings.Contains(cached, lower) || strings.Contains(lower, cached) {
			d := loc.DistanceKm
			return &d
		}
	}
	return nil
}

func cheapest(stores []StoreSummary) string {
	best := ""
	bestTotal := 0.0
	for _, s := range stores {
		if best == "" || s.Total < bestTotal {
			best = s.Name
			bestTotal = s.Total
		}
	}
	return best
}

func closest(stores []StoreSummary) string {
	best := ""
	bestDist := 0.0
	for _, s := range stores {
		if s.DistanceKm == nil {
			continue
		}
		if best == "" || *s.DistanceKm < bestDist {
			best = s.Name
			bestDist = *s.DistanceKm
		}
	}
	return best
}

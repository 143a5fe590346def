package strategy

import (
	"testing"

	"mspro-labs/shop-sync/internal/models"
)

func readyItem(id, name string, prices ...models.StorePrice) models.ShoppingItem {
	return models.ShoppingItem{
		ID:           id,
		OriginalName: name,
		RefinedName:  name,
		Status:       models.StatusReady,
		Prices:       prices,
	}
}

func TestIdentity(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
	}{
		{"Tesco, Oxford St", "Tesco"},
		{"Walmart, 5th Ave", "Walmart"},
		{"Target", "Target"},
		{"  Aldi , Hauptstr. 1", "Aldi"},
		{"", ""},
	}
	for _, tc := range testCases {
		if got := Identity(tc.input); got != tc.expected {
			t.Errorf("Identity(%q): expected %q, got %q", tc.input, tc.expected, got)
		}
	}
}

func TestCoverageBeatsPrice(t *testing.T) {
	// A is at X and Y, B only at X. X must rank first even though its
	// total is checked independently of price.
	items := []models.ShoppingItem{
		readyItem("a", "Avocado",
			models.StorePrice{StoreName: "StoreX", Price: 3.0},
			models.StorePrice{StoreName: "StoreY", Price: 1.0},
		),
		readyItem("b", "Bread",
			models.StorePrice{StoreName: "StoreX", Price: 2.0},
		),
	}

	analysis := Analyze(items, nil)
	if analysis == nil {
		t.Fatal("Expected an analysis")
	}
	if analysis.Stores[0].Name != "StoreX" {
		t.Errorf("Expected StoreX ranked first (coverage 2), got %q", analysis.Stores[0].Name)
	}
	if analysis.Stores[0].Count != 2 || analysis.Stores[1].Count != 1 {
		t.Errorf("Coverage counts wrong: %+v", analysis.Stores)
	}
	if analysis.Cheapest != "StoreY" {
		t.Errorf("Cheapest should be StoreY (total 1.00), got %q", analysis.Cheapest)
	}
}

func TestEqualCoverageRanksByTotal(t *testing.T) {
	items := []models.ShoppingItem{
		readyItem("a", "Milk",
			models.StorePrice{StoreName: "Pricey", Price: 4.0},
			models.StorePrice{StoreName: "Budget", Price: 2.5},
		),
	}

	analysis := Analyze(items, nil)
	if analysis.Stores[0].Name != "Budget" || analysis.Stores[1].Name != "Pricey" {
		t.Errorf("Tie-break by total failed: %+v", analysis.Stores)
	}
}

func TestAvocadoScenario(t *testing.T) {
	items := []models.ShoppingItem{
		readyItem("a", "Avocado",
			models.StorePrice{StoreName: "Walmart, 5th", Price: 1.2},
			models.StorePrice{StoreName: "Target", Price: 1.5},
		),
	}

	analysis := Analyze(items, nil)
	if analysis == nil {
		t.Fatal("Expected an analysis")
	}
	if len(analysis.Stores) != 2 {
		t.Fatalf("Expected 2 stores, got %d", len(analysis.Stores))
	}

	byName := map[string]StoreSummary{}
	for _, s := range analysis.Stores {
		byName[s.Name] = s
	}
	if w := byName["Walmart"]; w.Total != 1.2 || w.Count != 1 {
		t.Errorf("Walmart summary wrong: %+v", w)
	}
	if tg := byName["Target"]; tg.Total != 1.5 || tg.Count != 1 {
		t.Errorf("Target summary wrong: %+v", tg)
	}
	if analysis.Cheapest != "Walmart" {
		t.Errorf("Cheapest should be Walmart, got %q", analysis.Cheapest)
	}
}

func TestDistanceMatchingAndClosest(t *testing.T) {
	items := []models.ShoppingItem{
		readyItem("a", "Eggs",
			models.StorePrice{StoreName: "Walmart, 5th Ave", Price: 2.0},
			models.StorePrice{StoreName: "Tesco Express", Price: 2.2},
		),
	}
	locations := []models.StoreLocation{
		{StoreName: "Walmart Supercenter", DistanceKm: 3.1},
		{StoreName: "tesco", DistanceKm: 0.4},
	}

	analysis := Analyze(items, locations)
	for _, s := range analysis.Stores {
		switch s.Name {
		case "Walmart":
			if s.DistanceKm == nil || *s.DistanceKm != 3.1 {
				t.Errorf("Walmart distance wrong: %+v", s.DistanceKm)
			}
		case "Tesco Express":
			if s.DistanceKm == nil || *s.DistanceKm != 0.4 {
				t.Errorf("Tesco distance wrong: %+v", s.DistanceKm)
			}
		}
	}
	if analysis.Closest != "Tesco Express" {
		t.Errorf("Closest should be Tesco Express, got %q", analysis.Closest)
	}
}

func TestNoDistanceLeavesNil(t *testing.T) {
	items := []models.ShoppingItem{
		readyItem("a", "Eggs", models.StorePrice{StoreName: "Kroger", Price: 2.0}),
	}

	analysis := Analyze(items, nil)
	if analysis.Stores[0].DistanceKm != nil {
		t.Errorf("Expected nil distance with an empty cache, got %v", *analysis.Stores[0].DistanceKm)
	}
	if analysis.Closest != "" {
		t.Errorf("Closest should be empty with no distances, got %q", analysis.Closest)
	}
}

func TestTopThreeLimit(t *testing.T) {
	items := []models.ShoppingItem{
		readyItem("a", "Rice",
			models.StorePrice{StoreName: "A", Price: 1},
			models.StorePrice{StoreName: "B", Price: 2},
			models.StorePrice{StoreName: "C", Price: 3},
			models.StorePrice{StoreName: "D", Price: 4},
		),
	}

	analysis := Analyze(items, nil)
	if len(analysis.Top) != TopStores {
		t.Errorf("Expected top %d stores, got %d", TopStores, len(analysis.Top))
	}
	if len(analysis.Stores) != 4 {
		t.Errorf("Expected 4 ranked stores, got %d", len(analysis.Stores))
	}
}

func TestIgnoresNonReadyAndEmptyItems(t *testing.T) {
	items := []models.ShoppingItem{
		{ID: "a", OriginalName: "milk", Status: models.StatusSearching},
		{ID: "b", OriginalName: "tea", Status: models.StatusReady}, // ready but no prices
		{ID: "c", OriginalName: "jam", Status: models.StatusVague, VagueSuggestions: []string{"Strawberry Jam"}},
	}

	if analysis := Analyze(items, nil); analysis != nil {
		t.Errorf("Expected nil analysis, got %+v", analysis)
	}
}

func TestLastWriteWinsOnDuplicateStoreItem(t *testing.T) {
	items := []models.ShoppingItem{
		readyItem("a", "Butter",
			models.StorePrice{StoreName: "Aldi, North", Price: 2.0},
			models.StorePrice{StoreName: "Aldi, South", Price: 1.8},
		),
	}

	analysis := Analyze(items, nil)
	s := analysis.Stores[0]
	if s.Name != "Aldi" {
		t.Fatalf("Expected a single Aldi group, got %+v", analysis.Stores)
	}
	// Both quotes count toward total and coverage, but the per-item map
	// keeps only the last one.
	if s.Total != 3.8 || s.Count != 2 {
		t.Errorf("Aggregate wrong: total=%f count=%d", s.Total, s.Count)
	}
	if s.ItemPrices["Butter"] != 1.8 {
		t.Errorf("Expected last write to win, got %f", s.ItemPrices["Butter"])
	}
}

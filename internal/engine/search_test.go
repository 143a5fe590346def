package engine

import (
	"context"
	"testing"
	"time"

	"mspro-labs/shop-sync/internal/models"
)

func TestSearchCooldownSpacing(t *testing.T) {
	const cooldown = 60 * time.Millisecond

	resolver := &fakeResolver{
		search: func(name, loc string) ([]models.StorePrice, error) {
			return []models.StorePrice{{StoreName: "Target", Price: 1}}, nil
		},
	}
	e := newTestEngine(t, resolver, nil, nil, Options{Cooldown: cooldown})

	for _, name := range []string{"milk", "bread", "eggs"} {
		if _, err := e.AddItem(name); err != nil {
			t.Fatalf("AddItem(%q) failed: %v", name, err)
		}
	}
	settle(t, e)

	resolver.mu.Lock()
	starts := append([]time.Time(nil), resolver.searchStarts...)
	overlapped := resolver.overlapped
	resolver.mu.Unlock()

	if overlapped {
		t.Fatal("Two price-search requests were in flight at once")
	}
	if len(starts) != 3 {
		t.Fatalf("Expected 3 search requests, got %d", len(starts))
	}
	for i := 1; i < len(starts); i++ {
		if gap := starts[i].Sub(starts[i-1]); gap < cooldown {
			t.Errorf("Requests %d and %d only %v apart, cooldown is %v", i-1, i, gap, cooldown)
		}
	}
}

func TestElevatedModeUsesShortCooldown(t *testing.T) {
	resolver := &fakeResolver{
		search: func(name, loc string) ([]models.StorePrice, error) {
			return []models.StorePrice{{StoreName: "Tesco", Price: 1}}, nil
		},
	}
	opts := Options{
		Cooldown:         5 * time.Second, // would blow the settle deadline
		ElevatedCooldown: 5 * time.Millisecond,
		Elevated:         func(ctx context.Context) bool { return true },
	}
	e := newTestEngine(t, resolver, nil, nil, opts)

	for _, name := range []string{"rice", "beans", "salt"} {
		e.AddItem(name)
	}

	start := time.Now()
	settle(t, e)
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("Elevated mode should have finished quickly, took %v", elapsed)
	}

	resolver.mu.Lock()
	defer resolver.mu.Unlock()
	if len(resolver.searchStarts) != 3 {
		t.Errorf("Expected 3 search requests, got %d", len(resolver.searchStarts))
	}
}

func TestNewSearchingItemWakesIdleLoop(t *testing.T) {
	resolver := &fakeResolver{
		search: func(name, loc string) ([]models.StorePrice, error) {
			return []models.StorePrice{{StoreName: "Publix", Price: 2}}, nil
		},
	}
	e := newTestEngine(t, resolver, nil, nil, Options{Cooldown: 5 * time.Millisecond})

	// First item drains; the loop goes idle.
	e.AddItem("apples")
	settle(t, e)

	// A later item must be picked up without any external nudge.
	id, _ := e.AddItem("pears")
	settle(t, e)

	item, _ := e.Item(id)
	if item.Status != models.StatusReady {
		t.Fatalf("Idle loop never picked up new work, item is %s", item.Status)
	}
}

func TestSearchUsesCoordinatesWhenAvailable(t *testing.T) {
	gotLoc := make(chan string, 1)
	resolver := &fakeResolver{
		search: func(name, loc string) ([]models.StorePrice, error) {
			select {
			case gotLoc <- loc:
			default:
			}
			return []models.StorePrice{}, nil
		},
	}
	st := &memStore{snap: &models.Snapshot{
		Preferences: models.UserPreferences{
			Currency: "USD", Units: "Metric", Theme: "light",
			Location:     &models.LatLng{Lat: 51.5, Lng: -0.12},
			LocationName: "London",
		},
	}}
	e := newTestEngine(t, resolver, nil, st, Options{})

	e.AddItem("tea")
	settle(t, e)

	if loc := <-gotLoc; loc != "51.5, -0.12" {
		t.Errorf("Expected coordinate string, got %q", loc)
	}
}

func TestSearchFallsBackToLocationLabel(t *testing.T) {
	gotLoc := make(chan string, 1)
	resolver := &fakeResolver{
		search: func(name, loc string) ([]models.StorePrice, error) {
			select {
			case gotLoc <- loc:
			default:
			}
			return []models.StorePrice{}, nil
		},
	}
	st := &memStore{snap: &models.Snapshot{
		Preferences: models.UserPreferences{
			Currency: "USD", Units: "Metric", Theme: "light",
			LocationName: "Global Search",
		},
	}}
	e := newTestEngine(t, resolver, nil, st, Options{})

	e.AddItem("coffee")
	settle(t, e)

	if loc := <-gotLoc; loc != "Global Search" {
		t.Errorf("Expected label fallback, got %q", loc)
	}
}

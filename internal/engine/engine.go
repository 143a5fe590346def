// Package engine owns the shopping list and drives each item through the
// processing pipeline: refinement (concurrent), optional user
// disambiguation, and serial rate-limited price search. All state lives
// behind one mutex and every mutation persists the full snapshot.
package engine

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"mspro-labs/shop-sync/internal/models"
	"mspro-labs/shop-sync/internal/strategy"
)

// Resolver is the consumed Resolution Service contract.
type Resolver interface {
	Refine(ctx context.Context, itemName string) (models.Refinement, error)
	SearchPrices(ctx context.Context, itemName, locationStr string) ([]models.StorePrice, error)
	LocateStores(ctx context.Context, stores []string, lat, lng float64) ([]models.StoreLocation, error)
}

// Geocoder is the consumed Geocoding Service contract.
type Geocoder interface {
	ResolveLocation(ctx context.Context, locationText string) (models.Place, error)
}

// SnapshotStore is the consumed Local Store contract.
type SnapshotStore interface {
	Load() (models.Snapshot, error)
	Save(snap models.Snapshot) error
	Clear() error
}

// Options tunes the engine and injects host capabilities.
type Options struct {
	// Cooldown between price-search requests in standard mode.
	Cooldown time.Duration
	// ElevatedCooldown applies when the Elevated check reports true.
	ElevatedCooldown time.Duration
	// Elevated is consulted once before each price-search attempt.
	// Nil means never elevated.
	Elevated func(ctx context.Context) bool
	// Locate is the host's device geolocation, queried at startup when
	// no location is set. Nil means unavailable.
	Locate func(ctx context.Context) (models.LatLng, error)
	// DefaultStores seeds store-location refreshes before any ranking
	// exists.
	DefaultStores []string
	Log           logrus.FieldLogger
}

// Engine is the application core. Construct with New, then Start to run
// the background schedulers, and Close on teardown.
type Engine struct {
	resolver Resolver
	geocoder Geocoder
	store    SnapshotStore
	opts     Options
	log      logrus.FieldLogger

	mu        sync.Mutex
	items     []models.ShoppingItem
	prefs     models.UserPreferences
	storeLocs []models.StoreLocation
	searching bool // price-search gate: request in flight or cooling down
	timer     *time.Timer

	kick   chan struct{}
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New loads the persisted snapshot and builds an engine around it.
// Loading failure degrades to the empty snapshot.
func New(resolver Resolver, geocoder Geocoder, store SnapshotStore, opts Options) (*Engine, error) {
	if resolver == nil || store == nil {
		return nil, fmt.Errorf("engine requires a resolver and a snapshot store")
	}
	if opts.Cooldown <= 0 {
		opts.Cooldown = 32 * time.Second
	}
	if opts.ElevatedCooldown <= 0 {
		opts.ElevatedCooldown = time.Second
	}
	log := opts.Log
	if log == nil {
		l := logrus.New()
		l.SetLevel(logrus.WarnLevel)
		log = l
	}

	snap, err := store.Load()
	if err != nil {
		log.Warnf("Failed to load snapshot, starting empty: %v", err)
		snap = models.EmptySnapshot()
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Engine{
		resolver:  resolver,
		geocoder:  geocoder,
		store:     store,
		opts:      opts,
		log:       log,
		items:     snap.Items,
		prefs:     snap.Preferences,
		storeLocs: snap.StoreLocations,
		kick:      make(chan struct{}, 1),
		ctx:       ctx,
		cancel:    cancel,
	}, nil
}

// Start launches the background schedulers and resumes any work the
// previous process left mid-flight: items stranded in refining go back to
// pending and are re-dispatched, searching items are picked up by the
// price loop.
func (e *Engine) Start() {
	e.wg.Add(1)
	go e.runSearchLoop()

	e.mu.Lock()
	var resume []models.ShoppingItem
	for idx := range e.items {
		if e.items[idx].Status == models.StatusRefining {
			e.items[idx].Status = models.StatusPending
		}
		if e.items[idx].Status == models.StatusPending {
			resume = append(resume, e.items[idx])
		}
	}
	e.mu.Unlock()

	for _, item := range resume {
		e.dispatchRefine(item.ID, item.OriginalName)
	}
	e.kickSearch()

	if e.opts.Locate != nil {
		e.wg.Add(1)
		go func() {
			defer e.wg.Done()
			e.detectLocation()
		}()
	}
}

// Close tears the engine down: cancels in-flight requests, clears any
// pending cooldown timer and waits for the schedulers to exit.
func (e *Engine) Close() {
	e.cancel()
	e.mu.Lock()
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
	e.mu.Unlock()
	e.wg.Wait()
}

// AddItem appends a new pending entry (most recent first) and hands it
// straight to the refinement scheduler.
func (e *Engine) AddItem(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("item name is empty")
	}

	item := models.ShoppingItem{
		ID:           uuid.NewString(),
		OriginalName: name,
		Status:       models.StatusPending,
		Prices:       []models.StorePrice{},
	}

	e.mu.Lock()
	e.items = append([]models.ShoppingItem{item}, e.items...)
	e.persistLocked()
	e.mu.Unlock()

	e.log.Debugf("Added item %s (%q)", item.ID, name)
	e.dispatchRefine(item.ID, item.OriginalName)
	return item.ID, nil
}

// RemoveItem deletes an item unconditionally. Removing an id that is
// absent (or mid-request) is not an error; in-flight results for it are
// discarded when they arrive.
func (e *Engine) RemoveItem(id string) {
	e.mu.Lock()
	kept := e.items[:0]
	for _, item := range e.items {
		if item.ID != id {
			kept = append(kept, item)
		}
	}
	e.items = kept
	e.persistLocked()
	e.mu.Unlock()
	e.kickSearch()
}

// SelectVagueSuggestion resolves a vague item with the user's choice and
// queues it for price search.
func (e *Engine) SelectVagueSuggestion(id, suggestion string) error {
	e.mu.Lock()
	idx := e.indexLocked(id)
	if idx < 0 {
		e.mu.Unlock()
		return fmt.Errorf("item %s not found", id)
	}
	if e.items[idx].Status != models.StatusVague {
		e.mu.Unlock()
		return fmt.Errorf("item %s is not awaiting disambiguation", id)
	}
	e.items[idx].RefinedName = suggestion
	e.items[idx].Status = models.StatusSearching
	e.items[idx].VagueSuggestions = nil
	e.persistLocked()
	e.mu.Unlock()

	e.kickSearch()
	return nil
}

// PreferenceUpdate carries partial preference changes; empty fields keep
// their current value.
type PreferenceUpdate struct {
	Currency string
	Units    string
	Theme    string
}

// UpdatePreferences applies a partial preference update.
func (e *Engine) UpdatePreferences(update PreferenceUpdate) error {
	if update.Currency != "" {
		if _, ok := models.CurrencySymbols[update.Currency]; !ok {
			return fmt.Errorf("unsupported currency: %s", update.Currency)
		}
	}
	if update.Units != "" && update.Units != "Metric" && update.Units != "Imperial" {
		return fmt.Errorf("unsupported units: %s", update.Units)
	}

	e.mu.Lock()
	if update.Currency != "" {
		e.prefs.Currency = update.Currency
	}
	if update.Units != "" {
		e.prefs.Units = update.Units
	}
	if update.Theme != "" {
		e.prefs.Theme = update.Theme
	}
	e.persistLocked()
	e.mu.Unlock()
	return nil
}

// UpdateLocation geocodes a free-text location, overwrites the stored
// coordinates and label, and invalidates the store-location cache since
// cached distances no longer apply.
func (e *Engine) UpdateLocation(ctx context.Context, query string) (models.Place, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return models.Place{}, fmt.Errorf("location query is empty")
	}
	if e.geocoder == nil {
		return models.Place{}, fmt.Errorf("no geocoder configured")
	}

	place, err := e.geocoder.ResolveLocation(ctx, query)
	if err != nil {
		return models.Place{}, fmt.Errorf("failed to resolve location: %w", err)
	}

	e.mu.Lock()
	e.prefs.Location = &models.LatLng{Lat: place.Lat, Lng: place.Lng}
	e.prefs.LocationName = place.Name
	e.storeLocs = nil
	e.persistLocked()
	e.mu.Unlock()

	e.log.Infof("📍 Location set to %s (%g, %g)", place.Name, place.Lat, place.Lng)
	e.kickSearch()
	return place, nil
}

// detectLocation asks the host's device geolocation once at startup.
func (e *Engine) detectLocation() {
	e.mu.Lock()
	hasLocation := e.prefs.Location != nil
	e.mu.Unlock()
	if hasLocation {
		return
	}

	pos, err := e.opts.Locate(e.ctx)

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.prefs.Location != nil {
		// A manual update won the race.
		return
	}
	if err != nil {
		// Fall back to global search, but never clobber a label the
		// user chose.
		if e.prefs.LocationName == models.DefaultLocationName {
			e.prefs.LocationName = models.FallbackLocationName
			e.persistLocked()
		}
		return
	}
	e.prefs.Location = &pos
	e.prefs.LocationName = "Current Location"
	e.persistLocked()
}

// RefreshStoreLocations repopulates the store-location cache for the
// currently ranked stores (or the default store list before any ranking
// exists). Best-effort; requires coordinates.
func (e *Engine) RefreshStoreLocations(ctx context.Context) error {
	e.mu.Lock()
	loc := e.prefs.Location
	analysis := strategy.Analyze(e.items, e.storeLocs)
	e.mu.Unlock()

	if loc == nil {
		return fmt.Errorf("no coordinates available for store lookup")
	}

	var names []string
	if analysis != nil {
		for _, s := range analysis.Stores {
			names = append(names, s.Name)
		}
	}
	if len(names) == 0 {
		names = e.opts.DefaultStores
	}
	if len(names) == 0 {
		return nil
	}

	locations, err := e.resolver.LocateStores(ctx, names, loc.Lat, loc.Lng)
	if err != nil {
		return fmt.Errorf("store location lookup failed: %w", err)
	}

	e.mu.Lock()
	e.storeLocs = locations
	e.persistLocked()
	e.mu.Unlock()
	return nil
}

// ClearAll wipes the list, the location cache and the persisted blob.
// Preferences survive in memory and are re-persisted.
func (e *Engine) ClearAll() {
	e.mu.Lock()
	e.items = nil
	e.storeLocs = nil
	if err := e.store.Clear(); err != nil {
		e.log.Warnf("Failed to clear persisted snapshot: %v", err)
	}
	e.persistLocked()
	e.mu.Unlock()
}

// Items returns a copy of the current list, most recent first.
func (e *Engine) Items() []models.ShoppingItem {
	e.mu.Lock()
	defer e.mu.Unlock()
	return copyItems(e.items)
}

// Item returns a single item by id.
func (e *Engine) Item(id string) (models.ShoppingItem, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	idx := e.indexLocked(id)
	if idx < 0 {
		return models.ShoppingItem{}, false
	}
	return e.items[idx], true
}

// Preferences returns the current user preferences.
func (e *Engine) Preferences() models.UserPreferences {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.prefs
}

// StoreLocations returns a copy of the store-location cache.
func (e *Engine) StoreLocations() []models.StoreLocation {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]models.StoreLocation, len(e.storeLocs))
	copy(out, e.storeLocs)
	return out
}

// Analysis recomputes the store ranking from the current state. Nil when
// no ready item has prices.
func (e *Engine) Analysis() *strategy.Analysis {
	e.mu.Lock()
	defer e.mu.Unlock()
	return strategy.Analyze(e.items, e.storeLocs)
}

// Settle blocks until no item has pipeline work left, or the context
// expires. Used by one-shot hosts (CLI) and tests.
func (e *Engine) Settle(ctx context.Context) error {
	ticker := time.NewTicker(25 * time.Millisecond)
	defer ticker.Stop()
	for {
		if !e.hasWork() {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-e.ctx.Done():
			return e.ctx.Err()
		case <-ticker.C:
		}
	}
}

func (e *Engine) hasWork() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, item := range e.items {
		if item.InFlight() {
			return true
		}
	}
	return false
}

// indexLocked finds an item by id; callers hold the lock.
func (e *Engine) indexLocked(id string) int {
	for i := range e.items {
		if e.items[i].ID == id {
			return i
		}
	}
	return -1
}

// persistLocked saves the full snapshot; callers hold the lock.
// Persistence failure degrades to a warning, never crashes the pipeline.
func (e *Engine) persistLocked() {
	snap := models.Snapshot{
		Items:          copyItems(e.items),
		Preferences:    e.prefs,
		StoreLocations: append([]models.StoreLocation(nil), e.storeLocs...),
	}
	if err := e.store.Save(snap); err != nil {
		e.log.Warnf("Failed to persist snapshot: %v", err)
	}
}

func copyItems(items []models.ShoppingItem) []models.ShoppingItem {
	out := make([]models.ShoppingItem, len(items))
	copy(out, items)
	return out
}

package engine

import (
	"fmt"
	"time"

	"mspro-labs/shop-sync/internal/models"
)

// The price-search path is rate-limited upstream, so requests are
// strictly serialized: one gate, one request in flight, and a mandatory
// cooldown between the end of one request and the start of the next.

// kickSearch nudges the search loop; coalesces while a kick is pending.
func (e *Engine) kickSearch() {
	select {
	case e.kick <- struct{}{}:
	default:
	}
}

// runSearchLoop waits for kicks and processes at most one searching item
// per wakeup. Every state change that could create work sends a kick, so
// the loop never stalls while a searching item exists.
func (e *Engine) runSearchLoop() {
	defer e.wg.Done()
	for {
		select {
		case <-e.ctx.Done():
			return
		case <-e.kick:
			e.searchNext()
		}
	}
}

// searchNext runs one price-search attempt if the gate is free and a
// searching item exists.
func (e *Engine) searchNext() {
	e.mu.Lock()
	if e.searching {
		e.mu.Unlock()
		return
	}
	idx := -1
	for i := range e.items {
		if e.items[i].Status == models.StatusSearching {
			idx = i
			break
		}
	}
	if idx < 0 {
		e.mu.Unlock()
		return
	}
	e.searching = true
	id := e.items[idx].ID
	query := e.items[idx].DisplayName()
	locationStr := locationString(e.prefs)
	e.mu.Unlock()

	// Capability check happens on demand, once per attempt.
	elevated := e.opts.Elevated != nil && e.opts.Elevated(e.ctx)

	e.log.Debugf("Searching prices for %q near %s", query, locationStr)
	prices, err := e.resolver.SearchPrices(e.ctx, query, locationStr)
	e.applySearchResult(id, prices, err)

	cooldown := e.opts.Cooldown
	if elevated {
		cooldown = e.opts.ElevatedCooldown
	}
	e.startCooldown(cooldown)
}

// startCooldown holds the gate for the given duration, then releases it
// and kicks the loop. The timer is tracked so Close can cancel it.
func (e *Engine) startCooldown(d time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.ctx.Err() != nil {
		return
	}
	e.timer = time.AfterFunc(d, func() {
		e.mu.Lock()
		e.searching = false
		e.timer = nil
		e.mu.Unlock()
		e.kickSearch()
	})
}

// applySearchResult records a price-search outcome. A success stores the
// price list verbatim, empty included. A removed item discards silently.
func (e *Engine) applySearchResult(id string, prices []models.StorePrice, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	idx := e.indexLocked(id)
	if idx < 0 {
		e.log.Debugf("Discarding search result for removed item %s", id)
		return
	}
	if err != nil {
		e.items[idx].Status = models.StatusError
		e.items[idx].ErrorMessage = err.Error()
		e.log.Warnf("Price search failed for %q: %v", e.items[idx].DisplayName(), err)
	} else {
		if prices == nil {
			prices = []models.StorePrice{}
		}
		e.items[idx].Prices = prices
		e.items[idx].Status = models.StatusReady
	}
	e.persistLocked()
}

// locationString prefers coordinates, falling back to the textual label.
func locationString(prefs models.UserPreferences) string {
	if prefs.Location != nil {
		return fmt.Sprintf("%g, %g", prefs.Location.Lat, prefs.Location.Lng)
	}
	return prefs.LocationName
}

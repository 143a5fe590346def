package engine

import "mspro-labs/shop-sync/internal/models"

// dispatchRefine claims a pending item and requests its refinement in a
// fresh goroutine. Refinements fan out: each request is independent and
// the failure of one never affects the others.
func (e *Engine) dispatchRefine(id, name string) {
	e.mu.Lock()
	idx := e.indexLocked(id)
	if idx < 0 || e.items[idx].Status != models.StatusPending {
		// Already claimed or removed; each pending period is refined
		// at most once.
		e.mu.Unlock()
		return
	}
	e.items[idx].Status = models.StatusRefining
	e.persistLocked()
	e.mu.Unlock()

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		result, err := e.resolver.Refine(e.ctx, name)
		e.applyRefinement(id, result, err)
	}()
}

// applyRefinement applies a refinement outcome. If the item was removed
// while the request was in flight the result is discarded silently.
func (e *Engine) applyRefinement(id string, result models.Refinement, err error) {
	e.mu.Lock()
	idx := e.indexLocked(id)
	if idx < 0 {
		e.mu.Unlock()
		e.log.Debugf("Discarding refinement for removed item %s", id)
		return
	}

	searchable := false
	switch {
	case err != nil:
		e.items[idx].Status = models.StatusError
		e.items[idx].ErrorMessage = err.Error()
		e.log.Warnf("Refinement failed for %q: %v", e.items[idx].OriginalName, err)
	case result.IsVague:
		e.items[idx].RefinedName = result.RefinedName
		e.items[idx].Emoji = result.Emoji
		e.items[idx].VagueSuggestions = result.Suggestions
		e.items[idx].Status = models.StatusVague
	default:
		e.items[idx].RefinedName = result.RefinedName
		e.items[idx].Emoji = result.Emoji
		e.items[idx].VagueSuggestions = nil
		e.items[idx].Status = models.StatusSearching
		searchable = true
	}
	e.persistLocked()
	e.mu.Unlock()

	if searchable {
		e.kickSearch()
	}
}

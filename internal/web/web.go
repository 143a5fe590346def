// Package web exposes the engine over a small JSON API. Handlers stay
// thin: every endpoint maps 1:1 onto an engine entrypoint and renders
// read-only snapshots.
package web

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"mspro-labs/shop-sync/internal/engine"
)

// Handler wires HTTP endpoints to the engine.
type Handler struct {
	engine *engine.Engine
	log    logrus.FieldLogger
}

// NewHandler constructs the API handler set.
func NewHandler(e *engine.Engine, log logrus.FieldLogger) *Handler {
	return &Handler{engine: e, log: log}
}

// Router assembles the chi router with standard middleware.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/items", h.listItems)
		r.Post("/items", h.addItem)
		r.Delete("/items/{id}", h.removeItem)
		r.Post("/items/{id}/choose", h.chooseSuggestion)
		r.Get("/analysis", h.getAnalysis)
		r.Get("/preferences", h.getPreferences)
		r.Put("/preferences", h.updatePreferences)
		r.Put("/location", h.updateLocation)
		r.Get("/stores", h.listStoreLocations)
		r.Post("/stores/refresh", h.refreshStoreLocations)
		r.Post("/clear", h.clearAll)
	})

	return r
}

func (h *Handler) listItems(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.engine.Items())
}

func (h *Handler) addItem(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	id, err := h.engine.AddItem(req.Name)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	item, _ := h.engine.Item(id)
	h.writeJSON(w, http.StatusCreated, item)
}

func (h *Handler) removeItem(w http.ResponseWriter, r *http.Request) {
	h.engine.RemoveItem(chi.URLParam(r, "id"))
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) chooseSuggestion(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Suggestion string `json:"suggestion"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := h.engine.SelectVagueSuggestion(chi.URLParam(r, "id"), req.Suggestion); err != nil {
		h.writeError(w, http.StatusConflict, err.Error())
		return
	}
	item, _ := h.engine.Item(chi.URLParam(r, "id"))
	h.writeJSON(w, http.StatusOK, item)
}

func (h *Handler) getAnalysis(w http.ResponseWriter, r *http.Request) {
	analysis := h.engine.Analysis()
	if analysis == nil {
		h.writeJSON(w, http.StatusOK, map[string]any{"stores": []any{}})
		return
	}
	h.writeJSON(w, http.StatusOK, analysis)
}

func (h *Handler) getPreferences(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.engine.Preferences())
}

func (h *Handler) updatePreferences(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Currency string `json:"currency"`
		Units    string `json:"units"`
		Theme    string `json:"theme"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	update := engine.PreferenceUpdate{Currency: req.Currency, Units: req.Units, Theme: req.Theme}
	if err := h.engine.UpdatePreferences(update); err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, h.engine.Preferences())
}

func (h *Handler) updateLocation(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Query string `json:"query"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	place, err := h.engine.UpdateLocation(r.Context(), req.Query)
	if err != nil {
		h.writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, place)
}

func (h *Handler) listStoreLocations(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.engine.StoreLocations())
}

func (h *Handler) refreshStoreLocations(w http.ResponseWriter, r *http.Request) {
	if err := h.engine.RefreshStoreLocations(r.Context()); err != nil {
		h.writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, h.engine.StoreLocations())
}

func (h *Handler) clearAll(w http.ResponseWriter, r *http.Request) {
	h.engine.ClearAll()
	w.WriteHeader(http.StatusNoContent)
}

// writeJSON serializes payload with status and logs on failure.
func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil && h.log != nil {
		h.log.Warnf("Failed to encode response: %v", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, msg string) {
	h.writeJSON(w, status, map[string]string{"error": msg})
}

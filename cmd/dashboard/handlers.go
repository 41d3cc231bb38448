package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"alphasignal-dashboard-go/internal/config"
	"alphasignal-dashboard-go/internal/database"
	"alphasignal-dashboard-go/internal/models"
	"alphasignal-dashboard-go/internal/profiles"
	"alphasignal-dashboard-go/internal/wallet"
	"go.uber.org/zap"
)

// APIHandler holds dependencies for the API endpoints.
type APIHandler struct {
	log      *zap.Logger
	manager  *profiles.Manager
	poller   *wallet.Poller
	db       *database.Database
	defaults config.Defaults
}

// NewAPIHandler creates a new APIHandler.
func NewAPIHandler(log *zap.Logger, manager *profiles.Manager, poller *wallet.Poller, db *database.Database, defaults config.Defaults) *APIHandler {
	return &APIHandler{log: log, manager: manager, poller: poller, db: db, defaults: defaults}
}

// Register wires all API routes onto the mux.
func (h *APIHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/profiles", h.listProfiles)
	mux.HandleFunc("POST /api/profiles", h.createProfile)
	mux.HandleFunc("POST /api/profiles/refresh", h.refreshProfiles)
	mux.HandleFunc("POST /api/profiles/{id}/field", h.setField)
	mux.HandleFunc("POST /api/profiles/{id}/commit", h.commit)
	mux.HandleFunc("POST /api/profiles/{id}/activate", h.activate)
	mux.HandleFunc("POST /api/profiles/{id}/deactivate", h.deactivate)
	mux.HandleFunc("DELETE /api/profiles/{id}", h.deleteProfile)
	mux.HandleFunc("GET /api/wallet", h.walletSnapshot)
	mux.HandleFunc("POST /api/wallet/hide-dust", h.setHideDust)
	mux.HandleFunc("POST /api/wallet/{mint}/selling", h.markSelling)
	mux.HandleFunc("GET /api/orders/{status}", h.listOrders)
	mux.HandleFunc("DELETE /api/orders/{id}", h.cancelOrder)
	mux.HandleFunc("GET /api/audit", h.recentMutations)
	mux.HandleFunc("GET /api/defaults", h.profileDefaults)
}

// profileDefaults returns the trading settings used to pre-fill the create
// form. The backend applies its own defaults on create either way.
func (h *APIHandler) profileDefaults(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, map[string]any{
		"buy_type":        h.defaults.BuyType,
		"buy_amount_type": h.defaults.BuyAmountType,
		"buy_amount":      h.defaults.BuyAmount,
		"sell_mode":       h.defaults.SellMode,
		"sell_type":       h.defaults.SellType,
		"sell_value":      h.defaults.SellValue,
	})
}

func (h *APIHandler) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Error("Failed to write response", zap.Error(err))
	}
}

func (h *APIHandler) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, profiles.ErrUnknownProfile):
		status = http.StatusNotFound
	case errors.Is(err, profiles.ErrUnknownField),
		errors.Is(err, profiles.ErrInvalidValue),
		errors.Is(err, profiles.ErrDeleteNotConfirmed):
		status = http.StatusBadRequest
	}
	http.Error(w, err.Error(), status)
}

func (h *APIHandler) listProfiles(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, h.manager.Profiles())
}

// refreshProfiles re-fetches the canonical list on demand and returns the
// refreshed views. The page calls it on load so changes made by other
// clients are picked up; plain GETs keep serving the cached state.
func (h *APIHandler) refreshProfiles(w http.ResponseWriter, r *http.Request) {
	if err := h.manager.Refresh(r.Context()); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, h.manager.Profiles())
}

func (h *APIHandler) createProfile(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Platform string `json:"platform"`
		Username string `json:"username"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	id, err := h.manager.Create(r.Context(), models.Platform(body.Platform), body.Username)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, map[string]string{"id": id})
}

func (h *APIHandler) setField(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Field string          `json:"field"`
		Value json.RawMessage `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	var value any
	if len(body.Value) > 0 {
		if err := json.Unmarshal(body.Value, &value); err != nil {
			http.Error(w, "invalid field value", http.StatusBadRequest)
			return
		}
	}

	id := r.PathValue("id")
	if err := h.manager.SetField(id, profiles.Field(body.Field), value); err != nil {
		h.writeError(w, err)
		return
	}

	view, err := h.manager.Effective(id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, view)
}

func (h *APIHandler) commit(w http.ResponseWriter, r *http.Request) {
	if err := h.manager.Commit(r.Context(), r.PathValue("id")); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *APIHandler) activate(w http.ResponseWriter, r *http.Request) {
	if err := h.manager.Activate(r.Context(), r.PathValue("id")); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *APIHandler) deactivate(w http.ResponseWriter, r *http.Request) {
	if err := h.manager.Deactivate(r.Context(), r.PathValue("id")); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *APIHandler) deleteProfile(w http.ResponseWriter, r *http.Request) {
	confirmed := r.URL.Query().Get("confirm") == "true"
	if err := h.manager.Delete(r.Context(), r.PathValue("id"), confirmed); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *APIHandler) walletSnapshot(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, h.poller.Snapshot())
}

func (h *APIHandler) setHideDust(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Hide bool `json:"hide"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	h.poller.SetHideDust(body.Hide)
	w.WriteHeader(http.StatusNoContent)
}

func (h *APIHandler) markSelling(w http.ResponseWriter, r *http.Request) {
	var body struct {
		InProgress bool `json:"in_progress"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	h.poller.MarkSellInProgress(r.PathValue("mint"), body.InProgress)
	w.WriteHeader(http.StatusNoContent)
}

func (h *APIHandler) listOrders(w http.ResponseWriter, r *http.Request) {
	status, err := strconv.Atoi(r.PathValue("status"))
	if err != nil {
		http.Error(w, "invalid order status", http.StatusBadRequest)
		return
	}

	orders, err := h.poller.Orders(r.Context(), models.OrderStatus(status))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, map[string]any{"orders": orders})
}

func (h *APIHandler) cancelOrder(w http.ResponseWriter, r *http.Request) {
	if err := h.poller.CancelOrder(r.Context(), r.PathValue("id")); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *APIHandler) recentMutations(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	records, err := h.db.RecentMutations(limit)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, records)
}

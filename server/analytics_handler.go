package server

import (
	"net/http"
)

// GetHistoryHandler returns the wallet's play history, most recent first.
func (h *APIHandler) GetHistoryHandler(w http.ResponseWriter, r *http.Request) {
	address, err := GetAddressFromContext(r.Context())
	if err != nil {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	history := h.analytics.History(r.Context(), address)
	respondJSON(w, http.StatusOK, map[string]any{"history": history})
}

// GetTrackStatsHandler returns the wallet's per-track play aggregates.
func (h *APIHandler) GetTrackStatsHandler(w http.ResponseWriter, r *http.Request) {
	address, err := GetAddressFromContext(r.Context())
	if err != nil {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	stats := h.analytics.TrackStats(r.Context(), address)
	respondJSON(w, http.StatusOK, map[string]any{"trackAnalytics": stats})
}

package server

import (
	"net/http"

	"tezbeat/cache"
	"tezbeat/core/objkt"
	"tezbeat/logger"
	"tezbeat/model"

	"github.com/gorilla/mux"
)

// GetMarketDataHandler returns a token's marketplace view: active listings,
// floor price and recent sales. Fresh snapshots come from the Redis cache;
// a miss triggers an Objkt fetch, which also refreshes the MySQL history
// tables. When Objkt is down, the last stored listings and sales are served
// instead.
func (h *APIHandler) GetMarketDataHandler(w http.ResponseWriter, r *http.Request) {
	trackID := mux.Vars(r)["track_id"]
	contract, tokenID, ok := objkt.ParseTrackID(trackID)
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid track id")
		return
	}

	if cached, err := cache.GetMarketData(r.Context(), trackID); err == nil && cached != nil {
		respondJSON(w, http.StatusOK, cached)
		return
	}

	data, err := h.objktClient.FetchMarketData(r.Context(), contract, tokenID)
	if err != nil {
		logger.Warn("marketplace fetch failed, serving stored snapshot",
			logger.String("trackId", trackID), logger.ErrorField(err))
		h.serveStoredMarketData(w, r, trackID)
		return
	}

	if err := cache.CacheMarketData(r.Context(), data); err != nil {
		logger.Warn("failed to cache market data", logger.ErrorField(err))
	}
	if err := h.marketRepo.ReplaceListings(r.Context(), trackID, data.Listings); err != nil {
		logger.Warn("failed to store listings", logger.ErrorField(err))
	}
	if err := h.marketRepo.RecordSales(r.Context(), data.RecentSales); err != nil {
		logger.Warn("failed to store sales", logger.ErrorField(err))
	}

	respondJSON(w, http.StatusOK, data)
}

func (h *APIHandler) serveStoredMarketData(w http.ResponseWriter, r *http.Request, trackID string) {
	listings, err := h.marketRepo.GetListings(r.Context(), trackID)
	if err != nil {
		respondError(w, http.StatusBadGateway, "Marketplace unavailable")
		return
	}
	sales, err := h.marketRepo.GetRecentSales(r.Context(), trackID, 10)
	if err != nil {
		respondError(w, http.StatusBadGateway, "Marketplace unavailable")
		return
	}

	var floor int64
	for _, l := range listings {
		if floor == 0 || l.PriceMutez < floor {
			floor = l.PriceMutez
		}
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"trackId":     trackID,
		"floorMutez":  floor,
		"floorTez":    model.MutezToTez(floor),
		"listings":    listings,
		"recentSales": sales,
		"stale":       true,
	})
}

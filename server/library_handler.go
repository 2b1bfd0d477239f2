package server

import (
	"net/http"
	"strconv"
	"sync"

	"tezbeat/core/search"
	"tezbeat/logger"
	"tezbeat/model"
)

// refreshGuard hands out per-address fetch generations so a slow indexer
// response cannot overwrite the library written by a newer refresh.
type refreshGuard struct {
	mu  sync.Mutex
	gen map[string]uint64
}

func newRefreshGuard() *refreshGuard {
	return &refreshGuard{gen: make(map[string]uint64)}
}

// begin starts a new fetch generation for the address and returns it.
func (g *refreshGuard) begin(address string) uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.gen[address]++
	return g.gen[address]
}

// current reports the latest generation for the address.
func (g *refreshGuard) current(address string) uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.gen[address]
}

// GetLibraryHandler returns the wallet's cached music library.
func (h *APIHandler) GetLibraryHandler(w http.ResponseWriter, r *http.Request) {
	address, err := GetAddressFromContext(r.Context())
	if err != nil {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	library, err := h.nftRepo.GetLibrary(r.Context(), address)
	if err != nil {
		logger.Error("failed to load library",
			logger.String("address", address), logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Failed to load library")
		return
	}
	if library == nil {
		library = []model.MusicNFT{}
	}
	respondJSON(w, http.StatusOK, map[string]any{"library": library})
}

// RefreshLibraryHandler re-fetches the wallet's music NFTs from the indexer
// and replaces the cached library. A refresh started later wins: if another
// refresh began while the indexer call was in flight, this response is
// discarded instead of overwriting the newer data.
func (h *APIHandler) RefreshLibraryHandler(w http.ResponseWriter, r *http.Request) {
	address, err := GetAddressFromContext(r.Context())
	if err != nil {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	gen := h.refresh.begin(address)

	library, err := h.tzktClient.FetchMusicLibrary(r.Context(), address)
	if err != nil {
		logger.Error("indexer fetch failed",
			logger.String("address", address), logger.ErrorField(err))
		respondError(w, http.StatusBadGateway, "Indexer fetch failed")
		return
	}

	if h.refresh.current(address) != gen {
		logger.Info("discarding stale library fetch",
			logger.String("address", address))
		respondJSON(w, http.StatusOK, map[string]any{"stale": true})
		return
	}

	if err := h.nftRepo.ReplaceLibrary(r.Context(), address, library); err != nil {
		logger.Error("failed to store library",
			logger.String("address", address), logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Failed to store library")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"library": library, "count": len(library)})
}

// SearchLibraryHandler filters and sorts the wallet's cached library.
// Query parameters: q, collection, artist, genre, favorites, recent,
// sort (name|artist|recency|playCount|dateAdded), desc.
func (h *APIHandler) SearchLibraryHandler(w http.ResponseWriter, r *http.Request) {
	address, err := GetAddressFromContext(r.Context())
	if err != nil {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	library, err := h.nftRepo.GetLibrary(r.Context(), address)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to load library")
		return
	}

	q := r.URL.Query()
	opts := search.Options{
		Filter: search.Filter{
			Query:      q.Get("q"),
			Collection: q.Get("collection"),
			Artist:     q.Get("artist"),
			Genre:      q.Get("genre"),
		},
		Sort: search.SortKey(q.Get("sort")),
	}
	opts.Desc, _ = strconv.ParseBool(q.Get("desc"))

	favoritesOnly, _ := strconv.ParseBool(q.Get("favorites"))
	if favoritesOnly {
		opts.Filter.FavoritesOnly = true
		opts.Filter.Favorites = make(map[string]bool)
		for _, id := range h.analytics.Favorites(r.Context(), address) {
			opts.Filter.Favorites[id] = true
		}
	}

	recentOnly, _ := strconv.ParseBool(q.Get("recent"))
	if recentOnly {
		opts.Filter.RecentOnly = true
		opts.Filter.RecentTracks = make(map[string]bool)
		for _, entry := range h.analytics.History(r.Context(), address) {
			opts.Filter.RecentTracks[entry.TrackID] = true
		}
	}

	if opts.Sort == search.SortByRecency || opts.Sort == search.SortByPlayCount {
		opts.Stats = h.analytics.TrackStats(r.Context(), address)
	}

	results := search.Apply(library, opts)
	respondJSON(w, http.StatusOK, map[string]any{"results": results, "count": len(results)})
}

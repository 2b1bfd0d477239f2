package server

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
)

// ToggleFavoriteHandler toggles a track's membership in the favorites set
// and returns the new state.
func (h *APIHandler) ToggleFavoriteHandler(w http.ResponseWriter, r *http.Request) {
	address, err := GetAddressFromContext(r.Context())
	if err != nil {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req trackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.TrackID == "" {
		respondError(w, http.StatusBadRequest, "trackId is required")
		return
	}

	favorite := h.analytics.ToggleFavorite(address, req.TrackID)
	respondJSON(w, http.StatusOK, map[string]any{"trackId": req.TrackID, "favorite": favorite})
}

// GetFavoritesHandler returns the wallet's favorite track ids.
func (h *APIHandler) GetFavoritesHandler(w http.ResponseWriter, r *http.Request) {
	address, err := GetAddressFromContext(r.Context())
	if err != nil {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"favorites": h.analytics.Favorites(r.Context(), address)})
}

// GetPlaylistsHandler returns the wallet's playlists.
func (h *APIHandler) GetPlaylistsHandler(w http.ResponseWriter, r *http.Request) {
	address, err := GetAddressFromContext(r.Context())
	if err != nil {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"playlists": h.analytics.Playlists(r.Context(), address)})
}

// CreatePlaylistHandler creates an empty named playlist.
func (h *APIHandler) CreatePlaylistHandler(w http.ResponseWriter, r *http.Request) {
	address, err := GetAddressFromContext(r.Context())
	if err != nil {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "name is required")
		return
	}

	playlist := h.analytics.CreatePlaylist(address, req.Name, req.Description)
	respondJSON(w, http.StatusCreated, playlist)
}

// DeletePlaylistHandler removes a playlist.
func (h *APIHandler) DeletePlaylistHandler(w http.ResponseWriter, r *http.Request) {
	address, err := GetAddressFromContext(r.Context())
	if err != nil {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	if !h.analytics.DeletePlaylist(address, mux.Vars(r)["id"]) {
		respondError(w, http.StatusNotFound, "Playlist not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// AddToPlaylistHandler appends a track id to a playlist.
func (h *APIHandler) AddToPlaylistHandler(w http.ResponseWriter, r *http.Request) {
	address, err := GetAddressFromContext(r.Context())
	if err != nil {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req trackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if !h.analytics.AddToPlaylist(address, mux.Vars(r)["id"], req.TrackID) {
		respondError(w, http.StatusNotFound, "Playlist not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "added"})
}

// RemoveFromPlaylistHandler drops a track id from a playlist.
func (h *APIHandler) RemoveFromPlaylistHandler(w http.ResponseWriter, r *http.Request) {
	address, err := GetAddressFromContext(r.Context())
	if err != nil {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	vars := mux.Vars(r)
	if !h.analytics.RemoveFromPlaylist(address, vars["id"], vars["track_id"]) {
		respondError(w, http.StatusNotFound, "Playlist or track not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "removed"})
}

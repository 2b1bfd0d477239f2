package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"tezbeat/core/player"
	"tezbeat/logger"
	"tezbeat/model"

	"github.com/gorilla/mux"
)

func (h *APIHandler) session(r *http.Request) (*player.Session, string, bool) {
	address, err := GetAddressFromContext(r.Context())
	if err != nil {
		return nil, "", false
	}
	return h.players.Session(r.Context(), address), address, true
}

// resolveTrack looks a track id up in the wallet's cached library.
func (h *APIHandler) resolveTrack(r *http.Request, address, trackID string) (*model.MusicNFT, error) {
	return h.nftRepo.GetByTrackID(r.Context(), address, trackID)
}

// PlayerStateHandler returns the wallet's player state projection.
func (h *APIHandler) PlayerStateHandler(w http.ResponseWriter, r *http.Request) {
	s, _, ok := h.session(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	respondJSON(w, http.StatusOK, s.Snapshot())
}

// trackRequest is the body of endpoints that target one track.
type trackRequest struct {
	TrackID string `json:"trackId"`
}

// AddToQueueHandler appends a track to the queue. Duplicates are allowed.
func (h *APIHandler) AddToQueueHandler(w http.ResponseWriter, r *http.Request) {
	s, address, ok := h.session(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req trackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	track, err := h.resolveTrack(r, address, req.TrackID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to resolve track")
		return
	}
	if track == nil {
		respondError(w, http.StatusNotFound, "Track not in library")
		return
	}

	s.AddToQueue(*track)
	respondJSON(w, http.StatusOK, s.Snapshot())
}

// AddMultipleToQueueHandler appends several tracks, skipping ids the wallet
// does not hold.
func (h *APIHandler) AddMultipleToQueueHandler(w http.ResponseWriter, r *http.Request) {
	s, address, ok := h.session(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req struct {
		TrackIDs []string `json:"trackIds"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	tracks, err := h.nftRepo.ResolveTracks(r.Context(), address, req.TrackIDs)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to resolve tracks")
		return
	}

	s.AddMultipleToQueue(tracks)
	respondJSON(w, http.StatusOK, s.Snapshot())
}

// InsertNextHandler inserts a track immediately after the current one.
func (h *APIHandler) InsertNextHandler(w http.ResponseWriter, r *http.Request) {
	s, address, ok := h.session(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req trackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	track, err := h.resolveTrack(r, address, req.TrackID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to resolve track")
		return
	}
	if track == nil {
		respondError(w, http.StatusNotFound, "Track not in library")
		return
	}

	s.InsertNext(*track)
	respondJSON(w, http.StatusOK, s.Snapshot())
}

// RemoveFromQueueHandler removes the queue entry at the path index.
func (h *APIHandler) RemoveFromQueueHandler(w http.ResponseWriter, r *http.Request) {
	s, _, ok := h.session(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	index, err := strconv.Atoi(mux.Vars(r)["index"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid queue index")
		return
	}

	s.RemoveFromQueue(index)
	respondJSON(w, http.StatusOK, s.Snapshot())
}

// ClearQueueHandler empties the queue and stops playback.
func (h *APIHandler) ClearQueueHandler(w http.ResponseWriter, r *http.Request) {
	s, _, ok := h.session(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	s.ClearQueue()
	respondJSON(w, http.StatusOK, s.Snapshot())
}

// SetCurrentTrackHandler loads a track without starting playback.
func (h *APIHandler) SetCurrentTrackHandler(w http.ResponseWriter, r *http.Request) {
	s, address, ok := h.session(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req trackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	track, err := h.resolveTrack(r, address, req.TrackID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to resolve track")
		return
	}
	if track == nil {
		respondError(w, http.StatusNotFound, "Track not in library")
		return
	}

	s.SetCurrentTrack(*track)
	respondJSON(w, http.StatusOK, s.Snapshot())
}

// PlayAtIndexHandler starts playback of the queue entry at the path index.
func (h *APIHandler) PlayAtIndexHandler(w http.ResponseWriter, r *http.Request) {
	s, _, ok := h.session(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	index, err := strconv.Atoi(mux.Vars(r)["index"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid queue index")
		return
	}

	s.PlayTrackAtIndex(index)
	respondJSON(w, http.StatusOK, s.Snapshot())
}

// TogglePlayHandler toggles between playing and paused.
func (h *APIHandler) TogglePlayHandler(w http.ResponseWriter, r *http.Request) {
	s, _, ok := h.session(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	s.TogglePlay()
	respondJSON(w, http.StatusOK, s.Snapshot())
}

// PlayNextHandler advances the queue, honoring the repeat mode.
func (h *APIHandler) PlayNextHandler(w http.ResponseWriter, r *http.Request) {
	s, _, ok := h.session(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	s.PlayNext()
	respondJSON(w, http.StatusOK, s.Snapshot())
}

// PlayPreviousHandler retreats the queue, restarting the current track when
// playback is more than a few seconds in.
func (h *APIHandler) PlayPreviousHandler(w http.ResponseWriter, r *http.Request) {
	s, _, ok := h.session(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	s.PlayPrevious()
	respondJSON(w, http.StatusOK, s.Snapshot())
}

// ToggleShuffleHandler toggles shuffle, pinning the current track.
func (h *APIHandler) ToggleShuffleHandler(w http.ResponseWriter, r *http.Request) {
	s, _, ok := h.session(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	s.ToggleShuffle()
	respondJSON(w, http.StatusOK, s.Snapshot())
}

// ToggleRepeatHandler cycles the repeat mode off, all, one.
func (h *APIHandler) ToggleRepeatHandler(w http.ResponseWriter, r *http.Request) {
	s, _, ok := h.session(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	s.ToggleRepeat()
	respondJSON(w, http.StatusOK, s.Snapshot())
}

// SetVolumeHandler sets playback volume, clamped to [0, 1].
func (h *APIHandler) SetVolumeHandler(w http.ResponseWriter, r *http.Request) {
	s, _, ok := h.session(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req struct {
		Volume float64 `json:"volume"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	s.SetVolume(req.Volume)
	respondJSON(w, http.StatusOK, s.Snapshot())
}

// ToggleMuteHandler toggles mute, restoring the pre-mute volume on unmute.
func (h *APIHandler) ToggleMuteHandler(w http.ResponseWriter, r *http.Request) {
	s, _, ok := h.session(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	s.ToggleMute()
	respondJSON(w, http.StatusOK, s.Snapshot())
}

// SeekHandler moves the playback position.
func (h *APIHandler) SeekHandler(w http.ResponseWriter, r *http.Request) {
	s, _, ok := h.session(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req struct {
		Position float64 `json:"position"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	s.Seek(req.Position)
	respondJSON(w, http.StatusOK, s.Snapshot())
}

// ProgressHandler reports playback position from the client. Crossing the
// listen threshold records the play.
func (h *APIHandler) ProgressHandler(w http.ResponseWriter, r *http.Request) {
	s, _, ok := h.session(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req struct {
		Position float64 `json:"position"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	s.Progress(req.Position)
	w.WriteHeader(http.StatusNoContent)
}

// EndedHandler reports natural end of the current track and advances.
func (h *APIHandler) EndedHandler(w http.ResponseWriter, r *http.Request) {
	s, address, ok := h.session(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	s.Ended()
	logger.Debug("track ended", logger.String("address", address))
	respondJSON(w, http.StatusOK, s.Snapshot())
}

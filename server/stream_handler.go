package server

import (
	"io"
	"net/http"
	"strconv"

	"tezbeat/logger"
	"tezbeat/storage"

	"github.com/gorilla/mux"
)

// StreamHandler serves a track's audio. Cached artifacts are served from
// object storage; on a miss the artifact is fetched through the IPFS
// gateway chain, cached, then served.
func (h *APIHandler) StreamHandler(w http.ResponseWriter, r *http.Request) {
	address, err := GetAddressFromContext(r.Context())
	if err != nil {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	trackID := mux.Vars(r)["track_id"]
	track, err := h.resolveTrack(r, address, trackID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to resolve track")
		return
	}
	if track == nil {
		respondError(w, http.StatusNotFound, "Track not in library")
		return
	}

	obj, contentType, size, found, err := storage.GetAudio(r.Context(), trackID)
	if err != nil {
		logger.Warn("audio cache lookup failed",
			logger.String("trackId", trackID), logger.ErrorField(err))
	}
	if found {
		defer obj.Close()
		serveAudio(w, contentType, size, obj)
		return
	}

	result, err := h.resolver.Fetch(r.Context(), track.ArtifactURI)
	if err != nil {
		logger.Error("audio fetch failed on all gateways",
			logger.String("trackId", trackID), logger.ErrorField(err))
		respondError(w, http.StatusBadGateway, "Audio unavailable")
		return
	}
	defer result.Body.Close()

	contentType = result.ContentType
	if contentType == "" {
		contentType = track.MimeType
	}

	err = streamAndCache(w, contentType, result.Size, result.Body, func(body io.Reader, size int64) error {
		return storage.PutAudio(r.Context(), trackID, contentType, body, size)
	})
	if err != nil {
		// the client still got the bytes, the cache is an optimization
		logger.Warn("failed to cache audio",
			logger.String("trackId", trackID), logger.ErrorField(err))
	} else {
		logger.Info("cached audio artifact",
			logger.String("trackId", trackID),
			logger.String("gateway", result.Gateway))
	}
}

// streamAndCache copies the artifact to the client while the cache upload
// consumes the same bytes, so the track never sits fully in memory. When the
// upload fails mid-stream the remainder is still pushed to the client.
func streamAndCache(w http.ResponseWriter, contentType string, size int64, body io.Reader, cache func(io.Reader, int64) error) error {
	writeAudioHeaders(w, contentType, size)
	if size <= 0 {
		size = -1 // object storage accepts uploads of unknown length
	}
	err := cache(io.TeeReader(body, w), size)
	if err != nil {
		if _, cerr := io.Copy(w, body); cerr != nil {
			logger.Debug("audio stream interrupted", logger.ErrorField(cerr))
		}
	}
	return err
}

func serveAudio(w http.ResponseWriter, contentType string, size int64, r io.Reader) {
	writeAudioHeaders(w, contentType, size)
	if _, err := io.Copy(w, r); err != nil {
		logger.Debug("audio stream interrupted", logger.ErrorField(err))
	}
}

func writeAudioHeaders(w http.ResponseWriter, contentType string, size int64) {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	if size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(size, 10))
	}
	w.Header().Set("Cache-Control", "public, max-age=31536000")
}

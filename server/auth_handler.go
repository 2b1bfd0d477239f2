package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"tezbeat/core/auth"
	"tezbeat/logger"
	"tezbeat/model"
)

// ConnectWalletHandler issues a session token for a wallet address. The
// wallet proves ownership client-side through its wallet SDK; this endpoint
// only validates the address shape and records the connection.
func (h *APIHandler) ConnectWalletHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Address string `json:"address"`
		Alias   string `json:"alias"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !model.ValidAddress(req.Address) {
		respondError(w, http.StatusBadRequest, "Invalid Tezos address")
		return
	}

	wallet, err := h.walletRepo.Touch(r.Context(), req.Address)
	if err != nil {
		logger.Error("failed to record wallet connection",
			logger.String("address", req.Address), logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Failed to record connection")
		return
	}

	token, err := auth.GenerateToken(req.Address)
	if err != nil {
		logger.Error("failed to generate session token", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Failed to create session")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"token":  token,
		"wallet": wallet,
	})
}

// DisconnectHandler drops the wallet's player session, persisting its queue.
func (h *APIHandler) DisconnectHandler(w http.ResponseWriter, r *http.Request) {
	address, err := GetAddressFromContext(r.Context())
	if err != nil {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	h.players.Drop(r.Context(), address)
	if err := h.analytics.Flush(r.Context(), address); err != nil {
		logger.Warn("failed to flush analytics on disconnect",
			logger.String("address", address), logger.ErrorField(err))
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "disconnected"})
}

// AuthMiddleware is a middleware function that checks for a valid JWT token.
func (h *APIHandler) AuthMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			http.Error(w, "Authorization header is required", http.StatusUnauthorized)
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			http.Error(w, "Invalid authorization header format", http.StatusUnauthorized)
			return
		}

		claims, err := auth.ParseToken(parts[1])
		if err != nil {
			http.Error(w, "Invalid token", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), addressKey, claims.Address)
		next.ServeHTTP(w, r.WithContext(ctx))
	}
}

// QueryAuthMiddleware validates the session token from the token query
// parameter. Used for websocket upgrades, where the browser cannot set an
// Authorization header.
func (h *APIHandler) QueryAuthMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := r.URL.Query().Get("token")
		if token == "" {
			http.Error(w, "token query parameter is required", http.StatusUnauthorized)
			return
		}

		claims, err := auth.ParseToken(token)
		if err != nil {
			http.Error(w, "Invalid token", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), addressKey, claims.Address)
		next.ServeHTTP(w, r.WithContext(ctx))
	}
}

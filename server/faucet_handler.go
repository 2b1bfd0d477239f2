package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"tezbeat/core/auth"
	"tezbeat/logger"
	"tezbeat/model"
)

var faucetHTTPClient = &http.Client{Timeout: 30 * time.Second}

// FaucetClaimHandler proxies a testnet faucet payout for an address. Claims
// are capped per address and network; when an invite code is configured the
// request must carry a matching one.
func (h *APIHandler) FaucetClaimHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Address    string `json:"address"`
		InviteCode string `json:"inviteCode"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !model.ValidAddress(req.Address) {
		respondError(w, http.StatusBadRequest, "Invalid Tezos address")
		return
	}

	if h.cfg.FaucetInviteHash != "" && !auth.CheckInviteCode(req.InviteCode, h.cfg.FaucetInviteHash) {
		respondError(w, http.StatusForbidden, "Invalid invite code")
		return
	}

	network := h.cfg.FaucetNetwork
	claims, err := h.faucetRepo.CountClaims(r.Context(), req.Address, network)
	if err != nil {
		logger.Error("failed to count faucet claims", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Faucet unavailable")
		return
	}
	if claims >= h.cfg.FaucetMaxClaims {
		respondError(w, http.StatusTooManyRequests, "Claim limit reached for this address")
		return
	}

	if h.cfg.FaucetUpstreamURL == "" {
		respondError(w, http.StatusServiceUnavailable, "Faucet not configured")
		return
	}

	payload, _ := json.Marshal(map[string]string{"address": req.Address, "network": network})
	upstream, err := http.NewRequestWithContext(r.Context(), http.MethodPost, h.cfg.FaucetUpstreamURL, bytes.NewReader(payload))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Faucet unavailable")
		return
	}
	upstream.Header.Set("Content-Type", "application/json")

	resp, err := faucetHTTPClient.Do(upstream)
	if err != nil {
		logger.Error("faucet upstream request failed", logger.ErrorField(err))
		respondError(w, http.StatusBadGateway, "Faucet upstream unavailable")
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		logger.Warn("faucet upstream rejected claim",
			logger.Int("status", resp.StatusCode), logger.String("body", string(body)))
		respondError(w, http.StatusBadGateway, "Faucet upstream rejected the claim")
		return
	}

	claim, err := h.faucetRepo.RecordClaim(r.Context(), req.Address, network)
	if err != nil {
		logger.Error("failed to record faucet claim", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Failed to record claim")
		return
	}

	respondJSON(w, http.StatusOK, claim)
}

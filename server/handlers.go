package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"tezbeat/config"
	"tezbeat/core/analytics"
	"tezbeat/core/ipfs"
	"tezbeat/core/objkt"
	"tezbeat/core/player"
	"tezbeat/core/tzkt"
	"tezbeat/repository"
)

// contextKey is the private type for request context values.
type contextKey string

const addressKey contextKey = "walletAddress"

// APIHandler handles all API requests.
type APIHandler struct {
	nftRepo    repository.NFTRepository
	walletRepo repository.WalletRepository
	faucetRepo repository.FaucetRepository
	marketRepo repository.MarketRepository

	tzktClient  *tzkt.Client
	objktClient *objkt.Client
	resolver    *ipfs.Resolver

	analytics *analytics.Store
	players   *player.Manager

	refresh *refreshGuard

	cfg *config.Config
}

// NewAPIHandler creates a new API handler.
func NewAPIHandler(
	nftRepo repository.NFTRepository,
	walletRepo repository.WalletRepository,
	faucetRepo repository.FaucetRepository,
	marketRepo repository.MarketRepository,
	tzktClient *tzkt.Client,
	objktClient *objkt.Client,
	resolver *ipfs.Resolver,
	analyticsStore *analytics.Store,
	players *player.Manager,
	cfg *config.Config,
) *APIHandler {
	return &APIHandler{
		nftRepo:     nftRepo,
		walletRepo:  walletRepo,
		faucetRepo:  faucetRepo,
		marketRepo:  marketRepo,
		tzktClient:  tzktClient,
		objktClient: objktClient,
		resolver:    resolver,
		analytics:   analyticsStore,
		players:     players,
		refresh:     newRefreshGuard(),
		cfg:         cfg,
	}
}

// GetAddressFromContext extracts the wallet address from the request context.
func GetAddressFromContext(ctx context.Context) (string, error) {
	address, ok := ctx.Value(addressKey).(string)
	if !ok || address == "" {
		return "", fmt.Errorf("wallet address not found in context")
	}
	return address, nil
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

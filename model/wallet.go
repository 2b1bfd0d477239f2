package model

import (
	"strings"
	"time"
)

// ValidAddress reports whether s looks like a Tezos address. Implicit
// accounts (tz1/tz2/tz3) and originated contracts (KT1) are base58 strings
// of 36 characters.
func ValidAddress(s string) bool {
	if len(s) != 36 {
		return false
	}
	for _, prefix := range []string{"tz1", "tz2", "tz3", "KT1"} {
		if strings.HasPrefix(s, prefix) {
			return true
		}
	}
	return false
}

// Wallet is a connected Tezos wallet known to the service.
type Wallet struct {
	ID          int64     `json:"id"`
	Address     string    `json:"address"` // tz1/tz2/tz3/KT1 address
	Alias       string    `json:"alias,omitempty"`
	ConnectedAt time.Time `json:"connectedAt"`
	LastSeenAt  time.Time `json:"lastSeenAt"`
}

// FaucetClaim records one testnet faucet payout to an address.
type FaucetClaim struct {
	ID        int64     `json:"id"`
	Address   string    `json:"address"`
	Network   string    `json:"network"`
	ClaimedAt time.Time `json:"claimedAt"`
}

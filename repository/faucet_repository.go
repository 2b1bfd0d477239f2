package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"tezbeat/db"
	"tezbeat/model"
)

// FaucetRepository tracks testnet faucet payouts per address and network.
type FaucetRepository interface {
	CountClaims(ctx context.Context, address, network string) (int, error)
	RecordClaim(ctx context.Context, address, network string) (*model.FaucetClaim, error)
}

type mysqlFaucetRepository struct {
	DB *sql.DB
}

// NewMySQLFaucetRepository creates a new instance of mysqlFaucetRepository.
func NewMySQLFaucetRepository() FaucetRepository {
	return &mysqlFaucetRepository{DB: db.DB}
}

// CountClaims returns how many payouts an address already received on a
// network.
func (r *mysqlFaucetRepository) CountClaims(ctx context.Context, address, network string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM faucet_claims WHERE address = ? AND network = ?`
	if err := r.DB.QueryRowContext(ctx, query, address, network).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count faucet claims: %w", err)
	}
	return count, nil
}

// RecordClaim appends a payout record.
func (r *mysqlFaucetRepository) RecordClaim(ctx context.Context, address, network string) (*model.FaucetClaim, error) {
	now := time.Now()
	res, err := r.DB.ExecContext(ctx, `INSERT INTO faucet_claims (address, network, claimed_at) VALUES (?, ?, ?)`,
		address, network, now)
	if err != nil {
		return nil, fmt.Errorf("failed to record faucet claim: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get faucet claim ID: %w", err)
	}
	return &model.FaucetClaim{ID: id, Address: address, Network: network, ClaimedAt: now}, nil
}

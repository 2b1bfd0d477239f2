package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"tezbeat/db"
	"tezbeat/model"
)

// WalletRepository defines connected-wallet persistence.
type WalletRepository interface {
	Touch(ctx context.Context, address string) (*model.Wallet, error)
	GetByAddress(ctx context.Context, address string) (*model.Wallet, error)
}

type mysqlWalletRepository struct {
	DB *sql.DB
}

// NewMySQLWalletRepository creates a new instance of mysqlWalletRepository.
func NewMySQLWalletRepository() WalletRepository {
	return &mysqlWalletRepository{DB: db.DB}
}

// Touch records a wallet connection, creating the row on first connect and
// bumping last_seen_at afterwards.
func (r *mysqlWalletRepository) Touch(ctx context.Context, address string) (*model.Wallet, error) {
	now := time.Now()
	query := `INSERT INTO wallets (address, connected_at, last_seen_at) VALUES (?, ?, ?)
	           ON DUPLICATE KEY UPDATE last_seen_at = VALUES(last_seen_at)`
	if _, err := r.DB.ExecContext(ctx, query, address, now, now); err != nil {
		return nil, fmt.Errorf("failed to upsert wallet %s: %w", address, err)
	}
	return r.GetByAddress(ctx, address)
}

// GetByAddress returns a wallet row, or nil when the address was never seen.
func (r *mysqlWalletRepository) GetByAddress(ctx context.Context, address string) (*model.Wallet, error) {
	query := `SELECT id, address, COALESCE(alias, ''), connected_at, last_seen_at FROM wallets WHERE address = ?`
	row := r.DB.QueryRowContext(ctx, query, address)

	w := &model.Wallet{}
	err := row.Scan(&w.ID, &w.Address, &w.Alias, &w.ConnectedAt, &w.LastSeenAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan wallet row: %w", err)
	}
	return w, nil
}

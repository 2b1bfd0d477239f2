package repository

import (
	"context"
	"database/sql"
	"fmt"

	"tezbeat/db"
	"tezbeat/model"
)

// NFTRepository defines the library cache operations. The cache holds the
// last indexed view of each wallet's music NFTs so the player can resolve
// track ids without round-tripping to the indexer.
type NFTRepository interface {
	ReplaceLibrary(ctx context.Context, owner string, nfts []model.MusicNFT) error
	GetLibrary(ctx context.Context, owner string) ([]model.MusicNFT, error)
	GetByTrackID(ctx context.Context, owner, trackID string) (*model.MusicNFT, error)
	ResolveTracks(ctx context.Context, owner string, trackIDs []string) ([]model.MusicNFT, error)
}

// mysqlNFTRepository implements NFTRepository for MySQL.
type mysqlNFTRepository struct {
	DB *sql.DB
}

// NewMySQLNFTRepository creates a new instance of mysqlNFTRepository.
func NewMySQLNFTRepository() NFTRepository {
	return &mysqlNFTRepository{DB: db.DB}
}

const nftColumns = `track_id, owner_address, contract, token_id, name, creator, collection, standard,
	artifact_uri, display_uri, mime_type, artist, album, genre, year, duration, fetched_at`

// ReplaceLibrary swaps a wallet's cached library for a fresh indexer fetch
// inside one transaction, so readers never see a half-written library.
func (r *mysqlNFTRepository) ReplaceLibrary(ctx context.Context, owner string, nfts []model.MusicNFT) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction for ReplaceLibrary: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM music_nfts WHERE owner_address = ?`, owner); err != nil {
		return fmt.Errorf("failed to clear library for %s: %w", owner, err)
	}

	query := `INSERT INTO music_nfts (` + nftColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to prepare statement for ReplaceLibrary: %w", err)
	}
	defer stmt.Close()

	for _, n := range nfts {
		_, err := stmt.ExecContext(ctx, n.ID, owner, n.Contract, n.TokenID, n.Name, n.Creator, n.Collection, n.Standard,
			n.ArtifactURI, n.DisplayURI, n.MimeType,
			n.AudioMetadata.Artist, n.AudioMetadata.Album, n.AudioMetadata.Genre, n.AudioMetadata.Year, n.AudioMetadata.Duration,
			n.FetchedAt)
		if err != nil {
			return fmt.Errorf("failed to insert NFT %s: %w", n.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit ReplaceLibrary: %w", err)
	}
	return nil
}

// GetLibrary returns a wallet's cached library.
func (r *mysqlNFTRepository) GetLibrary(ctx context.Context, owner string) ([]model.MusicNFT, error) {
	query := `SELECT ` + nftColumns + ` FROM music_nfts WHERE owner_address = ? ORDER BY fetched_at DESC, track_id`
	rows, err := r.DB.QueryContext(ctx, query, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to query library for %s: %w", owner, err)
	}
	defer rows.Close()

	var nfts []model.MusicNFT
	for rows.Next() {
		n, err := scanNFT(rows)
		if err != nil {
			return nil, err
		}
		nfts = append(nfts, n)
	}
	return nfts, rows.Err()
}

// GetByTrackID returns one cached NFT, or nil when the wallet does not hold
// it.
func (r *mysqlNFTRepository) GetByTrackID(ctx context.Context, owner, trackID string) (*model.MusicNFT, error) {
	query := `SELECT ` + nftColumns + ` FROM music_nfts WHERE owner_address = ? AND track_id = ?`
	row := r.DB.QueryRowContext(ctx, query, owner, trackID)

	n, err := scanNFT(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// ResolveTracks maps persisted track ids back to library entries, dropping
// ids the wallet no longer holds. Order follows trackIDs, not the library.
// Implements the player's track resolver.
func (r *mysqlNFTRepository) ResolveTracks(ctx context.Context, owner string, trackIDs []string) ([]model.MusicNFT, error) {
	library, err := r.GetLibrary(ctx, owner)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]model.MusicNFT, len(library))
	for _, n := range library {
		byID[n.ID] = n
	}

	resolved := make([]model.MusicNFT, 0, len(trackIDs))
	for _, id := range trackIDs {
		if n, ok := byID[id]; ok {
			resolved = append(resolved, n)
		}
	}
	return resolved, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanNFT(row rowScanner) (model.MusicNFT, error) {
	var n model.MusicNFT
	err := row.Scan(&n.ID, &n.OwnedBy, &n.Contract, &n.TokenID, &n.Name, &n.Creator, &n.Collection, &n.Standard,
		&n.ArtifactURI, &n.DisplayURI, &n.MimeType,
		&n.AudioMetadata.Artist, &n.AudioMetadata.Album, &n.AudioMetadata.Genre, &n.AudioMetadata.Year, &n.AudioMetadata.Duration,
		&n.FetchedAt)
	if err == sql.ErrNoRows {
		return model.MusicNFT{}, err
	}
	if err != nil {
		return model.MusicNFT{}, fmt.Errorf("failed to scan NFT row: %w", err)
	}
	return n, nil
}

package db

import (
	"database/sql"
	"fmt"

	"tezbeat/config"
	"tezbeat/logger"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
)

var DB *sql.DB

// ConnectDB establishes a connection to the database.
func ConnectDB(cfg *config.Config) error {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true",
		cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName)

	var err error
	DB, err = sql.Open("mysql", dsn)
	if err != nil {
		return fmt.Errorf("failed to open database connection: %w", err)
	}

	if err = DB.Ping(); err != nil {
		DB.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("Successfully connected to the database.")
	return nil
}

// CloseDB closes the database connection.
func CloseDB() error {
	if DB != nil {
		return DB.Close()
	}
	return nil
}

// InitDB initializes the database schema, creating tables if they don't
// exist.
func InitDB() error {
	if err := createWalletsTable(); err != nil {
		return err
	}
	if err := createNFTsTable(); err != nil {
		return err
	}
	if err := createFaucetClaimsTable(); err != nil {
		return err
	}
	logger.Info("Database initialization completed.")
	return nil
}

func createWalletsTable() error {
	query := `
	CREATE TABLE IF NOT EXISTS wallets (
		id INT AUTO_INCREMENT PRIMARY KEY,
		address VARCHAR(64) NOT NULL UNIQUE,
		alias VARCHAR(255),
		connected_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		last_seen_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
	);
	`
	_, err := DB.Exec(query)
	if err != nil {
		return fmt.Errorf("failed to create wallets table: %w", err)
	}
	return nil
}

func createNFTsTable() error {
	query := `
	CREATE TABLE IF NOT EXISTS music_nfts (
		track_id VARCHAR(128) NOT NULL,
		owner_address VARCHAR(64) NOT NULL,
		contract VARCHAR(64) NOT NULL,
		token_id VARCHAR(64) NOT NULL,
		name VARCHAR(255),
		creator VARCHAR(255),
		collection VARCHAR(255),
		standard VARCHAR(16),
		artifact_uri VARCHAR(767),
		display_uri VARCHAR(767),
		mime_type VARCHAR(128),
		artist VARCHAR(255),
		album VARCHAR(255),
		genre VARCHAR(128),
		year INT,
		duration FLOAT,
		fetched_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (track_id, owner_address),
		INDEX idx_owner (owner_address)
	);
	`
	_, err := DB.Exec(query)
	if err != nil {
		return fmt.Errorf("failed to create music_nfts table: %w", err)
	}
	return nil
}

func createFaucetClaimsTable() error {
	query := `
	CREATE TABLE IF NOT EXISTS faucet_claims (
		id INT AUTO_INCREMENT PRIMARY KEY,
		address VARCHAR(64) NOT NULL,
		network VARCHAR(32) NOT NULL,
		claimed_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		INDEX idx_address_network (address, network)
	);
	`
	_, err := DB.Exec(query)
	if err != nil {
		return fmt.Errorf("failed to create faucet_claims table: %w", err)
	}
	return nil
}

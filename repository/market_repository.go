package repository

import (
	"context"

	"tezbeat/model"

	"gorm.io/gorm"
)

// MarketRepository persists marketplace snapshots fetched from Objkt, so a
// token's last known listings and sales survive API outages.
type MarketRepository interface {
	ReplaceListings(ctx context.Context, trackID string, listings []model.MarketplaceListing) error
	GetListings(ctx context.Context, trackID string) ([]model.MarketplaceListing, error)
	RecordSales(ctx context.Context, sales []model.SaleEvent) error
	GetRecentSales(ctx context.Context, trackID string, limit int) ([]model.SaleEvent, error)
}

// gormMarketRepository is the GORM implementation.
type gormMarketRepository struct {
	db *gorm.DB
}

// NewGormMarketRepository creates a GORM market repository.
func NewGormMarketRepository(db *gorm.DB) MarketRepository {
	return &gormMarketRepository{db: db}
}

// ReplaceListings swaps a token's stored listings for the latest fetch.
func (r *gormMarketRepository) ReplaceListings(ctx context.Context, trackID string, listings []model.MarketplaceListing) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("track_id = ?", trackID).Delete(&model.MarketplaceListing{}).Error; err != nil {
			return err
		}
		if len(listings) == 0 {
			return nil
		}
		return tx.Create(&listings).Error
	})
}

// GetListings returns a token's stored listings, cheapest first.
func (r *gormMarketRepository) GetListings(ctx context.Context, trackID string) ([]model.MarketplaceListing, error) {
	var listings []model.MarketplaceListing
	err := r.db.WithContext(ctx).
		Where("track_id = ?", trackID).
		Order("price_mutez asc").
		Find(&listings).Error
	return listings, err
}

// RecordSales appends sale events. Duplicate fetches of the same sale are
// tolerated; the history endpoint reads with a limit so duplicates only
// cost storage.
func (r *gormMarketRepository) RecordSales(ctx context.Context, sales []model.SaleEvent) error {
	if len(sales) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&sales).Error
}

// GetRecentSales returns a token's most recent recorded sales, newest first.
func (r *gormMarketRepository) GetRecentSales(ctx context.Context, trackID string, limit int) ([]model.SaleEvent, error) {
	if limit <= 0 {
		limit = 10
	}
	var sales []model.SaleEvent
	err := r.db.WithContext(ctx).
		Where("track_id = ?", trackID).
		Order("sold_at desc").
		Limit(limit).
		Find(&sales).Error
	return sales, err
}

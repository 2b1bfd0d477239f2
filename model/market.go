package model

import (
	"math"
	"time"
)

// MutezPerTez is the number of mutez in one tez.
const MutezPerTez = 1_000_000

// MutezToTez converts a mutez amount to tez with 2-decimal rounding for display.
func MutezToTez(mutez int64) float64 {
	return math.Round(float64(mutez)/MutezPerTez*100) / 100
}

// MarketplaceListing is an active ask on Objkt for a token.
type MarketplaceListing struct {
	ID         uint64    `json:"id" gorm:"primaryKey;autoIncrement"`
	TrackID    string    `json:"trackId" gorm:"index;size:128"` // MusicNFT.ID
	Contract   string    `json:"contract" gorm:"size:64"`
	TokenID    string    `json:"tokenId" gorm:"size:64"`
	Seller     string    `json:"seller" gorm:"size:64"`
	PriceMutez int64     `json:"priceMutez"`
	Amount     int64     `json:"amount"`
	Marketplace string   `json:"marketplace" gorm:"size:64"`
	FetchedAt  time.Time `json:"fetchedAt"`
}

// PriceTez returns the display price in tez.
func (l *MarketplaceListing) PriceTez() float64 {
	return MutezToTez(l.PriceMutez)
}

// SaleEvent is a historical sale of a token.
type SaleEvent struct {
	ID         uint64    `json:"id" gorm:"primaryKey;autoIncrement"`
	TrackID    string    `json:"trackId" gorm:"index;size:128"`
	Buyer      string    `json:"buyer" gorm:"size:64"`
	Seller     string    `json:"seller" gorm:"size:64"`
	PriceMutez int64     `json:"priceMutez"`
	SoldAt     time.Time `json:"soldAt"`
	FetchedAt  time.Time `json:"fetchedAt"`
}

// MarketData bundles the marketplace view of one token.
type MarketData struct {
	TrackID       string               `json:"trackId"`
	FloorMutez    int64                `json:"floorMutez"`
	FloorTez      float64              `json:"floorTez"`
	Listings      []MarketplaceListing `json:"listings"`
	RecentSales   []SaleEvent          `json:"recentSales"`
	RefreshedAt   time.Time            `json:"refreshedAt"`
}

package objkt

import (
	"strconv"
	"time"

	"tezbeat/model"
)

const listingsQuery = `query TokenListings($contract: String!, $tokenId: String!) {
  listings_active(
    where: {token: {fa_contract: {_eq: $contract}, token_id: {_eq: $tokenId}}}
    order_by: {price: asc}
  ) {
    seller_address
    price
    amount_left
    marketplace_contract
  }
}`

const salesQuery = `query TokenSales($contract: String!, $tokenId: String!, $limit: Int!) {
  events(
    where: {token: {fa_contract: {_eq: $contract}, token_id: {_eq: $tokenId}}, event_type: {_in: ["list_buy", "offer_accept", "english_auction_settle"]}}
    order_by: {timestamp: desc}
    limit: $limit
  ) {
    recipient_address
    creator_address
    price
    timestamp
  }
}`

// listingRow is one listings_active row as Objkt returns it. Prices come
// back in mutez.
type listingRow struct {
	SellerAddress       string `json:"seller_address"`
	Price               int64  `json:"price"`
	AmountLeft          int64  `json:"amount_left"`
	MarketplaceContract string `json:"marketplace_contract"`
}

func (r listingRow) toListing(contract, tokenID string, fetched time.Time) (model.MarketplaceListing, bool) {
	if r.Price <= 0 || r.AmountLeft <= 0 {
		return model.MarketplaceListing{}, false
	}
	return model.MarketplaceListing{
		TrackID:     model.NFTID(contract, tokenID),
		Contract:    contract,
		TokenID:     tokenID,
		Seller:      r.SellerAddress,
		PriceMutez:  r.Price,
		Amount:      r.AmountLeft,
		Marketplace: r.MarketplaceContract,
		FetchedAt:   fetched,
	}, true
}

type saleRow struct {
	RecipientAddress string `json:"recipient_address"`
	CreatorAddress   string `json:"creator_address"`
	Price            int64  `json:"price"`
	Timestamp        string `json:"timestamp"`
}

func (r saleRow) toSale(contract, tokenID string, fetched time.Time) (model.SaleEvent, bool) {
	if r.Price <= 0 {
		return model.SaleEvent{}, false
	}
	soldAt, err := time.Parse(time.RFC3339, r.Timestamp)
	if err != nil {
		return model.SaleEvent{}, false
	}
	return model.SaleEvent{
		TrackID:    model.NFTID(contract, tokenID),
		Buyer:      r.RecipientAddress,
		Seller:     r.CreatorAddress,
		PriceMutez: r.Price,
		SoldAt:     soldAt,
		FetchedAt:  fetched,
	}, true
}

// ParseTrackID splits a "<contract>-<tokenId>" track id. Contract addresses
// never contain a dash, so the first dash is the separator.
func ParseTrackID(trackID string) (contract, tokenID string, ok bool) {
	for i := 0; i < len(trackID); i++ {
		if trackID[i] == '-' {
			contract, tokenID = trackID[:i], trackID[i+1:]
			if contract == "" || tokenID == "" {
				return "", "", false
			}
			if _, err := strconv.ParseUint(tokenID, 10, 64); err != nil {
				return "", "", false
			}
			return contract, tokenID, true
		}
	}
	return "", "", false
}

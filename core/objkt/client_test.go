package objkt

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func marketServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)

		var req graphqlRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "KT1song", req.Variables["contract"])
		assert.Equal(t, "7", req.Variables["tokenId"])

		switch req.Query {
		case listingsQuery:
			json.NewEncoder(w).Encode(map[string]any{
				"data": map[string]any{
					"listings_active": []map[string]any{
						{"seller_address": "tz1seller", "price": 2_500_000, "amount_left": 1, "marketplace_contract": "KT1mkt"},
						{"seller_address": "tz1other", "price": 5_000_000, "amount_left": 3, "marketplace_contract": "KT1mkt"},
						// sold out, dropped at the edge
						{"seller_address": "tz1gone", "price": 1_000_000, "amount_left": 0, "marketplace_contract": "KT1mkt"},
					},
				},
			})
		case salesQuery:
			json.NewEncoder(w).Encode(map[string]any{
				"data": map[string]any{
					"events": []map[string]any{
						{"recipient_address": "tz1buyer", "creator_address": "tz1seller", "price": 3_000_000, "timestamp": "2024-03-01T12:00:00Z"},
					},
				},
			})
		default:
			t.Fatalf("unexpected query: %s", req.Query)
		}
	}))
}

func TestFetchMarketData(t *testing.T) {
	srv := marketServer(t)
	defer srv.Close()

	c := NewClient(srv.URL)
	data, err := c.FetchMarketData(context.Background(), "KT1song", "7")
	require.NoError(t, err)

	assert.Equal(t, "KT1song-7", data.TrackID)
	assert.Equal(t, int64(2_500_000), data.FloorMutez)
	assert.Equal(t, 2.5, data.FloorTez)
	require.Len(t, data.Listings, 2)
	assert.Equal(t, "tz1seller", data.Listings[0].Seller)
	assert.Equal(t, 2.5, data.Listings[0].PriceTez())
	require.Len(t, data.RecentSales, 1)
	assert.Equal(t, "tz1buyer", data.RecentSales[0].Buyer)
	assert.Equal(t, time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC), data.RecentSales[0].SoldAt)
}

func TestQuery_GraphQLError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"errors": []map[string]any{{"message": "rate limited"}},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.FetchListings(context.Background(), "KT1song", "7")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limited")
}

func TestQuery_BadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.FetchSales(context.Background(), "KT1song", "7", 5)
	assert.Error(t, err)
}

func TestParseTrackID(t *testing.T) {
	contract, tokenID, ok := ParseTrackID("KT1abc-42")
	require.True(t, ok)
	assert.Equal(t, "KT1abc", contract)
	assert.Equal(t, "42", tokenID)

	for _, bad := range []string{"", "KT1abc", "-42", "KT1abc-", "KT1abc-notanumber"} {
		_, _, ok := ParseTrackID(bad)
		assert.False(t, ok, bad)
	}
}

package objkt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"tezbeat/model"
)

// Client talks to the Objkt marketplace GraphQL API.
type Client struct {
	graphqlURL string
	httpClient *http.Client
	now        func() time.Time
}

// NewClient creates a marketplace client. graphqlURL is the full endpoint,
// e.g. https://data.objkt.com/v3/graphql.
func NewClient(graphqlURL string) *Client {
	return &Client{
		graphqlURL: graphqlURL,
		httpClient: &http.Client{
			Timeout: time.Second * 30,
		},
		now: time.Now,
	}
}

// SetTimeout overrides the default request timeout.
func (c *Client) SetTimeout(timeout time.Duration) {
	c.httpClient.Timeout = timeout
}

type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphqlError struct {
	Message string `json:"message"`
}

func (c *Client) query(ctx context.Context, query string, variables map[string]any, out any) error {
	payload, err := json.Marshal(graphqlRequest{Query: query, Variables: variables})
	if err != nil {
		return fmt.Errorf("encode graphql request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.graphqlURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create graphql request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("objkt request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("objkt returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read objkt response: %w", err)
	}

	var envelope struct {
		Data   json.RawMessage `json:"data"`
		Errors []graphqlError  `json:"errors"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return fmt.Errorf("decode objkt response: %w", err)
	}
	if len(envelope.Errors) > 0 {
		return fmt.Errorf("objkt query error: %s", envelope.Errors[0].Message)
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return fmt.Errorf("decode objkt data: %w", err)
	}
	return nil
}

// FetchListings returns the active asks for a token, cheapest first.
func (c *Client) FetchListings(ctx context.Context, contract, tokenID string) ([]model.MarketplaceListing, error) {
	var data struct {
		ListingsActive []listingRow `json:"listings_active"`
	}
	vars := map[string]any{"contract": contract, "tokenId": tokenID}
	if err := c.query(ctx, listingsQuery, vars, &data); err != nil {
		return nil, err
	}

	fetched := c.now()
	listings := make([]model.MarketplaceListing, 0, len(data.ListingsActive))
	for _, row := range data.ListingsActive {
		l, ok := row.toListing(contract, tokenID, fetched)
		if !ok {
			continue
		}
		listings = append(listings, l)
	}
	return listings, nil
}

// FetchSales returns the most recent sales of a token, newest first.
func (c *Client) FetchSales(ctx context.Context, contract, tokenID string, limit int) ([]model.SaleEvent, error) {
	if limit <= 0 {
		limit = 10
	}
	var data struct {
		Events []saleRow `json:"events"`
	}
	vars := map[string]any{"contract": contract, "tokenId": tokenID, "limit": limit}
	if err := c.query(ctx, salesQuery, vars, &data); err != nil {
		return nil, err
	}

	fetched := c.now()
	sales := make([]model.SaleEvent, 0, len(data.Events))
	for _, row := range data.Events {
		s, ok := row.toSale(contract, tokenID, fetched)
		if !ok {
			continue
		}
		sales = append(sales, s)
	}
	return sales, nil
}

// FetchMarketData bundles listings, floor price and recent sales for a token.
// The floor is the cheapest active listing, 0 when the token is unlisted.
func (c *Client) FetchMarketData(ctx context.Context, contract, tokenID string) (*model.MarketData, error) {
	listings, err := c.FetchListings(ctx, contract, tokenID)
	if err != nil {
		return nil, err
	}
	sales, err := c.FetchSales(ctx, contract, tokenID, 10)
	if err != nil {
		return nil, err
	}

	var floor int64
	for _, l := range listings {
		if floor == 0 || l.PriceMutez < floor {
			floor = l.PriceMutez
		}
	}

	return &model.MarketData{
		TrackID:     model.NFTID(contract, tokenID),
		FloorMutez:  floor,
		FloorTez:    model.MutezToTez(floor),
		Listings:    listings,
		RecentSales: sales,
		RefreshedAt: c.now(),
	}, nil
}

// Package tzkt talks to the TzKT indexer REST API and converts raw token
// balances into typed music NFTs. Malformed indexer rows are dropped at this
// boundary; nothing loosely typed crosses into the core.
package tzkt

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"tezbeat/logger"
	"tezbeat/model"
)

// maxPageLimit is the largest page TzKT serves per request.
const maxPageLimit = 1000

// Client is a TzKT indexer API client.
type Client struct {
	baseURL    string
	pageLimit  int
	httpClient *http.Client
}

// NewClient creates a client against the given TzKT base URL.
func NewClient(baseURL string, pageLimit int) *Client {
	if pageLimit <= 0 || pageLimit > maxPageLimit {
		pageLimit = maxPageLimit
	}
	return &Client{
		baseURL:   baseURL,
		pageLimit: pageLimit,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// SetTimeout overrides the request timeout.
func (c *Client) SetTimeout(timeout time.Duration) {
	c.httpClient.Timeout = timeout
}

// tokenBalancesPage fetches one page of FA2 token balances for an account.
func (c *Client) tokenBalancesPage(ctx context.Context, account string, offset int) ([]tokenBalance, error) {
	q := url.Values{}
	q.Set("account", account)
	q.Set("token.standard", "fa2")
	q.Set("balance.gt", "0")
	q.Set("limit", strconv.Itoa(c.pageLimit))
	q.Set("offset", strconv.Itoa(offset))

	reqURL := fmt.Sprintf("%s/v1/tokens/balances?%s", c.baseURL, q.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create tzkt request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tzkt request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tzkt returned status %d", resp.StatusCode)
	}

	var balances []tokenBalance
	if err := json.NewDecoder(resp.Body).Decode(&balances); err != nil {
		return nil, fmt.Errorf("failed to decode tzkt response: %w", err)
	}
	return balances, nil
}

// FetchMusicLibrary walks all FA2 balances of an account and returns the
// audio-bearing NFTs among them.
func (c *Client) FetchMusicLibrary(ctx context.Context, account string) ([]model.MusicNFT, error) {
	var nfts []model.MusicNFT
	for offset := 0; ; offset += c.pageLimit {
		page, err := c.tokenBalancesPage(ctx, account, offset)
		if err != nil {
			return nil, err
		}
		for _, b := range page {
			nft, ok := toMusicNFT(b, account)
			if !ok {
				continue
			}
			nfts = append(nfts, nft)
		}
		if len(page) < c.pageLimit {
			break
		}
	}
	logger.Info("fetched music library from tzkt",
		logger.String("account", account), logger.Int("tracks", len(nfts)))
	return nfts, nil
}

// toMusicNFT validates one balance row and builds the domain model.
// Rows that are not true audio NFTs, or that fail validation, are dropped.
func toMusicNFT(b tokenBalance, owner string) (model.MusicNFT, bool) {
	t := b.Token
	if t.Contract.Address == "" || t.TokenID == "" {
		logger.Debug("dropping balance row without contract/tokenId")
		return model.MusicNFT{}, false
	}
	// decimals == "0" separates true NFTs from fungible FA2 tokens.
	if t.Metadata.Decimals != "0" {
		return model.MusicNFT{}, false
	}
	audioURI, mime, ok := audioSource(t.Metadata)
	if !ok {
		return model.MusicNFT{}, false
	}

	collection := t.Contract.Alias
	if collection == "" {
		collection = t.Contract.Address
	}
	creator := ""
	if len(t.Metadata.Creators) > 0 {
		creator = t.Metadata.Creators[0]
	}

	return model.MusicNFT{
		ID:          model.NFTID(t.Contract.Address, t.TokenID),
		Contract:    t.Contract.Address,
		TokenID:     t.TokenID,
		Name:        t.Metadata.Name,
		Creator:     creator,
		Collection:  collection,
		Standard:    t.Standard,
		ArtifactURI: audioURI,
		DisplayURI:  displayURI(t.Metadata),
		MimeType:    mime,
		AudioMetadata: model.AudioMetadata{
			Artist:   artist(t.Metadata, creator),
			Album:    t.Metadata.Album,
			Genre:    firstGenre(t.Metadata),
			Year:     year(t.Metadata.Date),
			Duration: durationSeconds(t.Metadata.Duration),
		},
		OwnedBy:   owner,
		FetchedAt: time.Now(),
	}, true
}

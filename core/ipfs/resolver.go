// Package ipfs rewrites ipfs:// URIs to HTTP gateway URLs and fetches
// content through a priority-ordered gateway chain.
package ipfs

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"tezbeat/logger"
)

const scheme = "ipfs://"

// IsIPFS reports whether the URI uses the ipfs scheme.
func IsIPFS(uri string) bool {
	return strings.HasPrefix(uri, scheme)
}

// Path extracts the CID path from an ipfs URI. Non-ipfs URIs are returned
// unchanged.
func Path(uri string) string {
	if !IsIPFS(uri) {
		return uri
	}
	p := strings.TrimPrefix(uri, scheme)
	// Some minters encode ipfs://ipfs/<cid>.
	p = strings.TrimPrefix(p, "ipfs/")
	return p
}

// GatewaySource supplies the current gateway order.
type GatewaySource interface {
	Gateways() []string
}

// Result is one successful gateway fetch.
type Result struct {
	Body        io.ReadCloser
	ContentType string
	Size        int64
	Gateway     string
}

// Resolver resolves ipfs URIs against a live gateway list.
type Resolver struct {
	gateways   GatewaySource
	httpClient *http.Client
}

// NewResolver creates a resolver over the gateway source.
func NewResolver(gateways GatewaySource) *Resolver {
	return &Resolver{
		gateways: gateways,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// URLs returns the gateway URLs for a URI in priority order. An http(s) URI
// maps to itself.
func (r *Resolver) URLs(uri string) []string {
	if !IsIPFS(uri) {
		if uri == "" {
			return nil
		}
		return []string{uri}
	}
	path := Path(uri)
	gws := r.gateways.Gateways()
	urls := make([]string, 0, len(gws))
	for _, gw := range gws {
		urls = append(urls, gw+path)
	}
	return urls
}

// Primary returns the first gateway URL for a URI, or the URI itself when it
// is not an ipfs URI.
func (r *Resolver) Primary(uri string) string {
	urls := r.URLs(uri)
	if len(urls) == 0 {
		return ""
	}
	return urls[0]
}

// Fetch retrieves the content behind a URI, trying each gateway in order.
// When every gateway fails the last error is returned; there is no retry
// beyond exhausting the list.
func (r *Resolver) Fetch(ctx context.Context, uri string) (*Result, error) {
	urls := r.URLs(uri)
	if len(urls) == 0 {
		return nil, fmt.Errorf("empty uri")
	}

	var lastErr error
	for _, u := range urls {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			lastErr = err
			continue
		}
		resp, err := r.httpClient.Do(req)
		if err != nil {
			logger.Debug("gateway fetch failed", logger.String("url", u), logger.ErrorField(err))
			lastErr = err
			continue
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			lastErr = fmt.Errorf("gateway %s returned status %d", u, resp.StatusCode)
			logger.Debug("gateway fetch failed", logger.String("url", u),
				logger.Int("status", resp.StatusCode))
			continue
		}
		return &Result{
			Body:        resp.Body,
			ContentType: resp.Header.Get("Content-Type"),
			Size:        resp.ContentLength,
			Gateway:     u,
		}, nil
	}
	return nil, fmt.Errorf("all gateways failed for %s: %w", uri, lastErr)
}

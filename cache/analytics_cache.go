package cache

import (
	"context"
	"fmt"

	"tezbeat/core/analytics"

	"github.com/go-redis/redis/v8"
)

// DefaultMaxBlobBytes bounds one wallet's analytics envelope. Oversized
// saves get ErrQuotaExceeded so the caller can degrade instead of growing
// Redis without limit.
const DefaultMaxBlobBytes = 256 * 1024

// AnalyticsBlobStore persists analytics envelopes in Redis, one key per
// wallet address. Implements analytics.BlobStore.
type AnalyticsBlobStore struct {
	client   *redis.Client
	maxBytes int
}

// NewAnalyticsBlobStore creates a blob store over the given client.
// maxBytes <= 0 selects DefaultMaxBlobBytes.
func NewAnalyticsBlobStore(client *redis.Client, maxBytes int) *AnalyticsBlobStore {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBlobBytes
	}
	return &AnalyticsBlobStore{client: client, maxBytes: maxBytes}
}

// AnalyticsKey builds the Redis key for a wallet's analytics envelope.
func AnalyticsKey(address string) string {
	return fmt.Sprintf("tezbeat:analytics:%s", address)
}

// Load returns the stored envelope bytes, or nil when the address has none.
func (s *AnalyticsBlobStore) Load(ctx context.Context, address string) ([]byte, error) {
	blob, err := s.client.Get(ctx, AnalyticsKey(address)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load analytics blob: %w", err)
	}
	return blob, nil
}

// Save stores the envelope bytes. Blobs over the size limit are rejected
// with analytics.ErrQuotaExceeded without touching the stored value.
func (s *AnalyticsBlobStore) Save(ctx context.Context, address string, blob []byte) error {
	if len(blob) > s.maxBytes {
		return analytics.ErrQuotaExceeded
	}
	if err := s.client.Set(ctx, AnalyticsKey(address), blob, 0).Err(); err != nil {
		return fmt.Errorf("failed to save analytics blob: %w", err)
	}
	return nil
}

package analytics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"tezbeat/logger"
	"tezbeat/model"
)

// ErrQuotaExceeded is returned by a BlobStore when the serialized envelope
// does not fit the backing store's limits.
var ErrQuotaExceeded = errors.New("analytics storage quota exceeded")

// truncatedHistory is the reduced history length used after a quota failure.
const truncatedHistory = 25

// BlobStore persists one opaque envelope per wallet address.
type BlobStore interface {
	// Load returns the stored blob, or nil when no blob exists.
	Load(ctx context.Context, address string) ([]byte, error)
	Save(ctx context.Context, address string, blob []byte) error
}

// Store keeps the per-wallet analytics envelopes in memory and flushes them
// eagerly on every mutation. A malformed or unknown-version stored blob is
// replaced with a fresh empty envelope; the stored bytes are only
// overwritten on the next mutation.
type Store struct {
	mu    sync.Mutex
	blobs BlobStore
	data  map[string]*model.AnalyticsData
	now   func() time.Time
}

// NewStore creates an analytics store over the given blob persistence.
func NewStore(blobs BlobStore) *Store {
	return &Store{
		blobs: blobs,
		data:  make(map[string]*model.AnalyticsData),
		now:   time.Now,
	}
}

// Open loads the envelope for an address, creating an empty one on first
// connection or when the stored blob is unusable.
func (s *Store) Open(ctx context.Context, address string) *model.AnalyticsData {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.openLocked(ctx, address)
}

func (s *Store) openLocked(ctx context.Context, address string) *model.AnalyticsData {
	if d, ok := s.data[address]; ok {
		return d
	}
	d := model.NewAnalyticsData()
	if s.blobs != nil {
		raw, err := s.blobs.Load(ctx, address)
		switch {
		case err != nil:
			logger.Warn("failed to load analytics blob",
				logger.String("address", address), logger.ErrorField(err))
		case raw != nil:
			migrated, err := Migrate(raw)
			if err != nil {
				logger.Warn("stored analytics unusable, starting fresh",
					logger.String("address", address), logger.ErrorField(err))
			} else {
				d = migrated
			}
		}
	}
	s.data[address] = d
	return d
}

// RecordPlay appends a history entry and updates the per-track aggregate.
// Implements player.Recorder.
func (s *Store) RecordPlay(address, trackID string, duration float64) {
	now := s.now().UnixMilli()
	s.mutate(address, func(d *model.AnalyticsData) {
		d.PlayHistory = append(d.PlayHistory, model.PlayHistoryEntry{
			TrackID:   trackID,
			Timestamp: now,
			Duration:  duration,
		})
		if len(d.PlayHistory) > model.MaxPlayHistory {
			d.PlayHistory = d.PlayHistory[len(d.PlayHistory)-model.MaxPlayHistory:]
		}

		agg := d.TrackAnalytics[trackID]
		if agg.FirstPlayed == 0 {
			agg.FirstPlayed = now
		}
		agg.PlayCount++
		agg.LastPlayed = now
		agg.TotalListenTime += duration
		d.TrackAnalytics[trackID] = agg

		d.QueueHistory = append(d.QueueHistory, trackID)
		if len(d.QueueHistory) > model.MaxPlayHistory {
			d.QueueHistory = d.QueueHistory[len(d.QueueHistory)-model.MaxPlayHistory:]
		}
	})
}

// History returns the play history, most recent first.
func (s *Store) History(ctx context.Context, address string) []model.PlayHistoryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.openLocked(ctx, address)
	out := make([]model.PlayHistoryEntry, len(d.PlayHistory))
	for i, e := range d.PlayHistory {
		out[len(d.PlayHistory)-1-i] = e
	}
	return out
}

// TrackStats returns the per-track aggregates.
func (s *Store) TrackStats(ctx context.Context, address string) map[string]model.TrackAnalytics {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.openLocked(ctx, address)
	out := make(map[string]model.TrackAnalytics, len(d.TrackAnalytics))
	for k, v := range d.TrackAnalytics {
		out[k] = v
	}
	return out
}

// ToggleFavorite flips the membership of a track in the favorites set and
// returns the new state.
func (s *Store) ToggleFavorite(address, trackID string) bool {
	var favorite bool
	s.mutate(address, func(d *model.AnalyticsData) {
		for i, id := range d.Favorites {
			if id == trackID {
				d.Favorites = append(d.Favorites[:i], d.Favorites[i+1:]...)
				return
			}
		}
		d.Favorites = append(d.Favorites, trackID)
		favorite = true
	})
	return favorite
}

// Favorites returns the favorite track ids.
func (s *Store) Favorites(ctx context.Context, address string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.openLocked(ctx, address)
	return append([]string(nil), d.Favorites...)
}

// CreatePlaylist adds a playlist and returns it.
func (s *Store) CreatePlaylist(address, name, description string) model.Playlist {
	now := s.now().UnixMilli()
	p := model.Playlist{
		ID:          uuid.NewString(),
		Name:        name,
		Description: description,
		TrackIDs:    []string{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.mutate(address, func(d *model.AnalyticsData) {
		d.Playlists = append(d.Playlists, p)
	})
	return p
}

// DeletePlaylist removes a playlist by id.
func (s *Store) DeletePlaylist(address, playlistID string) bool {
	var deleted bool
	s.mutate(address, func(d *model.AnalyticsData) {
		for i, p := range d.Playlists {
			if p.ID == playlistID {
				d.Playlists = append(d.Playlists[:i], d.Playlists[i+1:]...)
				deleted = true
				return
			}
		}
	})
	return deleted
}

// AddToPlaylist appends a track id to a playlist. The id is a reference by
// value; it is resolved against the live library at read time.
func (s *Store) AddToPlaylist(address, playlistID, trackID string) bool {
	var added bool
	s.mutate(address, func(d *model.AnalyticsData) {
		for i := range d.Playlists {
			if d.Playlists[i].ID == playlistID {
				d.Playlists[i].TrackIDs = append(d.Playlists[i].TrackIDs, trackID)
				d.Playlists[i].UpdatedAt = s.now().UnixMilli()
				added = true
				return
			}
		}
	})
	return added
}

// RemoveFromPlaylist removes the first occurrence of a track id.
func (s *Store) RemoveFromPlaylist(address, playlistID, trackID string) bool {
	var removed bool
	s.mutate(address, func(d *model.AnalyticsData) {
		for i := range d.Playlists {
			if d.Playlists[i].ID != playlistID {
				continue
			}
			for j, id := range d.Playlists[i].TrackIDs {
				if id == trackID {
					d.Playlists[i].TrackIDs = append(d.Playlists[i].TrackIDs[:j], d.Playlists[i].TrackIDs[j+1:]...)
					d.Playlists[i].UpdatedAt = s.now().UnixMilli()
					removed = true
					return
				}
			}
			return
		}
	})
	return removed
}

// Playlists returns the wallet's playlists.
func (s *Store) Playlists(ctx context.Context, address string) []model.Playlist {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.openLocked(ctx, address)
	return append([]model.Playlist(nil), d.Playlists...)
}

// SaveQueue persists the queue snapshot into the v3 envelope fields.
// Implements player.QueueStore.
func (s *Store) SaveQueue(ctx context.Context, address string, trackIDs []string) error {
	s.mutate(address, func(d *model.AnalyticsData) {
		entries := make([]model.QueueEntry, len(trackIDs))
		for i, id := range trackIDs {
			entries[i] = model.QueueEntry{TrackID: id}
		}
		d.Queue = entries
	})
	return nil
}

// LoadQueue restores the persisted queue snapshot. The envelope carries
// only the track order, so restored queues start deselected.
func (s *Store) LoadQueue(ctx context.Context, address string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.openLocked(ctx, address)
	ids := make([]string, len(d.Queue))
	for i, e := range d.Queue {
		ids[i] = e.TrackID
	}
	return ids, nil
}

// Flush forces a write of the address's envelope, used on shutdown.
func (s *Store) Flush(ctx context.Context, address string) error {
	s.mu.Lock()
	d, ok := s.data[address]
	s.mu.Unlock()
	if !ok {
		return nil
	}
	return s.flush(ctx, address, d)
}

// mutate applies fn under the lock and eagerly flushes the envelope.
func (s *Store) mutate(address string, fn func(*model.AnalyticsData)) {
	ctx := context.Background()
	s.mu.Lock()
	d := s.openLocked(ctx, address)
	fn(d)
	s.mu.Unlock()

	if err := s.flush(ctx, address, d); err != nil {
		logger.Warn("failed to persist analytics",
			logger.String("address", address), logger.ErrorField(err))
	}
}

// flush serializes the full envelope. On a quota failure the history is
// truncated and the write retried once before giving up.
func (s *Store) flush(ctx context.Context, address string, d *model.AnalyticsData) error {
	if s.blobs == nil {
		return nil
	}
	s.mu.Lock()
	blob, err := json.Marshal(d)
	s.mu.Unlock()
	if err != nil {
		return fmt.Errorf("failed to marshal analytics for %s: %w", address, err)
	}

	err = s.blobs.Save(ctx, address, blob)
	if !errors.Is(err, ErrQuotaExceeded) {
		return err
	}

	s.mu.Lock()
	if len(d.PlayHistory) > truncatedHistory {
		d.PlayHistory = d.PlayHistory[len(d.PlayHistory)-truncatedHistory:]
	}
	blob, err = json.Marshal(d)
	s.mu.Unlock()
	if err != nil {
		return fmt.Errorf("failed to marshal truncated analytics for %s: %w", address, err)
	}
	logger.Warn("analytics quota exceeded, retrying with truncated history",
		logger.String("address", address))
	return s.blobs.Save(ctx, address, blob)
}

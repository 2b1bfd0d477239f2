package player

import (
	"context"
	"sync"

	"tezbeat/logger"
	"tezbeat/model"
)

// QueueStore persists queue snapshots per wallet address so sessions survive
// a server restart. Only the track order is stored; restored queues start
// deselected.
type QueueStore interface {
	SaveQueue(ctx context.Context, address string, trackIDs []string) error
	LoadQueue(ctx context.Context, address string) ([]string, error)
}

// TrackResolver resolves persisted track ids back to library entries.
type TrackResolver interface {
	ResolveTracks(ctx context.Context, address string, trackIDs []string) ([]model.MusicNFT, error)
}

// Manager owns one Session per connected wallet address.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session

	store    QueueStore
	resolver TrackResolver
	recorder Recorder
}

// NewManager creates a session manager. store and resolver may be nil, in
// which case queues are purely in-memory.
func NewManager(store QueueStore, resolver TrackResolver, recorder Recorder) *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		store:    store,
		resolver: resolver,
		recorder: recorder,
	}
}

// Session returns the session for the address, creating and restoring it on
// first use.
func (m *Manager) Session(ctx context.Context, address string) *Session {
	m.mu.Lock()
	if s, ok := m.sessions[address]; ok {
		m.mu.Unlock()
		return s
	}
	s := NewSession(address)
	s.SetRecorder(m.recorder)
	m.sessions[address] = s
	m.mu.Unlock()

	m.restore(ctx, s)
	s.OnChange(m.persist)
	return s
}

// Drop removes the session after persisting its queue, typically on wallet
// disconnect.
func (m *Manager) Drop(ctx context.Context, address string) {
	m.mu.Lock()
	s, ok := m.sessions[address]
	delete(m.sessions, address)
	m.mu.Unlock()
	if ok {
		m.persist(s)
	}
}

func (m *Manager) restore(ctx context.Context, s *Session) {
	if m.store == nil || m.resolver == nil {
		return
	}
	ids, err := m.store.LoadQueue(ctx, s.Address())
	if err != nil {
		logger.Warn("failed to load queue snapshot",
			logger.String("address", s.Address()), logger.ErrorField(err))
		return
	}
	if len(ids) == 0 {
		return
	}
	tracks, err := m.resolver.ResolveTracks(ctx, s.Address(), ids)
	if err != nil {
		logger.Warn("failed to resolve queued tracks",
			logger.String("address", s.Address()), logger.ErrorField(err))
		return
	}
	s.AddMultipleToQueue(tracks)
}

func (m *Manager) persist(s *Session) {
	if m.store == nil {
		return
	}
	s.mu.Lock()
	ids := s.queue.Snapshot()
	addr := s.address
	s.mu.Unlock()
	if err := m.store.SaveQueue(context.Background(), addr, ids); err != nil {
		logger.Warn("failed to save queue snapshot",
			logger.String("address", addr), logger.ErrorField(err))
	}
}

package model

// Schema versions of the persisted analytics envelope.
// v1: playHistory, trackAnalytics, favorites
// v2: adds playlists
// v3: adds queue and queueHistory
const (
	AnalyticsVersion1 = 1
	AnalyticsVersion2 = 2
	AnalyticsVersion3 = 3

	CurrentAnalyticsVersion = AnalyticsVersion3
)

// MaxPlayHistory caps the play history; the oldest entries are evicted first.
const MaxPlayHistory = 50

// PlayHistoryEntry is one recorded play, append-only.
type PlayHistoryEntry struct {
	TrackID   string  `json:"trackId"`
	Timestamp int64   `json:"timestamp"` // unix millis
	Duration  float64 `json:"duration"`  // seconds listened
}

// TrackAnalytics is the per-track aggregate, monotonically updated on each play.
type TrackAnalytics struct {
	PlayCount       int     `json:"playCount"`
	FirstPlayed     int64   `json:"firstPlayed"`
	LastPlayed      int64   `json:"lastPlayed"`
	TotalListenTime float64 `json:"totalListenTime"` // seconds
}

// Playlist is a user-created ordered set of track ids. Track ids reference
// MusicNFT.ID by value; the playlist does not own the NFT data.
type Playlist struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	TrackIDs    []string `json:"trackIds"`
	CreatedAt   int64    `json:"createdAt"`
	UpdatedAt   int64    `json:"updatedAt"`
}

// QueueEntry is a queued track reference persisted with the v3 envelope.
type QueueEntry struct {
	TrackID string `json:"trackId"`
}

// AnalyticsData is the full persisted envelope, one instance per wallet
// address, schema-versioned with in-place forward migrations.
type AnalyticsData struct {
	Version        int                       `json:"version"`
	PlayHistory    []PlayHistoryEntry        `json:"playHistory"`
	TrackAnalytics map[string]TrackAnalytics `json:"trackAnalytics"`
	Favorites      []string                  `json:"favorites"`
	Playlists      []Playlist                `json:"playlists"`
	Queue          []QueueEntry              `json:"queue,omitempty"`
	QueueHistory   []string                  `json:"queueHistory,omitempty"`
}

// NewAnalyticsData returns an empty envelope at the current schema version.
func NewAnalyticsData() *AnalyticsData {
	return &AnalyticsData{
		Version:        CurrentAnalyticsVersion,
		PlayHistory:    []PlayHistoryEntry{},
		TrackAnalytics: map[string]TrackAnalytics{},
		Favorites:      []string{},
		Playlists:      []Playlist{},
		Queue:          []QueueEntry{},
		QueueHistory:   []string{},
	}
}

// IsFavorite reports whether the track id is in the favorites set.
func (d *AnalyticsData) IsFavorite(trackID string) bool {
	for _, id := range d.Favorites {
		if id == trackID {
			return true
		}
	}
	return false
}

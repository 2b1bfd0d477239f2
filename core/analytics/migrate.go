package analytics

import (
	"encoding/json"
	"errors"
	"fmt"

	"tezbeat/model"
)

var (
	// ErrMalformed marks a blob that cannot be decoded or fails field
	// validation. Callers treat it as absent, not fatal.
	ErrMalformed = errors.New("malformed analytics data")

	// ErrUnknownVersion marks a blob whose version this build does not
	// understand. The stored data is left untouched.
	ErrUnknownVersion = errors.New("unknown analytics schema version")
)

// envelope mirrors AnalyticsData with pointer fields so that presence of the
// required sections can be validated before migration.
type envelope struct {
	Version        *int                             `json:"version"`
	PlayHistory    *[]model.PlayHistoryEntry        `json:"playHistory"`
	TrackAnalytics *map[string]model.TrackAnalytics `json:"trackAnalytics"`
	Favorites      *[]string                        `json:"favorites"`
	Playlists      []model.Playlist                 `json:"playlists"`
	Queue          []model.QueueEntry               `json:"queue"`
	QueueHistory   []string                         `json:"queueHistory"`
}

// Migrate decodes a persisted envelope and walks it forward to the current
// schema version. Migration is linear and idempotent: each version bump adds
// fields with safe defaults. Versions outside [1, current] are rejected
// explicitly rather than silently skipping fields.
func Migrate(raw []byte) (*model.AnalyticsData, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if env.Version == nil || env.PlayHistory == nil || env.TrackAnalytics == nil || env.Favorites == nil {
		return nil, ErrMalformed
	}
	version := *env.Version
	if version < model.AnalyticsVersion1 || version > model.CurrentAnalyticsVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnknownVersion, version)
	}

	data := &model.AnalyticsData{
		Version:        version,
		PlayHistory:    *env.PlayHistory,
		TrackAnalytics: *env.TrackAnalytics,
		Favorites:      *env.Favorites,
		Playlists:      env.Playlists,
		Queue:          env.Queue,
		QueueHistory:   env.QueueHistory,
	}

	if data.Version == model.AnalyticsVersion1 {
		migrateV1toV2(data)
	}
	if data.Version == model.AnalyticsVersion2 {
		migrateV2toV3(data)
	}
	return data, nil
}

// migrateV1toV2 adds the playlists section.
func migrateV1toV2(data *model.AnalyticsData) {
	if data.Playlists == nil {
		data.Playlists = []model.Playlist{}
	}
	data.Version = model.AnalyticsVersion2
}

// migrateV2toV3 adds the persisted queue and queue history.
func migrateV2toV3(data *model.AnalyticsData) {
	if data.Queue == nil {
		data.Queue = []model.QueueEntry{}
	}
	if data.QueueHistory == nil {
		data.QueueHistory = []string{}
	}
	data.Version = model.AnalyticsVersion3
}

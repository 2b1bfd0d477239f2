package analytics

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tezbeat/model"
)

func TestMigrate_V1AddsPlaylistsAndQueue(t *testing.T) {
	raw := []byte(`{
		"version": 1,
		"playHistory": [{"trackId": "KT1abc-0", "timestamp": 1700000000000, "duration": 42}],
		"trackAnalytics": {"KT1abc-0": {"playCount": 3, "firstPlayed": 1, "lastPlayed": 2, "totalListenTime": 120}},
		"favorites": ["KT1abc-0"]
	}`)

	data, err := Migrate(raw)
	require.NoError(t, err)

	assert.Equal(t, model.CurrentAnalyticsVersion, data.Version)
	assert.NotNil(t, data.Playlists)
	assert.NotNil(t, data.Queue)
	assert.NotNil(t, data.QueueHistory)
	assert.Len(t, data.PlayHistory, 1)
	assert.Equal(t, 3, data.TrackAnalytics["KT1abc-0"].PlayCount)
	assert.Equal(t, []string{"KT1abc-0"}, data.Favorites)
}

func TestMigrate_V2AddsQueue(t *testing.T) {
	raw := []byte(`{
		"version": 2,
		"playHistory": [],
		"trackAnalytics": {},
		"favorites": [],
		"playlists": [{"id": "p1", "name": "mix", "trackIds": ["a"], "createdAt": 1, "updatedAt": 1}]
	}`)

	data, err := Migrate(raw)
	require.NoError(t, err)

	assert.Equal(t, model.CurrentAnalyticsVersion, data.Version)
	require.Len(t, data.Playlists, 1)
	assert.Equal(t, "mix", data.Playlists[0].Name)
	assert.NotNil(t, data.Queue)
}

// A blob already at the current version passes through unchanged.
func TestMigrate_CurrentVersionIdempotent(t *testing.T) {
	original := model.NewAnalyticsData()
	original.Favorites = []string{"KT1abc-1"}
	original.PlayHistory = []model.PlayHistoryEntry{{TrackID: "KT1abc-1", Timestamp: 5, Duration: 31}}
	original.TrackAnalytics["KT1abc-1"] = model.TrackAnalytics{PlayCount: 1, FirstPlayed: 5, LastPlayed: 5, TotalListenTime: 31}
	original.Queue = []model.QueueEntry{{TrackID: "KT1abc-1"}}
	original.QueueHistory = []string{"KT1abc-1"}
	raw, err := json.Marshal(original)
	require.NoError(t, err)

	migrated, err := Migrate(raw)
	require.NoError(t, err)

	assert.Equal(t, original, migrated)

	// And round-tripping the migrated form is byte-for-byte stable.
	again, err := json.Marshal(migrated)
	require.NoError(t, err)
	assert.Equal(t, raw, again)
}

func TestMigrate_RejectsUnknownVersion(t *testing.T) {
	raw := []byte(`{"version": 4, "playHistory": [], "trackAnalytics": {}, "favorites": []}`)

	_, err := Migrate(raw)

	assert.ErrorIs(t, err, ErrUnknownVersion)
}

func TestMigrate_RejectsMalformed(t *testing.T) {
	cases := map[string]string{
		"not json":        `{garbage`,
		"missing version": `{"playHistory": [], "trackAnalytics": {}, "favorites": []}`,
		"missing history": `{"version": 3, "trackAnalytics": {}, "favorites": []}`,
		"missing aggregates": `{"version": 3, "playHistory": [], "favorites": []}`,
		"missing favorites":  `{"version": 3, "playHistory": [], "trackAnalytics": {}}`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Migrate([]byte(raw))
			assert.ErrorIs(t, err, ErrMalformed)
		})
	}
}

package search

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"tezbeat/model"
)

func library() []model.MusicNFT {
	return []model.MusicNFT{
		{
			ID: "KT1a-1", TokenID: "1", Name: "Midnight Drive", Collection: "Neon Tapes", Creator: "tz1aaa",
			AudioMetadata: model.AudioMetadata{Artist: "Volt", Genre: "synthwave"},
		},
		{
			ID: "KT1a-2", TokenID: "2", Name: "Sunrise", Collection: "Neon Tapes", Creator: "tz1bbb",
			AudioMetadata: model.AudioMetadata{Artist: "Aria", Genre: "ambient"},
		},
		{
			ID: "KT1b-10", TokenID: "10", Name: "deep midnight", Collection: "Bass Works", Creator: "tz1ccc",
			AudioMetadata: model.AudioMetadata{Artist: "Volt", Genre: "dub"},
		},
	}
}

func trackIDs(tracks []model.MusicNFT) []string {
	out := make([]string, len(tracks))
	for i, t := range tracks {
		out[i] = t.ID
	}
	return out
}

func TestApply_SearchCaseInsensitive(t *testing.T) {
	got := Apply(library(), Options{Filter: Filter{Query: "MIDNIGHT"}})
	assert.Equal(t, []string{"KT1a-1", "KT1b-10"}, trackIDs(got))
}

func TestApply_SearchOverCreator(t *testing.T) {
	got := Apply(library(), Options{Filter: Filter{Query: "tz1ccc"}})
	assert.Equal(t, []string{"KT1b-10"}, trackIDs(got))
}

func TestApply_FiltersCompose(t *testing.T) {
	got := Apply(library(), Options{
		Filter: Filter{Query: "midnight", Artist: "Volt", Collection: "Neon Tapes"},
	})
	assert.Equal(t, []string{"KT1a-1"}, trackIDs(got))
}

func TestApply_FavoritesOnly(t *testing.T) {
	got := Apply(library(), Options{
		Filter: Filter{FavoritesOnly: true, Favorites: map[string]bool{"KT1a-2": true}},
	})
	assert.Equal(t, []string{"KT1a-2"}, trackIDs(got))
}

func TestApply_RecentOnly(t *testing.T) {
	got := Apply(library(), Options{
		Filter: Filter{RecentOnly: true, RecentTracks: map[string]bool{"KT1b-10": true, "KT1a-1": true}},
	})
	assert.Equal(t, []string{"KT1a-1", "KT1b-10"}, trackIDs(got))
}

func TestApply_SortByName(t *testing.T) {
	got := Apply(library(), Options{Sort: SortByName})
	assert.Equal(t, []string{"KT1b-10", "KT1a-1", "KT1a-2"}, trackIDs(got))

	got = Apply(library(), Options{Sort: SortByName, Desc: true})
	assert.Equal(t, []string{"KT1a-2", "KT1a-1", "KT1b-10"}, trackIDs(got))
}

func TestApply_SortByPlayCount(t *testing.T) {
	stats := map[string]model.TrackAnalytics{
		"KT1a-1":  {PlayCount: 5},
		"KT1a-2":  {PlayCount: 1},
		"KT1b-10": {PlayCount: 9},
	}
	got := Apply(library(), Options{Sort: SortByPlayCount, Desc: true, Stats: stats})
	assert.Equal(t, []string{"KT1b-10", "KT1a-1", "KT1a-2"}, trackIDs(got))
}

func TestApply_SortByRecency(t *testing.T) {
	stats := map[string]model.TrackAnalytics{
		"KT1a-1": {LastPlayed: 100},
		"KT1a-2": {LastPlayed: 300},
	}
	got := Apply(library(), Options{Sort: SortByRecency, Desc: true, Stats: stats})
	assert.Equal(t, "KT1a-2", got[0].ID)
	assert.Equal(t, "KT1b-10", got[2].ID, "never-played tracks sort last")
}

func TestApply_SortIsStable(t *testing.T) {
	// Equal keys preserve input order.
	tracks := []model.MusicNFT{
		{ID: "x", Name: "same"},
		{ID: "y", Name: "same"},
		{ID: "z", Name: "same"},
	}
	got := Apply(tracks, Options{Sort: SortByName})
	assert.Equal(t, []string{"x", "y", "z"}, trackIDs(got))
}

func TestApply_DoesNotMutateInput(t *testing.T) {
	in := library()
	Apply(in, Options{Sort: SortByName, Desc: true})
	assert.Equal(t, []string{"KT1a-1", "KT1a-2", "KT1b-10"}, trackIDs(in))
}

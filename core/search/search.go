// Package search provides pure, stateless transforms over in-memory track
// snapshots. Nothing here performs I/O; filters and search compose by
// intersection and sorting is applied last.
package search

import (
	"sort"
	"strings"

	"tezbeat/model"
)

// SortKey selects the sort dimension.
type SortKey string

const (
	SortByName      SortKey = "name"
	SortByArtist    SortKey = "artist"
	SortByRecency   SortKey = "recency"
	SortByPlayCount SortKey = "playCount"
	// SortByDateAdded orders by token id string comparison, a proxy for
	// mint order within a contract.
	SortByDateAdded SortKey = "dateAdded"
)

// Filter narrows a library snapshot. Zero-value fields are inactive; active
// fields compose by AND.
type Filter struct {
	Query string // case-insensitive substring over name/artist/collection/genre/creator

	FavoritesOnly  bool
	RecentOnly     bool
	Collection     string // exact match
	Artist         string // exact match
	Genre          string // exact match

	Favorites    map[string]bool // track id set, required when FavoritesOnly
	RecentTracks map[string]bool // track id set, required when RecentOnly
}

// Options bundles filtering and sorting for one query.
type Options struct {
	Filter Filter
	Sort   SortKey
	Desc   bool

	// Stats supplies per-track aggregates for recency/play-count sorting.
	Stats map[string]model.TrackAnalytics
}

// Apply filters, then sorts, a snapshot of the library. The input slice is
// not modified.
func Apply(tracks []model.MusicNFT, opts Options) []model.MusicNFT {
	out := make([]model.MusicNFT, 0, len(tracks))
	for _, t := range tracks {
		if opts.Filter.matches(t) {
			out = append(out, t)
		}
	}
	sortTracks(out, opts)
	return out
}

func (f Filter) matches(t model.MusicNFT) bool {
	if f.FavoritesOnly && !f.Favorites[t.ID] {
		return false
	}
	if f.RecentOnly && !f.RecentTracks[t.ID] {
		return false
	}
	if f.Collection != "" && t.Collection != f.Collection {
		return false
	}
	if f.Artist != "" && t.AudioMetadata.Artist != f.Artist {
		return false
	}
	if f.Genre != "" && t.AudioMetadata.Genre != f.Genre {
		return false
	}
	if f.Query != "" && !matchesQuery(t, f.Query) {
		return false
	}
	return true
}

func matchesQuery(t model.MusicNFT, query string) bool {
	q := strings.ToLower(query)
	for _, field := range []string{
		t.Name,
		t.AudioMetadata.Artist,
		t.Collection,
		t.AudioMetadata.Genre,
		t.Creator,
	} {
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}

func sortTracks(tracks []model.MusicNFT, opts Options) {
	var less func(a, b model.MusicNFT) bool
	switch opts.Sort {
	case SortByName:
		less = func(a, b model.MusicNFT) bool {
			return strings.ToLower(a.Name) < strings.ToLower(b.Name)
		}
	case SortByArtist:
		less = func(a, b model.MusicNFT) bool {
			return strings.ToLower(a.AudioMetadata.Artist) < strings.ToLower(b.AudioMetadata.Artist)
		}
	case SortByRecency:
		less = func(a, b model.MusicNFT) bool {
			return opts.Stats[a.ID].LastPlayed < opts.Stats[b.ID].LastPlayed
		}
	case SortByPlayCount:
		less = func(a, b model.MusicNFT) bool {
			return opts.Stats[a.ID].PlayCount < opts.Stats[b.ID].PlayCount
		}
	case SortByDateAdded:
		less = func(a, b model.MusicNFT) bool {
			return a.TokenID < b.TokenID
		}
	default:
		return
	}

	sort.SliceStable(tracks, func(i, j int) bool {
		if opts.Desc {
			return less(tracks[j], tracks[i])
		}
		return less(tracks[i], tracks[j])
	})
}

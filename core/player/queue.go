package player

import (
	"math/rand"

	"tezbeat/model"
)

// RepeatMode defines the repeat behavior.
type RepeatMode int

const (
	RepeatOff RepeatMode = iota
	RepeatAll
	RepeatOne
)

// String returns the repeat mode name.
func (m RepeatMode) String() string {
	switch m {
	case RepeatOff:
		return "off"
	case RepeatAll:
		return "all"
	case RepeatOne:
		return "one"
	default:
		return "unknown"
	}
}

// Next cycles off -> all -> one -> off.
func (m RepeatMode) Next() RepeatMode {
	switch m {
	case RepeatOff:
		return RepeatAll
	case RepeatAll:
		return RepeatOne
	default:
		return RepeatOff
	}
}

// ParseRepeatMode maps a mode name to a RepeatMode, defaulting to off.
func ParseRepeatMode(s string) RepeatMode {
	switch s {
	case "all":
		return RepeatAll
	case "one":
		return RepeatOne
	default:
		return RepeatOff
	}
}

// Queue is an ordered sequence of tracks with a pointer to the currently
// selected one. Invariant: index is -1 (nothing selected) or a valid index
// into tracks. While shuffle is active the pre-shuffle order is retained in
// original so it can be restored verbatim.
type Queue struct {
	tracks   []model.MusicNFT
	index    int
	shuffled bool
	original []model.MusicNFT
}

// NewQueue creates an empty queue.
func NewQueue() *Queue {
	return &Queue{index: -1}
}

// Tracks returns a copy of the queue order.
func (q *Queue) Tracks() []model.MusicNFT {
	return append([]model.MusicNFT(nil), q.tracks...)
}

// Len returns the number of queued tracks.
func (q *Queue) Len() int {
	return len(q.tracks)
}

// Index returns the current index, -1 if nothing is selected.
func (q *Queue) Index() int {
	return q.index
}

// Shuffled reports whether shuffle is active.
func (q *Queue) Shuffled() bool {
	return q.shuffled
}

// Current returns the currently selected track, or nil.
func (q *Queue) Current() *model.MusicNFT {
	if q.index < 0 || q.index >= len(q.tracks) {
		return nil
	}
	t := q.tracks[q.index]
	return &t
}

// Add appends a track. Duplicates are allowed; a track id may appear in the
// queue more than once.
func (q *Queue) Add(track model.MusicNFT) {
	q.tracks = append(q.tracks, track)
}

// AddAll appends tracks in order.
func (q *Queue) AddAll(tracks []model.MusicNFT) {
	q.tracks = append(q.tracks, tracks...)
}

// InsertNext inserts the track immediately after the current index, so the
// next advance resolves to it before any later queue entries. With nothing
// selected it lands at the head of the queue.
func (q *Queue) InsertNext(track model.MusicNFT) {
	at := q.index + 1
	if at > len(q.tracks) {
		at = len(q.tracks)
	}
	q.tracks = append(q.tracks, model.MusicNFT{})
	copy(q.tracks[at+1:], q.tracks[at:])
	q.tracks[at] = track
}

// RemoveAt removes the entry at index. Removing an entry before the current
// one shifts the current index down so the playing track keeps its identity;
// removing the current entry deselects it. Returns false for an invalid
// index, true otherwise, with removedCurrent set when the selection was
// removed.
func (q *Queue) RemoveAt(index int) (removed, removedCurrent bool) {
	if index < 0 || index >= len(q.tracks) {
		return false, false
	}
	q.tracks = append(q.tracks[:index], q.tracks[index+1:]...)
	switch {
	case index < q.index:
		q.index--
	case index == q.index:
		q.index = -1
		return true, true
	}
	return true, false
}

// JumpTo selects the track at index. Out-of-bounds is a guarded no-op.
func (q *Queue) JumpTo(index int) *model.MusicNFT {
	if index < 0 || index >= len(q.tracks) {
		return nil
	}
	q.index = index
	return q.Current()
}

// Advance moves the selection forward one entry. When the end is reached it
// wraps to the head if wrap is set, otherwise it reports exhaustion without
// moving.
func (q *Queue) Advance(wrap bool) (*model.MusicNFT, bool) {
	if len(q.tracks) == 0 {
		return nil, false
	}
	if q.index+1 < len(q.tracks) {
		q.index++
		return q.Current(), true
	}
	if wrap {
		q.index = 0
		return q.Current(), true
	}
	return nil, false
}

// Retreat moves the selection back one entry, if possible.
func (q *Queue) Retreat() (*model.MusicNFT, bool) {
	if q.index <= 0 {
		return nil, false
	}
	q.index--
	return q.Current(), true
}

// Clear empties the queue and deselects.
func (q *Queue) Clear() {
	q.tracks = nil
	q.index = -1
	q.shuffled = false
	q.original = nil
}

// Shuffle turns shuffle on: the current track is pinned to position 0 of the
// new order so playback is uninterrupted, the rest are Fisher-Yates shuffled,
// and the pre-shuffle order is saved verbatim for restoration.
func (q *Queue) Shuffle(rng *rand.Rand) {
	if q.shuffled || len(q.tracks) == 0 {
		return
	}
	q.original = append([]model.MusicNFT(nil), q.tracks...)

	rest := make([]model.MusicNFT, 0, len(q.tracks))
	var head []model.MusicNFT
	for i, t := range q.tracks {
		if i == q.index {
			head = []model.MusicNFT{t}
			continue
		}
		rest = append(rest, t)
	}
	for i := len(rest) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		rest[i], rest[j] = rest[j], rest[i]
	}

	q.tracks = append(head, rest...)
	if q.index >= 0 {
		q.index = 0
	}
	q.shuffled = true
}

// Unshuffle restores the saved pre-shuffle order and relocates the index to
// wherever the current track id is found in it. If the track is gone from
// the restored order the old index is clamped into bounds rather than reused
// blindly.
func (q *Queue) Unshuffle() {
	if !q.shuffled {
		return
	}
	current := q.Current()
	oldIndex := q.index

	q.tracks = q.original
	q.original = nil
	q.shuffled = false

	if current == nil {
		q.index = -1
		return
	}
	for i, t := range q.tracks {
		if t.ID == current.ID {
			q.index = i
			return
		}
	}
	if oldIndex >= len(q.tracks) {
		oldIndex = len(q.tracks) - 1
	}
	q.index = oldIndex
}

// Snapshot returns the queued track ids in order, for persistence.
func (q *Queue) Snapshot() []string {
	ids := make([]string, len(q.tracks))
	for i, t := range q.tracks {
		ids[i] = t.ID
	}
	return ids
}

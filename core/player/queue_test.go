package player

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tezbeat/model"
)

func nft(id string) model.MusicNFT {
	return model.MusicNFT{ID: id, Name: id}
}

func ids(tracks []model.MusicNFT) []string {
	out := make([]string, len(tracks))
	for i, t := range tracks {
		out[i] = t.ID
	}
	return out
}

func TestNewQueue(t *testing.T) {
	q := NewQueue()

	assert.Equal(t, 0, q.Len())
	assert.Equal(t, -1, q.Index())
	assert.Nil(t, q.Current())
}

func TestQueue_AddAllowsDuplicates(t *testing.T) {
	q := NewQueue()

	q.Add(nft("a"))
	q.Add(nft("a"))

	assert.Equal(t, 2, q.Len())
	assert.Equal(t, -1, q.Index(), "add must not change the selection")
}

func TestQueue_InsertNext(t *testing.T) {
	q := NewQueue()
	q.AddAll([]model.MusicNFT{nft("a"), nft("b"), nft("c")})
	q.JumpTo(0)

	q.InsertNext(nft("x"))

	assert.Equal(t, []string{"a", "x", "b", "c"}, ids(q.Tracks()))
	next, ok := q.Advance(false)
	require.True(t, ok)
	assert.Equal(t, "x", next.ID)
}

func TestQueue_InsertNext_NothingSelected(t *testing.T) {
	q := NewQueue()
	q.AddAll([]model.MusicNFT{nft("a"), nft("b")})

	q.InsertNext(nft("x"))

	assert.Equal(t, []string{"x", "a", "b"}, ids(q.Tracks()))
	assert.Equal(t, -1, q.Index())
}

func TestQueue_RemoveAt_BeforeCurrent(t *testing.T) {
	q := NewQueue()
	q.AddAll([]model.MusicNFT{nft("a"), nft("b"), nft("c")})
	q.JumpTo(2)

	removed, removedCurrent := q.RemoveAt(0)

	require.True(t, removed)
	assert.False(t, removedCurrent)
	assert.Equal(t, 1, q.Index())
	assert.Equal(t, "c", q.Current().ID, "playing track keeps its identity")
}

func TestQueue_RemoveAt_Current(t *testing.T) {
	q := NewQueue()
	q.AddAll([]model.MusicNFT{nft("a"), nft("b")})
	q.JumpTo(1)

	_, removedCurrent := q.RemoveAt(1)

	assert.True(t, removedCurrent)
	assert.Equal(t, -1, q.Index())
	assert.Nil(t, q.Current())
}

func TestQueue_RemoveAt_OutOfBounds(t *testing.T) {
	q := NewQueue()
	q.Add(nft("a"))

	removed, _ := q.RemoveAt(5)

	assert.False(t, removed)
	assert.Equal(t, 1, q.Len())
}

// The queue index is always -1 or a valid index, for any sequence of
// add/remove/jump calls.
func TestQueue_IndexInvariant(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	q := NewQueue()

	checkInvariant := func() {
		idx := q.Index()
		if idx != -1 {
			require.GreaterOrEqual(t, idx, 0)
			require.Less(t, idx, q.Len())
		}
	}

	for i := 0; i < 500; i++ {
		switch rng.Intn(4) {
		case 0:
			q.Add(nft("t"))
		case 1:
			q.RemoveAt(rng.Intn(q.Len() + 2))
		case 2:
			q.JumpTo(rng.Intn(q.Len() + 2))
		case 3:
			q.InsertNext(nft("x"))
		}
		checkInvariant()
	}
}

func TestQueue_ShuffleRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	q := NewQueue()
	tracks := []model.MusicNFT{nft("a"), nft("b"), nft("c"), nft("d"), nft("e")}
	q.AddAll(tracks)
	q.JumpTo(2)
	before := ids(q.Tracks())

	q.Shuffle(rng)

	assert.True(t, q.Shuffled())
	assert.Equal(t, 0, q.Index(), "current track pinned to head")
	assert.Equal(t, "c", q.Current().ID, "playback uninterrupted")
	assert.ElementsMatch(t, before, ids(q.Tracks()))

	q.Unshuffle()

	assert.False(t, q.Shuffled())
	assert.Equal(t, before, ids(q.Tracks()), "exact pre-shuffle order restored")
	assert.Equal(t, 2, q.Index())
	assert.Equal(t, "c", q.Current().ID)
}

func TestQueue_Unshuffle_CurrentRemoved(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	q := NewQueue()
	q.AddAll([]model.MusicNFT{nft("a"), nft("b"), nft("c")})
	q.JumpTo(1)
	q.Shuffle(rng)

	// Remove the current track while shuffled, then select the last entry.
	q.RemoveAt(0)
	q.JumpTo(q.Len() - 1)
	q.Unshuffle()

	idx := q.Index()
	require.GreaterOrEqual(t, idx, 0)
	require.Less(t, idx, q.Len(), "stale index is clamped, never out of bounds")
}

func TestQueue_Advance_Wrap(t *testing.T) {
	q := NewQueue()
	q.AddAll([]model.MusicNFT{nft("a"), nft("b")})
	q.JumpTo(1)

	_, ok := q.Advance(false)
	assert.False(t, ok, "no wrap with repeat off")
	assert.Equal(t, 1, q.Index())

	track, ok := q.Advance(true)
	require.True(t, ok)
	assert.Equal(t, "a", track.ID)
	assert.Equal(t, 0, q.Index())
}

func TestRepeatMode_Cycle(t *testing.T) {
	m := RepeatOff
	m = m.Next()
	assert.Equal(t, RepeatAll, m)
	m = m.Next()
	assert.Equal(t, RepeatOne, m)
	m = m.Next()
	assert.Equal(t, RepeatOff, m)
}

package player

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tezbeat/model"
)

type recordedPlay struct {
	address  string
	trackID  string
	duration float64
}

type fakeRecorder struct {
	plays []recordedPlay
}

func (r *fakeRecorder) RecordPlay(address, trackID string, duration float64) {
	r.plays = append(r.plays, recordedPlay{address, trackID, duration})
}

type fakeSink struct {
	playing  []string
	paused   int
	resumed  int
	volume   float64
	position float64
}

func (s *fakeSink) Play(track model.MusicNFT) { s.playing = append(s.playing, track.ID) }
func (s *fakeSink) Pause()                    { s.paused++ }
func (s *fakeSink) Resume()                   { s.resumed++ }
func (s *fakeSink) Seek(p float64)            { s.position = p }
func (s *fakeSink) SetVolume(v float64)       { s.volume = v }

func TestSession_QueueExhaustion(t *testing.T) {
	s := NewSession("tz1test")
	s.AddMultipleToQueue([]model.MusicNFT{nft("a"), nft("b"), nft("c")})

	s.PlayTrackAtIndex(0)
	s.PlayNext()
	s.PlayNext()

	require.NotNil(t, s.CurrentTrack())
	assert.Equal(t, "c", s.CurrentTrack().ID)
	assert.Equal(t, 2, s.QueueIndex())
	assert.True(t, s.IsPlaying())

	// One more advance with repeat off pauses without clearing the track.
	s.PlayNext()

	assert.False(t, s.IsPlaying())
	require.NotNil(t, s.CurrentTrack())
	assert.Equal(t, "c", s.CurrentTrack().ID)
	assert.Equal(t, 2, s.QueueIndex())
}

func TestSession_RepeatOneIdempotent(t *testing.T) {
	s := NewSession("tz1test")
	s.AddMultipleToQueue([]model.MusicNFT{nft("a"), nft("b")})
	s.PlayTrackAtIndex(0)

	s.ToggleRepeat() // all
	s.ToggleRepeat() // one
	require.Equal(t, RepeatOne, s.RepeatMode())

	for i := 0; i < 5; i++ {
		s.PlayNext()
		assert.Equal(t, 0, s.QueueIndex())
		assert.Equal(t, "a", s.CurrentTrack().ID)
		assert.True(t, s.IsPlaying())
	}
}

func TestSession_RepeatAllWraps(t *testing.T) {
	s := NewSession("tz1test")
	s.AddMultipleToQueue([]model.MusicNFT{nft("a"), nft("b")})
	s.PlayTrackAtIndex(1)
	s.ToggleRepeat() // all

	s.PlayNext()

	assert.Equal(t, 0, s.QueueIndex())
	assert.Equal(t, "a", s.CurrentTrack().ID)
}

func TestSession_PlayPreviousDeadband(t *testing.T) {
	s := NewSession("tz1test")
	s.AddMultipleToQueue([]model.MusicNFT{nft("a"), nft("b")})
	s.PlayTrackAtIndex(1)

	// Deep into the track: previous restarts rather than moving back.
	s.Progress(45)
	s.PlayPrevious()
	assert.Equal(t, 1, s.QueueIndex())
	assert.Equal(t, "b", s.CurrentTrack().ID)
	assert.Equal(t, 0.0, s.Snapshot().Position)

	// Right after track start: previous moves to the prior entry.
	s.Progress(1)
	s.PlayPrevious()
	assert.Equal(t, 0, s.QueueIndex())
	assert.Equal(t, "a", s.CurrentTrack().ID)
}

func TestSession_PlayPreviousAtHeadRestarts(t *testing.T) {
	s := NewSession("tz1test")
	s.AddToQueue(nft("a"))
	s.PlayTrackAtIndex(0)
	s.Progress(1)

	s.PlayPrevious()

	assert.Equal(t, 0, s.QueueIndex(), "no wrap at the head")
	assert.Equal(t, "a", s.CurrentTrack().ID)
}

func TestSession_RemoveCurrentStopsPlayback(t *testing.T) {
	s := NewSession("tz1test")
	s.AddMultipleToQueue([]model.MusicNFT{nft("a"), nft("b")})
	s.PlayTrackAtIndex(0)

	s.RemoveFromQueue(0)

	assert.Nil(t, s.CurrentTrack())
	assert.False(t, s.IsPlaying())
	assert.Equal(t, -1, s.QueueIndex())
}

func TestSession_ThirtySecondRule(t *testing.T) {
	rec := &fakeRecorder{}
	s := NewSession("tz1test")
	s.SetRecorder(rec)
	s.AddToQueue(nft("a"))
	s.PlayTrackAtIndex(0)

	s.Progress(10)
	assert.Empty(t, rec.plays)

	s.Progress(31)
	require.Len(t, rec.plays, 1)
	assert.Equal(t, "a", rec.plays[0].trackID)
	assert.Equal(t, "tz1test", rec.plays[0].address)

	// A single crossing cannot double-record.
	s.Progress(35)
	s.Progress(40)
	assert.Len(t, rec.plays, 1)
}

func TestSession_ShortTrackRecordsOnEnd(t *testing.T) {
	rec := &fakeRecorder{}
	s := NewSession("tz1test")
	s.SetRecorder(rec)
	short := nft("short")
	short.AudioMetadata.Duration = 12
	s.AddToQueue(short)
	s.PlayTrackAtIndex(0)

	s.Progress(11)
	s.Ended()

	require.Len(t, rec.plays, 1)
	assert.Equal(t, "short", rec.plays[0].trackID)
	assert.Equal(t, 12.0, rec.plays[0].duration)
}

func TestSession_EndAfterThresholdDoesNotDoubleRecord(t *testing.T) {
	rec := &fakeRecorder{}
	s := NewSession("tz1test")
	s.SetRecorder(rec)
	s.AddToQueue(nft("a"))
	s.PlayTrackAtIndex(0)

	s.Progress(31)
	s.Ended()

	assert.Len(t, rec.plays, 1)
}

func TestSession_VolumeClampAndMute(t *testing.T) {
	sink := &fakeSink{}
	s := NewSession("tz1test")
	s.BindSink(sink)

	s.SetVolume(1.5)
	assert.Equal(t, 1.0, s.Snapshot().Volume)
	s.SetVolume(-0.2)
	assert.Equal(t, 0.0, s.Snapshot().Volume)

	s.SetVolume(0.6)
	s.ToggleMute()
	st := s.Snapshot()
	assert.True(t, st.Muted)
	assert.Equal(t, 0.0, st.Volume)
	assert.Equal(t, 0.0, sink.volume)

	s.ToggleMute()
	st = s.Snapshot()
	assert.False(t, st.Muted)
	assert.Equal(t, 0.6, st.Volume, "pre-mute volume restored")
}

func TestSession_ControlsWithoutSinkAreNoOps(t *testing.T) {
	s := NewSession("tz1test")

	// None of these may panic with no sink and no track bound.
	s.SetVolume(0.5)
	s.ToggleMute()
	s.Seek(120)
	s.Play()
	s.Pause()
	s.PlayNext()
	s.PlayPrevious()
	s.PlayTrackAtIndex(3)

	assert.Nil(t, s.CurrentTrack())
	assert.Equal(t, -1, s.QueueIndex())
}

func TestSession_SeekClampsToDuration(t *testing.T) {
	s := NewSession("tz1test")
	track := nft("a")
	track.AudioMetadata.Duration = 100
	s.AddToQueue(track)
	s.PlayTrackAtIndex(0)

	s.Seek(500)
	assert.Equal(t, 100.0, s.Snapshot().Position)

	s.Seek(-5)
	assert.Equal(t, 0.0, s.Snapshot().Position)
}

func TestSession_SetCurrentTrackDoesNotStartPlayback(t *testing.T) {
	s := NewSession("tz1test")

	s.SetCurrentTrack(nft("a"))

	require.NotNil(t, s.CurrentTrack())
	assert.False(t, s.IsPlaying())
	assert.Equal(t, -1, s.QueueIndex(), "queue untouched")
}

func TestSession_SinkReceivesTrack(t *testing.T) {
	sink := &fakeSink{}
	s := NewSession("tz1test")
	s.BindSink(sink)
	s.AddMultipleToQueue([]model.MusicNFT{nft("a"), nft("b")})

	s.PlayTrackAtIndex(0)
	s.PlayNext()

	assert.Equal(t, []string{"a", "b"}, sink.playing)
}

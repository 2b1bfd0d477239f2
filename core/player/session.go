package player

import (
	"math/rand"
	"sync"
	"time"

	"tezbeat/model"
)

// PlayThreshold is the listen time after which a play is counted once per
// track session (the industry 30-second rule).
const PlayThreshold = 30.0

// previousDeadband is how far into a track a "previous" press restarts the
// current track instead of moving the queue pointer.
const previousDeadband = 3.0

// AudioSink is whatever audio backend is currently bound to the session.
// All calls are optional; a session without a sink treats volume, seek and
// mute as state-only updates.
type AudioSink interface {
	Play(track model.MusicNFT)
	Pause()
	Resume()
	Seek(position float64)
	SetVolume(volume float64)
}

// Recorder receives counted plays.
type Recorder interface {
	RecordPlay(address, trackID string, duration float64)
}

// Event is a player state transition, broadcast to subscribers.
type Event struct {
	Type     string  `json:"type"` // track, play, pause, stop, shuffle, repeat, volume, seek
	TrackID  string  `json:"trackId,omitempty"`
	Index    int     `json:"index"`
	Playing  bool    `json:"playing"`
	Shuffled bool    `json:"shuffled"`
	Repeat   string  `json:"repeat"`
	Volume   float64 `json:"volume"`
	Position float64 `json:"position"`
}

// Session holds the playback state for one wallet address. All mutation goes
// through its methods; none of them return errors for invalid input, they
// are guarded no-ops instead.
type Session struct {
	mu sync.Mutex

	address string
	queue   *Queue

	current  *model.MusicNFT
	playing  bool
	repeat   RepeatMode
	position float64

	volume        float64
	muted         bool
	preMuteVolume float64

	// playRecorded guards the 30-second rule so a single crossing cannot
	// double-record within one track session.
	playRecorded bool

	sink     AudioSink
	recorder Recorder
	onEvent  func(Event)
	onChange func(*Session)

	rng *rand.Rand
}

// NewSession creates an empty session for the address.
func NewSession(address string) *Session {
	return &Session{
		address: address,
		queue:   NewQueue(),
		volume:  1.0,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Address returns the wallet address that owns the session.
func (s *Session) Address() string {
	return s.address
}

// BindSink attaches an audio backend. Passing nil detaches it.
func (s *Session) BindSink(sink AudioSink) {
	s.mu.Lock()
	s.sink = sink
	s.mu.Unlock()
}

// SetRecorder attaches the play recorder.
func (s *Session) SetRecorder(r Recorder) {
	s.mu.Lock()
	s.recorder = r
	s.mu.Unlock()
}

// OnEvent registers the event broadcast callback.
func (s *Session) OnEvent(fn func(Event)) {
	s.mu.Lock()
	s.onEvent = fn
	s.mu.Unlock()
}

// OnChange registers a callback invoked after every mutation, for eager
// persistence of the queue snapshot.
func (s *Session) OnChange(fn func(*Session)) {
	s.mu.Lock()
	s.onChange = fn
	s.mu.Unlock()
}

// State is a read-only projection of the session.
type State struct {
	Address  string           `json:"address"`
	Current  *model.MusicNFT  `json:"current"`
	Queue    []model.MusicNFT `json:"queue"`
	Index    int              `json:"index"`
	Playing  bool             `json:"playing"`
	Shuffled bool             `json:"shuffled"`
	Repeat   string           `json:"repeat"`
	Volume   float64          `json:"volume"`
	Muted    bool             `json:"muted"`
	Position float64          `json:"position"`
}

// Snapshot returns the current state projection.
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return State{
		Address:  s.address,
		Current:  s.current,
		Queue:    s.queue.Tracks(),
		Index:    s.queue.Index(),
		Playing:  s.playing,
		Shuffled: s.queue.Shuffled(),
		Repeat:   s.repeat.String(),
		Volume:   s.volume,
		Muted:    s.muted,
		Position: s.position,
	}
}

// SetCurrentTrack sets the current track without starting playback or
// touching the queue.
func (s *Session) SetCurrentTrack(track model.MusicNFT) {
	s.mu.Lock()
	s.current = &track
	s.position = 0
	s.playRecorded = false
	s.mu.Unlock()
	s.emit("track")
	s.changed()
}

// AddToQueue appends a track. No de-duplication.
func (s *Session) AddToQueue(track model.MusicNFT) {
	s.mu.Lock()
	s.queue.Add(track)
	s.mu.Unlock()
	s.changed()
}

// AddMultipleToQueue appends tracks in order.
func (s *Session) AddMultipleToQueue(tracks []model.MusicNFT) {
	s.mu.Lock()
	s.queue.AddAll(tracks)
	s.mu.Unlock()
	s.changed()
}

// InsertNext inserts a track right after the current queue position.
func (s *Session) InsertNext(track model.MusicNFT) {
	s.mu.Lock()
	s.queue.InsertNext(track)
	s.mu.Unlock()
	s.changed()
}

// RemoveFromQueue removes the entry at index. Removing the currently
// selected entry stops playback and clears the current track.
func (s *Session) RemoveFromQueue(index int) {
	s.mu.Lock()
	removed, removedCurrent := s.queue.RemoveAt(index)
	if removedCurrent {
		s.current = nil
		s.playing = false
		s.position = 0
		if s.sink != nil {
			s.sink.Pause()
		}
	}
	s.mu.Unlock()
	if removedCurrent {
		s.emit("stop")
	}
	if removed {
		s.changed()
	}
}

// ClearQueue empties the queue and stops playback.
func (s *Session) ClearQueue() {
	s.mu.Lock()
	s.queue.Clear()
	s.current = nil
	s.playing = false
	s.position = 0
	if s.sink != nil {
		s.sink.Pause()
	}
	s.mu.Unlock()
	s.emit("stop")
	s.changed()
}

// QueueTracks returns the queue order.
func (s *Session) QueueTracks() []model.MusicNFT {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queue.Tracks()
}

// QueueIndex returns the current queue index.
func (s *Session) QueueIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queue.Index()
}

// CurrentTrack returns the current track, or nil.
func (s *Session) CurrentTrack() *model.MusicNFT {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// IsPlaying reports whether playback is running.
func (s *Session) IsPlaying() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playing
}

// RepeatMode returns the active repeat mode.
func (s *Session) RepeatMode() RepeatMode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.repeat
}

// PlayTrackAtIndex jumps to the queue entry and starts playback.
// Out of bounds is a guarded no-op.
func (s *Session) PlayTrackAtIndex(index int) {
	s.mu.Lock()
	track := s.queue.JumpTo(index)
	if track == nil {
		s.mu.Unlock()
		return
	}
	s.loadLocked(*track)
	s.mu.Unlock()
	s.emit("track")
	s.changed()
}

// Play resumes playback of the current track, if any.
func (s *Session) Play() {
	s.mu.Lock()
	if s.current == nil {
		s.mu.Unlock()
		return
	}
	s.playing = true
	if s.sink != nil {
		s.sink.Resume()
	}
	s.mu.Unlock()
	s.emit("play")
}

// Pause pauses playback.
func (s *Session) Pause() {
	s.mu.Lock()
	s.playing = false
	if s.sink != nil {
		s.sink.Pause()
	}
	s.mu.Unlock()
	s.emit("pause")
}

// TogglePlay flips between playing and paused.
func (s *Session) TogglePlay() {
	if s.IsPlaying() {
		s.Pause()
	} else {
		s.Play()
	}
}

// PlayNext advances repeat-mode-aware. Repeat-one restarts the same track
// without queue movement. At queue exhaustion with repeat off, playback
// pauses and the current track stays loaded.
func (s *Session) PlayNext() {
	s.mu.Lock()
	if s.repeat == RepeatOne && s.current != nil {
		s.position = 0
		s.playing = true
		s.playRecorded = false
		if s.sink != nil {
			s.sink.Seek(0)
			s.sink.Resume()
		}
		s.mu.Unlock()
		s.emit("play")
		return
	}

	track, ok := s.queue.Advance(s.repeat == RepeatAll)
	if !ok {
		// Exhausted: stop, but leave the last track loaded.
		s.playing = false
		if s.sink != nil {
			s.sink.Pause()
		}
		s.mu.Unlock()
		s.emit("pause")
		return
	}
	s.loadLocked(*track)
	s.mu.Unlock()
	s.emit("track")
	s.changed()
}

// PlayPrevious restarts the current track when more than three seconds have
// elapsed, or at the head of the queue; otherwise it moves back one entry.
func (s *Session) PlayPrevious() {
	s.mu.Lock()
	if s.position > previousDeadband || s.queue.Index() <= 0 {
		s.position = 0
		s.playRecorded = false
		if s.current != nil {
			s.playing = true
		}
		if s.sink != nil {
			s.sink.Seek(0)
			s.sink.Resume()
		}
		s.mu.Unlock()
		s.emit("seek")
		return
	}
	track, _ := s.queue.Retreat()
	if track != nil {
		s.loadLocked(*track)
	}
	s.mu.Unlock()
	s.emit("track")
	s.changed()
}

// ToggleShuffle flips shuffle, saving or restoring the queue order.
func (s *Session) ToggleShuffle() {
	s.mu.Lock()
	if s.queue.Shuffled() {
		s.queue.Unshuffle()
	} else {
		s.queue.Shuffle(s.rng)
	}
	s.mu.Unlock()
	s.emit("shuffle")
	s.changed()
}

// ToggleRepeat cycles off -> all -> one -> off.
func (s *Session) ToggleRepeat() {
	s.mu.Lock()
	s.repeat = s.repeat.Next()
	s.mu.Unlock()
	s.emit("repeat")
	s.changed()
}

// SetVolume clamps the volume to [0,1] and applies it to the bound sink.
func (s *Session) SetVolume(volume float64) {
	s.mu.Lock()
	if volume < 0 {
		volume = 0
	} else if volume > 1 {
		volume = 1
	}
	s.volume = volume
	s.muted = false
	if s.sink != nil {
		s.sink.SetVolume(volume)
	}
	s.mu.Unlock()
	s.emit("volume")
}

// ToggleMute mutes, preserving the pre-mute volume for restoration.
func (s *Session) ToggleMute() {
	s.mu.Lock()
	if s.muted {
		s.muted = false
		s.volume = s.preMuteVolume
	} else {
		s.muted = true
		s.preMuteVolume = s.volume
		s.volume = 0
	}
	if s.sink != nil {
		s.sink.SetVolume(s.volume)
	}
	s.mu.Unlock()
	s.emit("volume")
}

// Seek moves the playhead. Seeking past a known duration clamps to it; a
// session without a sink only updates the tracked position.
func (s *Session) Seek(position float64) {
	s.mu.Lock()
	if position < 0 {
		position = 0
	}
	if s.current != nil && s.current.AudioMetadata.Duration > 0 && position > s.current.AudioMetadata.Duration {
		position = s.current.AudioMetadata.Duration
	}
	s.position = position
	if s.sink != nil {
		s.sink.Seek(position)
	}
	s.mu.Unlock()
	s.emit("seek")
}

// Progress reports playback time from the audio backend. Crossing the play
// threshold records the play once per track session.
func (s *Session) Progress(position float64) {
	s.mu.Lock()
	s.position = position
	record := !s.playRecorded && position >= PlayThreshold && s.current != nil
	var trackID string
	if record {
		s.playRecorded = true
		trackID = s.current.ID
	}
	rec := s.recorder
	s.mu.Unlock()
	if record && rec != nil {
		rec.RecordPlay(s.address, trackID, position)
	}
}

// Ended handles a natural end of track: a short track that never crossed the
// threshold still counts as one play, then the queue advances.
func (s *Session) Ended() {
	s.mu.Lock()
	record := !s.playRecorded && s.current != nil
	var trackID string
	var duration float64
	if record {
		s.playRecorded = true
		trackID = s.current.ID
		duration = s.position
		if s.current.AudioMetadata.Duration > 0 {
			duration = s.current.AudioMetadata.Duration
		}
	}
	rec := s.recorder
	s.mu.Unlock()
	if record && rec != nil {
		rec.RecordPlay(s.address, trackID, duration)
	}
	s.PlayNext()
}

// loadLocked makes the track current and starts it on the sink.
// Caller holds s.mu.
func (s *Session) loadLocked(track model.MusicNFT) {
	s.current = &track
	s.position = 0
	s.playing = true
	s.playRecorded = false
	if s.sink != nil {
		s.sink.Play(track)
		s.sink.SetVolume(s.volume)
	}
}

func (s *Session) emit(eventType string) {
	s.mu.Lock()
	fn := s.onEvent
	if fn == nil {
		s.mu.Unlock()
		return
	}
	ev := Event{
		Type:     eventType,
		Index:    s.queue.Index(),
		Playing:  s.playing,
		Shuffled: s.queue.Shuffled(),
		Repeat:   s.repeat.String(),
		Volume:   s.volume,
		Position: s.position,
	}
	if s.current != nil {
		ev.TrackID = s.current.ID
	}
	s.mu.Unlock()
	fn(ev)
}

func (s *Session) changed() {
	s.mu.Lock()
	fn := s.onChange
	s.mu.Unlock()
	if fn != nil {
		fn(s)
	}
}

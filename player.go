package main

import (
	"errors"
	"fmt"
	"log"
	"sync"
)

// ErrEmptyLibrary is returned (wrapped in a PlaybackError) when playback is
// requested with no tracks scanned.
var ErrEmptyLibrary = errors.New("no tracks in the library")

// PlaybackError reports a track that could not be played. It is surfaced to
// the UI as a transient status line and never aborts the render loop.
type PlaybackError struct {
	Title string
	Err   error
}

func (e *PlaybackError) Error() string {
	if e.Title == "" {
		return fmt.Sprintf("playback failed: %v", e.Err)
	}
	return fmt.Sprintf("could not play %s: %v", e.Title, e.Err)
}

func (e *PlaybackError) Unwrap() error {
	return e.Err
}

const (
	defaultVolume = 0.7
	volumeStep    = 0.05
)

// Player owns playback state: the current track index, play/pause flags and
// the volume baseline. It drives the Backend and gates the visualizer feed.
type Player struct {
	backend Backend
	library *Library
	feed    *Feed

	mu      sync.RWMutex
	current int
	playing bool
	paused  bool
	volume  float64
}

func NewPlayer(backend Backend, library *Library) *Player {
	return &Player{
		backend: backend,
		library: library,
		volume:  defaultVolume,
	}
}

// AttachFeed wires the visualizer feed the player starts and stops around
// playback. Must be called before Play.
func (p *Player) AttachFeed(feed *Feed) {
	p.mu.Lock()
	p.feed = feed
	p.mu.Unlock()
}

// Play resumes in place when paused, otherwise loads and starts the track at
// the current index.
//
// The feed is started and stopped outside the state lock: its generation step
// calls back into IsActivelyPlaying, so joining it under p.mu would deadlock.
func (p *Player) Play() error {
	p.mu.Lock()
	err := p.playLocked()
	feed := p.feed
	p.mu.Unlock()

	if err == nil && feed != nil {
		feed.Start()
	}
	return err
}

func (p *Player) playLocked() error {
	if p.library.Len() == 0 {
		return &PlaybackError{Err: ErrEmptyLibrary}
	}

	if p.paused {
		p.backend.Unpause()
		p.paused = false
		p.playing = true
		return nil
	}

	track, _ := p.library.TrackAt(p.current)
	if err := p.backend.Load(track.Path); err != nil {
		return &PlaybackError{Title: track.Title, Err: err}
	}
	p.backend.SetVolume(p.volume)
	p.backend.Play()
	p.playing = true
	p.paused = false

	log.Printf("player: playing %q (index %d)", track.Title, p.current)
	return nil
}

func (p *Player) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.playing || p.paused {
		return
	}
	p.backend.Pause()
	p.paused = true
}

func (p *Player) Stop() {
	p.mu.Lock()
	p.stopLocked()
	feed := p.feed
	p.mu.Unlock()

	if feed != nil {
		feed.Stop()
	}
}

func (p *Player) stopLocked() {
	p.backend.Stop()
	p.playing = false
	p.paused = false
}

// Next stops playback and starts the following track, wrapping at the end of
// the playlist. A no-op on an empty library.
func (p *Player) Next() error {
	return p.skip(1)
}

// Previous stops playback and starts the preceding track, wrapping at the
// start of the playlist. A no-op on an empty library.
func (p *Player) Previous() error {
	return p.skip(-1)
}

func (p *Player) skip(delta int) error {
	p.mu.Lock()

	n := p.library.Len()
	if n == 0 {
		p.mu.Unlock()
		return nil
	}
	p.stopLocked()
	p.current = ((p.current+delta)%n + n) % n
	err := p.playLocked()
	feed := p.feed
	p.mu.Unlock()

	if feed != nil {
		if err == nil {
			feed.Start()
		} else {
			feed.Stop()
		}
	}
	return err
}

// SetVolume clamps v to [0,1], applies it to the backend immediately, and
// keeps it as the baseline for subsequent plays.
func (p *Player) SetVolume(v float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.volume = clamp(v, 0, 1)
	p.backend.SetVolume(p.volume)
}

func (p *Player) Volume() float64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.volume
}

func (p *Player) CurrentIndex() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.current
}

// CurrentTrack returns the track at the current index, or false when the
// library is empty.
func (p *Player) CurrentTrack() (Track, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.library.TrackAt(p.current)
}

func (p *Player) IsPlaying() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.playing
}

func (p *Player) IsPaused() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.paused
}

// IsActivelyPlaying reports whether audio is currently sounding: started, not
// paused, and the backend still has samples left.
func (p *Player) IsActivelyPlaying() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.playing && !p.paused && p.backend.Busy()
}

// Position returns the playback position in seconds, 0 when stopped.
func (p *Player) Position() float64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if !p.playing {
		return 0
	}
	return float64(p.backend.PositionMs()) / 1000
}

// Duration returns the current track's length in seconds. Failed lookups
// degrade to 0, they never surface I/O errors.
func (p *Player) Duration() float64 {
	track, ok := p.CurrentTrack()
	if !ok {
		return 0
	}
	if track.Duration > 0 {
		return track.Duration
	}
	return probeDuration(track.Path)
}

func (p *Player) Close() {
	p.Stop()
	p.backend.Close()
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

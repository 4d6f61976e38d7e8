package main

import (
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/flac"
	"github.com/gopxl/beep/mp3"
	"github.com/gopxl/beep/speaker"
	"github.com/gopxl/beep/vorbis"
	"github.com/gopxl/beep/wav"
)

// Backend is the playback engine contract the player core talks to. It keeps
// the core testable and the speaker an owned resource rather than package
// state. All calls must return promptly; none may block on audio I/O.
type Backend interface {
	Load(path string) error
	Play()
	Pause()
	Unpause()
	Stop()
	SetVolume(v float64)
	PositionMs() int
	Busy() bool
	Close()
}

const speakerSampleRate = beep.SampleRate(44100)

// beepBackend drives the speaker through gopxl/beep. One instance owns the
// speaker for the lifetime of the process.
type beepBackend struct {
	mu       sync.Mutex
	ctrl     *beep.Ctrl
	volume   *effects.Volume
	streamer beep.StreamSeekCloser
	format   beep.Format
	finished bool
}

func newBeepBackend() (*beepBackend, error) {
	if err := speaker.Init(speakerSampleRate, speakerSampleRate.N(time.Second/10)); err != nil {
		return nil, fmt.Errorf("init speaker: %w", err)
	}
	return &beepBackend{}, nil
}

// Load decodes the file at path and prepares it for playback, replacing any
// previously loaded stream.
func (b *beepBackend) Load(path string) error {
	b.Stop()

	file, err := os.Open(path)
	if err != nil {
		return err
	}

	var streamer beep.StreamSeekCloser
	var format beep.Format

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".mp3":
		streamer, format, err = mp3.Decode(file)
	case ".wav":
		streamer, format, err = wav.Decode(file)
	case ".flac":
		streamer, format, err = flac.Decode(file)
	case ".ogg":
		streamer, format, err = vorbis.Decode(file)
	default:
		file.Close()
		return fmt.Errorf("unsupported format: %s", ext)
	}
	if err != nil {
		file.Close()
		return fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}

	resampled := beep.Resample(4, format.SampleRate, speakerSampleRate, streamer)
	volume := &effects.Volume{Streamer: resampled, Base: 2}
	ctrl := &beep.Ctrl{Streamer: volume}

	b.mu.Lock()
	b.streamer = streamer
	b.format = format
	b.volume = volume
	b.ctrl = ctrl
	b.finished = false
	b.mu.Unlock()

	log.Printf("backend: loaded %s (%v)", path, format.SampleRate)
	return nil
}

func (b *beepBackend) Play() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.ctrl == nil {
		return
	}

	streamer := b.streamer
	speaker.Play(beep.Seq(b.ctrl, beep.Callback(func() {
		b.mu.Lock()
		b.finished = true
		b.mu.Unlock()
		streamer.Close()
	})))
}

func (b *beepBackend) Pause() {
	b.setPaused(true)
}

func (b *beepBackend) Unpause() {
	b.setPaused(false)
}

func (b *beepBackend) setPaused(paused bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.ctrl == nil {
		return
	}
	speaker.Lock()
	b.ctrl.Paused = paused
	speaker.Unlock()
}

func (b *beepBackend) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()

	speaker.Clear()
	if b.streamer != nil && !b.finished {
		b.streamer.Close()
	}
	b.ctrl = nil
	b.volume = nil
	b.streamer = nil
	b.finished = true
}

// SetVolume maps a linear volume in [0,1] onto the exponential scale the
// effects.Volume streamer expects. Zero is silence, not -inf dB.
func (b *beepBackend) SetVolume(v float64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.volume == nil {
		return
	}
	speaker.Lock()
	if v <= 0 {
		b.volume.Silent = true
	} else {
		b.volume.Silent = false
		b.volume.Volume = math.Log2(v)
	}
	speaker.Unlock()
}

func (b *beepBackend) PositionMs() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.streamer == nil || b.finished {
		return 0
	}
	speaker.Lock()
	pos := b.streamer.Position()
	speaker.Unlock()
	return int(b.format.SampleRate.D(pos) / time.Millisecond)
}

// Busy reports whether a loaded stream has samples left to play.
func (b *beepBackend) Busy() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.ctrl != nil && !b.finished
}

func (b *beepBackend) Close() {
	b.Stop()
	speaker.Close()
}

package main

import (
	"errors"
	"testing"
)

// fakeBackend records calls so the player state machine can be exercised
// without a speaker.
type fakeBackend struct {
	loaded   []string
	loadErr  error
	volume   float64
	busy     bool
	playing  bool
	paused   bool
	stops    int
	unpauses int
	posMs    int
}

func (f *fakeBackend) Load(path string) error {
	if f.loadErr != nil {
		return f.loadErr
	}
	f.loaded = append(f.loaded, path)
	return nil
}

func (f *fakeBackend) Play() {
	f.playing = true
	f.paused = false
	f.busy = true
}

func (f *fakeBackend) Pause() {
	f.paused = true
}

func (f *fakeBackend) Unpause() {
	f.paused = false
	f.unpauses++
}

func (f *fakeBackend) Stop() {
	f.playing = false
	f.paused = false
	f.busy = false
	f.stops++
}

func (f *fakeBackend) SetVolume(v float64) { f.volume = v }
func (f *fakeBackend) PositionMs() int     { return f.posMs }
func (f *fakeBackend) Busy() bool          { return f.busy }
func (f *fakeBackend) Close()              {}

func testLibrary(n int) *Library {
	lib := &Library{dir: "/nonexistent/music"}
	for i := 0; i < n; i++ {
		lib.tracks = append(lib.tracks, Track{
			Path:   "/nonexistent/music/track" + string(rune('a'+i)) + ".mp3",
			Title:  "Track " + string(rune('A'+i)),
			Artist: "Artist",
			Album:  "Album",
		})
	}
	return lib
}

func TestSetVolumeClamps(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{-0.5, 0},
		{0, 0},
		{0.35, 0.35},
		{1, 1},
		{1.7, 1},
	}
	for _, tt := range tests {
		p := NewPlayer(&fakeBackend{}, testLibrary(1))
		p.SetVolume(tt.in)
		if got := p.Volume(); got != tt.want {
			t.Errorf("SetVolume(%v): stored %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestVolumeAppliedToBackend(t *testing.T) {
	b := &fakeBackend{}
	p := NewPlayer(b, testLibrary(1))
	p.SetVolume(0.4)
	if b.volume != 0.4 {
		t.Errorf("backend volume = %v, want 0.4", b.volume)
	}
}

func TestVolumeBaselineUsedOnPlay(t *testing.T) {
	b := &fakeBackend{}
	p := NewPlayer(b, testLibrary(1))
	p.SetVolume(0.25)
	if err := p.Play(); err != nil {
		t.Fatalf("Play: %v", err)
	}
	if b.volume != 0.25 {
		t.Errorf("backend volume after Play = %v, want 0.25", b.volume)
	}
}

func TestNextPreviousWraparoundIdentity(t *testing.T) {
	for _, n := range []int{1, 2, 3, 5} {
		for start := 0; start < n; start++ {
			p := NewPlayer(&fakeBackend{}, testLibrary(n))
			p.current = start
			if err := p.Next(); err != nil {
				t.Fatalf("Next: %v", err)
			}
			if err := p.Previous(); err != nil {
				t.Fatalf("Previous: %v", err)
			}
			if got := p.CurrentIndex(); got != start {
				t.Errorf("n=%d start=%d: Next then Previous = %d, want %d", n, start, got, start)
			}
		}
	}
}

func TestNextWrapScenario(t *testing.T) {
	p := NewPlayer(&fakeBackend{}, testLibrary(3))

	for i, want := range []int{1, 2, 0} {
		if err := p.Next(); err != nil {
			t.Fatalf("Next #%d: %v", i+1, err)
		}
		if got := p.CurrentIndex(); got != want {
			t.Errorf("after Next #%d: index = %d, want %d", i+1, got, want)
		}
	}
}

func TestPreviousWrapsFromZero(t *testing.T) {
	p := NewPlayer(&fakeBackend{}, testLibrary(3))
	if err := p.Previous(); err != nil {
		t.Fatalf("Previous: %v", err)
	}
	if got := p.CurrentIndex(); got != 2 {
		t.Errorf("Previous from 0 = %d, want 2", got)
	}
}

func TestSkipOnEmptyLibraryIsNoOp(t *testing.T) {
	b := &fakeBackend{}
	p := NewPlayer(b, testLibrary(0))

	if err := p.Next(); err != nil {
		t.Errorf("Next on empty library: %v", err)
	}
	if err := p.Previous(); err != nil {
		t.Errorf("Previous on empty library: %v", err)
	}
	if p.CurrentIndex() != 0 || p.IsPlaying() || p.IsPaused() {
		t.Errorf("state changed on empty library: index=%d playing=%v paused=%v",
			p.CurrentIndex(), p.IsPlaying(), p.IsPaused())
	}
	if b.stops != 0 {
		t.Errorf("backend touched on empty library: %d stops", b.stops)
	}
}

func TestPlayEmptyLibrary(t *testing.T) {
	p := NewPlayer(&fakeBackend{}, testLibrary(0))

	err := p.Play()
	var pe *PlaybackError
	if !errors.As(err, &pe) {
		t.Fatalf("Play on empty library: got %v, want PlaybackError", err)
	}
	if !errors.Is(err, ErrEmptyLibrary) {
		t.Errorf("error does not wrap ErrEmptyLibrary: %v", err)
	}
	if p.IsPlaying() {
		t.Error("player marked playing after failed Play")
	}
}

func TestPlayBackendReject(t *testing.T) {
	b := &fakeBackend{loadErr: errors.New("corrupt frame header")}
	p := NewPlayer(b, testLibrary(2))

	err := p.Play()
	var pe *PlaybackError
	if !errors.As(err, &pe) {
		t.Fatalf("got %v, want PlaybackError", err)
	}
	if pe.Title != "Track A" {
		t.Errorf("error title = %q, want %q", pe.Title, "Track A")
	}
	if p.IsPlaying() {
		t.Error("player marked playing after backend rejection")
	}
}

func TestPauseResumeDoesNotReload(t *testing.T) {
	b := &fakeBackend{}
	p := NewPlayer(b, testLibrary(1))

	if err := p.Play(); err != nil {
		t.Fatalf("Play: %v", err)
	}
	p.Pause()
	if !p.IsPaused() || !p.IsPlaying() {
		t.Fatalf("after Pause: playing=%v paused=%v", p.IsPlaying(), p.IsPaused())
	}

	if err := p.Play(); err != nil {
		t.Fatalf("resume: %v", err)
	}
	if p.IsPaused() {
		t.Error("still paused after resume")
	}
	if len(b.loaded) != 1 {
		t.Errorf("resume reloaded the track: %d loads", len(b.loaded))
	}
	if b.unpauses != 1 {
		t.Errorf("unpauses = %d, want 1", b.unpauses)
	}
}

func TestPauseIsNoOpWhenNotPlaying(t *testing.T) {
	b := &fakeBackend{}
	p := NewPlayer(b, testLibrary(1))
	p.Pause()
	if p.IsPaused() {
		t.Error("paused without playing")
	}
}

func TestStopClearsState(t *testing.T) {
	b := &fakeBackend{}
	p := NewPlayer(b, testLibrary(1))

	if err := p.Play(); err != nil {
		t.Fatalf("Play: %v", err)
	}
	p.Pause()
	p.Stop()

	if p.IsPlaying() || p.IsPaused() {
		t.Errorf("after Stop: playing=%v paused=%v", p.IsPlaying(), p.IsPaused())
	}
	if b.stops == 0 {
		t.Error("backend never told to stop")
	}
}

func TestIsActivelyPlaying(t *testing.T) {
	b := &fakeBackend{}
	p := NewPlayer(b, testLibrary(1))

	if p.IsActivelyPlaying() {
		t.Error("actively playing before Play")
	}
	if err := p.Play(); err != nil {
		t.Fatalf("Play: %v", err)
	}
	if !p.IsActivelyPlaying() {
		t.Error("not actively playing after Play")
	}
	p.Pause()
	if p.IsActivelyPlaying() {
		t.Error("actively playing while paused")
	}
	p.Play()
	b.busy = false // stream drained
	if p.IsActivelyPlaying() {
		t.Error("actively playing with idle backend")
	}
}

func TestPositionZeroWhenStopped(t *testing.T) {
	b := &fakeBackend{posMs: 4500}
	p := NewPlayer(b, testLibrary(1))

	if got := p.Position(); got != 0 {
		t.Errorf("Position while stopped = %v, want 0", got)
	}
	if err := p.Play(); err != nil {
		t.Fatalf("Play: %v", err)
	}
	if got := p.Position(); got != 4.5 {
		t.Errorf("Position = %v, want 4.5", got)
	}
}

func TestDurationDegradesToZero(t *testing.T) {
	p := NewPlayer(&fakeBackend{}, testLibrary(1))
	// track path does not exist, probe must degrade rather than error
	if got := p.Duration(); got != 0 {
		t.Errorf("Duration = %v, want 0", got)
	}

	empty := NewPlayer(&fakeBackend{}, testLibrary(0))
	if got := empty.Duration(); got != 0 {
		t.Errorf("Duration on empty library = %v, want 0", got)
	}
}

func TestPlayStartsFeedAndStopHaltsIt(t *testing.T) {
	b := &fakeBackend{}
	p := NewPlayer(b, testLibrary(1))
	feed := NewFeed(p.IsActivelyPlaying)
	p.AttachFeed(feed)

	if err := p.Play(); err != nil {
		t.Fatalf("Play: %v", err)
	}
	feed.mu.RLock()
	running := feed.running
	feed.mu.RUnlock()
	if !running {
		t.Error("feed not started by Play")
	}

	p.Stop()
	feed.mu.RLock()
	running = feed.running
	feed.mu.RUnlock()
	if running {
		t.Error("feed still running after Stop")
	}
}

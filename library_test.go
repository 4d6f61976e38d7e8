package main

import (
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestCleanTitle(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/music/01 - Autumn Leaves.mp3", "Autumn Leaves"},
		{"/music/1. Take Five.flac", "Take Five"},
		{"/music/03_Blue in Green.ogg", "Blue in Green"},
		{"/music/12 So What.wav", "So What"},
		{"/music/Freddie Freeloader.mp3", "Freddie Freeloader"},
		{"/music/4x4 Groove.mp3", "4x4 Groove"},
	}
	for _, tt := range tests {
		if got := cleanTitle(tt.path); got != tt.want {
			t.Errorf("cleanTitle(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestScanGeneratedSamples(t *testing.T) {
	dir := t.TempDir()
	if err := createSampleTracks(dir); err != nil {
		t.Fatalf("createSampleTracks: %v", err)
	}

	lib, err := NewLibrary(dir)
	if err != nil {
		t.Fatalf("NewLibrary: %v", err)
	}
	if lib.Len() != len(sampleSpecs) {
		t.Fatalf("found %d tracks, want %d", lib.Len(), len(sampleSpecs))
	}

	for _, track := range lib.Tracks() {
		if track.Artist != "Unknown Artist" {
			t.Errorf("%s: artist = %q, want default", track.Title, track.Artist)
		}
		if math.Abs(track.Duration-3) > 0.2 {
			t.Errorf("%s: duration = %v, want ~3s", track.Title, track.Duration)
		}
	}

	// scan ignores unsupported files
	if err := os.WriteFile(filepath.Join(dir, "cover.jpg"), []byte("not audio"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := lib.Refresh(); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if lib.Len() != len(sampleSpecs) {
		t.Errorf("after adding non-audio file: %d tracks, want %d", lib.Len(), len(sampleSpecs))
	}
}

func TestScanMissingDirectory(t *testing.T) {
	if _, err := NewLibrary(filepath.Join(t.TempDir(), "does-not-exist")); err == nil {
		t.Error("expected error for missing directory")
	}
}

func TestSortTracks(t *testing.T) {
	tracks := []Track{
		{Title: "Zebra", Artist: "Alpha"},
		{Title: "Apple", Artist: "Beta"},
		{Title: "Apple", Artist: "Alpha"},
	}
	sortTracks(tracks)

	want := []struct{ title, artist string }{
		{"Apple", "Alpha"},
		{"Zebra", "Alpha"},
		{"Apple", "Beta"},
	}
	for i, w := range want {
		if tracks[i].Title != w.title || tracks[i].Artist != w.artist {
			t.Errorf("tracks[%d] = %s/%s, want %s/%s",
				i, tracks[i].Artist, tracks[i].Title, w.artist, w.title)
		}
	}
}

func TestSearch(t *testing.T) {
	lib := &Library{tracks: []Track{
		{Title: "So What", Artist: "Miles Davis", Album: "Kind of Blue"},
		{Title: "Take Five", Artist: "Dave Brubeck", Album: "Time Out"},
		{Title: "Blue Rondo", Artist: "Dave Brubeck", Album: "Time Out"},
	}}

	tests := []struct {
		query string
		want  int
	}{
		{"", 3},
		{"blue", 2}, // album "Kind of Blue" and title "Blue Rondo"
		{"BRUBECK", 2},
		{"time out", 2},
		{"so what", 1},
		{"coltrane", 0},
	}
	for _, tt := range tests {
		if got := len(lib.Search(tt.query)); got != tt.want {
			t.Errorf("Search(%q) = %d results, want %d", tt.query, got, tt.want)
		}
	}
}

func TestTrackAtBounds(t *testing.T) {
	lib := testLibrary(2)

	if _, ok := lib.TrackAt(-1); ok {
		t.Error("TrackAt(-1) reported ok")
	}
	if _, ok := lib.TrackAt(2); ok {
		t.Error("TrackAt(len) reported ok")
	}
	if track, ok := lib.TrackAt(1); !ok || track.Title != "Track B" {
		t.Errorf("TrackAt(1) = %+v, %v", track, ok)
	}
}

func TestProbeDurationDegradesToZero(t *testing.T) {
	if got := probeDuration("/nonexistent/file.mp3"); got != 0 {
		t.Errorf("missing file duration = %v, want 0", got)
	}
	if got := probeDuration("/tmp/file.xyz"); got != 0 {
		t.Errorf("unsupported extension duration = %v, want 0", got)
	}

	// a corrupt file with a supported extension must degrade, not error
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.flac")
	if err := os.WriteFile(bad, []byte("garbage"), 0o644); err != nil {
		t.Fatal(err)
	}
	if got := probeDuration(bad); got != 0 {
		t.Errorf("corrupt file duration = %v, want 0", got)
	}
}

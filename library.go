package main

import (
	"io"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/dhowden/tag"
	"github.com/go-audio/wav"
	"github.com/jfreymuth/oggvorbis"
	"github.com/mewkiz/flac"
	"github.com/tcolgate/mp3"
)

// Track is one entry in the music library. Immutable once scanned.
type Track struct {
	Path     string
	Title    string
	Artist   string
	Album    string
	Duration float64 // seconds, 0 when unknown
}

var supportedFormats = map[string]bool{
	".mp3":  true,
	".flac": true,
	".ogg":  true,
	".wav":  true,
}

// Library holds the scanned music collection for a single directory.
type Library struct {
	dir    string
	tracks []Track
}

func NewLibrary(dir string) (*Library, error) {
	lib := &Library{dir: dir}
	if err := lib.Refresh(); err != nil {
		return nil, err
	}
	return lib, nil
}

// Refresh rescans the music directory, replacing the track list.
func (l *Library) Refresh() error {
	var tracks []Track

	err := filepath.Walk(l.dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		if supportedFormats[strings.ToLower(filepath.Ext(path))] {
			tracks = append(tracks, extractMetadata(path))
		}
		return nil
	})
	if err != nil {
		return err
	}

	sortTracks(tracks)
	l.tracks = tracks
	log.Printf("library: found %d tracks in %s", len(tracks), l.dir)
	return nil
}

// sortTracks orders the playlist by artist, then title.
func sortTracks(tracks []Track) {
	sort.Slice(tracks, func(i, j int) bool {
		if tracks[i].Artist != tracks[j].Artist {
			return tracks[i].Artist < tracks[j].Artist
		}
		return tracks[i].Title < tracks[j].Title
	})
}

// Tracks returns the scanned collection in playlist order.
func (l *Library) Tracks() []Track {
	return l.tracks
}

func (l *Library) Len() int {
	return len(l.tracks)
}

// TrackAt returns the track at index i, or false when out of range.
func (l *Library) TrackAt(i int) (Track, bool) {
	if i < 0 || i >= len(l.tracks) {
		return Track{}, false
	}
	return l.tracks[i], true
}

// Search returns all tracks whose title, artist or album contains the query,
// case-insensitively. An empty query returns the whole collection.
func (l *Library) Search(query string) []Track {
	if query == "" {
		return l.tracks
	}
	query = strings.ToLower(query)

	var results []Track
	for _, t := range l.tracks {
		if strings.Contains(strings.ToLower(t.Title), query) ||
			strings.Contains(strings.ToLower(t.Artist), query) ||
			strings.Contains(strings.ToLower(t.Album), query) {
			results = append(results, t)
		}
	}
	return results
}

func extractMetadata(path string) Track {
	track := Track{
		Path:   path,
		Title:  cleanTitle(path),
		Artist: "Unknown Artist",
		Album:  "Unknown Album",
	}

	file, err := os.Open(path)
	if err != nil {
		return track
	}
	defer file.Close()

	if meta, err := tag.ReadFrom(file); err == nil {
		if title := meta.Title(); title != "" {
			track.Title = title
		}
		if artist := meta.Artist(); artist != "" {
			track.Artist = artist
		}
		if album := meta.Album(); album != "" {
			track.Album = album
		}
	}

	track.Duration = probeDuration(path)
	return track
}

var trackNumberPrefix = regexp.MustCompile(`^\d+[\s._-]+`)

// cleanTitle derives a display title from the filename, stripping the
// extension and any leading track number ("01 - Song", "1. Song").
func cleanTitle(path string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return trackNumberPrefix.ReplaceAllString(base, "")
}

// probeDuration reads the container headers to determine track length in
// seconds. Any parse or I/O failure degrades to 0 rather than erroring.
func probeDuration(path string) float64 {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3":
		return mp3Duration(path)
	case ".flac":
		return flacDuration(path)
	case ".ogg":
		return oggDuration(path)
	case ".wav":
		return wavDuration(path)
	default:
		return 0
	}
}

func mp3Duration(path string) float64 {
	file, err := os.Open(path)
	if err != nil {
		return 0
	}
	defer file.Close()

	decoder := mp3.NewDecoder(file)
	var frames int
	var sampleRate int
	for {
		frame := mp3.Frame{}
		if err := decoder.Decode(&frame, &sampleRate); err != nil {
			if err != io.EOF {
				return 0
			}
			break
		}
		frames++
	}
	if sampleRate == 0 || frames == 0 {
		return 0
	}

	// 1152 samples per frame for MPEG-1 Layer III
	return float64(frames*1152) / float64(sampleRate)
}

func flacDuration(path string) float64 {
	stream, err := flac.ParseFile(path)
	if err != nil {
		return 0
	}
	info := stream.Info
	if info == nil || info.SampleRate == 0 || info.NSamples == 0 {
		return 0
	}
	return float64(info.NSamples) / float64(info.SampleRate)
}

func oggDuration(path string) float64 {
	file, err := os.Open(path)
	if err != nil {
		return 0
	}
	defer file.Close()

	reader, err := oggvorbis.NewReader(file)
	if err != nil {
		return 0
	}
	if reader.SampleRate() == 0 {
		return 0
	}
	return float64(reader.Length()) / float64(reader.SampleRate())
}

func wavDuration(path string) float64 {
	file, err := os.Open(path)
	if err != nil {
		return 0
	}
	defer file.Close()

	decoder := wav.NewDecoder(file)
	if !decoder.IsValidFile() {
		return 0
	}
	d, err := decoder.Duration()
	if err != nil {
		return 0
	}
	return d.Seconds()
}

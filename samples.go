package main

import (
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const (
	sampleRate     = 44100
	sampleBitDepth = 16
)

type sampleSpec struct {
	filename  string
	frequency float64 // Hz
	duration  float64 // seconds
}

var sampleSpecs = []sampleSpec{
	{"sample_song_1.wav", 440, 3}, // A4
	{"sample_song_2.wav", 523, 3}, // C5
	{"sample_song_3.wav", 392, 3}, // G4
}

// createSampleTracks writes a few sine-tone WAV files into dir so the player
// has something to play on a fresh setup.
func createSampleTracks(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create sample directory: %w", err)
	}

	for _, spec := range sampleSpecs {
		path := filepath.Join(dir, spec.filename)
		if err := writeSineWAV(path, spec.frequency, spec.duration); err != nil {
			return fmt.Errorf("write %s: %w", spec.filename, err)
		}
		log.Printf("samples: wrote %s (%.0f Hz, %.0fs)", path, spec.frequency, spec.duration)
	}
	return nil
}

func writeSineWAV(path string, frequency, duration float64) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}

	numSamples := int(duration * sampleRate)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: sampleRate},
		SourceBitDepth: sampleBitDepth,
		Data:           make([]int, numSamples),
	}

	const amplitude = 0.4 * math.MaxInt16
	for i := range buf.Data {
		t := float64(i) / sampleRate
		buf.Data[i] = int(amplitude * math.Sin(2*math.Pi*frequency*t))
	}

	enc := wav.NewEncoder(file, sampleRate, sampleBitDepth, 1, 1)
	if err := enc.Write(buf); err != nil {
		enc.Close()
		file.Close()
		return err
	}
	if err := enc.Close(); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

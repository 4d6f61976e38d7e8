package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var (
	flagDirectory     string
	flagCreateSamples bool
)

func defaultMusicDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, "Music")
}

var rootCmd = &cobra.Command{
	Use:   "tremolo",
	Short: "A terminal music player with a playback visualizer",
	Long: `Tremolo scans a directory for audio files (mp3, flac, ogg, wav),
plays them in your terminal, and renders a live visualizer.

Controls:
  SPACE    Play / Pause      N / P  Next / Previous
  S        Stop              V      Cycle visualizer mode
  Up/Down  Volume            Q      Quit`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run()
	},
}

func init() {
	rootCmd.Flags().StringVarP(&flagDirectory, "directory", "d", defaultMusicDir(),
		"directory containing music files")
	rootCmd.Flags().BoolVar(&flagCreateSamples, "create-samples", false,
		"generate sample sine-tone tracks in the music directory")
}

func run() error {
	setupDebugLog()

	if flagCreateSamples {
		fmt.Printf("Generating sample tracks in %s...\n", flagDirectory)
		if err := createSampleTracks(flagDirectory); err != nil {
			return err
		}
	}

	fmt.Println("♫ Terminal Music Player")
	fmt.Printf("Scanning for music in: %s\n", flagDirectory)

	library, err := NewLibrary(flagDirectory)
	if err != nil {
		return fmt.Errorf("scan library: %w", err)
	}
	fmt.Printf("Found %d tracks\n", library.Len())

	backend, err := newBeepBackend()
	if err != nil {
		return fmt.Errorf("init audio: %w", err)
	}

	player := NewPlayer(backend, library)
	defer player.Close()

	feed := NewFeed(player.IsActivelyPlaying)
	player.AttachFeed(feed)

	return NewUI(player, feed, library).Run()
}

// setupDebugLog routes the standard logger to a file so log output never
// corrupts the rendered frame.
func setupDebugLog() {
	logFile, err := os.OpenFile(filepath.Join(os.TempDir(), "tremolo_debug.log"),
		os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		log.SetOutput(os.Stderr)
		return
	}
	log.SetOutput(logFile)
	log.Printf("tremolo starting")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

package main

import (
	"math/rand"
	"sync"
	"time"
)

const (
	// NumBins is the length of the amplitude buffer, loosely one value per
	// frequency band.
	NumBins = 64

	generateInterval = 50 * time.Millisecond
	peakCount        = 5
	smoothingOld     = 0.7
	smoothingNew     = 0.3
)

// Feed holds the shared amplitude buffer and regenerates it on its own
// cadence while playback is active. The data is synthetic (random noise with
// a few peaks), not a spectral analysis of the audio stream.
type Feed struct {
	busy     func() bool
	interval time.Duration

	mu      sync.RWMutex
	buf     [NumBins]float64
	rng     *rand.Rand
	stop    chan struct{}
	done    chan struct{}
	running bool
}

// NewFeed creates a stopped feed. busy gates generation: while it reports
// false the buffer is left untouched. A nil busy generates unconditionally.
func NewFeed(busy func() bool) *Feed {
	return &Feed{
		busy:     busy,
		interval: generateInterval,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Start launches the background generation step. Calling Start on a running
// feed is a no-op.
func (f *Feed) Start() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.running {
		return
	}
	f.stop = make(chan struct{})
	f.done = make(chan struct{})
	f.running = true
	go f.run(f.stop, f.done)
}

// Stop signals the generation step and waits for it to exit. The buffer keeps
// its last values; it is not zeroed.
func (f *Feed) Stop() {
	f.mu.Lock()
	if !f.running {
		f.mu.Unlock()
		return
	}
	f.running = false
	stop, done := f.stop, f.done
	f.mu.Unlock()

	close(stop)
	<-done
}

func (f *Feed) run(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if f.busy != nil && !f.busy() {
				continue
			}
			f.step()
		}
	}
}

// step produces one synthetic frame and blends it into the buffer with
// exponential smoothing.
func (f *Feed) step() {
	f.mu.Lock()
	defer f.mu.Unlock()

	var frame [NumBins]float64
	for i := range frame {
		frame[i] = f.rng.Float64() * 0.3
	}
	for i := 0; i < peakCount; i++ {
		frame[f.rng.Intn(NumBins)] = f.rng.Float64()*0.7 + 0.3
	}
	for i := range f.buf {
		f.buf[i] = f.buf[i]*smoothingOld + frame[i]*smoothingNew
	}
}

// Buffer returns a snapshot copy of the amplitude buffer, safe to read while
// generation continues.
func (f *Feed) Buffer() []float64 {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]float64, NumBins)
	copy(out, f.buf[:])
	return out
}

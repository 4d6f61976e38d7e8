package main

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Mode selects the visualization algorithm.
type Mode int

const (
	ModeBars Mode = iota
	ModeWave
	ModeSpectrum
)

func (m Mode) String() string {
	switch m {
	case ModeWave:
		return "wave"
	case ModeSpectrum:
		return "spectrum"
	default:
		return "bars"
	}
}

// Next cycles bars -> wave -> spectrum -> bars.
func (m Mode) Next() Mode {
	return (m + 1) % 3
}

// gradient maps a scalar position onto 12 terminal colors, blue through
// magenta. Indexes follow the ANSI 16-color palette.
var gradient = [12]lipgloss.Color{
	"12", // bright blue
	"4",  // blue
	"6",  // cyan
	"14", // bright cyan
	"2",  // green
	"10", // bright green
	"3",  // yellow
	"11", // bright yellow
	"1",  // red
	"9",  // bright red
	"5",  // magenta
	"13", // bright magenta
}

const idlePrompt = "♫ Press SPACE to play music ♫"

// Cell is one styled character in the rendered grid. A zero Color means
// unstyled.
type Cell struct {
	Ch    rune
	Color lipgloss.Color
}

// Visualizer renders an amplitude buffer into a grid of styled cells. It is
// stateless aside from the mode and the grid dimensions.
type Visualizer struct {
	mode   Mode
	width  int
	height int
}

func NewVisualizer(width, height int) *Visualizer {
	return &Visualizer{width: width, height: height}
}

func (v *Visualizer) Mode() Mode {
	return v.mode
}

func (v *Visualizer) SetMode(m Mode) {
	v.mode = m
}

func (v *Visualizer) CycleMode() {
	v.mode = v.mode.Next()
}

func (v *Visualizer) SetSize(width, height int) {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	v.width = width
	v.height = height
}

// Render maps the buffer to a height x width grid. When playback is inactive
// it renders the fixed idle frame regardless of mode or buffer contents.
func (v *Visualizer) Render(data []float64, playing bool) [][]Cell {
	if !playing {
		return v.renderIdle()
	}
	switch v.mode {
	case ModeWave:
		return v.renderWave(data)
	case ModeSpectrum:
		return v.renderSpectrum(data)
	default:
		return v.renderBars(data)
	}
}

func (v *Visualizer) blankGrid() [][]Cell {
	grid := make([][]Cell, v.height)
	for y := range grid {
		grid[y] = make([]Cell, v.width)
		for x := range grid[y] {
			grid[y][x].Ch = ' '
		}
	}
	return grid
}

func (v *Visualizer) renderIdle() [][]Cell {
	grid := v.blankGrid()
	mid := v.height / 2

	prompt := []rune(idlePrompt)
	start := (v.width - len(prompt)) / 2
	if start < 0 {
		start = 0
	}
	for i, r := range prompt {
		x := start + i
		if x >= v.width {
			break
		}
		grid[mid][x] = Cell{Ch: r, Color: gradient[3]} // bright cyan
	}
	return grid
}

// renderBars draws one two-cell column per resampled bin, filled bottom-up,
// colored by that bar's scaled height relative to the grid height.
func (v *Visualizer) renderBars(data []float64) [][]Cell {
	grid := v.blankGrid()

	numBars := v.width / 2
	if numBars > len(data) {
		numBars = len(data)
	}
	bins := resample(data, numBars)

	for x, val := range bins {
		barHeight := val * float64(v.height)
		color := gradient[gradientIndex(barHeight/float64(v.height))]
		for y := v.height; y >= 1; y-- {
			if barHeight < float64(y) {
				continue
			}
			row := v.height - y
			grid[row][2*x] = Cell{Ch: '▮', Color: color}
			if 2*x+1 < v.width {
				grid[row][2*x+1] = Cell{Ch: '▮', Color: color}
			}
		}
	}
	return grid
}

// renderWave plots one dot per resampled point, offset from the center row by
// the bin amplitude, colored by distance from center.
func (v *Visualizer) renderWave(data []float64) [][]Cell {
	grid := v.blankGrid()

	numPoints := v.width
	if numPoints > len(data) {
		numPoints = len(data)
	}
	points := resample(data, numPoints)

	mid := v.height / 2
	half := v.height / 2
	if half < 1 {
		half = 1
	}

	for x, val := range points {
		y := mid - int(val*float64(half))
		if y < 0 {
			y = 0
		}
		if y > v.height-1 {
			y = v.height - 1
		}
		dist := math.Abs(float64(y-mid)) / float64(half)
		grid[y][x] = Cell{Ch: '●', Color: gradient[gradientIndex(dist)]}
	}
	return grid
}

// renderSpectrum fills columns bottom-up like bars, but compresses amplitudes
// logarithmically and colors by horizontal position, giving a fixed
// left-to-right gradient.
func (v *Visualizer) renderSpectrum(data []float64) [][]Cell {
	grid := v.blankGrid()

	numSegments := v.width
	if numSegments > len(data) {
		numSegments = len(data)
	}
	segments := resample(data, numSegments)

	for x, val := range segments {
		intensity := math.Log10(val+1) * 1.5 * float64(v.height)
		color := gradient[gradientIndex(float64(x)/float64(numSegments))]
		for y := v.height; y >= 1; y-- {
			if intensity < float64(y) {
				continue
			}
			grid[v.height-y][x] = Cell{Ch: '█', Color: color}
		}
	}
	return grid
}

// gradientIndex maps a proportional position to a gradient step, clamped to
// the palette.
func gradientIndex(pos float64) int {
	idx := int(pos * float64(len(gradient)))
	if idx < 0 {
		idx = 0
	}
	if idx > len(gradient)-1 {
		idx = len(gradient) - 1
	}
	return idx
}

// resample picks n values from data by nearest-index lookup over a linear
// mapping. No interpolation.
func resample(data []float64, n int) []float64 {
	if n <= 0 || len(data) == 0 {
		return nil
	}
	out := make([]float64, n)
	if n == 1 {
		out[0] = data[0]
		return out
	}
	for i := range out {
		idx := i * (len(data) - 1) / (n - 1)
		out[i] = data[idx]
	}
	return out
}

var cellStyles = map[lipgloss.Color]lipgloss.Style{}

func styleFor(c lipgloss.Color) lipgloss.Style {
	style, ok := cellStyles[c]
	if !ok {
		style = lipgloss.NewStyle().Foreground(c)
		cellStyles[c] = style
	}
	return style
}

// renderGrid flattens a cell grid into terminal lines, styling runs of
// same-colored cells together.
func renderGrid(grid [][]Cell) []string {
	lines := make([]string, len(grid))
	for y, row := range grid {
		var sb strings.Builder
		var run []rune
		var runColor lipgloss.Color

		flush := func() {
			if len(run) == 0 {
				return
			}
			if runColor == "" {
				sb.WriteString(string(run))
			} else {
				sb.WriteString(styleFor(runColor).Render(string(run)))
			}
			run = run[:0]
		}

		for _, cell := range row {
			ch := cell.Ch
			if ch == 0 {
				ch = ' '
			}
			if cell.Color != runColor {
				flush()
				runColor = cell.Color
			}
			run = append(run, ch)
		}
		flush()
		lines[y] = sb.String()
	}
	return lines
}

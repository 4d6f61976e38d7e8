package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// Action is a dispatched user command.
type Action int

const (
	ActionNone Action = iota
	ActionPlayPause
	ActionStop
	ActionNext
	ActionPrevious
	ActionQuit
	ActionChangeVisualizer
	ActionVolumeUp
	ActionVolumeDown
	ActionRewind
	ActionForward
)

var runeActions = map[byte]Action{
	' ': ActionPlayPause,
	's': ActionStop,
	'n': ActionNext,
	'p': ActionPrevious,
	'q': ActionQuit,
	'v': ActionChangeVisualizer,
}

var arrowActions = map[Key]Action{
	KeyUp:    ActionVolumeUp,
	KeyDown:  ActionVolumeDown,
	KeyLeft:  ActionRewind,
	KeyRight: ActionForward,
}

// actionFor maps a key event to its action; unbound keys map to ActionNone.
func actionFor(ev KeyEvent) Action {
	if ev.Key == KeyRune {
		return runeActions[ev.Ch]
	}
	return arrowActions[ev.Key]
}

const (
	tickInterval   = 100 * time.Millisecond
	visibleRows    = 10
	statusDuration = 3 * time.Second
)

var (
	panelBorder = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("6"))
	panelTitleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Bold(true)
	labelStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	selectedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Bold(true)
	mutedStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	statusStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	keyStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Bold(true)
)

// UI is the cooperative single-threaded driver: each tick it rebuilds the
// frame from live player and feed state, pushes it to the terminal, polls
// input once, dispatches, and sleeps the remainder of the interval.
type UI struct {
	player  *Player
	feed    *Feed
	library *Library
	vis     *Visualizer
	input   *InputReader
	out     io.Writer

	selected     int
	scrollOffset int
	status       string
	statusUntil  time.Time
	running      bool
	width        int
	height       int
}

func NewUI(player *Player, feed *Feed, library *Library) *UI {
	return &UI{
		player:  player,
		feed:    feed,
		library: library,
		vis:     NewVisualizer(60, 8),
		input:   NewInputReader(),
		out:     os.Stdout,
		width:   80,
		height:  24,
	}
}

// Run drives the loop until quit or interrupt. On exit the feed and player
// are stopped and the terminal is released, also on the error path.
func (u *UI) Run() error {
	u.running = true

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(interrupt)

	fmt.Fprint(u.out, "\033[?25l\033[2J")
	defer func() {
		u.feed.Stop()
		u.player.Stop()
		fmt.Fprint(u.out, "\033[?25h\033[2J\033[H")
	}()

	for u.running {
		start := time.Now()

		select {
		case <-interrupt:
			log.Printf("ui: interrupt, shutting down")
			u.running = false
			continue
		default:
		}

		u.resize()
		u.pushFrame(u.buildFrame())

		ev, err := u.input.Poll()
		if err != nil {
			return fmt.Errorf("terminal input: %w", err)
		}
		u.dispatch(actionFor(ev))

		if rest := tickInterval - time.Since(start); rest > 0 {
			time.Sleep(rest)
		}
	}
	return nil
}

func (u *UI) resize() {
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 && h > 0 {
		u.width = w
		u.height = h
	}
}

func (u *UI) dispatch(a Action) {
	switch a {
	case ActionPlayPause:
		if u.player.IsPlaying() && !u.player.IsPaused() {
			u.player.Pause()
		} else if err := u.player.Play(); err != nil {
			u.setStatus(err.Error())
		}
	case ActionStop:
		u.player.Stop()
	case ActionNext:
		if err := u.player.Next(); err != nil {
			u.setStatus(err.Error())
		}
		u.selected = u.player.CurrentIndex()
	case ActionPrevious:
		if err := u.player.Previous(); err != nil {
			u.setStatus(err.Error())
		}
		u.selected = u.player.CurrentIndex()
	case ActionQuit:
		u.running = false
	case ActionChangeVisualizer:
		u.vis.CycleMode()
	case ActionVolumeUp:
		u.player.SetVolume(u.player.Volume() + volumeStep)
	case ActionVolumeDown:
		u.player.SetVolume(u.player.Volume() - volumeStep)
	case ActionRewind, ActionForward:
		// accepted but not supported by the backend
	}
}

func (u *UI) setStatus(msg string) {
	u.status = msg
	u.statusUntil = time.Now().Add(statusDuration)
}

// ensureVisible keeps the selected row inside the playlist window.
func (u *UI) ensureVisible() {
	if u.selected < u.scrollOffset {
		u.scrollOffset = u.selected
	} else if u.selected >= u.scrollOffset+visibleRows {
		u.scrollOffset = u.selected - visibleRows + 1
	}
}

// pushFrame writes the frame with a full redraw from the home position. Raw
// mode needs explicit carriage returns and clear-to-EOL on every line.
func (u *UI) pushFrame(frame string) {
	frame = strings.ReplaceAll(frame, "\n", "\033[K\r\n")
	fmt.Fprint(u.out, "\033[H"+frame+"\033[K\033[J")
}

func (u *UI) buildFrame() string {
	header := u.renderHeader()
	footer := u.renderFooter()

	bodyHeight := u.height - lipgloss.Height(header) - lipgloss.Height(footer) - 1
	if bodyHeight < 5 {
		bodyHeight = 5
	}

	visWidth := u.width * 2 / 3
	listWidth := u.width - visWidth
	if visWidth < 20 {
		visWidth = 20
	}
	if listWidth < 20 {
		listWidth = 20
	}

	body := lipgloss.JoinHorizontal(lipgloss.Top,
		u.renderVisualizerPanel(visWidth, bodyHeight),
		u.renderPlaylistPanel(listWidth, bodyHeight),
	)

	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}

func (u *UI) renderHeader() string {
	inner := u.width - 4
	if inner < 20 {
		inner = 20
	}

	boxWidth := u.width - 2
	if boxWidth < 22 {
		boxWidth = 22
	}

	var lines []string
	track, ok := u.player.CurrentTrack()
	if ok && (u.player.IsPlaying() || u.player.IsPaused()) {
		state := "♫ Now Playing:"
		if u.player.IsPaused() {
			state = "⏸ Paused:"
		}
		lines = append(lines,
			truncateToWidth(fmt.Sprintf("%s %s", panelTitleStyle.Render(state), track.Title), inner))
		lines = append(lines, truncateToWidth(fmt.Sprintf("%s %s  %s %s",
			labelStyle.Render("Artist:"), track.Artist,
			labelStyle.Render("Album:"), track.Album), inner))
		lines = append(lines, u.renderProgressLine(inner))
	} else {
		lines = append(lines, panelTitleStyle.Render("♫ Terminal Music Player"))
		lines = append(lines, mutedStyle.Render("No track playing"))
		lines = append(lines, fmt.Sprintf("%s %3.0f%%", labelStyle.Render("Volume:"), u.player.Volume()*100))
	}

	return panelBorder.Width(boxWidth).Render(strings.Join(lines, "\n"))
}

// renderProgressLine draws a gradient progress bar with partial-block
// resolution, followed by position/duration and the volume baseline.
func (u *UI) renderProgressLine(width int) string {
	position := u.player.Position()
	duration := u.player.Duration()

	timeStr := formatTime(position) + " / " + formatTime(duration)
	volStr := fmt.Sprintf("Vol %3.0f%%", u.player.Volume()*100)

	barWidth := width - len(timeStr) - len(volStr) - 2
	if barWidth < 10 {
		barWidth = 10
	}

	progress := 0.0
	if duration > 0 {
		progress = clamp(position/duration, 0, 1)
	}

	// 8 virtual steps per cell for smoother motion
	partials := []rune("▏▎▍▌▋▊▉█")
	virtual := int(progress * float64(barWidth*8))
	filled := virtual / 8
	remainder := virtual % 8
	if filled > barWidth {
		filled = barWidth
		remainder = 0
	}

	var sb strings.Builder
	for i := 0; i < barWidth; i++ {
		style := styleFor(gradient[gradientIndex(float64(i)/float64(barWidth))])
		switch {
		case i < filled:
			sb.WriteString(style.Render("█"))
		case i == filled && remainder > 0:
			sb.WriteString(style.Render(string(partials[remainder-1])))
		default:
			sb.WriteString(mutedStyle.Render("░"))
		}
	}

	return sb.String() + " " + timeStr + " " + mutedStyle.Render(volStr)
}

func (u *UI) renderVisualizerPanel(width, height int) string {
	innerWidth := width - 4
	innerHeight := height - 3 // border rows and the title line
	if innerWidth < 4 {
		innerWidth = 4
	}
	if innerHeight < 1 {
		innerHeight = 1
	}
	u.vis.SetSize(innerWidth, innerHeight)

	grid := u.vis.Render(u.feed.Buffer(), u.player.IsActivelyPlaying())
	lines := append(
		[]string{panelTitleStyle.Render(fmt.Sprintf("Visualizer (%s)", u.vis.Mode()))},
		renderGrid(grid)...,
	)

	return panelBorder.Width(width - 2).Render(strings.Join(lines, "\n"))
}

func (u *UI) renderPlaylistPanel(width, height int) string {
	innerWidth := width - 4
	if innerWidth < 4 {
		innerWidth = 4
	}

	u.ensureVisible()
	tracks := u.library.Tracks()

	lines := []string{panelTitleStyle.Render(fmt.Sprintf("Playlist (%d tracks)", len(tracks)))}
	end := u.scrollOffset + visibleRows
	if end > len(tracks) {
		end = len(tracks)
	}
	for i := u.scrollOffset; i < end; i++ {
		entry := fmt.Sprintf("%s - %s", tracks[i].Title, tracks[i].Artist)
		if i == u.selected {
			lines = append(lines, selectedStyle.Render(truncateToWidth("> "+entry, innerWidth)))
		} else {
			lines = append(lines, truncateToWidth("  "+entry, innerWidth))
		}
	}
	if len(tracks) == 0 {
		lines = append(lines, mutedStyle.Render("  (library is empty)"))
	}

	for len(lines) < height-2 {
		lines = append(lines, "")
	}
	return panelBorder.Width(width - 2).Render(strings.Join(lines, "\n"))
}

func (u *UI) renderFooter() string {
	inner := u.width - 4
	if inner < 20 {
		inner = 20
	}
	boxWidth := u.width - 2
	if boxWidth < 22 {
		boxWidth = 22
	}

	if u.status != "" && time.Now().Before(u.statusUntil) {
		return panelBorder.Width(boxWidth).Render(truncateToWidth(statusStyle.Render(u.status), inner))
	}

	controls := []struct{ key, action string }{
		{"[Space]", "Play/Pause"},
		{"[S]", "Stop"},
		{"[N]", "Next"},
		{"[P]", "Previous"},
		{"[V]", "Visualizer"},
		{"[↑/↓]", "Volume"},
		{"[←/→]", "Seek"},
		{"[Q]", "Quit"},
	}
	var parts []string
	for _, c := range controls {
		parts = append(parts, keyStyle.Render(c.key)+" "+c.action)
	}
	return panelBorder.Width(boxWidth).Render(truncateToWidth(strings.Join(parts, "  "), inner))
}

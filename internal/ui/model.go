// ABOUTME: Bubbletea model for the playback TUI
// ABOUTME: Defines session display state and key handling
package ui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// maxLines is how many status lines the TUI keeps on screen
const maxLines = 6

// volumeStep is the volume change per up/down key, in percent
const volumeStep = 5

// Model represents the TUI state
type Model struct {
	// Session
	sessionID string
	path      string

	// Format
	codec      string
	sampleRate int
	channels   int
	bitDepth   int

	// Playback
	state    string
	position time.Duration
	duration time.Duration
	volume   int

	// Console
	lines     []string
	prompting bool

	controls *Controls

	// Dimensions
	width  int
	height int
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case StatusMsg:
		m.applyStatus(msg)
	case LineMsg:
		m.appendLine(string(msg))
	case PromptMsg:
		m.prompting = bool(msg)
	}

	return m, nil
}

// View renders the TUI
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	s := ""
	s += m.renderHeader()
	s += m.renderSession()
	s += m.renderControls()
	s += m.renderLines()
	s += m.renderHelp()

	return s
}

// renderHeader renders the title bar
func (m Model) renderHeader() string {
	return `┌─ pcmplay ────────────────────────────────────────────┐
`
}

// renderSession renders the current file and its format
func (m Model) renderSession() string {
	if m.path == "" {
		return "│ Nothing playing                                      │\n"
	}

	s := fmt.Sprintf("│ File:   %-44s │\n", truncate(m.path, 44))
	s += fmt.Sprintf("│ Format: %-44s │\n", truncate(m.formatLine(), 44))
	s += fmt.Sprintf("│ State:  %-44s │\n", m.state)
	return s
}

// renderControls renders position and volume
func (m Model) renderControls() string {
	if m.path == "" {
		return ""
	}

	progress := formatDuration(m.position)
	bar := renderBar(0, 1, 20)
	if m.duration > 0 {
		progress = fmt.Sprintf("%s / %s", formatDuration(m.position), formatDuration(m.duration))
		bar = renderBar(int(m.position/time.Millisecond), int(m.duration/time.Millisecond), 20)
	}

	return fmt.Sprintf("│ Time:   [%s] %-21s │\n", bar, progress) +
		fmt.Sprintf("│ Volume: [%s] %-21s │\n", renderBar(m.volume, 100, 20), fmt.Sprintf("%d%%", m.volume))
}

// renderLines renders the most recent status lines
func (m Model) renderLines() string {
	s := "├──────────────────────────────────────────────────────┤\n"
	for _, line := range m.lines {
		s += fmt.Sprintf("│ %-52s │\n", truncate(line, 52))
	}
	if m.prompting {
		s += "│ Press Enter to continue...                           │\n"
	}
	return s
}

// renderHelp renders keyboard shortcuts
func (m Model) renderHelp() string {
	return `│ space:Pause  ↑/↓:Volume  other:Stop  q:Quit         │
└──────────────────────────────────────────────────────┘
`
}

func (m Model) formatLine() string {
	codec := m.codec
	if codec == "" {
		codec = "pcm"
	}
	return fmt.Sprintf("%s %dHz %s %d-bit", codec, m.sampleRate, channelName(m.channels), m.bitDepth)
}

// handleKey handles keyboard input
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case " ", "p":
		m.controls.togglePause()
	case "up", "+":
		m.setVolume(m.volume + volumeStep)
	case "down", "-":
		m.setVolume(m.volume - volumeStep)
	case "enter":
		if m.controls.submit() {
			m.prompting = false
			break
		}
		m.controls.press()
	default:
		m.controls.press()
	}

	return m, nil
}

// setVolume clamps v to 0..100 and forwards it as a gain ratio
func (m *Model) setVolume(v int) {
	if v < 0 {
		v = 0
	}
	if v > 100 {
		v = 100
	}
	if v == m.volume {
		return
	}
	m.volume = v
	m.controls.setVolume(float64(v) / 100)
}

// applyStatus updates model from status message
func (m *Model) applyStatus(msg StatusMsg) {
	if msg.Path != "" {
		if msg.SessionID != m.sessionID {
			m.position = 0
			m.duration = 0
		}
		m.sessionID = msg.SessionID
		m.path = msg.Path
		m.codec = msg.Codec
		m.sampleRate = msg.SampleRate
		m.channels = msg.Channels
		m.bitDepth = msg.BitDepth
	}
	if msg.State != "" {
		m.state = msg.State
	}
	if msg.Position != 0 {
		m.position = msg.Position
	}
	if msg.Duration != 0 {
		m.duration = msg.Duration
	}
	if msg.Volume != nil {
		m.volume = *msg.Volume
	}
}

// appendLine adds a status line, dropping the oldest past maxLines
func (m *Model) appendLine(line string) {
	for _, l := range strings.Split(strings.TrimRight(line, "\n"), "\n") {
		m.lines = append(m.lines, l)
	}
	if over := len(m.lines) - maxLines; over > 0 {
		m.lines = append([]string(nil), m.lines[over:]...)
	}
}

// StatusMsg updates TUI state
type StatusMsg struct {
	SessionID  string
	Path       string
	Codec      string
	SampleRate int
	Channels   int
	BitDepth   int
	State      string
	Position   time.Duration
	Duration   time.Duration
	Volume     *int // percent; nil leaves it unchanged
}

// LineMsg appends a status line
type LineMsg string

// PromptMsg shows or hides the continue prompt
type PromptMsg bool

// Utility functions
func renderBar(value, max, width int) string {
	filled := 0
	if max > 0 {
		filled = (value * width) / max
	}
	if filled > width {
		filled = width
	}
	bar := ""
	for i := 0; i < width; i++ {
		if i < filled {
			bar += "█"
		} else {
			bar += "░"
		}
	}
	return bar
}

func truncate(s string, length int) string {
	if len(s) <= length {
		return s
	}
	return s[:length-3] + "..."
}

func channelName(channels int) string {
	if channels == 1 {
		return "Mono"
	}
	return "Stereo"
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	return fmt.Sprintf("%d:%02d", int(d/time.Minute), int(d%time.Minute/time.Second))
}

// ABOUTME: TUI initialization and control
// ABOUTME: Wraps the bubbletea program as a playback console
package ui

import (
	"context"
	"fmt"
	"io"
	"math"
	"sync"

	"github.com/Resonate-Protocol/pcmplay/pkg/playback"
	tea "github.com/charmbracelet/bubbletea"
)

// Controls carries key presses from the model to playback sessions
type Controls struct {
	keys    chan struct{}
	toggles chan struct{}
	volumes chan float64

	mu       sync.Mutex
	prompt   chan struct{}
	watchers int
}

// NewControls creates a control handler
func NewControls() *Controls {
	return &Controls{
		keys:    make(chan struct{}, 1),
		toggles: make(chan struct{}, 1),
		volumes: make(chan float64, 10),
	}
}

// press reports a stop key to one session
func (c *Controls) press() {
	if c == nil {
		return
	}
	select {
	case c.keys <- struct{}{}:
	default:
	}
}

func (c *Controls) togglePause() {
	if c == nil {
		return
	}
	select {
	case c.toggles <- struct{}{}:
	default:
	}
}

func (c *Controls) setVolume(v float64) {
	if c == nil {
		return
	}
	select {
	case c.volumes <- v:
	default:
	}
}

// submit completes a pending ReadLine; false when none is waiting
func (c *Controls) submit() bool {
	if c == nil {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.prompt == nil {
		return false
	}
	close(c.prompt)
	c.prompt = nil
	return true
}

// watch registers a session watching the stop key. Presses and pause
// toggles made while no session was watching are dropped.
func (c *Controls) watch() func() {
	c.mu.Lock()
	c.watchers++
	if c.watchers == 1 {
		select {
		case <-c.keys:
		default:
		}
		select {
		case <-c.toggles:
		default:
		}
	}
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			c.watchers--
			c.mu.Unlock()
		})
	}
}

// NewModel creates a new TUI model
func NewModel(controls *Controls) Model {
	return Model{
		volume:   100,
		state:    "idle",
		controls: controls,
	}
}

// TUI runs the bubbletea program and serves as a playback console
type TUI struct {
	program  *tea.Program
	controls *Controls
	done     chan struct{}
	err      error
}

// Option configures the program
type Option = tea.ProgramOption

// Run starts the TUI in the background
func Run(opts ...Option) *TUI {
	controls := NewControls()
	if len(opts) == 0 {
		opts = []Option{tea.WithAltScreen()}
	}

	t := &TUI{
		program:  tea.NewProgram(NewModel(controls), opts...),
		controls: controls,
		done:     make(chan struct{}),
	}
	go func() {
		defer close(t.done)
		if _, err := t.program.Run(); err != nil {
			t.err = fmt.Errorf("failed to run TUI: %w", err)
		}
	}()
	return t
}

// NewHeadless runs the TUI on in and out, without an alternate screen
func NewHeadless(in io.Reader, out io.Writer) *TUI {
	return Run(tea.WithInput(in), tea.WithOutput(out))
}

// Printf shows a status line
func (t *TUI) Printf(format string, args ...any) {
	t.program.Send(LineMsg(fmt.Sprintf(format, args...)))
}

// WatchKeys returns the stop key channel. Each press wakes one session.
func (t *TUI) WatchKeys() (<-chan struct{}, func()) {
	return t.controls.keys, t.controls.watch()
}

// PauseToggles receives a value per space press
func (t *TUI) PauseToggles() <-chan struct{} {
	return t.controls.toggles
}

// VolumeChanges receives gain ratios from the volume keys
func (t *TUI) VolumeChanges() <-chan float64 {
	return t.controls.volumes
}

// Update shows a session's status
func (t *TUI) Update(s playback.Status) {
	volume := int(math.Round(s.Volume * 100))
	t.program.Send(StatusMsg{
		SessionID:  s.SessionID,
		Path:       s.Path,
		Codec:      s.Format.Codec,
		SampleRate: s.Format.SampleRate,
		Channels:   s.Format.Channels,
		BitDepth:   s.Format.BitDepth,
		State:      s.State.String(),
		Position:   s.Position,
		Duration:   s.Duration,
		Volume:     &volume,
	})
}

// ReadLine shows the continue prompt and blocks until Enter, ctx ends or
// the TUI quits
func (t *TUI) ReadLine(ctx context.Context) (string, error) {
	prompt := make(chan struct{})
	t.controls.mu.Lock()
	t.controls.prompt = prompt
	t.controls.mu.Unlock()

	t.program.Send(PromptMsg(true))
	defer func() {
		t.controls.mu.Lock()
		if t.controls.prompt == prompt {
			t.controls.prompt = nil
		}
		t.controls.mu.Unlock()
		t.program.Send(PromptMsg(false))
	}()

	select {
	case <-prompt:
		return "", nil
	case <-t.done:
		return "", io.EOF
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Done is closed when the user quits the TUI
func (t *TUI) Done() <-chan struct{} {
	return t.done
}

// Close stops the program and restores the terminal
func (t *TUI) Close() error {
	t.program.Quit()
	<-t.done
	return t.err
}

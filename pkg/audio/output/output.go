// ABOUTME: Audio output device and backend interface
// ABOUTME: Device tracks playback state and signals when a stream stops
package output

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Resonate-Protocol/pcmplay/pkg/audio"
	"github.com/Resonate-Protocol/pcmplay/pkg/audio/decode"
)

// State is the playback state of a Device
type State int32

const (
	Stopped State = iota
	Playing
	Paused
)

func (s State) String() string {
	switch s {
	case Stopped:
		return "stopped"
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

var (
	// ErrClosed is returned by operations on a released device
	ErrClosed = errors.New("output device released")

	// ErrNotInitialized is returned when Play is called before Init
	ErrNotInitialized = errors.New("output device not initialized")

	// ErrFinished is returned when Play is called after the stream stopped
	ErrFinished = errors.New("playback already finished")
)

// FillFunc writes exactly len(p) bytes of PCM into p, padding with silence
type FillFunc func(p []byte)

// Backend is a library-specific audio sink that pulls PCM from a FillFunc
type Backend interface {
	// Open prepares the sink for format; fill is called from the sink's thread
	Open(format audio.Format, fill FillFunc) error

	// Start begins or resumes pulling samples
	Start() error

	// Pause halts pulling samples without releasing the sink
	Pause() error

	// Close releases the sink
	Close() error
}

// Device binds one Source to one Backend and tracks playback state
type Device struct {
	backend Backend

	// mu serializes state transitions; fill never takes it
	mu       sync.Mutex
	state    atomic.Int32
	src      decode.Source
	format   audio.Format
	released bool

	played    atomic.Int64
	finishing atomic.Bool

	stopped  chan struct{}
	stopOnce sync.Once
	err      error
	srcErr   error // set by finish before the state leaves Playing
	handlers []func(error)
}

// NewDevice creates a device on top of backend
func NewDevice(backend Backend) *Device {
	return &Device{
		backend: backend,
		stopped: make(chan struct{}),
	}
}

// Init binds src to the device and opens the backend in src's format
func (d *Device) Init(src decode.Source) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.released {
		return ErrClosed
	}
	if d.src != nil {
		return fmt.Errorf("output device already bound to a %s source", d.format.Codec)
	}

	format := src.Format()
	if err := format.Validate(); err != nil {
		return err
	}
	if err := d.backend.Open(format, d.fill); err != nil {
		return fmt.Errorf("failed to open output: %w", err)
	}

	d.src = src
	d.format = format
	return nil
}

// Play starts or resumes playback
func (d *Device) Play() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	switch {
	case d.released:
		return ErrClosed
	case d.src == nil:
		return ErrNotInitialized
	case d.finishing.Load():
		return ErrFinished
	case d.State() == Playing:
		return nil
	}

	d.state.Store(int32(Playing))
	if err := d.backend.Start(); err != nil {
		d.state.Store(int32(Stopped))
		return fmt.Errorf("failed to start output: %w", err)
	}
	return nil
}

// Pause suspends playback; Play resumes it
func (d *Device) Pause() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.released {
		return ErrClosed
	}
	if d.State() != Playing {
		return nil
	}

	if err := d.backend.Pause(); err != nil {
		return fmt.Errorf("failed to pause output: %w", err)
	}
	d.state.Store(int32(Paused))
	return nil
}

// Stop ends playback and fires the stopped signal
func (d *Device) Stop() error {
	d.finishing.Store(true)

	d.mu.Lock()
	err := d.halt()
	d.mu.Unlock()

	d.signal(nil)
	return err
}

// halt pauses the backend and moves to Stopped (must hold d.mu)
func (d *Device) halt() error {
	if d.released || d.State() == Stopped {
		return nil
	}
	d.state.Store(int32(Stopped))
	if err := d.backend.Pause(); err != nil {
		return fmt.Errorf("failed to stop output: %w", err)
	}
	return nil
}

// State returns the current playback state
func (d *Device) State() State {
	return State(d.state.Load())
}

// Format returns the format the backend was opened with
func (d *Device) Format() audio.Format {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.format
}

// Position returns how much audio has been handed to the backend
func (d *Device) Position() time.Duration {
	return d.Format().Duration(d.played.Load())
}

// Stopped is closed once playback has stopped for good
func (d *Device) Stopped() <-chan struct{} {
	return d.stopped
}

// Err returns the source error that ended playback, if any.
// Only meaningful after Stopped is closed.
func (d *Device) Err() error {
	select {
	case <-d.stopped:
		return d.err
	default:
		return nil
	}
}

// OnStopped registers fn to run when playback stops. If playback has
// already stopped fn runs immediately.
func (d *Device) OnStopped(fn func(error)) {
	d.mu.Lock()
	select {
	case <-d.stopped:
		d.mu.Unlock()
		fn(d.err)
		return
	default:
	}
	d.handlers = append(d.handlers, fn)
	d.mu.Unlock()
}

// Close stops playback and releases the backend. Safe to call repeatedly.
func (d *Device) Close() error {
	d.finishing.Store(true)

	d.mu.Lock()
	if d.released {
		d.mu.Unlock()
		return nil
	}
	err := d.halt()
	d.released = true
	if cerr := d.backend.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("failed to close output: %w", cerr)
	}
	d.mu.Unlock()

	d.signal(nil)
	return err
}

// fill feeds the backend; runs on the backend's thread
func (d *Device) fill(p []byte) {
	if d.State() != Playing || d.finishing.Load() {
		silence(p, d.format.BitDepth)
		return
	}

	n, err := io.ReadFull(d.src, p)
	d.played.Add(int64(n))
	silence(p[n:], d.format.BitDepth)

	if err != nil && d.finishing.CompareAndSwap(false, true) {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			err = nil
		}
		// the backend may not be stopped from its own callback
		go d.finish(err)
	}
}

// finish handles the end of the source
func (d *Device) finish(err error) {
	d.mu.Lock()
	d.srcErr = err
	if herr := d.halt(); err == nil && herr != nil {
		err = herr
	}
	d.mu.Unlock()

	d.signal(err)
}

// signal closes the stopped channel and runs handlers exactly once. A source
// error recorded by finish wins over a nil err from a racing Stop or Close.
// Handlers run outside the once so they may call Stop or Close.
func (d *Device) signal(err error) {
	var handlers []func(error)
	d.stopOnce.Do(func() {
		d.mu.Lock()
		if err == nil {
			err = d.srcErr
		}
		d.err = err
		handlers = d.handlers
		d.handlers = nil
		close(d.stopped)
		d.mu.Unlock()
	})

	for _, fn := range handlers {
		fn(err)
	}
}

// silence fills p with the zero level for bitDepth
func silence(p []byte, bitDepth int) {
	var zero byte
	if bitDepth == 8 {
		zero = 0x80
	}
	for i := range p {
		p[i] = zero
	}
}

// ABOUTME: Playback session pairing one source with one output device
// ABOUTME: Guarantees the device and source are released exactly once
package playback

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/Resonate-Protocol/pcmplay/pkg/audio"
	"github.com/Resonate-Protocol/pcmplay/pkg/audio/decode"
	"github.com/Resonate-Protocol/pcmplay/pkg/audio/output"
	"github.com/google/uuid"
)

// EndReason says why a session ended
type EndReason int

const (
	// Completed means the source ran out
	Completed EndReason = iota
	// Interrupted means a key press stopped playback
	Interrupted
	// Cancelled means the caller's context ended
	Cancelled
)

func (r EndReason) String() string {
	switch r {
	case Completed:
		return "completed"
	case Interrupted:
		return "interrupted"
	case Cancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("EndReason(%d)", int(r))
	}
}

// Result describes a finished session
type Result struct {
	SessionID string
	Path      string
	Format    audio.Format
	Volume    float64
	Reason    EndReason
	Elapsed   time.Duration // wall time from Play to stop
	Played    time.Duration // audio handed to the device
}

// Session is one source bound to one output device
type Session struct {
	ID   string
	Path string

	src    decode.Source
	gain   *decode.Gain
	device *output.Device
	start  time.Time

	releaseOnce sync.Once
	releaseErr  error
}

// newSession binds src to a new device from backend. On failure src is closed.
func newSession(path string, src decode.Source, volume float64, backend output.Backend) (*Session, error) {
	gain := decode.WithVolume(src, volume)
	device := output.NewDevice(backend)

	if err := device.Init(gain); err != nil {
		_ = device.Close()
		_ = src.Close()
		return nil, fmt.Errorf("failed to bind %s to output: %w", path, err)
	}

	s := &Session{
		ID:     uuid.New().String(),
		Path:   path,
		src:    gain,
		gain:   gain,
		device: device,
	}
	log.Printf("Session %s: opened %s (%s %s)", s.ID, path, src.Format().Codec, src.Format())
	return s, nil
}

// Play starts the device
func (s *Session) Play() error {
	s.start = time.Now()
	if err := s.device.Play(); err != nil {
		return fmt.Errorf("failed to start playback of %s: %w", s.Path, err)
	}
	return nil
}

// State returns the device's playback state
func (s *Session) State() output.State {
	return s.device.State()
}

// Device returns the bound output device
func (s *Session) Device() *output.Device {
	return s.device
}

// Duration returns the total playing time, or 0 if unknown
func (s *Session) Duration() time.Duration {
	return decode.Duration(s.src)
}

// SetVolume changes the source gain
func (s *Session) SetVolume(v float64) {
	s.gain.SetVolume(v)
}

// TogglePause flips between Playing and Paused
func (s *Session) TogglePause() error {
	switch s.device.State() {
	case output.Playing:
		return s.device.Pause()
	case output.Paused:
		return s.device.Play()
	}
	return nil
}

// result summarises the session
func (s *Session) result(reason EndReason) Result {
	var elapsed time.Duration
	if !s.start.IsZero() {
		elapsed = time.Since(s.start)
	}
	return Result{
		SessionID: s.ID,
		Path:      s.Path,
		Format:    s.device.Format(),
		Volume:    s.gain.Volume(),
		Reason:    reason,
		Elapsed:   elapsed,
		Played:    s.device.Position(),
	}
}

// release stops and disposes the device, then closes the source
func (s *Session) release() error {
	s.releaseOnce.Do(func() {
		err := s.device.Close()
		if cerr := s.src.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("failed to close %s: %w", s.Path, cerr)
		}
		s.releaseErr = err
		log.Printf("Session %s: released", s.ID)
	})
	return s.releaseErr
}

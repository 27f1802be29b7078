// ABOUTME: Playback driver running one session per play request
// ABOUTME: Provides blocking, volume, async and raw PCM playback calls
package playback

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/Resonate-Protocol/pcmplay/pkg/audio"
	"github.com/Resonate-Protocol/pcmplay/pkg/audio/decode"
	"github.com/Resonate-Protocol/pcmplay/pkg/audio/output"
)

// DefaultPollInterval is how often blocking calls check device state
const DefaultPollInterval = 100 * time.Millisecond

// Console is where sessions print status and watch for key presses
type Console interface {
	// Printf writes one status line
	Printf(format string, args ...any)

	// WatchKeys returns a channel of key presses and a release func
	WatchKeys() (<-chan struct{}, func())
}

// Controller is implemented by consoles that offer more than stop
type Controller interface {
	// PauseToggles receives a value per pause/resume request
	PauseToggles() <-chan struct{}

	// VolumeChanges receives new gain ratios
	VolumeChanges() <-chan float64

	// Update is told the session's status on every poll
	Update(Status)
}

// Status is a snapshot of a running session
type Status struct {
	SessionID string
	Path      string
	Format    audio.Format
	State     output.State
	Position  time.Duration
	Duration  time.Duration
	Volume    float64
}

// Config holds driver configuration
type Config struct {
	// NewBackend returns a fresh backend per session (default: malgo)
	NewBackend func() (output.Backend, error)

	// Console receives status lines and supplies key presses (default: none)
	Console Console

	// PollInterval is the blocking calls' poll period (default: 100ms)
	PollInterval time.Duration
}

// Driver runs playback sessions
type Driver struct {
	config Config
}

// New creates a driver
func New(config Config) *Driver {
	if config.NewBackend == nil {
		config.NewBackend = func() (output.Backend, error) {
			return output.New(output.BackendMalgo)
		}
	}
	if config.Console == nil {
		config.Console = nopConsole{}
	}
	if config.PollInterval <= 0 {
		config.PollInterval = DefaultPollInterval
	}
	return &Driver{config: config}
}

// PlayFile plays a self-describing audio file, blocking until it ends or a
// key is pressed
func (d *Driver) PlayFile(ctx context.Context, path string) (Result, error) {
	s, err := d.openFile(path, 1)
	if err != nil {
		return Result{Path: path}, err
	}
	defer s.release()

	if err := s.Play(); err != nil {
		return s.result(Completed), err
	}

	d.config.Console.Printf("Playing: %s", path)
	d.config.Console.Printf("Press any key to stop playback...")

	return d.wait(ctx, s)
}

// PlayFileWithVolume plays a file with a source gain. Ratios outside
// [0, 1] are clamped.
func (d *Driver) PlayFileWithVolume(ctx context.Context, path string, volume float64) (Result, error) {
	s, err := d.openFile(path, volume)
	if err != nil {
		return Result{Path: path, Volume: decode.ClampVolume(volume)}, err
	}
	defer s.release()

	if err := s.Play(); err != nil {
		return s.result(Completed), err
	}

	d.config.Console.Printf("Playing: %s (Volume: %g%%)", path, volume*100)
	d.config.Console.Printf("Press any key to stop...")

	return d.wait(ctx, s)
}

// PlayRawPcm plays headerless PCM in the given format. The format is passed
// through unchecked; invalid combinations fail in the reader or backend.
func (d *Driver) PlayRawPcm(ctx context.Context, path string, sampleRate, channels, bitsPerSample int) (Result, error) {
	format := audio.Format{
		Codec:      audio.CodecPCM,
		SampleRate: sampleRate,
		Channels:   channels,
		BitDepth:   bitsPerSample,
	}

	src, err := decode.OpenRaw(path, format)
	if err != nil {
		return Result{Path: path, Format: format}, err
	}
	s, err := d.bind(path, src, 1)
	if err != nil {
		return Result{Path: path, Format: format}, err
	}
	defer s.release()

	if err := s.Play(); err != nil {
		return s.result(Completed), err
	}

	d.config.Console.Printf("Playing raw PCM: %s", path)
	d.config.Console.Printf("Format: %s", format)
	d.config.Console.Printf("Press any key to stop...")

	return d.wait(ctx, s)
}

// PlayFileAsync starts playing a file and returns at once. The returned
// Pending resolves when the device reports that playback stopped.
func (d *Driver) PlayFileAsync(ctx context.Context, path string) *Pending {
	p := newPending()

	s, err := d.openFile(path, 1)
	if err != nil {
		p.resolve(Result{Path: path}, err)
		return p
	}

	if err := s.Play(); err != nil {
		_ = s.release()
		p.resolve(s.result(Completed), err)
		return p
	}

	d.config.Console.Printf("Playing: %s", path)

	cancelled := make(chan struct{})
	var cancelOnce sync.Once
	p.stop = func() {
		cancelOnce.Do(func() {
			close(cancelled)
			if err := s.Device().Stop(); err != nil {
				log.Printf("Session %s: stop failed: %v", s.ID, err)
			}
		})
	}

	s.Device().OnStopped(func(stopErr error) {
		reason := Completed
		select {
		case <-cancelled:
			reason = Cancelled
		default:
		}
		res := s.result(reason)
		if err := s.release(); stopErr == nil {
			stopErr = err
		}
		if stopErr != nil {
			stopErr = fmt.Errorf("playback of %s failed: %w", path, stopErr)
		}

		d.config.Console.Printf("Playback finished.")
		log.Printf("Session %s: %s after %v", s.ID, res.Reason, res.Elapsed)
		p.resolve(res, stopErr)
	})

	go func() {
		select {
		case <-ctx.Done():
			p.stop()
		case <-s.Device().Stopped():
		}
	}()

	return p
}

// openFile opens path with the decoder for its extension and binds it
func (d *Driver) openFile(path string, volume float64) (*Session, error) {
	src, err := decode.Open(path)
	if err != nil {
		return nil, err
	}
	return d.bind(path, src, volume)
}

// bind pairs src with a fresh output device
func (d *Driver) bind(path string, src decode.Source, volume float64) (*Session, error) {
	backend, err := d.config.NewBackend()
	if err != nil {
		_ = src.Close()
		return nil, fmt.Errorf("failed to create output: %w", err)
	}
	return newSession(path, src, volume, backend)
}

// wait polls the device until it leaves Playing/Paused, a key is pressed or
// ctx ends, then stops it
func (d *Driver) wait(ctx context.Context, s *Session) (Result, error) {
	keys, release := d.config.Console.WatchKeys()
	defer release()

	var toggles <-chan struct{}
	var volumes <-chan float64
	ctrl, hasCtrl := d.config.Console.(Controller)
	if hasCtrl {
		toggles = ctrl.PauseToggles()
		volumes = ctrl.VolumeChanges()
	}

	ticker := time.NewTicker(d.config.PollInterval)
	defer ticker.Stop()

	reason := Completed
loop:
	for s.State() != output.Stopped {
		if hasCtrl {
			ctrl.Update(d.status(s))
		}

		select {
		case <-ctx.Done():
			reason = Cancelled
			break loop
		case <-keys:
			reason = Interrupted
			break loop
		case <-toggles:
			if err := s.TogglePause(); err != nil {
				log.Printf("Session %s: pause toggle failed: %v", s.ID, err)
			}
		case v := <-volumes:
			s.SetVolume(v)
		case <-ticker.C:
		}
	}

	if err := s.Device().Stop(); err != nil {
		log.Printf("Session %s: stop failed: %v", s.ID, err)
	}
	res := s.result(reason)
	if hasCtrl {
		ctrl.Update(d.status(s))
	}
	log.Printf("Session %s: %s after %v", s.ID, res.Reason, res.Elapsed)

	if err := s.Device().Err(); err != nil {
		return res, fmt.Errorf("playback of %s failed: %w", s.Path, err)
	}
	return res, s.release()
}

func (d *Driver) status(s *Session) Status {
	return Status{
		SessionID: s.ID,
		Path:      s.Path,
		Format:    s.Device().Format(),
		State:     s.State(),
		Position:  s.Device().Position(),
		Duration:  s.Duration(),
		Volume:    s.gain.Volume(),
	}
}

// nopConsole discards output and never reports keys
type nopConsole struct{}

func (nopConsole) Printf(string, ...any) {}

func (nopConsole) WatchKeys() (<-chan struct{}, func()) {
	return nil, func() {}
}

// ABOUTME: Oto-based audio output backend
// ABOUTME: Shares the single per-process oto context between devices
package output

import (
	"fmt"
	"log"
	"sync"

	"github.com/Resonate-Protocol/pcmplay/pkg/audio"
	"github.com/ebitengine/oto/v3"
)

// oto allows one context per process; every Oto backend plays through it
var (
	otoMu     sync.Mutex
	otoCtx    *oto.Context
	otoFormat audio.Format
)

// sharedOtoContext returns the process context, creating it for format
func sharedOtoContext(format audio.Format) (*oto.Context, error) {
	otoMu.Lock()
	defer otoMu.Unlock()

	if otoCtx != nil {
		if otoFormat.SampleRate != format.SampleRate || otoFormat.Channels != format.Channels || otoFormat.BitDepth != format.BitDepth {
			return nil, fmt.Errorf("%w: oto context already running at %s, cannot play %s",
				audio.ErrInvalidFormat, otoFormat, format)
		}
		return otoCtx, nil
	}

	var sampleFormat oto.Format
	switch format.BitDepth {
	case 8:
		sampleFormat = oto.FormatUnsignedInt8
	case 16:
		sampleFormat = oto.FormatSignedInt16LE
	default:
		return nil, fmt.Errorf("%w: oto supports 8 and 16-bit output, got %d-bit", audio.ErrInvalidFormat, format.BitDepth)
	}

	op := &oto.NewContextOptions{
		SampleRate:   format.SampleRate,
		ChannelCount: format.Channels,
		Format:       sampleFormat,
	}

	ctx, readyChan, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("failed to create oto context: %w", err)
	}

	<-readyChan

	otoCtx = ctx
	otoFormat = format
	log.Printf("Audio output initialized: %s (oto)", format)
	return otoCtx, nil
}

// fillReader adapts a FillFunc to the io.Reader oto pulls from
type fillReader struct {
	fill FillFunc
}

func (r fillReader) Read(p []byte) (int, error) {
	r.fill(p)
	return len(p), nil
}

// Oto output implementation using oto library
type Oto struct {
	player *oto.Player
}

// NewOto creates a new Oto output
func NewOto() *Oto {
	return &Oto{}
}

// Open creates a player on the shared context
func (o *Oto) Open(format audio.Format, fill FillFunc) error {
	ctx, err := sharedOtoContext(format)
	if err != nil {
		return err
	}

	o.player = ctx.NewPlayer(fillReader{fill: fill})
	return nil
}

// Start starts or resumes the player
func (o *Oto) Start() error {
	if o.player == nil {
		return fmt.Errorf("output not initialized")
	}
	o.player.Play()
	return nil
}

// Pause pauses the player
func (o *Oto) Pause() error {
	if o.player != nil {
		o.player.Pause()
	}
	return nil
}

// Close releases the player; the shared context stays up for later devices
func (o *Oto) Close() error {
	if o.player == nil {
		return nil
	}
	err := o.player.Close()
	o.player = nil
	return err
}

// ABOUTME: Malgo-based audio output backend
// ABOUTME: Uses miniaudio via malgo; each device gets its own format
package output

import (
	"fmt"
	"log"

	"github.com/Resonate-Protocol/pcmplay/pkg/audio"
	"github.com/gen2brain/malgo"
)

// Malgo output implementation using malgo/miniaudio library
type Malgo struct {
	malgoCtx *malgo.AllocatedContext
	device   *malgo.Device
	format   audio.Format
}

// NewMalgo creates a new Malgo output
func NewMalgo() *Malgo {
	return &Malgo{}
}

// Open initializes a playback device with the given format
func (m *Malgo) Open(format audio.Format, fill FillFunc) error {
	if m.device != nil {
		return fmt.Errorf("malgo device already open")
	}

	// Map bit depth to malgo format
	var sampleFormat malgo.FormatType
	switch format.BitDepth {
	case 8:
		sampleFormat = malgo.FormatU8
	case 16:
		sampleFormat = malgo.FormatS16
	case 24:
		sampleFormat = malgo.FormatS24
	case 32:
		sampleFormat = malgo.FormatS32
	default:
		return fmt.Errorf("%w: bit depth %d (supported: 8, 16, 24, 32)", audio.ErrInvalidFormat, format.BitDepth)
	}

	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return fmt.Errorf("failed to initialize malgo context: %w", err)
	}

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Playback)
	deviceConfig.Playback.Format = sampleFormat
	deviceConfig.Playback.Channels = uint32(format.Channels)
	deviceConfig.SampleRate = uint32(format.SampleRate)
	deviceConfig.Alsa.NoMMap = 1

	frameSize := format.FrameSize()
	onSamples := func(pOutputSample, pInputSamples []byte, frameCount uint32) {
		fill(pOutputSample[:int(frameCount)*frameSize])
	}

	device, err := malgo.InitDevice(ctx.Context, deviceConfig, malgo.DeviceCallbacks{
		Data: onSamples,
	})
	if err != nil {
		_ = ctx.Uninit()
		ctx.Free()
		return fmt.Errorf("failed to initialize playback device: %w", err)
	}

	m.malgoCtx = ctx
	m.device = device
	m.format = format

	log.Printf("Audio output initialized: %s (malgo/%s)", format, formatName(sampleFormat))
	return nil
}

// Start starts the device callback
func (m *Malgo) Start() error {
	if m.device == nil {
		return fmt.Errorf("output not initialized")
	}
	return m.device.Start()
}

// Pause stops the device callback
func (m *Malgo) Pause() error {
	if m.device == nil {
		return nil
	}
	return m.device.Stop()
}

// Close releases output resources
func (m *Malgo) Close() error {
	if m.device != nil {
		if m.device.IsStarted() {
			if err := m.device.Stop(); err != nil {
				log.Printf("Warning: device stop error: %v", err)
			}
		}
		m.device.Uninit()
		m.device = nil
	}

	if m.malgoCtx != nil {
		if err := m.malgoCtx.Uninit(); err != nil {
			log.Printf("Warning: malgo context uninit error: %v", err)
		}
		m.malgoCtx.Free()
		m.malgoCtx = nil
	}
	return nil
}

// formatName returns human-readable format name
func formatName(format malgo.FormatType) string {
	switch format {
	case malgo.FormatU8:
		return "U8"
	case malgo.FormatS16:
		return "S16"
	case malgo.FormatS24:
		return "S24"
	case malgo.FormatS32:
		return "S32"
	default:
		return fmt.Sprintf("Unknown(%d)", format)
	}
}

//go:build portaudio

// ABOUTME: PortAudio output backend
// ABOUTME: Cross-platform audio output using PortAudio
package output

import (
	"encoding/binary"
	"fmt"

	"github.com/Resonate-Protocol/pcmplay/pkg/audio"
	"github.com/gordonklaus/portaudio"
)

// PortAudio output implementation
type PortAudio struct {
	stream *portaudio.Stream
	buffer []byte
}

// NewPortAudio creates a new PortAudio output
func NewPortAudio() *PortAudio {
	return &PortAudio{}
}

// Open initializes PortAudio and opens a default output stream
func (p *PortAudio) Open(format audio.Format, fill FillFunc) error {
	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize portaudio: %w", err)
	}

	var callback interface{}
	switch format.BitDepth {
	case 16:
		callback = func(out []int16) {
			buf := p.scratch(len(out) * 2)
			fill(buf)
			for i := range out {
				out[i] = int16(binary.LittleEndian.Uint16(buf[i*2:]))
			}
		}
	case 32:
		callback = func(out []int32) {
			buf := p.scratch(len(out) * 4)
			fill(buf)
			for i := range out {
				out[i] = int32(binary.LittleEndian.Uint32(buf[i*4:]))
			}
		}
	default:
		portaudio.Terminate()
		return fmt.Errorf("%w: portaudio output supports 16 and 32-bit, got %d-bit", audio.ErrInvalidFormat, format.BitDepth)
	}

	stream, err := portaudio.OpenDefaultStream(0, format.Channels, float64(format.SampleRate), 0, callback)
	if err != nil {
		portaudio.Terminate()
		return fmt.Errorf("failed to open stream: %w", err)
	}

	p.stream = stream
	return nil
}

// scratch returns a reusable byte buffer of length n
func (p *PortAudio) scratch(n int) []byte {
	if cap(p.buffer) < n {
		p.buffer = make([]byte, n)
	}
	return p.buffer[:n]
}

// Start starts the stream
func (p *PortAudio) Start() error {
	if p.stream == nil {
		return fmt.Errorf("output not opened")
	}
	return p.stream.Start()
}

// Pause stops the stream
func (p *PortAudio) Pause() error {
	if p.stream == nil {
		return nil
	}
	return p.stream.Stop()
}

// Close releases resources
func (p *PortAudio) Close() error {
	if p.stream != nil {
		if err := p.stream.Close(); err != nil {
			return err
		}
		p.stream = nil
	}
	return portaudio.Terminate()
}

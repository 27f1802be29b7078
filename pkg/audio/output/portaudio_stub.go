//go:build !portaudio

// ABOUTME: PortAudio stub when library not available
// ABOUTME: Provides compile-time placeholder when PortAudio not installed
package output

import (
	"fmt"

	"github.com/Resonate-Protocol/pcmplay/pkg/audio"
)

var errNoPortAudio = fmt.Errorf("PortAudio support not enabled (build with -tags portaudio)")

// PortAudio output implementation (stub)
type PortAudio struct{}

// NewPortAudio creates a new PortAudio output
func NewPortAudio() *PortAudio {
	return &PortAudio{}
}

// Open always fails without the portaudio build tag
func (p *PortAudio) Open(format audio.Format, fill FillFunc) error {
	return errNoPortAudio
}

// Start always fails without the portaudio build tag
func (p *PortAudio) Start() error {
	return errNoPortAudio
}

// Pause is a no-op
func (p *PortAudio) Pause() error {
	return nil
}

// Close is a no-op
func (p *PortAudio) Close() error {
	return nil
}

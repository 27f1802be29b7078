// ABOUTME: Backend selection by name
// ABOUTME: Maps config strings to output implementations
package output

import (
	"fmt"
	"strings"
)

// Backend names accepted by New
const (
	BackendMalgo     = "malgo"
	BackendOto       = "oto"
	BackendPortAudio = "portaudio"
	BackendNull      = "null"
)

// New returns a fresh backend for name
func New(name string) (Backend, error) {
	switch strings.ToLower(name) {
	case "", BackendMalgo:
		return NewMalgo(), nil
	case BackendOto:
		return NewOto(), nil
	case BackendPortAudio:
		return NewPortAudio(), nil
	case BackendNull:
		return NewNull(true), nil
	default:
		return nil, fmt.Errorf("unknown output backend %q (want %s, %s, %s or %s)",
			name, BackendMalgo, BackendOto, BackendPortAudio, BackendNull)
	}
}

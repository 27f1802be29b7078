// ABOUTME: Tests for Ogg Opus source
// ABOUTME: Tests OpusHead parsing and rejection of non-Opus input
package decode

import (
	"bytes"
	"errors"
	"testing"

	"github.com/Resonate-Protocol/pcmplay/pkg/audio"
)

// opusPage builds a first Ogg page carrying an OpusHead with channels
func opusPage(channels byte) []byte {
	page := []byte("OggS")
	page = append(page, make([]byte, 22)...) // version, flags, granule, serial, seq, crc
	page = append(page, 1, 19)               // one segment of 19 bytes
	page = append(page, []byte("OpusHead")...)
	page = append(page, 1, channels, 0x38, 0x01, 0x80, 0xbb, 0, 0, 0, 0, 0)
	return page
}

func TestOpusChannels(t *testing.T) {
	tests := []struct {
		name     string
		page     []byte
		expected int
		wantErr  bool
	}{
		{"mono", opusPage(1), 1, false},
		{"stereo", opusPage(2), 2, false},
		{"surround", opusPage(6), 0, true},
		{"not ogg", []byte("RIFF0000WAVE"), 0, true},
		{"vorbis", append([]byte("OggS"), []byte("\x01vorbis")...), 0, true},
		{"truncated", opusPage(2)[:36], 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := opusChannels(tt.page)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error, got %d channels", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.expected {
				t.Errorf("expected %d channels, got %d", tt.expected, got)
			}
		})
	}
}

func TestNewOpus_InvalidData(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"not ogg", []byte("RIFF0000WAVEfmt ")},
		{"header only", opusPage(2)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, err := NewOpus(bytes.NewReader(tt.data))
			if !errors.Is(err, audio.ErrUnsupportedFormat) {
				t.Errorf("expected ErrUnsupportedFormat, got %v", err)
			}
			if src != nil {
				t.Error("expected nil source for invalid input")
			}
		})
	}
}

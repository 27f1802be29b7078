// ABOUTME: Tests for the file opener
// ABOUTME: Tests extension dispatch and error classification
package decode

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/Resonate-Protocol/pcmplay/internal/audiotest"
	"github.com/Resonate-Protocol/pcmplay/pkg/audio"
)

func TestOpenWAV(t *testing.T) {
	format := audio.Format{SampleRate: 48000, Channels: 1, BitDepth: 16}
	path := audiotest.WriteWAV(t, "recorded_audio.wav", format, 1)

	src, err := Open(path)
	if err != nil {
		t.Fatalf("failed to open: %v", err)
	}
	defer src.Close()

	if src.Format().Codec != audio.CodecWAV {
		t.Errorf("expected wav codec, got %q", src.Format().Codec)
	}
	if d := Duration(src); d.Milliseconds() != 1000 {
		t.Errorf("expected 1s, got %v", d)
	}
}

func TestOpen_Errors(t *testing.T) {
	tests := []struct {
		name    string
		path    func(t *testing.T) string
		wantErr error
	}{
		{
			name: "missing",
			path: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "missing.wav")
			},
			wantErr: audio.ErrFileNotFound,
		},
		{
			name: "unknown extension",
			path: func(t *testing.T) string {
				return audiotest.WriteFile(t, "notes.txt", []byte("hello"))
			},
			wantErr: audio.ErrUnsupportedFormat,
		},
		{
			name: "corrupt wav",
			path: func(t *testing.T) string {
				return audiotest.WriteFile(t, "corrupt.wav", []byte("garbage garbage garbage garbage garbage"))
			},
			wantErr: audio.ErrUnsupportedFormat,
		},
		{
			name: "corrupt opus",
			path: func(t *testing.T) string {
				return audiotest.WriteFile(t, "voice.opus", []byte("OggS not really"))
			},
			wantErr: audio.ErrUnsupportedFormat,
		},
		{
			name: "raw pcm has no header",
			path: func(t *testing.T) string {
				return audiotest.WriteFile(t, "speaker.pcm", audiotest.Ramp(64))
			},
			wantErr: audio.ErrUnsupportedFormat,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, err := Open(tt.path(t))
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			if src != nil {
				t.Fatal("expected nil source on error")
			}
		})
	}
}

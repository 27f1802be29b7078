// ABOUTME: Tests for FLAC source
// ABOUTME: Round-trips encoded streams and tests rejection of non-FLAC input
package decode

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"testing"

	"github.com/Resonate-Protocol/pcmplay/pkg/audio"
	"github.com/mewkiz/flac"
	"github.com/mewkiz/flac/frame"
	"github.com/mewkiz/flac/meta"
)

// encodeFLAC encodes one frame per channel set into an in-memory FLAC stream
func encodeFLAC(t *testing.T, sampleRate int, bps int, channels [][]int32) []byte {
	t.Helper()

	n := len(channels[0])
	info := &meta.StreamInfo{
		BlockSizeMin:  uint16(n),
		BlockSizeMax:  uint16(n),
		SampleRate:    uint32(sampleRate),
		NChannels:     uint8(len(channels)),
		BitsPerSample: uint8(bps),
		NSamples:      uint64(n),
	}

	var buf bytes.Buffer
	enc, err := flac.NewEncoder(&buf, info)
	if err != nil {
		t.Fatalf("failed to create encoder: %v", err)
	}

	layout := frame.ChannelsMono
	if len(channels) == 2 {
		layout = frame.ChannelsLR
	}
	subframes := make([]*frame.Subframe, len(channels))
	for i, samples := range channels {
		subframes[i] = &frame.Subframe{
			SubHeader: frame.SubHeader{Pred: frame.PredVerbatim},
			Samples:   append([]int32(nil), samples...),
			NSamples:  n,
		}
	}
	f := &frame.Frame{
		Header: frame.Header{
			HasFixedBlockSize: true,
			BlockSize:         uint16(n),
			SampleRate:        uint32(sampleRate),
			Channels:          layout,
			BitsPerSample:     uint8(bps),
		},
		Subframes: subframes,
	}
	if err := enc.WriteFrame(f); err != nil {
		t.Fatalf("failed to write frame: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("failed to close encoder: %v", err)
	}
	return buf.Bytes()
}

func TestFLACSource_Stereo16(t *testing.T) {
	const n = 32
	left := make([]int32, n)
	right := make([]int32, n)
	for i := range left {
		left[i] = int32(i*1000 - 16000)
		right[i] = int32(-i * 500)
	}

	src, err := NewFLAC(bytes.NewReader(encodeFLAC(t, 44100, 16, [][]int32{left, right})))
	if err != nil {
		t.Fatalf("failed to create source: %v", err)
	}
	defer src.Close()

	expected := audio.Format{Codec: audio.CodecFLAC, SampleRate: 44100, Channels: 2, BitDepth: 16}
	if got := src.Format(); got != expected {
		t.Errorf("expected %v, got %v", expected, got)
	}
	if got := src.Length(); got != n*4 {
		t.Errorf("expected length %d, got %d", n*4, got)
	}

	pcm, err := io.ReadAll(src)
	if err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if len(pcm) != n*4 {
		t.Fatalf("expected %d bytes, got %d", n*4, len(pcm))
	}

	for i := 0; i < n; i++ {
		l := int16(binary.LittleEndian.Uint16(pcm[i*4:]))
		r := int16(binary.LittleEndian.Uint16(pcm[i*4+2:]))
		if int32(l) != left[i] || int32(r) != right[i] {
			t.Fatalf("frame %d: expected (%d, %d), got (%d, %d)", i, left[i], right[i], l, r)
		}
	}
}

func TestFLACSource_Widens8Bit(t *testing.T) {
	const n = 16
	mono := make([]int32, n)
	for i := range mono {
		mono[i] = int32(i*16 - 128)
	}

	src, err := NewFLAC(bytes.NewReader(encodeFLAC(t, 8000, 8, [][]int32{mono})))
	if err != nil {
		t.Fatalf("failed to create source: %v", err)
	}
	defer src.Close()

	expected := audio.Format{Codec: audio.CodecFLAC, SampleRate: 8000, Channels: 1, BitDepth: 16}
	if got := src.Format(); got != expected {
		t.Errorf("expected %v, got %v", expected, got)
	}
	if got := src.Length(); got != n*2 {
		t.Errorf("expected length %d, got %d", n*2, got)
	}

	// small reads split decoded frames across calls
	var pcm []byte
	buf := make([]byte, 3)
	for {
		k, err := src.Read(buf)
		pcm = append(pcm, buf[:k]...)
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("failed to decode: %v", err)
		}
	}
	if len(pcm) != n*2 {
		t.Fatalf("expected %d bytes, got %d", n*2, len(pcm))
	}

	for i := 0; i < n; i++ {
		got := int16(binary.LittleEndian.Uint16(pcm[i*2:]))
		if want := int16(mono[i] << 8); got != want {
			t.Errorf("sample %d: expected %d, got %d", i, want, got)
		}
	}
}

func TestNewFLAC_InvalidData(t *testing.T) {
	src, err := NewFLAC(bytes.NewReader([]byte("RIFF0000WAVEfmt ")))
	if !errors.Is(err, audio.ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}

	if src != nil {
		t.Fatal("expected source to be nil for invalid input")
	}
}

func TestContainerDepth(t *testing.T) {
	tests := []struct {
		bps      int
		expected int
	}{
		{8, 8},
		{12, 16},
		{16, 16},
		{20, 24},
		{24, 24},
		{32, 32},
	}

	for _, tt := range tests {
		if got := containerDepth(tt.bps); got != tt.expected {
			t.Errorf("bps=%d: expected %d, got %d", tt.bps, tt.expected, got)
		}
	}
}

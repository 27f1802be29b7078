// ABOUTME: Sine tone generator source
// ABOUTME: Produces a fixed-length test tone in any PCM format
package decode

import (
	"io"
	"math"
	"time"

	"github.com/Resonate-Protocol/pcmplay/pkg/audio"
)

// ToneSource generates a sine wave of fixed duration
type ToneSource struct {
	format    audio.Format
	frequency float64
	total     int64
	frame     int64
	pending   []byte
}

// NewTone creates a tone of the given frequency and duration.
// The format's codec is ignored; the tone reports itself as raw PCM.
func NewTone(frequency float64, duration time.Duration, format audio.Format) (*ToneSource, error) {
	format.Codec = audio.CodecPCM
	if err := format.Validate(); err != nil {
		return nil, err
	}

	return &ToneSource{
		format:    format,
		frequency: frequency,
		total:     int64(duration) * int64(format.SampleRate) / int64(time.Second),
	}, nil
}

// Format returns the tone's format
func (s *ToneSource) Format() audio.Format {
	return s.format
}

// Read generates whole frames; a trailing partial frame is held back
func (s *ToneSource) Read(p []byte) (int, error) {
	written := copy(p, s.pending)
	s.pending = s.pending[written:]

	frameSize := s.format.FrameSize()
	bps := s.format.BytesPerSample()
	_, hi := audio.SampleRange(s.format.BitDepth)
	frame := make([]byte, frameSize)

	for written < len(p) && s.frame < s.total {
		t := float64(s.frame) / float64(s.format.SampleRate)
		// 50% amplitude
		value := int32(math.Sin(2*math.Pi*s.frequency*t) * float64(hi) * 0.5)
		for ch := 0; ch < s.format.Channels; ch++ {
			audio.EncodeSample(frame[ch*bps:], value, s.format.BitDepth)
		}
		n := copy(p[written:], frame)
		if n < frameSize {
			s.pending = append(s.pending[:0], frame[n:]...)
		}
		written += n
		s.frame++
	}

	if written == 0 && s.frame >= s.total {
		return 0, io.EOF
	}
	return written, nil
}

// Length returns the total byte count of the tone
func (s *ToneSource) Length() int64 {
	return s.total * int64(s.format.FrameSize())
}

// Close is a no-op
func (s *ToneSource) Close() error {
	return nil
}

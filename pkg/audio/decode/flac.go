// ABOUTME: FLAC audio source
// ABOUTME: Decodes FLAC frames with mewkiz/flac into little-endian PCM
package decode

import (
	"fmt"
	"io"

	"github.com/Resonate-Protocol/pcmplay/pkg/audio"
	"github.com/mewkiz/flac"
)

// FLACSource decodes FLAC audio
type FLACSource struct {
	stream  *flac.Stream
	format  audio.Format
	shift   uint
	pending []byte
	length  int64
}

// NewFLAC parses the FLAC stream header from r
func NewFLAC(r io.Reader) (*FLACSource, error) {
	stream, err := flac.New(r)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse flac stream: %v", audio.ErrUnsupportedFormat, err)
	}

	bps := int(stream.Info.BitsPerSample)
	container := containerDepth(bps)
	format := audio.Format{
		Codec:      audio.CodecFLAC,
		SampleRate: int(stream.Info.SampleRate),
		Channels:   int(stream.Info.NChannels),
		BitDepth:   container,
	}
	if err := format.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", audio.ErrUnsupportedFormat, err)
	}
	// 8-bit PCM output is unsigned; widen signed 8-bit FLAC instead
	if format.BitDepth == 8 {
		format.BitDepth = 16
	}

	length := int64(-1)
	if stream.Info.NSamples > 0 {
		length = int64(stream.Info.NSamples) * int64(format.FrameSize())
	}

	return &FLACSource{
		stream: stream,
		format: format,
		shift:  uint(format.BitDepth - bps),
		length: length,
	}, nil
}

// containerDepth rounds a FLAC bit depth up to a whole-byte sample size
func containerDepth(bps int) int {
	switch {
	case bps <= 8:
		return 8
	case bps <= 16:
		return 16
	case bps <= 24:
		return 24
	default:
		return 32
	}
}

// Format returns the decoded format
func (s *FLACSource) Format() audio.Format {
	return s.format
}

// Read decodes frames on demand
func (s *FLACSource) Read(p []byte) (int, error) {
	for len(s.pending) == 0 {
		frame, err := s.stream.ParseNext()
		if err == io.EOF {
			return 0, io.EOF
		}
		if err != nil {
			return 0, fmt.Errorf("flac decode error: %w", err)
		}

		channels := len(frame.Subframes)
		blockSize := int(frame.BlockSize)
		bps := s.format.BytesPerSample()
		out := make([]byte, blockSize*channels*bps)
		for i := 0; i < blockSize; i++ {
			for ch := 0; ch < channels; ch++ {
				sample := frame.Subframes[ch].Samples[i] << s.shift
				audio.EncodeSample(out[(i*channels+ch)*bps:], sample, s.format.BitDepth)
			}
		}
		s.pending = out
	}

	n := copy(p, s.pending)
	s.pending = s.pending[n:]
	return n, nil
}

// Length returns the decoded byte count from STREAMINFO, or -1
func (s *FLACSource) Length() int64 {
	return s.length
}

// Close releases decoder resources. The reader is owned by the caller.
func (s *FLACSource) Close() error {
	return nil
}

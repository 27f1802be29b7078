// ABOUTME: Ogg Vorbis audio source
// ABOUTME: Decodes Vorbis with jfreymuth/oggvorbis to 16-bit PCM
package decode

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/Resonate-Protocol/pcmplay/pkg/audio"
	"github.com/jfreymuth/oggvorbis"
)

// VorbisSource decodes Ogg Vorbis audio
type VorbisSource struct {
	reader  *oggvorbis.Reader
	format  audio.Format
	floats  []float32
	pending []byte
}

// NewVorbis reads the Vorbis headers from r
func NewVorbis(r io.Reader) (*VorbisSource, error) {
	reader, err := oggvorbis.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read vorbis headers: %v", audio.ErrUnsupportedFormat, err)
	}

	return &VorbisSource{
		reader: reader,
		format: audio.Format{
			Codec:      audio.CodecVorbis,
			SampleRate: reader.SampleRate(),
			Channels:   reader.Channels(),
			BitDepth:   16,
		},
		floats: make([]float32, 4096*reader.Channels()),
	}, nil
}

// Format returns the decoded format
func (s *VorbisSource) Format() audio.Format {
	return s.format
}

// Read converts decoded float samples to 16-bit little-endian
func (s *VorbisSource) Read(p []byte) (int, error) {
	for len(s.pending) == 0 {
		n, err := s.reader.Read(s.floats)
		if n == 0 {
			if err == nil || err == io.EOF {
				return 0, io.EOF
			}
			return 0, fmt.Errorf("vorbis decode error: %w", err)
		}

		out := make([]byte, n*2)
		for i := 0; i < n; i++ {
			binary.LittleEndian.PutUint16(out[i*2:], uint16(floatToInt16(s.floats[i])))
		}
		s.pending = out
	}

	n := copy(p, s.pending)
	s.pending = s.pending[n:]
	return n, nil
}

// Length returns the decoded byte count when the stream length is known
func (s *VorbisSource) Length() int64 {
	if n := s.reader.Length(); n > 0 {
		return n * int64(s.format.FrameSize())
	}
	return -1
}

// Close releases decoder resources
func (s *VorbisSource) Close() error {
	return nil
}

// floatToInt16 converts a [-1,1] sample with clipping
func floatToInt16(v float32) int16 {
	if v > 1 {
		v = 1
	} else if v < -1 {
		v = -1
	}
	return int16(v * 32767)
}

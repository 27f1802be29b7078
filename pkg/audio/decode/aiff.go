// ABOUTME: AIFF audio source
// ABOUTME: Decodes big-endian AIFF samples with go-audio/aiff
package decode

import (
	"fmt"
	"io"

	"github.com/Resonate-Protocol/pcmplay/pkg/audio"
	"github.com/go-audio/aiff"
	goaudio "github.com/go-audio/audio"
)

// aiffReader is the part of aiff.Decoder the source uses
type aiffReader interface {
	PCMBuffer(buf *goaudio.IntBuffer) (int, error)
}

// AIFFSource converts AIFF samples to little-endian PCM
type AIFFSource struct {
	dec     aiffReader
	format  audio.Format
	intBuf  *goaudio.IntBuffer
	pending []byte
	eof     bool
}

// NewAIFF reads the AIFF header from r
func NewAIFF(r io.ReadSeeker) (*AIFFSource, error) {
	dec := aiff.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("%w: not an AIFF file", audio.ErrUnsupportedFormat)
	}
	dec.ReadInfo()

	f := dec.Format()
	if f == nil {
		return nil, fmt.Errorf("%w: AIFF without COMM chunk", audio.ErrUnsupportedFormat)
	}

	format := audio.Format{
		Codec:      audio.CodecAIFF,
		SampleRate: f.SampleRate,
		Channels:   f.NumChannels,
		BitDepth:   int(dec.BitDepth),
	}
	// 8-bit AIFF is signed, unlike 8-bit PCM everywhere else here
	if format.BitDepth == 8 {
		return nil, fmt.Errorf("%w: 8-bit AIFF", audio.ErrUnsupportedFormat)
	}
	if err := format.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", audio.ErrUnsupportedFormat, err)
	}

	return newAIFFSource(dec, format), nil
}

func newAIFFSource(dec aiffReader, format audio.Format) *AIFFSource {
	return &AIFFSource{
		dec:    dec,
		format: format,
		intBuf: &goaudio.IntBuffer{
			Data: make([]int, 4096),
			Format: &goaudio.Format{
				NumChannels: format.Channels,
				SampleRate:  format.SampleRate,
			},
		},
	}
}

// Format returns the format from the COMM chunk
func (s *AIFFSource) Format() audio.Format {
	return s.format
}

// Read converts decoded samples to little-endian bytes
func (s *AIFFSource) Read(p []byte) (int, error) {
	if len(s.pending) == 0 {
		if s.eof {
			return 0, io.EOF
		}
		if err := s.fill(); err != nil {
			return 0, err
		}
		if len(s.pending) == 0 {
			return 0, io.EOF
		}
	}

	n := copy(p, s.pending)
	s.pending = s.pending[n:]
	return n, nil
}

func (s *AIFFSource) fill() error {
	s.intBuf.Data = s.intBuf.Data[:cap(s.intBuf.Data)]
	n, err := s.dec.PCMBuffer(s.intBuf)
	if err == io.EOF || (err == nil && n == 0) {
		s.eof = true
		err = nil
	}
	if err != nil {
		return fmt.Errorf("aiff decode error: %w", err)
	}

	bps := s.format.BytesPerSample()
	out := make([]byte, n*bps)
	for i := 0; i < n; i++ {
		audio.EncodeSample(out[i*bps:], int32(s.intBuf.Data[i]), s.format.BitDepth)
	}
	s.pending = out
	return nil
}

// Length is unknown for AIFF
func (s *AIFFSource) Length() int64 {
	return -1
}

// Close releases decoder resources
func (s *AIFFSource) Close() error {
	return nil
}

// ABOUTME: WAV audio source
// ABOUTME: Parses RIFF headers with go-audio/wav and streams the data chunk
package decode

import (
	"fmt"
	"io"

	"github.com/Resonate-Protocol/pcmplay/pkg/audio"
	"github.com/go-audio/wav"
)

const (
	wavFormatPCM        = 1
	wavFormatExtensible = 0xFFFE
)

// WAVSource streams the PCM data chunk of a WAV file
type WAVSource struct {
	dec    *wav.Decoder
	data   io.Reader
	format audio.Format
	length int64
}

// NewWAV reads the WAV header from r and positions it at the sample data
func NewWAV(r io.ReadSeeker) (*WAVSource, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("%w: not a WAV file", audio.ErrUnsupportedFormat)
	}

	if dec.WavAudioFormat != wavFormatPCM && dec.WavAudioFormat != wavFormatExtensible {
		return nil, fmt.Errorf("%w: WAV encoding %d (only integer PCM)", audio.ErrUnsupportedFormat, dec.WavAudioFormat)
	}

	format := audio.Format{
		Codec:      audio.CodecWAV,
		SampleRate: int(dec.SampleRate),
		Channels:   int(dec.NumChans),
		BitDepth:   int(dec.BitDepth),
	}
	if err := format.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", audio.ErrUnsupportedFormat, err)
	}

	if err := dec.FwdToPCM(); err != nil {
		return nil, fmt.Errorf("%w: missing data chunk: %v", audio.ErrUnsupportedFormat, err)
	}
	if dec.PCMChunk == nil {
		return nil, fmt.Errorf("%w: missing data chunk", audio.ErrUnsupportedFormat)
	}

	return &WAVSource{
		dec:    dec,
		data:   dec.PCMChunk,
		format: format,
		length: dec.PCMLen(),
	}, nil
}

// Format returns the format from the fmt chunk
func (s *WAVSource) Format() audio.Format {
	return s.format
}

// Read returns little-endian PCM straight from the data chunk
func (s *WAVSource) Read(p []byte) (int, error) {
	return s.data.Read(p)
}

// Length returns the data chunk size
func (s *WAVSource) Length() int64 {
	return s.length
}

// Close releases decoder resources
func (s *WAVSource) Close() error {
	return nil
}

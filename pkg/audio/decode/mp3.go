// ABOUTME: MP3 audio source
// ABOUTME: Decodes MP3 to 16-bit stereo PCM with go-mp3
package decode

import (
	"fmt"
	"io"

	"github.com/Resonate-Protocol/pcmplay/pkg/audio"
	"github.com/hajimehoshi/go-mp3"
)

// MP3Source decodes MP3 audio. go-mp3 always emits 16-bit stereo.
type MP3Source struct {
	decoder *mp3.Decoder
	format  audio.Format
}

// NewMP3 creates an MP3 source reading from r
func NewMP3(r io.Reader) (*MP3Source, error) {
	decoder, err := mp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create mp3 decoder: %v", audio.ErrUnsupportedFormat, err)
	}

	return &MP3Source{
		decoder: decoder,
		format: audio.Format{
			Codec:      audio.CodecMP3,
			SampleRate: decoder.SampleRate(),
			Channels:   2,
			BitDepth:   16,
		},
	}, nil
}

// Format returns the decoded format
func (s *MP3Source) Format() audio.Format {
	return s.format
}

// Read returns decoded PCM bytes
func (s *MP3Source) Read(p []byte) (int, error) {
	n, err := s.decoder.Read(p)
	if err != nil && err != io.EOF {
		return n, fmt.Errorf("mp3 decode error: %w", err)
	}
	return n, err
}

// Length returns the decoded byte count when the input is seekable
func (s *MP3Source) Length() int64 {
	if n := s.decoder.Length(); n > 0 {
		return n
	}
	return -1
}

// Close releases decoder resources
func (s *MP3Source) Close() error {
	return nil
}

// ABOUTME: Ogg Opus audio source
// ABOUTME: Decodes .opus files with libopusfile to 48kHz 16-bit PCM
package decode

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/Resonate-Protocol/pcmplay/pkg/audio"
	"gopkg.in/hraban/opus.v2"
)

// opusRate is the rate libopusfile always decodes at
const opusRate = 48000

// opusMaxFrame is the largest Opus frame in samples per channel (120ms)
const opusMaxFrame = 5760

// OpusSource decodes Ogg Opus audio
type OpusSource struct {
	stream  *opus.Stream
	format  audio.Format
	pcm     []int16
	pending []byte
}

// NewOpus reads the Opus headers from r
func NewOpus(r io.Reader) (*OpusSource, error) {
	br := bufio.NewReaderSize(r, 4096)

	// opus.Stream needs the channel count up front; it lives in OpusHead
	head, _ := br.Peek(512)
	channels, err := opusChannels(head)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", audio.ErrUnsupportedFormat, err)
	}

	stream, err := opus.NewStream(br)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open opus stream: %v", audio.ErrUnsupportedFormat, err)
	}

	return &OpusSource{
		stream: stream,
		format: audio.Format{
			Codec:      audio.CodecOpus,
			SampleRate: opusRate,
			Channels:   channels,
			BitDepth:   16,
		},
		pcm: make([]int16, opusMaxFrame*channels),
	}, nil
}

// opusChannels finds the OpusHead packet in the first Ogg page and returns
// its channel count
func opusChannels(page []byte) (int, error) {
	if !bytes.HasPrefix(page, []byte("OggS")) {
		return 0, errors.New("not an ogg stream")
	}
	i := bytes.Index(page, []byte("OpusHead"))
	if i < 0 || len(page) < i+10 {
		return 0, errors.New("missing opus header")
	}
	channels := int(page[i+9])
	if channels < 1 || channels > 2 {
		return 0, fmt.Errorf("unsupported opus channel count %d", channels)
	}
	return channels, nil
}

// Format returns the decoded format
func (s *OpusSource) Format() audio.Format {
	return s.format
}

// Read decodes packets on demand
func (s *OpusSource) Read(p []byte) (int, error) {
	for len(s.pending) == 0 {
		n, err := s.stream.Read(s.pcm)
		if err == io.EOF {
			return 0, io.EOF
		}
		if err != nil {
			return 0, fmt.Errorf("opus decode error: %w", err)
		}

		samples := n * s.format.Channels
		out := make([]byte, samples*2)
		for i := 0; i < samples; i++ {
			binary.LittleEndian.PutUint16(out[i*2:], uint16(s.pcm[i]))
		}
		s.pending = out
	}

	n := copy(p, s.pending)
	s.pending = s.pending[n:]
	return n, nil
}

// Length is unknown; libopusfile is read as a stream
func (s *OpusSource) Length() int64 {
	return -1
}

// Close releases the libopusfile handle. The reader is owned by the caller.
func (s *OpusSource) Close() error {
	return s.stream.Close()
}

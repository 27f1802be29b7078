// ABOUTME: Raw PCM source
// ABOUTME: Reads headerless PCM whose format is supplied by the caller
package decode

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/Resonate-Protocol/pcmplay/pkg/audio"
)

// RawSource reads headerless PCM in a fixed format
type RawSource struct {
	r      io.Reader
	c      io.Closer
	format audio.Format
	length int64
}

// NewRaw wraps r as PCM in the given format. length is the byte count of r,
// or -1 when unknown.
func NewRaw(r io.Reader, format audio.Format, length int64) (*RawSource, error) {
	format.Codec = audio.CodecPCM
	if err := format.Validate(); err != nil {
		return nil, err
	}

	return &RawSource{
		r:      r,
		format: format,
		length: length,
	}, nil
}

// OpenRaw opens a headerless PCM file
func OpenRaw(path string, format audio.Format) (*RawSource, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", audio.ErrFileNotFound, path)
		}
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}

	length := int64(-1)
	if info, err := f.Stat(); err == nil {
		length = info.Size()
	}

	src, err := NewRaw(f, format, length)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	src.c = f
	return src, nil
}

// Format returns the format supplied at construction
func (s *RawSource) Format() audio.Format {
	return s.format
}

// Read passes bytes through unchanged
func (s *RawSource) Read(p []byte) (int, error) {
	return s.r.Read(p)
}

// Length returns the byte count, or -1 when unknown
func (s *RawSource) Length() int64 {
	return s.length
}

// Close closes the backing file if OpenRaw created it
func (s *RawSource) Close() error {
	if s.c == nil {
		return nil
	}
	err := s.c.Close()
	s.c = nil
	return err
}

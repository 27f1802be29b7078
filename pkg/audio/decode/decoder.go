// ABOUTME: Source interface definition and file opener
// ABOUTME: Picks a decoder for self-describing files by extension
package decode

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Resonate-Protocol/pcmplay/pkg/audio"
)

// Source is a readable stream of interleaved little-endian PCM
type Source interface {
	// Format describes the bytes returned by Read
	Format() audio.Format

	// Read fills p with PCM bytes; io.EOF marks the end of the stream
	Read(p []byte) (int, error)

	// Length returns the total PCM byte count, or -1 when unknown
	Length() int64

	// Close releases decoder resources
	Close() error
}

// Duration returns the playing time of src, or 0 when its length is unknown
func Duration(src Source) time.Duration {
	n := src.Length()
	if n < 0 {
		return 0
	}
	return src.Format().Duration(n)
}

// Open opens a self-describing audio file and returns a Source for it
func Open(path string) (Source, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", audio.ErrFileNotFound, path)
		}
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}

	var src Source
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".wav", ".wave":
		src, err = NewWAV(f)
	case ".aif", ".aiff":
		src, err = NewAIFF(f)
	case ".mp3":
		src, err = NewMP3(f)
	case ".flac":
		src, err = NewFLAC(f)
	case ".ogg", ".oga":
		src, err = NewVorbis(f)
	case ".opus":
		src, err = NewOpus(f)
	default:
		err = fmt.Errorf("%w: %q", audio.ErrUnsupportedFormat, ext)
	}
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}

	return &fileSource{Source: src, file: f}, nil
}

// fileSource closes the backing file together with the decoder
type fileSource struct {
	Source
	file *os.File
}

func (s *fileSource) Close() error {
	err := s.Source.Close()
	if cerr := s.file.Close(); err == nil {
		err = cerr
	}
	return err
}

// readFull reads len(p) bytes unless the stream ends first.
// A short read at the end is reported with the bytes it got and no error.
func readFull(r io.Reader, p []byte) (int, error) {
	n, err := io.ReadFull(r, p)
	if err == io.ErrUnexpectedEOF {
		return n, nil
	}
	if err == io.EOF && n == 0 {
		return 0, io.EOF
	}
	return n, err
}

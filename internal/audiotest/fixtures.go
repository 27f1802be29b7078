// ABOUTME: Test fixture helpers shared across packages
// ABOUTME: Writes WAV and raw PCM files into a test's temp dir
package audiotest

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/Resonate-Protocol/pcmplay/pkg/audio"
)

// WAVBytes builds a canonical 44-byte-header WAV around pcm
func WAVBytes(format audio.Format, pcm []byte) []byte {
	buf := new(bytes.Buffer)

	numChannels := uint16(format.Channels)
	bits := uint16(format.BitDepth)
	byteRate := uint32(format.ByteRate())
	blockAlign := uint16(format.FrameSize())
	dataSize := uint32(len(pcm))

	// RIFF header
	buf.WriteString("RIFF")
	_ = binary.Write(buf, binary.LittleEndian, 36+dataSize)
	buf.WriteString("WAVE")

	// fmt chunk
	buf.WriteString("fmt ")
	_ = binary.Write(buf, binary.LittleEndian, uint32(16))
	_ = binary.Write(buf, binary.LittleEndian, uint16(1)) // PCM
	_ = binary.Write(buf, binary.LittleEndian, numChannels)
	_ = binary.Write(buf, binary.LittleEndian, uint32(format.SampleRate))
	_ = binary.Write(buf, binary.LittleEndian, byteRate)
	_ = binary.Write(buf, binary.LittleEndian, blockAlign)
	_ = binary.Write(buf, binary.LittleEndian, bits)

	// data chunk
	buf.WriteString("data")
	_ = binary.Write(buf, binary.LittleEndian, dataSize)
	buf.Write(pcm)

	return buf.Bytes()
}

// Ramp returns n bytes of non-silent PCM: a repeating 0..255 pattern
func Ramp(n int) []byte {
	pcm := make([]byte, n)
	for i := range pcm {
		pcm[i] = byte(i)
	}
	return pcm
}

// WriteWAV writes a WAV file holding seconds of non-silent audio and returns its path
func WriteWAV(tb testing.TB, name string, format audio.Format, seconds float64) string {
	tb.Helper()
	n := int(seconds*float64(format.SampleRate)) * format.FrameSize()
	return WriteFile(tb, name, WAVBytes(format, Ramp(n)))
}

// WriteRaw writes headerless PCM of the given duration and returns its path
func WriteRaw(tb testing.TB, name string, format audio.Format, seconds float64) string {
	tb.Helper()
	n := int(seconds*float64(format.SampleRate)) * format.FrameSize()
	return WriteFile(tb, name, Ramp(n))
}

// WriteFile writes data under tb.TempDir()
func WriteFile(tb testing.TB, name string, data []byte) string {
	tb.Helper()
	path := filepath.Join(tb.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		tb.Fatalf("failed to write fixture %s: %v", path, err)
	}
	return path
}

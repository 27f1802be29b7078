// ABOUTME: Audio type definitions
// ABOUTME: Defines PCM formats and sample conversion helpers
package audio

import (
	"encoding/binary"
	"fmt"
	"time"
)

const (
	// 24-bit audio range constants
	Max24Bit = 8388607  // 2^23 - 1
	Min24Bit = -8388608 // -2^23
)

// Codec names reported by sources
const (
	CodecPCM    = "pcm"
	CodecWAV    = "wav"
	CodecAIFF   = "aiff"
	CodecMP3    = "mp3"
	CodecFLAC   = "flac"
	CodecVorbis = "vorbis"
	CodecOpus   = "opus"
)

// Format describes a stream of interleaved little-endian PCM
type Format struct {
	Codec      string
	SampleRate int
	Channels   int
	BitDepth   int
}

// Validate checks that the format can be played
func (f Format) Validate() error {
	if f.SampleRate <= 0 {
		return fmt.Errorf("%w: sample rate %d", ErrInvalidFormat, f.SampleRate)
	}
	if f.Channels <= 0 {
		return fmt.Errorf("%w: channel count %d", ErrInvalidFormat, f.Channels)
	}
	switch f.BitDepth {
	case 8, 16, 24, 32:
	default:
		return fmt.Errorf("%w: bit depth %d (supported: 8, 16, 24, 32)", ErrInvalidFormat, f.BitDepth)
	}
	return nil
}

// BytesPerSample returns the size of one sample of one channel
func (f Format) BytesPerSample() int {
	return f.BitDepth / 8
}

// FrameSize returns the size of one sample across all channels
func (f Format) FrameSize() int {
	return f.BytesPerSample() * f.Channels
}

// ByteRate returns bytes consumed per second of playback
func (f Format) ByteRate() int {
	return f.FrameSize() * f.SampleRate
}

// Duration returns how long n bytes take to play
func (f Format) Duration(n int64) time.Duration {
	rate := f.ByteRate()
	if rate <= 0 {
		return 0
	}
	return time.Duration(n) * time.Second / time.Duration(rate)
}

// Bytes returns the frame-aligned byte count for d of playback
func (f Format) Bytes(d time.Duration) int {
	frames := int(int64(d) * int64(f.SampleRate) / int64(time.Second))
	return frames * f.FrameSize()
}

// String renders the format the way the console prints it
func (f Format) String() string {
	return fmt.Sprintf("%dHz, %d channel(s), %d-bit", f.SampleRate, f.Channels, f.BitDepth)
}

// SampleTo24Bit converts int32 to 24-bit packed bytes (little-endian)
func SampleTo24Bit(sample int32) [3]byte {
	// Take lower 24 bits, pack little-endian
	return [3]byte{
		byte(sample),
		byte(sample >> 8),
		byte(sample >> 16),
	}
}

// SampleFrom24Bit converts 24-bit packed bytes to int32 (little-endian)
func SampleFrom24Bit(b [3]byte) int32 {
	// Reconstruct 24-bit value and sign-extend to 32-bit
	val := int32(b[0]) | int32(b[1])<<8 | int32(b[2])<<16
	// Sign extend from 24-bit to 32-bit
	if val&0x800000 != 0 {
		val |= ^0xFFFFFF // Set upper 8 bits to 1 for negative values
	}
	return val
}

// SampleRange returns the signed range of a sample at bitDepth.
// 8-bit PCM is unsigned on disk but is centred on zero here.
func SampleRange(bitDepth int) (lo, hi int64) {
	switch bitDepth {
	case 8:
		return -128, 127
	case 16:
		return -32768, 32767
	case 24:
		return Min24Bit, Max24Bit
	default:
		return -2147483648, 2147483647
	}
}

// DecodeSample reads one little-endian sample of bitDepth from b
func DecodeSample(b []byte, bitDepth int) int32 {
	switch bitDepth {
	case 8:
		return int32(b[0]) - 128
	case 16:
		return int32(int16(binary.LittleEndian.Uint16(b)))
	case 24:
		return SampleFrom24Bit([3]byte{b[0], b[1], b[2]})
	default:
		return int32(binary.LittleEndian.Uint32(b))
	}
}

// EncodeSample writes one little-endian sample of bitDepth into b
func EncodeSample(b []byte, sample int32, bitDepth int) {
	switch bitDepth {
	case 8:
		b[0] = byte(sample + 128)
	case 16:
		binary.LittleEndian.PutUint16(b, uint16(int16(sample)))
	case 24:
		p := SampleTo24Bit(sample)
		copy(b, p[:])
	default:
		binary.LittleEndian.PutUint32(b, uint32(sample))
	}
}

// ABOUTME: Audio fundamentals package providing core types and utilities
// ABOUTME: Defines Format, sentinel errors and sample conversion functions
// Package audio provides the PCM types shared by decoders, outputs and the
// playback driver.
//
// A Format describes interleaved little-endian PCM:
//
//	format := audio.Format{
//	    Codec:      audio.CodecPCM,
//	    SampleRate: 48000,
//	    Channels:   1,
//	    BitDepth:   16,
//	}
//
//	if err := format.Validate(); err != nil {
//	    // errors.Is(err, audio.ErrInvalidFormat)
//	}
//
// 8-bit samples are unsigned on disk; DecodeSample and EncodeSample centre
// them on zero so gain can be applied uniformly across bit depths.
package audio

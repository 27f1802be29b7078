// ABOUTME: Audio source package for file and raw PCM input
// ABOUTME: Provides the Source interface and decoders for WAV, AIFF, MP3, FLAC, Vorbis
// Package decode turns audio files into Sources of little-endian PCM.
//
// Self-describing files are opened by extension:
//
//	src, err := decode.Open("recorded_audio.wav")
//
// Headerless PCM needs its format supplied:
//
//	src, err := decode.OpenRaw("micin_48k_s16_mono.pcm", audio.Format{
//	    SampleRate: 48000, Channels: 1, BitDepth: 16,
//	})
//
// WithVolume wraps any Source with a gain stage.
package decode

// ABOUTME: Gain stage for any Source
// ABOUTME: Scales samples by a volume ratio with clipping protection
package decode

import (
	"io"
	"math"
	"sync/atomic"

	"github.com/Resonate-Protocol/pcmplay/pkg/audio"
)

// Gain applies a volume ratio to the samples of another Source
type Gain struct {
	src   Source
	ratio atomic.Uint64 // float64 bits
}

// WithVolume wraps src with a gain stage. ratio is clamped to [0, 1].
func WithVolume(src Source, ratio float64) *Gain {
	g := &Gain{src: src}
	g.SetVolume(ratio)
	return g
}

// SetVolume changes the gain; safe to call while playing
func (g *Gain) SetVolume(ratio float64) {
	g.ratio.Store(math.Float64bits(ClampVolume(ratio)))
}

// Volume returns the current gain ratio
func (g *Gain) Volume() float64 {
	return math.Float64frombits(g.ratio.Load())
}

// Format returns the wrapped source's format
func (g *Gain) Format() audio.Format {
	return g.src.Format()
}

// Read reads whole samples from the wrapped source and scales them
func (g *Gain) Read(p []byte) (int, error) {
	format := g.src.Format()
	bps := format.BytesPerSample()
	p = p[:len(p)/bps*bps]
	if len(p) == 0 {
		return 0, nil
	}

	n, err := g.src.Read(p)
	if rem := n % bps; rem != 0 && err == nil {
		// complete the split sample so scaling never sees half of one
		m, rerr := readFull(g.src, p[n:n+bps-rem])
		n += m
		if rerr != nil && rerr != io.EOF {
			err = rerr
		}
		if m < bps-rem {
			n -= n % bps
		}
	}

	applyGain(p[:n-n%bps], format.BitDepth, g.Volume())
	return n, err
}

// Length returns the wrapped source's length
func (g *Gain) Length() int64 {
	return g.src.Length()
}

// Close closes the wrapped source
func (g *Gain) Close() error {
	return g.src.Close()
}

// ClampVolume limits a volume ratio to [0, 1]
func ClampVolume(ratio float64) float64 {
	if math.IsNaN(ratio) || ratio < 0 {
		return 0
	}
	if ratio > 1 {
		return 1
	}
	return ratio
}

// applyGain scales little-endian samples in place
func applyGain(buf []byte, bitDepth int, ratio float64) {
	if ratio == 1 {
		return
	}

	bps := bitDepth / 8
	lo, hi := audio.SampleRange(bitDepth)
	for i := 0; i+bps <= len(buf); i += bps {
		scaled := int64(float64(audio.DecodeSample(buf[i:], bitDepth)) * ratio)
		if scaled > hi {
			scaled = hi
		} else if scaled < lo {
			scaled = lo
		}
		audio.EncodeSample(buf[i:], int32(scaled), bitDepth)
	}
}

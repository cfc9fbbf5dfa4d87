// Package filter provides the second-order IIR sections used as resonator modes.
package filter

import (
	"math"

	"github.com/tphakala/go-drum-synth/internal/simdops"
)

const (
	// maxNormalizedFreq keeps the centre frequency below Nyquist, where
	// sin(ω) would turn negative and flip the sign of the bandwidth term.
	maxNormalizedFreq = 0.49

	// minNormalizedFreq keeps ω strictly positive.
	minNormalizedFreq = 1e-6

	// minQ keeps the bandwidth term finite.
	minQ = 1e-3
)

// Coefficients holds normalized biquad coefficients (a0 == 1).
type Coefficients struct {
	B0, B1, B2 float64
	A1, A2     float64
}

// DesignBandPass returns band-pass coefficients with 0 dB peak gain at freq.
//
// This is the RBJ cookbook band-pass (constant peak gain):
//
//	ω = 2π·f/fs, α = sin(ω)/(2Q)
//	b = [α, 0, -α], a = [1+α, -2cos(ω), 1-α], normalized by a0
//
// freq is limited to (0, 0.49·fs) and q to a positive floor so the section is
// always stable.
func DesignBandPass(freq, q, sampleRate float64) Coefficients {
	if sampleRate <= 0 || math.IsNaN(sampleRate) {
		return Coefficients{}
	}
	norm := freq / sampleRate
	if math.IsNaN(norm) || norm < minNormalizedFreq {
		norm = minNormalizedFreq
	} else if norm > maxNormalizedFreq {
		norm = maxNormalizedFreq
	}
	if math.IsNaN(q) || q < minQ {
		q = minQ
	}

	omega := 2 * math.Pi * norm
	alpha := math.Sin(omega) / (2 * q)
	cosOmega := math.Cos(omega)

	a0 := 1 + alpha
	return Coefficients{
		B0: alpha / a0,
		B1: 0,
		B2: -alpha / a0,
		A1: -2 * cosOmega / a0,
		A2: (1 - alpha) / a0,
	}
}

// Biquad is one resonant mode: coefficients plus two samples of input and
// output history. The zero value is a silent section.
type Biquad[F simdops.Float] struct {
	b0, b1, b2 F
	a1, a2     F

	x1, x2 F
	y1, y2 F
}

// SetCoefficients installs c without touching the history.
func (b *Biquad[F]) SetCoefficients(c Coefficients) {
	b.b0 = F(c.B0)
	b.b1 = F(c.B1)
	b.b2 = F(c.B2)
	b.a1 = F(c.A1)
	b.a2 = F(c.A2)
}

// Coefficients returns the installed coefficients.
func (b *Biquad[F]) Coefficients() Coefficients {
	return Coefficients{
		B0: float64(b.b0),
		B1: float64(b.b1),
		B2: float64(b.b2),
		A1: float64(b.a1),
		A2: float64(b.a2),
	}
}

// Reset clears the filter history.
func (b *Biquad[F]) Reset() {
	b.x1, b.x2 = 0, 0
	b.y1, b.y2 = 0, 0
}

// Process filters one sample.
func (b *Biquad[F]) Process(x F) F {
	y := b.b0*x + b.b1*b.x1 + b.b2*b.x2 - b.a1*b.y1 - b.a2*b.y2

	b.x2 = b.x1
	b.x1 = x
	b.y2 = b.y1
	b.y1 = y

	return y
}

// Package resonator implements the modal body of the drum: a parallel bank
// of band-pass sections tuned to the resonances of a cylindrical cavity.
package resonator

import (
	"errors"
	"fmt"
	"math"

	"github.com/tphakala/go-drum-synth/internal/filter"
	"github.com/tphakala/go-drum-synth/internal/mathutil"
	"github.com/tphakala/go-drum-synth/internal/simdops"
)

// ErrInvalidSampleRate indicates a non-positive or non-finite sample rate.
var ErrInvalidSampleRate = errors.New("invalid sample rate")

// Bank holds two preallocated mode sets. One is current; while a crossfade
// is running the other is outgoing and both are stepped every sample.
type Bank[F simdops.Float] struct {
	sets  [2][ModeCount]filter.Biquad[F]
	freqs [2][ModeCount]float64

	current     int
	tuned       bool
	crossfading bool
	counter     int

	sampleRate float64

	// Per-sample mode outputs, summed with SIMD.
	newOut [ModeCount]F
	oldOut [ModeCount]F

	catalog []float64
	ops     *simdops.Ops[F]
}

// New creates an untuned bank. Until the first Retune it outputs silence.
func New[F simdops.Float](sampleRate float64) (*Bank[F], error) {
	if !validRate(sampleRate) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSampleRate, sampleRate)
	}
	return &Bank[F]{
		sampleRate: sampleRate,
		catalog:    make([]float64, 0, ModeCount),
		ops:        simdops.For[F](),
	}, nil
}

func validRate(sr float64) bool {
	return sr > 0 && !math.IsInf(sr, 0)
}

// Retune rebuilds the idle set for a cavity of the given radius and depth
// and starts a crossfade from the current set. A crossfade already in
// progress loses its outgoing set. An invalid sampleRate keeps the previous one.
func (b *Bank[F]) Retune(radius, depth, sampleRate float64) {
	if validRate(sampleRate) {
		b.sampleRate = sampleRate
	}

	next := 1 - b.current
	b.catalog = mathutil.CylinderModes(b.catalog, radius, depth)
	for i, f := range b.catalog {
		b.freqs[next][i] = f
		m := &b.sets[next][i]
		m.SetCoefficients(filter.DesignBandPass(f, DefaultQ, b.sampleRate))
		m.Reset()
	}

	b.current = next
	b.tuned = true
	b.counter = 0
	b.crossfading = true
}

// Process runs one input sample through the bank.
func (b *Bank[F]) Process(input F) F {
	cur := &b.sets[b.current]
	for i := range cur {
		b.newOut[i] = cur[i].Process(input)
	}
	y := b.ops.Sum(b.newOut[:])

	if !b.crossfading {
		return y
	}

	old := &b.sets[1-b.current]
	for i := range old {
		b.oldOut[i] = old[i].Process(input)
	}
	outgoing := b.ops.Sum(b.oldOut[:])

	alpha := F(b.counter) / F(CrossfadeLength)
	y = (1-alpha)*outgoing + alpha*y

	b.counter++
	if b.counter >= CrossfadeLength {
		b.crossfading = false
	}
	return y
}

// Modes returns the centre frequencies of the current set in zero-major,
// axial-minor order, or nil before the first retune. It must not be modified.
func (b *Bank[F]) Modes() []float64 {
	if !b.tuned {
		return nil
	}
	return b.freqs[b.current][:]
}

// Crossfading reports whether an outgoing set is still being blended out.
func (b *Bank[F]) Crossfading() bool {
	return b.crossfading
}

// SampleRate returns the rate the current set was designed for.
func (b *Bank[F]) SampleRate() float64 {
	return b.sampleRate
}

// Reset clears the history of both sets and ends any crossfade.
// Tuning is kept.
func (b *Bank[F]) Reset() {
	for s := range b.sets {
		for i := range b.sets[s] {
			b.sets[s][i].Reset()
		}
	}
	b.counter = 0
	b.crossfading = false
}

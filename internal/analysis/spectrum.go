// Package analysis provides offline measurements of rendered signals: spectra,
// resonance peaks and decay envelopes. It is used by tests and tools, never on
// the render path.
package analysis

import (
	"math"
	"math/cmplx"
	"sort"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/floats"
)

// Spectrum holds the one-sided magnitude spectrum of a real signal.
type Spectrum struct {
	// Frequencies of each bin in Hz.
	Frequencies []float64

	// Magnitude of each bin (linear, unnormalized).
	Magnitude []float64

	// Resolution is the bin spacing in Hz.
	Resolution float64
}

// ComputeSpectrum returns the magnitude spectrum of signal sampled at sampleRate.
// The signal is Hann windowed; an empty signal yields an empty spectrum.
func ComputeSpectrum(signal []float64, sampleRate float64) Spectrum {
	n := len(signal)
	if n == 0 {
		return Spectrum{}
	}

	windowed := make([]float64, n)
	for i, v := range signal {
		windowed[i] = v * hann(i, n)
	}

	fft := fourier.NewFFT(n)
	coeffs := fft.Coefficients(nil, windowed)

	spec := Spectrum{
		Frequencies: make([]float64, len(coeffs)),
		Magnitude:   make([]float64, len(coeffs)),
		Resolution:  sampleRate / float64(n),
	}
	for i, c := range coeffs {
		spec.Frequencies[i] = fft.Freq(i) * sampleRate
		spec.Magnitude[i] = cmplx.Abs(c)
	}
	return spec
}

// PeakFrequency returns the frequency of the strongest bin within [minHz, maxHz].
// It returns 0 when no bin falls in the band.
func (s Spectrum) PeakFrequency(minHz, maxHz float64) float64 {
	lo, hi := s.band(minHz, maxHz)
	if lo >= hi {
		return 0
	}
	idx := floats.MaxIdx(s.Magnitude[lo:hi]) + lo
	return s.interpolatePeak(idx)
}

// Peaks returns up to count local-maximum frequencies ordered by descending magnitude.
func (s Spectrum) Peaks(count int) []float64 {
	type peak struct {
		bin int
		mag float64
	}
	var found []peak
	for i := 1; i+1 < len(s.Magnitude); i++ {
		m := s.Magnitude[i]
		if m > s.Magnitude[i-1] && m >= s.Magnitude[i+1] {
			found = append(found, peak{bin: i, mag: m})
		}
	}
	sort.Slice(found, func(a, b int) bool { return found[a].mag > found[b].mag })

	if count > len(found) {
		count = len(found)
	}
	out := make([]float64, count)
	for i := range count {
		out[i] = s.interpolatePeak(found[i].bin)
	}
	return out
}

func (s Spectrum) band(minHz, maxHz float64) (lo, hi int) {
	if s.Resolution <= 0 {
		return 0, 0
	}
	lo = max(int(math.Ceil(minHz/s.Resolution)), 0)
	hi = min(int(math.Floor(maxHz/s.Resolution))+1, len(s.Magnitude))
	return lo, hi
}

// interpolatePeak refines a bin index with parabolic interpolation on log magnitude.
func (s Spectrum) interpolatePeak(idx int) float64 {
	if idx <= 0 || idx >= len(s.Magnitude)-1 {
		return s.Frequencies[idx]
	}
	a := math.Log(s.Magnitude[idx-1] + tinyMagnitude)
	b := math.Log(s.Magnitude[idx] + tinyMagnitude)
	c := math.Log(s.Magnitude[idx+1] + tinyMagnitude)
	den := a - 2*b + c
	if den == 0 {
		return s.Frequencies[idx]
	}
	offset := 0.5 * (a - c) / den
	return (float64(idx) + offset) * s.Resolution
}

const tinyMagnitude = 1e-300

func hann(i, n int) float64 {
	if n <= 1 {
		return 1
	}
	return 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(n-1))
}

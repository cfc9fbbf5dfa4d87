package filter

import (
	"math"
)

// Response holds the frequency response of a biquad section.
type Response struct {
	// Frequencies at which response was calculated (Hz)
	Frequencies []float64

	// Magnitude response at each frequency (linear scale)
	Magnitude []float64
}

// MagnitudeAt evaluates |H(e^jω)| of c at freq Hz.
func (c Coefficients) MagnitudeAt(freq, sampleRate float64) float64 {
	omega := 2 * math.Pi * freq / sampleRate

	// z^-1 = e^(-jω), z^-2 = e^(-2jω)
	c1, s1 := math.Cos(omega), math.Sin(omega)
	c2, s2 := math.Cos(2*omega), math.Sin(2*omega)

	numRe := c.B0 + c.B1*c1 + c.B2*c2
	numIm := -(c.B1*s1 + c.B2*s2)
	denRe := 1 + c.A1*c1 + c.A2*c2
	denIm := -(c.A1*s1 + c.A2*s2)

	den := math.Hypot(denRe, denIm)
	if den == 0 {
		return math.Inf(1)
	}
	return math.Hypot(numRe, numIm) / den
}

// ComputeFrequencyResponse evaluates c at numPoints frequencies from 0 to Nyquist.
func ComputeFrequencyResponse(c Coefficients, sampleRate float64, numPoints int) Response {
	if numPoints <= 0 {
		numPoints = 512
	}

	response := Response{
		Frequencies: make([]float64, numPoints),
		Magnitude:   make([]float64, numPoints),
	}
	nyquist := sampleRate / 2
	for k := range numPoints {
		freq := nyquist * float64(k) / float64(numPoints)
		response.Frequencies[k] = freq
		response.Magnitude[k] = c.MagnitudeAt(freq, sampleRate)
	}
	return response
}

// Stable reports whether both poles of c lie strictly inside the unit circle.
func (c Coefficients) Stable() bool {
	// Jury criterion for z² + a1·z + a2.
	return math.Abs(c.A2) < 1 && math.Abs(c.A1) < 1+c.A2
}

// MagnitudeDB converts linear magnitude to decibels.
func MagnitudeDB(magnitude float64) float64 {
	const (
		minMagnitude = 1e-10 // Avoid log(0)
		dbMultiplier = 20.0  // 20*log10 for magnitude
	)

	if magnitude < minMagnitude {
		magnitude = minMagnitude
	}
	return dbMultiplier * math.Log10(magnitude)
}

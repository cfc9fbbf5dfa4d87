package analysis

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sine(n int, freq, sampleRate float64) []float64 {
	s := make([]float64, n)
	for i := range s {
		s[i] = math.Sin(2 * math.Pi * freq * float64(i) / sampleRate)
	}
	return s
}

func TestComputeSpectrum_SinePeak(t *testing.T) {
	const sampleRate = 44100.0
	tests := []float64{110, 440, 1000, 5000}

	for _, freq := range tests {
		spec := ComputeSpectrum(sine(8192, freq, sampleRate), sampleRate)
		require.NotEmpty(t, spec.Magnitude)

		peak := spec.PeakFrequency(20, sampleRate/2)
		assert.InDelta(t, freq, peak, spec.Resolution, "peak for %v Hz", freq)
	}
}

func TestComputeSpectrum_Empty(t *testing.T) {
	spec := ComputeSpectrum(nil, 44100)
	assert.Empty(t, spec.Magnitude)
	assert.Zero(t, spec.PeakFrequency(0, 1000))
}

func TestPeaks_TwoTones(t *testing.T) {
	const sampleRate = 44100.0
	a := sine(16384, 300, sampleRate)
	b := sine(16384, 1200, sampleRate)
	for i := range a {
		a[i] += 0.5 * b[i]
	}

	spec := ComputeSpectrum(a, sampleRate)
	peaks := spec.Peaks(2)
	require.Len(t, peaks, 2)
	assert.InDelta(t, 300, peaks[0], spec.Resolution)
	assert.InDelta(t, 1200, peaks[1], spec.Resolution)
}

func TestRMSAndPeak(t *testing.T) {
	s := sine(44100, 100, 44100)
	assert.InDelta(t, 1/math.Sqrt2, RMS(s), 1e-3)
	assert.InDelta(t, 1.0, Peak(s), 1e-3)

	assert.InDelta(t, 3.0, Peak([]float64{1, -3, 2}), 1e-15)
	assert.Zero(t, RMS(nil))
}

func TestEnvelope(t *testing.T) {
	s := make([]float64, 10)
	for i := range s {
		s[i] = 1
	}
	env := Envelope(s, 3)
	assert.Len(t, env, 3)
	for _, v := range env {
		assert.InDelta(t, 1.0, v, 1e-15)
	}
	assert.Nil(t, Envelope(s, 0))
}

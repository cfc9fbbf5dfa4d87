package main

import (
	"fmt"
	"slices"

	"github.com/tphakala/go-drum-synth/internal/analysis"
	"github.com/tphakala/go-drum-synth/internal/mathutil"
	"github.com/tphakala/go-drum-synth/internal/membrane"
	"github.com/tphakala/go-drum-synth/internal/resonator"
)

const (
	// nyquistFraction matches the band-pass design limit.
	nyquistFraction = 0.49

	// minSeparationBins is the spacing below which two modes are not
	// resolved separately.
	minSeparationBins = 4

	membranePartialCount = 5
)

// modeReport compares one catalog frequency with the measured spectrum peak.
type modeReport struct {
	expected float64
	measured float64
	resolved bool
}

// measureModes tunes a bank, records its impulse response and locates the
// spectral peak nearest each mode.
func measureModes(radius, depth, sampleRate float64) ([]modeReport, error) {
	bank, err := resonator.New[float64](sampleRate)
	if err != nil {
		return nil, err
	}
	bank.Retune(radius, depth, sampleRate)
	for range resonator.CrossfadeLength {
		bank.Process(0)
	}

	// The impulse sits a quarter in so the Hann window does not bury it.
	response := make([]float64, analysisLength)
	for i := range response {
		var x float64
		if i == analysisLength/4 {
			x = 1
		}
		response[i] = bank.Process(x)
	}
	spectrum := analysis.ComputeSpectrum(response, sampleRate)

	modes := slices.Clone(bank.Modes())
	sorted := slices.Clone(modes)
	slices.Sort(sorted)
	limit := sampleRate * nyquistFraction

	reports := make([]modeReport, len(modes))
	for i, f := range modes {
		reports[i].expected = f
		if f >= limit {
			continue
		}
		pos, _ := slices.BinarySearch(sorted, f)
		lo, hi := 0.0, limit
		if pos > 0 {
			lo = (sorted[pos-1] + f) / 2
		}
		if pos+1 < len(sorted) {
			hi = (sorted[pos+1] + f) / 2
		}
		if 2*(f-lo) < minSeparationBins*spectrum.Resolution || 2*(hi-f) < minSeparationBins*spectrum.Resolution {
			continue
		}
		reports[i].measured = spectrum.PeakFrequency(lo, hi)
		reports[i].resolved = true
	}
	return reports, nil
}

// membranePartials strikes the centre of a membrane of the given size and
// returns its strongest spectral peaks in descending magnitude.
func membranePartials(size, sampleRate float64, grid int) ([]float64, error) {
	cfg := membrane.DefaultConfig(grid)
	cfg.PhysicalSize = mathutil.Clamp(size, membrane.MinPhysicalSize, membrane.MaxPhysicalSize)
	sim, err := membrane.New[float64](cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create membrane: %w", err)
	}
	defer sim.Close()

	sim.ExciteAtCenter(1)
	out := make([]float64, analysisLength)
	dt := 1 / sampleRate
	for i := range out {
		out[i] = sim.ProcessSample(dt)
	}
	return analysis.ComputeSpectrum(out, sampleRate).Peaks(membranePartialCount), nil
}

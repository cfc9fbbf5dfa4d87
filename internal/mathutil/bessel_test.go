package mathutil

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tphakala/go-drum-synth/internal/testutil"
)

// TestBesselZeros_AreRoots verifies each catalog entry is a zero of its Bessel order.
func TestBesselZeros_AreRoots(t *testing.T) {
	for i, zero := range BesselZeros {
		order := BesselZeroOrders[i][0]
		value := math.Jn(order, zero)
		assert.InDelta(t, 0.0, value, 2e-3,
			"J%d(%v) = %v, expected a root", order, zero, value)
	}
}

// TestBesselZeros_Ascending tests the catalog is sorted.
func TestBesselZeros_Ascending(t *testing.T) {
	s := BesselZeros[:]
	testutil.AssertMonotonic(t, s)
}

func TestCylinderModeFrequency(t *testing.T) {
	tests := []struct {
		name     string
		zero     float64
		axial    int
		radius   float64
		depth    float64
		expected float64
	}{
		{"Fundamental unit cavity", 2.405, 0, 1.0, 1.0, 343.0 / (2 * math.Pi) * 2.405},
		{"Axial only contribution", 0, 1, 1.0, 1.0, 343.0 / 2.0},
		{"Half radius doubles radial term", 2.405, 0, 0.5, 1.0, 343.0 / (2 * math.Pi) * 4.81},
		{"Combined", 3.832, 2, 1.0, 2.0, 343.0 / (2 * math.Pi) * math.Hypot(3.832, math.Pi)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CylinderModeFrequency(tt.zero, tt.axial, tt.radius, tt.depth)
			testutil.AssertRelativeError(t, tt.expected, got, 1e-12)
		})
	}
}

// TestCylinderModeFrequency_Degenerate tests non-physical dimensions stay finite.
func TestCylinderModeFrequency_Degenerate(t *testing.T) {
	for _, dims := range [][2]float64{{0, 1}, {1, 0}, {-1, -1}} {
		f := CylinderModeFrequency(2.405, 1, dims[0], dims[1])
		assert.False(t, math.IsNaN(f) || math.IsInf(f, 0), "radius=%v depth=%v gave %v", dims[0], dims[1], f)
		assert.Positive(t, f)
	}
}

func TestCylinderModes_CountAndOrder(t *testing.T) {
	dst := make([]float64, 0, ModeCount)
	modes := CylinderModes(dst, 1.0, 1.0)
	require.Len(t, modes, len(BesselZeros)*AxialModes)
	assert.Equal(t, 15, ModeCount)

	for i, zero := range BesselZeros {
		for n := range AxialModes {
			assert.Equal(t, CylinderModeFrequency(zero, n, 1.0, 1.0), modes[i*AxialModes+n],
				"mode (%d,%d) out of order", i, n)
		}
	}
}

func TestCylinderModes_NoAllocation(t *testing.T) {
	dst := make([]float64, 0, ModeCount)
	allocs := testing.AllocsPerRun(100, func() {
		dst = CylinderModes(dst, 2.0, 3.0)
	})
	assert.Zero(t, allocs)
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 0.01, Clamp(-3.0, 0.01, 1.0))
	assert.Equal(t, 1.0, Clamp(7.0, 0.01, 1.0))
	assert.Equal(t, 0.5, Clamp(0.5, 0.01, 1.0))
	assert.Equal(t, 3, Clamp(9, 0, 3))
}

func TestSmooth(t *testing.T) {
	assert.InDelta(t, 0.5, Smooth(0, 1, 0.5), 1e-15)

	// Repeated smoothing converges on the target.
	v := 0.0
	for range 5000 {
		v = Smooth(v, 2.0, 0.005)
	}
	assert.InDelta(t, 2.0, v, 1e-9)
}

// BenchmarkCylinderModes benchmarks a full catalog rebuild.
func BenchmarkCylinderModes(b *testing.B) {
	dst := make([]float64, 0, ModeCount)
	for b.Loop() {
		dst = CylinderModes(dst, 1.5, 2.5)
	}
}

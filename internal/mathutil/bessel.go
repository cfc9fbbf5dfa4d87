// Package mathutil provides the closed-form acoustics and small numeric helpers
// shared by the membrane and resonator engines.
package mathutil

import (
	"math"
)

// BesselZeros is the fixed catalog of radial mode constants used for the
// cavity. The order is part of the mode ordering contract of the bank.
var BesselZeros = [...]float64{
	besselZero01,
	besselZero11,
	besselZero02,
	besselZero12,
	besselZero22,
}

// BesselZeroOrders records the Bessel order m and zero index k of each entry
// in [BesselZeros]. It is only used for verification and reporting.
var BesselZeroOrders = [len(BesselZeros)][2]int{
	{0, 1},
	{1, 1},
	{0, 2},
	{1, 2},
	{2, 2},
}

// ModeCount is the number of modes produced by [CylinderModes].
const ModeCount = len(BesselZeros) * AxialModes

// CylinderModeFrequency returns the resonant frequency in Hz of the
// cylindrical cavity mode with radial constant zero and axial index n:
//
//	f = (c / 2π) · sqrt((zero/radius)² + (n·π/depth)²)
//
// Non-positive dimensions are raised to a small floor so the result stays
// finite.
func CylinderModeFrequency(zero float64, axial int, radius, depth float64) float64 {
	radius = math.Max(radius, minDimension)
	depth = math.Max(depth, minDimension)

	radial := zero / radius
	longitudinal := float64(axial) * math.Pi / depth
	return (SpeedOfSound / twoPi) * math.Sqrt(radial*radial+longitudinal*longitudinal)
}

// CylinderModes fills dst with the [ModeCount] modal frequencies of a cavity
// in zero-major, axial-minor order and returns the filled prefix.
// dst must have capacity for ModeCount entries; no allocation happens when it does.
func CylinderModes(dst []float64, radius, depth float64) []float64 {
	dst = dst[:0]
	for _, zero := range BesselZeros {
		for n := range AxialModes {
			dst = append(dst, CylinderModeFrequency(zero, n, radius, depth))
		}
	}
	return dst
}

package mathutil

// Cylindrical cavity constants.
const (
	// SpeedOfSound is the speed of sound in air at room temperature (m/s).
	SpeedOfSound = 343.0

	// AxialModes is the number of axial indices (n = 0, 1, 2) crossed with
	// each radial Bessel zero.
	AxialModes = 3
)

// Bessel zero approximations, j(m,k) is the k-th positive zero of Jm.
// Three-decimal values from Abramowitz & Stegun, Table 9.5.
const (
	besselZero01 = 2.405
	besselZero11 = 3.832
	besselZero02 = 5.520
	besselZero12 = 7.016
	besselZero22 = 8.417
)

// Domain guards.
const (
	// minDimension keeps the modal formula finite for degenerate geometry.
	minDimension = 1e-3

	twoPi = 2.0 * 3.141592653589793
)

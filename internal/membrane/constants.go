package membrane

// Update scheduling.
const (
	// UpdateInterval is the number of ProcessSample calls per leap-frog update.
	UpdateInterval = 10

	// smoothingFactor is the per-update fraction by which spatial step and
	// wave speed approach their targets.
	smoothingFactor = 0.005

	// maxCourant is the clamp on (c·dt/dx)²; 2-D FDTD is stable below 0.5.
	maxCourant = 0.49
)

// Grid limits.
const (
	// MinResolution is the smallest supported grid edge.
	MinResolution = 8

	// MaxResolution bounds the grid allocation.
	MaxResolution = 2048
)

// Excitation shape.
const (
	// previousKickRatio scales the previous-buffer value of an excited cell,
	// giving the strike an initial velocity.
	previousKickRatio = 0.5

	// strikeOffsetCenter and strikeOffsetScale map normalized strike distance
	// from the centre into a tension offset: (d - 0.5) * 0.5.
	strikeOffsetCenter = 0.5
	strikeOffsetScale  = 0.5
)

// Physical defaults and tension mapping.
const (
	DefaultPhysicalSize = 1.0   // metres
	DefaultWaveSpeed    = 100.0 // m/s
	DefaultDamping      = 0.996

	// Wave speed target = nominalWaveSpeed + tension*waveSpeedSpan - waveSpeedSpan/2.
	nominalWaveSpeed = 100.0
	waveSpeedSpan    = 50.0

	// Damping = DefaultDamping + (tension - 0.5) * 2 * dampingSpread.
	dampingSpread = 0.0035
	tensionCenter = 0.5
)

// Parameter validity ranges.
const (
	MinTension = 0.01
	MaxTension = 1.0

	MinPhysicalSize = 0.75
	MaxPhysicalSize = 10.0

	MinRandomness = 0.0
	MaxRandomness = 50.0
)

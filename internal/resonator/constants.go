package resonator

import "github.com/tphakala/go-drum-synth/internal/mathutil"

const (
	// ModeCount is the number of band-pass sections in each mode set.
	ModeCount = mathutil.ModeCount

	// DefaultQ is the quality factor of every mode.
	DefaultQ = 10.0

	// CrossfadeLength is the number of samples over which a retune blends
	// the outgoing set into the new one.
	CrossfadeLength = 1024
)

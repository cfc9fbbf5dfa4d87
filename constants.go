package drum

// Common sample rates.
const (
	// RateCD is the CD quality sample rate (Red Book standard).
	RateCD = 44100

	// RateDAT is the DAT/DVD sample rate.
	RateDAT = 48000

	// RateHiRes96 is the high-resolution 2x DAT sample rate.
	RateHiRes96 = 96000
)

// Channel constants
const (
	monoChannels   = 1
	stereoChannels = 2  // Stereo channel count (used by the interleave fast path)
	maxChannels    = 32 // Maximum supported channel count
)

// Sample rate limits
const (
	minSampleRate = 8000
	maxSampleRate = 384000
)

// Grid defaults
const (
	// defaultResolution is the grid edge of the reference drum head.
	defaultResolution = 256

	// maxDefaultWorkers caps the sweep goroutines chosen by DefaultConfig.
	maxDefaultWorkers = 4

	maxWorkers = 64
)

// Buffer constants
const (
	defaultMaxBlockSize = 1024
	maxBlockSizeLimit   = 1 << 16

	defaultEventCapacity = 64
	maxEventCapacity     = 1 << 16
)

// Excitation constants
const (
	// noteOnScale maps MIDI velocity 127 to this strike amplitude.
	noteOnScale = 0.9
	maxVelocity = 127
)

// Output constants
const (
	defaultOutputGain = 1.0
	maxOutputGain     = 16.0
)

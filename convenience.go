package drum

// NewMono creates a single-channel synthesizer at sampleRate with the
// reference drum head.
func NewMono[F Float](sampleRate float64) (*Synth[F], error) {
	config := DefaultConfig()
	config.SampleRate = sampleRate
	config.Channels = monoChannels
	return New[F](config)
}

// NewStereo creates a two-channel synthesizer at sampleRate with the
// reference drum head.
func NewStereo[F Float](sampleRate float64) (*Synth[F], error) {
	config := DefaultConfig()
	config.SampleRate = sampleRate
	config.Channels = stereoChannels
	return New[F](config)
}

// NewLightweight creates a mono synthesizer on a coarse grid with the sweep
// on the render goroutine. It trades timbre detail for a small, fixed CPU cost.
func NewLightweight[F Float](sampleRate float64, resolution int) (*Synth[F], error) {
	config := DefaultConfig()
	config.SampleRate = sampleRate
	config.Channels = monoChannels
	config.Resolution = resolution
	config.Workers = 0
	return New[F](config)
}

// NewSimple creates a stereo float32 synthesizer at CD rate.
func NewSimple() (*Synth[float32], error) {
	return NewStereo[float32](RateCD)
}

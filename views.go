package drum

// Display views. They expose render-goroutine state without copying or
// locking; a concurrent reader may see a frame mid-update.

// Field returns the live membrane displacement, N×N row-major.
// It must not be modified.
func (s *Synth[F]) Field() []F {
	return s.membrane.Field()
}

// SnapshotField copies the membrane displacement into dst and returns the
// number of cells copied.
func (s *Synth[F]) SnapshotField(dst []F) int {
	return s.membrane.Snapshot(dst)
}

// Mask returns the inside mask, 1 for cells of the drum head.
// It must not be modified.
func (s *Synth[F]) Mask() []uint8 {
	return s.membrane.Mask()
}

// Resolution returns the membrane grid edge N.
func (s *Synth[F]) Resolution() int {
	return s.membrane.Resolution()
}

// MeasureIndex returns the flat index of the cell the output is read from.
func (s *Synth[F]) MeasureIndex() int {
	return s.membrane.MeasureIndex()
}

// ResonatorModes copies the current mode frequencies into dst[:0] and
// returns it.
func (s *Synth[F]) ResonatorModes(dst []float64) []float64 {
	return append(dst[:0], s.bank.Modes()...)
}

// Crossfading reports whether the resonator is blending between tunings.
func (s *Synth[F]) Crossfading() bool {
	return s.bank.Crossfading()
}

// MembraneState reports the membrane's smoothed physical values.
type MembraneState struct {
	WaveSpeed   float64 // m/s
	SpatialStep float64 // metres per cell
	Damping     float64 // per update
	Courant     float64 // (c·dt/dx)² of the last update
	Updates     uint64
}

// Membrane returns the current membrane state.
func (s *Synth[F]) Membrane() MembraneState {
	return MembraneState{
		WaveSpeed:   s.membrane.WaveSpeed(),
		SpatialStep: s.membrane.SpatialStep(),
		Damping:     s.membrane.Damping(),
		Courant:     s.membrane.Courant(),
		Updates:     s.membrane.Ticks(),
	}
}

// Package membrane simulates a clamped circular drum head by integrating the
// 2-D wave equation with a leap-frog finite-difference scheme on a square grid.
package membrane

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/tphakala/go-drum-synth/internal/mathutil"
	"github.com/tphakala/go-drum-synth/internal/simdops"
)

// ErrInvalidResolution indicates a grid edge outside [MinResolution, MaxResolution].
var ErrInvalidResolution = errors.New("invalid membrane resolution")

// ErrInvalidPhysics indicates a non-positive size, wave speed or damping.
var ErrInvalidPhysics = errors.New("invalid membrane physics")

// Config holds the construction parameters of a Simulator.
type Config struct {
	// Resolution is the grid edge N; the grid has N×N cells.
	Resolution int

	// PhysicalSize is the membrane diameter in metres.
	PhysicalSize float64

	// WaveSpeed is the initial transverse wave speed in m/s.
	WaveSpeed float64

	// Damping is the initial per-update attenuation in (0, 1].
	Damping float64

	// Tension is the nominal normalized tension used to derive the wave speed
	// target after a strike. SetTension also updates it.
	Tension float64

	// Randomness is the centre-strike jitter amplitude in grid cells.
	Randomness float64

	// Workers is the number of goroutines sharing the cell sweep.
	// Values below 2 run the sweep on the calling goroutine.
	Workers int

	// Seed initializes the jitter source.
	Seed uint64
}

// DefaultConfig returns the nominal drum head for the given resolution.
func DefaultConfig(resolution int) Config {
	return Config{
		Resolution:   resolution,
		PhysicalSize: DefaultPhysicalSize,
		WaveSpeed:    DefaultWaveSpeed,
		Damping:      DefaultDamping,
		Tension:      tensionCenter,
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Resolution < MinResolution || c.Resolution > MaxResolution {
		return fmt.Errorf("%w: %d (must be %d-%d)", ErrInvalidResolution, c.Resolution, MinResolution, MaxResolution)
	}
	if !(c.PhysicalSize > 0) || math.IsInf(c.PhysicalSize, 0) {
		return fmt.Errorf("%w: physical size must be positive", ErrInvalidPhysics)
	}
	if !(c.WaveSpeed > 0) || math.IsInf(c.WaveSpeed, 0) {
		return fmt.Errorf("%w: wave speed must be positive", ErrInvalidPhysics)
	}
	if !(c.Damping > 0) || c.Damping > 1 {
		return fmt.Errorf("%w: damping must be in (0, 1]", ErrInvalidPhysics)
	}
	return nil
}

// Simulator integrates the membrane and reports the displacement at a
// measurement cell once per audio sample.
//
// All methods except the read-only views must be called from the render
// goroutine. The views may be read concurrently for display; readers see a
// best-effort, possibly torn, frame.
type Simulator[F simdops.Float] struct {
	n int

	// buffers holds the three leap-frog levels. buffers[current] is the
	// current field, previous is (current+2)%3 and next is (current+1)%3.
	buffers [3][]F
	current int

	mask   []uint8
	active []int32

	center  int
	measure int

	spatialStep       float64
	targetSpatialStep float64
	waveSpeed         float64
	targetWaveSpeed   float64
	damping           float64
	courant           float64

	tension    float64
	randomness float64

	counter int
	ticks   uint64

	rng  *rand.Rand
	pool *sweepPool[F]
}

// New creates a new simulator. Grid buffers, mask, active index list and
// sweep partitions are allocated here and never resized.
func New[F simdops.Float](config Config) (*Simulator[F], error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	n := config.Resolution
	mask, active := buildMask(n)

	s := &Simulator[F]{
		n:          n,
		mask:       mask,
		active:     active,
		center:     (n/2)*n + n/2,
		waveSpeed:  config.WaveSpeed,
		damping:    config.Damping,
		tension:    mathutil.Clamp(config.Tension, MinTension, MaxTension),
		randomness: mathutil.Clamp(config.Randomness, MinRandomness, MaxRandomness),
		rng:        rand.New(rand.NewPCG(config.Seed, config.Seed^pcgStream)),
	}
	for i := range s.buffers {
		s.buffers[i] = make([]F, n*n)
	}
	s.measure = s.center
	s.spatialStep = config.PhysicalSize / float64(n)
	s.targetSpatialStep = s.spatialStep
	s.targetWaveSpeed = s.waveSpeed

	if config.Workers > 1 {
		s.pool = newSweepPool[F](active, n, config.Workers)
	}

	return s, nil
}

// pcgStream decorrelates the two PCG words derived from one seed.
const pcgStream = 0x9e3779b97f4a7c15

// Close stops the sweep workers. The simulator keeps working sequentially.
func (s *Simulator[F]) Close() {
	if s.pool != nil {
		s.pool.close()
		s.pool = nil
	}
}

// Excite strikes cell (x, y): the current value becomes amplitude and the
// previous value amplitude/2, which imparts an initial velocity. The cell
// becomes the measurement point and the wave speed target follows the strike
// position. Border cells, cells outside the circle, out-of-range coordinates
// and non-finite amplitudes are ignored.
func (s *Simulator[F]) Excite(amplitude F, x, y int) {
	if !s.Inside(x, y) {
		return
	}
	a := float64(amplitude)
	if math.IsNaN(a) || math.IsInf(a, 0) {
		return
	}

	idx := y*s.n + x
	s.buffers[s.current][idx] = amplitude
	s.buffers[s.previousIndex()][idx] = amplitude * previousKickRatio
	s.measure = idx

	s.retargetFromStrike(x, y)
}

// ExciteAtCenter strikes near the grid centre with a uniform jitter of up to
// ±randomness cells on each axis.
func (s *Simulator[F]) ExciteAtCenter(amplitude F) {
	ox, oy := 0, 0
	if s.randomness > 0 {
		ox = int((s.rng.Float64()*2 - 1) * s.randomness)
		oy = int((s.rng.Float64()*2 - 1) * s.randomness)
	}
	half := s.n / 2
	s.Excite(amplitude, half+ox, half+oy)
}

// retargetFromStrike offsets the tension by the normalized strike distance
// from the centre: off-centre hits sound tighter.
func (s *Simulator[F]) retargetFromStrike(x, y int) {
	half := s.n / 2
	dx := float64(x - half)
	dy := float64(y - half)
	normalized := math.Hypot(dx, dy) / (float64(s.n) / 2)
	offset := (normalized - strikeOffsetCenter) * strikeOffsetScale

	t := mathutil.Clamp(s.tension+offset, MinTension, MaxTension)
	s.targetWaveSpeed = waveSpeedForTension(t)
}

// ProcessSample advances the simulation by one audio sample and returns the
// displacement at the measurement cell. The grid is updated on every
// UpdateInterval-th call only; the calls in between return the held value.
func (s *Simulator[F]) ProcessSample(timeStep float64) F {
	s.counter++
	if s.counter < UpdateInterval {
		return s.buffers[s.current][s.measure]
	}
	s.counter = 0
	s.update(timeStep)
	return s.buffers[s.current][s.measure]
}

// update runs one leap-frog step over every inside cell and rotates roles.
func (s *Simulator[F]) update(timeStep float64) {
	s.spatialStep = mathutil.Smooth(s.spatialStep, s.targetSpatialStep, smoothingFactor)
	s.waveSpeed = mathutil.Smooth(s.waveSpeed, s.targetWaveSpeed, smoothingFactor)

	ratio := s.waveSpeed * timeStep / s.spatialStep
	c2 := ratio * ratio
	if !(c2 >= 0) {
		c2 = 0
	} else if c2 > maxCourant {
		c2 = maxCourant
	}
	s.courant = c2

	next := s.buffers[s.nextIndex()]
	cur := s.buffers[s.current]
	prev := s.buffers[s.previousIndex()]

	if s.pool != nil {
		s.pool.run(next, cur, prev, F(c2), F(s.damping))
	} else {
		sweepCells(next, cur, prev, s.active, s.n, F(c2), F(s.damping))
	}

	// previous <- current, current <- next, next <- old previous.
	s.current = s.nextIndex()
	s.ticks++
}

// sweepCells applies the damped leap-frog update to the listed cells:
//
//	next = damping · (2u − prev + c2 · ∇²u)
//
// with the 4-neighbour Laplacian. Listed cells are never on the border.
func sweepCells[F simdops.Float](next, cur, prev []F, indices []int32, stride int, c2, damping F) {
	for _, i32 := range indices {
		i := int(i32)
		u := cur[i]
		laplacian := cur[i-stride] + cur[i+stride] + cur[i-1] + cur[i+1] - 4*u
		next[i] = damping * (2*u - prev[i] + c2*laplacian)
	}
}

func (s *Simulator[F]) nextIndex() int     { return (s.current + 1) % 3 }
func (s *Simulator[F]) previousIndex() int { return (s.current + 2) % 3 }

// SetSizeTarget sets the membrane diameter the spatial step glides toward.
func (s *Simulator[F]) SetSizeTarget(size float64) {
	if math.IsNaN(size) {
		return
	}
	size = mathutil.Clamp(size, MinPhysicalSize, MaxPhysicalSize)
	s.targetSpatialStep = size / float64(s.n)
}

// SetTension retunes the wave speed target and the damping from a
// normalized tension, clamped to [MinTension, MaxTension].
func (s *Simulator[F]) SetTension(tension float64) {
	if math.IsNaN(tension) {
		return
	}
	t := mathutil.Clamp(tension, MinTension, MaxTension)
	s.tension = t
	s.targetWaveSpeed = waveSpeedForTension(t)
	s.damping = DefaultDamping + (t-tensionCenter)*2*dampingSpread
}

// SetRandomness sets the centre-strike jitter in grid cells.
func (s *Simulator[F]) SetRandomness(cells float64) {
	if math.IsNaN(cells) {
		return
	}
	s.randomness = mathutil.Clamp(cells, MinRandomness, MaxRandomness)
}

func waveSpeedForTension(t float64) float64 {
	return nominalWaveSpeed + t*waveSpeedSpan - waveSpeedSpan/2
}

// Reset silences the membrane and restarts the update counter.
func (s *Simulator[F]) Reset() {
	for _, b := range s.buffers {
		clear(b)
	}
	s.counter = 0
	s.measure = s.center
}

// Inside reports whether (x, y) is a strikeable cell.
func (s *Simulator[F]) Inside(x, y int) bool {
	if x <= 0 || x >= s.n-1 || y <= 0 || y >= s.n-1 {
		return false
	}
	return s.mask[y*s.n+x] != 0
}

// Field returns the current displacement buffer. It must not be modified.
func (s *Simulator[F]) Field() []F {
	return s.buffers[s.current]
}

// Snapshot copies the current field into dst and returns the number of cells copied.
func (s *Simulator[F]) Snapshot(dst []F) int {
	return copy(dst, s.buffers[s.current])
}

// Mask returns the inside mask, 1 for simulated cells. It must not be modified.
func (s *Simulator[F]) Mask() []uint8 {
	return s.mask
}

// ActiveCells returns the number of simulated cells.
func (s *Simulator[F]) ActiveCells() int {
	return len(s.active)
}

// Resolution returns the grid edge N.
func (s *Simulator[F]) Resolution() int {
	return s.n
}

// MeasureIndex returns the flat index of the measurement cell.
func (s *Simulator[F]) MeasureIndex() int {
	return s.measure
}

// WaveSpeed returns the current (smoothed) wave speed.
func (s *Simulator[F]) WaveSpeed() float64 {
	return s.waveSpeed
}

// TargetWaveSpeed returns the wave speed the simulation is gliding toward.
func (s *Simulator[F]) TargetWaveSpeed() float64 {
	return s.targetWaveSpeed
}

// SpatialStep returns the current (smoothed) grid spacing in metres.
func (s *Simulator[F]) SpatialStep() float64 {
	return s.spatialStep
}

// TargetSpatialStep returns the grid spacing the simulation is gliding toward.
func (s *Simulator[F]) TargetSpatialStep() float64 {
	return s.targetSpatialStep
}

// Damping returns the per-update attenuation.
func (s *Simulator[F]) Damping() float64 {
	return s.damping
}

// Courant returns the clamped (c·dt/dx)² used by the last update.
func (s *Simulator[F]) Courant() float64 {
	return s.courant
}

// Ticks returns the number of grid updates performed.
func (s *Simulator[F]) Ticks() uint64 {
	return s.ticks
}

// Parallel reports whether the sweep is shared between worker goroutines.
func (s *Simulator[F]) Parallel() bool {
	return s.pool != nil
}

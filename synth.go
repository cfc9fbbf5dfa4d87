package drum

import (
	"errors"
	"fmt"
	"math"
	"runtime"
	"sync/atomic"

	"github.com/tphakala/go-drum-synth/internal/membrane"
	"github.com/tphakala/go-drum-synth/internal/queue"
	"github.com/tphakala/go-drum-synth/internal/resonator"
	"github.com/tphakala/go-drum-synth/internal/simdops"
)

// Float is the sample type constraint.
type Float interface {
	float32 | float64
}

// Config holds synthesizer configuration.
type Config struct {
	// SampleRate is the output sample rate in Hz.
	SampleRate float64

	// Channels is the number of output channels. The drum is mono; every
	// channel receives the same signal.
	Channels int

	// Resolution is the membrane grid edge N. Cost per update grows with N².
	Resolution int

	// Workers is the number of goroutines sharing each membrane update.
	// 0 or 1 runs the sweep on the render goroutine.
	Workers int

	// MaxBlockSize is the largest number of frames rendered in one pass.
	// Longer host blocks are processed in chunks of this size.
	MaxBlockSize int

	// EventCapacity is the number of strikes that can be queued between
	// two render blocks. Further strikes are dropped.
	EventCapacity int

	// OutputGain scales the output.
	OutputGain float64

	// Seed initializes the strike position jitter.
	Seed uint64

	// Initial parameter values. See [ParamRange] for accepted ranges.
	MembraneSize float64
	Tension      float64
	Depth        float64
	Randomness   float64
}

// Common errors returned by the synthesizer.
var (
	// ErrInvalidConfig indicates invalid configuration parameters.
	ErrInvalidConfig = errors.New("invalid synthesizer configuration")

	// ErrUnknownParameter indicates a parameter identifier that does not exist.
	ErrUnknownParameter = errors.New("unknown parameter")

	// ErrInvalidValue indicates a non-finite parameter value.
	ErrInvalidValue = errors.New("invalid parameter value")
)

// DefaultConfig returns a stereo 44.1 kHz configuration with the reference
// 256×256 drum head and default parameters.
func DefaultConfig() *Config {
	return &Config{
		SampleRate:    RateCD,
		Channels:      stereoChannels,
		Resolution:    defaultResolution,
		Workers:       min(runtime.NumCPU(), maxDefaultWorkers),
		MaxBlockSize:  defaultMaxBlockSize,
		EventCapacity: defaultEventCapacity,
		OutputGain:    defaultOutputGain,
		MembraneSize:  paramRanges[ParamMembraneSize].Default,
		Tension:       paramRanges[ParamTension].Default,
		Depth:         paramRanges[ParamDepth].Default,
		Randomness:    paramRanges[ParamRandomness].Default,
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if !(c.SampleRate >= minSampleRate && c.SampleRate <= maxSampleRate) {
		return fmt.Errorf("%w: sample rate must be %d-%d Hz", ErrInvalidConfig, minSampleRate, maxSampleRate)
	}

	if c.Channels < monoChannels {
		return fmt.Errorf("%w: channels must be at least 1", ErrInvalidConfig)
	}

	if c.Channels > maxChannels {
		return fmt.Errorf("%w: too many channels (max %d)", ErrInvalidConfig, maxChannels)
	}

	if c.Resolution < membrane.MinResolution || c.Resolution > membrane.MaxResolution {
		return fmt.Errorf("%w: resolution must be %d-%d", ErrInvalidConfig, membrane.MinResolution, membrane.MaxResolution)
	}

	if c.Workers < 0 || c.Workers > maxWorkers {
		return fmt.Errorf("%w: workers must be 0-%d", ErrInvalidConfig, maxWorkers)
	}

	if c.MaxBlockSize < 1 || c.MaxBlockSize > maxBlockSizeLimit {
		return fmt.Errorf("%w: max block size must be 1-%d", ErrInvalidConfig, maxBlockSizeLimit)
	}

	if c.EventCapacity < 1 || c.EventCapacity > maxEventCapacity {
		return fmt.Errorf("%w: event capacity must be 1-%d", ErrInvalidConfig, maxEventCapacity)
	}

	if !(c.OutputGain >= 0 && c.OutputGain <= maxOutputGain) {
		return fmt.Errorf("%w: output gain must be 0-%v", ErrInvalidConfig, maxOutputGain)
	}

	initial := [paramCount]float64{
		ParamMembraneSize: c.MembraneSize,
		ParamTension:      c.Tension,
		ParamDepth:        c.Depth,
		ParamRandomness:   c.Randomness,
	}
	for id, v := range initial {
		r := paramRanges[id]
		if !(v >= r.Min && v <= r.Max) {
			return fmt.Errorf("%w: %s must be %v-%v", ErrInvalidConfig, ParamID(id), r.Min, r.Max)
		}
	}

	return nil
}

type eventKind uint8

const (
	eventExcite eventKind = iota
	eventExciteCenter
)

// event is one queued strike.
type event struct {
	kind      eventKind
	amplitude float64
	x, y      int
}

// Synth is a single drum voice: membrane, resonator bank, parameter
// targets and strike queue. See the package documentation for which
// methods may be called from which goroutine.
type Synth[F Float] struct {
	config Config

	membrane *membrane.Simulator[F]
	bank     *resonator.Bank[F]
	ops      *simdops.Ops[F]

	params paramStore
	events *queue.Ring[event]

	mono     []F
	timeStep float64
	gain     F

	retunes uint64
	faults  atomic.Uint64
}

// New creates a new synthesizer. All buffers are allocated here.
func New[F Float](config *Config) (*Synth[F], error) {
	if config == nil {
		return nil, fmt.Errorf("%w: config is nil", ErrInvalidConfig)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	mc := membrane.DefaultConfig(config.Resolution)
	mc.PhysicalSize = config.MembraneSize
	mc.Tension = config.Tension
	mc.Randomness = config.Randomness
	mc.Workers = config.Workers
	mc.Seed = config.Seed
	m, err := membrane.New[F](mc)
	if err != nil {
		return nil, fmt.Errorf("failed to create membrane: %w", err)
	}

	bank, err := resonator.New[F](config.SampleRate)
	if err != nil {
		m.Close()
		return nil, fmt.Errorf("failed to create resonator: %w", err)
	}

	s := &Synth[F]{
		config:   *config,
		membrane: m,
		bank:     bank,
		ops:      simdops.For[F](),
		events:   queue.NewRing[event](config.EventCapacity),
		mono:     make([]F, config.MaxBlockSize),
		timeStep: 1 / config.SampleRate,
		gain:     F(config.OutputGain),
	}

	s.params.store(ParamMembraneSize, config.MembraneSize)
	s.params.store(ParamTension, config.Tension)
	s.params.store(ParamDepth, config.Depth)
	s.params.store(ParamRandomness, config.Randomness)
	s.applyParams()

	return s, nil
}

// Close stops the membrane sweep workers.
func (s *Synth[F]) Close() {
	s.membrane.Close()
}

// Excite queues a strike of the given amplitude at grid cell (x, y).
// It reports false when the queue is full and the strike was dropped.
// Strikes on the border or outside the circle are ignored when applied.
func (s *Synth[F]) Excite(amplitude float64, x, y int) bool {
	return s.events.Push(event{kind: eventExcite, amplitude: amplitude, x: x, y: y})
}

// ExciteAtCenter queues a strike near the centre of the membrane, jittered
// by the randomness parameter.
func (s *Synth[F]) ExciteAtCenter(amplitude float64) bool {
	return s.events.Push(event{kind: eventExciteCenter, amplitude: amplitude})
}

// NoteOn queues a centre strike with amplitude 0.9·velocity/127.
// Velocities above 127 are clamped; velocity 0 is a note-off and queues nothing.
func (s *Synth[F]) NoteOn(velocity int) bool {
	if velocity <= 0 {
		return false
	}
	velocity = min(velocity, maxVelocity)
	return s.ExciteAtCenter(noteOnScale * float64(velocity) / maxVelocity)
}

// beginBlock applies pending parameter changes and strikes.
func (s *Synth[F]) beginBlock() {
	s.applyParams()
	for {
		ev, ok := s.events.Pop()
		if !ok {
			return
		}
		switch ev.kind {
		case eventExcite:
			s.membrane.Excite(F(ev.amplitude), ev.x, ev.y)
		case eventExciteCenter:
			s.membrane.ExciteAtCenter(F(ev.amplitude))
		}
	}
}

// renderMono fills dst with gain-scaled mono output.
func (s *Synth[F]) renderMono(dst []F) {
	for i := range dst {
		dst[i] = s.step()
	}
	s.ops.Scale(dst, dst, s.gain)
}

// step computes one unscaled sample. A non-finite result is replaced with
// silence and both engines are cleared so the fault does not persist.
func (s *Synth[F]) step() F {
	y := s.bank.Process(s.membrane.ProcessSample(s.timeStep))
	if v := float64(y); math.IsNaN(v) || math.IsInf(v, 0) {
		s.faults.Add(1)
		s.membrane.Reset()
		s.bank.Reset()
		return 0
	}
	return y
}

// Process renders len(out[0]) frames into every channel of out and returns
// the number of frames written. Channels shorter than the first are
// written up to their length.
func (s *Synth[F]) Process(out [][]F) int {
	if len(out) == 0 {
		return 0
	}
	frames := len(out[0])
	s.beginBlock()

	for off := 0; off < frames; off += len(s.mono) {
		n := min(len(s.mono), frames-off)
		chunk := s.mono[:n]
		s.renderMono(chunk)
		for _, ch := range out {
			if off < len(ch) {
				copy(ch[off:min(off+n, len(ch))], chunk)
			}
		}
	}
	return frames
}

// ProcessInterleaved renders len(dst)/Channels frames into dst interleaved
// for the configured channel count and returns the number of frames written.
func (s *Synth[F]) ProcessInterleaved(dst []F) int {
	channels := s.config.Channels
	frames := len(dst) / channels
	s.beginBlock()

	for off := 0; off < frames; off += len(s.mono) {
		n := min(len(s.mono), frames-off)
		chunk := s.mono[:n]
		s.renderMono(chunk)

		frame := dst[off*channels : (off+n)*channels]
		switch channels {
		case monoChannels:
			copy(frame, chunk)
		case stereoChannels:
			s.ops.Interleave2(frame, chunk, chunk)
		default:
			for i, v := range chunk {
				base := i * channels
				for c := range channels {
					frame[base+c] = v
				}
			}
		}
	}
	return frames
}

// RenderSample renders a single mono frame, applying pending changes first.
func (s *Synth[F]) RenderSample() F {
	s.beginBlock()
	return s.step() * s.gain
}

// Reset silences the membrane and the resonator history. Tuning and
// parameters are kept. Render goroutine only.
func (s *Synth[F]) Reset() {
	s.membrane.Reset()
	s.bank.Reset()
}

// Faults returns the number of samples replaced with silence because the
// engines produced a non-finite value.
func (s *Synth[F]) Faults() uint64 {
	return s.faults.Load()
}

// Dropped returns the number of strikes rejected because the queue was full.
func (s *Synth[F]) Dropped() uint64 {
	return s.events.Dropped()
}

// Retunes returns the number of resonator retunes applied. Render goroutine only.
func (s *Synth[F]) Retunes() uint64 {
	return s.retunes
}

// SampleRate returns the configured output sample rate.
func (s *Synth[F]) SampleRate() float64 {
	return s.config.SampleRate
}

// Channels returns the configured channel count.
func (s *Synth[F]) Channels() int {
	return s.config.Channels
}

package drum

import (
	"fmt"
	"math"
	"sync/atomic"

	"github.com/tphakala/go-drum-synth/internal/mathutil"
	"github.com/tphakala/go-drum-synth/internal/membrane"
)

// ParamID identifies a host-facing synthesis parameter.
type ParamID int

const (
	// ParamMembraneSize is the membrane diameter in metres. It is also the
	// radius of the resonating cavity.
	ParamMembraneSize ParamID = iota

	// ParamTension is the normalized membrane tension.
	ParamTension

	// ParamDepth is the cavity depth in metres.
	ParamDepth

	// ParamRandomness is the centre-strike jitter in grid cells.
	ParamRandomness

	paramCount
)

// Range describes the accepted values of a parameter.
type Range struct {
	Min, Max, Default float64
}

var paramNames = [paramCount]string{
	ParamMembraneSize: "membraneSize",
	ParamTension:      "membraneTension",
	ParamDepth:        "depth",
	ParamRandomness:   "randomness",
}

var paramRanges = [paramCount]Range{
	ParamMembraneSize: {Min: membrane.MinPhysicalSize, Max: membrane.MaxPhysicalSize, Default: 1.0},
	ParamTension:      {Min: membrane.MinTension, Max: membrane.MaxTension, Default: 0.5},
	ParamDepth:        {Min: membrane.MinPhysicalSize, Max: membrane.MaxPhysicalSize, Default: 1.0},
	ParamRandomness:   {Min: membrane.MinRandomness, Max: membrane.MaxRandomness, Default: 5},
}

// String returns the host identifier of the parameter.
func (id ParamID) String() string {
	if !id.valid() {
		return fmt.Sprintf("ParamID(%d)", int(id))
	}
	return paramNames[id]
}

func (id ParamID) valid() bool {
	return id >= 0 && id < paramCount
}

// Params returns every parameter in declaration order.
func Params() []ParamID {
	ids := make([]ParamID, paramCount)
	for i := range ids {
		ids[i] = ParamID(i)
	}
	return ids
}

// ParseParamID resolves a host identifier such as "membraneTension".
func ParseParamID(name string) (ParamID, error) {
	for i, n := range paramNames {
		if n == name {
			return ParamID(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownParameter, name)
}

// ParamRange returns the accepted range and default of id.
func ParamRange(id ParamID) (Range, error) {
	if !id.valid() {
		return Range{}, fmt.Errorf("%w: %d", ErrUnknownParameter, int(id))
	}
	return paramRanges[id], nil
}

// paramStore publishes target values from control goroutines to the render
// goroutine. Values are stored as float64 bits; dirty holds one bit per
// parameter changed since the last apply.
type paramStore struct {
	values [paramCount]atomic.Uint64
	dirty  atomic.Uint32
}

func (p *paramStore) store(id ParamID, v float64) {
	p.values[id].Store(math.Float64bits(v))
	p.dirty.Or(1 << uint(id))
}

func (p *paramStore) load(id ParamID) float64 {
	return math.Float64frombits(p.values[id].Load())
}

// take returns and clears the dirty mask.
func (p *paramStore) take() uint32 {
	return p.dirty.Swap(0)
}

// SetParameter publishes a new target value. The value is clamped into the
// parameter range and takes effect at the start of the next render block.
// It is safe to call from any goroutine.
func (s *Synth[F]) SetParameter(id ParamID, value float64) error {
	if !id.valid() {
		return fmt.Errorf("%w: %d", ErrUnknownParameter, int(id))
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return fmt.Errorf("%w: %s=%v", ErrInvalidValue, id, value)
	}
	r := paramRanges[id]
	s.params.store(id, mathutil.Clamp(value, r.Min, r.Max))
	return nil
}

// Parameter returns the most recently published value of id, or NaN for an
// unknown parameter.
func (s *Synth[F]) Parameter(id ParamID) float64 {
	if !id.valid() {
		return math.NaN()
	}
	return s.params.load(id)
}

const retuneMask = 1<<uint(ParamMembraneSize) | 1<<uint(ParamDepth)

// applyParams forwards changed targets to the engines. Runs on the render
// goroutine at block start.
func (s *Synth[F]) applyParams() {
	dirty := s.params.take()
	if dirty == 0 {
		return
	}
	if dirty&(1<<uint(ParamMembraneSize)) != 0 {
		s.membrane.SetSizeTarget(s.params.load(ParamMembraneSize))
	}
	if dirty&(1<<uint(ParamTension)) != 0 {
		s.membrane.SetTension(s.params.load(ParamTension))
	}
	if dirty&(1<<uint(ParamRandomness)) != 0 {
		s.membrane.SetRandomness(s.params.load(ParamRandomness))
	}
	if dirty&retuneMask != 0 {
		s.bank.Retune(s.params.load(ParamMembraneSize), s.params.load(ParamDepth), s.config.SampleRate)
		s.retunes++
	}
}

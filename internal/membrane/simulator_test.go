package membrane

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tphakala/go-drum-synth/internal/analysis"
	"github.com/tphakala/go-drum-synth/internal/testutil"
)

const testTimeStep = 1.0 / 44100

func newTestSimulator(t *testing.T, n, workers int) *Simulator[float64] {
	t.Helper()
	cfg := DefaultConfig(n)
	cfg.Workers = workers
	cfg.Seed = 42
	s, err := New[float64](cfg)
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr error
	}{
		{"default", func(*Config) {}, nil},
		{"too small", func(c *Config) { c.Resolution = 4 }, ErrInvalidResolution},
		{"too large", func(c *Config) { c.Resolution = MaxResolution + 1 }, ErrInvalidResolution},
		{"zero size", func(c *Config) { c.PhysicalSize = 0 }, ErrInvalidPhysics},
		{"nan speed", func(c *Config) { c.WaveSpeed = math.NaN() }, ErrInvalidPhysics},
		{"zero damping", func(c *Config) { c.Damping = 0 }, ErrInvalidPhysics},
		{"gain damping", func(c *Config) { c.Damping = 1.01 }, ErrInvalidPhysics},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig(16)
			tt.modify(&cfg)
			err := cfg.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tt.wantErr)
			_, err = New[float32](cfg)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestNew_InitialState(t *testing.T) {
	s := newTestSimulator(t, 16, 1)

	assert.Equal(t, 16, s.Resolution())
	assert.Equal(t, 8*16+8, s.MeasureIndex(), "measurement defaults to the centre cell")
	assert.InDelta(t, 1.0/16, s.SpatialStep(), 1e-15)
	assert.InDelta(t, s.SpatialStep(), s.TargetSpatialStep(), 1e-15)
	assert.InDelta(t, DefaultWaveSpeed, s.WaveSpeed(), 1e-15)
	assert.InDelta(t, DefaultDamping, s.Damping(), 1e-15)
	assert.Len(t, s.Field(), 16*16)
	assert.Len(t, s.Mask(), 16*16)
	assert.False(t, s.Parallel())
	assert.Equal(t, uint64(0), s.Ticks())
}

func TestMask_Geometry(t *testing.T) {
	for _, n := range []int{8, 9, 16, 17, 33, 64} {
		mask, active := buildMask(n)
		center := n / 2
		r2 := (center - 1) * (center - 1)

		count := 0
		for y := range n {
			for x := range n {
				idx := y*n + x
				border := x == 0 || y == 0 || x == n-1 || y == n-1
				if border {
					assert.Zero(t, mask[idx], "n=%d border (%d,%d)", n, x, y)
					continue
				}
				dx, dy := x-center, y-center
				want := dx*dx+dy*dy <= r2
				assert.Equal(t, want, mask[idx] == 1, "n=%d cell (%d,%d)", n, x, y)
				if want {
					count++
				}
			}
		}
		require.Len(t, active, count, "n=%d", n)
		for i := 1; i < len(active); i++ {
			assert.Less(t, active[i-1], active[i], "active list is row-major")
		}
	}
}

// Cells outside the circle are never written by any update.
func TestSimulator_MaskInvariance(t *testing.T) {
	for _, n := range []int{8, 12, 16, 31, 48} {
		s := newTestSimulator(t, n, 1)
		s.SetRandomness(3)
		for i := range 30 * UpdateInterval {
			if i%50 == 0 {
				s.ExciteAtCenter(0.8)
			}
			s.ProcessSample(testTimeStep)
		}
		require.NotZero(t, s.Ticks())

		for b, buf := range s.buffers {
			for idx, v := range buf {
				if s.mask[idx] == 0 {
					assert.Zero(t, v, "n=%d buffer %d cell %d outside mask", n, b, idx)
				}
			}
		}
	}
}

func TestSimulator_ExciteSetsState(t *testing.T) {
	s := newTestSimulator(t, 16, 1)

	s.Excite(0.9, 5, 7)
	idx := 7*16 + 5
	assert.Equal(t, 0.9, s.buffers[s.current][idx])
	assert.Equal(t, 0.45, s.buffers[s.previousIndex()][idx])
	assert.Equal(t, idx, s.MeasureIndex())
}

func TestSimulator_ExciteIgnored(t *testing.T) {
	s := newTestSimulator(t, 16, 1)
	s.Excite(0.5, 8, 8)
	for range 3 * UpdateInterval {
		s.ProcessSample(testTimeStep)
	}

	type state struct {
		buffers       [3][]float64
		measure       int
		target, speed float64
		counter       int
	}
	capture := func() state {
		var st state
		for i := range s.buffers {
			st.buffers[i] = append([]float64(nil), s.buffers[i]...)
		}
		st.measure = s.measure
		st.target = s.targetWaveSpeed
		st.speed = s.waveSpeed
		st.counter = s.counter
		return st
	}
	before := capture()

	tests := []struct {
		name string
		amp  float64
		x, y int
	}{
		{"left border", 0.9, 0, 8},
		{"right border", 0.9, 15, 8},
		{"top border", 0.9, 8, 0},
		{"bottom border", 0.9, 8, 15},
		{"corner outside circle", 0.9, 1, 1},
		{"negative", 0.9, -4, 3},
		{"beyond grid", 0.9, 40, 40},
		{"nan amplitude", math.NaN(), 8, 8},
		{"inf amplitude", math.Inf(1), 8, 8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s.Excite(tt.amp, tt.x, tt.y)
			assert.Equal(t, before, capture())
		})
	}
}

func TestSimulator_UpdateRateDecoupling(t *testing.T) {
	s := newTestSimulator(t, 16, 1)
	s.Excite(0.9, 8, 8)

	for i := range UpdateInterval - 1 {
		assert.Equal(t, 0.9, s.ProcessSample(testTimeStep), "call %d holds the last value", i)
	}
	assert.Equal(t, uint64(0), s.Ticks())

	updated := s.ProcessSample(testTimeStep)
	assert.Equal(t, uint64(1), s.Ticks())
	assert.NotEqual(t, 0.9, updated)

	// After a tick the next K-1 calls repeat the new value.
	for range UpdateInterval - 1 {
		assert.Equal(t, updated, s.ProcessSample(testTimeStep))
	}
}

func TestSimulator_FirstTickValue(t *testing.T) {
	s := newTestSimulator(t, 16, 1)
	s.Excite(0.9, 8, 8)

	var got float64
	for range UpdateInterval {
		got = s.ProcessSample(testTimeStep)
	}

	// Neighbours are zero, so the Laplacian is -4u at the struck cell.
	dx := mathSmooth(1.0/16, 1.0/16)
	c := mathSmooth(DefaultWaveSpeed, waveSpeedForTension(0.25))
	ratio := c * testTimeStep / dx
	c2 := ratio * ratio
	want := DefaultDamping * (2*0.9 - 0.45 + c2*(-4*0.9))
	assert.InDelta(t, want, got, 1e-15)
	assert.InDelta(t, c2, s.Courant(), 1e-18)
}

func mathSmooth(current, target float64) float64 {
	return current + (target-current)*smoothingFactor
}

// Grid 16, size 1 m, 100 m/s, damping 0.996, strike 0.9 at the centre.
func TestSimulator_DecayScenario(t *testing.T) {
	s := newTestSimulator(t, 16, 1)
	const amplitude = 0.9
	s.Excite(amplitude, 8, 8)

	first := make([]float64, 100)
	for i := range first {
		first[i] = s.ProcessSample(testTimeStep)
	}
	testutil.AssertBounded(t, first, 10*amplitude)

	// 40/(1-damping) updates.
	total := int(40/(1-DefaultDamping)) * UpdateInterval
	out := make([]float64, total)
	for i := range out {
		out[i] = s.ProcessSample(testTimeStep)
	}
	testutil.AssertBounded(t, out, 10*amplitude)

	// Windows span several beat periods of the lowest modes.
	const window = 20000
	env := analysis.Envelope(out, window)
	require.GreaterOrEqual(t, len(env), 4)
	for i := 1; i < len(env); i++ {
		assert.Less(t, env[i], env[i-1], "smoothed envelope decays (window %d)", i)
	}

	tail := out[len(out)-window:]
	assert.Less(t, analysis.Peak(tail), 0.01*amplitude)
}

func TestSimulator_Stability(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))

	for _, n := range []int{8, 16, 40} {
		s := newTestSimulator(t, n, 1)
		out := make([]float64, 60000)
		for i := range out {
			if i%997 == 0 {
				amp := rng.Float64()*2 - 1
				s.Excite(amp, 1+rng.IntN(n-2), 1+rng.IntN(n-2))
			}
			if i%5003 == 0 {
				s.SetTension(rng.Float64())
				s.SetSizeTarget(MinPhysicalSize + rng.Float64()*(MaxPhysicalSize-MinPhysicalSize))
			}
			out[i] = s.ProcessSample(testTimeStep)
		}
		testutil.AssertBounded(t, out, 1e4, "n=%d", n)
		testutil.AssertFinite(t, s.Field())
	}
}

func TestSimulator_CourantClamp(t *testing.T) {
	s := newTestSimulator(t, 16, 1)
	s.SetSizeTarget(MinPhysicalSize)
	s.SetTension(MaxTension)
	s.Excite(1, 8, 8)

	// A large time step violates the CFL bound and must be clamped.
	out := make([]float64, 200*UpdateInterval)
	for i := range out {
		out[i] = s.ProcessSample(1e-2)
	}
	assert.InDelta(t, maxCourant, s.Courant(), 1e-15)
	testutil.AssertBounded(t, out, 10)

	advance(s, math.NaN(), UpdateInterval)
	assert.Zero(t, s.Courant(), "NaN Courant number falls back to zero")
	testutil.AssertFinite(t, s.Field())
}

func advance[F float32 | float64](s *Simulator[F], timeStep float64, n int) F {
	var v F
	for range n {
		v = s.ProcessSample(timeStep)
	}
	return v
}

func TestSimulator_SetTension(t *testing.T) {
	tests := []struct {
		name        string
		tension     float64
		wantSpeed   float64
		wantDamping float64
	}{
		{"nominal", 0.5, 100, 0.996},
		{"max", 1, 125, 0.9995},
		{"above max", 5, 125, 0.9995},
		{"min", 0.01, 75.5, 0.996 - 0.49*0.007},
		{"below min", -1, 75.5, 0.996 - 0.49*0.007},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestSimulator(t, 16, 1)
			s.SetTension(tt.tension)
			assert.InDelta(t, tt.wantSpeed, s.TargetWaveSpeed(), 1e-12)
			assert.InDelta(t, tt.wantDamping, s.Damping(), 1e-12)
			assert.InDelta(t, DefaultWaveSpeed, s.WaveSpeed(), 1e-12, "current speed only moves on ticks")
		})
	}
}

func TestSimulator_SetSizeTargetAndRandomness(t *testing.T) {
	s := newTestSimulator(t, 16, 1)

	s.SetSizeTarget(2)
	assert.InDelta(t, 2.0/16, s.TargetSpatialStep(), 1e-15)
	s.SetSizeTarget(100)
	assert.InDelta(t, MaxPhysicalSize/16, s.TargetSpatialStep(), 1e-15)
	s.SetSizeTarget(0)
	assert.InDelta(t, MinPhysicalSize/16, s.TargetSpatialStep(), 1e-15)
	s.SetSizeTarget(math.NaN())
	assert.InDelta(t, MinPhysicalSize/16, s.TargetSpatialStep(), 1e-15)

	s.SetRandomness(200)
	assert.InDelta(t, MaxRandomness, s.randomness, 0)
	s.SetRandomness(-3)
	assert.InDelta(t, MinRandomness, s.randomness, 0)

	// Spatial step glides toward the target by the smoothing factor per tick.
	s.SetSizeTarget(2)
	before := s.SpatialStep()
	advance(s, testTimeStep, UpdateInterval)
	assert.InDelta(t, before+(2.0/16-before)*smoothingFactor, s.SpatialStep(), 1e-15)
}

func TestSimulator_StrikePositionTension(t *testing.T) {
	s := newTestSimulator(t, 16, 1)

	s.Excite(0.5, 8, 8)
	assert.InDelta(t, waveSpeedForTension(0.25), s.TargetWaveSpeed(), 1e-12)

	// (1, 8): distance 7, normalized 7/8.
	s.Excite(0.5, 1, 8)
	wantT := 0.5 + (7.0/8-0.5)*0.5
	assert.InDelta(t, waveSpeedForTension(wantT), s.TargetWaveSpeed(), 1e-12)
}

func TestSimulator_ExciteAtCenter(t *testing.T) {
	t.Run("no jitter", func(t *testing.T) {
		s := newTestSimulator(t, 32, 1)
		s.SetRandomness(0)
		s.ExciteAtCenter(0.7)
		assert.Equal(t, 16*32+16, s.MeasureIndex())
		assert.Equal(t, 0.7, s.Field()[s.MeasureIndex()])
	})

	t.Run("jitter within radius", func(t *testing.T) {
		s := newTestSimulator(t, 64, 1)
		s.SetRandomness(4)
		for range 200 {
			s.ExciteAtCenter(0.3)
			x := s.MeasureIndex() % 64
			y := s.MeasureIndex() / 64
			assert.LessOrEqual(t, math.Abs(float64(x-32)), 4.0)
			assert.LessOrEqual(t, math.Abs(float64(y-32)), 4.0)
		}
	})

	t.Run("deterministic per seed", func(t *testing.T) {
		a := newTestSimulator(t, 64, 1)
		b := newTestSimulator(t, 64, 1)
		a.SetRandomness(10)
		b.SetRandomness(10)
		for range 50 {
			a.ExciteAtCenter(0.3)
			b.ExciteAtCenter(0.3)
			require.Equal(t, a.MeasureIndex(), b.MeasureIndex())
		}
	})

	t.Run("jitter beyond grid is ignored", func(t *testing.T) {
		s := newTestSimulator(t, 16, 1)
		s.SetRandomness(MaxRandomness)
		for range 100 {
			s.ExciteAtCenter(0.3)
			assert.True(t, s.Mask()[s.MeasureIndex()] == 1)
		}
		testutil.AssertFinite(t, s.Field())
	})
}

func TestSimulator_Reset(t *testing.T) {
	s := newTestSimulator(t, 16, 1)
	s.Excite(0.9, 4, 8)
	advance(s, testTimeStep, 5*UpdateInterval+3)

	s.Reset()
	for _, b := range s.buffers {
		for _, v := range b {
			require.Zero(t, v)
		}
	}
	assert.Equal(t, s.center, s.MeasureIndex())
	assert.Zero(t, s.ProcessSample(testTimeStep))
}

func TestSimulator_Snapshot(t *testing.T) {
	s := newTestSimulator(t, 16, 1)
	s.Excite(0.9, 8, 8)
	advance(s, testTimeStep, 4*UpdateInterval)

	dst := make([]float64, 16*16)
	require.Equal(t, 16*16, s.Snapshot(dst))
	assert.Equal(t, s.Field(), dst)

	short := make([]float64, 10)
	assert.Equal(t, 10, s.Snapshot(short))
}

func TestSimulator_Float32(t *testing.T) {
	cfg := DefaultConfig(16)
	s32, err := New[float32](cfg)
	require.NoError(t, err)
	s64, err := New[float64](cfg)
	require.NoError(t, err)

	s32.Excite(0.9, 8, 8)
	s64.Excite(0.9, 8, 8)
	for range 500 * UpdateInterval {
		a := s32.ProcessSample(testTimeStep)
		b := s64.ProcessSample(testTimeStep)
		require.InDelta(t, b, float64(a), 1e-3)
	}
}

func TestSimulator_ProcessSampleNoAlloc(t *testing.T) {
	for _, workers := range []int{1, 4} {
		s := newTestSimulator(t, 32, workers)
		s.Excite(0.9, 16, 16)
		allocs := testing.AllocsPerRun(200, func() {
			s.ProcessSample(testTimeStep)
			s.Excite(0.1, 10, 12)
		})
		assert.Zero(t, allocs, "workers=%d", workers)
	}
}

func BenchmarkSimulator_ProcessSample(b *testing.B) {
	for _, bc := range []struct {
		name    string
		n       int
		workers int
	}{
		{"N64", 64, 1},
		{"N256", 256, 1},
		{"N256_4workers", 256, 4},
	} {
		b.Run(bc.name, func(b *testing.B) {
			cfg := DefaultConfig(bc.n)
			cfg.Workers = bc.workers
			s, err := New[float32](cfg)
			require.NoError(b, err)
			defer s.Close()
			s.ExciteAtCenter(0.9)

			b.ReportAllocs()
			for b.Loop() {
				s.ProcessSample(testTimeStep)
			}
		})
	}
}

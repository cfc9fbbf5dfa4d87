// Package drum provides a real-time physical-modeling drum synthesizer in pure Go.
//
// A circular membrane is integrated with a leap-frog finite-difference scheme
// on an N×N grid. The displacement at the strike point drives a parallel bank
// of band-pass resonators tuned to the modes of a cylindrical shell, and the
// summed modes are the output.
//
// # Features
//
//   - 2-D FDTD membrane with a circular clamped boundary and tension-coupled
//     wave speed and damping
//   - Optional parallel cell sweep across persistent worker goroutines with
//     results identical to the sequential sweep
//   - 15-mode cylindrical cavity resonator bank with click-free crossfaded retuning
//   - Zero allocation, lock-free render path safe to call from an audio callback
//   - Generic over float32 and float64 samples
//   - Optional SIMD acceleration via github.com/tphakala/simd
//
// # Quick Start
//
//	s, err := drum.New[float32](drum.DefaultConfig())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer s.Close()
//
//	s.NoteOn(100)
//	left := make([]float32, 512)
//	right := make([]float32, 512)
//	s.Process([][]float32{left, right})
//
// # Parameters
//
// Four parameters are exposed through [Synth.SetParameter]:
//
//   - [ParamMembraneSize]: membrane diameter in metres (0.75-10). Also the
//     radius of the resonating cavity.
//   - [ParamTension]: normalized tension (0.01-1). Higher tension raises the
//     wave speed and lengthens the decay.
//   - [ParamDepth]: cavity depth in metres (0.75-10).
//   - [ParamRandomness]: strike position jitter in grid cells (0-50).
//
// Changes are published atomically and picked up at the start of the next
// render block. A change to size or depth retunes the resonator bank once,
// blending the old and new tuning over 1024 samples.
//
// # Thread Safety
//
// [Synth.Process], [Synth.ProcessInterleaved], [Synth.RenderSample] and
// [Synth.Reset] must be called from a single render goroutine.
// [Synth.SetParameter] may be called from any goroutine. Strikes
// ([Synth.Excite], [Synth.ExciteAtCenter], [Synth.NoteOn]) travel through a
// single-producer queue and must be issued from one control goroutine at a
// time. Display views return the live grid and may observe a partially
// updated frame.
package drum

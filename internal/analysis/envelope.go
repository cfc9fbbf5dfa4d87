package analysis

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// RMS returns the root-mean-square level of s.
func RMS(s []float64) float64 {
	if len(s) == 0 {
		return 0
	}
	return floats.Norm(s, 2) / math.Sqrt(float64(len(s)))
}

// Peak returns the largest absolute value in s.
func Peak(s []float64) float64 {
	if len(s) == 0 {
		return 0
	}
	return math.Max(math.Abs(floats.Max(s)), math.Abs(floats.Min(s)))
}

// Envelope splits s into consecutive windows and returns the RMS of each.
// A trailing partial window is dropped.
func Envelope(s []float64, window int) []float64 {
	if window <= 0 || len(s) < window {
		return nil
	}
	out := make([]float64, len(s)/window)
	for i := range out {
		out[i] = RMS(s[i*window : (i+1)*window])
	}
	return out
}

// ToFloat64 widens a sample slice for analysis.
func ToFloat64[F float32 | float64](s []F) []float64 {
	out := make([]float64, len(s))
	for i, v := range s {
		out[i] = float64(v)
	}
	return out
}

package mathutil

// Number is the constraint for the numeric helpers.
type Number interface {
	~float32 | ~float64 | ~int | ~int32 | ~int64
}

// Clamp limits v to [lo, hi].
func Clamp[T Number](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Smooth moves current a fraction of the way toward target (one-pole smoother).
func Smooth(current, target, factor float64) float64 {
	return current + (target-current)*factor
}

package membrane

// buildMask marks the cells of an n×n grid that lie inside the inscribed
// circle (centre n/2, radius n/2-1) and returns the mask together with the
// row-major list of inside indices. Border cells are never inside.
func buildMask(n int) (mask []uint8, active []int32) {
	mask = make([]uint8, n*n)
	center := n / 2
	radius := center - 1
	r2 := radius * radius

	active = make([]int32, 0, n*n)
	for y := 1; y < n-1; y++ {
		for x := 1; x < n-1; x++ {
			dx := x - center
			dy := y - center
			if dx*dx+dy*dy <= r2 {
				idx := y*n + x
				mask[idx] = 1
				active = append(active, int32(idx))
			}
		}
	}
	return mask, active
}

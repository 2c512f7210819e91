package spatial

// BinIndex maps v onto one of n equal-width bins spanning [min, max].
// The upper edge falls in the last bin; a zero-width range maps everything to bin 0.
func BinIndex(v, min, max float64, n int) int {
	if n <= 1 || max <= min {
		return 0
	}
	idx := int((v - min) / (max - min) * float64(n))
	if idx < 0 {
		return 0
	}
	if idx >= n {
		return n - 1
	}
	return idx
}

// BinCenter returns the midpoint of bin i of n equal-width bins over [min, max]
func BinCenter(i int, min, max float64, n int) float64 {
	if n <= 1 || max <= min {
		return (min + max) / 2
	}
	width := (max - min) / float64(n)
	return min + width*(float64(i)+0.5)
}

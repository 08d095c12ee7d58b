package mosaic

// Partition returns how many consecutive items starting at start form the
// next row.
//
// The candidate row grows one item at a time and is accepted as soon as
// its height, width / Σ ratios, is at most maxRowHeight. When growing
// would run past the end of ratios, the remaining items form the row and
// terminal is true; such a row never met the height limit and its fate is
// left to the overflow policy. A start at or beyond the end yields (0, true).
func Partition(ratios []float64, start int, width, maxRowHeight float64) (count int, terminal bool) {
	n := len(ratios)
	if start >= n {
		return 0, true
	}

	var sum float64
	for k := 1; ; k++ {
		if start+k > n {
			return n - start, true
		}
		sum += ratios[start+k-1]
		if width/sum <= maxRowHeight {
			return k, false
		}
	}
}

// rowHeight returns the height at which ratios exactly fill width.
func rowHeight(ratios []float64, width float64) float64 {
	var sum float64
	for _, r := range ratios {
		sum += r
	}
	return width / sum
}

package mosaic

// ResolveAspectRatio returns the width/height ratio used to lay out item.
//
// Resolution order:
//   - the explicit AspectRatio override
//   - the Width/Height hints
//   - defaultRatio
//
// A candidate that is zero, negative, NaN or infinite counts as unresolved
// and resolution moves on to the next source. So does a subnormal ratio
// whose reciprocal overflows, since it would give the row an infinite
// height.
func ResolveAspectRatio(item Item, defaultRatio float64) float64 {
	if usableRatio(item.AspectRatio) {
		return item.AspectRatio
	}
	if item.Width != 0 && item.Height != 0 {
		if r := item.Width / item.Height; usableRatio(r) {
			return r
		}
	}
	return defaultRatio
}

// ResolveAspectRatios resolves every item's ratio.
func ResolveAspectRatios(items []Item, defaultRatio float64) []float64 {
	ratios := make([]float64, len(items))
	for i, it := range items {
		ratios[i] = ResolveAspectRatio(it, defaultRatio)
	}
	return ratios
}

// usableRatio reports whether r and 1/r are both positive finite numbers.
func usableRatio(r float64) bool {
	return positive(r) && positive(1/r)
}

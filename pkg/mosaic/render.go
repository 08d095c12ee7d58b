package mosaic

import "math"

// RenderRow assigns geometry to one row of items.
//
// The natural height is width / Σ ratios. When it exceeds maxRowHeight the
// policy decides: skip hides the row, crop caps the height at maxRowHeight
// and oversize keeps it. Each visible item gets floor(height × ratio); the
// rounding remainder is added to the last item so the row spans width
// exactly. If floor rounding overshoots, the last width is clamped at zero.
// A natural height that overflows float64 is capped at math.MaxFloat64 and
// item widths never exceed width, so geometry stays finite.
//
// The returned placements carry Width, Height, X, AspectRatio and Visible;
// Index, ID, Row and Y are filled in by the caller.
func RenderRow(ratios []float64, width, maxRowHeight float64, policy OverflowPolicy) ([]Placement, Row) {
	placements := make([]Placement, len(ratios))
	natural := rowHeight(ratios, width)
	if math.IsInf(natural, 1) {
		natural = math.MaxFloat64
	}
	row := Row{Count: len(ratios), NaturalHeight: natural}

	for i, r := range ratios {
		placements[i].AspectRatio = r
	}
	if len(ratios) == 0 {
		return placements, row
	}

	height := natural
	if natural > maxRowHeight {
		row.Overflow = true
		switch policy {
		case PolicySkip:
			row.Hidden = true
			return placements, row
		case PolicyCrop:
			height = maxRowHeight
		case PolicyOversize:
		}
	}
	row.Height = height

	var accumulated float64
	for i, r := range ratios {
		w := math.Min(math.Floor(height*r), width)
		placements[i].X = accumulated
		placements[i].Width = w
		placements[i].Height = height
		placements[i].Visible = true
		accumulated += w
	}

	last := &placements[len(placements)-1]
	last.Width = absorbRemainder(last.Width, width, accumulated)

	return placements, row
}

// absorbRemainder returns the last item's width after it takes up the gap
// between width and the accumulated floored widths. Flooring keeps the sum
// at or below width for finite inputs; the zero clamp covers rows whose
// widths were capped at width.
func absorbRemainder(last, width, accumulated float64) float64 {
	return math.Max(0, last+(width-accumulated))
}

// Package mosaic computes justified grid layouts.
//
// A justified layout packs an ordered sequence of rectangular items into
// rows that fill the container width exactly. Every row approximates a
// maximum height and items keep their aspect ratio, so photos of mixed
// orientation line up edge to edge without gaps (the mosaics seen on
// photo-sharing sites).
//
// # Algorithm
//
// The layout is computed in a single greedy pass:
//
//  1. [ResolveAspectRatio] derives a positive ratio for every item, from an
//     explicit override, intrinsic width/height hints or the configured
//     default.
//  2. [Partition] grows a candidate row one item at a time until the row's
//     height (container width divided by the sum of ratios) drops to or
//     below MaxRowHeight. Items left over at the end form a terminal row.
//  3. [RenderRow] assigns each item floor(height × ratio) and gives the
//     rounding remainder to the last item of the row, so the widths sum
//     to the container width. Rows that still exceed MaxRowHeight are
//     handled by the [OverflowPolicy].
//
// If not a single row in the pass met the height limit, the whole sequence
// is laid out as one row instead.
//
// # Usage
//
// Use [Fit] for a one-off computation, or an [Engine] bound to a
// [Container] when the layout is refreshed repeatedly (for example on
// resize):
//
//	box := mosaic.NewBox(960, items)
//	engine, err := mosaic.New(box, mosaic.DefaultConfig())
//	if err != nil {
//	    return err
//	}
//	layout := engine.Fit()
//	for _, p := range layout.Placements {
//	    fmt.Println(p.ID, p.Width, p.Height, p.Visible)
//	}
//
// The package is pure geometry: showing, hiding and resizing real elements
// or swapping image assets is left to consumers of [Placement].
package mosaic

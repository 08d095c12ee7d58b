// Package sink renders mosaic documents to output formats.
//
// Each renderer takes a [document.Layout] and returns bytes or a string:
//
//   - [RenderSVG]: scalable vector output, one <rect> or <image> per tile
//   - [RenderPNG]: raster output drawn with fogleman/gg
//   - [RenderText]: colored block preview for terminals, drawn with lipgloss
//
// Hidden tiles are never drawn. All renderers are safe to call concurrently
// and do not modify the layout.
package sink

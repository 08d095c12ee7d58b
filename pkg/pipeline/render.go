package pipeline

import (
	"fmt"

	"github.com/matzehuels/mosaic/pkg/document"
	"github.com/matzehuels/mosaic/pkg/sink"
)

// RenderDocument generates output artifacts in the requested formats.
func RenderDocument(doc document.Layout, opts Options) (map[string][]byte, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, err
	}

	artifacts := make(map[string][]byte)
	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatJSON:
			data, err = document.Marshal(doc)
		case FormatSVG:
			data = sink.RenderSVG(doc, buildSVGOptions(opts)...)
		case FormatPNG:
			data, err = sink.RenderPNG(doc, buildPNGOptions(opts)...)
		case FormatText:
			data = []byte(sink.RenderText(doc, opts.Columns, buildTextOptions(opts)...) + "\n")
		default:
			return nil, fmt.Errorf("unsupported format: %s", format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

func buildSVGOptions(opts Options) []sink.SVGOption {
	var out []sink.SVGOption
	if opts.Gap > 0 {
		out = append(out, sink.WithGap(opts.Gap))
	}
	if opts.Images {
		out = append(out, sink.WithImages())
	}
	if opts.Labels {
		out = append(out, sink.WithLabels())
	}
	return out
}

func buildPNGOptions(opts Options) []sink.PNGOption {
	out := []sink.PNGOption{sink.WithScale(opts.Scale)}
	if opts.Gap > 0 {
		out = append(out, sink.WithPNGGap(opts.Gap))
	}
	if opts.Images {
		out = append(out, sink.WithPNGImages())
	}
	if opts.Labels {
		out = append(out, sink.WithPNGLabels())
	}
	return out
}

func buildTextOptions(opts Options) []sink.TextOption {
	// Artifacts may be written to files, so text output never carries
	// terminal color codes.
	out := []sink.TextOption{sink.WithPlain()}
	if opts.Labels {
		out = append(out, sink.WithTextLabels())
	}
	return out
}

package pipeline

import (
	"context"
	"time"

	"github.com/matzehuels/mosaic/pkg/document"
	"github.com/matzehuels/mosaic/pkg/mosaic"
	"github.com/matzehuels/mosaic/pkg/observability"
	"github.com/matzehuels/mosaic/pkg/present"
)

// ComputeLayout fits items into a container of opts.Width and builds the
// document, resolving high-resolution assets along the way.
func ComputeLayout(ctx context.Context, items []mosaic.Item, opts Options) (document.Layout, error) {
	if err := opts.ValidateForLayout(); err != nil {
		return document.Layout{}, err
	}

	engine, err := mosaic.New(mosaic.NewBox(opts.Width, items), opts.Config, mosaic.WithLogger(opts.Logger))
	if err != nil {
		return document.Layout{}, err
	}

	hooks := observability.Layout()
	hooks.OnFitStart(ctx, len(items), opts.Width)
	start := time.Now()

	result := engine.Fit()

	hooks.OnFitComplete(ctx, observability.FitStats{
		Items:    len(items),
		Rows:     len(result.Rows),
		Hidden:   result.Hidden(),
		Fallback: result.Fallback,
		Width:    opts.Width,
		Duration: time.Since(start),
	})

	assets := present.NewSwapper(opts.Config.HighResWidthThreshold).Apply(items, result.Placements)
	doc := document.Build(result, items, assets, opts.Config)
	doc.Title = opts.Title
	return doc, nil
}

package cli

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/mosaic/pkg/document"
	"github.com/matzehuels/mosaic/pkg/pipeline"
)

// renderFlags holds the options of the render command.
type renderFlags struct {
	formats string
	output  string
	scale   float64
	gap     float64
	images  bool
	labels  bool
	columns int
	noCache bool
}

func (rf renderFlags) apply(opts *pipeline.Options) {
	opts.Formats = parseFormats(rf.formats)
	opts.Scale = rf.scale
	opts.Gap = rf.gap
	opts.Images = rf.images
	opts.Labels = rf.labels
	opts.Columns = rf.columns
}

// renderCommand renders a manifest or a layout document to image files.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		lf layoutFlags
		rf renderFlags
	)

	cmd := &cobra.Command{
		Use:   "render [manifest | layout.json]",
		Short: "Render a mosaic to SVG, PNG, text or JSON",
		Long: `Render a mosaic to SVG, PNG, text or JSON.

The input is either an item manifest, which is laid out first, or a
layout.json document produced by 'mosaic layout', which is rendered as is.
Layout flags are ignored for layout documents.`,
		Example: `  mosaic render photos.yaml -f svg,png --images
  mosaic render photos.layout.json -f txt --columns 100`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, cfg, err := c.resolveLayout(cmd.Flags(), &lf)
			if err != nil {
				return err
			}
			runner, err := c.newRunner(cmd.Context(), f, rf.noCache)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()

			opts := pipeline.Options{Width: f.Layout.ContainerWidth, Config: cfg, Logger: c.Logger}
			rf.apply(&opts)
			return c.runRender(cmd.Context(), runner, args[0], opts, rf.output)
		},
	}

	lf.register(cmd.Flags())
	cmd.Flags().StringVarP(&rf.formats, "format", "f", pipeline.FormatSVG, "output formats, comma separated: svg, png, txt, json")
	cmd.Flags().StringVarP(&rf.output, "output", "o", "", "output base path (default: input without extension)")
	cmd.Flags().Float64Var(&rf.scale, "scale", pipeline.DefaultScale, "PNG scale factor")
	cmd.Flags().Float64Var(&rf.gap, "gap", 0, "gap between tiles")
	cmd.Flags().BoolVar(&rf.images, "images", false, "draw item images instead of colored tiles")
	cmd.Flags().BoolVar(&rf.labels, "labels", false, "label tiles with their item ID")
	cmd.Flags().IntVar(&rf.columns, "columns", pipeline.DefaultColumns, "text output width in columns")
	cmd.Flags().BoolVar(&rf.noCache, "no-cache", false, "disable caching")

	return cmd
}

// runRender renders input and writes one file per format.
func (c *CLI) runRender(ctx context.Context, runner *pipeline.Runner, input string, opts pipeline.Options, output string) error {
	spinner := newSpinnerWithContext(ctx, "Rendering...")
	spinner.Start()

	var (
		artifacts map[string][]byte
		stats     layoutStats
		err       error
	)
	if isLayoutDocument(input) {
		artifacts, stats, err = renderDocument(ctx, runner, input, opts)
	} else {
		opts.Manifest = input
		var result *pipeline.Result
		if result, err = runner.Execute(ctx, opts); err == nil {
			artifacts = result.Artifacts
			stats = layoutStats{
				items:  result.Stats.Items,
				rows:   result.Stats.Rows,
				hidden: result.Stats.Hidden,
				cached: result.CacheInfo.LayoutHit && result.CacheInfo.RenderHit,
			}
		}
	}
	if err != nil {
		spinner.StopWithError("Render failed")
		return err
	}
	spinner.Stop()
	if ctx.Err() != nil {
		return ctx.Err()
	}

	base := output
	if base == "" {
		base = outputBase(input)
	}
	paths, err := writeArtifacts(base, artifacts)
	if err != nil {
		return err
	}

	printSuccess("Rendered %s", plural(len(paths), "file"))
	for _, p := range paths {
		printFile(p)
	}
	printStats(stats)
	return nil
}

// isLayoutDocument reports whether path names a layout document rather
// than a manifest.
func isLayoutDocument(path string) bool {
	return strings.HasSuffix(path, ".layout.json")
}

func renderDocument(ctx context.Context, runner *pipeline.Runner, path string, opts pipeline.Options) (map[string][]byte, layoutStats, error) {
	doc, err := document.ReadFile(path)
	if err != nil {
		return nil, layoutStats{}, err
	}
	artifacts, hit, err := runner.RenderWithCacheInfo(ctx, doc, opts)
	if err != nil {
		return nil, layoutStats{}, err
	}
	return artifacts, layoutStats{
		items:  len(doc.Tiles),
		rows:   len(doc.Rows),
		hidden: doc.Hidden(),
		cached: hit,
	}, nil
}

// writeArtifacts writes each artifact to base.<format> and returns the
// written paths in a stable order.
func writeArtifacts(base string, artifacts map[string][]byte) ([]string, error) {
	formats := make([]string, 0, len(artifacts))
	for f := range artifacts {
		formats = append(formats, f)
	}
	sort.Strings(formats)

	paths := make([]string, 0, len(formats))
	for _, f := range formats {
		path := base + "." + f
		if f == pipeline.FormatJSON {
			path = base + ".layout.json"
		}
		if err := os.WriteFile(path, artifacts[f], 0o644); err != nil {
			return paths, fmt.Errorf("write %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

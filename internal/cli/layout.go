package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/mosaic/pkg/pipeline"
)

// layoutCommand computes a layout document from an item manifest.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		lf      layoutFlags
		output  string
		title   string
		probe   bool
		noCache bool
		refresh bool
	)

	cmd := &cobra.Command{
		Use:   "layout [manifest]",
		Short: "Compute a justified layout from an item manifest",
		Long: `Compute a justified layout from an item manifest.

The manifest lists items with their dimensions or aspect ratios, as JSON,
TOML or YAML. The output is a layout.json document with the geometry of every
item that can be rendered with 'mosaic render'.

Results are cached; use --refresh to recompute.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, cfg, err := c.resolveLayout(cmd.Flags(), &lf)
			if err != nil {
				return err
			}
			opts := pipeline.Options{
				Manifest: args[0],
				Title:    title,
				Probe:    probe,
				Refresh:  refresh,
				Width:    f.Layout.ContainerWidth,
				Config:   cfg,
				Formats:  []string{pipeline.FormatJSON},
				Logger:   c.Logger,
			}
			runner, err := c.newRunner(cmd.Context(), f, noCache)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()
			return c.runLayout(cmd.Context(), runner, opts, output)
		},
	}

	lf.register(cmd.Flags())
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.layout.json)")
	cmd.Flags().StringVar(&title, "title", "", "document title (default: manifest title)")
	cmd.Flags().BoolVar(&probe, "probe", false, "read image headers for items without dimensions")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "recompute even if cached")

	return cmd
}

// runLayout executes the pipeline and writes the layout document.
func (c *CLI) runLayout(ctx context.Context, runner *pipeline.Runner, opts pipeline.Options, output string) error {
	prog := newProgress(c.Logger)
	spinner := newSpinnerWithContext(ctx, "Computing layout...")
	spinner.Start()

	result, err := runner.Execute(ctx, opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return err
	}
	spinner.Stop()
	if ctx.Err() != nil {
		return ctx.Err()
	}

	if output == "" {
		output = outputBase(opts.Manifest) + ".layout.json"
	}
	if err := os.WriteFile(output, result.Artifacts[pipeline.FormatJSON], 0o644); err != nil {
		return fmt.Errorf("write output %s: %w", output, err)
	}
	prog.done("layout written", "path", output)

	printSuccess("Layout complete")
	printFile(output)
	printStats(layoutStats{
		items:  result.Stats.Items,
		rows:   result.Stats.Rows,
		hidden: result.Stats.Hidden,
		cached: result.CacheInfo.LayoutHit,
	})
	if result.Layout.Fallback {
		printWarning("No row fit under the maximum height; items were laid out in a single row")
	}
	printNewline()
	printNextStep("Render", "mosaic render "+output)
	return nil
}

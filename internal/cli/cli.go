// Package cli implements the mosaic command-line interface.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/matzehuels/mosaic/pkg/buildinfo"
	"github.com/matzehuels/mosaic/pkg/cache"
	"github.com/matzehuels/mosaic/pkg/config"
	"github.com/matzehuels/mosaic/pkg/errors"
	"github.com/matzehuels/mosaic/pkg/mosaic"
	"github.com/matzehuels/mosaic/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "mosaic"

	// configFileName is looked up in the working directory when --config
	// is not given.
	configFileName = "mosaic.toml"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// configPath is set by the --config flag.
	configPath string

	// cachePrefix is set by the --cache-prefix flag and overrides the
	// config file's [cache] prefix.
	cachePrefix string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Mosaic arranges images into justified rows",
		Long: `Mosaic is a CLI tool for laying out images as a justified grid: every row
fills the container width exactly while keeping each image's aspect ratio and
staying close to a maximum row height.`,
		Version:      buildinfo.Get().Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "config file (default: ./"+configFileName+" if present)")
	root.PersistentFlags().StringVar(&c.cachePrefix, "cache-prefix", "", "namespace for cache keys")

	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.previewCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Configuration
// =============================================================================

// loadConfig reads the config file named by --config, or ./mosaic.toml
// when it exists. Without either, the built-in defaults are returned.
func (c *CLI) loadConfig() (config.File, error) {
	path := c.configPath
	if path == "" {
		if _, err := os.Stat(configFileName); err != nil {
			return config.Default(), nil
		}
		path = configFileName
	}
	f, err := config.Load(path)
	if err != nil {
		return f, err
	}
	c.Logger.Debug("loaded config", "path", path)
	return f, nil
}

// layoutFlags binds the layout settings shared by several commands.
// Only flags the user actually set override the config file.
type layoutFlags struct {
	width     float64
	maxHeight float64
	policy    string
	ratio     float64
	threshold float64
}

func (lf *layoutFlags) register(fs *pflag.FlagSet) {
	def := config.Default()
	fs.Float64VarP(&lf.width, "width", "w", def.Layout.ContainerWidth, "container width")
	fs.Float64Var(&lf.maxHeight, "max-row-height", def.Layout.MaxRowHeight, "maximum row height")
	fs.StringVarP(&lf.policy, "policy", "p", def.Layout.OverflowPolicy, "overflow policy: skip, crop, oversize")
	fs.Float64Var(&lf.ratio, "default-ratio", def.Layout.DefaultAspectRatio, "aspect ratio for items without one")
	fs.Float64Var(&lf.threshold, "high-res-threshold", def.Assets.HighResWidthThreshold, "width above which high-res assets are used (0 disables)")
}

// apply overrides f with every flag that was set on the command line and
// validates the result.
func (lf *layoutFlags) apply(fs *pflag.FlagSet, f *config.File) error {
	if fs.Changed("width") {
		f.Layout.ContainerWidth = lf.width
	}
	if fs.Changed("max-row-height") {
		f.Layout.MaxRowHeight = lf.maxHeight
	}
	if fs.Changed("policy") {
		p, err := mosaic.ParseOverflowPolicy(lf.policy)
		if err != nil {
			return err
		}
		f.Layout.OverflowPolicy = string(p)
	}
	if fs.Changed("default-ratio") {
		f.Layout.DefaultAspectRatio = lf.ratio
	}
	if fs.Changed("high-res-threshold") {
		f.Assets.HighResWidthThreshold = lf.threshold
	}
	if err := f.Validate(); err != nil {
		return err
	}
	return pipeline.ValidateWidth(f.Layout.ContainerWidth)
}

// resolveLayout loads the config file and applies the layout flags.
func (c *CLI) resolveLayout(fs *pflag.FlagSet, lf *layoutFlags) (config.File, mosaic.Config, error) {
	f, err := c.loadConfig()
	if err != nil {
		return f, mosaic.Config{}, err
	}
	if err := lf.apply(fs, &f); err != nil {
		return f, mosaic.Config{}, err
	}
	cfg, err := f.ToMosaic()
	return f, cfg, err
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner backed by the configured cache.
func (c *CLI) newRunner(ctx context.Context, f config.File, noCache bool) (*pipeline.Runner, error) {
	cc, err := c.openCache(ctx, f, noCache)
	if err != nil {
		return nil, err
	}
	runner := pipeline.NewRunner(cc, c.newKeyer(f), c.Logger)
	runner.TTL = f.Cache.TTL.Duration
	return runner, nil
}

// newKeyer returns the default keyer, scoped when a cache prefix is set.
// A prefix without a trailing colon gets one.
func (c *CLI) newKeyer(f config.File) cache.Keyer {
	prefix := f.Cache.Prefix
	if c.cachePrefix != "" {
		prefix = c.cachePrefix
	}
	if prefix == "" {
		return cache.NewDefaultKeyer()
	}
	if !strings.HasSuffix(prefix, ":") {
		prefix += ":"
	}
	c.Logger.Debug("scoped cache keys", "prefix", prefix)
	return cache.NewScopedKeyer(cache.NewDefaultKeyer(), prefix)
}

func (c *CLI) openCache(ctx context.Context, f config.File, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	opts := cache.Options{
		Backend:   f.Cache.Backend,
		Dir:       f.Cache.Dir,
		RedisAddr: f.Cache.RedisAddr,
		RedisDB:   f.Cache.RedisDB,
	}
	if opts.Backend == cache.BackendFile && opts.Dir == "" {
		dir, err := cacheDir()
		if err != nil {
			c.Logger.Warn("no cache directory, caching disabled", "err", err)
			return cache.NewNullCache(), nil
		}
		opts.Dir = dir
	}
	cc, err := cache.Open(ctx, opts)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "open %s cache", opts.Backend)
	}
	return cc, nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/mosaic/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// =============================================================================
// Options Helpers
// =============================================================================

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// outputBase strips known manifest and layout suffixes from an input path.
func outputBase(input string) string {
	base := strings.TrimSuffix(input, ".layout.json")
	if base != input {
		return base
	}
	return strings.TrimSuffix(input, filepath.Ext(input))
}

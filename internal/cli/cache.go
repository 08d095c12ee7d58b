package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/mosaic/pkg/cache"
	"github.com/matzehuels/mosaic/pkg/config"
)

// cacheCommand manages the layout cache.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the layout cache",
	}
	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())
	return cmd
}

// cacheClearCommand removes every entry from the configured backend.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all cached layouts, artifacts and documents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := c.loadConfig()
			if err != nil {
				return err
			}
			if f.Cache.Backend == config.CacheNone {
				printInfo("Caching is disabled")
				return nil
			}

			cc, err := c.openCache(cmd.Context(), f, false)
			if err != nil {
				return err
			}
			defer cc.Close()

			clearer, ok := cc.(cache.Clearer)
			if !ok {
				printInfo("Cache is empty")
				return nil
			}
			n, err := clearer.Clear(cmd.Context())
			if err != nil {
				return fmt.Errorf("clear cache: %w", err)
			}

			printSuccess("Cleared %d cached entries", n)
			if fc, ok := cc.(*cache.FileCache); ok {
				printDetail("Directory: %s", fc.Dir())
			} else {
				printDetail("Backend: %s", f.Cache.Backend)
			}
			return nil
		},
	}
}

// cachePathCommand prints where the file backend stores entries.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := c.loadConfig()
			if err != nil {
				return err
			}
			dir := f.Cache.Dir
			if dir == "" {
				if dir, err = cacheDir(); err != nil {
					return fmt.Errorf("get cache dir: %w", err)
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), dir)
			return nil
		},
	}
}

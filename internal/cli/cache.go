package cli

import (
	"fmt"

	"github.com/ppiankov/schoolscope/internal/cache"
	"github.com/spf13/cobra"
)

// cacheCmd represents the cache command
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the search and page cache",
}

var cachePruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove expired cache entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := diskCache()
		if err != nil {
			return err
		}
		n, err := c.Prune()
		if err != nil {
			return err
		}
		fmt.Printf("✓ Removed %d expired entries\n", n)
		return nil
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every cache entry",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := diskCache()
		if err != nil {
			return err
		}
		if err := c.Clear(); err != nil {
			return err
		}
		fmt.Println("✓ Cache cleared")
		return nil
	},
}

func diskCache() (*cache.DiskCache, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	root := cfg.Workspace.Root
	if root == "" {
		root = "."
	}
	return cache.NewDiskCache(resolvePath(root, cfg.Cache.Dir), cfg.Cache.DiskTTL), nil
}

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cachePruneCmd)
	cacheCmd.AddCommand(cacheClearCmd)
}

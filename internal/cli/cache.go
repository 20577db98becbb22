package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/glintbot/glint/internal/cache"
	"github.com/glintbot/glint/internal/config"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the model-output cache",
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cache statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := openCache()
		if err != nil {
			return err
		}
		data, err := json.MarshalIndent(c.GetStats(), "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(os.Stdout, string(data))
		return nil
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all cached model responses",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := openCache()
		if err != nil {
			return err
		}
		if err := c.Clear(); err != nil {
			exitCode = ExitRuntimeError
			return fmt.Errorf("clearing cache: %w", err)
		}
		fmt.Fprintln(os.Stdout, "Cache cleared.")
		return nil
	},
}

func openCache() (*cache.Cache, error) {
	root, err := repoRoot()
	if err != nil {
		exitCode = ExitUsageError
		return nil, err
	}
	cfg, err := config.Load(root, nil, nil)
	if err != nil {
		exitCode = ExitRuntimeError
		return nil, err
	}
	return cache.Open(config.CachePath(root), time.Duration(cfg.Cache.TTLSeconds)*time.Second, true), nil
}

func init() {
	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cacheClearCmd)
}

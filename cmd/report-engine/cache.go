// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/report-engine/internal/cache"
	"github.com/pdiddy/report-engine/pkg/types"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and maintain the search result cache",
	Long: `Cache manages the durable search result cache. Use subcommands to show
performance statistics, remove expired entries, or clear the cache entirely.`,
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cache performance statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, cleanup, err := openPersistentCache(loadConfig())
		if err != nil {
			return err
		}
		defer cleanup()

		fmt.Println(c.Report())
		return nil
	},
}

var cachePruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove expired entries from the cache",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, cleanup, err := openPersistentCache(loadConfig())
		if err != nil {
			return err
		}
		defer cleanup()

		removed := c.ClearExpired()
		fmt.Printf("Removed %d expired entries\n", removed)
		return nil
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all cached entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, cleanup, err := openPersistentCache(loadConfig())
		if err != nil {
			return err
		}
		defer cleanup()

		if err := c.Clear(); err != nil {
			return err
		}
		fmt.Println("Cache cleared")
		return nil
	},
}

var cacheExportOutput string

var cacheExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export cached entries as YAML",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, cleanup, err := openPersistentCache(loadConfig())
		if err != nil {
			return err
		}
		defer cleanup()

		data, err := yaml.Marshal(c.Entries())
		if err != nil {
			return fmt.Errorf("encoding cache entries: %w", err)
		}
		if cacheExportOutput == "" {
			_, err = cmd.OutOrStdout().Write(data)
			return err
		}
		return os.WriteFile(cacheExportOutput, data, 0o644)
	},
}

// openCache opens the cache as configured for report generation: nil when
// caching is disabled, memory-only when persistence is off.
func openCache(cfg types.ReportConfig) (*cache.Cache, func(), error) {
	if !cfg.Cache.Enabled {
		return nil, func() {}, nil
	}
	var storage cache.Storage
	cleanup := func() {}
	if cfg.Cache.Persist {
		s, err := cache.NewSQLiteStore(cfg.Cache.Dir)
		if err != nil {
			return nil, nil, err
		}
		storage = s
		cleanup = func() { s.Close() }
	}
	c, err := cache.New(cfg.Cache, storage)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return c, cleanup, nil
}

// openPersistentCache always opens the durable store so the maintenance
// subcommands operate on what is actually on disk.
func openPersistentCache(cfg types.ReportConfig) (*cache.Cache, func(), error) {
	s, err := cache.NewSQLiteStore(cfg.Cache.Dir)
	if err != nil {
		return nil, nil, err
	}
	c, err := cache.New(cfg.Cache, s)
	if err != nil {
		s.Close()
		return nil, nil, err
	}
	return c, func() { s.Close() }, nil
}

func init() {
	cacheExportCmd.Flags().StringVarP(&cacheExportOutput, "output", "o", "",
		"write the export to a file instead of stdout")

	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cacheExportCmd)
	cacheCmd.AddCommand(cachePruneCmd)
	cacheCmd.AddCommand(cacheClearCmd)

	rootCmd.AddCommand(cacheCmd)
}

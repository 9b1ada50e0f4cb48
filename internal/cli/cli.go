// Package cli implements the voltcluster command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/voltcluster/voltcluster/pkg/buildinfo"
	"github.com/voltcluster/voltcluster/pkg/cache"
	"github.com/voltcluster/voltcluster/pkg/config"
	"github.com/voltcluster/voltcluster/pkg/pipeline"
	"github.com/voltcluster/voltcluster/pkg/store"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "voltcluster"

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
	Config config.Config
}

// New creates a new CLI instance with a default logger and configuration
// loaded from disk.
func New(w io.Writer, level log.Level) *CLI {
	c := &CLI{
		Logger: newLogger(w, level),
	}
	cfg, err := config.Load()
	if err != nil {
		c.Logger.Warn("falling back to default config", "error", err)
		cfg = config.Default()
	}
	c.Config = cfg
	return c
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "voltcluster",
		Short:        "Voltcluster detects communities in weighted graphs",
		Long:         `Voltcluster is a CLI tool for community detection in undirected weighted graphs using the voltage method: each candidate community is found by treating the graph as an electric circuit and grouping nodes by their potential.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	// Register all subcommands
	root.AddCommand(c.clusterCommand())
	root.AddCommand(c.communityCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(noCache bool) (*pipeline.Runner, error) {
	ca, err := c.newCache(noCache)
	if err != nil {
		return nil, err
	}
	runner := pipeline.NewRunner(ca, store.NewMemoryStore(), c.Logger)
	if c.Config.Cache.TTLHours > 0 {
		runner.TTL = time.Duration(c.Config.Cache.TTLHours) * time.Hour
	}
	return runner, nil
}

func (c *CLI) newCache(noCache bool) (cache.Cache, error) {
	if noCache || c.Config.Cache.Backend == "none" {
		return cache.NewNullCache(), nil
	}
	if c.Config.Cache.Backend == "redis" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return cache.NewRedisCache(ctx, c.Config.Cache.Redis)
	}
	dir := c.Config.Cache.Dir
	if dir == "" {
		var err error
		dir, err = cacheDir()
		if err != nil {
			return cache.NewNullCache(), nil
		}
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		return nil, err
	}
	return fc, nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/voltcluster/).
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

// applyConfigDefaults fills clustering options left at their zero value from
// the loaded config file.
func (c *CLI) applyConfigDefaults(opts *pipeline.Options) {
	if opts.Candidates == 0 {
		opts.Candidates = c.Config.Defaults.Candidates
	}
	if opts.Clusters == 0 {
		opts.Clusters = c.Config.Defaults.Clusters
	}
	if !opts.Seeded && c.Config.Defaults.Seeded {
		opts.Seeded = true
		opts.Seed = c.Config.Defaults.Seed
	}
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatJSON}
	}
	return strings.Split(s, ",")
}

// outputPath derives the output file path for a format. An explicit output
// is used verbatim for single-format runs; with multiple formats it serves
// as the base path. Without an output the input name is reused.
func outputPath(output, input, format string, multi bool) string {
	if output != "" {
		if !multi {
			return output
		}
		return fmt.Sprintf("%s.%s", strings.TrimSuffix(output, filepath.Ext(output)), format)
	}
	base := strings.TrimSuffix(input, filepath.Ext(input))
	return fmt.Sprintf("%s_clusters.%s", base, format)
}

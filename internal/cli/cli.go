// Package cli implements the fluidc command-line interface.
//
// # Commands
//
//   - detect: partition a graph into k communities
//   - trials: run independent seeds and rank them by modularity
//   - serve: run the HTTP API
//   - history: list, show and delete recorded runs
//   - cache: manage the result cache
//   - config: print the effective configuration
//   - completion: generate shell completions
//
// All commands support --verbose (-v) for debug-level logging and
// --config for an alternative configuration file.
package cli

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/fluidc/internal/config"
	"github.com/matzehuels/fluidc/pkg/buildinfo"
	"github.com/matzehuels/fluidc/pkg/cache"
	"github.com/matzehuels/fluidc/pkg/history"
	"github.com/matzehuels/fluidc/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "fluidc"

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

	configPath string
	cfg        *config.Config
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
		Short: "fluidc detects communities with competing fluids",
		Long: `fluidc partitions undirected graphs into k communities with the FluidC
algorithm and its density-weighted FluidC+ refinement.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/fluidc/config.toml)")

	root.AddCommand(c.detectCommand())
	root.AddCommand(c.trialsCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.historyCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// config loads the configuration file once per process.
func (c *CLI) config() (*config.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return nil, err
	}
	c.cfg = cfg
	return cfg, nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner from the config file. Unreachable
// backends are logged and replaced by their no-op equivalents.
func (c *CLI) newRunner(ctx context.Context, noCache, noHistory bool) (*pipeline.Runner, error) {
	cfg, err := c.config()
	if err != nil {
		return nil, err
	}
	store, keyer := c.openCache(ctx, cfg.Cache, noCache)

	var runs history.Store
	if !noHistory {
		runs = c.openHistory(ctx, cfg.History)
	}
	return pipeline.NewRunner(store, keyer, runs, c.Logger), nil
}

func (c *CLI) openCache(ctx context.Context, cfg config.CacheConfig, noCache bool) (cache.Cache, cache.Keyer) {
	keyer := cache.NewDefaultKeyer()
	if cfg.Namespace != "" {
		keyer = cache.NewScopedKeyer(keyer, cfg.Namespace)
	}
	if noCache || cfg.Disabled {
		return cache.NewNullCache(), keyer
	}

	if cfg.RedisURL != "" {
		rc, err := cache.NewRedisCache(ctx, cfg.RedisURL)
		if err != nil {
			c.Logger.Warn("redis cache unavailable, caching disabled", "error", err)
			return cache.NewNullCache(), keyer
		}
		c.Logger.Debug("using redis cache")
		return rc, keyer
	}

	dir, err := cacheDir(cfg)
	if err != nil {
		return cache.NewNullCache(), keyer
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		c.Logger.Warn("file cache unavailable, caching disabled", "error", err)
		return cache.NewNullCache(), keyer
	}
	return fc, keyer
}

func (c *CLI) openHistory(ctx context.Context, cfg config.HistoryConfig) history.Store {
	if cfg.Disabled {
		return nil
	}
	if cfg.MongoURI != "" {
		ms, err := history.NewMongoStore(ctx, cfg.MongoURI, cfg.Database)
		if err != nil {
			c.Logger.Warn("mongo history unavailable, history disabled", "error", err)
			return nil
		}
		c.Logger.Debug("using mongo history", "database", cfg.Database)
		return ms
	}
	fs, err := history.NewFileStore(cfg.Dir)
	if err != nil {
		c.Logger.Warn("history unavailable", "error", err)
		return nil
	}
	return fs
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the configured cache directory, defaulting to
// $XDG_CACHE_HOME/fluidc.
func cacheDir(cfg config.CacheConfig) (string, error) {
	if cfg.Dir != "" {
		return cfg.Dir, nil
	}
	return cache.DefaultDir()
}

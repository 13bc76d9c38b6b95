package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/towersets/pkg/cache"
	"github.com/matzehuels/towersets/pkg/config"
	"github.com/matzehuels/towersets/pkg/errors"
	"github.com/matzehuels/towersets/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "towersets"
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

	// configPath is set by --config; empty means config.DefaultPath.
	configPath string
	cfg        config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		cfg:    config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// loadConfig reads the config file into c.cfg.
func (c *CLI) loadConfig() error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.cfg = cfg
	return nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	cc, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	r := pipeline.NewRunner(cc, nil, c.Logger)
	r.TTL = c.cfg.Cache.TTL.Duration
	return r, nil
}

// newCache opens the configured backend. Remote backends that cannot be
// reached are logged and replaced by a null cache.
func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	cc := c.cfg.Cache
	switch cc.Backend {
	case config.BackendNone:
		return cache.NewNullCache(), nil
	case config.BackendRedis:
		rc, err := cache.NewRedisCache(ctx, cc.RedisAddr, cc.RedisPrefix)
		if err != nil {
			c.Logger.Warn("redis cache unavailable, continuing without cache", "addr", cc.RedisAddr, "err", err)
			return cache.NewNullCache(), nil
		}
		return rc, nil
	case config.BackendMongo:
		mc, err := cache.NewMongoCache(ctx, cc.MongoURI, cc.MongoDatabase)
		if err != nil {
			c.Logger.Warn("mongo cache unavailable, continuing without cache", "database", cc.MongoDatabase, "err", err)
			return cache.NewNullCache(), nil
		}
		return mc, nil
	default:
		dir, err := c.cacheDir()
		if err != nil {
			return cache.NewNullCache(), nil
		}
		return cache.NewFileCache(dir)
	}
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the file cache directory: the configured one, or the XDG
// default.
func (c *CLI) cacheDir() (string, error) {
	if c.cfg.Cache.Dir != "" {
		return c.cfg.Cache.Dir, nil
	}
	return cacheDir()
}

// cacheDir returns the cache directory using XDG standard (~/.cache/towersets/).
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

// countFlags are shared by sequence, table and verify.
type countFlags struct {
	sizes   string
	workers int
	noCache bool
	refresh bool
}

func (f *countFlags) register(cmd *cobra.Command, cacheable bool) {
	cmd.Flags().StringVar(&f.sizes, "sizes", "", "comma-separated level sizes (default from config, else 1,2)")
	cmd.Flags().IntVarP(&f.workers, "workers", "w", 0, "parallel rows per block count (default from config)")
	if cacheable {
		cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable the result cache")
		cmd.Flags().BoolVar(&f.refresh, "refresh", false, "recompute and overwrite cached results")
	}
}

// options resolves flags and the optional N argument over the config.
func (c *CLI) options(cmd *cobra.Command, args []string, f *countFlags) (pipeline.Options, error) {
	opts := pipeline.Options{
		MaxN:       c.cfg.MaxN,
		LevelSizes: c.cfg.LevelSizes,
		Workers:    c.cfg.Workers,
		Refresh:    f.refresh,
	}
	if len(args) > 0 {
		n, err := parseN(args[0])
		if err != nil {
			return opts, err
		}
		opts.MaxN = n
	}
	if cmd.Flags().Changed("sizes") {
		sizes, err := errors.ParseLevelSizes(f.sizes)
		if err != nil {
			return opts, err
		}
		opts.LevelSizes = sizes
	}
	if cmd.Flags().Changed("workers") {
		opts.Workers = f.workers
	}
	return opts, opts.ValidateAndSetDefaults()
}

func parseN(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, errors.New(errors.ErrCodeInvalidArgument, "N must be an integer, got %q", s)
	}
	return n, errors.ValidateMaxN(n)
}

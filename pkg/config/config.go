// Package config loads towersets settings from a TOML file.
//
// The file is optional: a missing file yields [Default]. Command-line flags
// override file values, so every field here is also a default for a flag.
//
// Example config.toml:
//
//	max_n = 30
//	level_sizes = [1, 2]
//	workers = 4
//
//	[cache]
//	backend = "redis"
//	ttl = "720h"
//	redis_addr = "localhost:6379"
//
//	[simulate]
//	blocks = 6
//	samples = 10000
//	rounds = 2
//	growth = 10
//
//	[server]
//	addr = ":8080"
//	max_n = 120
//	max_concurrent = 4
package config

import (
	"io"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/towersets/pkg/errors"
)

const appName = "towersets"

// Cache backends.
const (
	BackendFile  = "file"
	BackendNone  = "none"
	BackendRedis = "redis"
	BackendMongo = "mongo"
)

// Duration is a time.Duration written as a Go duration string ("720h").
type Duration struct {
	time.Duration
}

// UnmarshalText parses a duration string.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText formats the duration.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Config is the full configuration.
type Config struct {
	MaxN       int            `toml:"max_n"`
	LevelSizes []int          `toml:"level_sizes"`
	Workers    int            `toml:"workers"`
	Cache      CacheConfig    `toml:"cache"`
	Simulate   SimulateConfig `toml:"simulate"`
	Server     ServerConfig   `toml:"server"`
}

// CacheConfig selects and configures the result cache.
type CacheConfig struct {
	Backend       string   `toml:"backend"`
	TTL           Duration `toml:"ttl"`
	Dir           string   `toml:"dir,omitempty"`
	RedisAddr     string   `toml:"redis_addr,omitempty"`
	RedisPrefix   string   `toml:"redis_prefix,omitempty"`
	MongoURI      string   `toml:"mongo_uri,omitempty"`
	MongoDatabase string   `toml:"mongo_database,omitempty"`
}

// SimulateConfig holds Monte-Carlo defaults.
type SimulateConfig struct {
	Blocks  int    `toml:"blocks"`
	Samples int    `toml:"samples"`
	Rounds  int    `toml:"rounds"`
	Growth  int    `toml:"growth"`
	Seed    uint64 `toml:"seed,omitempty"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr string `toml:"addr"`
	// MaxN caps the block count a request may ask for; the bounded table is
	// cubic in it, so n=200 allocates several GB per request.
	MaxN int `toml:"max_n"`
	// MaxConcurrent bounds the requests computing at once.
	MaxConcurrent int `toml:"max_concurrent"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		MaxN:       20,
		LevelSizes: []int{1, 2},
		Workers:    1,
		Cache: CacheConfig{
			Backend:       BackendFile,
			TTL:           Duration{30 * 24 * time.Hour},
			RedisAddr:     "localhost:6379",
			RedisPrefix:   appName + ":",
			MongoURI:      "mongodb://localhost:27017",
			MongoDatabase: appName,
		},
		Simulate: SimulateConfig{
			Blocks:  6,
			Samples: 10000,
			Rounds:  2,
			Growth:  10,
		},
		Server: ServerConfig{
			Addr:          ":8080",
			MaxN:          120,
			MaxConcurrent: 4,
		},
	}
}

// DefaultPath returns the XDG config path (~/.config/towersets/config.toml).
func DefaultPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// Load reads the file at path over the defaults. An empty path means
// DefaultPath. A missing file is not an error; unknown keys are.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return cfg, nil
		}
		path = p
	}

	md, err := toml.DecodeFile(path, &cfg)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return cfg, errors.New(errors.ErrCodeInvalidConfig, "unknown key %q in %s", undecoded[0].String(), path)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks field ranges.
func (c *Config) Validate() error {
	if err := errors.ValidateMaxN(c.MaxN); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "max_n")
	}
	if _, err := errors.ValidateLevelSizes(c.LevelSizes); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "level_sizes")
	}
	if c.Workers < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "workers must be >= 0, got %d", c.Workers)
	}
	backends := []string{BackendFile, BackendNone, BackendRedis, BackendMongo}
	if !slices.Contains(backends, c.Cache.Backend) {
		return errors.New(errors.ErrCodeInvalidConfig, "unknown cache backend %q (want one of %v)", c.Cache.Backend, backends)
	}
	if c.Cache.TTL.Duration < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "cache ttl must be >= 0")
	}
	if c.Simulate.Samples < 0 || c.Simulate.Rounds < 0 || c.Simulate.Growth < 0 || c.Simulate.Blocks < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "simulate values must be >= 0")
	}
	if c.Server.MaxN < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "server max_n must be >= 0")
	}
	if c.Server.MaxConcurrent < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "server max_concurrent must be >= 0")
	}
	return nil
}

// Write encodes c as TOML.
func (c Config) Write(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}

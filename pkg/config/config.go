// Package config loads voltcluster configuration from a TOML file.
//
// Every field has a sensible default, so a missing config file is not an
// error. The file path is resolved from the VOLTCLUSTER_CONFIG environment
// variable, falling back to voltcluster.toml in the working directory.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// EnvConfigPath overrides the config file location when set.
const EnvConfigPath = "VOLTCLUSTER_CONFIG"

const defaultPath = "voltcluster.toml"

// Config holds the full voltcluster configuration.
type Config struct {
	Defaults Defaults `toml:"defaults"`
	Cache    Cache    `toml:"cache"`
	Server   Server   `toml:"server"`
	Store    Store    `toml:"store"`
}

// Defaults sets the clustering parameters used when flags are omitted.
type Defaults struct {
	Candidates int    `toml:"candidates"`
	Clusters   int    `toml:"clusters"`
	Seed       uint64 `toml:"seed"`
	Seeded     bool   `toml:"seeded"`
}

// Cache configures the result cache backend.
type Cache struct {
	// Backend is one of "file", "redis" or "none".
	Backend string `toml:"backend"`
	Dir     string `toml:"dir"`
	Redis   string `toml:"redis"`
	// TTLHours is the cache entry lifetime. Zero means no expiry.
	TTLHours int `toml:"ttl_hours"`
}

// Server configures the HTTP API.
type Server struct {
	Addr string `toml:"addr"`
	// TimeoutSeconds bounds a single clustering request.
	TimeoutSeconds int `toml:"timeout_seconds"`
}

// Store configures run persistence.
type Store struct {
	// Backend is one of "memory" or "mongo".
	Backend  string `toml:"backend"`
	MongoURI string `toml:"mongo_uri"`
	MongoDB  string `toml:"mongo_db"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Defaults: Defaults{
			Candidates: 20,
			Clusters:   2,
		},
		Cache: Cache{
			Backend:  "file",
			TTLHours: 24,
		},
		Server: Server{
			Addr:           ":8080",
			TimeoutSeconds: 60,
		},
		Store: Store{
			Backend: "memory",
			MongoDB: "voltcluster",
		},
	}
}

// Load reads the config file if it exists and merges it over the defaults.
func Load() (Config, error) {
	path := os.Getenv(EnvConfigPath)
	explicit := path != ""
	if !explicit {
		path = defaultPath
	}

	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks cross-field constraints.
func (c Config) Validate() error {
	switch c.Cache.Backend {
	case "file", "redis", "none":
	default:
		return fmt.Errorf("unknown cache backend %q", c.Cache.Backend)
	}
	if c.Cache.Backend == "redis" && c.Cache.Redis == "" {
		return fmt.Errorf("cache backend redis requires cache.redis address")
	}
	switch c.Store.Backend {
	case "memory", "mongo":
	default:
		return fmt.Errorf("unknown store backend %q", c.Store.Backend)
	}
	if c.Store.Backend == "mongo" && c.Store.MongoURI == "" {
		return fmt.Errorf("store backend mongo requires store.mongo_uri")
	}
	if c.Defaults.Candidates < 1 {
		return fmt.Errorf("defaults.candidates must be at least 1")
	}
	if c.Defaults.Clusters < 1 {
		return fmt.Errorf("defaults.clusters must be at least 1")
	}
	return nil
}

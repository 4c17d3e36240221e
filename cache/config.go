package cache

import (
	"io"
	"time"

	"github.com/goliatone/go-repository-pager/internal/cacheinfra"
)

// Backends accepted in Config.Backend.
const (
	BackendMemory = cacheinfra.BackendMemory
	BackendPebble = cacheinfra.BackendPebble
)

// ManagedStore is a Store built by NewStore. The caller owns it and must
// close it.
type ManagedStore interface {
	Store
	Invalidator
	io.Closer
}

// Config exposes cache configuration options for consumers of the cache package.
//
// The yaml and env tags let the struct be loaded as part of a larger
// configuration file.
type Config struct {
	Backend            string        `yaml:"backend" env:"BACKEND"`
	Capacity           int           `yaml:"capacity" env:"CAPACITY"`
	NumShards          int           `yaml:"num_shards" env:"NUM_SHARDS"`
	TTL                time.Duration `yaml:"ttl" env:"TTL"`
	EvictionPercentage int           `yaml:"eviction_percentage" env:"EVICTION_PERCENTAGE"`
	EvictionInterval   time.Duration `yaml:"eviction_interval" env:"EVICTION_INTERVAL"`
	Path               string        `yaml:"path" env:"PATH"`
}

// DefaultConfig returns a Config populated with sensible defaults.
func DefaultConfig() Config {
	return convertFromInternal(cacheinfra.DefaultConfig())
}

// Validate checks whether the configuration values are valid.
func (c Config) Validate() error {
	return c.toInternal().Validate()
}

// NewStore constructs the store selected by cfg.Backend.
func NewStore(cfg Config) (ManagedStore, error) {
	return cacheinfra.NewStore(cfg.toInternal())
}

func (c Config) toInternal() cacheinfra.Config {
	return cacheinfra.Config{
		Backend:            c.Backend,
		Capacity:           c.Capacity,
		NumShards:          c.NumShards,
		TTL:                c.TTL,
		EvictionPercentage: c.EvictionPercentage,
		EvictionInterval:   c.EvictionInterval,
		Path:               c.Path,
	}
}

func convertFromInternal(cfg cacheinfra.Config) Config {
	return Config{
		Backend:            cfg.Backend,
		Capacity:           cfg.Capacity,
		NumShards:          cfg.NumShards,
		TTL:                cfg.TTL,
		EvictionPercentage: cfg.EvictionPercentage,
		EvictionInterval:   cfg.EvictionInterval,
		Path:               cfg.Path,
	}
}

package cacheinfra

import (
	"time"

	"github.com/cockroachdb/errors"
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const (
	// BackendMemory keeps entries in a sharded in-process sturdyc cache.
	BackendMemory = "memory"
	// BackendPebble keeps entries in a local pebble database that survives
	// restarts.
	BackendPebble = "pebble"
)

// Config holds the configuration for the cache store backends.
type Config struct {
	// Backend selects the store implementation: BackendMemory or BackendPebble.
	Backend string

	// Capacity defines the maximum number of entries that the memory
	// backend can store. Must be greater than 0.
	Capacity int

	// NumShards determines the number of cache shards for concurrent access.
	// Higher values improve concurrency but increase memory overhead.
	// Default: 256
	NumShards int

	// TTL is the time-to-live for cached entries, for both backends.
	TTL time.Duration

	// EvictionPercentage specifies what percentage of entries to evict
	// when the memory backend reaches its capacity. Must be between 1-100.
	EvictionPercentage int

	// EvictionInterval sets how often the memory backend checks for expired
	// entries. Zero value uses the sturdyc default.
	EvictionInterval time.Duration

	// Path is the pebble data directory. Required for BackendPebble.
	Path string
}

// DefaultConfig returns a Config with sensible defaults for most use cases.
func DefaultConfig() Config {
	return Config{
		Backend:            BackendMemory,
		Capacity:           10000,
		NumShards:          256,
		TTL:                5 * time.Minute,
		EvictionPercentage: 10,
	}
}

// Validate checks if the configuration values are valid.
func (c Config) Validate() error {
	memory := c.Backend == BackendMemory
	err := validation.ValidateStruct(&c,
		validation.Field(&c.Backend, validation.Required, validation.In(BackendMemory, BackendPebble)),
		validation.Field(&c.TTL, validation.Required, validation.Min(time.Nanosecond)),
		validation.Field(&c.Capacity, validation.When(memory, validation.Required, validation.Min(1))),
		validation.Field(&c.NumShards, validation.When(memory, validation.Required, validation.Min(1))),
		validation.Field(&c.EvictionPercentage, validation.When(memory, validation.Required, validation.Min(1), validation.Max(100))),
		validation.Field(&c.EvictionInterval, validation.Min(time.Duration(0))),
		validation.Field(&c.Path, validation.When(c.Backend == BackendPebble, validation.Required)),
	)
	if err != nil {
		return errors.Wrap(err, "cacheinfra: invalid config")
	}
	return nil
}

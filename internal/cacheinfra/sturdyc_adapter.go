package cacheinfra

import (
	"context"
	"strings"

	"github.com/viccon/sturdyc"
)

// sturdycStore wraps a sturdyc client holding encoded cache values.
type sturdycStore struct {
	client *sturdyc.Client[[]byte]
}

// NewSturdycStore creates a new in-memory store backed by sturdyc.
//
// Capacity, NumShards, TTL and EvictionPercentage are passed to sturdyc.New;
// EvictionInterval is applied as an option when set.
func NewSturdycStore(cfg Config) (*sturdycStore, error) {
	if cfg.Backend == "" {
		cfg.Backend = BackendMemory
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var options []sturdyc.Option
	if cfg.EvictionInterval > 0 {
		options = append(options, sturdyc.WithEvictionInterval(cfg.EvictionInterval))
	}

	client := sturdyc.New[[]byte](
		cfg.Capacity,
		cfg.NumShards,
		cfg.TTL,
		cfg.EvictionPercentage,
		options...,
	)

	return &sturdycStore{client: client}, nil
}

// Get returns a copy of the value stored under key.
func (s *sturdycStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	value, ok := s.client.Get(key)
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), value...), true, nil
}

// Set stores a copy of value so later mutation by the caller has no effect.
func (s *sturdycStore) Set(ctx context.Context, key string, value []byte) error {
	s.client.Set(key, append([]byte(nil), value...))
	return nil
}

// Delete removes a single entry.
func (s *sturdycStore) Delete(ctx context.Context, key string) error {
	s.client.Delete(key)
	return nil
}

// DeleteByPrefix removes all entries whose key starts with prefix.
func (s *sturdycStore) DeleteByPrefix(ctx context.Context, prefix string) error {
	for _, key := range s.client.ScanKeys() {
		if strings.HasPrefix(key, prefix) {
			s.client.Delete(key)
		}
	}
	return nil
}

// Size returns the number of entries currently held.
func (s *sturdycStore) Size() int {
	return s.client.Size()
}

// Close is a no-op; it lets the memory store be used where a closable
// store is expected.
func (s *sturdycStore) Close() error {
	return nil
}

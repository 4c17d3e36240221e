package cacheinfra

import (
	"context"

	"github.com/cockroachdb/errors"
)

// ManagedStore is the full contract of the stores built here.
type ManagedStore interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	DeleteByPrefix(ctx context.Context, prefix string) error
	Close() error
}

var (
	_ ManagedStore = (*sturdycStore)(nil)
	_ ManagedStore = (*pebbleStore)(nil)
)

// NewStore builds the store selected by cfg.Backend.
func NewStore(cfg Config) (ManagedStore, error) {
	switch cfg.Backend {
	case BackendMemory:
		store, err := NewSturdycStore(cfg)
		if err != nil {
			return nil, err
		}
		return store, nil
	case BackendPebble:
		store, err := NewPebbleStore(cfg)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, errors.Newf("cacheinfra: unknown backend %q", cfg.Backend)
	}
}

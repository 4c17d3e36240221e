package cacheinfra

import (
	"context"
	"encoding/binary"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/pebble"
)

// expiryLen is the size of the expiry header stored in front of each value.
const expiryLen = 8

// pebbleStore keeps cache entries in a local pebble database. Pebble has no
// TTL of its own, so every value is stored as an 8 byte big-endian unix-nano
// expiry followed by the payload; expired entries are dropped on read.
type pebbleStore struct {
	db  *pebble.DB
	ttl time.Duration
	now func() time.Time
}

// NewPebbleStore opens (or creates) the pebble database at cfg.Path.
func NewPebbleStore(cfg Config) (*pebbleStore, error) {
	if cfg.Backend == "" {
		cfg.Backend = BackendPebble
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	db, err := pebble.Open(cfg.Path, &pebble.Options{})
	if err != nil {
		return nil, errors.Wrapf(err, "cacheinfra: open pebble at %s", cfg.Path)
	}

	return &pebbleStore{db: db, ttl: cfg.TTL, now: time.Now}, nil
}

func (s *pebbleStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	raw, closer, err := s.db.Get([]byte(key))
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrapf(err, "cacheinfra: get %s", key)
	}
	defer closer.Close()

	if len(raw) < expiryLen {
		return nil, false, s.Delete(ctx, key)
	}

	expiresAt := int64(binary.BigEndian.Uint64(raw[:expiryLen]))
	if s.now().UnixNano() >= expiresAt {
		return nil, false, s.Delete(ctx, key)
	}

	return append([]byte(nil), raw[expiryLen:]...), true, nil
}

func (s *pebbleStore) Set(ctx context.Context, key string, value []byte) error {
	buf := make([]byte, expiryLen+len(value))
	binary.BigEndian.PutUint64(buf[:expiryLen], uint64(s.now().Add(s.ttl).UnixNano()))
	copy(buf[expiryLen:], value)

	if err := s.db.Set([]byte(key), buf, pebble.NoSync); err != nil {
		return errors.Wrapf(err, "cacheinfra: set %s", key)
	}
	return nil
}

func (s *pebbleStore) Delete(ctx context.Context, key string) error {
	if err := s.db.Delete([]byte(key), pebble.NoSync); err != nil {
		return errors.Wrapf(err, "cacheinfra: delete %s", key)
	}
	return nil
}

// DeleteByPrefix removes every key starting with prefix using a single range
// tombstone.
func (s *pebbleStore) DeleteByPrefix(ctx context.Context, prefix string) error {
	start := []byte(prefix)
	end := prefixUpperBound(start)
	if end == nil {
		return s.deleteFrom(start)
	}

	if err := s.db.DeleteRange(start, end, pebble.NoSync); err != nil {
		return errors.Wrapf(err, "cacheinfra: delete prefix %s", prefix)
	}
	return nil
}

// deleteFrom removes every key >= start. Only used when start has no upper
// bound (all 0xff bytes).
func (s *pebbleStore) deleteFrom(start []byte) error {
	iter, err := s.db.NewIter(&pebble.IterOptions{LowerBound: start})
	if err != nil {
		return errors.Wrap(err, "cacheinfra: iterate")
	}
	defer iter.Close()

	batch := s.db.NewBatch()
	for iter.First(); iter.Valid(); iter.Next() {
		if err := batch.Delete(append([]byte(nil), iter.Key()...), nil); err != nil {
			return errors.Wrap(err, "cacheinfra: delete")
		}
	}
	return batch.Commit(pebble.NoSync)
}

func (s *pebbleStore) Close() error {
	return s.db.Close()
}

// prefixUpperBound returns the smallest key greater than every key that
// starts with prefix, or nil when no such key exists.
func prefixUpperBound(prefix []byte) []byte {
	end := append([]byte(nil), prefix...)
	for i := len(end) - 1; i >= 0; i-- {
		if end[i] < 0xff {
			end[i]++
			return end[:i+1]
		}
	}
	return nil
}

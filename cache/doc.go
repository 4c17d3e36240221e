// Package cache provides the cache store contract, the value codec and key
// fingerprinting used by the paginated list layer.
//
// # Overview
//
// This package exports:
//
//   - Store: the byte oriented Get/Set contract the list layer consumes
//   - Invalidator: optional Delete/DeleteByPrefix support
//   - GetObject / SetObject: typed helpers over Store using msgpack
//   - Fingerprint: fixed length hex digest of a canonical value
//   - NewStore: the default stores (sturdyc in memory, pebble on disk)
//
// # Basic Usage
//
//	store, err := cache.NewStore(cache.DefaultConfig())
//	if err != nil {
//		return err
//	}
//	defer store.Close()
//
//	fp, err := cache.Fingerprint(canonicalKeyStruct)
//	key := cache.Key("articles", fp)
//
//	if err := cache.SetObject(ctx, store, key, page); err != nil {
//		return err
//	}
//	page, found, err := cache.GetObject[Page](ctx, store, key)
//
// # Fingerprints
//
// Fingerprint encodes the value with the same msgpack codec as cached values
// (json tag names, sorted map keys) and hashes it with xxhash64. The result is
// always FingerprintLen hex characters. Callers should hash explicit canonical
// structs, not arbitrary request objects, and include a version field so a
// change of shape produces new keys.
//
// # Expiry
//
// The store owns expiry. The memory backend evicts through sturdyc; the
// pebble backend stores an expiry header with every value and drops expired
// values on read.
package cache

package cache

import (
	"encoding/binary"
	"strings"

	"github.com/cespare/xxhash/v2"
	hex "github.com/tmthrgd/go-hex"
)

// KeySeparator defines the delimiter used between cache key segments.
const KeySeparator = "::"

// FingerprintLen is the length of every fingerprint returned by Fingerprint.
const FingerprintLen = 16

// Fingerprint hashes the canonical encoding of v into a fixed length hex
// string. v must have a deterministic encoding: structs and slices, or maps
// (whose keys are sorted by Marshal).
func Fingerprint(v any) (string, error) {
	data, err := Marshal(v)
	if err != nil {
		return "", err
	}

	var sum [8]byte
	binary.BigEndian.PutUint64(sum[:], xxhash.Sum64(data))
	return hex.EncodeToString(sum[:]), nil
}

// Key joins namespace segments and a fingerprint into a cache key.
func Key(parts ...string) string {
	return strings.Join(parts, KeySeparator)
}

// Namespace returns the prefix shared by every key under namespace, suitable
// for Invalidator.DeleteByPrefix.
func Namespace(namespace string) string {
	return namespace + KeySeparator
}

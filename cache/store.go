package cache

import (
	"bytes"
	"context"

	"github.com/cockroachdb/errors"
	"github.com/vmihailenco/msgpack/v5"
)

// ErrDecode is returned by GetObject when a stored value cannot be decoded
// into the requested type.
var ErrDecode = errors.New("cache: cannot decode stored value")

// Store is the byte oriented cache the list layer reads from and writes to.
// Expiry and eviction are the store's own policy.
type Store interface {
	// Get returns the value stored under key. found is false on a miss.
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Set(ctx context.Context, key string, value []byte) error
}

// Invalidator is implemented by stores that support explicit removal.
type Invalidator interface {
	Delete(ctx context.Context, key string) error
	DeleteByPrefix(ctx context.Context, prefix string) error
}

// Marshal encodes v with the codec used for every cached value. Struct
// fields are named by their json tags so cached payloads and API payloads
// share field names.
func Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetCustomStructTag("json")
	enc.SetSortMapKeys(true)
	if err := enc.Encode(v); err != nil {
		return nil, errors.Wrap(err, "cache: encode value")
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes data produced by Marshal into dst.
func Unmarshal(data []byte, dst any) error {
	dec := msgpack.NewDecoder(bytes.NewReader(data))
	dec.SetCustomStructTag("json")
	if err := dec.Decode(dst); err != nil {
		return errors.Join(ErrDecode, errors.Wrap(err, "cache: decode value"))
	}
	return nil
}

// GetObject is a typed wrapper around Store.Get.
//
// A store error is returned as is; a value that fails to decode is reported
// with an error wrapping ErrDecode and found set to false.
func GetObject[T any](ctx context.Context, store Store, key string) (T, bool, error) {
	var zero T

	data, found, err := store.Get(ctx, key)
	if err != nil || !found {
		return zero, false, err
	}

	var out T
	if err := Unmarshal(data, &out); err != nil {
		return zero, false, err
	}
	return out, true, nil
}

// SetObject encodes v and stores it under key.
func SetObject(ctx context.Context, store Store, key string, v any) error {
	data, err := Marshal(v)
	if err != nil {
		return err
	}
	return store.Set(ctx, key, data)
}

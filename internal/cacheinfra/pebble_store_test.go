package cacheinfra

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"
)

func newTestPebbleStore(t *testing.T, ttl time.Duration) *pebbleStore {
	t.Helper()
	store, err := NewPebbleStore(Config{
		TTL:  ttl,
		Path: filepath.Join(t.TempDir(), "pebble"),
	})
	if err != nil {
		t.Fatalf("failed to open pebble store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestPebbleStore_GetSet(t *testing.T) {
	ctx := context.Background()
	store := newTestPebbleStore(t, time.Minute)

	if _, found, err := store.Get(ctx, "missing"); found || err != nil {
		t.Fatalf("Get(missing) = %v, %v", found, err)
	}

	if err := store.Set(ctx, "articles::1", []byte("payload")); err != nil {
		t.Fatal(err)
	}
	got, found, err := store.Get(ctx, "articles::1")
	if err != nil || !found {
		t.Fatalf("Get() = %v, %v", found, err)
	}
	if string(got) != "payload" {
		t.Errorf("Get() = %q", got)
	}
}

func TestPebbleStore_Expiry(t *testing.T) {
	ctx := context.Background()
	store := newTestPebbleStore(t, time.Minute)

	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	if err := store.Set(ctx, "k", []byte("v")); err != nil {
		t.Fatal(err)
	}

	now = now.Add(59 * time.Second)
	if _, found, _ := store.Get(ctx, "k"); !found {
		t.Error("expected entry before TTL elapsed")
	}

	now = now.Add(time.Second)
	if _, found, _ := store.Get(ctx, "k"); found {
		t.Error("expected entry to expire once TTL elapsed")
	}

	// The expired entry is removed on read.
	if _, closer, err := store.db.Get([]byte("k")); err == nil {
		closer.Close()
		t.Error("expected expired entry to be deleted from pebble")
	}
}

func TestPebbleStore_DeleteByPrefix(t *testing.T) {
	ctx := context.Background()
	store := newTestPebbleStore(t, time.Minute)

	for _, k := range []string{"articles::1", "articles::2", "articlesx", "authors::1"} {
		if err := store.Set(ctx, k, []byte(k)); err != nil {
			t.Fatal(err)
		}
	}

	if err := store.DeleteByPrefix(ctx, "articles::"); err != nil {
		t.Fatal(err)
	}

	for k, want := range map[string]bool{
		"articles::1": false,
		"articles::2": false,
		"articlesx":   true,
		"authors::1":  true,
	} {
		if _, found, _ := store.Get(ctx, k); found != want {
			t.Errorf("Get(%s) found = %v, want %v", k, found, want)
		}
	}
}

func TestPebbleStore_Reopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "pebble")
	cfg := Config{TTL: time.Hour, Path: path}

	store, err := NewPebbleStore(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Set(ctx, "k", []byte("persisted")); err != nil {
		t.Fatal(err)
	}
	if err := store.Close(); err != nil {
		t.Fatal(err)
	}

	reopened, err := NewPebbleStore(cfg)
	if err != nil {
		t.Fatal(err)
	}
	defer reopened.Close()

	got, found, err := reopened.Get(ctx, "k")
	if err != nil || !found || string(got) != "persisted" {
		t.Errorf("Get() after reopen = %q, %v, %v", got, found, err)
	}
}

func TestPrefixUpperBound(t *testing.T) {
	tests := []struct {
		in   []byte
		want []byte
	}{
		{[]byte("abc"), []byte("abd")},
		{[]byte("ab\xff"), []byte("ac")},
		{[]byte("\xff\xff"), nil},
		{[]byte(""), nil},
	}

	for _, tt := range tests {
		if got := prefixUpperBound(tt.in); !bytes.Equal(got, tt.want) {
			t.Errorf("prefixUpperBound(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

package pagecache

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/goliatone/go-repository-pager/cache"
	"github.com/goliatone/go-repository-pager/paginate"
	"github.com/goliatone/go-repository-pager/query"
	"github.com/puzpuzpuz/xsync/v3"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
)

// ErrInvalidationUnsupported is returned when the bound store cannot delete
// entries.
var ErrInvalidationUnsupported = errors.New("pagecache: store does not support invalidation")

// Cached binds a list service to one cache store and remembers every page it
// writes so the pages can be dropped after the underlying rows change.
type Cached[T any] struct {
	service  *paginate.Service[T]
	store    cache.Store
	registry *xsync.MapOf[string, []string] // cache key -> tags
	logger   zerolog.Logger
}

// Option configures a Cached.
type Option func(*options)

type options struct {
	logger zerolog.Logger
}

func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// New returns a Cached serving service through store.
func New[T any](service *paginate.Service[T], store cache.Store, opts ...Option) *Cached[T] {
	o := options{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(&o)
	}

	return &Cached[T]{
		service:  service,
		store:    store,
		registry: xsync.NewMapOf[string, []string](),
		logger:   o.logger.With().Str("model", service.Config().Model()).Logger(),
	}
}

// List serves q through the cache. Pages written during the call are
// registered with the tags found in ctx. When the page was written by
// another call through c, such as the one a single-flight caller joined,
// the tags are added to that page.
func (c *Cached[T]) List(ctx context.Context, q query.PaginateQuery) (paginate.Paginated[T], error) {
	tags := cacheTagsFromContext(ctx)
	tracked := &trackingStore{
		Store: c.store,
		onSet: func(key string) { c.trackKey(key, tags) },
	}

	page, err := c.service.ListCached(ctx, q, tracked)
	if err != nil || len(tags) == 0 {
		return page, err
	}

	key, err := c.service.CacheKey(q)
	if err != nil {
		return page, nil
	}
	c.tagKey(key, tags)
	return page, nil
}

// ListUncached bypasses the page cache.
func (c *Cached[T]) ListUncached(ctx context.Context, q query.PaginateQuery, useQueryCache bool) (paginate.Paginated[T], error) {
	return c.service.List(ctx, q, useQueryCache)
}

// Mutate runs write and, when it succeeds, drops every cached page of the
// model. The write error is returned unchanged.
func (c *Cached[T]) Mutate(ctx context.Context, write func(ctx context.Context) error) error {
	if err := write(ctx); err != nil {
		return err
	}
	if err := c.Invalidate(ctx); err != nil {
		c.logger.Warn().Err(err).Msg("invalidate after write failed")
	}
	return nil
}

// Invalidate drops every cached page of the model, including pages written
// by other Cached values sharing the store, along with the model's query
// cache entries.
func (c *Cached[T]) Invalidate(ctx context.Context) error {
	inv, ok := c.store.(cache.Invalidator)
	if !ok {
		return ErrInvalidationUnsupported
	}

	model := c.service.Config().Model()
	for _, prefix := range []string{cache.Namespace(model), paginate.QueryCachePrefix(model)} {
		if err := inv.DeleteByPrefix(ctx, prefix); err != nil {
			return errors.Wrapf(err, "pagecache: invalidate %s", prefix)
		}
	}
	c.registry.Clear()
	return nil
}

// InvalidateTags drops the pages registered under any of tags.
func (c *Cached[T]) InvalidateTags(ctx context.Context, tags ...string) error {
	if len(tags) == 0 {
		return nil
	}
	return c.invalidateWhere(ctx, func(_ string, keyTags []string) bool {
		return lo.Some(keyTags, tags)
	})
}

// InvalidateQuery drops the cached page for q, if any.
func (c *Cached[T]) InvalidateQuery(ctx context.Context, q query.PaginateQuery) error {
	key, err := c.service.CacheKey(q)
	if err != nil {
		return err
	}
	return c.invalidateWhere(ctx, func(k string, _ []string) bool { return k == key })
}

// TrackedKeys returns the keys written through this Cached that have not
// been invalidated.
func (c *Cached[T]) TrackedKeys() []string {
	keys := make([]string, 0, c.registry.Size())
	c.registry.Range(func(key string, _ []string) bool {
		keys = append(keys, key)
		return true
	})
	return keys
}

func (c *Cached[T]) trackKey(key string, tags []string) {
	c.registry.Compute(key, func(old []string, _ bool) ([]string, bool) {
		return lo.Uniq(append(append([]string(nil), old...), tags...)), false
	})
}

// tagKey adds tags to key only if key is already tracked.
func (c *Cached[T]) tagKey(key string, tags []string) {
	c.registry.Compute(key, func(old []string, loaded bool) ([]string, bool) {
		if !loaded {
			return nil, true
		}
		return lo.Uniq(append(append([]string(nil), old...), tags...)), false
	})
}

func (c *Cached[T]) invalidateWhere(ctx context.Context, match func(key string, tags []string) bool) error {
	inv, ok := c.store.(cache.Invalidator)
	if !ok {
		return ErrInvalidationUnsupported
	}

	var keys []string
	c.registry.Range(func(key string, tags []string) bool {
		if match(key, tags) {
			keys = append(keys, key)
		}
		return true
	})

	var errs error
	for _, key := range keys {
		if err := inv.Delete(ctx, key); err != nil {
			errs = errors.CombineErrors(errs, errors.Wrapf(err, "pagecache: delete %s", key))
			continue
		}
		c.registry.Delete(key)
	}
	return errs
}

// trackingStore reports every successful Set to onSet.
type trackingStore struct {
	cache.Store
	onSet func(key string)
}

func (s *trackingStore) Set(ctx context.Context, key string, value []byte) error {
	if err := s.Store.Set(ctx, key, value); err != nil {
		return err
	}
	s.onSet(key)
	return nil
}

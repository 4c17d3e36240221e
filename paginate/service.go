package paginate

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/goliatone/go-repository-pager/cache"
	"github.com/goliatone/go-repository-pager/query"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

var (
	// ErrCacheUnavailable is wrapped by errors returned by ListCached when the cache
	// lookup fails under the FailClosed policy.
	ErrCacheUnavailable = errors.New("paginate: cache unavailable")

	ErrInvalidService = errors.New("paginate: invalid service")
)

// FailurePolicy decides what ListCached does when the cache lookup fails.
type FailurePolicy int

const (
	// FailOpen logs the failure and serves the request from the store.
	FailOpen FailurePolicy = iota
	// FailClosed returns an error wrapping ErrCacheUnavailable.
	FailClosed
)

func (p FailurePolicy) String() string {
	if p == FailClosed {
		return "fail_closed"
	}
	return "fail_open"
}

type options struct {
	logger       zerolog.Logger
	metrics      *Metrics
	policy       FailurePolicy
	singleFlight bool
}

// Option configures a Service.
type Option func(*options)

func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

func WithMetrics(m *Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

func WithFailurePolicy(p FailurePolicy) Option {
	return func(o *options) {
		o.policy = p
	}
}

// WithSingleFlight collapses concurrent misses on the same cache key into
// one query. Callers sharing a result share its Data slice. The query is not
// cancelled with any one caller; a caller whose context ends stops waiting
// and gets its context error.
func WithSingleFlight() Option {
	return func(o *options) {
		o.singleFlight = true
	}
}

// Service lists pages of T for one entity configuration, optionally through
// a cache.
type Service[T any] struct {
	cfg     query.Config
	exec    Executor[T]
	logger  zerolog.Logger
	metrics *Metrics
	policy  FailurePolicy
	group   *singleflight.Group
}

// NewService binds an entity configuration to an executor.
func NewService[T any](cfg query.Config, exec Executor[T], opts ...Option) (*Service[T], error) {
	if cfg.IsZero() {
		return nil, errors.Wrap(ErrInvalidService, "config was not built with query.NewConfig")
	}
	if exec == nil {
		return nil, errors.Wrap(ErrInvalidService, "executor is nil")
	}

	o := options{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(&o)
	}

	s := &Service[T]{
		cfg:     cfg,
		exec:    exec,
		logger:  o.logger.With().Str("model", cfg.Model()).Logger(),
		metrics: o.metrics,
		policy:  o.policy,
	}
	if o.singleFlight {
		s.group = &singleflight.Group{}
	}
	return s, nil
}

func (s *Service[T]) Config() query.Config {
	return s.cfg
}

// List runs the request against the store without touching the result
// cache. useQueryCache is passed through to the executor.
func (s *Service[T]) List(ctx context.Context, q query.PaginateQuery, useQueryCache bool) (Paginated[T], error) {
	return s.list(ctx, s.cfg.Normalize(q), useQueryCache)
}

func (s *Service[T]) list(ctx context.Context, n query.Normalized, useQueryCache bool) (Paginated[T], error) {
	plan := Assemble(s.cfg, n, useQueryCache)
	s.metrics.listCall(plan.Model)
	return Paginate(ctx, s.exec, plan)
}

// CacheKey returns the key ListCached would use for q.
func (s *Service[T]) CacheKey(q query.PaginateQuery) (string, error) {
	return CacheKey(s.cfg, s.cfg.Normalize(q))
}

// ListCached serves q from store when a page for the same normalized request
// is cached, and otherwise runs it and caches the page.
//
// Empty pages are never written. Write failures are logged and the fresh
// page is still returned. A value that cannot be decoded is treated as a
// miss and overwritten.
func (s *Service[T]) ListCached(ctx context.Context, q query.PaginateQuery, store cache.Store) (Paginated[T], error) {
	if store == nil {
		return Paginated[T]{}, errors.Wrap(ErrInvalidService, "cache store is nil")
	}

	n := s.cfg.Normalize(q)
	key, err := CacheKey(s.cfg, n)
	if err != nil {
		return Paginated[T]{}, err
	}

	model := s.cfg.Model()
	log := s.logger.With().
		Str("request_id", uuid.NewString()).
		Str("key", key).
		Logger()

	cached, found, err := cache.GetObject[Paginated[T]](ctx, store, key)
	switch {
	case err != nil && errors.Is(err, cache.ErrDecode):
		s.metrics.lookup(model, OutcomeError)
		log.Warn().Err(err).Msg("discarding cache entry that failed to decode")
	case err != nil:
		s.metrics.lookup(model, OutcomeError)
		if s.policy == FailClosed {
			return Paginated[T]{}, errors.Join(
				ErrCacheUnavailable,
				errors.Wrapf(err, "paginate: cache lookup %s", key),
			)
		}
		log.Warn().Err(err).Msg("cache lookup failed, querying store")
	case found:
		s.metrics.lookup(model, OutcomeHit)
		log.Debug().Msg("cache hit")
		return cached, nil
	default:
		s.metrics.lookup(model, OutcomeMiss)
		log.Debug().Msg("cache miss")
	}

	if s.group == nil {
		return s.fill(ctx, n, key, store, log)
	}

	// The shared fill outlives any single caller. Each caller stops waiting
	// when its own context is done.
	fillCtx := context.WithoutCancel(ctx)
	ch := s.group.DoChan(key, func() (any, error) {
		return s.fill(fillCtx, n, key, store, log)
	})

	select {
	case <-ctx.Done():
		return Paginated[T]{}, errors.Wrapf(ctx.Err(), "paginate: list cached %s", key)
	case res := <-ch:
		if res.Err != nil {
			return Paginated[T]{}, res.Err
		}
		if res.Shared {
			log.Debug().Msg("joined in-flight query")
		}
		return res.Val.(Paginated[T]), nil
	}
}

func (s *Service[T]) fill(ctx context.Context, n query.Normalized, key string, store cache.Store, log zerolog.Logger) (Paginated[T], error) {
	model := s.cfg.Model()

	page, err := s.list(ctx, n, false)
	if err != nil {
		return Paginated[T]{}, err
	}

	if len(page.Data) == 0 {
		s.metrics.populate(model, PopulateSkippedEmpty)
		log.Debug().Msg("empty page not cached")
		return page, nil
	}

	if err := cache.SetObject(ctx, store, key, page); err != nil {
		s.metrics.populate(model, PopulateFailed)
		log.Warn().Err(err).Msg("cache write failed")
		return page, nil
	}

	s.metrics.populate(model, PopulateStored)
	log.Debug().Int("items", len(page.Data)).Msg("page cached")
	return page, nil
}

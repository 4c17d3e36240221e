package paginate

import (
	"context"

	"github.com/cockroachdb/errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-repository-pager/cache"
	"github.com/rs/zerolog"
	"github.com/uptrace/bun"
)

// Executor runs a plan against the backing store and returns the page rows
// together with the total number of rows matching the plan's filters.
type Executor[T any] interface {
	Execute(ctx context.Context, plan Plan) ([]T, int, error)
}

// ExecutorFunc adapts a function to the Executor interface.
type ExecutorFunc[T any] func(ctx context.Context, plan Plan) ([]T, int, error)

func (f ExecutorFunc[T]) Execute(ctx context.Context, plan Plan) ([]T, int, error) {
	return f(ctx, plan)
}

// queryResult wraps the rows and total of one compiled query for the query
// result cache.
type queryResult[T any] struct {
	Rows  []T `json:"rows"`
	Total int `json:"total"`
}

// QueryCachePrefix returns the prefix shared by the query cache entries of
// model.
func QueryCachePrefix(model string) string {
	return cache.Namespace(cache.Key("query", model))
}

type bunExecutorOptions struct {
	queryCache cache.Store
	logger     zerolog.Logger
}

// BunExecutorOption configures a BunExecutor.
type BunExecutorOption func(*bunExecutorOptions)

// WithQueryCache enables the query result cache. Plans with UseQueryCache
// set are served from store, keyed by a fingerprint of the compiled SQL.
func WithQueryCache(store cache.Store) BunExecutorOption {
	return func(o *bunExecutorOptions) {
		o.queryCache = store
	}
}

// WithExecutorLogger sets the logger used to report query cache failures.
func WithExecutorLogger(logger zerolog.Logger) BunExecutorOption {
	return func(o *bunExecutorOptions) {
		o.logger = logger
	}
}

// BunExecutor runs plans directly against a bun database or transaction.
type BunExecutor[T any] struct {
	db         bun.IDB
	queryCache cache.Store
	logger     zerolog.Logger
}

var _ Executor[any] = (*BunExecutor[any])(nil)

// NewBunExecutor returns an executor selecting T rows from db.
func NewBunExecutor[T any](db bun.IDB, opts ...BunExecutorOption) *BunExecutor[T] {
	o := bunExecutorOptions{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(&o)
	}

	return &BunExecutor[T]{
		db:         db,
		queryCache: o.queryCache,
		logger:     o.logger,
	}
}

// Execute selects one page of rows and the total count in a single call.
func (e *BunExecutor[T]) Execute(ctx context.Context, plan Plan) ([]T, int, error) {
	var rows []T
	q := plan.Apply(e.db.NewSelect().Model(&rows))

	if !plan.UseQueryCache || e.queryCache == nil {
		total, err := q.ScanAndCount(ctx)
		if err != nil {
			return nil, 0, errors.Wrapf(err, "paginate: select %s", plan.Model)
		}
		return rows, total, nil
	}

	return e.executeCached(ctx, plan, q, &rows)
}

func (e *BunExecutor[T]) executeCached(ctx context.Context, plan Plan, q *bun.SelectQuery, rows *[]T) ([]T, int, error) {
	fp, err := cache.Fingerprint(q.String())
	if err != nil {
		return nil, 0, err
	}
	key := QueryCachePrefix(plan.Model) + fp

	cached, found, err := cache.GetObject[queryResult[T]](ctx, e.queryCache, key)
	if err != nil {
		e.logger.Warn().Err(err).Str("key", key).Msg("query cache lookup failed")
	}
	if found {
		return cached.Rows, cached.Total, nil
	}

	total, err := q.ScanAndCount(ctx)
	if err != nil {
		return nil, 0, errors.Wrapf(err, "paginate: select %s", plan.Model)
	}

	if err := cache.SetObject(ctx, e.queryCache, key, queryResult[T]{Rows: *rows, Total: total}); err != nil {
		e.logger.Warn().Err(err).Str("key", key).Msg("query cache write failed")
	}
	return *rows, total, nil
}

// Lister is the listing half of a go-repository-bun repository.
type Lister[T any] interface {
	List(ctx context.Context, criteria ...repository.SelectCriteria) ([]T, int, error)
}

// RepositoryExecutor runs plans through an existing repository, passing the
// plan as select criteria. It has no query result cache, so UseQueryCache
// is ignored.
type RepositoryExecutor[T any] struct {
	repo Lister[T]
}

var _ Executor[any] = (*RepositoryExecutor[any])(nil)

func NewRepositoryExecutor[T any](repo Lister[T]) *RepositoryExecutor[T] {
	return &RepositoryExecutor[T]{repo: repo}
}

func (e *RepositoryExecutor[T]) Execute(ctx context.Context, plan Plan) ([]T, int, error) {
	rows, total, err := e.repo.List(ctx, plan.Criteria()...)
	if err != nil {
		return nil, 0, errors.Wrapf(err, "paginate: list %s", plan.Model)
	}
	return rows, total, nil
}

package di

import (
	"database/sql"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/goliatone/go-repository-pager/cache"
	"github.com/goliatone/go-repository-pager/pagecache"
	"github.com/goliatone/go-repository-pager/paginate"
	"github.com/goliatone/go-repository-pager/query"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

// Container provides dependency injection for the list layer. It owns one
// database handle, one cache store, a logger and a metrics registry, and
// builds list services that share them.
type Container struct {
	config   Config
	db       *bun.DB
	ownsDB   bool
	store    cache.ManagedStore
	logger   zerolog.Logger
	registry *prometheus.Registry
	metrics  *paginate.Metrics
}

// ContainerOption customizes a Container.
type ContainerOption func(*containerOptions)

type containerOptions struct {
	db     *bun.DB
	logger *zerolog.Logger
}

// WithDB makes the container use db instead of opening one from the
// configuration. The container does not close it.
func WithDB(db *bun.DB) ContainerOption {
	return func(o *containerOptions) {
		o.db = db
	}
}

// WithLogger replaces the stderr logger built from Config.LogLevel.
func WithLogger(logger zerolog.Logger) ContainerOption {
	return func(o *containerOptions) {
		o.logger = &logger
	}
}

// NewContainer validates config and opens the database and cache store.
func NewContainer(config Config, opts ...ContainerOption) (*Container, error) {
	var o containerOptions
	for _, opt := range opts {
		opt(&o)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	logger := zerolog.New(os.Stderr).With().Timestamp().Logger().Level(config.level())
	if o.logger != nil {
		logger = *o.logger
	}

	db, ownsDB := o.db, false
	if db == nil {
		var err error
		if db, err = openDB(config.Database); err != nil {
			return nil, err
		}
		ownsDB = true
	}

	store, err := cache.NewStore(config.Cache)
	if err != nil {
		if ownsDB {
			db.Close()
		}
		return nil, err
	}

	registry := prometheus.NewRegistry()
	metrics, err := paginate.NewMetrics(registry, config.MetricsNamespace)
	if err != nil {
		store.Close()
		if ownsDB {
			db.Close()
		}
		return nil, err
	}

	logger.Debug().
		Str("driver", config.Database.Driver).
		Str("cache_backend", config.Cache.Backend).
		Msg("container ready")

	return &Container{
		config:   config,
		db:       db,
		ownsDB:   ownsDB,
		store:    store,
		logger:   logger,
		registry: registry,
		metrics:  metrics,
	}, nil
}

// NewContainerWithDefaults creates a container from DefaultConfig.
func NewContainerWithDefaults(opts ...ContainerOption) (*Container, error) {
	return NewContainer(DefaultConfig(), opts...)
}

func openDB(cfg DatabaseConfig) (*bun.DB, error) {
	sqldb, err := sql.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, errors.Wrapf(err, "di: open %s", cfg.Driver)
	}
	if cfg.MaxOpenConns > 0 {
		sqldb.SetMaxOpenConns(cfg.MaxOpenConns)
	}

	switch cfg.Driver {
	case DriverPostgres:
		return bun.NewDB(sqldb, pgdialect.New()), nil
	default:
		return bun.NewDB(sqldb, sqlitedialect.New()), nil
	}
}

// DB returns the shared database handle.
func (c *Container) DB() *bun.DB {
	return c.db
}

// Store returns the shared cache store.
func (c *Container) Store() cache.ManagedStore {
	return c.store
}

func (c *Container) Logger() zerolog.Logger {
	return c.logger
}

// Registry returns the registry the list metrics are registered with.
func (c *Container) Registry() *prometheus.Registry {
	return c.registry
}

// Config returns a copy of the configuration used by this container.
func (c *Container) Config() Config {
	return c.config
}

// Close releases the cache store and, unless it was supplied with WithDB,
// the database.
func (c *Container) Close() error {
	err := c.store.Close()
	if c.ownsDB {
		err = errors.CombineErrors(err, c.db.Close())
	}
	return err
}

func (c *Container) serviceOptions() []paginate.Option {
	opts := []paginate.Option{
		paginate.WithLogger(c.logger),
		paginate.WithMetrics(c.metrics),
	}
	if c.config.SingleFlight {
		opts = append(opts, paginate.WithSingleFlight())
	}
	if c.config.FailClosed {
		opts = append(opts, paginate.WithFailurePolicy(paginate.FailClosed))
	}
	return opts
}

// NewService builds a list service for T over the container database.
//
// Since Go methods cannot have type parameters, this is provided as a package-level function.
// Example: NewService[Article](container, query.Options{Model: "articles"})
func NewService[T any](c *Container, opts query.Options) (*paginate.Service[T], error) {
	if opts.Model == "" {
		opts.Model = query.ModelOf[T]()
	}
	cfg, err := query.NewConfig(opts)
	if err != nil {
		return nil, err
	}

	execOpts := []paginate.BunExecutorOption{paginate.WithExecutorLogger(c.logger)}
	if c.config.QueryCache {
		execOpts = append(execOpts, paginate.WithQueryCache(c.store))
	}

	return paginate.NewService[T](cfg, paginate.NewBunExecutor[T](c.db, execOpts...), c.serviceOptions()...)
}

// NewCachedService builds a list service for T bound to the container cache
// store.
func NewCachedService[T any](c *Container, opts query.Options) (*pagecache.Cached[T], error) {
	svc, err := NewService[T](c, opts)
	if err != nil {
		return nil, err
	}
	return pagecache.New(svc, c.store, pagecache.WithLogger(c.logger)), nil
}

package di

import (
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/cockroachdb/errors"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-repository-pager/cache"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is prepended to every environment variable read by LoadConfig.
const EnvPrefix = "PAGER_"

// Database drivers accepted in DatabaseConfig.Driver.
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

// Config wires the database, cache store, logger and metrics of a Container.
type Config struct {
	Database DatabaseConfig `yaml:"database" envPrefix:"DATABASE_"`
	Cache    cache.Config   `yaml:"cache" envPrefix:"CACHE_"`

	LogLevel         string `yaml:"log_level" env:"LOG_LEVEL"`
	MetricsNamespace string `yaml:"metrics_namespace" env:"METRICS_NAMESPACE"`

	// SingleFlight collapses concurrent cache misses on the same key.
	SingleFlight bool `yaml:"single_flight" env:"SINGLE_FLIGHT"`
	// FailClosed turns cache read failures into request errors.
	FailClosed bool `yaml:"fail_closed" env:"FAIL_CLOSED"`
	// QueryCache enables the executor query result cache for List calls
	// made with useQueryCache set.
	QueryCache bool `yaml:"query_cache" env:"QUERY_CACHE"`
}

type DatabaseConfig struct {
	Driver       string `yaml:"driver" env:"DRIVER"`
	DSN          string `yaml:"dsn" env:"DSN"`
	MaxOpenConns int    `yaml:"max_open_conns" env:"MAX_OPEN_CONNS"`
}

// DefaultConfig returns an in-memory SQLite database with the default
// memory cache.
func DefaultConfig() Config {
	return Config{
		Database: DatabaseConfig{
			Driver:       DriverSQLite,
			DSN:          "file::memory:?cache=shared",
			MaxOpenConns: 1,
		},
		Cache:            cache.DefaultConfig(),
		LogLevel:         zerolog.LevelInfoValue,
		MetricsNamespace: "app",
	}
}

// LoadConfig starts from DefaultConfig, applies the YAML file at path when
// path is not empty, then applies PAGER_* environment variables. Later
// sources override earlier ones.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, errors.Wrapf(err, "di: read config %s", path)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, errors.Wrapf(err, "di: parse config %s", path)
		}
	}

	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return Config{}, errors.Wrap(err, "di: parse environment")
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the database, logging and cache settings.
func (c Config) Validate() error {
	err := validation.ValidateStruct(&c,
		validation.Field(&c.LogLevel, validation.By(validLogLevel)),
		validation.Field(&c.MetricsNamespace, validation.Required),
	)
	if err != nil {
		return errors.Wrap(err, "di: invalid config")
	}

	err = validation.ValidateStruct(&c.Database,
		validation.Field(&c.Database.Driver, validation.Required, validation.In(DriverSQLite, DriverPostgres)),
		validation.Field(&c.Database.DSN, validation.Required),
		validation.Field(&c.Database.MaxOpenConns, validation.Min(0)),
	)
	if err != nil {
		return errors.Wrap(err, "di: invalid database config")
	}

	return c.Cache.Validate()
}

func validLogLevel(value any) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	if _, err := zerolog.ParseLevel(s); err != nil {
		return err
	}
	return nil
}

func (c Config) level() zerolog.Level {
	lvl, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil || c.LogLevel == "" {
		return zerolog.InfoLevel
	}
	return lvl
}

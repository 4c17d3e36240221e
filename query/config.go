package query

import (
	"fmt"

	"github.com/cockroachdb/errors"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/samber/lo"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// Options is the mutable input used to build a Config.
type Options struct {
	// Model identifies the entity in cache keys. See ModelOf.
	Model             string
	SortableColumns   []string
	DefaultSortBy     []SortBy
	FilterableColumns []string
	DefaultLimit      int
	MaxLimit          int
	// CaseSensitive switches substring filters from case-insensitive
	// matching to exact-case matching.
	CaseSensitive bool
}

// Config is the per-entity list configuration. It is immutable once built;
// accessors return copies.
type Config struct {
	model         string
	sortable      []string
	defaultSort   []SortBy
	filterable    []string
	defaultLimit  int
	maxLimit      int
	caseSensitive bool
}

// NewConfig validates opts and returns the immutable Config.
//
// Zero values fall back to: sortable columns ["id"], default sort id DESC,
// default limit DefaultLimit and max limit MaxLimit.
func NewConfig(opts Options) (Config, error) {
	if len(opts.SortableColumns) == 0 {
		opts.SortableColumns = []string{"id"}
	}
	if len(opts.DefaultSortBy) == 0 {
		opts.DefaultSortBy = []SortBy{{Column: "id", Direction: DirectionDESC}}
	}
	if opts.DefaultLimit == 0 {
		opts.DefaultLimit = DefaultLimit
	}
	if opts.MaxLimit == 0 {
		opts.MaxLimit = MaxLimit
	}

	if err := opts.validate(); err != nil {
		return Config{}, errors.Wrapf(err, "query: invalid config for %q", opts.Model)
	}

	defaultSort := make([]SortBy, len(opts.DefaultSortBy))
	for i, s := range opts.DefaultSortBy {
		d, _ := ParseDirection(string(s.Direction))
		defaultSort[i] = SortBy{Column: s.Column, Direction: d}
	}

	return Config{
		model:         opts.Model,
		sortable:      lo.Uniq(opts.SortableColumns),
		defaultSort:   defaultSort,
		filterable:    lo.Uniq(opts.FilterableColumns),
		defaultLimit:  opts.DefaultLimit,
		maxLimit:      opts.MaxLimit,
		caseSensitive: opts.CaseSensitive,
	}, nil
}

// MustConfig is like NewConfig but panics on invalid options.
func MustConfig(opts Options) Config {
	cfg, err := NewConfig(opts)
	if err != nil {
		panic(err)
	}
	return cfg
}

func (o Options) validate() error {
	return validation.Errors{
		"model":             validation.Validate(o.Model, validation.Required),
		"sortableColumns":   validation.Validate(o.SortableColumns, validation.Each(validation.Required)),
		"filterableColumns": validation.Validate(o.FilterableColumns, validation.Each(validation.Required)),
		"defaultLimit":      validation.Validate(o.DefaultLimit, validation.Min(1), validation.Max(o.MaxLimit)),
		"maxLimit":          validation.Validate(o.MaxLimit, validation.Min(1)),
		"defaultSortBy":     validation.Validate(o.DefaultSortBy, validation.By(o.sortableDefault)),
	}.Filter()
}

func (o Options) sortableDefault(value any) error {
	sorts, _ := value.([]SortBy)
	for _, s := range sorts {
		if !lo.Contains(o.SortableColumns, s.Column) {
			return fmt.Errorf("column %q is not sortable", s.Column)
		}
		if _, ok := ParseDirection(string(s.Direction)); !ok {
			return fmt.Errorf("invalid direction %q for column %q", s.Direction, s.Column)
		}
	}
	return nil
}

func (c Config) Model() string { return c.model }

func (c Config) SortableColumns() []string { return append([]string(nil), c.sortable...) }

func (c Config) DefaultSortBy() []SortBy { return append([]SortBy(nil), c.defaultSort...) }

func (c Config) FilterableColumns() []string { return append([]string(nil), c.filterable...) }

func (c Config) DefaultLimit() int { return c.defaultLimit }

func (c Config) MaxLimit() int { return c.maxLimit }

func (c Config) CaseSensitive() bool { return c.caseSensitive }

// IsZero reports whether c was built without NewConfig.
func (c Config) IsZero() bool { return c.model == "" }

// NormalizeLimit clamps limit to [1, MaxLimit]; non-positive values map to
// the default limit.
func (c Config) NormalizeLimit(limit int) int {
	if limit <= 0 {
		return c.defaultLimit
	}
	if limit > c.maxLimit {
		return c.maxLimit
	}
	return limit
}

// Normalize applies the allow-lists and limits to q.
//
// Sort directives on columns that are not sortable, or with an unknown
// direction, are dropped; if none survive the default sort is used. Filters
// go through ParseFilters. Relation names are deduplicated keeping the
// first occurrence. q is not modified.
func (c Config) Normalize(q PaginateQuery) Normalized {
	page := q.Page
	if page < 1 {
		page = 1
	}

	sortBy := make([]SortBy, 0, len(q.SortBy))
	seen := make(map[string]struct{}, len(q.SortBy))
	for _, s := range q.SortBy {
		if !lo.Contains(c.sortable, s.Column) {
			continue
		}
		if _, dup := seen[s.Column]; dup {
			continue
		}
		d, ok := ParseDirection(string(s.Direction))
		if !ok {
			continue
		}
		seen[s.Column] = struct{}{}
		sortBy = append(sortBy, SortBy{Column: s.Column, Direction: d})
	}
	if len(sortBy) == 0 {
		sortBy = c.DefaultSortBy()
	}

	filters, leftover := ParseFilters(q.Filter, c.filterable)

	return Normalized{
		Page:      page,
		Limit:     c.NormalizeLimit(q.Limit),
		SortBy:    sortBy,
		Filters:   filters,
		Leftover:  leftover,
		Relations: lo.Uniq(lo.Compact(q.With)),
	}
}

package paginate

import (
	"slices"

	"github.com/goliatone/go-repository-pager/cache"
	"github.com/goliatone/go-repository-pager/query"
)

// cacheKeyVersion is bumped whenever the cached envelope or the key layout
// changes, so stale entries are never decoded into a new shape.
const cacheKeyVersion = 1

type filterKey struct {
	Column   string `json:"c"`
	Operator string `json:"o"`
	Value    string `json:"v"`
}

// cacheKey is the canonical form that gets fingerprinted. Every field is a
// slice or scalar in a fixed order so equal requests encode identically.
type cacheKey struct {
	Version       int            `json:"version"`
	Model         string         `json:"model"`
	Page          int            `json:"page"`
	Limit         int            `json:"limit"`
	SortBy        []query.SortBy `json:"sortBy"`
	Filters       []filterKey    `json:"filters"`
	Relations     []string       `json:"relations"`
	DefaultSortBy []query.SortBy `json:"defaultSortBy"`
	Sortable      []string       `json:"sortable"`
	Filterable    []string       `json:"filterable"`
	CaseSensitive bool           `json:"caseSensitive"`
}

// CacheKey derives the cache key for a normalized request under cfg.
//
// The key has the form `<model>::<fingerprint>`. It is computed from what
// the request resolves to, not from its raw form: requests that differ only
// in rejected sort columns, ignored filters or relation order share a key.
func CacheKey(cfg query.Config, n query.Normalized) (string, error) {
	filters := make([]filterKey, 0, len(n.Filters))
	for _, f := range n.Filters {
		filters = append(filters, filterKey{
			Column:   f.FilterColumn(),
			Operator: string(f.FilterOperator()),
			Value:    f.String(),
		})
	}

	k := cacheKey{
		Version:       cacheKeyVersion,
		Model:         cfg.Model(),
		Page:          n.Page,
		Limit:         n.Limit,
		SortBy:        n.SortBy,
		Filters:       filters,
		Relations:     sorted(n.Relations),
		DefaultSortBy: cfg.DefaultSortBy(),
		Sortable:      sorted(cfg.SortableColumns()),
		Filterable:    sorted(cfg.FilterableColumns()),
		CaseSensitive: cfg.CaseSensitive(),
	}

	fp, err := cache.Fingerprint(k)
	if err != nil {
		return "", err
	}
	return cache.Key(cfg.Model(), fp), nil
}

func sorted(in []string) []string {
	out := slices.Clone(in)
	slices.Sort(out)
	if out == nil {
		out = []string{}
	}
	return out
}

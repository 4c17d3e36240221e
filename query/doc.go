// Package query holds the list request model and its normalization rules.
//
// A PaginateQuery is what callers send: page, limit, sort directives, a
// column to `operator:value` filter map and relation names. A Config is the
// immutable per-entity allow-list (sortable and filterable columns, default
// sort, limits). Config.Normalize turns the former into a Normalized request
// that only contains what the entity permits:
//
//	cfg := query.MustConfig(query.Options{
//		Model:             query.ModelOf[Article](),
//		SortableColumns:   []string{"id", "name"},
//		FilterableColumns: []string{"name"},
//	})
//
//	n := cfg.Normalize(query.PaginateQuery{
//		Page:   1,
//		Limit:  10,
//		Filter: map[string]string{"name": "contains:abc"},
//	})
//
// Entries that cannot be applied are dropped, never rejected. The only
// filter operator is substring match (`contains`, or the legacy `$like`).
package query

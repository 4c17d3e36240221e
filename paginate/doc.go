// Package paginate turns a normalized list request into a page of rows and
// caches whole pages.
//
// # Pipeline
//
//	Assemble   query.Normalized -> Plan (filters, relations, sort, window)
//	Executor   Plan -> rows + total count
//	Paginate   rows + total -> Paginated[T] envelope
//	CacheKey   config + request -> "<model>::<16 hex>"
//
// Service ties the steps together. List always reaches the executor.
// ListCached looks the page up in a cache.Store first and stores non-empty
// pages it had to compute:
//
//	svc, err := paginate.NewService[Article](cfg, paginate.NewBunExecutor[Article](db),
//		paginate.WithLogger(logger),
//		paginate.WithSingleFlight(),
//	)
//	page, err := svc.ListCached(ctx, query.PaginateQuery{Page: 2, Limit: 10}, store)
//
// # Cache failures
//
// Lookup errors fall back to the executor unless the service was built with
// WithFailurePolicy(FailClosed), in which case the returned error wraps
// ErrCacheUnavailable. Entries that fail to decode are treated as
// misses and overwritten. Write errors are logged and never reach the
// caller.
package paginate

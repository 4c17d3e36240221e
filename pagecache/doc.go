// Package pagecache binds a paginate.Service to a cache store and adds
// invalidation on top of the read-through page cache.
//
// # Overview
//
// paginate.Service.ListCached is stateless: it reads and fills whatever
// store it is handed. Cached keeps the store and a registry of the keys it
// has written, so pages can be dropped after a write elsewhere in the
// application.
//
//	svc, _ := paginate.NewService[Article](cfg, paginate.NewBunExecutor[Article](db))
//	pages := pagecache.New(svc, store)
//
//	ctx = pagecache.WithCacheTags(ctx, "author:42")
//	page, err := pages.List(ctx, query.PaginateQuery{Page: 1, Limit: 10})
//
// # Invalidation
//
//   - Invalidate drops every page of the model by key prefix.
//   - InvalidateTags drops the pages registered under the given tags.
//   - InvalidateQuery drops the page of one request.
//   - Mutate runs a write and invalidates the model when it succeeds.
//
// All of them need a store that implements cache.Invalidator; the memory
// and pebble stores returned by cache.NewStore both do.
//
// The registry is in process. Tags only cover pages written through the
// same Cached value, while Invalidate reaches every page of the model in a
// shared store.
package pagecache

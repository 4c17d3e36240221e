package pagecache

import (
	"context"

	"github.com/samber/lo"
)

type cacheTagsContextKey struct{}

// WithCacheTags attaches cache tags to the context. Pages cached while
// serving a request with this context are registered under the tags and
// can later be dropped with Cached.InvalidateTags.
func WithCacheTags(ctx context.Context, tags ...string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if len(tags) == 0 {
		return ctx
	}

	combined := lo.Uniq(lo.Compact(append(cacheTagsFromContext(ctx), tags...)))
	if len(combined) == 0 {
		return ctx
	}

	return context.WithValue(ctx, cacheTagsContextKey{}, combined)
}

func cacheTagsFromContext(ctx context.Context) []string {
	if ctx == nil {
		return nil
	}
	if tags, ok := ctx.Value(cacheTagsContextKey{}).([]string); ok {
		return append([]string(nil), tags...)
	}
	return nil
}

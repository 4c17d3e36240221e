package paginate

import (
	"context"
	"testing"

	"github.com/goliatone/go-repository-pager/pkg/testsupport"
	"github.com/goliatone/go-repository-pager/query"
	"github.com/stretchr/testify/require"
)

func TestNewMeta(t *testing.T) {
	tests := []struct {
		name                      string
		total, page, limit, count int
		wantPages                 int
	}{
		{name: "empty", total: 0, page: 1, limit: 10, count: 0, wantPages: 0},
		{name: "partial page", total: 3, page: 1, limit: 10, count: 3, wantPages: 1},
		{name: "exact multiple", total: 20, page: 2, limit: 10, count: 10, wantPages: 2},
		{name: "remainder", total: 25, page: 3, limit: 10, count: 5, wantPages: 3},
		{name: "page past the end", total: 25, page: 9, limit: 10, count: 0, wantPages: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newMeta(tt.total, tt.page, tt.limit, tt.count)
			if m.TotalPages != tt.wantPages {
				t.Errorf("TotalPages = %d, want %d", m.TotalPages, tt.wantPages)
			}
			if m.TotalItems != tt.total || m.CurrentPage != tt.page || m.ItemsPerPage != tt.limit || m.ItemCount != tt.count {
				t.Errorf("unexpected meta: %+v", m)
			}
		})
	}
}

func TestPaginate_NormalizesEmptyData(t *testing.T) {
	exec := ExecutorFunc[Article](func(context.Context, Plan) ([]Article, int, error) {
		return nil, 0, nil
	})
	cfg := articleConfig(t)

	page, err := Paginate[Article](context.Background(), exec, Assemble(cfg, cfg.Normalize(query.PaginateQuery{}), false))
	require.NoError(t, err)
	require.NotNil(t, page.Data)
	require.Empty(t, page.Data)
	require.Nil(t, page.Filter)
	require.Equal(t, cfg.DefaultSortBy(), page.SortBy)
}

func TestPaginate_FilterEndToEnd(t *testing.T) {
	ctx := context.Background()
	db, _ := newArticleDB(t)
	svc := newArticleService(t, db)

	page, err := svc.List(ctx, query.PaginateQuery{
		Page:   1,
		Limit:  10,
		Filter: map[string]string{"name": "contains:abc"},
	}, false)
	require.NoError(t, err)

	require.Len(t, page.Data, 3)
	require.Equal(t, Meta{ItemsPerPage: 10, TotalItems: 3, CurrentPage: 1, TotalPages: 1, ItemCount: 3}, page.Meta)
	require.Equal(t, map[string]string{"name": "contains:abc"}, page.Filter)

	// Default sort is id DESC.
	require.Equal(t, []int64{19, 11, 3}, []int64{page.Data[0].ID, page.Data[1].ID, page.Data[2].ID})
}

func TestPaginate_GoldenEnvelope(t *testing.T) {
	db, _ := newArticleDB(t)
	svc := newArticleService(t, db)

	page, err := svc.List(context.Background(), query.PaginateQuery{
		Page:   1,
		Limit:  10,
		SortBy: []query.SortBy{{Column: "id", Direction: query.DirectionASC}},
		Filter: map[string]string{"name": "contains:abc"},
		With:   []string{"Author"},
	}, false)
	require.NoError(t, err)

	testsupport.CompareJSONWithGolden(t, testsupport.GoldenPath("articles_abc_page1.json"), page)
}

func TestPaginate_PageArithmetic(t *testing.T) {
	ctx := context.Background()
	db, _ := newArticleDB(t)
	svc := newArticleService(t, db)

	tests := []struct {
		name      string
		q         query.PaginateQuery
		wantCount int
		wantFirst int64
		wantPage  int
		wantLimit int
	}{
		{name: "first page", q: query.PaginateQuery{Page: 1, Limit: 10}, wantCount: 10, wantFirst: 25, wantPage: 1, wantLimit: 10},
		{name: "last partial page", q: query.PaginateQuery{Page: 3, Limit: 10}, wantCount: 5, wantFirst: 5, wantPage: 3, wantLimit: 10},
		{name: "past the end", q: query.PaginateQuery{Page: 4, Limit: 10}, wantCount: 0, wantPage: 4, wantLimit: 10},
		{name: "page below one", q: query.PaginateQuery{Page: -2, Limit: 10}, wantCount: 10, wantFirst: 25, wantPage: 1, wantLimit: 10},
		{name: "default limit", q: query.PaginateQuery{}, wantCount: 20, wantFirst: 25, wantPage: 1, wantLimit: query.DefaultLimit},
		{name: "limit above max", q: query.PaginateQuery{Limit: 1000}, wantCount: 25, wantFirst: 25, wantPage: 1, wantLimit: query.MaxLimit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := svc.List(ctx, tt.q, false)
			require.NoError(t, err)

			require.Len(t, page.Data, tt.wantCount)
			require.Equal(t, tt.wantCount, page.Meta.ItemCount)
			require.Equal(t, 25, page.Meta.TotalItems)
			require.Equal(t, tt.wantPage, page.Meta.CurrentPage)
			require.Equal(t, tt.wantLimit, page.Meta.ItemsPerPage)
			require.LessOrEqual(t, page.Meta.ItemCount, page.Meta.ItemsPerPage)
			if tt.wantCount > 0 {
				require.Equal(t, tt.wantFirst, page.Data[0].ID)
			}
		})
	}
}

func TestPaginate_CaseSensitivity(t *testing.T) {
	ctx := context.Background()
	db, _ := newArticleDB(t)

	insensitive := newArticleService(t, db)
	page, err := insensitive.List(ctx, query.PaginateQuery{Filter: map[string]string{"name": "contains:ABC"}}, false)
	require.NoError(t, err)
	require.Equal(t, 3, page.Meta.TotalItems)

	opts := articleOptions()
	opts.CaseSensitive = true
	sensitive, err := NewService[Article](query.MustConfig(opts), NewBunExecutor[Article](db))
	require.NoError(t, err)

	page, err = sensitive.List(ctx, query.PaginateQuery{Filter: map[string]string{"name": "contains:ABC"}}, false)
	require.NoError(t, err)
	require.Equal(t, 1, page.Meta.TotalItems)
	require.Equal(t, "Learning ABC", page.Data[0].Name)

	page, err = sensitive.List(ctx, query.PaginateQuery{Filter: map[string]string{"name": "contains:abc"}}, false)
	require.NoError(t, err)
	require.Equal(t, 2, page.Meta.TotalItems)
}

func TestPaginate_LiteralMetacharacters(t *testing.T) {
	ctx := context.Background()
	db, _ := newArticleDB(t)
	svc := newArticleService(t, db)

	for value, want := range map[string]string{
		"contains:%": "100% cotton",
		"contains:_": "snake_case guide",
	} {
		page, err := svc.List(ctx, query.PaginateQuery{Filter: map[string]string{"name": value}}, false)
		require.NoError(t, err)
		require.Len(t, page.Data, 1, value)
		require.Equal(t, want, page.Data[0].Name)
	}
}

func TestPaginate_NonASCIIValue(t *testing.T) {
	ctx := context.Background()
	db, _ := newArticleDB(t)
	svc := newArticleService(t, db)

	_, err := db.NewInsert().Model(&Article{ID: 100, Name: "ÉCOLE normale", AuthorID: 1}).Exec(ctx)
	require.NoError(t, err)

	for _, value := range []string{"contains:ÉCOLE", "contains:École", "contains:Écol"} {
		page, err := svc.List(ctx, query.PaginateQuery{Filter: map[string]string{"name": value}}, false)
		require.NoError(t, err)
		require.Len(t, page.Data, 1, value)
		require.Equal(t, "ÉCOLE normale", page.Data[0].Name)
	}
}

func TestPaginate_AllowLists(t *testing.T) {
	ctx := context.Background()
	db, _ := newArticleDB(t)
	svc := newArticleService(t, db)

	plain, err := svc.List(ctx, query.PaginateQuery{Limit: 5}, false)
	require.NoError(t, err)

	ignored, err := svc.List(ctx, query.PaginateQuery{
		Limit:  5,
		SortBy: []query.SortBy{{Column: "author_id", Direction: query.DirectionASC}},
		Filter: map[string]string{"author_id": "contains:1", "name": "equals:abc"},
	}, false)
	require.NoError(t, err)

	require.Equal(t, plain, ignored)
	require.Nil(t, ignored.Filter)
	require.Equal(t, []query.SortBy{{Column: "id", Direction: query.DirectionDESC}}, ignored.SortBy)
}

func TestPaginate_Relations(t *testing.T) {
	ctx := context.Background()
	db, _ := newArticleDB(t)
	svc := newArticleService(t, db)

	page, err := svc.List(ctx, query.PaginateQuery{Limit: 3, With: []string{"Author"}}, false)
	require.NoError(t, err)
	for _, a := range page.Data {
		require.NotNil(t, a.Author)
		require.Equal(t, a.AuthorID, a.Author.ID)
	}

	page, err = svc.List(ctx, query.PaginateQuery{Limit: 3}, false)
	require.NoError(t, err)
	require.Nil(t, page.Data[0].Author)
}

func TestPaginate_UnknownRelation(t *testing.T) {
	db, _ := newArticleDB(t)
	svc := newArticleService(t, db)

	_, err := svc.List(context.Background(), query.PaginateQuery{With: []string{"Publisher"}}, false)
	require.Error(t, err)
}

package paginate

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/goliatone/go-repository-pager/pkg/testsupport"
	"github.com/goliatone/go-repository-pager/query"
	"github.com/uptrace/bun"
)

type Author struct {
	bun.BaseModel `bun:"table:authors"`

	ID   int64  `bun:"id,pk,autoincrement" json:"id"`
	Name string `bun:"name" json:"name"`
}

type Article struct {
	bun.BaseModel `bun:"table:articles"`

	ID       int64   `bun:"id,pk,autoincrement" json:"id"`
	Name     string  `bun:"name" json:"name"`
	AuthorID int64   `bun:"author_id" json:"authorId"`
	Author   *Author `bun:"rel:belongs-to,join:author_id=id" json:"author,omitempty"`
}

// newArticleDB returns a seeded SQLite database holding 25 articles, three
// of which have "abc" in their name in some letter case.
func newArticleDB(t *testing.T) (*bun.DB, *testsupport.QueryCounter) {
	t.Helper()

	db := testsupport.NewSQLiteDB(t)
	testsupport.CreateTables(t, db, (*Author)(nil), (*Article)(nil))
	testsupport.SeedJSON[Author](t, db, testsupport.FixturePath("authors.json"))
	testsupport.SeedJSON[Article](t, db, testsupport.FixturePath("articles.json"))

	return db, testsupport.NewQueryCounter(db)
}

func articleOptions() query.Options {
	return query.Options{
		Model:             "articles",
		SortableColumns:   []string{"id", "name"},
		FilterableColumns: []string{"name"},
	}
}

func articleConfig(t *testing.T) query.Config {
	t.Helper()
	cfg, err := query.NewConfig(articleOptions())
	if err != nil {
		t.Fatalf("NewConfig() error = %v", err)
	}
	return cfg
}

func newArticleService(t *testing.T, db bun.IDB, opts ...Option) *Service[Article] {
	t.Helper()
	svc, err := NewService[Article](articleConfig(t), NewBunExecutor[Article](db), opts...)
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}
	return svc
}

// countingExecutor returns rows from a fixed slice and counts executions.
type countingExecutor struct {
	rows  []Article
	calls atomic.Int64
	err   error
	plans chan Plan
}

func (e *countingExecutor) Execute(_ context.Context, plan Plan) ([]Article, int, error) {
	e.calls.Add(1)
	if e.plans != nil {
		e.plans <- plan
	}
	if e.err != nil {
		return nil, 0, e.err
	}

	end := plan.Offset() + plan.Limit
	if end > len(e.rows) {
		end = len(e.rows)
	}
	if plan.Offset() >= len(e.rows) {
		return nil, len(e.rows), nil
	}
	return e.rows[plan.Offset():end], len(e.rows), nil
}

func (e *countingExecutor) Calls() int {
	return int(e.calls.Load())
}

func sampleArticles(n int) []Article {
	rows := make([]Article, n)
	for i := range rows {
		rows[i] = Article{ID: int64(i + 1), Name: "article", AuthorID: 1}
	}
	return rows
}

package testsupport

import (
	"context"
	"database/sql"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

// NewSQLiteDB opens a private in-memory SQLite database for the test. The
// database is closed when the test ends.
func NewSQLiteDB(t testing.TB) *bun.DB {
	t.Helper()

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	sqldb, err := sql.Open("sqlite3", dsn)
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	// A shared-cache memory database lives as long as one connection does.
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() { db.Close() })
	return db
}

// CreateTables creates one table per model, failing the test on error.
func CreateTables(t testing.TB, db bun.IDB, models ...any) {
	t.Helper()

	ctx := context.Background()
	for _, model := range models {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			t.Fatalf("failed to create table for %T: %v", model, err)
		}
	}
}

// SeedJSON loads a JSON array fixture into []T and inserts it. It returns
// the inserted rows.
func SeedJSON[T any](t *testing.T, db bun.IDB, path string) []T {
	t.Helper()

	var rows []T
	LoadFixtureJSON(t, path, &rows)
	if len(rows) == 0 {
		return rows
	}

	if _, err := db.NewInsert().Model(&rows).Exec(context.Background()); err != nil {
		t.Fatalf("failed to seed %s: %v", path, err)
	}
	return rows
}

// QueryCounter is a bun query hook that records every executed statement.
type QueryCounter struct {
	count atomic.Int64

	mu      sync.Mutex
	queries []string
}

var _ bun.QueryHook = (*QueryCounter)(nil)

// NewQueryCounter installs a counter on db.
func NewQueryCounter(db *bun.DB) *QueryCounter {
	c := &QueryCounter{}
	db.AddQueryHook(c)
	return c
}

func (c *QueryCounter) BeforeQuery(ctx context.Context, _ *bun.QueryEvent) context.Context {
	return ctx
}

func (c *QueryCounter) AfterQuery(_ context.Context, event *bun.QueryEvent) {
	c.count.Add(1)

	c.mu.Lock()
	c.queries = append(c.queries, event.Query)
	c.mu.Unlock()
}

// Count returns the number of statements executed since the last Reset.
func (c *QueryCounter) Count() int {
	return int(c.count.Load())
}

// Queries returns the statements executed since the last Reset.
func (c *QueryCounter) Queries() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.queries...)
}

func (c *QueryCounter) Reset() {
	c.count.Store(0)

	c.mu.Lock()
	c.queries = nil
	c.mu.Unlock()
}

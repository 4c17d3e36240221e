package paginate

import (
	"strings"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-repository-pager/query"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
)

// Plan is an executable description of one list query. It is a plain value:
// assembling the same inputs twice yields equal plans, and Criteria builds
// a fresh, equivalent criteria chain on every call.
type Plan struct {
	query.Normalized

	Model         string
	CaseSensitive bool
	// UseQueryCache asks the executor to serve the compiled query from its
	// query result cache when it has one.
	UseQueryCache bool
}

// Assemble builds the plan for a normalized request.
func Assemble(cfg query.Config, n query.Normalized, useQueryCache bool) Plan {
	return Plan{
		Normalized:    n,
		Model:         cfg.Model(),
		CaseSensitive: cfg.CaseSensitive(),
		UseQueryCache: useQueryCache,
	}
}

// Criteria returns the plan as select criteria in composition order:
// filters, relation includes, sort, then the page window.
func (p Plan) Criteria() []repository.SelectCriteria {
	criteria := make([]repository.SelectCriteria, 0, len(p.Filters)+len(p.Relations)+2)

	for _, f := range p.Filters {
		criteria = append(criteria, filterCriteria(f, p.CaseSensitive))
	}
	criteria = append(criteria, includeRelations(p.Relations)...)
	criteria = append(criteria, sortCriteria(p.SortBy), windowCriteria(p.Limit, p.Offset()))

	return criteria
}

// Apply runs every criterion of the plan against q.
func (p Plan) Apply(q *bun.SelectQuery) *bun.SelectQuery {
	for _, c := range p.Criteria() {
		q = c(q)
	}
	return q
}

func filterCriteria(f query.Filter, caseSensitive bool) repository.SelectCriteria {
	switch f := f.(type) {
	case query.Contains:
		return containsCriteria(f, caseSensitive)
	default:
		return func(q *bun.SelectQuery) *bun.SelectQuery { return q }
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePattern wraps value in wildcards, escaping LIKE metacharacters so the
// value is matched literally.
func likePattern(value string) string {
	return "%" + likeEscaper.Replace(value) + "%"
}

// containsCriteria matches rows whose column contains f.Value.
//
// Case-insensitive matching lowers both sides in SQL so the column and the
// value are folded by the same function. SQLite's lower and LIKE only fold
// ASCII letters, so there non-ASCII letters must match in case. SQLite's LIKE
// also ignores ASCII case, so exact-case matching there uses instr.
func containsCriteria(f query.Contains, caseSensitive bool) repository.SelectCriteria {
	return func(q *bun.SelectQuery) *bun.SelectQuery {
		col := bun.Ident(f.Column)

		if !caseSensitive {
			return q.Where(`lower(?TableAlias.?) LIKE lower(?) ESCAPE '\'`, col, likePattern(f.Value))
		}
		if q.Dialect().Name() == dialect.SQLite {
			return q.Where("instr(?TableAlias.?, ?) > 0", col, f.Value)
		}
		return q.Where(`?TableAlias.? LIKE ? ESCAPE '\'`, col, likePattern(f.Value))
	}
}

// includeRelations emits one eager-load directive per relation name. Names
// are not checked here; bun reports unknown relations when the query runs.
func includeRelations(names []string) []repository.SelectCriteria {
	criteria := make([]repository.SelectCriteria, 0, len(names))
	for _, name := range names {
		criteria = append(criteria, func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Relation(name)
		})
	}
	return criteria
}

func sortCriteria(sortBy []query.SortBy) repository.SelectCriteria {
	return func(q *bun.SelectQuery) *bun.SelectQuery {
		for _, s := range sortBy {
			q = q.OrderExpr("?TableAlias.? "+string(s.Direction), bun.Ident(s.Column))
		}
		return q
	}
}

func windowCriteria(limit, offset int) repository.SelectCriteria {
	return func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Limit(limit).Offset(offset)
	}
}

package query

import "strings"

// Direction defines the sort direction for the requested dataset.
type Direction string

const (
	DirectionASC  Direction = "ASC"
	DirectionDESC Direction = "DESC"
)

func (d Direction) Valid() bool {
	return d == DirectionASC || d == DirectionDESC
}

// ParseDirection accepts "asc"/"desc" in any case.
func ParseDirection(s string) (Direction, bool) {
	d := Direction(strings.ToUpper(strings.TrimSpace(s)))
	return d, d.Valid()
}

// SortBy is a single (column, direction) ordering directive.
type SortBy struct {
	Column    string    `json:"column"`
	Direction Direction `json:"direction"`
}

// PaginateQuery is the caller supplied list request.
//
// Filter maps a column to an `operator:value` expression, for example
// {"name": "contains:foo"}. With lists relations to eager load.
type PaginateQuery struct {
	Page   int               `json:"page"`
	Limit  int               `json:"limit"`
	SortBy []SortBy          `json:"sortBy,omitempty"`
	Filter map[string]string `json:"filter,omitempty"`
	With   []string          `json:"with,omitempty"`
}

// Normalized is a PaginateQuery after the entity allow-lists and limits
// have been applied. Only the values held here ever reach the store.
type Normalized struct {
	Page    int
	Limit   int
	SortBy  []SortBy
	Filters []Filter
	// Leftover holds the filter entries that were not translated into
	// predicates: unknown columns, unknown operators, malformed expressions.
	Leftover  map[string]string
	Relations []string
}

// Offset returns the number of rows skipped before the current page.
func (n Normalized) Offset() int {
	return (n.Page - 1) * n.Limit
}

// FilterMap renders the applied filters back to their wire form. It returns
// nil when no filter was applied, so an empty map and a missing filter echo
// the same way.
func (n Normalized) FilterMap() map[string]string {
	if len(n.Filters) == 0 {
		return nil
	}
	out := make(map[string]string, len(n.Filters))
	for _, f := range n.Filters {
		out[f.FilterColumn()] = f.String()
	}
	return out
}

package query

import (
	"sort"
	"strings"

	"github.com/samber/lo"
)

// Operator identifies a filter operation in an `operator:value` expression.
type Operator string

const (
	OperatorContains Operator = "contains"

	// operatorLike is the legacy spelling of OperatorContains.
	operatorLike Operator = "$like"
)

// FilterSeparator splits the operator from the value in a filter expression.
const FilterSeparator = ":"

// Filter is a parsed filter expression bound to a column.
//
// The set of implementations is closed; callers switch on the concrete type.
type Filter interface {
	FilterColumn() string
	FilterOperator() Operator
	// String renders the filter back to its canonical `operator:value` form.
	String() string

	filter()
}

// Contains matches rows whose column contains Value as a substring.
type Contains struct {
	Column string
	Value  string
}

func (c Contains) FilterColumn() string     { return c.Column }
func (c Contains) FilterOperator() Operator { return OperatorContains }
func (c Contains) String() string           { return string(OperatorContains) + FilterSeparator + c.Value }
func (Contains) filter()                    {}

// ParseFilterExpression parses a single `operator:value` expression for column.
// The expression is cut at the first separator, so the value may itself
// contain colons. ok is false for anything that is not a supported operator.
func ParseFilterExpression(column, expr string) (Filter, bool) {
	op, value, found := strings.Cut(expr, FilterSeparator)
	if !found {
		return nil, false
	}

	switch Operator(strings.TrimSpace(op)) {
	case OperatorContains, operatorLike:
		return Contains{Column: column, Value: value}, true
	default:
		return nil, false
	}
}

// ParseFilters translates the raw filter map into typed filters.
//
// Only columns listed in filterable are considered. Every translated entry is
// removed from the returned leftover map, so an empty leftover means the raw
// map was fully consumed. Parsing never fails; entries it cannot use are left
// in leftover and are not applied. Filters are returned sorted by column.
func ParseFilters(raw map[string]string, filterable []string) ([]Filter, map[string]string) {
	leftover := make(map[string]string, len(raw))
	var filters []Filter

	for column, expr := range raw {
		if !lo.Contains(filterable, column) {
			leftover[column] = expr
			continue
		}

		f, ok := ParseFilterExpression(column, expr)
		if !ok {
			leftover[column] = expr
			continue
		}
		filters = append(filters, f)
	}

	sort.Slice(filters, func(i, j int) bool {
		return filters[i].FilterColumn() < filters[j].FilterColumn()
	})

	return filters, leftover
}

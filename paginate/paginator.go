package paginate

import "context"

// Paginate executes plan and wraps the rows in a page envelope. The applied
// sort and filters are echoed back so callers can tell which of the
// requested ones survived the allow-lists.
func Paginate[T any](ctx context.Context, exec Executor[T], plan Plan) (Paginated[T], error) {
	rows, total, err := exec.Execute(ctx, plan)
	if err != nil {
		return Paginated[T]{}, err
	}

	if rows == nil {
		rows = []T{}
	}
	if len(rows) > plan.Limit {
		rows = rows[:plan.Limit]
	}

	return Paginated[T]{
		Data:   rows,
		Meta:   newMeta(total, plan.Page, plan.Limit, len(rows)),
		SortBy: plan.SortBy,
		Filter: plan.FilterMap(),
	}, nil
}

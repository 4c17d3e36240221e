package paginate

import "github.com/goliatone/go-repository-pager/query"

// Paginated is the page envelope returned by every list operation.
type Paginated[T any] struct {
	Data []T  `json:"data"`
	Meta Meta `json:"meta"`
	// SortBy is the ordering actually applied after allow-list filtering.
	SortBy []query.SortBy `json:"sortBy"`
	// Filter holds the applied filters in `operator:value` form. It is nil
	// when no filter was applied.
	Filter map[string]string `json:"filter,omitempty"`
}

// Meta describes where the page sits in the full result set.
type Meta struct {
	ItemsPerPage int `json:"itemsPerPage"`
	TotalItems   int `json:"totalItems"`
	CurrentPage  int `json:"currentPage"`
	TotalPages   int `json:"totalPages"`
	ItemCount    int `json:"itemCount"`
}

func newMeta(totalItems, currentPage, itemsPerPage, itemCount int) Meta {
	totalPages := 0
	if itemsPerPage > 0 {
		totalPages = (totalItems + itemsPerPage - 1) / itemsPerPage
	}

	return Meta{
		ItemsPerPage: itemsPerPage,
		TotalItems:   totalItems,
		CurrentPage:  currentPage,
		TotalPages:   totalPages,
		ItemCount:    itemCount,
	}
}

package appwrite

import (
	"context"
)

// ListFunc is one paged listing call.
type ListFunc[T any] func(ctx context.Context, queries ...Query) ([]T, error)

// FetchAll drains a paged listing endpoint: it requests pages of pageSize
// items, following the cursor of each page's last item, until a short page
// signals the end. Items come back in the service's listing order, each
// exactly once. The first remote error aborts the whole traversal.
func FetchAll[T any](
	ctx context.Context,
	pageSize int,
	key func(T) string,
	list ListFunc[T],
) ([]T, error) {
	var all []T

	cursor := ""

	for {
		queries := []Query{QueryLimit(pageSize)}
		if cursor != "" {
			queries = append(queries, QueryCursorAfter(cursor))
		}

		page, err := list(ctx, queries...)
		if err != nil {
			return nil, err
		}

		all = append(all, page...)

		if len(page) < pageSize {
			return all, nil
		}

		cursor = key(page[len(page)-1])
	}
}

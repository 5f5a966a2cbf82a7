package github

import "context"

// fetchPageFunc retrieves one page of a size-paged listing endpoint.
type fetchPageFunc[T any] func(ctx context.Context, page int) ([]T, error)

// fetchSearchPageFunc retrieves one page of a count-paged search endpoint.
type fetchSearchPageFunc[T any] func(ctx context.Context, page int) (searchPage[T], error)

// searchPage mirrors the body of the paginated search endpoints, which report
// a running total alongside each page of items.
type searchPage[T any] struct {
	TotalCount        int  `json:"total_count"`
	IncompleteResults bool `json:"incomplete_results"`
	Items             []T  `json:"items"`
}

// collectSizePaged walks a listing endpoint that reports no total count,
// page 1 upward, and returns the concatenation of every page in server order.
// A page with fewer than perPage items signals exhaustion; when the true
// count is an exact multiple of perPage this costs one extra request that
// returns an empty page. Any page failure aborts the whole walk: the error is
// returned and the pages fetched so far are discarded, so callers never
// mistake a truncated collection for a complete one.
func collectSizePaged[T any](ctx context.Context, perPage int, fetch fetchPageFunc[T]) ([]T, error) {
	var all []T
	for page := 1; ; page++ {
		items, err := fetch(ctx, page)
		if err != nil {
			return nil, err
		}

		all = append(all, items...)

		if len(items) < perPage {
			return all, nil
		}
	}
}

// collectCountPaged walks a search endpoint that reports a total count,
// accumulating until the total is reached. When the server flags the results
// as incomplete the walk stops early and returns what it has rather than
// chasing a total the server will not honor. No de-duplication is performed:
// a resource shifted across pages by concurrent server-side mutation shows up
// twice. Failure semantics match collectSizePaged.
func collectCountPaged[T any](ctx context.Context, fetch fetchSearchPageFunc[T]) ([]T, error) {
	var all []T
	for page := 1; ; page++ {
		resp, err := fetch(ctx, page)
		if err != nil {
			return nil, err
		}

		all = append(all, resp.Items...)

		if resp.IncompleteResults || len(all) >= resp.TotalCount {
			return all, nil
		}

		// An empty page below the reported total would loop forever.
		if len(resp.Items) == 0 {
			return all, nil
		}
	}
}

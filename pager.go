package pantry

import "context"

// Direction tells the loader which side of the cursor to fetch.
// Backward pages older content (the normal scroll direction for a feed
// ordered newest-first); Forward pages newer content.
type Direction int

const (
	DirectionBackward Direction = iota
	DirectionForward
)

func (d Direction) String() string {
	if d == DirectionForward {
		return "forward"
	}
	return "backward"
}

// PageParams is the request shape passed to a PageLoader.
type PageParams struct {
	Limit        int
	Cursor       string // Empty for the first page (cursor pagers)
	CursorColumn string // Opaque label, forwarded as configured
	Offset       int    // Offset pagers only
	Direction    Direction
}

// PageLoader fetches one page of items. It must return an error on failure
// rather than a sentinel page, and should be idempotent enough that the
// caller retrying is safe. Timeouts and retries are the loader's concern;
// pagers impose neither.
type PageLoader[T any] func(ctx context.Context, p PageParams) ([]T, error)

// PagerState is an immutable snapshot of a pager's UI state. Mutation
// happens only through pager operations; observers always see whole
// snapshots.
type PagerState[T any] struct {
	Items           []T
	Loading         bool // Initial load or refresh in flight
	LoadingMore     bool
	LoadingPrevious bool // Cursor pagers only
	HasMore         bool
	HasPrevious     bool // Cursor pagers only

	// Err is set only by failed initial loads and refreshes. Incremental
	// load failures go to LoadMoreErr so a transient pagination error does
	// not clobber an otherwise clean loaded state; UI can surface it as a
	// toast and clear it on the next successful page.
	Err         error
	LoadMoreErr error
}

// IsEmpty reports an empty, settled state (no items and not loading).
func (s PagerState[T]) IsEmpty() bool {
	return len(s.Items) == 0 && !s.Loading
}

// CanLoadMore reports whether a LoadMore call would do anything.
func (s PagerState[T]) CanLoadMore() bool {
	return s.HasMore && !s.LoadingMore && !s.Loading && !s.LoadingPrevious
}

// anyLoading guards the one-operation-in-flight invariant.
func (s PagerState[T]) anyLoading() bool {
	return s.Loading || s.LoadingMore || s.LoadingPrevious
}

// snapshotItems copies the item slice so published snapshots never alias the
// pager's mutable backing array.
func snapshotItems[T any](items []T) []T {
	if len(items) == 0 {
		return nil
	}
	out := make([]T, len(items))
	copy(out, items)
	return out
}

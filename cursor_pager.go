package pantry

import (
	"context"
	"sync"

	"pantry/internal/watch"
)

// CursorPager maintains a paginated, bidirectionally scrollable window over
// a cursor-ordered data source (feeds, chat history). Cursors are always
// recomputed from the edges of the page just merged in, never from the
// accumulated item list, so a realtime Prepend cannot corrupt the paging
// position.
//
// Operations are guarded, not locked across the loader call: at most one of
// LoadInitial/LoadMore/LoadPrevious is in flight per pager, and a re-entrant
// call while a matching operation is running is a no-op.
type CursorPager[T any] struct {
	mu       sync.Mutex
	pageSize int
	column   string
	cursorOf func(T) string
	loader   PageLoader[T]

	items   []T
	st      PagerState[T] // Flags and errors only; items tracked above
	next    string
	prev    string
	hasNext bool
	hasPrev bool

	w   *watch.Value[PagerState[T]]
	log Logger
}

// NewCursorPager creates a pager over loader. column is an opaque cursor
// column label forwarded in every PageParams; cursorOf extracts an item's
// cursor value.
func NewCursorPager[T any](pageSize int, column string, cursorOf func(T) string, loader PageLoader[T], opts ...Option) (*CursorPager[T], error) {
	if pageSize <= 0 {
		return nil, ErrInvalidPageSize
	}
	if loader == nil || cursorOf == nil {
		return nil, ErrNilLoader
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	p := &CursorPager[T]{
		pageSize: pageSize,
		column:   column,
		cursorOf: cursorOf,
		loader:   loader,
		w:        watch.New(PagerState[T]{}),
		log:      o.logger,
	}
	return p, nil
}

// State returns the latest published snapshot.
func (p *CursorPager[T]) State() PagerState[T] {
	return p.w.Load()
}

// Watch subscribes to state snapshots. Latest-wins delivery.
func (p *CursorPager[T]) Watch() (<-chan PagerState[T], func()) {
	return p.w.Watch()
}

// publish must be called with p.mu held.
func (p *CursorPager[T]) publish() {
	snap := p.st
	snap.Items = snapshotItems(p.items)
	p.w.Store(snap)
}

// LoadInitial loads the first page, replacing any existing items. No-op if
// any load is already in flight. A failure lands in State().Err; previous
// items are preserved.
func (p *CursorPager[T]) LoadInitial(ctx context.Context) {
	p.mu.Lock()
	if p.st.anyLoading() {
		p.mu.Unlock()
		return
	}
	p.st.Loading = true
	p.st.Err = nil
	p.publish()
	params := PageParams{
		Limit:        p.pageSize,
		CursorColumn: p.column,
		Direction:    DirectionBackward,
	}
	p.mu.Unlock()

	page, err := p.loader(ctx, params)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.st.Loading = false
	if err != nil {
		p.st.Err = err
		p.publish()
		return
	}

	p.items = append(p.items[:0], page...)
	if len(page) > 0 {
		p.next = p.cursorOf(page[len(page)-1])
		p.prev = p.cursorOf(page[0])
		p.hasNext = true
		p.hasPrev = true
	} else {
		p.next, p.prev = "", ""
		p.hasNext, p.hasPrev = false, false
	}
	p.st.HasMore = len(page) >= p.pageSize
	// An initial load starts at the query's edge; previous pages only exist
	// once LoadPrevious or a realtime Prepend establishes them.
	p.st.HasPrevious = false
	p.st.LoadMoreErr = nil
	p.publish()
}

// LoadMore appends the next (backward) page. No-op unless CanLoadMore. On
// failure existing items are kept and the error is surfaced through
// State().LoadMoreErr only.
func (p *CursorPager[T]) LoadMore(ctx context.Context) {
	p.mu.Lock()
	if !p.st.CanLoadMore() || !p.hasNext {
		p.mu.Unlock()
		return
	}
	p.st.LoadingMore = true
	p.publish()
	params := PageParams{
		Limit:        p.pageSize,
		Cursor:       p.next,
		CursorColumn: p.column,
		Direction:    DirectionBackward,
	}
	p.mu.Unlock()

	page, err := p.loader(ctx, params)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.st.LoadingMore = false
	if err != nil {
		p.st.LoadMoreErr = err
		p.publish()
		return
	}

	p.items = append(p.items, page...)
	if len(page) > 0 {
		p.next = p.cursorOf(page[len(page)-1])
	}
	// The new page's size alone decides whether more pages exist.
	p.st.HasMore = len(page) >= p.pageSize
	p.st.LoadMoreErr = nil
	p.publish()
}

// LoadPrevious prepends the next forward page (newer content). No-op when no
// previous cursor is established or any load is in flight.
func (p *CursorPager[T]) LoadPrevious(ctx context.Context) {
	p.mu.Lock()
	if p.st.anyLoading() || !p.hasPrev {
		p.mu.Unlock()
		return
	}
	p.st.LoadingPrevious = true
	p.publish()
	params := PageParams{
		Limit:        p.pageSize,
		Cursor:       p.prev,
		CursorColumn: p.column,
		Direction:    DirectionForward,
	}
	p.mu.Unlock()

	page, err := p.loader(ctx, params)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.st.LoadingPrevious = false
	if err != nil {
		p.st.LoadMoreErr = err
		p.publish()
		return
	}

	if len(page) > 0 {
		merged := make([]T, 0, len(page)+len(p.items))
		merged = append(merged, page...)
		p.items = append(merged, p.items...)
		p.prev = p.cursorOf(page[0])
	}
	p.st.HasPrevious = len(page) >= p.pageSize
	p.st.LoadMoreErr = nil
	p.publish()
}

// Refresh discards everything and reloads from the top. Not a diff/merge.
func (p *CursorPager[T]) Refresh(ctx context.Context) {
	p.mu.Lock()
	if p.st.anyLoading() {
		p.mu.Unlock()
		return
	}
	p.items = nil
	p.next, p.prev = "", ""
	p.hasNext, p.hasPrev = false, false
	p.st = PagerState[T]{}
	p.publish()
	p.mu.Unlock()

	p.LoadInitial(ctx)
}

// Prepend inserts an item at the front and adopts its cursor as the previous
// cursor. For realtime pushes of new items.
func (p *CursorPager[T]) Prepend(item T) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.items = append([]T{item}, p.items...)
	p.prev = p.cursorOf(item)
	p.hasPrev = true
	p.publish()
}

// Append inserts an item at the tail and adopts its cursor as the next
// cursor.
func (p *CursorPager[T]) Append(item T) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.items = append(p.items, item)
	p.next = p.cursorOf(item)
	p.hasNext = true
	p.publish()
}

// Remove deletes every item matching the predicate.
func (p *CursorPager[T]) Remove(match func(T) bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	kept := p.items[:0]
	for _, it := range p.items {
		if !match(it) {
			kept = append(kept, it)
		}
	}
	p.items = kept
	p.publish()
}

// Update replaces the first item whose extracted id matches the given
// item's id.
func (p *CursorPager[T]) Update(item T, idOf func(T) string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	id := idOf(item)
	for i := range p.items {
		if idOf(p.items[i]) == id {
			p.items[i] = item
			p.publish()
			return
		}
	}
}

// IsLastItem reports whether the item is the current last element. UI uses
// this near the end of a scroll to trigger LoadMore.
func (p *CursorPager[T]) IsLastItem(item T, idOf func(T) string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.items) == 0 {
		return false
	}
	return idOf(p.items[len(p.items)-1]) == idOf(item)
}

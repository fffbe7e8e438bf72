package pantry

import (
	"context"
	"sync"

	"pantry/internal/watch"
)

// OffsetPager is the page-number sibling of CursorPager, for data sources
// without a natural ordering cursor (arbitrary search result sets). LoadMore
// always appends; there is no previous-page support.
type OffsetPager[T any] struct {
	mu       sync.Mutex
	pageSize int
	loader   PageLoader[T]

	items []T
	st    PagerState[T]
	page  int // Next page number to fetch; offset = page * pageSize

	w   *watch.Value[PagerState[T]]
	log Logger
}

// NewOffsetPager creates a pager over loader with the given page size.
func NewOffsetPager[T any](pageSize int, loader PageLoader[T], opts ...Option) (*OffsetPager[T], error) {
	if pageSize <= 0 {
		return nil, ErrInvalidPageSize
	}
	if loader == nil {
		return nil, ErrNilLoader
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &OffsetPager[T]{
		pageSize: pageSize,
		loader:   loader,
		w:        watch.New(PagerState[T]{}),
		log:      o.logger,
	}, nil
}

// State returns the latest published snapshot.
func (p *OffsetPager[T]) State() PagerState[T] {
	return p.w.Load()
}

// Watch subscribes to state snapshots. Latest-wins delivery.
func (p *OffsetPager[T]) Watch() (<-chan PagerState[T], func()) {
	return p.w.Watch()
}

// publish must be called with p.mu held.
func (p *OffsetPager[T]) publish() {
	snap := p.st
	snap.Items = snapshotItems(p.items)
	p.w.Store(snap)
}

// LoadInitial loads page zero, replacing any existing items. No-op if a load
// is already in flight.
func (p *OffsetPager[T]) LoadInitial(ctx context.Context) {
	p.mu.Lock()
	if p.st.anyLoading() {
		p.mu.Unlock()
		return
	}
	p.st.Loading = true
	p.st.Err = nil
	p.publish()
	params := PageParams{Limit: p.pageSize, Offset: 0}
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
	p.page = 1
	p.st.HasMore = len(page) >= p.pageSize
	p.st.LoadMoreErr = nil
	p.publish()
}

// LoadMore appends the next page. No-op unless CanLoadMore.
func (p *OffsetPager[T]) LoadMore(ctx context.Context) {
	p.mu.Lock()
	if !p.st.CanLoadMore() {
		p.mu.Unlock()
		return
	}
	p.st.LoadingMore = true
	p.publish()
	params := PageParams{Limit: p.pageSize, Offset: p.page * p.pageSize}
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
	p.page++
	p.st.HasMore = len(page) >= p.pageSize
	p.st.LoadMoreErr = nil
	p.publish()
}

// Refresh discards everything and reloads from page zero.
func (p *OffsetPager[T]) Refresh(ctx context.Context) {
	p.mu.Lock()
	if p.st.anyLoading() {
		p.mu.Unlock()
		return
	}
	p.items = nil
	p.page = 0
	p.st = PagerState[T]{}
	p.publish()
	p.mu.Unlock()

	p.LoadInitial(ctx)
}

// Remove deletes every item matching the predicate.
func (p *OffsetPager[T]) Remove(match func(T) bool) {
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

// Update replaces the first item whose extracted id matches.
func (p *OffsetPager[T]) Update(item T, idOf func(T) string) {
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

// IsLastItem reports whether the item is the current last element.
func (p *OffsetPager[T]) IsLastItem(item T, idOf func(T) string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.items) == 0 {
		return false
	}
	return idOf(p.items[len(p.items)-1]) == idOf(item)
}

package pantry

import (
	"sync"
	"time"

	"pantry/internal/watch"
)

// Prefetcher is the bounded prefetch queue and its admission controller. It
// owns the Requested -> {Admitted | Rejected} transition and the success/
// failure/cache-hit bookkeeping reported back by the dispatcher; it performs
// no I/O itself.
//
// Rejection is silent: best-effort prefetch has no actionable recourse for
// the caller, so a rejected enqueue is observable only through the queue
// length and stats staying unchanged.
type Prefetcher struct {
	mu     sync.Mutex
	queue  []Request
	paused bool

	opts  options
	ctrs  counters
	stats *watch.Value[Stats]
	wake  chan struct{}
	log   Logger
}

// NewPrefetcher creates a prefetcher with the given options.
func NewPrefetcher(opts ...Option) *Prefetcher {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Prefetcher{
		queue: make([]Request, 0, o.profile.MaxQueueSize),
		opts:  o,
		stats: watch.New(Stats{}),
		wake:  make(chan struct{}, 1),
		log:   o.logger,
	}
}

// Enqueue requests a speculative fetch. Admission gates run in order against
// a fresh device snapshot, each a hard silent reject:
//
//  1. paused controller (not counted as an attempt)
//  2. queue at capacity (drop-newest backpressure: queued requests are
//     closer to being served and reflect more recent genuine intent)
//  3. network offline, regardless of priority
//  4. low battery while not charging, unless priority >= High
//  5. low memory, unless priority == Critical
//  6. metered network, unless priority >= Normal
//
// A zero ttl takes the profile default. On admission the request is appended
// and TotalRequests is incremented.
func (p *Prefetcher) Enqueue(content ContentType, contentID, url string, pri Priority, reason Reason, ttl time.Duration) {
	state := p.opts.device()

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.paused {
		return
	}
	if len(p.queue) >= p.opts.profile.MaxQueueSize {
		return
	}
	if !admit(state, pri) {
		return
	}

	if ttl <= 0 {
		ttl = p.opts.profile.DefaultTTL.Duration
	}
	req := newRequest(content, contentID, url, pri, reason, ttl, p.opts.clock())
	p.queue = append(p.queue, req)
	p.ctrs.total.Add(1)
	p.stats.Store(p.ctrs.snapshot())
	p.log.Info("prefetch admitted",
		"id", req.ID, "content", content.String(), "priority", pri.String(), "reason", reason.String())

	select {
	case p.wake <- struct{}{}:
	default:
	}
}

// admit applies the device-state gates. Priority thresholds are strict:
// a request must be strictly below the gate's threshold to be rejected, so
// Normal is admitted on a metered network while Low is not.
func admit(state DeviceState, pri Priority) bool {
	if state.Network == NetworkOffline {
		return false
	}
	if state.LowBattery && !state.Charging && pri < PriorityHigh {
		return false
	}
	if state.LowMemory && pri < PriorityCritical {
		return false
	}
	if state.Metered && pri < PriorityNormal {
		return false
	}
	return true
}

// Pause stops new admissions. Requests already admitted or delegated to the
// dispatcher are unaffected; cancelling in-flight work is the loader's
// responsibility.
func (p *Prefetcher) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.paused = true
}

// Resume re-enables admissions.
func (p *Prefetcher) Resume() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.paused = false
}

// Paused reports whether admissions are paused.
func (p *Prefetcher) Paused() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.paused
}

// Clear drops all not-yet-dispatched requests. Counters are untouched.
func (p *Prefetcher) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.queue = p.queue[:0]
}

// Len returns the number of queued requests.
func (p *Prefetcher) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.queue)
}

// pop removes and returns the next request to dispatch: highest priority
// first, oldest first within a priority. Requests past their TTL are dropped
// on the way.
func (p *Prefetcher) pop() (Request, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.opts.clock()
	best := -1
	for i := 0; i < len(p.queue); i++ {
		if p.queue[i].Expired(now) {
			p.queue = append(p.queue[:i], p.queue[i+1:]...)
			i--
			continue
		}
		if best < 0 || p.queue[i].Priority > p.queue[best].Priority {
			best = i
		}
	}
	if best < 0 {
		return Request{}, false
	}

	req := p.queue[best]
	p.queue = append(p.queue[:best], p.queue[best+1:]...)
	return req, true
}

// wakeCh signals the dispatcher that the queue may be non-empty.
func (p *Prefetcher) wakeCh() <-chan struct{} {
	return p.wake
}

// RecordSuccess reports a completed fetch of the given size. Called by the
// dispatcher, or directly by an external loader integration.
func (p *Prefetcher) RecordSuccess(bytes int64) {
	p.ctrs.succeeded.Add(1)
	if bytes > 0 {
		p.ctrs.bytes.Add(uint64(bytes))
	}
	p.stats.Store(p.ctrs.snapshot())
}

// RecordFailure reports a failed fetch. Never retried here.
func (p *Prefetcher) RecordFailure() {
	p.ctrs.failed.Add(1)
	p.stats.Store(p.ctrs.snapshot())
}

// RecordCacheHit reports a fetch satisfied without network work.
func (p *Prefetcher) RecordCacheHit() {
	p.ctrs.cacheHits.Add(1)
	p.stats.Store(p.ctrs.snapshot())
}

// Stats recomputes rates from the raw counters on every call so the snapshot
// is always total-consistent.
func (p *Prefetcher) Stats() Stats {
	return p.ctrs.snapshot()
}

// WatchStats subscribes to stats snapshots. Latest-wins delivery; call the
// cancel func to unsubscribe.
func (p *Prefetcher) WatchStats() (<-chan Stats, func()) {
	return p.stats.Watch()
}

// ResetStats zeroes all counters and republishes.
func (p *Prefetcher) ResetStats() {
	p.ctrs.reset()
	p.stats.Store(p.ctrs.snapshot())
}

// PrefetchListingDetail queues the detail view of a listing the user is
// likely to open.
func (p *Prefetcher) PrefetchListingDetail(listingID string) {
	p.Enqueue(ContentListingDetail, listingID, "", PriorityHigh, ReasonExplicit, 0)
}

// PrefetchUserProfile queues a user's public profile.
func (p *Prefetcher) PrefetchUserProfile(userID string) {
	p.Enqueue(ContentUserProfile, userID, "", PriorityNormal, ReasonExplicit, 0)
}

// PrefetchChatMessages queues the recent messages of a chat room.
func (p *Prefetcher) PrefetchChatMessages(roomID string) {
	p.Enqueue(ContentChatMessages, roomID, "", PriorityHigh, ReasonExplicit, 0)
}

// PrefetchImages queues one low-priority request per URL, truncated to the
// profile's ImagePrefetchLimit.
func (p *Prefetcher) PrefetchImages(urls []string) {
	if limit := p.opts.profile.ImagePrefetchLimit; len(urls) > limit {
		urls = urls[:limit]
	}
	for _, u := range urls {
		if u == "" {
			continue
		}
		p.Enqueue(ContentImage, "", u, PriorityLow, ReasonExplicit, 0)
	}
}

// PrefetchForScroll queues listing details for the lookahead window just
// past the last visible index: [lastVisible+1, min(lastVisible+lookahead,
// totalItems-1)], one low-priority request per valid item id.
func (p *Prefetcher) PrefetchForScroll(lastVisible, totalItems int, itemIDs []string) {
	if totalItems <= 0 || lastVisible < -1 {
		return
	}
	start := lastVisible + 1
	end := min(lastVisible+p.opts.scrollLookahead, totalItems-1)
	for i := start; i <= end; i++ {
		if i < 0 || i >= len(itemIDs) || itemIDs[i] == "" {
			continue
		}
		p.Enqueue(ContentListingDetail, itemIDs[i], "", PriorityLow, ReasonScrollLookahead, 0)
	}
}

package pantry

import (
	"context"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/elastic/go-freelru"
	"golang.org/x/time/rate"
)

// FetchFunc performs the actual fetch for an admitted request and returns
// the number of bytes transferred. The dispatcher never retries; failures
// are counted and dropped.
type FetchFunc func(ctx context.Context, req Request) (int64, error)

// pollInterval bounds how long an idle worker sleeps between queue checks.
const pollInterval = 250 * time.Millisecond

// Dispatcher drains the prefetch queue with a bounded worker pool. Before
// fetching it consults an LRU of recently fetched content keys; a hit is
// recorded as a cache hit and skipped. Once the session byte budget is
// spent, dispatch stops until the stats are reset.
type Dispatcher struct {
	pf        *Prefetcher
	fetch     FetchFunc
	limiter   *rate.Limiter
	recent    *freelru.SyncedLRU[string, time.Time]
	recentTTL time.Duration
	budget    int64
	clock     func() time.Time
	log       Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func hashKey(s string) uint32 {
	return uint32(xxhash.Sum64String(s))
}

// NewDispatcher starts MaxConcurrentRequests workers draining the
// prefetcher's queue through fetch. Close must be called to stop them.
func NewDispatcher(pf *Prefetcher, fetch FetchFunc, opts ...Option) (*Dispatcher, error) {
	if fetch == nil {
		return nil, ErrNilFetch
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if err := o.profile.validate(); err != nil {
		return nil, err
	}

	recent, err := freelru.NewSynced[string, time.Time](uint32(o.recentCacheSize), hashKey)
	if err != nil {
		return nil, err
	}

	recentTTL := o.recentTTL
	if recentTTL <= 0 {
		recentTTL = o.profile.DefaultTTL.Duration
	}

	var limiter *rate.Limiter
	if o.dispatchRate > 0 {
		limiter = rate.NewLimiter(rate.Limit(o.dispatchRate), 1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	d := &Dispatcher{
		pf:        pf,
		fetch:     fetch,
		limiter:   limiter,
		recent:    recent,
		recentTTL: recentTTL,
		budget:    o.profile.MaxBytesPerSession,
		clock:     o.clock,
		log:       o.logger,
		ctx:       ctx,
		cancel:    cancel,
	}

	for i := 0; i < o.profile.MaxConcurrentRequests; i++ {
		d.wg.Add(1)
		go d.worker()
	}
	return d, nil
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()

	for {
		select {
		case <-d.ctx.Done():
			return
		default:
		}

		if d.overBudget() {
			d.idle()
			continue
		}

		req, ok := d.pf.pop()
		if !ok {
			d.idle()
			continue
		}
		d.dispatch(req)
	}
}

// idle waits for a wake signal, the poll interval, or shutdown.
func (d *Dispatcher) idle() {
	timer := time.NewTimer(pollInterval)
	defer timer.Stop()
	select {
	case <-d.ctx.Done():
	case <-d.pf.wakeCh():
	case <-timer.C:
	}
}

func (d *Dispatcher) overBudget() bool {
	return d.budget > 0 && d.pf.Stats().TotalBytes >= uint64(d.budget)
}

func (d *Dispatcher) dispatch(req Request) {
	if d.limiter != nil {
		if err := d.limiter.Wait(d.ctx); err != nil {
			return
		}
	}

	if _, ok := d.recent.Get(req.Key()); ok {
		d.pf.RecordCacheHit()
		return
	}

	n, err := d.fetch(d.ctx, req)
	if err != nil {
		d.pf.RecordFailure()
		d.log.Warn("prefetch fetch failed",
			"id", req.ID, "content", req.Content.String(), "error", err)
		return
	}

	d.pf.RecordSuccess(n)
	d.recent.AddWithLifetime(req.Key(), d.clock(), d.recentTTL)
}

// Close stops the workers and waits for in-flight fetches to return.
func (d *Dispatcher) Close() {
	d.cancel()
	d.wg.Wait()
}

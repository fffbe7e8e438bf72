package pantry

import "sync/atomic"

// Stats is an immutable snapshot of prefetch bookkeeping. Rates are
// recomputed from the raw counters on every snapshot, never cached, so a
// snapshot is always internally consistent.
type Stats struct {
	TotalRequests uint64 // Admitted requests (rejections are not counted)
	Succeeded     uint64
	Failed        uint64
	CacheHits     uint64
	TotalBytes    uint64

	SuccessRate  float64 // Succeeded / TotalRequests, 0 when no requests
	CacheHitRate float64 // CacheHits / TotalRequests, 0 when no requests
}

// counters is the mutable backing store for Stats. Atomic so the dispatcher
// workers and UI readers never contend on a lock.
type counters struct {
	total     atomic.Uint64
	succeeded atomic.Uint64
	failed    atomic.Uint64
	cacheHits atomic.Uint64
	bytes     atomic.Uint64
}

func (c *counters) snapshot() Stats {
	s := Stats{
		TotalRequests: c.total.Load(),
		Succeeded:     c.succeeded.Load(),
		Failed:        c.failed.Load(),
		CacheHits:     c.cacheHits.Load(),
		TotalBytes:    c.bytes.Load(),
	}
	if s.TotalRequests > 0 {
		s.SuccessRate = float64(s.Succeeded) / float64(s.TotalRequests)
		s.CacheHitRate = float64(s.CacheHits) / float64(s.TotalRequests)
	}
	return s
}

func (c *counters) reset() {
	c.total.Store(0)
	c.succeeded.Store(0)
	c.failed.Store(0)
	c.cacheHits.Store(0)
	c.bytes.Store(0)
}

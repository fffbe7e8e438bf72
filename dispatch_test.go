package pantry

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDispatcherValidation(t *testing.T) {
	t.Parallel()

	pf := NewPrefetcher()
	_, err := NewDispatcher(pf, nil)
	assert.ErrorIs(t, err, ErrNilFetch)

	bad := StandardProfile()
	bad.MaxConcurrentRequests = 0
	_, err = NewDispatcher(pf, func(context.Context, Request) (int64, error) { return 0, nil },
		WithProfile(bad))
	assert.ErrorIs(t, err, ErrInvalidProfile)
}

func TestDispatcherFetchesAndRecordsSuccess(t *testing.T) {
	t.Parallel()

	pf := NewPrefetcher(WithDeviceState(deviceStub(wifiState())))
	var fetched atomic.Int32
	fetch := func(_ context.Context, req Request) (int64, error) {
		fetched.Add(1)
		return 512, nil
	}

	d, err := NewDispatcher(pf, fetch)
	require.NoError(t, err)
	defer d.Close()

	pf.Enqueue(ContentListingDetail, "listing-1", "", PriorityNormal, ReasonExplicit, 0)

	require.Eventually(t, func() bool {
		return pf.Stats().Succeeded == 1
	}, 2*time.Second, 5*time.Millisecond)

	s := pf.Stats()
	assert.Equal(t, int32(1), fetched.Load())
	assert.Equal(t, uint64(512), s.TotalBytes)
	assert.Equal(t, 0, pf.Len())
}

func TestDispatcherRecordsFailureWithoutRetry(t *testing.T) {
	t.Parallel()

	pf := NewPrefetcher(WithDeviceState(deviceStub(wifiState())))
	var fetched atomic.Int32
	fetch := func(context.Context, Request) (int64, error) {
		fetched.Add(1)
		return 0, errors.New("upstream 503")
	}

	d, err := NewDispatcher(pf, fetch)
	require.NoError(t, err)
	defer d.Close()

	pf.Enqueue(ContentFeedPage, "", "", PriorityNormal, ReasonExplicit, 0)

	require.Eventually(t, func() bool {
		return pf.Stats().Failed == 1
	}, 2*time.Second, 5*time.Millisecond)

	// Give a retry a chance to (wrongly) happen.
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(1), fetched.Load(), "dispatch failures are never retried")
}

func TestDispatcherRecentCacheYieldsCacheHit(t *testing.T) {
	t.Parallel()

	pf := NewPrefetcher(WithDeviceState(deviceStub(wifiState())))
	var fetched atomic.Int32
	fetch := func(context.Context, Request) (int64, error) {
		fetched.Add(1)
		return 100, nil
	}

	d, err := NewDispatcher(pf, fetch)
	require.NoError(t, err)
	defer d.Close()

	pf.Enqueue(ContentListingDetail, "listing-7", "", PriorityNormal, ReasonExplicit, 0)
	require.Eventually(t, func() bool {
		return pf.Stats().Succeeded == 1
	}, 2*time.Second, 5*time.Millisecond)

	// Same content key again: served from the recent-fetch cache.
	pf.Enqueue(ContentListingDetail, "listing-7", "", PriorityNormal, ReasonExplicit, 0)
	require.Eventually(t, func() bool {
		return pf.Stats().CacheHits == 1
	}, 2*time.Second, 5*time.Millisecond)

	assert.Equal(t, int32(1), fetched.Load(), "cache hit must not refetch")
}

func TestDispatcherStopsAtByteBudget(t *testing.T) {
	t.Parallel()

	profile := StandardProfile()
	profile.MaxBytesPerSession = 1000
	pf := NewPrefetcher(WithProfile(profile), WithDeviceState(deviceStub(wifiState())))

	var fetched atomic.Int32
	fetch := func(context.Context, Request) (int64, error) {
		fetched.Add(1)
		return 600, nil
	}

	d, err := NewDispatcher(pf, fetch, WithProfile(profile))
	require.NoError(t, err)
	defer d.Close()

	pf.Enqueue(ContentImage, "", "https://cdn.example.com/a.jpg", PriorityNormal, ReasonExplicit, 0)
	require.Eventually(t, func() bool {
		return pf.Stats().TotalBytes == 600
	}, 2*time.Second, 5*time.Millisecond)

	pf.Enqueue(ContentImage, "", "https://cdn.example.com/b.jpg", PriorityNormal, ReasonExplicit, 0)
	require.Eventually(t, func() bool {
		return pf.Stats().TotalBytes == 1200
	}, 2*time.Second, 5*time.Millisecond)

	// Budget spent: the third request must stay queued.
	pf.Enqueue(ContentImage, "", "https://cdn.example.com/c.jpg", PriorityNormal, ReasonExplicit, 0)
	time.Sleep(300 * time.Millisecond)

	assert.Equal(t, int32(2), fetched.Load())
	assert.Equal(t, 1, pf.Len(), "over-budget request stays queued")
}

func TestDispatcherCloseStopsWorkers(t *testing.T) {
	t.Parallel()

	pf := NewPrefetcher(WithDeviceState(deviceStub(wifiState())))
	fetch := func(context.Context, Request) (int64, error) { return 1, nil }

	d, err := NewDispatcher(pf, fetch)
	require.NoError(t, err)
	d.Close()

	pf.Enqueue(ContentFeedPage, "", "", PriorityNormal, ReasonExplicit, 0)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 1, pf.Len(), "closed dispatcher must not drain the queue")
}

package pantry

import (
	"sync"
	"time"
)

// defaultScreenContent maps the app's screen identifiers to the content type
// worth prefetching when the predictor expects that screen next.
func defaultScreenContent() map[string]ContentType {
	return map[string]ContentType{
		"feed":           ContentFeedPage,
		"listing_detail": ContentListingDetail,
		"profile":        ContentUserProfile,
		"chat":           ContentChatRoom,
		"chat_messages":  ContentChatMessages,
		"search":         ContentSearchResults,
		"forum":          ContentForumPost,
		"notifications":  ContentNotifications,
	}
}

// Scheduler wires the prefetcher and predictor to app lifecycle events and
// runs a periodic idle batch under device constraints. It is the only place
// the core touches platform lifecycle; the platform shell calls these
// recipes and owns how the events are produced.
//
// The scheduler is intended to be constructed once at the app's composition
// root and passed to consumers, not accessed as ambient global state.
type Scheduler struct {
	pf   *Prefetcher
	pred *Predictor
	opts options
	log  Logger

	closeOnce sync.Once
	stop      chan struct{}
	wg        sync.WaitGroup
}

// NewScheduler starts the periodic batch loop. Close must be called to stop
// it.
func NewScheduler(pf *Prefetcher, pred *Predictor, opts ...Option) *Scheduler {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	s := &Scheduler{
		pf:   pf,
		pred: pred,
		opts: o,
		log:  o.logger,
		stop: make(chan struct{}),
	}
	s.wg.Add(1)
	go s.periodicLoop()
	return s
}

// OnForeground resumes admissions and warms the screens the user lands on:
// the feed, notifications, and the predictor's best guesses.
func (s *Scheduler) OnForeground() {
	s.pf.Resume()
	s.pf.Enqueue(ContentFeedPage, "", "", PriorityHigh, ReasonForeground, 0)
	s.pf.Enqueue(ContentNotifications, "", "", PriorityNormal, ReasonForeground, 0)
	s.prefetchPredicted(PriorityNormal, ReasonForeground)
}

// OnBackground pauses new admissions. Work already delegated to the
// dispatcher is unaffected.
func (s *Scheduler) OnBackground() {
	s.pf.Pause()
}

// OnNetworkRestored resumes admissions and runs a catch-up batch.
func (s *Scheduler) OnNetworkRestored() {
	s.pf.Resume()
	s.runBatch(ReasonNetworkRestored)
}

// OnPowerSaveChanged pauses admissions while power save is active.
func (s *Scheduler) OnPowerSaveChanged(enabled bool) {
	if enabled {
		s.pf.Pause()
	} else {
		s.pf.Resume()
	}
}

// OnUserIntent records a navigation event and prefetches for the screens
// the predictor now expects.
func (s *Scheduler) OnUserIntent(screen string) {
	s.pred.Record(screen, nil)
	s.prefetchPredicted(PriorityNormal, ReasonPredictedNavigation)
}

// OnPushNotification prefetches the content a push points at, so opening
// the notification is instant. High priority: pushes signal strong intent.
func (s *Scheduler) OnPushNotification(content ContentType, contentID string) {
	s.pf.Enqueue(content, contentID, "", PriorityHigh, ReasonPushNotification, 0)
}

// Close stops the periodic loop. Idempotent.
func (s *Scheduler) Close() {
	s.closeOnce.Do(func() {
		close(s.stop)
	})
	s.wg.Wait()
}

func (s *Scheduler) periodicLoop() {
	defer s.wg.Done()
	ticker := time.NewTicker(s.opts.periodicInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			if !s.idleConstraintsMet() {
				continue
			}
			s.runBatch(ReasonIdleBatch)
		}
	}
}

// idleConstraintsMet gates the periodic batch the way a platform job
// scheduler would: unmetered network, battery not low.
func (s *Scheduler) idleConstraintsMet() bool {
	state := s.opts.device()
	if state.Network == NetworkOffline || state.Metered {
		return false
	}
	if state.LowBattery && !state.Charging {
		return false
	}
	return true
}

// runBatch enqueues an idempotent low-priority refresh of the core surfaces.
// Re-running it is harmless; the dispatcher's recent-fetch cache absorbs
// duplicates.
func (s *Scheduler) runBatch(reason Reason) {
	s.log.Info("prefetch batch", "reason", reason.String())
	s.pf.Enqueue(ContentFeedPage, "", "", PriorityLow, reason, 0)
	s.pf.Enqueue(ContentNotifications, "", "", PriorityLow, reason, 0)
	s.prefetchPredicted(PriorityLow, reason)
}

func (s *Scheduler) prefetchPredicted(pri Priority, reason Reason) {
	if s.pred == nil {
		return
	}
	for _, pred := range s.pred.Predict(s.opts.predictionCount) {
		content, ok := s.opts.screenContent[pred.Screen]
		if !ok {
			continue
		}
		s.pf.Enqueue(content, "", "", pri, reason, 0)
	}
}

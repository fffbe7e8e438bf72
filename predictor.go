package pantry

import (
	"sync"
	"time"

	"pantry/internal/markov"
)

// ScreenPrediction is a ranked candidate for the user's next screen.
type ScreenPrediction struct {
	Screen      string
	Probability float64
}

// Predictor learns screen-to-screen navigation patterns and ranks likely
// next screens. It keeps a bounded FIFO history (default 100 entries) and a
// first-order transition table; probabilities for a screen's outgoing
// transitions always normalize to 1.0.
//
// The table lives only for the process lifetime. Counts contributed by
// evicted history entries are kept, not decayed (see Reset to start over).
type Predictor struct {
	mu    sync.Mutex
	chain *markov.Chain
	clock func() time.Time
	log   Logger
}

// NewPredictor creates a predictor. WithHistorySize bounds the history.
func NewPredictor(opts ...Option) *Predictor {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Predictor{
		chain: markov.New(o.historySize),
		clock: o.clock,
		log:   o.logger,
	}
}

// Record appends a navigation event. If a previous event exists, the
// (previous -> screen) transition count is incremented. Never fails.
func (p *Predictor) Record(screen string, context map[string]string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.chain.Observe(screen, p.clock(), context)
}

// Predict returns up to n likely next screens from the current screen,
// highest probability first. Empty when there is no history or the current
// screen has no recorded outgoing transitions.
func (p *Predictor) Predict(n int) []ScreenPrediction {
	p.mu.Lock()
	defer p.mu.Unlock()

	current, ok := p.chain.Current()
	if !ok {
		return nil
	}
	preds := p.chain.Predictions(current, n)
	if len(preds) == 0 {
		return nil
	}

	out := make([]ScreenPrediction, len(preds))
	for i, pr := range preds {
		out[i] = ScreenPrediction{Screen: pr.Screen, Probability: pr.Probability}
	}
	return out
}

// CurrentScreen returns the most recently recorded screen.
func (p *Predictor) CurrentScreen() (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.chain.Current()
}

// HistoryLen returns the number of retained history entries.
func (p *Predictor) HistoryLen() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.chain.Len()
}

// Reset drops all history and transition counts.
func (p *Predictor) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.chain.Reset()
}

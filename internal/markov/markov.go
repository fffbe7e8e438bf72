// Package markov maintains a bounded navigation history and a first-order
// transition-count table over screen identifiers.
package markov

import (
	"sort"
	"time"
)

// Entry is one recorded navigation event.
type Entry struct {
	Screen  string
	At      time.Time
	Context map[string]string
}

// Prediction pairs a candidate next screen with its estimated probability.
type Prediction struct {
	Screen      string
	Probability float64
}

// Chain is a first-order Markov model over screen transitions. History is
// FIFO-bounded (temporal order matters for transition counting, so eviction
// is oldest-first, not least-recently-used). Transition counts are
// monotonically non-decreasing except on Reset; evicted history entries do
// not decrement the counts they contributed.
//
// Chain is not synchronized. Callers own serialization.
type Chain struct {
	capacity int
	history  []Entry
	counts   map[string]map[string]int
	last     string
	hasLast  bool
}

// New creates a chain keeping at most capacity history entries.
func New(capacity int) *Chain {
	if capacity <= 0 {
		capacity = 1
	}
	return &Chain{
		capacity: capacity,
		counts:   make(map[string]map[string]int),
	}
}

// Observe appends a navigation event and, when a previous event exists,
// increments the (previous -> screen) transition count.
func (c *Chain) Observe(screen string, at time.Time, context map[string]string) {
	if c.hasLast {
		row := c.counts[c.last]
		if row == nil {
			row = make(map[string]int)
			c.counts[c.last] = row
		}
		row[screen]++
	}

	c.history = append(c.history, Entry{Screen: screen, At: at, Context: context})
	if len(c.history) > c.capacity {
		// FIFO eviction. Copy down rather than reslicing so the backing
		// array does not pin evicted entries.
		n := copy(c.history, c.history[len(c.history)-c.capacity:])
		c.history = c.history[:n]
	}

	c.last = screen
	c.hasLast = true
}

// Current returns the most recently observed screen.
func (c *Chain) Current() (string, bool) {
	return c.last, c.hasLast
}

// Len returns the number of retained history entries.
func (c *Chain) Len() int {
	return len(c.history)
}

// Predictions returns up to n candidate next screens for the given screen,
// highest probability first. Probabilities are counts normalized over the
// screen's outgoing row, so they sum to 1.0 across the full row. Ties break
// lexicographically by screen name for determinism.
func (c *Chain) Predictions(from string, n int) []Prediction {
	row := c.counts[from]
	if len(row) == 0 || n <= 0 {
		return nil
	}

	total := 0
	for _, count := range row {
		total += count
	}

	out := make([]Prediction, 0, len(row))
	for screen, count := range row {
		out = append(out, Prediction{
			Screen:      screen,
			Probability: float64(count) / float64(total),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Probability != out[j].Probability {
			return out[i].Probability > out[j].Probability
		}
		return out[i].Screen < out[j].Screen
	})

	if len(out) > n {
		out = out[:n]
	}
	return out
}

// Transitions returns the recorded count for a single transition.
func (c *Chain) Transitions(from, to string) int {
	return c.counts[from][to]
}

// Reset drops all history and transition counts.
func (c *Chain) Reset() {
	c.history = nil
	c.counts = make(map[string]map[string]int)
	c.last = ""
	c.hasLast = false
}

package markov

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveCountsTransitions(t *testing.T) {
	t.Parallel()

	c := New(100)
	now := time.Now()

	c.Observe("feed", now, nil)
	c.Observe("listing_detail", now, nil)
	c.Observe("feed", now, nil)
	c.Observe("listing_detail", now, nil)
	c.Observe("feed", now, nil)
	c.Observe("chat", now, nil)

	assert.Equal(t, 2, c.Transitions("feed", "listing_detail"))
	assert.Equal(t, 1, c.Transitions("feed", "chat"))
	assert.Equal(t, 2, c.Transitions("listing_detail", "feed"))
	assert.Equal(t, 0, c.Transitions("chat", "feed"))
}

func TestPredictionsNormalizeToOne(t *testing.T) {
	t.Parallel()

	c := New(100)
	now := time.Now()

	// Build a row with uneven counts out of "feed".
	screens := []string{"listing_detail", "chat", "listing_detail", "profile", "listing_detail", "chat"}
	for _, next := range screens {
		c.Observe("feed", now, nil)
		c.Observe(next, now, nil)
	}

	preds := c.Predictions("feed", 10)
	require.NotEmpty(t, preds)

	sum := 0.0
	for _, p := range preds {
		sum += p.Probability
	}
	assert.InDelta(t, 1.0, sum, 1e-9, "full row probabilities must sum to 1")

	// Highest count first: listing_detail(3) > chat(2) > profile(1).
	require.Len(t, preds, 3)
	assert.Equal(t, "listing_detail", preds[0].Screen)
	assert.InDelta(t, 0.5, preds[0].Probability, 1e-9)
	assert.Equal(t, "chat", preds[1].Screen)
	assert.Equal(t, "profile", preds[2].Screen)
}

func TestPredictionsTiesBreakLexicographically(t *testing.T) {
	t.Parallel()

	c := New(100)
	now := time.Now()
	for _, next := range []string{"zebra", "apple", "mango"} {
		c.Observe("feed", now, nil)
		c.Observe(next, now, nil)
	}

	preds := c.Predictions("feed", 3)
	require.Len(t, preds, 3)
	assert.Equal(t, "apple", preds[0].Screen)
	assert.Equal(t, "mango", preds[1].Screen)
	assert.Equal(t, "zebra", preds[2].Screen)
}

func TestPredictionsTruncateToRequestedCount(t *testing.T) {
	t.Parallel()

	c := New(100)
	now := time.Now()
	for i := 0; i < 5; i++ {
		c.Observe("feed", now, nil)
		c.Observe(fmt.Sprintf("screen-%d", i), now, nil)
	}

	assert.Len(t, c.Predictions("feed", 2), 2)
	assert.Nil(t, c.Predictions("feed", 0))
	assert.Nil(t, c.Predictions("never-seen", 3))
}

func TestHistoryBoundIsFIFO(t *testing.T) {
	t.Parallel()

	c := New(100)
	now := time.Now()
	for i := 0; i < 250; i++ {
		c.Observe(fmt.Sprintf("screen-%d", i), now, nil)
	}

	assert.Equal(t, 100, c.Len(), "history never exceeds capacity")

	// Eviction affects only future accounting: counts recorded while the
	// early entries were live are never retroactively decremented.
	assert.Equal(t, 1, c.Transitions("screen-0", "screen-1"))
	assert.Equal(t, 1, c.Transitions("screen-248", "screen-249"))
}

func TestResetDropsEverything(t *testing.T) {
	t.Parallel()

	c := New(10)
	now := time.Now()
	c.Observe("feed", now, nil)
	c.Observe("chat", now, nil)

	c.Reset()

	assert.Equal(t, 0, c.Len())
	assert.Equal(t, 0, c.Transitions("feed", "chat"))
	_, ok := c.Current()
	assert.False(t, ok)
	assert.Nil(t, c.Predictions("feed", 3))
}

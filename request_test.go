package pantry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRequestExpired(t *testing.T) {
	t.Parallel()

	now := time.Unix(1_700_000_000, 0)
	req := newRequest(ContentFeedPage, "", "", PriorityNormal, ReasonExplicit, time.Minute, now)

	assert.False(t, req.Expired(now))
	assert.False(t, req.Expired(now.Add(time.Minute)))
	assert.True(t, req.Expired(now.Add(time.Minute+time.Second)))

	// Zero TTL never expires.
	forever := newRequest(ContentFeedPage, "", "", PriorityNormal, ReasonExplicit, 0, now)
	assert.False(t, forever.Expired(now.Add(24*time.Hour)))
}

func TestRequestKeyIgnoresPriority(t *testing.T) {
	t.Parallel()

	now := time.Now()
	a := newRequest(ContentListingDetail, "listing-1", "", PriorityLow, ReasonExplicit, 0, now)
	b := newRequest(ContentListingDetail, "listing-1", "", PriorityCritical, ReasonIdleBatch, 0, now)
	c := newRequest(ContentUserProfile, "listing-1", "", PriorityLow, ReasonExplicit, 0, now)

	assert.Equal(t, a.Key(), b.Key())
	assert.NotEqual(t, a.Key(), c.Key())
	assert.NotEqual(t, a.ID, b.ID)

	// URL requests key on the URL.
	img := newRequest(ContentImage, "", "https://cdn.example.com/a.jpg", PriorityLow, ReasonExplicit, 0, now)
	assert.Equal(t, "image:https://cdn.example.com/a.jpg", img.Key())
}

func TestEnumStrings(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "listing_detail", ContentListingDetail.String())
	assert.Equal(t, "unknown", ContentType(99).String())
	assert.Equal(t, "critical", PriorityCritical.String())
	assert.Equal(t, "scroll_lookahead", ReasonScrollLookahead.String())
	assert.Equal(t, "wifi", NetworkWifi.String())
	assert.Equal(t, "forward", DirectionForward.String())
	assert.Equal(t, "backward", DirectionBackward.String())
}

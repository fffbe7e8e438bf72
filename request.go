package pantry

import (
	"time"

	"github.com/google/uuid"
)

// ContentType identifies what kind of content a prefetch request targets.
type ContentType int

const (
	ContentListing ContentType = iota
	ContentListingDetail
	ContentUserProfile
	ContentChatRoom
	ContentChatMessages
	ContentFeedPage
	ContentSearchResults
	ContentImage
	ContentThumbnail
	ContentForumPost
	ContentNotifications
)

var contentTypeNames = [...]string{
	"listing",
	"listing_detail",
	"user_profile",
	"chat_room",
	"chat_messages",
	"feed_page",
	"search_results",
	"image",
	"thumbnail",
	"forum_post",
	"notifications",
}

func (t ContentType) String() string {
	if t < 0 || int(t) >= len(contentTypeNames) {
		return "unknown"
	}
	return contentTypeNames[t]
}

// Priority orders prefetch requests. Higher values pass stricter admission
// gates (see Prefetcher.Enqueue) and are dispatched first.
type Priority int

const (
	PriorityLow Priority = iota
	PriorityNormal
	PriorityHigh
	PriorityCritical
)

func (p Priority) String() string {
	switch p {
	case PriorityLow:
		return "low"
	case PriorityNormal:
		return "normal"
	case PriorityHigh:
		return "high"
	case PriorityCritical:
		return "critical"
	}
	return "unknown"
}

// Reason records what triggered a prefetch request. Purely diagnostic.
type Reason int

const (
	ReasonExplicit Reason = iota
	ReasonPredictedNavigation
	ReasonScrollLookahead
	ReasonForeground
	ReasonNetworkRestored
	ReasonIdleBatch
	ReasonPushNotification
)

func (r Reason) String() string {
	switch r {
	case ReasonExplicit:
		return "explicit"
	case ReasonPredictedNavigation:
		return "predicted_navigation"
	case ReasonScrollLookahead:
		return "scroll_lookahead"
	case ReasonForeground:
		return "foreground"
	case ReasonNetworkRestored:
		return "network_restored"
	case ReasonIdleBatch:
		return "idle_batch"
	case ReasonPushNotification:
		return "push_notification"
	}
	return "unknown"
}

// Request is a single admitted prefetch request. Immutable once created.
type Request struct {
	ID         string // Unique per request, for log correlation
	Content    ContentType
	ContentID  string // Optional row/record identifier
	URL        string // Optional, for image/thumbnail requests
	Priority   Priority
	Reason     Reason
	TTL        time.Duration
	EnqueuedAt time.Time
}

func newRequest(content ContentType, contentID, url string, pri Priority, reason Reason, ttl time.Duration, now time.Time) Request {
	return Request{
		ID:         uuid.NewString(),
		Content:    content,
		ContentID:  contentID,
		URL:        url,
		Priority:   pri,
		Reason:     reason,
		TTL:        ttl,
		EnqueuedAt: now,
	}
}

// Expired reports whether the request outlived its TTL without being
// dispatched. A zero TTL never expires.
func (r Request) Expired(now time.Time) bool {
	return r.TTL > 0 && now.Sub(r.EnqueuedAt) > r.TTL
}

// Key is the content identity of the request, independent of ID and
// priority. Two requests for the same content share a Key, which is what the
// dispatcher's recent-fetch cache is keyed on.
func (r Request) Key() string {
	if r.URL != "" {
		return r.Content.String() + ":" + r.URL
	}
	return r.Content.String() + ":" + r.ContentID
}

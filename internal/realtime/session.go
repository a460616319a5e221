package realtime

import (
	"context"
	"time"
)

// DefaultKeepaliveInterval is how often an idle streaming session writes a
// heartbeat comment so intermediaries keep the connection open.
const DefaultKeepaliveInterval = 25 * time.Second

// sessionBuffer bounds how many undelivered events a single session may hold.
// When the buffer is full the session drops events instead of backpressuring
// the publisher; a client that falls that far behind re-syncs on its next
// normal fetch.
const sessionBuffer = 64

// Sink is one long-lived push connection as seen by a streaming session.
// Send writes one named event block, Comment writes a heartbeat line and
// Flush pushes buffered bytes to the client. Any write error means the
// connection is gone.
type Sink interface {
	Send(event string, payload interface{}) error
	Comment(text string) error
	Flush()
}

// ReactionFilter is the predicate of a reaction stream subscription. Zero
// fields match everything; set fields are ANDed.
type ReactionFilter struct {
	FeedbackID string
	BusinessID string
}

// Matches reports whether the event passes the filter.
func (f ReactionFilter) Matches(ev ReactionEvent) bool {
	if f.FeedbackID != "" && ev.FeedbackID != f.FeedbackID {
		return false
	}
	if f.BusinessID != "" && ev.BusinessID != f.BusinessID {
		return false
	}
	return true
}

type readyPayload struct {
	OK        bool  `json:"ok"`
	HasUnread *bool `json:"hasUnread,omitempty"`
}

type notificationPayload struct {
	Notification Notification `json:"notification"`
	HasUnread    bool         `json:"hasUnread"`
}

// StreamNotifications runs one notification streaming session for the user:
// it writes the ready event carrying the current unread snapshot, subscribes
// to the user's mailbox and forwards every pushed notification to the sink
// until the context is cancelled or a write fails. Ticker and subscription
// are released together on the single exit path; a write failure is treated
// as a disconnect, not an error.
func StreamNotifications(ctx context.Context, sink Sink, store *Store, userID uint, keepalive time.Duration) {
	hasUnread := store.HasUnread(userID)
	if err := sink.Send("ready", readyPayload{OK: true, HasUnread: &hasUnread}); err != nil {
		return
	}
	sink.Flush()

	events := make(chan Notification, sessionBuffer)
	unsubscribe := store.Subscribe(userID, func(n Notification) {
		select {
		case events <- n:
		default:
			// session is too far behind; drop rather than stall the push
		}
	})
	defer unsubscribe()

	runSession(ctx, sink, keepalive, events, func(n Notification) error {
		return sink.Send("notification", notificationPayload{Notification: n, HasUnread: true})
	})
}

// StreamReactions runs one reaction streaming session: ready event first,
// then every bus event matching the filter until disconnect. The reaction
// stream carries no per-user state, so its ready payload is a bare ok.
func StreamReactions(ctx context.Context, sink Sink, bus *Bus, filter ReactionFilter, keepalive time.Duration) {
	if err := sink.Send("ready", readyPayload{OK: true}); err != nil {
		return
	}
	sink.Flush()

	events := make(chan ReactionEvent, sessionBuffer)
	unsubscribe := bus.Subscribe(func(ev ReactionEvent) {
		if !filter.Matches(ev) {
			return
		}
		select {
		case events <- ev:
		default:
		}
	})
	defer unsubscribe()

	runSession(ctx, sink, keepalive, events, func(ev ReactionEvent) error {
		return sink.Send("reaction", ev)
	})
}

// runSession drives the shared streaming loop: forward buffered events,
// write keepalive comments while idle and stop on cancellation or the first
// failed write.
func runSession[T any](ctx context.Context, sink Sink, keepalive time.Duration, events <-chan T, send func(T) error) {
	if keepalive <= 0 {
		keepalive = DefaultKeepaliveInterval
	}
	ticker := time.NewTicker(keepalive)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-events:
			if err := send(ev); err != nil {
				return
			}
			sink.Flush()
		case <-ticker.C:
			if err := sink.Comment("ping"); err != nil {
				return
			}
			sink.Flush()
		}
	}
}

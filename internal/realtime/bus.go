package realtime

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// ReactionKind tells whether a reaction was set or removed.
type ReactionKind string

const (
	ReactionUpserted ReactionKind = "upserted"
	ReactionDeleted  ReactionKind = "deleted"
)

// ReactionCounts is the aggregate snapshot for one feedback item across the
// closed set of quick-reaction categories.
type ReactionCounts struct {
	Useful int `json:"useful"`
	Funny  int `json:"funny"`
	Cool   int `json:"cool"`
}

// ReactionEvent describes one change of one user's reaction to a feedback
// item, together with the refreshed counts for that item. Events are
// transient: broadcast once to current listeners and never stored.
type ReactionEvent struct {
	FeedbackID string         `json:"feedbackId"`
	BusinessID string         `json:"businessId,omitempty"`
	MyReaction *string        `json:"myReaction"`
	Kind       ReactionKind   `json:"kind"`
	Counts     ReactionCounts `json:"counts"`
	TS         time.Time      `json:"ts"`
}

type busListener struct {
	id uint64
	fn func(ReactionEvent)
}

// Bus broadcasts reaction events to all registered listeners. It does no
// filtering; listeners decide what they care about. An event published while
// nobody listens is lost, which is fine: current counts can always be
// re-fetched through a normal read.
type Bus struct {
	mu        sync.Mutex
	listeners []busListener
	nextID    uint64
	log       zerolog.Logger
}

// NewBus creates an empty reaction event bus.
func NewBus(log zerolog.Logger) *Bus {
	return &Bus{log: log}
}

// Publish delivers the event to every listener synchronously, in
// registration order. Each invocation is isolated: a panicking listener
// neither stops delivery to the rest nor reaches the publisher.
func (b *Bus) Publish(ev ReactionEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, l := range b.listeners {
		b.deliver(l, ev)
	}
}

func (b *Bus) deliver(l busListener, ev ReactionEvent) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Error().Interface("panic", r).Uint64("listener", l.id).
				Str("feedback_id", ev.FeedbackID).
				Msg("reaction listener panicked")
		}
	}()
	l.fn(ev)
}

// Subscribe registers a listener and returns its idempotent unsubscribe
// function.
func (b *Bus) Subscribe(fn func(ReactionEvent)) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	l := busListener{id: b.nextID, fn: fn}
	b.listeners = append(b.listeners, l)

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()

		for i := range b.listeners {
			if b.listeners[i].id == l.id {
				b.listeners = append(b.listeners[:i], b.listeners[i+1:]...)
				return
			}
		}
	}
}

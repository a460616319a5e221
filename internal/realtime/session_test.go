package realtime

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sinkBlock struct {
	event   string
	payload interface{}
	comment string
}

// fakeSink records everything a session writes. failFrom > 0 makes the n-th
// Send (1-based) and every later one fail, simulating a half-closed
// connection.
type fakeSink struct {
	mu       sync.Mutex
	blocks   []sinkBlock
	sends    int
	failFrom int
}

func (s *fakeSink) Send(event string, payload interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sends++
	if s.failFrom > 0 && s.sends >= s.failFrom {
		return errors.New("broken pipe")
	}
	s.blocks = append(s.blocks, sinkBlock{event: event, payload: payload})
	return nil
}

func (s *fakeSink) Comment(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blocks = append(s.blocks, sinkBlock{comment: text})
	return nil
}

func (s *fakeSink) Flush() {}

func (s *fakeSink) snapshot() []sinkBlock {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]sinkBlock, len(s.blocks))
	copy(out, s.blocks)
	return out
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal("condition not reached in time")
}

func busListenerCount(b *Bus) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.listeners)
}

func TestReactionFilterMatches(t *testing.T) {
	ev := ReactionEvent{FeedbackID: "fb1", BusinessID: "biz1"}

	assert.True(t, ReactionFilter{}.Matches(ev))
	assert.True(t, ReactionFilter{FeedbackID: "fb1"}.Matches(ev))
	assert.True(t, ReactionFilter{BusinessID: "biz1"}.Matches(ev))
	assert.True(t, ReactionFilter{FeedbackID: "fb1", BusinessID: "biz1"}.Matches(ev))

	assert.False(t, ReactionFilter{FeedbackID: "fb2"}.Matches(ev))
	assert.False(t, ReactionFilter{BusinessID: "biz2"}.Matches(ev))
	assert.False(t, ReactionFilter{FeedbackID: "fb1", BusinessID: "biz2"}.Matches(ev))
}

func TestStreamReactionsDeliversMatchingEvents(t *testing.T) {
	bus := NewBus(zerolog.Nop())
	sink := &fakeSink{}
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		defer close(done)
		StreamReactions(ctx, sink, bus, ReactionFilter{FeedbackID: "fb1"}, time.Minute)
	}()

	// ready must be written before the session starts consuming events
	waitFor(t, func() bool { return busListenerCount(bus) == 1 })

	matching := ReactionEvent{FeedbackID: "fb1", Kind: ReactionUpserted, Counts: ReactionCounts{Useful: 1}, TS: time.Now().UTC()}
	bus.Publish(matching)
	bus.Publish(ReactionEvent{FeedbackID: "fb2", Kind: ReactionUpserted, TS: time.Now().UTC()})

	waitFor(t, func() bool { return len(sink.snapshot()) >= 2 })
	cancel()
	<-done

	blocks := sink.snapshot()
	require.GreaterOrEqual(t, len(blocks), 2)
	assert.Equal(t, "ready", blocks[0].event)
	assert.Equal(t, readyPayload{OK: true}, blocks[0].payload)

	var reactions []sinkBlock
	for _, b := range blocks[1:] {
		if b.event == "reaction" {
			reactions = append(reactions, b)
		}
	}
	require.Len(t, reactions, 1, "the fb2 event must be filtered out")
	assert.Equal(t, matching, reactions[0].payload)

	assert.Equal(t, 0, busListenerCount(bus), "session must unsubscribe on exit")
}

func TestStreamReactionsStopsOnWriteError(t *testing.T) {
	bus := NewBus(zerolog.Nop())
	sink := &fakeSink{failFrom: 2} // ready succeeds, first event write fails

	done := make(chan struct{})
	go func() {
		defer close(done)
		StreamReactions(context.Background(), sink, bus, ReactionFilter{}, time.Minute)
	}()

	waitFor(t, func() bool { return busListenerCount(bus) == 1 })
	bus.Publish(ReactionEvent{FeedbackID: "fb1", Kind: ReactionDeleted, TS: time.Now().UTC()})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("session did not tear down after a failed write")
	}
	assert.Equal(t, 0, busListenerCount(bus))
}

func TestStreamReactionsRejectedReadySkipsSubscription(t *testing.T) {
	bus := NewBus(zerolog.Nop())
	sink := &fakeSink{failFrom: 1}

	StreamReactions(context.Background(), sink, bus, ReactionFilter{}, time.Minute)
	assert.Equal(t, 0, busListenerCount(bus))
}

func TestStreamNotificationsReadyAndDelivery(t *testing.T) {
	store := NewStore(0, zerolog.Nop())
	store.Push(1, NotificationInput{Type: NotificationFriendRequest, Title: "pending", Href: "/friends"})

	sink := &fakeSink{}
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		defer close(done)
		StreamNotifications(ctx, sink, store, 1, time.Minute)
	}()

	waitFor(t, func() bool {
		store.mu.Lock()
		defer store.mu.Unlock()
		return len(store.subs[1]) == 1
	})

	pushed := store.Push(1, NotificationInput{Type: NotificationFriendAccept, Title: "accepted", Href: "/friends"})
	store.Push(2, NotificationInput{Type: NotificationFriendRequest, Title: "someone else", Href: "/friends"})

	waitFor(t, func() bool { return len(sink.snapshot()) >= 2 })
	cancel()
	<-done

	blocks := sink.snapshot()
	require.GreaterOrEqual(t, len(blocks), 2)

	assert.Equal(t, "ready", blocks[0].event)
	ready, ok := blocks[0].payload.(readyPayload)
	require.True(t, ok)
	require.NotNil(t, ready.HasUnread)
	assert.True(t, *ready.HasUnread)

	require.Equal(t, "notification", blocks[1].event)
	payload, ok := blocks[1].payload.(notificationPayload)
	require.True(t, ok)
	assert.Equal(t, pushed, payload.Notification)
	assert.True(t, payload.HasUnread)

	store.mu.Lock()
	_, present := store.subs[1]
	store.mu.Unlock()
	assert.False(t, present, "session must unsubscribe on exit")
}

func TestSessionKeepalive(t *testing.T) {
	bus := NewBus(zerolog.Nop())
	sink := &fakeSink{}
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		defer close(done)
		StreamReactions(ctx, sink, bus, ReactionFilter{}, 5*time.Millisecond)
	}()

	waitFor(t, func() bool {
		for _, b := range sink.snapshot() {
			if b.comment == "ping" {
				return true
			}
		}
		return false
	})
	cancel()
	<-done
}

// stallSink stops consuming mid-stream: Send calls from stallFrom (1-based)
// onward complete only after gate is closed.
type stallSink struct {
	fakeSink
	stallFrom int
	gate      chan struct{}
}

func (s *stallSink) Send(event string, payload interface{}) error {
	if err := s.fakeSink.Send(event, payload); err != nil {
		return err
	}
	s.mu.Lock()
	n := s.sends
	s.mu.Unlock()
	if n >= s.stallFrom {
		<-s.gate
	}
	return nil
}

func (s *fakeSink) sendCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sends
}

func TestStreamReactionsSlowSessionDropsInsteadOfStallingPublisher(t *testing.T) {
	bus := NewBus(zerolog.Nop())
	sink := &stallSink{stallFrom: 2, gate: make(chan struct{})} // ready goes through, first event stalls
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		StreamReactions(ctx, sink, bus, ReactionFilter{}, time.Hour)
	}()
	waitFor(t, func() bool { return busListenerCount(bus) == 1 })

	bus.Publish(ReactionEvent{FeedbackID: "fb1", Kind: ReactionUpserted})
	waitFor(t, func() bool { return sink.sendCount() == 2 })

	// The session is wedged on its stalled write; every further publish must
	// still return promptly, overflowing events dropped rather than queued
	total := 3 * sessionBuffer
	start := time.Now()
	for i := 0; i < total; i++ {
		bus.Publish(ReactionEvent{FeedbackID: "fb1", Kind: ReactionUpserted})
	}
	assert.Less(t, time.Since(start), 2*time.Second, "publishing against a wedged session must not block")

	close(sink.gate)
	cancel()
	<-done

	// Besides ready and the stalled event, at most one bufferful can arrive
	delivered := sink.sendCount() - 2
	assert.LessOrEqual(t, delivered, sessionBuffer)
	assert.Less(t, delivered, total)
}

func TestStreamNotificationsSlowSessionDoesNotStallPush(t *testing.T) {
	store := NewStore(0, zerolog.Nop())
	sink := &stallSink{stallFrom: 2, gate: make(chan struct{})}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		StreamNotifications(ctx, sink, store, 1, time.Hour)
	}()
	waitFor(t, func() bool {
		store.mu.Lock()
		defer store.mu.Unlock()
		return len(store.subs[1]) == 1
	})

	store.Push(1, NotificationInput{Type: NotificationFriendRequest, Title: "first", Href: "/friends"})
	waitFor(t, func() bool { return sink.sendCount() == 2 })

	total := 2 * sessionBuffer
	start := time.Now()
	for i := 0; i < total; i++ {
		store.Push(1, NotificationInput{Type: NotificationFriendRequest, Title: "more", Href: "/friends"})
	}
	assert.Less(t, time.Since(start), 2*time.Second, "pushing against a wedged session must not block")

	// The mailbox itself is unaffected by the wedged stream
	assert.Len(t, store.List(1, 50), DefaultMailboxSize)

	close(sink.gate)
	cancel()
	<-done

	delivered := sink.sendCount() - 2
	assert.LessOrEqual(t, delivered, sessionBuffer)
	assert.Less(t, delivered, total)
}

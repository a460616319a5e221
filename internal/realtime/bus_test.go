package realtime

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleEvent() ReactionEvent {
	my := "useful"
	return ReactionEvent{
		FeedbackID: "fb-0000000000000000001",
		BusinessID: "biz-000000000000000001",
		MyReaction: &my,
		Kind:       ReactionUpserted,
		Counts:     ReactionCounts{Useful: 1},
		TS:         time.Now().UTC(),
	}
}

func TestPublishWithoutListeners(t *testing.T) {
	b := NewBus(zerolog.Nop())
	assert.NotPanics(t, func() { b.Publish(sampleEvent()) })
}

func TestPublishReachesEveryListenerOnce(t *testing.T) {
	b := NewBus(zerolog.Nop())

	counts := make([]int, 3)
	for i := range counts {
		i := i
		b.Subscribe(func(ReactionEvent) { counts[i]++ })
	}

	b.Publish(sampleEvent())
	for i, c := range counts {
		assert.Equal(t, 1, c, "listener %d", i)
	}
}

func TestPublishRegistrationOrder(t *testing.T) {
	b := NewBus(zerolog.Nop())

	var order []int
	for i := 0; i < 5; i++ {
		i := i
		b.Subscribe(func(ReactionEvent) { order = append(order, i) })
	}

	b.Publish(sampleEvent())
	assert.Equal(t, []int{0, 1, 2, 3, 4}, order)
}

func TestPanickingListenerDoesNotStopDelivery(t *testing.T) {
	b := NewBus(zerolog.Nop())

	var after int
	b.Subscribe(func(ReactionEvent) { panic("boom") })
	b.Subscribe(func(ReactionEvent) { after++ })

	assert.NotPanics(t, func() { b.Publish(sampleEvent()) })
	assert.Equal(t, 1, after)
}

func TestUnsubscribeStopsDeliveryAndIsIdempotent(t *testing.T) {
	b := NewBus(zerolog.Nop())

	var got int
	unsubscribe := b.Subscribe(func(ReactionEvent) { got++ })

	b.Publish(sampleEvent())
	require.Equal(t, 1, got)

	unsubscribe()
	unsubscribe()
	b.Publish(sampleEvent())
	assert.Equal(t, 1, got)

	b.mu.Lock()
	assert.Empty(t, b.listeners)
	b.mu.Unlock()
}

func TestListenerReceivesExactPayload(t *testing.T) {
	b := NewBus(zerolog.Nop())

	want := sampleEvent()
	var got ReactionEvent
	b.Subscribe(func(ev ReactionEvent) { got = ev })

	b.Publish(want)
	assert.Equal(t, want, got)
}

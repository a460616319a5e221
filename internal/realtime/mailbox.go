package realtime

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// DefaultMailboxSize caps how many notifications a single mailbox retains.
const DefaultMailboxSize = 50

const (
	defaultListLimit = 20
	maxListLimit     = 50
)

type mailboxSubscriber struct {
	id uint64
	fn func(Notification)
}

// Store is the process-wide notification mailbox: a bounded, newest-first
// notification log per user plus the live subscribers to push new entries to.
// Mailboxes are created lazily on first push and live for the process
// lifetime; the subscriber set for a user is dropped when its last
// subscription ends.
//
// Every operation is serialized under one mutex, and Push invokes subscriber
// callbacks inside that same serialized context. Callbacks must therefore not
// call back into the Store and must not block; streaming sessions satisfy
// this by handing events off to a buffered channel.
type Store struct {
	mu      sync.Mutex
	cap     int
	byUser  map[uint][]Notification
	subs    map[uint][]mailboxSubscriber
	nextSub uint64
	log     zerolog.Logger
}

// NewStore creates an empty notification store. A non-positive capacity falls
// back to DefaultMailboxSize.
func NewStore(capacity int, log zerolog.Logger) *Store {
	if capacity <= 0 {
		capacity = DefaultMailboxSize
	}
	return &Store{
		cap:    capacity,
		byUser: make(map[uint][]Notification),
		subs:   make(map[uint][]mailboxSubscriber),
		log:    log,
	}
}

// Push assigns a fresh id and timestamp to the input, prepends it to the
// user's mailbox, truncates the mailbox to capacity and synchronously
// delivers the new notification to every live subscriber for that user.
// A panicking subscriber does not prevent delivery to the rest.
func (s *Store) Push(userID uint, in NotificationInput) Notification {
	n := Notification{
		ID:          uuid.NewString(),
		Type:        in.Type,
		Title:       in.Title,
		Body:        in.Body,
		Href:        in.Href,
		CreatedAt:   time.Now().UTC(),
		Read:        false,
		ActorUserID: in.ActorUserID,
		EntityID:    in.EntityID,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.byUser[userID]
	next := make([]Notification, 0, len(current)+1)
	next = append(next, n)
	next = append(next, current...)
	if len(next) > s.cap {
		next = next[:s.cap]
	}
	s.byUser[userID] = next

	for _, sub := range s.subs[userID] {
		s.deliver(sub, n)
	}

	return n
}

func (s *Store) deliver(sub mailboxSubscriber, n Notification) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error().Interface("panic", r).Uint64("subscriber", sub.id).
				Msg("notification subscriber panicked")
		}
	}()
	sub.fn(n)
}

// List returns up to limit notifications for the user, newest first. The
// limit is clamped to [1, 50] and defaults to 20 when non-positive. The
// returned slice is a snapshot; mutating it does not affect the mailbox.
func (s *Store) List(userID uint, limit int) []Notification {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.byUser[userID]
	if limit > len(current) {
		limit = len(current)
	}
	out := make([]Notification, limit)
	copy(out, current[:limit])
	return out
}

// HasUnread reports whether the user has at least one unread notification.
// Unknown users simply have nothing unread.
func (s *Store) HasUnread(userID uint) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, n := range s.byUser[userID] {
		if !n.Read {
			return true
		}
	}
	return false
}

// MarkRead flags the matching notification as read. A missing mailbox or
// unknown notification id is a no-op.
func (s *Store) MarkRead(userID uint, notificationID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.byUser[userID]
	for i := range current {
		if current[i].ID == notificationID {
			current[i].Read = true
			return
		}
	}
}

// MarkAllRead flags every notification in the user's mailbox as read.
func (s *Store) MarkAllRead(userID uint) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.byUser[userID]
	for i := range current {
		current[i].Read = true
	}
}

// Subscribe registers a callback invoked on every future Push for the user
// and returns its idempotent unsubscribe function. Multiple subscriptions
// per user are allowed (one per open tab or device).
func (s *Store) Subscribe(userID uint, fn func(Notification)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextSub++
	sub := mailboxSubscriber{id: s.nextSub, fn: fn}
	s.subs[userID] = append(s.subs[userID], sub)

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()

		current := s.subs[userID]
		for i := range current {
			if current[i].id == sub.id {
				current = append(current[:i], current[i+1:]...)
				break
			}
		}
		if len(current) == 0 {
			// keep the subscriber map from growing without bound; the
			// mailbox itself is not subscriber-scoped and stays put
			delete(s.subs, userID)
		} else {
			s.subs[userID] = current
		}
	}
}

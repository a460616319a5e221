package realtime

import "time"

// NotificationType enumerates the facts a user can be notified about.
type NotificationType string

const (
	NotificationFriendRequest NotificationType = "friend_request"
	NotificationFriendAccept  NotificationType = "friend_accept"
	// NotificationReaction is reserved for future use; reactions are currently
	// delivered only over the reaction event bus.
	NotificationReaction NotificationType = "reaction"
)

// Notification is one user-facing fact in a mailbox. Immutable once pushed,
// except for the Read flag.
type Notification struct {
	ID          string           `json:"id"`
	Type        NotificationType `json:"type"`
	Title       string           `json:"title"`
	Body        string           `json:"body,omitempty"`
	Href        string           `json:"href"`
	CreatedAt   time.Time        `json:"createdAt"`
	Read        bool             `json:"read"`
	ActorUserID uint             `json:"actorUserId,omitempty"`
	EntityID    string           `json:"entityId,omitempty"`
}

// NotificationInput carries the caller-supplied fields of a notification.
// ID, CreatedAt and Read are assigned by the store on push.
type NotificationInput struct {
	Type        NotificationType
	Title       string
	Body        string
	Href        string
	ActorUserID uint
	EntityID    string
}

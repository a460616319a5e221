package models

import (
	"time"

	"gorm.io/gorm"
)

// Friendship statuses
const (
	FriendshipPending  = "pending"
	FriendshipAccepted = "accepted"
	FriendshipRejected = "rejected"
)

// Friendship represents one directed friend request between two users. An
// accepted row doubles as the friendship itself.
type Friendship struct {
	gorm.Model
	RequesterID uint       `json:"requester_id" gorm:"index;uniqueIndex:idx_friendship_pair"`
	AddresseeID uint       `json:"addressee_id" gorm:"index;uniqueIndex:idx_friendship_pair"`
	Status      string     `json:"status" gorm:"type:varchar(20);default:'pending'"`
	RespondedAt *time.Time `json:"responded_at,omitempty"`
}

// CreateFriendRequest defines the request body for sending a friend request
type CreateFriendRequest struct {
	AddresseeID uint `json:"addressee_id" validate:"required"`
}

// RespondFriendRequest defines the request body for accepting/rejecting a friend request
type RespondFriendRequest struct {
	Status string `json:"status" validate:"required,oneof=accepted rejected"`
}

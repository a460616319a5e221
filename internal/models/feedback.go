package models

import "time"

// Feedback types
const (
	FeedbackReview = "review"
	FeedbackTip    = "tip"
)

// Feedback represents one review or tip on a business (MongoDB). Reviews
// carry a 1-5 rating; tips never do.
type Feedback struct {
	ID         string    `json:"id" bson:"_id"`
	BusinessID string    `json:"business_id" bson:"business_id"`
	UserID     uint      `json:"user_id" bson:"user_id"`
	Type       string    `json:"type" bson:"type"`
	Rating     *int      `json:"rating,omitempty" bson:"rating,omitempty"`
	Text       string    `json:"text" bson:"text"`
	CreatedAt  time.Time `json:"created_at" bson:"created_at"`
}

// CreateFeedbackRequest defines the request body for posting feedback
type CreateFeedbackRequest struct {
	BusinessID string `json:"business_id" validate:"required,len=22"`
	Type       string `json:"type" validate:"required,oneof=review tip"`
	Text       string `json:"text" validate:"required,min=1,max=5000"`
	Rating     *int   `json:"rating,omitempty" validate:"omitempty,min=1,max=5"`
}

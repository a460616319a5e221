package models

import "gorm.io/gorm"

// Quick-reaction categories. The set is closed; counts are always reported
// across all three.
const (
	ReactionUseful = "useful"
	ReactionFunny  = "funny"
	ReactionCool   = "cool"
)

// Reaction represents one user's current reaction to a feedback item. A user
// holds at most one reaction per feedback item; changing it overwrites the
// row, repeating it removes the row.
type Reaction struct {
	gorm.Model
	FeedbackID string `json:"feedback_id" gorm:"size:22;index;uniqueIndex:idx_reaction_user_feedback"` // Mongo feedback ID
	UserID     uint   `json:"user_id" gorm:"index;uniqueIndex:idx_reaction_user_feedback"`
	Type       string `json:"type" gorm:"size:10"`
}

// CreateReactionRequest defines the request body for reacting to feedback
type CreateReactionRequest struct {
	Type string `json:"type" validate:"required,oneof=useful funny cool"`
}

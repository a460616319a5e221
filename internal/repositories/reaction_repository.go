package repositories

import (
	"fmt"
	"strings"

	"github.com/ratewell/backend/internal/models"
	"github.com/ratewell/backend/internal/realtime"
	"gorm.io/gorm"
)

// ReactionRepository defines the interface for reaction data operations
type ReactionRepository interface {
	GetReaction(feedbackID string, userID uint) (*models.Reaction, error)
	UpsertReaction(feedbackID string, userID uint, reactionType string) (*models.Reaction, error)
	DeleteReaction(feedbackID string, userID uint) error
	CountsByFeedbackID(feedbackID string) (realtime.ReactionCounts, error)
}

// PostgresReactionRepository implements ReactionRepository for PostgreSQL
type PostgresReactionRepository struct {
	db *gorm.DB
}

// NewPostgresReactionRepository creates a new PostgresReactionRepository
func NewPostgresReactionRepository(db *gorm.DB) *PostgresReactionRepository {
	return &PostgresReactionRepository{db: db}
}

// GetReaction retrieves the user's current reaction to a feedback item
func (r *PostgresReactionRepository) GetReaction(feedbackID string, userID uint) (*models.Reaction, error) {
	var reaction models.Reaction
	if err := r.db.Where("feedback_id = ? AND user_id = ?", feedbackID, userID).First(&reaction).Error; err != nil {
		return nil, err
	}
	return &reaction, nil
}

// UpsertReaction creates the user's reaction to a feedback item, or replaces
// its type when a row already exists
func (r *PostgresReactionRepository) UpsertReaction(feedbackID string, userID uint, reactionType string) (*models.Reaction, error) {
	existing, err := r.GetReaction(feedbackID, userID)
	if err == nil {
		existing.Type = reactionType
		if err := r.db.Save(existing).Error; err != nil {
			return nil, err
		}
		return existing, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	reaction := models.Reaction{
		FeedbackID: feedbackID,
		UserID:     userID,
		Type:       reactionType,
	}
	if err := r.db.Create(&reaction).Error; err != nil {
		return nil, err
	}
	return &reaction, nil
}

// DeleteReaction removes the user's reaction to a feedback item
func (r *PostgresReactionRepository) DeleteReaction(feedbackID string, userID uint) error {
	res := r.db.Where("feedback_id = ? AND user_id = ?", feedbackID, userID).Delete(&models.Reaction{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("reaction not found")
	}
	return nil
}

// CountsByFeedbackID recomputes the aggregate reaction counts for one
// feedback item across the closed quick-reaction set
func (r *PostgresReactionRepository) CountsByFeedbackID(feedbackID string) (realtime.ReactionCounts, error) {
	var rows []struct {
		Type  string
		Count int
	}
	if err := r.db.Model(&models.Reaction{}).
		Select("type, count(*) as count").
		Where("feedback_id = ?", feedbackID).
		Group("type").
		Scan(&rows).Error; err != nil {
		return realtime.ReactionCounts{}, err
	}

	var counts realtime.ReactionCounts
	for _, row := range rows {
		switch strings.ToLower(row.Type) {
		case models.ReactionUseful:
			counts.Useful = row.Count
		case models.ReactionFunny:
			counts.Funny = row.Count
		case models.ReactionCool:
			counts.Cool = row.Count
		}
	}
	return counts, nil
}

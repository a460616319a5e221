package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/ratewell/backend/internal/models"
	"github.com/ratewell/backend/pkg/id"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// FeedbackRepository defines the interface for feedback data operations
type FeedbackRepository interface {
	CreateFeedback(ctx context.Context, feedback *models.Feedback) error
	GetFeedbackByID(ctx context.Context, feedbackID string) (*models.Feedback, error)
	GetFeedbackByBusinessID(ctx context.Context, businessID string, skip, limit int64) ([]models.Feedback, error)
	GetFeedbackByUserIDs(ctx context.Context, userIDs []uint, skip, limit int64) ([]models.Feedback, error)
}

// MongoFeedbackRepository implements FeedbackRepository for MongoDB
type MongoFeedbackRepository struct {
	collection *mongo.Collection
}

// NewMongoFeedbackRepository creates a new MongoFeedbackRepository
func NewMongoFeedbackRepository(db *mongo.Database) *MongoFeedbackRepository {
	return &MongoFeedbackRepository{collection: db.Collection("feedback")}
}

// CreateFeedback creates a new feedback document in MongoDB
func (r *MongoFeedbackRepository) CreateFeedback(ctx context.Context, feedback *models.Feedback) error {
	feedback.ID = id.New()
	feedback.CreatedAt = time.Now().UTC()
	_, err := r.collection.InsertOne(ctx, feedback)
	return err
}

// GetFeedbackByID retrieves a feedback item by ID from MongoDB
func (r *MongoFeedbackRepository) GetFeedbackByID(ctx context.Context, feedbackID string) (*models.Feedback, error) {
	var feedback models.Feedback
	err := r.collection.FindOne(ctx, bson.M{"_id": feedbackID}).Decode(&feedback)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("feedback not found")
		}
		return nil, err
	}
	return &feedback, nil
}

// GetFeedbackByBusinessID retrieves feedback for a business from MongoDB,
// newest first
func (r *MongoFeedbackRepository) GetFeedbackByBusinessID(ctx context.Context, businessID string, skip, limit int64) ([]models.Feedback, error) {
	findOptions := options.Find().SetSkip(skip).SetLimit(limit).SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"business_id": businessID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var items []models.Feedback
	if err = cursor.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// GetFeedbackByUserIDs retrieves feedback authored by any of the given users
// from MongoDB, newest first
func (r *MongoFeedbackRepository) GetFeedbackByUserIDs(ctx context.Context, userIDs []uint, skip, limit int64) ([]models.Feedback, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}

	findOptions := options.Find().SetSkip(skip).SetLimit(limit).SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"user_id": bson.M{"$in": userIDs}}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var items []models.Feedback
	if err = cursor.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}

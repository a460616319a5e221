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

// BusinessRepository defines the interface for business data operations
type BusinessRepository interface {
	CreateBusiness(ctx context.Context, business *models.Business) error
	GetBusinessByID(ctx context.Context, businessID string) (*models.Business, error)
	ListBusinesses(ctx context.Context, name, city string, skip, limit int64) ([]models.Business, error)
}

// MongoBusinessRepository implements BusinessRepository for MongoDB
type MongoBusinessRepository struct {
	collection *mongo.Collection
}

// NewMongoBusinessRepository creates a new MongoBusinessRepository
func NewMongoBusinessRepository(db *mongo.Database) *MongoBusinessRepository {
	return &MongoBusinessRepository{collection: db.Collection("businesses")}
}

// CreateBusiness creates a new business in MongoDB
func (r *MongoBusinessRepository) CreateBusiness(ctx context.Context, business *models.Business) error {
	business.ID = id.New()
	business.CreatedAt = time.Now().UTC()
	_, err := r.collection.InsertOne(ctx, business)
	return err
}

// GetBusinessByID retrieves a business by ID from MongoDB
func (r *MongoBusinessRepository) GetBusinessByID(ctx context.Context, businessID string) (*models.Business, error) {
	var business models.Business
	err := r.collection.FindOne(ctx, bson.M{"_id": businessID}).Decode(&business)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("business not found")
		}
		return nil, err
	}
	return &business, nil
}

// ListBusinesses retrieves businesses from MongoDB, optionally filtered by
// name (substring, case-insensitive) and city (exact, case-insensitive)
func (r *MongoBusinessRepository) ListBusinesses(ctx context.Context, name, city string, skip, limit int64) ([]models.Business, error) {
	filter := bson.M{}
	if name != "" {
		filter["name"] = bson.M{"$regex": name, "$options": "i"}
	}
	if city != "" {
		filter["city"] = bson.M{"$regex": "^" + city + "$", "$options": "i"}
	}

	findOptions := options.Find().SetSkip(skip).SetLimit(limit).SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var businesses []models.Business
	if err = cursor.All(ctx, &businesses); err != nil {
		return nil, err
	}
	return businesses, nil
}

package repositories

import (
	"time"

	"github.com/ratewell/backend/internal/models"
	"gorm.io/gorm"
)

// FriendshipRepository defines the interface for friendship data operations
type FriendshipRepository interface {
	UpsertFriendRequest(requesterID, addresseeID uint) (*models.Friendship, error)
	GetFriendshipByID(id uint) (*models.Friendship, error)
	GetFriendshipBetween(userA, userB uint) (*models.Friendship, error)
	GetPendingIncoming(userID uint) ([]models.Friendship, error)
	GetPendingOutgoing(userID uint) ([]models.Friendship, error)
	GetUserFriends(userID uint) ([]models.User, error)
	UpdateStatus(id uint, status string) (*models.Friendship, error)
	DeleteFriendship(id uint) error
}

// PostgresFriendshipRepository implements FriendshipRepository for PostgreSQL
type PostgresFriendshipRepository struct {
	db *gorm.DB
}

// NewPostgresFriendshipRepository creates a new PostgresFriendshipRepository
func NewPostgresFriendshipRepository(db *gorm.DB) *PostgresFriendshipRepository {
	return &PostgresFriendshipRepository{db: db}
}

// UpsertFriendRequest creates a pending friend request, or resets an existing
// one between the pair back to pending (re-requesting after a rejection is
// allowed).
func (r *PostgresFriendshipRepository) UpsertFriendRequest(requesterID, addresseeID uint) (*models.Friendship, error) {
	var existing models.Friendship
	err := r.db.Where("requester_id = ? AND addressee_id = ?", requesterID, addresseeID).First(&existing).Error
	if err == nil {
		existing.Status = models.FriendshipPending
		existing.RespondedAt = nil
		if err := r.db.Save(&existing).Error; err != nil {
			return nil, err
		}
		return &existing, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	created := models.Friendship{
		RequesterID: requesterID,
		AddresseeID: addresseeID,
		Status:      models.FriendshipPending,
	}
	if err := r.db.Create(&created).Error; err != nil {
		return nil, err
	}
	return &created, nil
}

// GetFriendshipByID retrieves a friendship row by ID
func (r *PostgresFriendshipRepository) GetFriendshipByID(id uint) (*models.Friendship, error) {
	var friendship models.Friendship
	if err := r.db.First(&friendship, id).Error; err != nil {
		return nil, err
	}
	return &friendship, nil
}

// GetFriendshipBetween retrieves the friendship row between two users,
// regardless of which side sent the request
func (r *PostgresFriendshipRepository) GetFriendshipBetween(userA, userB uint) (*models.Friendship, error) {
	var friendship models.Friendship
	if err := r.db.Where(
		"(requester_id = ? AND addressee_id = ?) OR (requester_id = ? AND addressee_id = ?)",
		userA, userB, userB, userA,
	).First(&friendship).Error; err != nil {
		return nil, err
	}
	return &friendship, nil
}

// GetPendingIncoming retrieves pending friend requests addressed to the user
func (r *PostgresFriendshipRepository) GetPendingIncoming(userID uint) ([]models.Friendship, error) {
	var requests []models.Friendship
	if err := r.db.Where("addressee_id = ? AND status = ?", userID, models.FriendshipPending).
		Order("created_at DESC").Find(&requests).Error; err != nil {
		return nil, err
	}
	return requests, nil
}

// GetPendingOutgoing retrieves pending friend requests sent by the user
func (r *PostgresFriendshipRepository) GetPendingOutgoing(userID uint) ([]models.Friendship, error) {
	var requests []models.Friendship
	if err := r.db.Where("requester_id = ? AND status = ?", userID, models.FriendshipPending).
		Order("created_at DESC").Find(&requests).Error; err != nil {
		return nil, err
	}
	return requests, nil
}

// GetUserFriends retrieves all accepted friends for a user
func (r *PostgresFriendshipRepository) GetUserFriends(userID uint) ([]models.User, error) {
	var friends []models.User
	subQuery1 := r.db.Table("friendships").Select("addressee_id").Where("requester_id = ? AND status = ?", userID, models.FriendshipAccepted)
	subQuery2 := r.db.Table("friendships").Select("requester_id").Where("addressee_id = ? AND status = ?", userID, models.FriendshipAccepted)

	if err := r.db.Where("id IN (?) OR id IN (?)", subQuery1, subQuery2).Find(&friends).Error; err != nil {
		return nil, err
	}
	return friends, nil
}

// UpdateStatus updates the status of a friend request and stamps the
// response time
func (r *PostgresFriendshipRepository) UpdateStatus(id uint, status string) (*models.Friendship, error) {
	now := time.Now()
	if err := r.db.Model(&models.Friendship{}).Where("id = ?", id).
		Updates(map[string]interface{}{"status": status, "responded_at": &now}).Error; err != nil {
		return nil, err
	}
	return r.GetFriendshipByID(id)
}

// DeleteFriendship deletes a friendship row
func (r *PostgresFriendshipRepository) DeleteFriendship(id uint) error {
	return r.db.Delete(&models.Friendship{}, id).Error
}

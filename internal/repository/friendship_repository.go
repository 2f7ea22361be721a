package repository

import (
	"github.com/driftchat/DriftChat-backend/internal/models"
	"gorm.io/gorm"
)

type FriendshipRepository struct {
	db *gorm.DB
}

func NewFriendshipRepository(db *gorm.DB) *FriendshipRepository {
	return &FriendshipRepository{db: db}
}

func (r *FriendshipRepository) Create(friendship *models.Friendship) error {
	return r.db.Create(friendship).Error
}

func (r *FriendshipRepository) FindBetween(userA, userB uint) (*models.Friendship, error) {
	low, high := models.OrderPair(userA, userB)
	var f models.Friendship
	err := r.db.Where("user_low_id = ? AND user_high_id = ?", low, high).First(&f).Error
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *FriendshipRepository) FindByID(id uint) (*models.Friendship, error) {
	var f models.Friendship
	if err := r.db.First(&f, id).Error; err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *FriendshipRepository) UpdateStatus(id uint, status models.FriendshipStatus, actionUserID uint) error {
	return r.db.Model(&models.Friendship{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":         status,
			"action_user_id": actionUserID,
		}).Error
}

// Delete removes the row for the pair. The delete is unscoped: the unique
// pair index would otherwise collide with a soft-deleted row when the users
// later re-friend each other.
func (r *FriendshipRepository) Delete(userA, userB uint) error {
	low, high := models.OrderPair(userA, userB)
	return r.db.Unscoped().
		Where("user_low_id = ? AND user_high_id = ?", low, high).
		Delete(&models.Friendship{}).Error
}

func (r *FriendshipRepository) ListForUser(userID uint, status models.FriendshipStatus) ([]models.Friendship, error) {
	var friendships []models.Friendship
	q := r.db.Where("user_low_id = ? OR user_high_id = ?", userID, userID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	err := q.Order("updated_at DESC").Find(&friendships).Error
	return friendships, err
}

// AcceptedFriendIDs returns the peer ids of every accepted friendship, the
// recipient set for presence broadcasts.
func (r *FriendshipRepository) AcceptedFriendIDs(userID uint) ([]uint, error) {
	var friendships []models.Friendship
	err := r.db.Where("(user_low_id = ? OR user_high_id = ?) AND status = ?",
		userID, userID, models.FriendshipAccepted).
		Find(&friendships).Error
	if err != nil {
		return nil, err
	}

	ids := make([]uint, 0, len(friendships))
	for i := range friendships {
		ids = append(ids, friendships[i].PeerID(userID))
	}
	return ids, nil
}

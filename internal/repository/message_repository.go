package repository

import (
	"github.com/driftchat/DriftChat-backend/internal/models"
	"gorm.io/gorm"
)

type MessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

func (r *MessageRepository) Create(message *models.Message) error {
	return r.db.Create(message).Error
}

func (r *MessageRepository) FindByID(id uint) (*models.Message, error) {
	var message models.Message
	err := r.db.Preload("Sender").First(&message, id).Error
	if err != nil {
		return nil, err
	}
	return &message, nil
}

func (r *MessageRepository) FindByClientID(clientMessageID string, senderID uint) (*models.Message, error) {
	var message models.Message
	err := r.db.Preload("Sender").
		Where("client_message_id = ? AND sender_id = ?", clientMessageID, senderID).
		First(&message).Error
	if err != nil {
		return nil, err
	}
	return &message, nil
}

// FindDirectPage fetches a cursor page of the direct chat between two users:
// descending by id strictly below beforeID, then reversed so the caller gets
// chronological order. A short page signals exhausted history.
func (r *MessageRepository) FindDirectPage(userID1, userID2 uint, beforeID uint, limit int) ([]models.Message, error) {
	q := r.db.Preload("Sender").
		Where("receiver_type = ?", models.ReceiverUser).
		Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)",
			userID1, userID2, userID2, userID1)
	return r.fetchPage(q, beforeID, limit)
}

func (r *MessageRepository) FindGroupPage(groupID uint, beforeID uint, limit int) ([]models.Message, error) {
	q := r.db.Preload("Sender").
		Where("receiver_type = ? AND receiver_id = ?", models.ReceiverGroup, groupID)
	return r.fetchPage(q, beforeID, limit)
}

func (r *MessageRepository) fetchPage(q *gorm.DB, beforeID uint, limit int) ([]models.Message, error) {
	if beforeID > 0 {
		q = q.Where("id < ?", beforeID)
	}
	var messages []models.Message
	err := q.Order("id DESC").Limit(limit).Find(&messages).Error
	if err != nil {
		return nil, err
	}

	// Reverse to chronological order.
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

// CountUnread counts messages in a chat newer than afterID, excluding the
// user's own messages and soft-deleted rows.
func (r *MessageRepository) CountUnread(userID uint, chatType models.ReceiverType, chatID uint, afterID uint) (int64, error) {
	var count int64
	q := r.db.Model(&models.Message{}).
		Where("id > ?", afterID).
		Where("sender_id IS NULL OR sender_id != ?", userID)

	switch chatType {
	case models.ReceiverUser:
		q = q.Where("receiver_type = ?", models.ReceiverUser).
			Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)",
				chatID, userID, userID, chatID)
	case models.ReceiverGroup:
		q = q.Where("receiver_type = ? AND receiver_id = ?", models.ReceiverGroup, chatID)
	default:
		return 0, nil
	}

	err := q.Count(&count).Error
	return count, err
}

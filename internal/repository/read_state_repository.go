package repository

import (
	"github.com/driftchat/DriftChat-backend/internal/models"
	"gorm.io/gorm"
)

type ReadStateRepository struct {
	db *gorm.DB
}

func NewReadStateRepository(db *gorm.DB) *ReadStateRepository {
	return &ReadStateRepository{db: db}
}

// UpsertMonotonic advances the read pointer for (user, chat) and reports
// whether it actually moved. The conflict clause only fires for a strictly
// newer id, so a stale client resending an older one leaves the row untouched
// and returns false.
func (r *ReadStateRepository) UpsertMonotonic(userID uint, chatType models.ReceiverType, chatID uint, lastReadMessageID uint) (bool, error) {
	res := r.db.Exec(`
		INSERT INTO chat_read_states (user_id, chat_type, chat_id, last_read_message_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, NOW(), NOW())
		ON CONFLICT (user_id, chat_type, chat_id) DO UPDATE
		SET last_read_message_id = EXCLUDED.last_read_message_id,
			updated_at = NOW()
		WHERE EXCLUDED.last_read_message_id > chat_read_states.last_read_message_id
	`, userID, chatType, chatID, lastReadMessageID)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *ReadStateRepository) Get(userID uint, chatType models.ReceiverType, chatID uint) (*models.ChatReadState, error) {
	var state models.ChatReadState
	err := r.db.Where("user_id = ? AND chat_type = ? AND chat_id = ?", userID, chatType, chatID).
		First(&state).Error
	if err != nil {
		return nil, err
	}
	return &state, nil
}

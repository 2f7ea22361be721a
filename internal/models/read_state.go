package models

import (
	"time"
)

// ChatReadState tracks a user's read pointer per chat. LastReadMessageID is
// monotonically non-decreasing; updates that would move it backward are
// discarded at the storage layer.
type ChatReadState struct {
	UserID            uint         `gorm:"primaryKey" json:"user_id"`
	ChatType          ReceiverType `gorm:"primaryKey;type:varchar(10)" json:"chat_type"`
	ChatID            uint         `gorm:"primaryKey" json:"chat_id"`
	LastReadMessageID uint         `gorm:"not null;default:0" json:"last_read_message_id"`
	CreatedAt         time.Time    `json:"created_at"`
	UpdatedAt         time.Time    `json:"updated_at"`
}

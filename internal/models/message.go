package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"
)

type ReceiverType string

const (
	ReceiverUser  ReceiverType = "user"
	ReceiverGroup ReceiverType = "group"
)

func ValidReceiverType(t ReceiverType) bool {
	return t == ReceiverUser || t == ReceiverGroup
}

type ContentType string

const (
	ContentText         ContentType = "text"
	ContentImage        ContentType = "image"
	ContentVideo        ContentType = "video"
	ContentAudio        ContentType = "audio"
	ContentFile         ContentType = "file"
	ContentSticker      ContentType = "sticker"
	ContentSystemNotice ContentType = "system_notification"
)

// JSONMap stores opaque message metadata as a jsonb column.
type JSONMap map[string]interface{}

func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

func (m *JSONMap) Scan(value interface{}) error {
	if value == nil {
		*m = nil
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return errors.New("unsupported type for JSONMap")
	}
	return json.Unmarshal(data, m)
}

// Message is the durable chat record. IDs are assigned by storage in strictly
// increasing creation order and double as the pagination cursor. For non-text
// content types, Content holds the referenced media/sticker id as a string,
// never inline bytes.
type Message struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Nil for system messages.
	SenderID *uint `gorm:"uniqueIndex:idx_sender_client;index" json:"sender_id"`
	Sender   *User `gorm:"foreignKey:SenderID" json:"-"`

	ReceiverType ReceiverType `gorm:"type:varchar(10);not null;index:idx_chat,priority:1" json:"receiver_type"`
	ReceiverID   uint         `gorm:"not null;index:idx_chat,priority:2" json:"receiver_id"`

	ContentType ContentType `gorm:"type:varchar(30);not null;default:'text'" json:"content_type"`
	Content     string      `gorm:"type:text;not null" json:"content"`
	Metadata    JSONMap     `gorm:"type:jsonb" json:"metadata,omitempty"`

	ReplyToMessageID *uint `json:"reply_to_message_id,omitempty"`

	// Caller-supplied idempotency token, advisory only. Unique-ish per sender.
	ClientMessageID *string `gorm:"type:varchar(64);uniqueIndex:idx_sender_client" json:"client_message_id,omitempty"`
}

// MessageResponse is the wire representation. Content is the raw text for
// text messages and a resolved reference object for media and stickers.
type MessageResponse struct {
	ID               uint         `json:"id"`
	SenderID         *uint        `json:"sender_id"`
	SenderUsername   string       `json:"sender_username"`
	SenderNickname   string       `json:"sender_nickname,omitempty"`
	ReceiverType     ReceiverType `json:"receiver_type"`
	ReceiverID       uint         `json:"receiver_id"`
	ContentType      ContentType  `json:"content_type"`
	Content          interface{}  `json:"content"`
	Metadata         JSONMap      `json:"metadata,omitempty"`
	ReplyToMessageID *uint        `json:"reply_to_message_id,omitempty"`
	ClientMessageID  *string      `json:"client_message_id,omitempty"`
	CreatedAt        time.Time    `json:"created_at"`
}

// MediaContentRef is the resolved payload for image/video/audio/file messages.
type MediaContentRef struct {
	Type      ContentType `json:"type"`
	ID        uint        `json:"id"`
	FileName  string      `json:"file_name,omitempty"`
	URL       string      `json:"url"`
	MimeType  string      `json:"mime_type"`
	SizeBytes int64       `json:"size_bytes,omitempty"`
	Metadata  JSONMap     `json:"metadata,omitempty"`
}

// StickerContentRef is the resolved payload for sticker messages.
type StickerContentRef struct {
	Type      ContentType `json:"type"`
	StickerID uint        `json:"sticker_id"`
	MediaID   uint        `json:"media_id"`
	URL       string      `json:"url"`
	MimeType  string      `json:"mime_type"`
}

package models

import (
	"time"

	"gorm.io/gorm"
)

// MediaAttachment is an uploaded object referenced by media and sticker
// messages. FilePath is the public URL path served from object storage.
type MediaAttachment struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	UploaderID uint    `gorm:"not null;index" json:"uploader_id"`
	FileName   string  `gorm:"size:255;not null" json:"file_name"`
	FilePath   string  `gorm:"size:512;not null" json:"file_path"`
	MimeType   string  `gorm:"size:100;not null" json:"mime_type"`
	SizeBytes  int64   `gorm:"not null" json:"size_bytes"`
	Metadata   JSONMap `gorm:"type:jsonb" json:"metadata,omitempty"`
}

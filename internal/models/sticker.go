package models

import (
	"time"
)

// Sticker is a catalog entry pointing at a media attachment.
type Sticker struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	Name    string `gorm:"size:100;not null" json:"name"`
	Pack    string `gorm:"size:100;index" json:"pack"`
	MediaID uint   `gorm:"not null" json:"media_id"`

	Media MediaAttachment `gorm:"foreignKey:MediaID" json:"media"`
}

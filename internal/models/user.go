package models

import (
	"time"

	"gorm.io/gorm"
)

// UserStatus is the presence indicator visible to accepted friends.
// It is mutated exclusively by the realtime gateway on connect/disconnect.
type UserStatus string

const (
	StatusOnline  UserStatus = "online"
	StatusAway    UserStatus = "away"
	StatusBusy    UserStatus = "busy"
	StatusOffline UserStatus = "offline"
)

func ValidUserStatus(s UserStatus) bool {
	switch s {
	case StatusOnline, StatusAway, StatusBusy, StatusOffline:
		return true
	}
	return false
}

type User struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Username     string     `gorm:"uniqueIndex;not null" json:"username"`
	Email        string     `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string     `gorm:"not null" json:"-"`
	Nickname     string     `json:"nickname"`
	AvatarURL    string     `json:"avatar_url"`
	Bio          string     `gorm:"size:255" json:"bio"`
	Status       UserStatus `gorm:"type:varchar(20);default:'offline';not null" json:"status"`
	// LastSeenAt is stamped only on the transition to offline.
	LastSeenAt *time.Time `json:"last_seen_at"`
}

type UserResponse struct {
	ID         uint       `json:"id"`
	Username   string     `json:"username"`
	Nickname   string     `json:"nickname"`
	AvatarURL  string     `json:"avatar_url"`
	Bio        string     `json:"bio"`
	Status     UserStatus `json:"status"`
	LastSeenAt *time.Time `json:"last_seen_at"`
}

func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:         u.ID,
		Username:   u.Username,
		Nickname:   u.Nickname,
		AvatarURL:  u.AvatarURL,
		Bio:        u.Bio,
		Status:     u.Status,
		LastSeenAt: u.LastSeenAt,
	}
}

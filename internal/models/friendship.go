package models

import (
	"time"

	"gorm.io/gorm"
)

type FriendshipStatus string

const (
	FriendshipPending  FriendshipStatus = "pending"
	FriendshipAccepted FriendshipStatus = "accepted"
	FriendshipDeclined FriendshipStatus = "declined"
	FriendshipBlocked  FriendshipStatus = "blocked"
)

// Friendship stores one row per user pair, with the lower user id always in
// UserLowID so the pair is unique regardless of who initiated.
type Friendship struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	UserLowID  uint             `gorm:"not null;uniqueIndex:idx_friend_pair,priority:1" json:"user_low_id"`
	UserHighID uint             `gorm:"not null;uniqueIndex:idx_friend_pair,priority:2" json:"user_high_id"`
	Status     FriendshipStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	// ActionUserID is the user who performed the latest transition
	// (sent the request, accepted, declined, blocked).
	ActionUserID uint `gorm:"not null" json:"action_user_id"`
}

// OrderPair returns the two ids in (low, high) order.
func OrderPair(a, b uint) (uint, uint) {
	if a > b {
		return b, a
	}
	return a, b
}

// PeerID returns the other side of the friendship relative to userID.
func (f *Friendship) PeerID(userID uint) uint {
	if f.UserLowID == userID {
		return f.UserHighID
	}
	return f.UserLowID
}

// FriendshipResponse is a friendship enriched with the peer profile and the
// caller's unread count for that direct chat.
type FriendshipResponse struct {
	ID          uint             `json:"id"`
	Status      FriendshipStatus `json:"status"`
	ActionUser  uint             `json:"action_user_id"`
	Peer        UserResponse     `json:"peer"`
	UnreadCount int64            `json:"unread_count"`
	CreatedAt   time.Time        `json:"created_at"`
}

package repository

import (
	"time"

	"github.com/driftchat/DriftChat-backend/internal/models"
)

// UserRepositoryInterface defines the contract for user repository operations
type UserRepositoryInterface interface {
	Create(user *models.User) error
	FindByEmail(email string) (*models.User, error)
	FindByUsername(username string) (*models.User, error)
	FindByID(id uint) (*models.User, error)
	Update(user *models.User) error
	UpdateStatus(userID uint, status models.UserStatus, lastSeenAt *time.Time) error
	SearchUsers(query string, limit int) ([]models.User, error)
}

// FriendshipRepositoryInterface defines the contract for friendship graph operations
type FriendshipRepositoryInterface interface {
	Create(friendship *models.Friendship) error
	FindBetween(userA, userB uint) (*models.Friendship, error)
	FindByID(id uint) (*models.Friendship, error)
	UpdateStatus(id uint, status models.FriendshipStatus, actionUserID uint) error
	// Delete removes the pair's row outright so a later request can recreate it.
	Delete(userA, userB uint) error
	ListForUser(userID uint, status models.FriendshipStatus) ([]models.Friendship, error)
	AcceptedFriendIDs(userID uint) ([]uint, error)
}

// GroupRepositoryInterface defines the contract for group and membership operations
type GroupRepositoryInterface interface {
	Create(group *models.Group) error
	FindByID(id uint) (*models.Group, error)
	AddMember(groupID, userID uint, role models.GroupRole) error
	UpdateMemberStatus(groupID, userID uint, status models.MemberStatus) error
	GetMembers(groupID uint, status models.MemberStatus) ([]models.GroupMember, error)
	ActiveMemberIDs(groupID uint) ([]uint, error)
	IsActiveMember(groupID, userID uint) (bool, error)
	GetMemberRole(groupID, userID uint) (models.GroupRole, error)
	GetUserGroups(userID uint) ([]models.Group, error)
}

// MessageRepositoryInterface defines the contract for durable message storage
type MessageRepositoryInterface interface {
	Create(message *models.Message) error
	FindByID(id uint) (*models.Message, error)
	FindByClientID(clientMessageID string, senderID uint) (*models.Message, error)
	// FindDirectPage and FindGroupPage fetch up to limit non-deleted messages
	// strictly below beforeID (unbounded when beforeID == 0), returned in
	// chronological order.
	FindDirectPage(userID1, userID2 uint, beforeID uint, limit int) ([]models.Message, error)
	FindGroupPage(groupID uint, beforeID uint, limit int) ([]models.Message, error)
	CountUnread(userID uint, chatType models.ReceiverType, chatID uint, afterID uint) (int64, error)
}

// ReadStateRepositoryInterface defines the contract for per-chat read pointers
type ReadStateRepositoryInterface interface {
	// UpsertMonotonic only ever advances the stored pointer; it reports
	// whether the pointer actually moved.
	UpsertMonotonic(userID uint, chatType models.ReceiverType, chatID uint, lastReadMessageID uint) (bool, error)
	Get(userID uint, chatType models.ReceiverType, chatID uint) (*models.ChatReadState, error)
}

// MediaRepositoryInterface defines the contract for uploaded attachment lookups
type MediaRepositoryInterface interface {
	Create(media *models.MediaAttachment) error
	FindByID(id uint) (*models.MediaAttachment, error)
	FindByIDs(ids []uint) (map[uint]models.MediaAttachment, error)
}

// StickerRepositoryInterface defines the contract for sticker catalog lookups
type StickerRepositoryInterface interface {
	FindByID(id uint) (*models.Sticker, error)
	FindByIDs(ids []uint) (map[uint]models.Sticker, error)
	List(pack string, limit int) ([]models.Sticker, error)
}

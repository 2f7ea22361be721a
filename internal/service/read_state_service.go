package service

import (
	"errors"

	"github.com/driftchat/DriftChat-backend/internal/models"
	"github.com/driftchat/DriftChat-backend/internal/repository"
	"gorm.io/gorm"
)

var ErrInvalidChatType = errors.New("chat type must be \"user\" or \"group\"")

// ReadStateService owns the per-chat read pointers and the unread counts
// derived from them.
type ReadStateService struct {
	readStateRepo repository.ReadStateRepositoryInterface
	messageRepo   repository.MessageRepositoryInterface
}

func NewReadStateService(
	readStateRepo repository.ReadStateRepositoryInterface,
	messageRepo repository.MessageRepositoryInterface,
) *ReadStateService {
	return &ReadStateService{readStateRepo: readStateRepo, messageRepo: messageRepo}
}

// MarkRead advances the pointer for (user, chat) and reports whether it
// moved. A stale client resending an older id is a no-op rather than a
// regression, and callers skip downstream receipts for it.
func (s *ReadStateService) MarkRead(userID uint, chatType models.ReceiverType, chatID uint, lastMessageID uint) (bool, error) {
	if !models.ValidReceiverType(chatType) {
		return false, ErrInvalidChatType
	}
	if lastMessageID == 0 {
		return false, errors.New("last message id is required")
	}
	return s.readStateRepo.UpsertMonotonic(userID, chatType, chatID, lastMessageID)
}

// LastRead returns the stored pointer, zero when the user has never read the
// chat.
func (s *ReadStateService) LastRead(userID uint, chatType models.ReceiverType, chatID uint) (uint, error) {
	state, err := s.readStateRepo.Get(userID, chatType, chatID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return state.LastReadMessageID, nil
}

// UnreadCount is a pure read: messages newer than the pointer, excluding the
// user's own and soft-deleted rows.
func (s *ReadStateService) UnreadCount(userID uint, chatType models.ReceiverType, chatID uint) (int64, error) {
	if !models.ValidReceiverType(chatType) {
		return 0, ErrInvalidChatType
	}
	pointer, err := s.LastRead(userID, chatType, chatID)
	if err != nil {
		return 0, err
	}
	return s.messageRepo.CountUnread(userID, chatType, chatID, pointer)
}

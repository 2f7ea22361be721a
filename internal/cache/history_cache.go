package cache

import (
	"fmt"
	"time"

	"github.com/driftchat/DriftChat-backend/internal/models"
	"github.com/vmihailenco/msgpack/v5"
)

const historyPageTTL = 5 * time.Minute

// HistoryCache keeps only the newest page of each chat (the beforeId-less
// fetch every client issues on open). Older cursor pages are immutable and
// cheap enough to serve from Postgres directly.
type HistoryCache struct {
	redis *RedisCache
}

func NewHistoryCache(redis *RedisCache) *HistoryCache {
	return &HistoryCache{redis: redis}
}

func directKey(userID1, userID2 uint) string {
	low, high := models.OrderPair(userID1, userID2)
	return fmt.Sprintf("history:user:%d:%d", low, high)
}

func groupKey(groupID uint) string {
	return fmt.Sprintf("history:group:%d", groupID)
}

func chatKey(chatType models.ReceiverType, a, b uint) string {
	if chatType == models.ReceiverGroup {
		return groupKey(b)
	}
	return directKey(a, b)
}

// GetPage returns the cached newest page, if any. For direct chats a is the
// requesting user and b the peer; for groups b is the group id.
func (hc *HistoryCache) GetPage(chatType models.ReceiverType, a, b uint) ([]models.MessageResponse, bool) {
	if hc == nil || hc.redis == nil {
		return nil, false
	}
	data, err := hc.redis.Get(chatKey(chatType, a, b))
	if err != nil || data == nil {
		return nil, false
	}
	var page []models.MessageResponse
	if err := msgpack.Unmarshal(data, &page); err != nil {
		return nil, false
	}
	return page, true
}

func (hc *HistoryCache) SetPage(chatType models.ReceiverType, a, b uint, page []models.MessageResponse) error {
	if hc == nil || hc.redis == nil {
		return nil
	}
	data, err := msgpack.Marshal(page)
	if err != nil {
		return err
	}
	return hc.redis.Set(chatKey(chatType, a, b), data, historyPageTTL)
}

// Invalidate drops the cached page after a new message lands in the chat.
func (hc *HistoryCache) Invalidate(chatType models.ReceiverType, a, b uint) error {
	if hc == nil || hc.redis == nil {
		return nil
	}
	return hc.redis.Delete(chatKey(chatType, a, b))
}

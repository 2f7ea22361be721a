package cache

import (
	"fmt"
	"strconv"
	"time"

	"github.com/driftchat/DriftChat-backend/internal/models"
)

// Presence keys auto-expire so a crashed node can't leave users pinned online.
const presenceTTL = 90 * time.Second

// PresenceCache mirrors the registry's presence view in Redis. It is a
// best-effort sidecar: all methods are nil-safe no-ops without Redis, and the
// database row remains the source of truth.
type PresenceCache struct {
	redis *RedisCache
}

func NewPresenceCache(redis *RedisCache) *PresenceCache {
	return &PresenceCache{redis: redis}
}

func presenceKey(userID uint) string {
	return fmt.Sprintf("presence:%d", userID)
}

func (pc *PresenceCache) SetStatus(userID uint, status models.UserStatus) error {
	if pc == nil || pc.redis == nil {
		return nil
	}
	if status == models.StatusOffline {
		if err := pc.redis.SetRemove("presence:online", userID); err != nil {
			return err
		}
		return pc.redis.Delete(presenceKey(userID))
	}
	if err := pc.redis.SetAdd("presence:online", userID); err != nil {
		return err
	}
	return pc.redis.Set(presenceKey(userID), []byte(status), presenceTTL)
}

func (pc *PresenceCache) GetStatus(userID uint) (models.UserStatus, bool) {
	if pc == nil || pc.redis == nil {
		return "", false
	}
	val, err := pc.redis.Get(presenceKey(userID))
	if err != nil || val == nil {
		return "", false
	}
	return models.UserStatus(val), true
}

func (pc *PresenceCache) Refresh(userID uint) error {
	if pc == nil || pc.redis == nil {
		return nil
	}
	if status, ok := pc.GetStatus(userID); ok {
		return pc.redis.Set(presenceKey(userID), []byte(status), presenceTTL)
	}
	return nil
}

func (pc *PresenceCache) OnlineUserIDs() ([]uint, error) {
	if pc == nil || pc.redis == nil {
		return nil, nil
	}
	members, err := pc.redis.SetMembers("presence:online")
	if err != nil {
		return nil, err
	}
	ids := make([]uint, 0, len(members))
	for _, member := range members {
		if id, err := strconv.ParseUint(member, 10, 32); err == nil {
			ids = append(ids, uint(id))
		}
	}
	return ids, nil
}

func (pc *PresenceCache) OnlineCount() (int64, error) {
	if pc == nil || pc.redis == nil {
		return 0, nil
	}
	return pc.redis.SetCard("presence:online")
}

package ws

import (
	"errors"
	"log"

	"github.com/driftchat/DriftChat-backend/internal/models"
	"github.com/driftchat/DriftChat-backend/internal/repository"
	"github.com/driftchat/DriftChat-backend/internal/service"
)

var (
	// ErrStatusReserved is returned when a caller tries to set a status that
	// only the session lifecycle may set.
	ErrStatusReserved = errors.New("status is set by the session lifecycle")
	// ErrNoActiveSession is returned when a user without a bound connection
	// tries to change their presence.
	ErrNoActiveSession = errors.New("no active realtime session")
)

// PresenceBroadcaster pushes status transitions to the user's accepted
// friends. Presence is ephemeral: offline friends are skipped, nothing is
// queued or retried.
type PresenceBroadcaster struct {
	hub            *Hub
	userRepo       repository.UserRepositoryInterface
	friendshipRepo repository.FriendshipRepositoryInterface
	userService    *service.UserService
}

func NewPresenceBroadcaster(
	hub *Hub,
	userRepo repository.UserRepositoryInterface,
	friendshipRepo repository.FriendshipRepositoryInterface,
	userService *service.UserService,
) *PresenceBroadcaster {
	return &PresenceBroadcaster{
		hub:            hub,
		userRepo:       userRepo,
		friendshipRepo: friendshipRepo,
		userService:    userService,
	}
}

// SetManualStatus handles a user-picked status (online, away, busy). Offline
// is reserved: it is only ever set by the disconnect path, so lastSeenAt
// cannot be forged. A user whose connection is not bound cannot change their
// presence at all; connect and disconnect own those transitions.
func (b *PresenceBroadcaster) SetManualStatus(userID uint, status models.UserStatus) error {
	if status == models.StatusOffline {
		return ErrStatusReserved
	}
	if !b.hub.IsOnline(userID) {
		return ErrNoActiveSession
	}
	b.Announce(userID, status)
	return nil
}

// Announce persists the transition and notifies accepted friends. If the
// persisted status already equals the target, both the write and the
// broadcast are skipped: a forced eviction may have marked the user offline
// before the natural close handler runs, and friends must not see the change
// twice.
func (b *PresenceBroadcaster) Announce(userID uint, status models.UserStatus) {
	user, err := b.userRepo.FindByID(userID)
	if err != nil {
		log.Printf("presence: lookup of user %d failed: %v", userID, err)
		return
	}
	if user.Status == status {
		return
	}

	lastSeenAt, err := b.userService.SetStatus(userID, status)
	if err != nil {
		log.Printf("presence: persisting status %s for user %d failed: %v", status, userID, err)
		return
	}

	friendIDs, err := b.friendshipRepo.AcceptedFriendIDs(userID)
	if err != nil {
		log.Printf("presence: friend lookup for user %d failed: %v", userID, err)
		return
	}

	payload := UserStatusUpdatePayload{
		UserID: userID,
		Status: status,
	}
	if status == models.StatusOffline {
		payload.LastSeenAt = lastSeenAt
	}

	for _, friendID := range friendIDs {
		b.hub.Deliver(friendID, EventUserStatusUpdate, payload)
	}
}

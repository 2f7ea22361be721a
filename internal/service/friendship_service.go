package service

import (
	"errors"
	"log"
	"sync"

	"github.com/driftchat/DriftChat-backend/internal/models"
	"github.com/driftchat/DriftChat-backend/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrSelfFriendship     = errors.New("cannot befriend yourself")
	ErrFriendshipExists   = errors.New("friendship already exists")
	ErrFriendshipNotFound = errors.New("friendship not found")
	ErrNotRequestTarget   = errors.New("only the request target can respond")
	ErrFriendshipBlocked  = errors.New("friendship is blocked")
	ErrNotFriends         = errors.New("not currently friends with this user")
	ErrNotBlocker         = errors.New("only the user who placed the block can remove it")
)

// unreadWorkers bounds the concurrent unread-count queries when enriching a
// friend list, so one request can't hog the connection pool.
const unreadWorkers = 8

type FriendshipService struct {
	friendshipRepo repository.FriendshipRepositoryInterface
	userRepo       repository.UserRepositoryInterface
	readStateSvc   *ReadStateService
}

func NewFriendshipService(
	friendshipRepo repository.FriendshipRepositoryInterface,
	userRepo repository.UserRepositoryInterface,
	readStateSvc *ReadStateService,
) *FriendshipService {
	return &FriendshipService{
		friendshipRepo: friendshipRepo,
		userRepo:       userRepo,
		readStateSvc:   readStateSvc,
	}
}

// SendRequest creates a pending edge from requester to target. A declined
// pair may be re-requested; a blocked pair is rejected regardless of which
// side placed the block; anything else is a conflict.
func (s *FriendshipService) SendRequest(requesterID, targetID uint) (*models.Friendship, error) {
	if requesterID == targetID {
		return nil, ErrSelfFriendship
	}
	if _, err := s.userRepo.FindByID(targetID); err != nil {
		return nil, errors.New("target user not found")
	}

	existing, err := s.friendshipRepo.FindBetween(requesterID, targetID)
	if err == nil {
		switch existing.Status {
		case models.FriendshipDeclined:
			if err := s.friendshipRepo.UpdateStatus(existing.ID, models.FriendshipPending, requesterID); err != nil {
				return nil, err
			}
			existing.Status = models.FriendshipPending
			existing.ActionUserID = requesterID
			return existing, nil
		case models.FriendshipBlocked:
			return nil, ErrFriendshipBlocked
		default:
			return nil, ErrFriendshipExists
		}
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	low, high := models.OrderPair(requesterID, targetID)
	friendship := &models.Friendship{
		UserLowID:    low,
		UserHighID:   high,
		Status:       models.FriendshipPending,
		ActionUserID: requesterID,
	}
	if err := s.friendshipRepo.Create(friendship); err != nil {
		return nil, err
	}
	return friendship, nil
}

// Respond accepts or declines a pending request. Only the non-initiating side
// may respond.
func (s *FriendshipService) Respond(userID, friendshipID uint, accept bool) (*models.Friendship, error) {
	friendship, err := s.friendshipRepo.FindByID(friendshipID)
	if err != nil {
		return nil, ErrFriendshipNotFound
	}
	if friendship.Status != models.FriendshipPending {
		return nil, errors.New("friendship is not pending")
	}
	if friendship.UserLowID != userID && friendship.UserHighID != userID {
		return nil, ErrFriendshipNotFound
	}
	if friendship.ActionUserID == userID {
		return nil, ErrNotRequestTarget
	}

	status := models.FriendshipDeclined
	if accept {
		status = models.FriendshipAccepted
	}
	if err := s.friendshipRepo.UpdateStatus(friendship.ID, status, userID); err != nil {
		return nil, err
	}
	friendship.Status = status
	friendship.ActionUserID = userID
	return friendship, nil
}

// Remove deletes an accepted friendship. The row is removed outright so
// either side can send a fresh request later.
func (s *FriendshipService) Remove(userID, friendID uint) error {
	friendship, err := s.friendshipRepo.FindBetween(userID, friendID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrFriendshipNotFound
		}
		return err
	}
	if friendship.Status != models.FriendshipAccepted {
		return ErrNotFriends
	}
	return s.friendshipRepo.Delete(userID, friendID)
}

// Block marks the pair blocked with the caller as the acting side, replacing
// whatever relationship existed. A block placed by the other side cannot be
// overridden.
func (s *FriendshipService) Block(blockerID, targetID uint) (*models.Friendship, error) {
	if blockerID == targetID {
		return nil, ErrSelfFriendship
	}
	if _, err := s.userRepo.FindByID(targetID); err != nil {
		return nil, errors.New("target user not found")
	}

	existing, err := s.friendshipRepo.FindBetween(blockerID, targetID)
	if err == nil {
		if existing.Status == models.FriendshipBlocked && existing.ActionUserID != blockerID {
			return nil, ErrFriendshipBlocked
		}
		if err := s.friendshipRepo.UpdateStatus(existing.ID, models.FriendshipBlocked, blockerID); err != nil {
			return nil, err
		}
		existing.Status = models.FriendshipBlocked
		existing.ActionUserID = blockerID
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	low, high := models.OrderPair(blockerID, targetID)
	friendship := &models.Friendship{
		UserLowID:    low,
		UserHighID:   high,
		Status:       models.FriendshipBlocked,
		ActionUserID: blockerID,
	}
	if err := s.friendshipRepo.Create(friendship); err != nil {
		return nil, err
	}
	return friendship, nil
}

// Unblock deletes a block placed by the caller. Unblocking does not restore
// the prior relationship; the pair starts from scratch.
func (s *FriendshipService) Unblock(userID, targetID uint) error {
	friendship, err := s.friendshipRepo.FindBetween(userID, targetID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrFriendshipNotFound
		}
		return err
	}
	if friendship.Status != models.FriendshipBlocked {
		return ErrFriendshipNotFound
	}
	if friendship.ActionUserID != userID {
		return ErrNotBlocker
	}
	return s.friendshipRepo.Delete(userID, targetID)
}

// ListBlocked returns the users the caller has blocked. Blocks placed by the
// other side are not disclosed.
func (s *FriendshipService) ListBlocked(userID uint) ([]models.FriendshipResponse, error) {
	friendships, err := s.friendshipRepo.ListForUser(userID, models.FriendshipBlocked)
	if err != nil {
		return nil, err
	}

	out := make([]models.FriendshipResponse, 0, len(friendships))
	for i := range friendships {
		f := &friendships[i]
		if f.ActionUserID != userID {
			continue
		}
		peer, err := s.userRepo.FindByID(f.PeerID(userID))
		if err != nil {
			return nil, err
		}
		out = append(out, models.FriendshipResponse{
			ID:         f.ID,
			Status:     f.Status,
			ActionUser: f.ActionUserID,
			Peer:       peer.ToResponse(),
			CreatedAt:  f.CreatedAt,
		})
	}
	return out, nil
}

// AcceptedFriendIDs is the presence audience for a user.
func (s *FriendshipService) AcceptedFriendIDs(userID uint) ([]uint, error) {
	return s.friendshipRepo.AcceptedFriendIDs(userID)
}

// ListFriends returns the accepted friend list with each peer's profile and
// the caller's unread count for that direct chat. Counts are fetched with a
// bounded worker pool; a failed count degrades to zero rather than failing
// the list.
func (s *FriendshipService) ListFriends(userID uint) ([]models.FriendshipResponse, error) {
	friendships, err := s.friendshipRepo.ListForUser(userID, models.FriendshipAccepted)
	if err != nil {
		return nil, err
	}

	responses := make([]models.FriendshipResponse, len(friendships))
	var wg sync.WaitGroup
	sem := make(chan struct{}, unreadWorkers)

	for i := range friendships {
		f := &friendships[i]
		peerID := f.PeerID(userID)

		peer, err := s.userRepo.FindByID(peerID)
		if err != nil {
			return nil, err
		}

		responses[i] = models.FriendshipResponse{
			ID:         f.ID,
			Status:     f.Status,
			ActionUser: f.ActionUserID,
			Peer:       peer.ToResponse(),
			CreatedAt:  f.CreatedAt,
		}

		wg.Add(1)
		sem <- struct{}{}
		go func(idx int, pid uint) {
			defer wg.Done()
			defer func() { <-sem }()
			count, err := s.readStateSvc.UnreadCount(userID, models.ReceiverUser, pid)
			if err != nil {
				log.Printf("friendship list: unread count for user %d chat %d failed: %v", userID, pid, err)
				return
			}
			responses[idx].UnreadCount = count
		}(i, peerID)
	}
	wg.Wait()

	return responses, nil
}

// ListPending returns requests awaiting the caller's response plus requests
// the caller sent that are still open.
func (s *FriendshipService) ListPending(userID uint) (incoming, outgoing []models.FriendshipResponse, err error) {
	friendships, err := s.friendshipRepo.ListForUser(userID, models.FriendshipPending)
	if err != nil {
		return nil, nil, err
	}
	for i := range friendships {
		f := &friendships[i]
		peer, err := s.userRepo.FindByID(f.PeerID(userID))
		if err != nil {
			return nil, nil, err
		}
		resp := models.FriendshipResponse{
			ID:         f.ID,
			Status:     f.Status,
			ActionUser: f.ActionUserID,
			Peer:       peer.ToResponse(),
			CreatedAt:  f.CreatedAt,
		}
		if f.ActionUserID == userID {
			outgoing = append(outgoing, resp)
		} else {
			incoming = append(incoming, resp)
		}
	}
	return incoming, outgoing, nil
}

// AreFriends reports whether the pair has an accepted edge.
func (s *FriendshipService) AreFriends(userA, userB uint) (bool, error) {
	friendship, err := s.friendshipRepo.FindBetween(userA, userB)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return friendship.Status == models.FriendshipAccepted, nil
}

package service

import (
	"errors"
	"time"

	"github.com/driftchat/DriftChat-backend/internal/cache"
	"github.com/driftchat/DriftChat-backend/internal/models"
	"github.com/driftchat/DriftChat-backend/internal/repository"
	"github.com/driftchat/DriftChat-backend/internal/validation"
)

var ErrInvalidStatus = errors.New("status must be online, away, busy, or offline")

type UserService struct {
	userRepo      repository.UserRepositoryInterface
	presenceCache *cache.PresenceCache
}

func NewUserService(userRepo repository.UserRepositoryInterface, presenceCache *cache.PresenceCache) *UserService {
	return &UserService{userRepo: userRepo, presenceCache: presenceCache}
}

func (s *UserService) GetProfile(userID uint) (*models.UserResponse, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return nil, err
	}
	resp := user.ToResponse()
	return &resp, nil
}

type UpdateProfileInput struct {
	Nickname *string `json:"nickname"`
	Bio      *string `json:"bio"`
}

func (s *UserService) UpdateProfile(userID uint, input UpdateProfileInput) (*models.UserResponse, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return nil, err
	}
	if input.Nickname != nil {
		user.Nickname = validation.TrimAndLimit(*input.Nickname, 64)
	}
	if input.Bio != nil {
		user.Bio = validation.TrimAndLimit(*input.Bio, 500)
	}
	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}
	resp := user.ToResponse()
	return &resp, nil
}

// SetStatus records the chosen status in Postgres and mirrors it in the
// presence cache. lastSeenAt is only stamped on the transition to offline.
func (s *UserService) SetStatus(userID uint, status models.UserStatus) (*time.Time, error) {
	if !models.ValidUserStatus(status) {
		return nil, ErrInvalidStatus
	}
	var lastSeenAt *time.Time
	if status == models.StatusOffline {
		now := time.Now().UTC()
		lastSeenAt = &now
	}
	if err := s.userRepo.UpdateStatus(userID, status, lastSeenAt); err != nil {
		return nil, err
	}
	_ = s.presenceCache.SetStatus(userID, status)
	return lastSeenAt, nil
}

// SearchUsers matches usernames and nicknames by substring for the friend
// picker. The requesting user is excluded from results.
func (s *UserService) SearchUsers(requestingUserID uint, query string, limit int) ([]models.UserResponse, error) {
	query = validation.TrimAndLimit(query, 64)
	if query == "" {
		return []models.UserResponse{}, nil
	}
	if limit <= 0 || limit > 50 {
		limit = 20
	}
	users, err := s.userRepo.SearchUsers(query, limit)
	if err != nil {
		return nil, err
	}
	results := make([]models.UserResponse, 0, len(users))
	for i := range users {
		if users[i].ID == requestingUserID {
			continue
		}
		results = append(results, users[i].ToResponse())
	}
	return results, nil
}

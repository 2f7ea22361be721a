package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/driftchat/DriftChat-backend/internal/models"
	"github.com/driftchat/DriftChat-backend/internal/repository"
	"github.com/driftchat/DriftChat-backend/internal/storage"
	"github.com/google/uuid"
)

var ErrStorageNotConfigured = errors.New("object storage not configured")

// AvatarService normalizes uploaded avatars (decode, downscale, flatten,
// re-encode as JPEG) before storing them, so clients always fetch a bounded
// image regardless of what was uploaded.
type AvatarService struct {
	userRepo repository.UserRepositoryInterface
	s3       *storage.S3Storage
}

func NewAvatarService(userRepo repository.UserRepositoryInterface, s3 *storage.S3Storage) *AvatarService {
	return &AvatarService{userRepo: userRepo, s3: s3}
}

func (s *AvatarService) UploadAvatar(ctx context.Context, userID uint, r io.Reader) (*models.User, error) {
	if s.s3 == nil {
		return nil, ErrStorageNotConfigured
	}

	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return nil, err
	}

	processed, contentType, size, err := storage.ProcessAvatarImage(r, storage.DefaultAvatarOptions())
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("avatars/%d/%s.jpg", userID, uuid.NewString())
	if err := s.s3.PutObject(ctx, key, bytes.NewReader(processed), size, contentType); err != nil {
		return nil, fmt.Errorf("store avatar: %w", err)
	}

	oldKey := avatarKeyFromURL(user.AvatarURL, s.s3)
	user.AvatarURL = s.s3.PublicURL(key)
	if err := s.userRepo.Update(user); err != nil {
		_ = s.s3.DeleteObject(ctx, key)
		return nil, err
	}

	if oldKey != "" {
		_ = s.s3.DeleteObject(ctx, oldKey)
	}
	return user, nil
}

func (s *AvatarService) DeleteAvatar(ctx context.Context, userID uint) (*models.User, error) {
	if s.s3 == nil {
		return nil, ErrStorageNotConfigured
	}

	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return nil, err
	}

	oldKey := avatarKeyFromURL(user.AvatarURL, s.s3)
	user.AvatarURL = ""
	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}
	if oldKey != "" {
		_ = s.s3.DeleteObject(ctx, oldKey)
	}
	return user, nil
}

// avatarKeyFromURL recovers the object key from a stored public URL so stale
// objects can be removed. Unrecognized URLs (external avatars) yield "".
func avatarKeyFromURL(avatarURL string, s3 *storage.S3Storage) string {
	if avatarURL == "" {
		return ""
	}
	return s3.KeyFromPublicURL(avatarURL)
}

package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strings"
	"time"

	"github.com/driftchat/DriftChat-backend/internal/models"
	"github.com/driftchat/DriftChat-backend/internal/repository"
	"github.com/google/uuid"
)

const maxUploadBytes = 50 * 1024 * 1024

var (
	ErrUploadTooLarge = errors.New("upload exceeds maximum size")
	ErrEmptyUpload    = errors.New("upload is empty")
)

// ObjectStore is the slice of the S3 layer the media service needs.
type ObjectStore interface {
	PutObject(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	DeleteObject(ctx context.Context, key string) error
	PublicURL(key string) string
}

type MediaService struct {
	mediaRepo repository.MediaRepositoryInterface
	store     ObjectStore
}

func NewMediaService(mediaRepo repository.MediaRepositoryInterface, store ObjectStore) *MediaService {
	return &MediaService{mediaRepo: mediaRepo, store: store}
}

type UploadInput struct {
	FileName string
	MimeType string
	Size     int64
	Body     io.Reader
}

// Upload streams the file to object storage under a uuid key and records the
// attachment row. The stored row is what messages reference by id.
func (s *MediaService) Upload(ctx context.Context, uploaderID uint, in UploadInput) (*models.MediaAttachment, error) {
	if in.Size <= 0 {
		return nil, ErrEmptyUpload
	}
	if in.Size > maxUploadBytes {
		return nil, ErrUploadTooLarge
	}

	ext := strings.ToLower(filepath.Ext(in.FileName))
	contentType := in.MimeType
	if contentType == "" {
		contentType = mime.TypeByExtension(ext)
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	key := fmt.Sprintf("media/%d/%s/%s%s",
		uploaderID, time.Now().UTC().Format("2006/01"), uuid.NewString(), ext)

	if err := s.store.PutObject(ctx, key, in.Body, in.Size, contentType); err != nil {
		return nil, fmt.Errorf("store upload: %w", err)
	}

	media := &models.MediaAttachment{
		UploaderID: uploaderID,
		FileName:   in.FileName,
		FilePath:   s.store.PublicURL(key),
		MimeType:   contentType,
		SizeBytes:  in.Size,
		Metadata:   models.JSONMap{"object_key": key},
	}
	if err := s.mediaRepo.Create(media); err != nil {
		// Orphaned objects are cheaper than dangling rows; best-effort cleanup.
		_ = s.store.DeleteObject(ctx, key)
		return nil, err
	}
	return media, nil
}

func (s *MediaService) Get(id uint) (*models.MediaAttachment, error) {
	media, err := s.mediaRepo.FindByID(id)
	if err != nil {
		return nil, ErrMediaNotFound
	}
	return media, nil
}

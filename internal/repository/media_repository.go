package repository

import (
	"github.com/driftchat/DriftChat-backend/internal/models"
	"gorm.io/gorm"
)

type MediaRepository struct {
	db *gorm.DB
}

func NewMediaRepository(db *gorm.DB) *MediaRepository {
	return &MediaRepository{db: db}
}

func (r *MediaRepository) Create(media *models.MediaAttachment) error {
	return r.db.Create(media).Error
}

func (r *MediaRepository) FindByID(id uint) (*models.MediaAttachment, error) {
	var media models.MediaAttachment
	if err := r.db.First(&media, id).Error; err != nil {
		return nil, err
	}
	return &media, nil
}

// FindByIDs batch-loads attachments for history enrichment.
func (r *MediaRepository) FindByIDs(ids []uint) (map[uint]models.MediaAttachment, error) {
	result := make(map[uint]models.MediaAttachment, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	var rows []models.MediaAttachment
	if err := r.db.Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, m := range rows {
		result[m.ID] = m
	}
	return result, nil
}

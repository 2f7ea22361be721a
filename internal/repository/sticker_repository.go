package repository

import (
	"github.com/driftchat/DriftChat-backend/internal/models"
	"gorm.io/gorm"
)

type StickerRepository struct {
	db *gorm.DB
}

func NewStickerRepository(db *gorm.DB) *StickerRepository {
	return &StickerRepository{db: db}
}

func (r *StickerRepository) FindByID(id uint) (*models.Sticker, error) {
	var sticker models.Sticker
	if err := r.db.Preload("Media").First(&sticker, id).Error; err != nil {
		return nil, err
	}
	return &sticker, nil
}

func (r *StickerRepository) FindByIDs(ids []uint) (map[uint]models.Sticker, error) {
	result := make(map[uint]models.Sticker, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	var rows []models.Sticker
	if err := r.db.Preload("Media").Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, s := range rows {
		result[s.ID] = s
	}
	return result, nil
}

func (r *StickerRepository) List(pack string, limit int) ([]models.Sticker, error) {
	var stickers []models.Sticker
	q := r.db.Preload("Media")
	if pack != "" {
		q = q.Where("pack = ?", pack)
	}
	err := q.Order("id ASC").Limit(limit).Find(&stickers).Error
	return stickers, err
}

package handlers

import (
	"github.com/driftchat/DriftChat-backend/internal/httpx"
	"github.com/driftchat/DriftChat-backend/internal/repository"
	"github.com/gofiber/fiber/v2"
)

type StickerHandler struct {
	stickerRepo repository.StickerRepositoryInterface
}

func NewStickerHandler(stickerRepo repository.StickerRepositoryInterface) *StickerHandler {
	return &StickerHandler{stickerRepo: stickerRepo}
}

// List returns the sticker catalog, optionally filtered by pack.
func (h *StickerHandler) List(c *fiber.Ctx) error {
	pack := c.Query("pack")
	limit := c.QueryInt("limit", 100)
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	stickers, err := h.stickerRepo.List(pack, limit)
	if err != nil {
		return httpx.Internal(c, "list_stickers_failed")
	}

	return c.JSON(fiber.Map{
		"stickers": stickers,
	})
}

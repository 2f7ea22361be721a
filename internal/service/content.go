package service

import (
	"github.com/driftchat/DriftChat-backend/internal/models"
)

// MessageContent is the closed set of submittable message bodies. Handlers
// construct the variant matching the inbound frame; Submit dispatches over it
// exhaustively, so a new content kind is a compile-time-visible change here
// rather than a string comparison scattered across handlers.
type MessageContent interface {
	contentType() models.ContentType
}

// TextContent is an inline text body.
type TextContent struct {
	Body string
}

func (TextContent) contentType() models.ContentType { return models.ContentText }

// MediaContent references an uploaded attachment by id. Kind narrows which
// media class the client claims; it must match one of image/video/audio/file.
type MediaContent struct {
	Kind    models.ContentType
	MediaID uint
}

func (c MediaContent) contentType() models.ContentType { return c.Kind }

// StickerContent references a sticker catalog entry by id.
type StickerContent struct {
	StickerID uint
}

func (StickerContent) contentType() models.ContentType { return models.ContentSticker }

// SystemContent is a server-generated notice; it has no sender.
type SystemContent struct {
	Body string
}

func (SystemContent) contentType() models.ContentType { return models.ContentSystemNotice }

// ValidMediaKind reports whether t is one of the media content classes.
func ValidMediaKind(t models.ContentType) bool {
	switch t {
	case models.ContentImage, models.ContentVideo, models.ContentAudio, models.ContentFile:
		return true
	}
	return false
}

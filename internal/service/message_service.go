package service

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/driftchat/DriftChat-backend/internal/cache"
	"github.com/driftchat/DriftChat-backend/internal/models"
	"github.com/driftchat/DriftChat-backend/internal/repository"
	"github.com/driftchat/DriftChat-backend/internal/validation"
)

var (
	ErrInvalidReceiverType = errors.New("receiver type must be \"user\" or \"group\"")
	ErrEmptyContent        = errors.New("message content is empty")
	ErrMessageTooLong      = errors.New("message content exceeds maximum length")
	ErrInvalidMediaKind    = errors.New("content type must be image, video, audio, or file")
	ErrMediaNotFound       = errors.New("referenced media not found")
	ErrStickerNotFound     = errors.New("referenced sticker not found")
	ErrDuplicateClientID   = errors.New("client message id was already used")
)

// MessageService persists inbound messages and resolves their recipient
// sets. Delivery to live connections is the registry's job; this service only
// decides who should receive what.
type MessageService struct {
	messageRepo  repository.MessageRepositoryInterface
	groupRepo    repository.GroupRepositoryInterface
	mediaRepo    repository.MediaRepositoryInterface
	stickerRepo  repository.StickerRepositoryInterface
	historyCache *cache.HistoryCache
}

func NewMessageService(
	messageRepo repository.MessageRepositoryInterface,
	groupRepo repository.GroupRepositoryInterface,
	mediaRepo repository.MediaRepositoryInterface,
	stickerRepo repository.StickerRepositoryInterface,
	historyCache *cache.HistoryCache,
) *MessageService {
	return &MessageService{
		messageRepo:  messageRepo,
		groupRepo:    groupRepo,
		mediaRepo:    mediaRepo,
		stickerRepo:  stickerRepo,
		historyCache: historyCache,
	}
}

type SubmitInput struct {
	ReceiverType     models.ReceiverType
	ReceiverID       uint
	Content          MessageContent
	ReplyToMessageID *uint
	ClientMessageID  *string
}

// Submit validates, persists, and addresses one message. Validation failures
// never persist anything. The returned recipient set is resolved fresh at
// send time: for direct chats it is {receiver, sender} so the sender's own
// session sees the echo; for groups it is every currently-active member.
func (s *MessageService) Submit(senderID uint, in SubmitInput) (*models.MessageResponse, []uint, error) {
	if !models.ValidReceiverType(in.ReceiverType) {
		return nil, nil, ErrInvalidReceiverType
	}
	if in.ReceiverID == 0 {
		return nil, nil, errors.New("receiver id is required")
	}

	message := &models.Message{
		SenderID:         &senderID,
		ReceiverType:     in.ReceiverType,
		ReceiverID:       in.ReceiverID,
		ReplyToMessageID: in.ReplyToMessageID,
		ClientMessageID:  in.ClientMessageID,
	}

	var resolved interface{}

	switch c := in.Content.(type) {
	case TextContent:
		body := validation.TrimAndLimit(c.Body, 0)
		if body == "" {
			return nil, nil, ErrEmptyContent
		}
		if len(body) > validation.MaxMessageLength() {
			return nil, nil, ErrMessageTooLong
		}
		message.ContentType = models.ContentText
		message.Content = body
		resolved = body

	case MediaContent:
		if !ValidMediaKind(c.Kind) {
			return nil, nil, ErrInvalidMediaKind
		}
		media, err := s.mediaRepo.FindByID(c.MediaID)
		if err != nil {
			return nil, nil, ErrMediaNotFound
		}
		message.ContentType = c.Kind
		message.Content = strconv.FormatUint(uint64(media.ID), 10)
		message.Metadata = models.JSONMap{
			"original_filename": media.FileName,
			"mime_type":         media.MimeType,
			"size_bytes":        media.SizeBytes,
		}
		resolved = mediaRef(c.Kind, *media)

	case StickerContent:
		sticker, err := s.stickerRepo.FindByID(c.StickerID)
		if err != nil {
			return nil, nil, ErrStickerNotFound
		}
		message.ContentType = models.ContentSticker
		message.Content = strconv.FormatUint(uint64(sticker.ID), 10)
		resolved = stickerRef(*sticker)

	case SystemContent:
		message.SenderID = nil
		message.ContentType = models.ContentSystemNotice
		message.Content = c.Body
		resolved = c.Body

	default:
		return nil, nil, fmt.Errorf("unsupported content variant %T", in.Content)
	}

	if err := s.messageRepo.Create(message); err != nil {
		// The client id carries a unique index per sender. A create that
		// collides with it is a resubmission; report it as such instead of a
		// storage failure so the client can stop retrying.
		if in.ClientMessageID != nil {
			if _, dupErr := s.messageRepo.FindByClientID(*in.ClientMessageID, senderID); dupErr == nil {
				return nil, nil, ErrDuplicateClientID
			}
		}
		return nil, nil, err
	}

	recipients, err := s.resolveRecipients(senderID, in.ReceiverType, in.ReceiverID)
	if err != nil {
		return nil, nil, err
	}

	_ = s.historyCache.Invalidate(in.ReceiverType, senderID, in.ReceiverID)

	// The created message lacks the preloaded sender; fetch the stored row so
	// the response carries the sender profile and the storage timestamps.
	stored, err := s.messageRepo.FindByID(message.ID)
	if err != nil {
		stored = message
	}
	resp := toResponse(stored, resolved)
	return &resp, recipients, nil
}

func (s *MessageService) resolveRecipients(senderID uint, receiverType models.ReceiverType, receiverID uint) ([]uint, error) {
	if receiverType == models.ReceiverUser {
		if receiverID == senderID {
			return []uint{senderID}, nil
		}
		return []uint{receiverID, senderID}, nil
	}
	return s.groupRepo.ActiveMemberIDs(receiverID)
}

// GetHistory serves one cursor page, oldest first. Only the newest page
// (beforeID == 0) is cacheable; cursor pages go straight to storage.
func (s *MessageService) GetHistory(requestingUserID uint, chatType models.ReceiverType, chatID uint, beforeID uint, limit int) ([]models.MessageResponse, error) {
	if !models.ValidReceiverType(chatType) {
		return nil, ErrInvalidReceiverType
	}
	limit = validation.ClampPageLimit(limit)

	if beforeID == 0 {
		if page, ok := s.historyCache.GetPage(chatType, requestingUserID, chatID); ok {
			return page, nil
		}
	}

	var (
		messages []models.Message
		err      error
	)
	if chatType == models.ReceiverUser {
		messages, err = s.messageRepo.FindDirectPage(requestingUserID, chatID, beforeID, limit)
	} else {
		messages, err = s.messageRepo.FindGroupPage(chatID, beforeID, limit)
	}
	if err != nil {
		return nil, err
	}

	page, err := s.enrich(messages)
	if err != nil {
		return nil, err
	}

	if beforeID == 0 {
		_ = s.historyCache.SetPage(chatType, requestingUserID, chatID, page)
	}
	return page, nil
}

// enrich resolves media and sticker references for a whole page with two
// batched lookups instead of one query per message.
func (s *MessageService) enrich(messages []models.Message) ([]models.MessageResponse, error) {
	var mediaIDs, stickerIDs []uint
	for i := range messages {
		id, ok := contentRefID(&messages[i])
		if !ok {
			continue
		}
		if messages[i].ContentType == models.ContentSticker {
			stickerIDs = append(stickerIDs, id)
		} else {
			mediaIDs = append(mediaIDs, id)
		}
	}

	mediaByID, err := s.mediaRepo.FindByIDs(mediaIDs)
	if err != nil {
		return nil, err
	}
	stickersByID, err := s.stickerRepo.FindByIDs(stickerIDs)
	if err != nil {
		return nil, err
	}

	page := make([]models.MessageResponse, 0, len(messages))
	for i := range messages {
		m := &messages[i]
		var resolved interface{} = m.Content
		if id, ok := contentRefID(m); ok {
			if m.ContentType == models.ContentSticker {
				if sticker, found := stickersByID[id]; found {
					resolved = stickerRef(sticker)
				} else {
					resolved = map[string]interface{}{"type": m.ContentType, "error": "sticker not found", "id": id}
				}
			} else {
				if media, found := mediaByID[id]; found {
					resolved = mediaRef(m.ContentType, media)
				} else {
					resolved = map[string]interface{}{"type": m.ContentType, "error": "media not found", "id": id}
				}
			}
		}
		page = append(page, toResponse(m, resolved))
	}
	return page, nil
}

// contentRefID extracts the media/sticker reference for non-text messages.
func contentRefID(m *models.Message) (uint, bool) {
	switch m.ContentType {
	case models.ContentImage, models.ContentVideo, models.ContentAudio, models.ContentFile, models.ContentSticker:
		id, err := strconv.ParseUint(m.Content, 10, 32)
		if err != nil {
			return 0, false
		}
		return uint(id), true
	}
	return 0, false
}

func mediaRef(kind models.ContentType, media models.MediaAttachment) models.MediaContentRef {
	return models.MediaContentRef{
		Type:      kind,
		ID:        media.ID,
		FileName:  media.FileName,
		URL:       media.FilePath,
		MimeType:  media.MimeType,
		SizeBytes: media.SizeBytes,
		Metadata:  media.Metadata,
	}
}

func stickerRef(sticker models.Sticker) models.StickerContentRef {
	return models.StickerContentRef{
		Type:      models.ContentSticker,
		StickerID: sticker.ID,
		MediaID:   sticker.MediaID,
		URL:       sticker.Media.FilePath,
		MimeType:  sticker.Media.MimeType,
	}
}

func toResponse(m *models.Message, resolved interface{}) models.MessageResponse {
	resp := models.MessageResponse{
		ID:               m.ID,
		SenderID:         m.SenderID,
		ReceiverType:     m.ReceiverType,
		ReceiverID:       m.ReceiverID,
		ContentType:      m.ContentType,
		Content:          resolved,
		Metadata:         m.Metadata,
		ReplyToMessageID: m.ReplyToMessageID,
		ClientMessageID:  m.ClientMessageID,
		CreatedAt:        m.CreatedAt,
	}
	if m.Sender != nil {
		resp.SenderUsername = m.Sender.Username
		resp.SenderNickname = m.Sender.Nickname
	} else if m.SenderID == nil {
		resp.SenderUsername = "System"
	}
	return resp
}

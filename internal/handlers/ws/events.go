package ws

import (
	"time"

	"github.com/driftchat/DriftChat-backend/internal/models"
)

// Inbound frame types.
const (
	MsgIdentify     = "IDENTIFY"
	MsgSendText     = "SEND_TEXT_MESSAGE"
	MsgSendMedia    = "SEND_MEDIA_MESSAGE"
	MsgSendSticker  = "SEND_STICKER_MESSAGE"
	MsgFetchHistory = "FETCH_HISTORY"
	MsgMarkAsRead   = "MARK_AS_READ"
	MsgPing         = "PING"
)

// Outbound event types.
const (
	EventIdentifiedSuccess  = "IDENTIFIED_SUCCESS"
	EventIdentifiedError    = "IDENTIFIED_ERROR"
	EventAuthTimeout        = "AUTH_TIMEOUT"
	EventSessionTerminated  = "SESSION_TERMINATED"
	EventNewMessage         = "NEW_MESSAGE"
	EventMessageHistory     = "MESSAGE_HISTORY"
	EventUserStatusUpdate   = "USER_STATUS_UPDATE"
	EventMessagesMarkedRead = "MESSAGES_MARKED_READ"
	EventMessageReadReceipt = "MESSAGE_READ_RECEIPT"
	EventError              = "ERROR"
	EventPong               = "PONG"
)

type IdentifiedSuccessPayload struct {
	UserID    uint   `json:"userId"`
	Username  string `json:"username"`
	Nickname  string `json:"nickname"`
	AvatarURL string `json:"avatarUrl"`
	Message   string `json:"message"`
}

type IdentifiedErrorPayload struct {
	Message string `json:"message"`
}

type AuthTimeoutPayload struct {
	Message string `json:"message"`
}

type SessionTerminatedPayload struct {
	Message string `json:"message"`
}

// UserStatusUpdatePayload carries LastSeenAt only for the offline transition;
// for any other status it stays null on the wire.
type UserStatusUpdatePayload struct {
	UserID     uint              `json:"userId"`
	Status     models.UserStatus `json:"status"`
	LastSeenAt *time.Time        `json:"lastSeenAt,omitempty"`
}

type MessageHistoryPayload struct {
	ChatType models.ReceiverType      `json:"chatType"`
	ChatID   uint                     `json:"chatId"`
	Messages []models.MessageResponse `json:"messages"`
}

type MessagesMarkedReadPayload struct {
	ChatType      models.ReceiverType `json:"chatType"`
	ChatID        uint                `json:"chatId"`
	ReaderUserID  uint                `json:"readerUserId"`
	LastMessageID uint                `json:"lastMessageId"`
}

// MessageReadReceiptPayload is addressed to the peer of a direct chat, so
// ChatID is the reader's id: the chat the receipt belongs to from the peer's
// point of view.
type MessageReadReceiptPayload struct {
	ChatType      models.ReceiverType `json:"chatType"`
	ChatID        uint                `json:"chatId"`
	ReaderUserID  uint                `json:"readerUserId"`
	LastMessageID uint                `json:"lastMessageId"`
}

type ErrorPayload struct {
	Message        string `json:"message"`
	OriginalAction string `json:"originalAction,omitempty"`
}

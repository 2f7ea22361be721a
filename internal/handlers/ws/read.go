package ws

import (
	"github.com/driftchat/DriftChat-backend/internal/models"
)

// FrameMarkAsRead advances the caller's read pointer for one chat.
type FrameMarkAsRead struct {
	ChatType      models.ReceiverType `json:"chatType"`
	ChatID        uint                `json:"chatId"`
	LastMessageID uint                `json:"lastMessageId"`
}

func (msg *FrameMarkAsRead) GetType() string {
	return MsgMarkAsRead
}

// Process upserts the pointer, acknowledges the caller, and for direct chats
// sends the peer a read receipt. The receipt's chatId is the reader's id: on
// the peer's side, that is the chat this receipt belongs to. Groups get no
// receipt fanout, and a stale mark that did not move the pointer gets no
// receipt either: relaying it would show the peer a regressed pointer.
func (msg *FrameMarkAsRead) Process(ctx *Context) error {
	advanced, err := ctx.ReadStateService.MarkRead(ctx.UserID, msg.ChatType, msg.ChatID, msg.LastMessageID)
	if err != nil {
		return err
	}

	if err := ctx.Client.Send(EventMessagesMarkedRead, MessagesMarkedReadPayload{
		ChatType:      msg.ChatType,
		ChatID:        msg.ChatID,
		ReaderUserID:  ctx.UserID,
		LastMessageID: msg.LastMessageID,
	}); err != nil {
		return err
	}

	if advanced && msg.ChatType == models.ReceiverUser && msg.ChatID != ctx.UserID {
		ctx.Hub.Deliver(msg.ChatID, EventMessageReadReceipt, MessageReadReceiptPayload{
			ChatType:      models.ReceiverUser,
			ChatID:        ctx.UserID,
			ReaderUserID:  ctx.UserID,
			LastMessageID: msg.LastMessageID,
		})
	}
	return nil
}

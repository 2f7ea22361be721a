package ws

import (
	"github.com/driftchat/DriftChat-backend/internal/models"
	"github.com/driftchat/DriftChat-backend/internal/service"
)

// FrameFetchHistory requests one page of chat history. BeforeID zero means
// "newest page".
type FrameFetchHistory struct {
	ChatType models.ReceiverType `json:"chatType"`
	ChatID   uint                `json:"chatId"`
	BeforeID uint                `json:"beforeId"`
	Limit    int                 `json:"limit"`
}

func (msg *FrameFetchHistory) GetType() string {
	return MsgFetchHistory
}

// Process authorizes group access here, at the protocol boundary; the
// paginator itself assumes the caller has already been vetted. The page goes
// only to the requesting connection.
func (msg *FrameFetchHistory) Process(ctx *Context) error {
	if msg.ChatType == models.ReceiverGroup {
		if _, err := ctx.GroupService.GetMembers(msg.ChatID, ctx.UserID); err != nil {
			return service.ErrNotGroupMember
		}
	}

	messages, err := ctx.MessageService.GetHistory(ctx.UserID, msg.ChatType, msg.ChatID, msg.BeforeID, msg.Limit)
	if err != nil {
		return err
	}

	return ctx.Client.Send(EventMessageHistory, MessageHistoryPayload{
		ChatType: msg.ChatType,
		ChatID:   msg.ChatID,
		Messages: messages,
	})
}

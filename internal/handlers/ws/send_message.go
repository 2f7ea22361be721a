package ws

import (
	"github.com/driftchat/DriftChat-backend/internal/models"
	"github.com/driftchat/DriftChat-backend/internal/service"
)

// FrameSendText submits an inline text message.
type FrameSendText struct {
	ReceiverType     models.ReceiverType `json:"receiverType"`
	ReceiverID       uint                `json:"receiverId"`
	Content          string              `json:"content"`
	ReplyToMessageID *uint               `json:"replyToMessageId"`
	ClientMessageID  *string             `json:"clientMessageId"`
}

func (msg *FrameSendText) GetType() string {
	return MsgSendText
}

func (msg *FrameSendText) Process(ctx *Context) error {
	return submitAndFanOut(ctx, service.SubmitInput{
		ReceiverType:     msg.ReceiverType,
		ReceiverID:       msg.ReceiverID,
		Content:          service.TextContent{Body: msg.Content},
		ReplyToMessageID: msg.ReplyToMessageID,
		ClientMessageID:  msg.ClientMessageID,
	})
}

// FrameSendMedia submits a message referencing an uploaded attachment.
type FrameSendMedia struct {
	ReceiverType     models.ReceiverType `json:"receiverType"`
	ReceiverID       uint                `json:"receiverId"`
	MediaID          uint                `json:"mediaId"`
	ContentType      models.ContentType  `json:"contentType"`
	ReplyToMessageID *uint               `json:"replyToMessageId"`
	ClientMessageID  *string             `json:"clientMessageId"`
}

func (msg *FrameSendMedia) GetType() string {
	return MsgSendMedia
}

func (msg *FrameSendMedia) Process(ctx *Context) error {
	return submitAndFanOut(ctx, service.SubmitInput{
		ReceiverType:     msg.ReceiverType,
		ReceiverID:       msg.ReceiverID,
		Content:          service.MediaContent{Kind: msg.ContentType, MediaID: msg.MediaID},
		ReplyToMessageID: msg.ReplyToMessageID,
		ClientMessageID:  msg.ClientMessageID,
	})
}

// FrameSendSticker submits a message referencing a sticker catalog entry.
type FrameSendSticker struct {
	ReceiverType     models.ReceiverType `json:"receiverType"`
	ReceiverID       uint                `json:"receiverId"`
	StickerID        uint                `json:"stickerId"`
	ReplyToMessageID *uint               `json:"replyToMessageId"`
	ClientMessageID  *string             `json:"clientMessageId"`
}

func (msg *FrameSendSticker) GetType() string {
	return MsgSendSticker
}

func (msg *FrameSendSticker) Process(ctx *Context) error {
	return submitAndFanOut(ctx, service.SubmitInput{
		ReceiverType:     msg.ReceiverType,
		ReceiverID:       msg.ReceiverID,
		Content:          service.StickerContent{StickerID: msg.StickerID},
		ReplyToMessageID: msg.ReplyToMessageID,
		ClientMessageID:  msg.ClientMessageID,
	})
}

// submitAndFanOut runs the persist-then-deliver pipeline shared by all send
// frames. The recipient set already includes the sender for direct chats, so
// the sender's session sees its own message echoed back with the storage id.
func submitAndFanOut(ctx *Context, in service.SubmitInput) error {
	response, recipients, err := ctx.MessageService.Submit(ctx.UserID, in)
	if err != nil {
		return err
	}
	ctx.Hub.FanOut(recipients, EventNewMessage, response)
	return nil
}

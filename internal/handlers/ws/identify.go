package ws

import (
	"log"

	"github.com/driftchat/DriftChat-backend/internal/models"
	"github.com/gofiber/websocket/v2"
)

// FrameIdentify carries the bearer token that authenticates a fresh
// connection. It is the only frame accepted before authentication.
type FrameIdentify struct {
	Token string `json:"token"`
}

func (msg *FrameIdentify) GetType() string {
	return MsgIdentify
}

// Process verifies the token, binds the session, and announces the user
// online. Verification failures are terminal: the client is told why, then
// the socket closes with a policy code.
func (msg *FrameIdentify) Process(ctx *Context) error {
	user, err := ctx.AuthService.VerifyToken(msg.Token)
	if err != nil {
		_ = ctx.Client.Send(EventIdentifiedError, IdentifiedErrorPayload{
			Message: "Authentication failed: invalid or expired token.",
		})
		ctx.Client.CloseWithCode(websocket.ClosePolicyViolation, "authentication failed")
		return nil
	}

	if !ctx.Client.Authenticate(user.ID) {
		// Repeat IDENTIFY on an already-bound connection; nothing to do.
		return nil
	}
	ctx.UserID = user.ID

	ctx.Hub.Bind(user.ID, ctx.Client)

	if err := ctx.Client.Send(EventIdentifiedSuccess, IdentifiedSuccessPayload{
		UserID:    user.ID,
		Username:  user.Username,
		Nickname:  user.Nickname,
		AvatarURL: user.AvatarURL,
		Message:   "Authentication successful.",
	}); err != nil {
		log.Printf("identify: success ack to user %d failed: %v", user.ID, err)
	}

	ctx.Presence.Announce(user.ID, models.StatusOnline)
	return nil
}

package handlers

import (
	"log"
	"time"

	"github.com/driftchat/DriftChat-backend/internal/handlers/ws"
	"github.com/driftchat/DriftChat-backend/internal/models"
	"github.com/driftchat/DriftChat-backend/internal/service"
	"github.com/gofiber/websocket/v2"
)

// authHandshakeWindow is how long a fresh connection has to present a valid
// IDENTIFY frame before it is closed.
const authHandshakeWindow = 10 * time.Second

// WebSocketHandler is the connection gateway: it owns the socket lifecycle,
// drives the auth handshake, and routes authenticated frames into the ws
// package handlers.
type WebSocketHandler struct {
	hub              *ws.Hub
	presence         *ws.PresenceBroadcaster
	authService      *service.AuthService
	messageService   *service.MessageService
	readStateService *service.ReadStateService
	groupService     *service.GroupService
}

func NewWebSocketHandler(
	hub *ws.Hub,
	presence *ws.PresenceBroadcaster,
	authService *service.AuthService,
	messageService *service.MessageService,
	readStateService *service.ReadStateService,
	groupService *service.GroupService,
) *WebSocketHandler {
	return &WebSocketHandler{
		hub:              hub,
		presence:         presence,
		authService:      authService,
		messageService:   messageService,
		readStateService: readStateService,
		groupService:     groupService,
	}
}

// GetHub returns the hub instance (useful for sending events from REST handlers)
func (h *WebSocketHandler) GetHub() *ws.Hub {
	return h.hub
}

// gatewayConn is the slice of *websocket.Conn the read loop needs. Tests
// substitute a scripted fake.
type gatewayConn interface {
	ws.Conn
	ReadMessage() (int, []byte, error)
}

func (h *WebSocketHandler) HandleWebSocket(c *websocket.Conn) {
	h.serve(c)
}

func (h *WebSocketHandler) serve(c gatewayConn) {
	client := ws.NewClient(c)

	client.StartAuthTimer(authHandshakeWindow, func() {
		_ = client.Send(ws.EventAuthTimeout, ws.AuthTimeoutPayload{
			Message: "Authentication timed out.",
		})
		client.CloseWithCode(websocket.ClosePolicyViolation, "authentication timeout")
	})

	ctx := &ws.Context{
		Client:           client,
		Hub:              h.hub,
		AuthService:      h.authService,
		MessageService:   h.messageService,
		ReadStateService: h.readStateService,
		GroupService:     h.groupService,
		Presence:         h.presence,
	}

	defer h.teardown(client)

	for {
		_, frame, err := c.ReadMessage()
		if err != nil {
			if userID, ok := client.UserID(); ok {
				log.Printf("gateway: read loop for user %d ended: %v", userID, err)
			}
			return
		}

		msg, err := ws.Deserialize(frame)
		if err != nil {
			_ = client.SendError("Invalid message format.", "")
			continue
		}

		// Pre-auth gate: only IDENTIFY is accepted, and a rejected frame
		// neither extends nor cancels the handshake timer.
		if !client.Authenticated() && msg.GetType() != ws.MsgIdentify {
			_ = client.SendError("Not authenticated. Send IDENTIFY first.", msg.GetType())
			continue
		}

		if userID, ok := client.UserID(); ok {
			ctx.UserID = userID
		}

		if err := msg.Process(ctx); err != nil {
			log.Printf("gateway: processing %s failed: %v", msg.GetType(), err)
			_ = client.SendError(err.Error(), msg.GetType())
		}
	}
}

// teardown runs exactly once per connection. Offline side effects fire only
// when this client is still the session of record; a connection that was
// evicted by a newer login unbinds as a no-op.
func (h *WebSocketHandler) teardown(client *ws.Client) {
	client.StopAuthTimer()

	userID, authenticated := client.UserID()
	if !authenticated {
		return
	}

	if h.hub.Unbind(userID, client) {
		h.presence.Announce(userID, models.StatusOffline)
	}
}

package ws

import (
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/driftchat/DriftChat-backend/internal/service"
)

// Context provides all dependencies needed for frame processing. UserID is
// only meaningful once the connection is authenticated.
type Context struct {
	UserID           uint
	Client           *Client
	Hub              *Hub
	AuthService      *service.AuthService
	MessageService   *service.MessageService
	ReadStateService *service.ReadStateService
	GroupService     *service.GroupService
	Presence         *PresenceBroadcaster
}

// Message is implemented by every inbound frame type.
type Message interface {
	GetType() string
	Process(ctx *Context) error
}

// Envelope is the wire format wrapper for both directions.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

func CreateMessage(msgType string, registry map[string]reflect.Type) (Message, error) {
	msgTypeReflect, ok := registry[msgType]
	if !ok {
		return nil, fmt.Errorf("unknown message type: %s", msgType)
	}

	instance := reflect.New(msgTypeReflect).Interface()
	return instance.(Message), nil
}

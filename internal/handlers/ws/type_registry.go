package ws

import (
	"reflect"
)

var typeRegistry = map[string]reflect.Type{}

func init() {
	RegisterType(&FrameIdentify{})
	RegisterType(&FrameSendText{})
	RegisterType(&FrameSendMedia{})
	RegisterType(&FrameSendSticker{})
	RegisterType(&FrameFetchHistory{})
	RegisterType(&FrameMarkAsRead{})
	RegisterType(&FramePing{})
}

func RegisterType(msg Message) {
	typeRegistry[msg.GetType()] = reflect.TypeOf(msg).Elem()
}

// GetTypeRegistry returns the type registry for testing
func GetTypeRegistry() map[string]reflect.Type {
	return typeRegistry
}

package ws

// FramePing is a client keepalive; it echoes a PONG.
type FramePing struct {
}

func (msg *FramePing) GetType() string {
	return MsgPing
}

func (msg *FramePing) Process(ctx *Context) error {
	return ctx.Client.Send(EventPong, struct{}{})
}

package ws

import (
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
)

// Conn is the slice of *websocket.Conn the package writes to. Tests substitute
// an in-memory fake.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	WriteControl(messageType int, data []byte, deadline time.Time) error
	Close() error
}

const controlWriteWait = 5 * time.Second

// Client wraps one WebSocket connection with its authentication state. Writes
// from different goroutines (the read loop, fanout, presence) are serialized
// by writeMu; gofiber's conn is not safe for concurrent writes.
type Client struct {
	conn    Conn
	writeMu sync.Mutex

	stateMu       sync.Mutex
	userID        uint
	authenticated bool
	authExpired   bool
	authTimer     *time.Timer

	connectedAt time.Time
}

func NewClient(conn Conn) *Client {
	return &Client{conn: conn, connectedAt: time.Now()}
}

// Send marshals one outbound event and writes it as a text frame.
func (c *Client) Send(eventType string, payload interface{}) error {
	data, err := Serialize(eventType, payload)
	if err != nil {
		return err
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// SendError reports a failed operation without closing the connection.
func (c *Client) SendError(message, originalAction string) error {
	return c.Send(EventError, ErrorPayload{Message: message, OriginalAction: originalAction})
}

// CloseWithCode sends a close control frame and tears the connection down.
func (c *Client) CloseWithCode(code int, reason string) {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(code, reason),
		time.Now().Add(controlWriteWait))
	_ = c.conn.Close()
}

// StartAuthTimer arms the handshake deadline. onExpire runs in a timer
// goroutine if no successful IDENTIFY lands first. Expiry and authentication
// race at the deadline; expireAuth resolves the race under stateMu so exactly
// one side wins.
func (c *Client) StartAuthTimer(d time.Duration, onExpire func()) {
	c.stateMu.Lock()
	defer c.stateMu.Unlock()
	c.authTimer = time.AfterFunc(d, func() {
		if c.expireAuth() {
			onExpire()
		}
	})
}

// expireAuth marks the handshake window as missed. It reports false when a
// successful Authenticate already won, in which case the expiry callback must
// not run.
func (c *Client) expireAuth() bool {
	c.stateMu.Lock()
	defer c.stateMu.Unlock()
	if c.authenticated || c.authExpired {
		return false
	}
	c.authExpired = true
	c.authTimer = nil
	return true
}

// Authenticate marks the client as bound to userID and cancels the handshake
// timer. It returns false if the client was already authenticated, or if the
// handshake window already expired and the connection is being torn down.
func (c *Client) Authenticate(userID uint) bool {
	c.stateMu.Lock()
	defer c.stateMu.Unlock()
	if c.authenticated || c.authExpired {
		return false
	}
	c.authenticated = true
	c.userID = userID
	if c.authTimer != nil {
		c.authTimer.Stop()
		c.authTimer = nil
	}
	return true
}

// StopAuthTimer cancels the handshake timer without authenticating, for the
// disconnect path.
func (c *Client) StopAuthTimer() {
	c.stateMu.Lock()
	defer c.stateMu.Unlock()
	if c.authTimer != nil {
		c.authTimer.Stop()
		c.authTimer = nil
	}
}

// UserID returns the bound user id, valid only when authenticated.
func (c *Client) UserID() (uint, bool) {
	c.stateMu.Lock()
	defer c.stateMu.Unlock()
	return c.userID, c.authenticated
}

func (c *Client) Authenticated() bool {
	_, ok := c.UserID()
	return ok
}

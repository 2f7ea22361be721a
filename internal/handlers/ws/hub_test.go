package ws

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/websocket/v2"
)

// fakeConn records frames instead of writing to a socket.
type fakeConn struct {
	mu         sync.Mutex
	frames     [][]byte
	closed     bool
	closeFrame []byte
	failWrites bool
}

func (c *fakeConn) WriteMessage(messageType int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failWrites {
		return websocket.ErrCloseSent
	}
	buf := make([]byte, len(data))
	copy(buf, data)
	c.frames = append(c.frames, buf)
	return nil
}

func (c *fakeConn) WriteControl(messageType int, data []byte, deadline time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if messageType == websocket.CloseMessage {
		c.closeFrame = data
	}
	return nil
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeConn) events(t *testing.T) []Envelope {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Envelope, 0, len(c.frames))
	for _, frame := range c.frames {
		var env Envelope
		if err := json.Unmarshal(frame, &env); err != nil {
			t.Fatalf("frame is not a valid envelope: %v", err)
		}
		out = append(out, env)
	}
	return out
}

func (c *fakeConn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func TestHubBindEvictsPreviousSession(t *testing.T) {
	hub := NewHub()

	oldConn := &fakeConn{}
	oldClient := NewClient(oldConn)
	oldClient.Authenticate(1)
	hub.Bind(1, oldClient)

	newConn := &fakeConn{}
	newClient := NewClient(newConn)
	newClient.Authenticate(1)
	hub.Bind(1, newClient)

	if !oldConn.isClosed() {
		t.Fatal("evicted connection was not closed")
	}

	events := oldConn.events(t)
	if len(events) != 1 || events[0].Type != EventSessionTerminated {
		t.Fatalf("expected single SESSION_TERMINATED on old connection, got %+v", events)
	}

	if got, ok := hub.Lookup(1); !ok || got != newClient {
		t.Fatal("new client is not the session of record")
	}
	if hub.Count() != 1 {
		t.Fatalf("expected exactly one bound session, got %d", hub.Count())
	}
}

func TestHubUnbindIgnoresStaleConnection(t *testing.T) {
	hub := NewHub()

	staleClient := NewClient(&fakeConn{})
	hub.Bind(1, staleClient)

	liveClient := NewClient(&fakeConn{})
	hub.Bind(1, liveClient)

	// The stale connection's close handler fires after the new login; it must
	// not remove the live session or report a removal.
	if hub.Unbind(1, staleClient) {
		t.Fatal("stale unbind reported removal")
	}
	if !hub.IsOnline(1) {
		t.Fatal("live session was removed by a stale unbind")
	}

	if !hub.Unbind(1, liveClient) {
		t.Fatal("live unbind did not report removal")
	}
	if hub.IsOnline(1) {
		t.Fatal("session still bound after live unbind")
	}
}

func TestHubDeliver(t *testing.T) {
	hub := NewHub()

	conn := &fakeConn{}
	hub.Bind(7, NewClient(conn))

	if !hub.Deliver(7, EventPong, struct{}{}) {
		t.Fatal("delivery to bound user reported failure")
	}
	if hub.Deliver(8, EventPong, struct{}{}) {
		t.Fatal("delivery to unbound user reported success")
	}

	events := conn.events(t)
	if len(events) != 1 || events[0].Type != EventPong {
		t.Fatalf("unexpected events on bound connection: %+v", events)
	}
}

func TestHubDeliverReportsWriteFailure(t *testing.T) {
	hub := NewHub()
	hub.Bind(7, NewClient(&fakeConn{failWrites: true}))

	if hub.Deliver(7, EventPong, struct{}{}) {
		t.Fatal("failed write reported as delivered")
	}
}

func TestHubFanOutSkipsOffline(t *testing.T) {
	hub := NewHub()

	connA := &fakeConn{}
	connB := &fakeConn{}
	hub.Bind(1, NewClient(connA))
	hub.Bind(2, NewClient(connB))

	hub.FanOut([]uint{1, 2, 3}, EventNewMessage, map[string]uint{"id": 42})

	for _, conn := range []*fakeConn{connA, connB} {
		events := conn.events(t)
		if len(events) != 1 || events[0].Type != EventNewMessage {
			t.Fatalf("expected one NEW_MESSAGE, got %+v", events)
		}
	}
}

func TestHubOnlineUsers(t *testing.T) {
	hub := NewHub()
	hub.Bind(1, NewClient(&fakeConn{}))
	hub.Bind(2, NewClient(&fakeConn{}))

	users := hub.OnlineUsers()
	if len(users) != 2 {
		t.Fatalf("expected 2 online users, got %d", len(users))
	}
	seen := map[uint]bool{}
	for _, id := range users {
		seen[id] = true
	}
	if !seen[1] || !seen[2] {
		t.Fatalf("unexpected online set: %v", users)
	}
}

func TestClientAuthenticateOnce(t *testing.T) {
	client := NewClient(&fakeConn{})

	expired := make(chan struct{}, 1)
	client.StartAuthTimer(50*time.Millisecond, func() {
		expired <- struct{}{}
	})

	if !client.Authenticate(5) {
		t.Fatal("first authenticate failed")
	}
	if client.Authenticate(6) {
		t.Fatal("second authenticate succeeded")
	}

	userID, ok := client.UserID()
	if !ok || userID != 5 {
		t.Fatalf("bound user = %d, %v; want 5, true", userID, ok)
	}

	select {
	case <-expired:
		t.Fatal("auth timer fired after successful authentication")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestClientAuthTimerFires(t *testing.T) {
	client := NewClient(&fakeConn{})

	expired := make(chan struct{}, 1)
	client.StartAuthTimer(10*time.Millisecond, func() {
		expired <- struct{}{}
	})

	select {
	case <-expired:
	case <-time.After(time.Second):
		t.Fatal("auth timer never fired")
	}
}

func TestClientAuthenticateFailsAfterExpiry(t *testing.T) {
	client := NewClient(&fakeConn{})

	expired := make(chan struct{})
	client.StartAuthTimer(time.Microsecond, func() {
		close(expired)
	})
	<-expired

	// An IDENTIFY landing right at the deadline must lose to the expiry that
	// already condemned the connection.
	if client.Authenticate(1) {
		t.Fatal("authenticate succeeded on an expired connection")
	}
	if client.Authenticated() {
		t.Fatal("expired client reports authenticated")
	}
}

func TestClientExpiryLosesToAuthenticate(t *testing.T) {
	client := NewClient(&fakeConn{})

	client.StartAuthTimer(time.Hour, func() {
		t.Error("expiry callback ran after successful authentication")
	})
	if !client.Authenticate(1) {
		t.Fatal("authenticate failed")
	}
	// A timer goroutine that was already past Stop still resolves through
	// expireAuth and must not win.
	if client.expireAuth() {
		t.Fatal("expiry won against a completed authentication")
	}
}

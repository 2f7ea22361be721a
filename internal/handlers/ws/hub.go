package ws

import (
	"log"
	"sync"

	"github.com/gofiber/websocket/v2"
)

// Hub is the session registry: at most one live client per user id. All map
// mutations go through Bind/Unbind under the mutex, so a login racing a
// disconnect for the same user resolves to one consistent winner.
type Hub struct {
	mu      sync.RWMutex
	clients map[uint]*Client
}

func NewHub() *Hub {
	return &Hub{clients: make(map[uint]*Client)}
}

// Bind installs client as the single session for userID. An existing session
// is told it was superseded and force-closed with a policy code before the
// new mapping is visible.
func (h *Hub) Bind(userID uint, client *Client) {
	h.mu.Lock()
	old, existed := h.clients[userID]
	h.clients[userID] = client
	count := len(h.clients)
	h.mu.Unlock()

	if existed && old != client {
		_ = old.Send(EventSessionTerminated, SessionTerminatedPayload{
			Message: "You have logged in from another location.",
		})
		old.CloseWithCode(websocket.ClosePolicyViolation, "session superseded")
		log.Printf("hub: evicted previous session for user %d", userID)
	}

	log.Printf("hub: user %d bound (total: %d)", userID, count)
}

// Unbind removes the mapping only if client is still the session of record.
// It reports whether the removal happened; a stale close racing a newer
// session is a no-op and must not trigger offline side effects.
func (h *Hub) Unbind(userID uint, client *Client) bool {
	h.mu.Lock()
	current, exists := h.clients[userID]
	if !exists || current != client {
		h.mu.Unlock()
		return false
	}
	delete(h.clients, userID)
	count := len(h.clients)
	h.mu.Unlock()

	log.Printf("hub: user %d unbound (total: %d)", userID, count)
	return true
}

// Lookup returns the live client for userID, if any.
func (h *Hub) Lookup(userID uint) (*Client, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	client, ok := h.clients[userID]
	return client, ok
}

// Deliver sends one event to userID's session. It reports true iff a live
// connection existed and the write succeeded; offline users are silently
// skipped.
func (h *Hub) Deliver(userID uint, eventType string, payload interface{}) bool {
	client, ok := h.Lookup(userID)
	if !ok {
		return false
	}
	if err := client.Send(eventType, payload); err != nil {
		log.Printf("hub: delivery of %s to user %d failed: %v", eventType, userID, err)
		return false
	}
	return true
}

// FanOut delivers one event to every recipient, fire-and-forget. The payload
// is serialized once.
func (h *Hub) FanOut(userIDs []uint, eventType string, payload interface{}) {
	data, err := Serialize(eventType, payload)
	if err != nil {
		log.Printf("hub: serializing %s for fanout failed: %v", eventType, err)
		return
	}

	for _, userID := range userIDs {
		client, ok := h.Lookup(userID)
		if !ok {
			continue
		}
		client.writeMu.Lock()
		err := client.conn.WriteMessage(websocket.TextMessage, data)
		client.writeMu.Unlock()
		if err != nil {
			log.Printf("hub: fanout of %s to user %d failed: %v", eventType, userID, err)
		}
	}
}

// IsOnline checks if a user currently has a bound session.
func (h *Hub) IsOnline(userID uint) bool {
	_, ok := h.Lookup(userID)
	return ok
}

// OnlineUsers returns the currently bound user ids.
func (h *Hub) OnlineUsers() []uint {
	h.mu.RLock()
	defer h.mu.RUnlock()
	users := make([]uint, 0, len(h.clients))
	for userID := range h.clients {
		users = append(users, userID)
	}
	return users
}

// Count returns the number of bound sessions.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

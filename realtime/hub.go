package realtime

import (
	"log"
	"sync"

	"github.com/google/uuid"
)

// Event is one push frame sent to a connected client.
type Event struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

// Event types pushed by the duel service.
const (
	EventChallengeSent     = "challengeSent"
	EventChallengeReceived = "challengeReceived"
	EventChallengeResponse = "challengeResponse"
	EventDuelRequests      = "duelRequests"
	EventDuelCompleted     = "duelCompleted"
	EventDuelHistory       = "duelHistory"
	EventNewPost           = "newPost"
	EventPostDeleted       = "postDeleted"
)

// Conn is the subset of *websocket.Conn the hub needs; tests substitute
// a recording fake.
type Conn interface {
	WriteJSON(v any) error
	Close() error
}

// Client is one websocket connection for one user. A user may hold
// several (multiple tabs); each gets its own ordered send queue.
type Client struct {
	ID     uuid.UUID
	UserID string

	conn Conn
	send chan Event
	once sync.Once
	done chan struct{}
}

// sendBuffer bounds the per-client queue. A client that falls this far
// behind starts losing events rather than blocking the sender.
const sendBuffer = 64

// Hub fans events out to connected users. Delivery is fire-and-forget
// and ordered per recipient: each client has a single writer goroutine
// draining its queue, so events for one user never reorder, and a slow
// or dead client never blocks duel resolution.
type Hub struct {
	mu      sync.Mutex
	clients map[string]map[uuid.UUID]*Client
}

func NewHub() *Hub {
	return &Hub{clients: make(map[string]map[uuid.UUID]*Client)}
}

// Register attaches a connection for userID and starts its writer.
func (h *Hub) Register(userID string, conn Conn) *Client {
	c := &Client{
		ID:     uuid.New(),
		UserID: userID,
		conn:   conn,
		send:   make(chan Event, sendBuffer),
		done:   make(chan struct{}),
	}

	h.mu.Lock()
	if h.clients[userID] == nil {
		h.clients[userID] = make(map[uuid.UUID]*Client)
	}
	h.clients[userID][c.ID] = c
	h.mu.Unlock()

	go c.writeLoop()
	return c
}

// Unregister detaches the client and stops its writer.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if conns, ok := h.clients[c.UserID]; ok {
		delete(conns, c.ID)
		if len(conns) == 0 {
			delete(h.clients, c.UserID)
		}
	}
	h.mu.Unlock()
	c.close()
}

// Push queues an event for every connection of one user. Never blocks:
// full queues drop the event.
func (h *Hub) Push(userID string, ev Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, c := range h.clients[userID] {
		c.enqueue(ev)
	}
}

// Broadcast queues an event for every connected client.
func (h *Hub) Broadcast(ev Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, conns := range h.clients {
		for _, c := range conns {
			c.enqueue(ev)
		}
	}
}

// Online reports whether the user has at least one live connection.
func (h *Hub) Online(userID string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients[userID]) > 0
}

func (c *Client) enqueue(ev Event) {
	select {
	case c.send <- ev:
	default:
		log.Printf("[HUB] dropping %s event for slow client %s (user %s)", ev.Type, c.ID, c.UserID)
	}
}

func (c *Client) writeLoop() {
	for {
		select {
		case ev := <-c.send:
			if err := c.conn.WriteJSON(ev); err != nil {
				log.Printf("[HUB] write failed for user %s: %v", c.UserID, err)
				c.close()
				return
			}
		case <-c.done:
			return
		}
	}
}

func (c *Client) close() {
	c.once.Do(func() {
		close(c.done)
		_ = c.conn.Close()
	})
}

// Wait reports when the client's writer has stopped, for callers that
// need to observe teardown.
func (c *Client) Wait() <-chan struct{} { return c.done }

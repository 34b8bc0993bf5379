package notifications

import (
	"context"
	"errors"
	"log"
	"sync"

	"riptide/internal/observability"

	"github.com/gofiber/websocket/v2"
)

const (
	// Max connections per user.
	maxConnsPerUser = 8
	// Max total connections.
	maxTotalConns = 10000
)

// Hub tracks every live feed-stream subscriber and fans events out to all
// of them. Subscribers are read-only consumers; there is no per-user
// routing, the feed is one shared stream.
type Hub struct {
	mu         sync.RWMutex
	conns      map[*Client]struct{}
	perUser    map[uint]int
	totalConns int
	shutdown   chan struct{}
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		conns:    make(map[*Client]struct{}),
		perUser:  make(map[uint]int),
		shutdown: make(chan struct{}),
	}
}

// Register adds a connection to the hub. userID is 0 for anonymous
// subscribers, who share one per-user bucket.
func (h *Hub) Register(userID uint, conn *websocket.Conn) (*Client, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.totalConns >= maxTotalConns {
		return nil, errors.New("server connection limit reached")
	}
	if userID != 0 && h.perUser[userID] >= maxConnsPerUser {
		return nil, errors.New("user connection limit reached")
	}

	client := newClient(h, conn, userID)
	h.conns[client] = struct{}{}
	h.perUser[userID]++
	h.totalConns++
	observability.WebSocketConnectionsTotal.Inc()

	return client, nil
}

// UnregisterClient removes a connection from the hub.
func (h *Hub) UnregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.conns[client]; !ok {
		return
	}
	delete(h.conns, client)
	h.totalConns--
	observability.WebSocketConnectionsTotal.Dec()

	h.perUser[client.UserID]--
	if h.perUser[client.UserID] <= 0 {
		delete(h.perUser, client.UserID)
	}
}

// BroadcastAll delivers one event payload to every subscriber.
func (h *Hub) BroadcastAll(payload string) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	data := []byte(payload)
	for c := range h.conns {
		c.TrySend(data)
	}
}

// ConnectionCount returns the number of live subscribers.
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.totalConns
}

// StartWiring connects the Notifier's Redis subscription to this hub so
// events published by any server instance reach this instance's clients.
func (h *Hub) StartWiring(ctx context.Context, n *Notifier) error {
	return n.StartSubscriber(ctx, func(payload string) {
		h.BroadcastAll(payload)
	})
}

// Shutdown closes every websocket connection gracefully.
func (h *Hub) Shutdown(_ context.Context) error {
	close(h.shutdown)

	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.conns {
		if client.Conn == nil {
			continue
		}
		if err := client.Conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "Server shutting down")); err != nil {
			log.Printf("write close message for user %d: %v", client.UserID, err)
		}
		if err := client.Conn.Close(); err != nil {
			log.Printf("close websocket for user %d: %v", client.UserID, err)
		}
	}
	h.conns = make(map[*Client]struct{})
	h.perUser = make(map[uint]int)
	h.totalConns = 0

	return nil
}

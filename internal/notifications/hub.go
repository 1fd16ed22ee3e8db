package notifications

import (
	"context"
	"errors"
	"sync"

	"firenet/internal/observability"

	"github.com/gofiber/websocket/v2"
)

const maxTotalConns = 10000

// ErrHubClosed is returned by Register after Shutdown.
var ErrHubClosed = errors.New("hub is shut down")

// Hub fans post events out to every connected feed client.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	closed  bool
	log     *observability.WSLogger
}

// NewHub creates an empty feed hub.
func NewHub() *Hub {
	return &Hub{
		clients: make(map[*Client]struct{}),
		log:     observability.NewWSLogger("feed"),
	}
}

// Name returns a human-readable identifier for this hub.
func (h *Hub) Name() string { return "feed hub" }

// Register adds a connection for the given handle.
func (h *Hub) Register(handle string, conn *websocket.Conn) (*Client, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil, ErrHubClosed
	}
	if len(h.clients) >= maxTotalConns {
		return nil, errors.New("server connection limit reached")
	}

	client := NewClient(h, conn, handle)
	h.clients[client] = struct{}{}
	observability.WebSocketConnections.Inc()
	h.log.LogConnect(context.Background(), handle)
	return client, nil
}

// UnregisterClient removes the client and closes its send channel.
func (h *Hub) UnregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)
	close(client.Send)
	observability.WebSocketConnections.Dec()
	h.log.LogDisconnect(context.Background(), client.Handle, "unregistered")
}

// Count returns the number of connected clients.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// BroadcastAll sends message to every connected websocket client.
func (h *Hub) BroadcastAll(message []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		c.TrySend(message)
	}
}

// Publish delivers the event to the local clients only. It is used when no
// Redis fan-out is configured.
func (h *Hub) Publish(_ context.Context, ev Event) error {
	data, err := ev.Encode()
	if err != nil {
		return err
	}
	h.BroadcastAll(data)
	observability.EventsPublished.WithLabelValues("hub", "ok").Inc()
	return nil
}

// StartWiring forwards every event published to the feed channel, by any
// instance, to this hub's clients.
func (h *Hub) StartWiring(ctx context.Context, n *Notifier) error {
	h.log.LogLifecycle(ctx, "wiring")
	return n.StartFeedSubscriber(ctx, func(payload string) {
		h.BroadcastAll([]byte(payload))
	})
}

// Shutdown closes every client's send channel, which makes its write pump
// send a close frame and drop the connection.
func (h *Hub) Shutdown(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}
	h.closed = true

	for client := range h.clients {
		close(client.Send)
		observability.WebSocketConnections.Dec()
	}
	h.clients = make(map[*Client]struct{})
	h.log.LogLifecycle(ctx, "shutdown")
	return nil
}

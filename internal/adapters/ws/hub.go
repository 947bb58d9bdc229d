// Package ws streams tuning updates to connected game clients over
// WebSocket. Delivery is best effort: a slow client drops messages rather
// than stalling the pipeline.
package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	"github.com/okian/pelota/internal/domain/types"
	"github.com/okian/pelota/pkg/logger"
	"github.com/okian/pelota/pkg/metrics"
)

// sendBuffer is the per-client outbound queue. Once full, further updates
// for that client are dropped.
const sendBuffer = 16

// Client represents a single WebSocket connection in the hub. A non-empty
// PlayerID narrows the stream to that player's updates.
type Client struct {
	ID       string
	PlayerID string
	Conn     *websocket.Conn
	Send     chan []byte
}

// NewClient wraps a connection with a fresh subscription identity.
func NewClient(conn *websocket.Conn, playerID string) *Client {
	return &Client{
		ID:       uuid.NewString(),
		PlayerID: playerID,
		Conn:     conn,
		Send:     make(chan []byte, sendBuffer),
	}
}

// WritePump reads from the Send channel and writes to the WebSocket
// connection until the context ends or the channel closes.
func (c *Client) WritePump(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-c.Send:
			if !ok {
				return
			}
			if err := c.Conn.Write(ctx, websocket.MessageText, msg); err != nil {
				return
			}
		}
	}
}

// Hub manages WebSocket subscriptions to the tuning update stream.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client

	logger logger.Logger
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]*Client),
		logger:  logger.Get().Named("ws"),
	}
}

// Register adds a client to the hub.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c.ID] = c
	count := len(h.clients)
	h.mu.Unlock()

	metrics.UpdateWSClients(count)
}

// Unregister removes a client and closes its Send channel.
func (h *Hub) Unregister(clientID string) {
	h.mu.Lock()
	c, ok := h.clients[clientID]
	if ok {
		close(c.Send)
		delete(h.clients, clientID)
	}
	count := len(h.clients)
	h.mu.Unlock()

	if ok {
		metrics.UpdateWSClients(count)
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast fans a tuning update out to every subscriber interested in the
// player. Non-blocking: a full client queue drops the message.
func (h *Hub) Broadcast(update types.TuningUpdate) {
	data, err := json.Marshal(update)
	if err != nil {
		h.logger.Error(context.Background(), "marshaling tuning update", logger.Error(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, c := range h.clients {
		if c.PlayerID != "" && c.PlayerID != update.PlayerID {
			continue
		}
		select {
		case c.Send <- data:
			metrics.RecordWSMessage()
		default:
			metrics.RecordWSDrop()
		}
	}
}

// Subscribe upgrades the request to a WebSocket and streams tuning updates
// until the client disconnects. An optional ?player= query narrows the
// stream to one player.
func (h *Hub) Subscribe(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		h.logger.Warn(r.Context(), "websocket accept failed", logger.Error(err))
		return
	}

	client := NewClient(conn, r.URL.Query().Get("player"))
	h.Register(client)
	defer h.Unregister(client.ID)

	// The stream is write-only; CloseRead discards client frames and
	// cancels the context when the peer goes away.
	ctx := conn.CloseRead(r.Context())

	client.WritePump(ctx)
	_ = conn.Close(websocket.StatusNormalClosure, "")
}

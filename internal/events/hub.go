package events

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"project-tracker-api/internal/domain"
	"project-tracker-api/internal/metrics"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// Client is one websocket subscriber
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	userID uuid.UUID
}

// Hub fans realtime events out to every connected client
type Hub struct {
	clients    map[*Client]bool
	mu         sync.RWMutex
	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
	done       chan struct{}

	clientBuffer int
	logger       *zap.Logger
	metrics      *metrics.Metrics
}

// HubConfig sizes the hub queues
type HubConfig struct {
	ClientBuffer    int
	BroadcastBuffer int
}

// NewHub creates a hub. Call Run before serving clients.
func NewHub(cfg HubConfig, logger *zap.Logger, m *metrics.Metrics) *Hub {
	if cfg.ClientBuffer <= 0 {
		cfg.ClientBuffer = 256
	}
	if cfg.BroadcastBuffer <= 0 {
		cfg.BroadcastBuffer = 256
	}
	return &Hub{
		clients:      make(map[*Client]bool),
		register:     make(chan *Client),
		unregister:   make(chan *Client),
		broadcast:    make(chan []byte, cfg.BroadcastBuffer),
		done:         make(chan struct{}),
		clientBuffer: cfg.ClientBuffer,
		logger:       logger,
		metrics:      m,
	}
}

// Run owns the client set until ctx is cancelled
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for client := range h.clients {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			h.metrics.SetWSConnections(0)
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			count := len(h.clients)
			h.mu.Unlock()
			h.metrics.SetWSConnections(count)
			h.logger.Info("Realtime client connected",
				zap.String("user_id", client.userID.String()),
				zap.Int("total_clients", count))

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			count := len(h.clients)
			h.mu.Unlock()
			h.metrics.SetWSConnections(count)
			h.logger.Info("Realtime client disconnected",
				zap.String("user_id", client.userID.String()),
				zap.Int("total_clients", count))

		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// slow consumer; it reconnects and refetches
					delete(h.clients, client)
					close(client.send)
					h.metrics.IncrementEventsDropped()
					h.logger.Warn("Dropping slow realtime client",
						zap.String("user_id", client.userID.String()))
				}
			}
			count := len(h.clients)
			h.mu.Unlock()
			h.metrics.SetWSConnections(count)
		}
	}
}

// Broadcast queues a raw frame for every client. It never blocks.
func (h *Hub) Broadcast(frame []byte) {
	select {
	case h.broadcast <- frame:
	default:
		h.metrics.IncrementEventsDropped()
		h.logger.Warn("Broadcast channel full, event dropped")
	}
}

// Publish encodes msg and broadcasts it to local clients
func (h *Hub) Publish(_ context.Context, msg Message) error {
	frame, err := msg.Encode()
	if err != nil {
		return err
	}
	h.Broadcast(frame)
	recordPublished(h.metrics, msg)
	return nil
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Serve registers an upgraded connection and starts its pumps
func (h *Hub) Serve(conn *websocket.Conn, userID uuid.UUID) {
	client := &Client{
		hub:    h,
		conn:   conn,
		send:   make(chan []byte, h.clientBuffer),
		userID: userID,
	}
	select {
	case h.register <- client:
	case <-h.done:
		_ = conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

// readPump only services control frames; clients never send events
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Warn("Realtime client read error",
					zap.String("user_id", c.userID.String()),
					zap.Error(err))
			}
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func recordPublished(m *metrics.Metrics, msg Message) {
	kind, action, err := ParseType(msg.Type)
	if err != nil {
		kind, action = domain.Kind("UNKNOWN"), Action("UNKNOWN")
	}
	m.RecordEventPublished(string(kind), string(action))
}

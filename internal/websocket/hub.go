package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"eduboard/internal/infrastructure"
	"eduboard/pkg/contracts/events"
)

const broadcastBuffer = 64

// Hub maintains the set of active clients and broadcasts messages to them.
// The client set is owned by the run goroutine.
type Hub struct {
	clients map[*Client]bool

	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client

	// mu guards the counters read by Stats and ClientCount.
	mu               sync.RWMutex
	clientCount      int
	totalConnections int64
	messagesSent     int64
	messagesDropped  int64

	logger  *slog.Logger
	metrics *infrastructure.BusinessMetrics
	now     func() time.Time

	quit    chan struct{}
	done    chan struct{}
	running bool
}

// HubOption configures a Hub.
type HubOption func(*Hub)

// WithHubMetrics records connected clients on the websocket_clients instrument.
func WithHubMetrics(m *infrastructure.BusinessMetrics) HubOption {
	return func(h *Hub) { h.metrics = m }
}

// WithHubClock overrides the timestamp source of outgoing messages.
func WithHubClock(now func() time.Time) HubOption {
	return func(h *Hub) { h.now = now }
}

// NewHub creates a new Hub. Call Start before registering clients.
func NewHub(logger *slog.Logger, opts ...HubOption) *Hub {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}

	h := &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, broadcastBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		logger:     logger.With(slog.String("component", "websocket.hub")),
		now:        time.Now,
		quit:       make(chan struct{}),
		done:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Start runs the hub loop in its own goroutine. Calling it twice is a no-op.
func (h *Hub) Start() {
	h.mu.Lock()
	if h.running {
		h.mu.Unlock()
		return
	}
	h.running = true
	h.mu.Unlock()

	go h.run()
}

// Stop ends the hub loop and closes every client's send channel.
func (h *Hub) Stop() {
	h.mu.Lock()
	if !h.running {
		h.mu.Unlock()
		return
	}
	h.running = false
	h.mu.Unlock()

	close(h.quit)
	<-h.done
}

func (h *Hub) run() {
	defer close(h.done)

	for {
		select {
		case <-h.quit:
			for client := range h.clients {
				h.remove(client)
			}
			h.logger.Info("hub stopped")
			return

		case client := <-h.register:
			h.clients[client] = true
			h.addClientMetric(client, 1)
			h.setCount(len(h.clients), true)

			h.logger.InfoContext(client.context(), "client registered",
				slog.Int("total_clients", len(h.clients)),
				slog.String("client_id", client.id),
				slog.String("remote_addr", client.remoteAddr))

			h.greet(client)

		case client := <-h.unregister:
			if _, ok := h.clients[client]; !ok {
				continue
			}
			h.remove(client)

			h.logger.InfoContext(client.context(), "client unregistered",
				slog.Int("total_clients", len(h.clients)),
				slog.String("client_id", client.id),
				slog.Duration("connection_duration", time.Since(client.connectedAt)))

		case message := <-h.broadcast:
			sent, dropped := 0, 0
			for client := range h.clients {
				select {
				case client.send <- message:
					sent++
				default:
					dropped++
					h.remove(client)
					h.logger.WarnContext(client.context(), "client send buffer full, disconnecting",
						slog.String("client_id", client.id))
				}
			}

			h.mu.Lock()
			h.messagesSent += int64(sent)
			h.messagesDropped += int64(dropped)
			h.mu.Unlock()

			h.logger.Debug("broadcast delivered",
				slog.Int("sent", sent),
				slog.Int("dropped", dropped),
				slog.Int("message_size", len(message)))
		}
	}
}

// remove drops client from the set and closes its send channel. Only the
// run goroutine calls it.
func (h *Hub) remove(client *Client) {
	delete(h.clients, client)
	close(client.send)
	h.addClientMetric(client, -1)
	h.setCount(len(h.clients), false)
}

func (h *Hub) setCount(n int, connected bool) {
	h.mu.Lock()
	h.clientCount = n
	if connected {
		h.totalConnections++
	}
	h.mu.Unlock()
}

func (h *Hub) addClientMetric(client *Client, delta int64) {
	if h.metrics == nil {
		return
	}
	h.metrics.WebSocketClients.Add(client.context(), delta)
}

// greet sends the connection message to a freshly registered client.
func (h *Hub) greet(client *Client) {
	data, err := h.encode(client.context(), events.MessageTypeConnection, map[string]string{
		"status":    "connected",
		"message":   "Connected to eduboard",
		"client_id": client.id,
	})
	if err != nil {
		return
	}

	select {
	case client.send <- data:
	default:
		h.logger.WarnContext(client.context(), "connection message dropped, client buffer full",
			slog.String("client_id", client.id))
	}
}

func (h *Hub) encode(ctx context.Context, msgType events.MessageType, data interface{}) ([]byte, error) {
	msg := events.WebSocketMessage{
		Type:      msgType,
		Data:      data,
		Timestamp: h.now().UTC(),
		TraceID:   infrastructure.GetTraceID(ctx),
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to marshal message",
			slog.String("error", err.Error()),
			slog.String("message_type", string(msgType)))
		return nil, err
	}
	return payload, nil
}

// Broadcast sends a typed message to every connected client. The trace id of
// ctx travels with the message. It never blocks once the hub has stopped.
func (h *Hub) Broadcast(ctx context.Context, msgType events.MessageType, data interface{}) {
	payload, err := h.encode(ctx, msgType, data)
	if err != nil {
		return
	}

	select {
	case h.broadcast <- payload:
	case <-h.quit:
	case <-ctx.Done():
		h.logger.WarnContext(ctx, "broadcast abandoned",
			slog.String("message_type", string(msgType)),
			slog.String("error", ctx.Err().Error()))
	}
}

// Register adds a client to the hub.
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.quit:
	}
}

// Unregister removes a client from the hub.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.quit:
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.clientCount
}

// HubStats is a snapshot of the hub counters.
type HubStats struct {
	ActiveClients    int   `json:"active_clients"`
	TotalConnections int64 `json:"total_connections"`
	MessagesSent     int64 `json:"messages_sent"`
	MessagesDropped  int64 `json:"messages_dropped"`
}

// Stats returns the current hub counters.
func (h *Hub) Stats() HubStats {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return HubStats{
		ActiveClients:    h.clientCount,
		TotalConnections: h.totalConnections,
		MessagesSent:     h.messagesSent,
		MessagesDropped:  h.messagesDropped,
	}
}

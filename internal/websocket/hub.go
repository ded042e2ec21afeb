// Package websocket implements the realtime hub that pushes conversion
// status and progress updates to connected browsers.
package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"taxwizz/internal/infrastructure"
	"taxwizz/pkg/contracts/domain"
	"taxwizz/pkg/contracts/events"
)

// Hub maintains the set of active clients and broadcasts messages to them.
type Hub struct {
	// Registered clients
	clients map[*Client]bool

	// Outbound messages for all clients
	broadcast chan []byte

	// Register requests from the clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	mu     sync.RWMutex
	logger *slog.Logger

	// Connection gauge, optional
	metrics *infrastructure.BusinessMetrics

	totalConnections int64
	messagesSent     int64

	quit    chan struct{}
	running bool
}

// NewHub creates a new Hub instance. metrics may be nil.
func NewHub(logger *slog.Logger, metrics *infrastructure.BusinessMetrics) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "websocket.hub"))

	return &Hub{
		broadcast:  make(chan []byte, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
		logger:     logger,
		metrics:    metrics,
		quit:       make(chan struct{}),
	}
}

// Start starts the hub's run loop.
func (h *Hub) Start() {
	h.mu.Lock()
	if h.running {
		h.mu.Unlock()
		return
	}
	h.running = true
	h.mu.Unlock()

	go h.Run()
}

// Run processes register, unregister, and broadcast events until Stop.
func (h *Hub) Run() {
	for {
		select {
		case <-h.quit:
			h.logger.Info("hub shutting down")
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			count := len(h.clients)
			h.totalConnections++
			h.mu.Unlock()

			ctx := clientContext(client)
			h.logger.InfoContext(ctx, "client registered",
				slog.Int("total_clients", count),
				slog.String("client_id", client.id),
				slog.String("remote_addr", client.remoteAddr))

			if h.metrics != nil {
				h.metrics.WebSocketClients.Add(ctx, 1)
			}

			// Greet the new client so the frontend knows the socket is live
			envelope := events.Envelope{
				Type:      events.MessageTypeConnection,
				Timestamp: time.Now(),
				TraceID:   client.traceID,
				Payload: events.ConnectionPayload{
					Status:   "connected",
					Message:  "Connected to TaxWizz",
					ClientID: client.id,
				},
			}
			if data, err := json.Marshal(envelope); err == nil {
				select {
				case client.send <- data:
				default:
					h.logger.WarnContext(ctx, "connection message dropped, client buffer full",
						slog.String("client_id", client.id))
				}
			}

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				count := len(h.clients)
				h.mu.Unlock()

				ctx := clientContext(client)
				h.logger.InfoContext(ctx, "client unregistered",
					slog.Int("total_clients", count),
					slog.String("client_id", client.id),
					slog.Duration("connection_duration", time.Since(client.connectedAt)))

				if h.metrics != nil {
					h.metrics.WebSocketClients.Add(ctx, -1)
				}
			} else {
				h.mu.Unlock()
			}

		case message := <-h.broadcast:
			h.mu.RLock()
			clients := make([]*Client, 0, len(h.clients))
			for client := range h.clients {
				clients = append(clients, client)
			}
			h.mu.RUnlock()

			for _, client := range clients {
				select {
				case client.send <- message:
					h.messagesSent++
				default:
					// Slow consumer, disconnect it rather than block the hub
					h.mu.Lock()
					close(client.send)
					delete(h.clients, client)
					h.mu.Unlock()

					ctx := clientContext(client)
					h.logger.WarnContext(ctx, "client send buffer full, disconnecting",
						slog.String("client_id", client.id))
					if h.metrics != nil {
						h.metrics.WebSocketClients.Add(ctx, -1)
					}
				}
			}
		}
	}
}

// BroadcastStatus pushes a status-feed entry to all clients.
func (h *Hub) BroadcastStatus(username string, update domain.StatusUpdate) {
	h.BroadcastEnvelope(events.Envelope{
		Type: events.MessageTypeStatus,
		Payload: events.StatusPayload{
			Username: username,
			State:    string(update.State),
			Message:  update.Message,
			Progress: update.Progress,
		},
	})
}

// BroadcastProgress pushes a conversion progress update to all clients.
func (h *Hub) BroadcastProgress(step string, progress int, message string) {
	h.BroadcastEnvelope(events.Envelope{
		Type: events.MessageTypeProgress,
		Payload: events.ProgressPayload{
			Step:     step,
			Progress: progress,
			Message:  message,
		},
	})
}

// BroadcastConversionComplete announces a finished conversion.
func (h *Hub) BroadcastConversionComplete(payload events.ConversionCompletePayload) {
	h.BroadcastEnvelope(events.Envelope{
		Type:    events.MessageTypeConversionComplete,
		Payload: payload,
	})
}

// BroadcastError pushes an error message to all clients.
func (h *Hub) BroadcastError(code, message string) {
	h.BroadcastEnvelope(events.Envelope{
		Type:    events.MessageTypeError,
		Payload: events.ErrorPayload{Code: code, Message: message},
	})
}

// BroadcastEnvelope serializes and queues an envelope for all clients,
// stamping the timestamp when missing. Dropped silently when the hub's
// broadcast queue is full.
func (h *Hub) BroadcastEnvelope(envelope events.Envelope) {
	if envelope.Timestamp.IsZero() {
		envelope.Timestamp = time.Now()
	}

	data, err := json.Marshal(envelope)
	if err != nil {
		h.logger.Error("error marshaling envelope",
			slog.String("error", err.Error()),
			slog.String("message_type", string(envelope.Type)))
		return
	}

	select {
	case h.broadcast <- data:
	default:
		h.logger.Warn("broadcast queue full, message dropped",
			slog.String("message_type", string(envelope.Type)))
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Register adds a client to the hub.
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Stop gracefully stops the hub and closes all client connections.
func (h *Hub) Stop() {
	h.mu.Lock()
	if !h.running {
		h.mu.Unlock()
		return
	}
	h.running = false
	h.mu.Unlock()

	close(h.quit)

	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		close(client.send)
		delete(h.clients, client)
	}
}

// Metrics reports the hub's counters for the health endpoints.
func (h *Hub) Metrics() map[string]interface{} {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return map[string]interface{}{
		"active_clients":    len(h.clients),
		"total_connections": h.totalConnections,
		"messages_sent":     h.messagesSent,
	}
}

func clientContext(client *Client) context.Context {
	ctx := context.Background()
	if client.traceID != "" {
		ctx = infrastructure.WithTraceID(ctx, client.traceID)
	}
	return ctx
}

package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"stockpulse/internal/infrastructure"
	api "stockpulse/pkg/contracts/api/v1"
)

// Message types pushed to dashboard clients.
const (
	TypeConnection = "connection"
	TypeDataUpdate = "data_update"

	SubtypeDataset = "dataset"
	ActionRefresh  = "refresh"
)

// broadcastBuffer bounds the messages queued while the hub loop is busy.
const broadcastBuffer = 64

// Hub maintains the set of active clients and broadcasts messages to them.
type Hub struct {
	clients map[*Client]bool

	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client

	mu      sync.RWMutex
	logger  *slog.Logger
	running bool
	stopped bool

	totalConnections int64
	messagesSent     int64
	dropped          int64

	quit chan struct{}
	done chan struct{}
}

// NewHub creates a hub. Call Start before registering clients.
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, broadcastBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		logger:     infrastructure.WithComponent(logger, "websocket.hub"),
		quit:       make(chan struct{}),
		done:       make(chan struct{}),
	}
}

// Start runs the hub loop in its own goroutine. Repeated calls are no-ops
// and a stopped hub stays stopped.
func (h *Hub) Start() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.running || h.stopped {
		return
	}
	h.running = true
	go h.run()
}

func (h *Hub) isRunning() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.running
}

func (h *Hub) run() {
	defer close(h.done)
	for {
		select {
		case <-h.quit:
			h.mu.Lock()
			for client := range h.clients {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			h.logger.Info("hub shutting down")
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.totalConnections++
			count := len(h.clients)
			h.mu.Unlock()

			h.logger.InfoContext(client.context(), "client registered",
				slog.String("client_id", client.id),
				slog.String("remote_addr", client.remoteAddr),
				slog.Int("total_clients", count))
			h.sendTo(client, connectionMessage(client))

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			count := len(h.clients)
			h.mu.Unlock()

			h.logger.InfoContext(client.context(), "client unregistered",
				slog.String("client_id", client.id),
				slog.Int("total_clients", count),
				slog.Duration("connection_duration", time.Since(client.connectedAt)))

		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.send <- message:
					h.messagesSent++
				default:
					// Slow client; drop it rather than stall everyone else.
					delete(h.clients, client)
					close(client.send)
					h.dropped++
					h.logger.Warn("dropped slow client", slog.String("client_id", client.id))
				}
			}
			h.mu.Unlock()
		}
	}
}

func (h *Hub) sendTo(client *Client, message []byte) {
	if message == nil {
		return
	}
	select {
	case client.send <- message:
	default:
		h.logger.Warn("client buffer full", slog.String("client_id", client.id))
	}
}

// Register adds a client to the hub. Clients of a hub that is not running
// are closed straight away.
func (h *Hub) Register(client *Client) {
	if !h.isRunning() {
		close(client.send)
		return
	}
	select {
	case h.register <- client:
	case <-h.quit:
		close(client.send)
	}
}

func (h *Hub) unregisterClient(client *Client) {
	if !h.isRunning() {
		return
	}
	select {
	case h.unregister <- client:
	case <-h.quit:
	}
}

// BroadcastJSON marshals message and queues it for every client. Messages
// are dropped when the queue is full or the hub has stopped.
func (h *Hub) BroadcastJSON(ctx context.Context, message map[string]interface{}) {
	data, err := json.Marshal(message)
	if err != nil {
		h.logger.ErrorContext(ctx, "marshal broadcast message",
			slog.String("error", err.Error()),
			slog.Any("type", message["type"]))
		return
	}
	select {
	case <-h.quit:
		return
	default:
	}
	select {
	case h.broadcast <- data:
	default:
		h.logger.WarnContext(ctx, "broadcast queue full, message dropped", slog.Any("type", message["type"]))
	}
}

// BroadcastUpdate sends a data update message to all connected clients.
func (h *Hub) BroadcastUpdate(ctx context.Context, subtype, action string, data interface{}) {
	message := map[string]interface{}{
		"type":      TypeDataUpdate,
		"subtype":   subtype,
		"action":    action,
		"data":      data,
		"timestamp": time.Now().Format(time.RFC3339),
	}
	if traceID := infrastructure.GetTraceID(ctx); traceID != "" {
		message["trace_id"] = traceID
	}
	h.BroadcastJSON(ctx, message)
}

// NotifyDatasetLoaded tells clients to refresh after a dataset (re)load.
func (h *Hub) NotifyDatasetLoaded(ctx context.Context, result api.ReloadResult) {
	h.BroadcastUpdate(ctx, SubtypeDataset, ActionRefresh, result)
	h.logger.DebugContext(ctx, "dataset refresh broadcast",
		slog.String("source", result.Source),
		slog.Int("records", result.RecordCount),
		slog.Int("clients", h.ClientCount()))
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Stats reports connection counters.
func (h *Hub) Stats() map[string]interface{} {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return map[string]interface{}{
		"active_connections": len(h.clients),
		"total_connections":  h.totalConnections,
		"messages_sent":      h.messagesSent,
		"dropped_clients":    h.dropped,
	}
}

// Stop closes every client and waits for the hub loop to exit.
func (h *Hub) Stop() {
	h.mu.Lock()
	if !h.running {
		h.mu.Unlock()
		return
	}
	h.running = false
	h.stopped = true
	h.mu.Unlock()

	close(h.quit)
	<-h.done
}

func connectionMessage(client *Client) []byte {
	message := map[string]interface{}{
		"type": TypeConnection,
		"data": map[string]interface{}{
			"status":    "connected",
			"client_id": client.id,
		},
		"timestamp": time.Now().Format(time.RFC3339),
	}
	if client.traceID != "" {
		message["trace_id"] = client.traceID
	}
	data, err := json.Marshal(message)
	if err != nil {
		return nil
	}
	return data
}

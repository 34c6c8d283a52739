package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"discharge-assistant-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const clusterChannel = "chat_session_events"

// Frame is the envelope for every server to client websocket message.
type Frame struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

const (
	FrameMessage      = "message"
	FrameError        = "error"
	FrameSessionReset = "session_reset"
)

// Hub tracks open chat sockets per session id. With redis configured,
// session notifications fan out to sockets held by other instances.
type Hub struct {
	// id tags cluster messages so an instance ignores its own publishes.
	id      string
	clients map[string][]*Client
	mu      sync.RWMutex

	rdb    *redis.Client
	logger logger.ILogger
}

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		id:      uuid.NewString(),
		clients: make(map[string][]*Client),
		rdb:     rdb,
		logger:  log,
	}
}

// Run relays cluster notifications until ctx is cancelled. Without redis it
// returns immediately.
func (h *Hub) Run(ctx context.Context) error {
	if h.rdb == nil {
		return nil
	}

	pubsub := h.rdb.Subscribe(ctx, clusterChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			h.relay([]byte(msg.Payload))
		}
	}
}

type clusterMessage struct {
	Origin    string          `json:"origin"`
	SessionId string          `json:"session_id"`
	Message   json.RawMessage `json:"message"`
}

// relay delivers a cluster message published by another instance. Local
// sockets already got our own publishes from SendToSession.
func (h *Hub) relay(raw []byte) {
	var payload clusterMessage
	if err := json.Unmarshal(raw, &payload); err != nil {
		h.logger.Warn("Hub", "Dropping malformed cluster message", map[string]interface{}{"error": err.Error()})
		return
	}
	if payload.Origin == h.id {
		return
	}
	h.deliverLocal(payload.SessionId, payload.Message)
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	h.clients[c.SessionId] = append(h.clients[c.SessionId], c)
	h.mu.Unlock()
	h.logger.Info("Hub", "Client registered", map[string]interface{}{"session_id": c.SessionId})
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients := h.clients[c.SessionId]
	for i, existing := range clients {
		if existing == c {
			h.clients[c.SessionId] = append(clients[:i], clients[i+1:]...)
			close(c.Send)
			break
		}
	}
	if len(h.clients[c.SessionId]) == 0 {
		delete(h.clients, c.SessionId)
	}
}

// SendToSession delivers frame to every socket bound to sessionId.
func (h *Hub) SendToSession(ctx context.Context, sessionId string, frame Frame) {
	data, err := json.Marshal(frame)
	if err != nil {
		h.logger.Error("Hub", "Failed to encode frame", map[string]interface{}{"error": err.Error()})
		return
	}

	h.deliverLocal(sessionId, data)

	if h.rdb != nil {
		payload, _ := json.Marshal(clusterMessage{Origin: h.id, SessionId: sessionId, Message: data})
		if err := h.rdb.Publish(ctx, clusterChannel, payload).Err(); err != nil {
			h.logger.Warn("Hub", "Cluster publish failed", map[string]interface{}{"error": err.Error()})
		}
	}
}

func (h *Hub) deliverLocal(sessionId string, data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, client := range h.clients[sessionId] {
		select {
		case client.Send <- data:
		default:
			h.logger.Warn("Hub", "Client Send buffer full, dropping message", map[string]interface{}{"session_id": sessionId})
		}
	}
}

func (h *Hub) Connections(sessionId string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[sessionId])
}

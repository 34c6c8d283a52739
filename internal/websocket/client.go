package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"discharge-assistant-be/internal/dto"
	"discharge-assistant-be/internal/pkg/serverutils"

	"github.com/gofiber/websocket/v2"
)

const (
	writeWait      = 10 * time.Second
	maxMessageSize = 16 * 1024
	sendBuffer     = 16
	inboundBuffer  = 8
)

var (
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// MessageHandler answers one chat frame for a session.
type MessageHandler func(ctx context.Context, req *dto.ChatMessageRequest) (*dto.ChatMessageResponse, error)

// Client is a middleman between the websocket connection and the hub.
type Client struct {
	Hub       *Hub
	Conn      *websocket.Conn
	SessionId string

	// Buffered channel of outbound messages.
	Send chan []byte

	handle   MessageHandler
	inbound  chan []byte
	pongWait time.Duration
}

// ServeWs runs the socket until the peer disconnects.
func ServeWs(hub *Hub, c *websocket.Conn, sessionId string, handle MessageHandler) {
	client := &Client{
		Hub:       hub,
		Conn:      c,
		SessionId: sessionId,
		Send:      make(chan []byte, sendBuffer),
		handle:    handle,
		inbound:   make(chan []byte, inboundBuffer),
		pongWait:  pongWait,
	}
	hub.register(client)

	go client.writePump(pingPeriod)
	client.readPump()
}

// readPump only reads. Turns run on a separate worker so a slow answer
// never starves pong handling and the read deadline.
func (c *Client) readPump() {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go c.work(ctx, done)

	defer func() {
		cancel()
		close(c.inbound)
		<-done
		c.Hub.unregister(c)
		c.Conn.Close()
	}()
	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(c.pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(c.pongWait))
		return nil
	})

	for {
		_, raw, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.Hub.logger.Warn("Hub", "Unexpected socket close", map[string]interface{}{
					"session_id": c.SessionId,
					"error":      err.Error(),
				})
			}
			return
		}

		select {
		case c.inbound <- raw:
		default:
			c.Hub.logger.Warn("Hub", "Client busy, dropping frame", map[string]interface{}{"session_id": c.SessionId})
		}
	}
}

// work answers inbound frames one at a time, in arrival order.
func (c *Client) work(ctx context.Context, done chan<- struct{}) {
	defer close(done)

	for raw := range c.inbound {
		if ctx.Err() != nil {
			continue
		}
		data, err := json.Marshal(c.process(ctx, raw))
		if err != nil || ctx.Err() != nil {
			continue
		}
		select {
		case c.Send <- data:
		default:
			c.Hub.logger.Warn("Hub", "Client Send buffer full, dropping reply", map[string]interface{}{"session_id": c.SessionId})
		}
	}
}

// process turns one inbound frame into the reply frame.
func (c *Client) process(ctx context.Context, raw []byte) Frame {
	var in dto.WsChatMessageRequest
	if err := json.Unmarshal(raw, &in); err != nil {
		return Frame{Type: FrameError, Data: serverutils.ErrorResponse(serverutils.InvalidPayloadMessage, serverutils.NewBodyError(err).Errors...)}
	}

	req := &dto.ChatMessageRequest{Message: in.Message, SessionId: c.SessionId, PatientName: in.PatientName}
	if err := serverutils.ValidateRequest(req); err != nil {
		var verr *serverutils.ValidationError
		if errors.As(err, &verr) {
			return Frame{Type: FrameError, Data: serverutils.ErrorResponse(serverutils.InvalidPayloadMessage, verr.Errors...)}
		}
		return Frame{Type: FrameError, Data: serverutils.ErrorResponse(serverutils.InternalErrorMessage)}
	}

	res, err := c.handle(ctx, req)
	if err != nil {
		c.Hub.logger.Error("Hub", "Chat handling failed", map[string]interface{}{
			"session_id": c.SessionId,
			"error":      err.Error(),
		})
		return Frame{Type: FrameError, Data: serverutils.ErrorResponse(serverutils.InternalErrorMessage)}
	}
	return Frame{Type: FrameMessage, Data: res}
}

func (c *Client) writePump(period time.Duration) {
	ticker := time.NewTicker(period)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

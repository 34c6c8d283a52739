package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"testing"
	"time"

	"discharge-assistant-be/internal/dto"
	"discharge-assistant-be/internal/entity"
	"discharge-assistant-be/internal/pkg/logger"

	fws "github.com/fasthttp/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(h *Hub, sessionId string, handle MessageHandler) *Client {
	return &Client{Hub: h, SessionId: sessionId, Send: make(chan []byte, 4), handle: handle}
}

func TestHubDeliversOnlyToMatchingSession(t *testing.T) {
	h := NewHub(nil, logger.NewNopLogger())
	a := newTestClient(h, "s-1", nil)
	b := newTestClient(h, "s-2", nil)
	h.register(a)
	h.register(b)
	assert.Equal(t, 1, h.Connections("s-1"))

	h.SendToSession(context.Background(), "s-1", Frame{Type: FrameSessionReset})

	require.Len(t, a.Send, 1)
	assert.Empty(t, b.Send)
	var got Frame
	require.NoError(t, json.Unmarshal(<-a.Send, &got))
	assert.Equal(t, FrameSessionReset, got.Type)

	h.unregister(a)
	_, open := <-a.Send
	assert.False(t, open)
	assert.Equal(t, 0, h.Connections("s-1"))
	assert.NoError(t, h.Run(context.Background()))
}

func TestClientProcess(t *testing.T) {
	h := NewHub(nil, logger.NewNopLogger())
	var seen *dto.ChatMessageRequest
	c := newTestClient(h, "s-1", func(ctx context.Context, req *dto.ChatMessageRequest) (*dto.ChatMessageResponse, error) {
		seen = req
		return &dto.ChatMessageResponse{Response: "hello", Agent: entity.AgentReceptionist}, nil
	})

	frame := c.process(context.Background(), []byte(`{"message":"start"}`))
	assert.Equal(t, FrameMessage, frame.Type)
	require.NotNil(t, seen)
	assert.Equal(t, "s-1", seen.SessionId)
	assert.Equal(t, "start", seen.Message)

	frame = c.process(context.Background(), []byte(`{"message":"  "}`))
	assert.Equal(t, FrameError, frame.Type)

	frame = c.process(context.Background(), []byte(`not json`))
	assert.Equal(t, FrameError, frame.Type)
}

func TestClientProcessHidesHandlerErrors(t *testing.T) {
	h := NewHub(nil, logger.NewNopLogger())
	c := newTestClient(h, "s-1", func(ctx context.Context, req *dto.ChatMessageRequest) (*dto.ChatMessageResponse, error) {
		return nil, errors.New("redis down")
	})

	frame := c.process(context.Background(), []byte(`{"message":"hi"}`))
	assert.Equal(t, FrameError, frame.Type)
	body, _ := json.Marshal(frame.Data)
	assert.NotContains(t, string(body), "redis")
}

func TestHubIgnoresItsOwnClusterMessages(t *testing.T) {
	local := NewHub(nil, logger.NewNopLogger())
	remote := NewHub(nil, logger.NewNopLogger())
	a := newTestClient(local, "s-1", nil)
	b := newTestClient(remote, "s-1", nil)
	local.register(a)
	remote.register(b)

	frame, _ := json.Marshal(Frame{Type: FrameSessionReset})
	payload, err := json.Marshal(clusterMessage{Origin: local.id, SessionId: "s-1", Message: frame})
	require.NoError(t, err)

	local.relay(payload)
	remote.relay(payload)

	assert.Empty(t, a.Send)
	require.Len(t, b.Send, 1)
	var got Frame
	require.NoError(t, json.Unmarshal(<-b.Send, &got))
	assert.Equal(t, FrameSessionReset, got.Type)

	remote.relay([]byte("not json"))
	assert.Empty(t, b.Send)
}

func TestSlowTurnOutlivesReadDeadline(t *testing.T) {
	origPong, origPing := pongWait, pingPeriod
	pongWait, pingPeriod = 300*time.Millisecond, 100*time.Millisecond
	t.Cleanup(func() { pongWait, pingPeriod = origPong, origPing })

	h := NewHub(nil, logger.NewNopLogger())
	slow := func(ctx context.Context, req *dto.ChatMessageRequest) (*dto.ChatMessageResponse, error) {
		time.Sleep(800 * time.Millisecond)
		return &dto.ChatMessageResponse{Response: "echo " + req.Message, Agent: entity.AgentReceptionist}, nil
	}

	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Get("/ws", websocket.New(func(c *websocket.Conn) {
		ServeWs(h, c, "s-1", slow)
	}))
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go app.Listener(ln)
	t.Cleanup(func() { app.Shutdown() })

	conn, _, err := fws.DefaultDialer.Dial("ws://"+ln.Addr().String()+"/ws", nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteMessage(fws.TextMessage, []byte(`{"message":"first"}`)))
	require.NoError(t, conn.WriteMessage(fws.TextMessage, []byte(`{"message":"second"}`)))

	for _, want := range []string{"echo first", "echo second"} {
		conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		_, raw, err := conn.ReadMessage()
		require.NoError(t, err)

		var got struct {
			Type string                  `json:"type"`
			Data dto.ChatMessageResponse `json:"data"`
		}
		require.NoError(t, json.Unmarshal(raw, &got))
		assert.Equal(t, FrameMessage, got.Type)
		assert.Equal(t, want, got.Data.Response)
	}
}

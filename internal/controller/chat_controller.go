package controller

import (
	"strings"

	"discharge-assistant-be/internal/dto"
	"discharge-assistant-be/internal/pkg/serverutils"
	"discharge-assistant-be/internal/service"
	internalWS "discharge-assistant-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

const maxSessionIdLength = 128

type IChatController interface {
	RegisterRoutes(r fiber.Router)
	SendMessage(ctx *fiber.Ctx) error
	ResetSession(ctx *fiber.Ctx) error
	GetSession(ctx *fiber.Ctx) error
	Greeting(ctx *fiber.Ctx) error
	ListPatients(ctx *fiber.Ctx) error
}

type chatController struct {
	service service.IChatService
	hub     *internalWS.Hub
}

func NewChatController(service service.IChatService, hub *internalWS.Hub) IChatController {
	return &chatController{service: service, hub: hub}
}

func (c *chatController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/api/v1/chat")
	h.Post("/message", c.SendMessage)
	h.Post("/session/:session_id/reset", c.ResetSession)
	h.Get("/session/:session_id", c.GetSession)
	h.Get("/greeting", c.Greeting)
	h.Get("/patients", c.ListPatients)

	h.Use("/ws", func(ctx *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(ctx) {
			return ctx.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	h.Get("/ws/:session_id", c.requireSessionParam, websocket.New(func(conn *websocket.Conn) {
		internalWS.ServeWs(c.hub, conn, conn.Params("session_id"), c.service.HandleMessage)
	}))
}

func (c *chatController) SendMessage(ctx *fiber.Ctx) error {
	var req dto.ChatMessageRequest
	if err := ctx.BodyParser(&req); err != nil {
		return serverutils.NewBodyError(err)
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.HandleMessage(ctx.UserContext(), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(res)
}

func (c *chatController) ResetSession(ctx *fiber.Ctx) error {
	sessionId := ctx.Params("session_id")
	if err := checkSessionId(sessionId); err != nil {
		return err
	}

	res, err := c.service.ResetSession(ctx.UserContext(), sessionId)
	if err != nil {
		return err
	}
	c.hub.SendToSession(ctx.UserContext(), sessionId, internalWS.Frame{Type: internalWS.FrameSessionReset})
	return ctx.JSON(res)
}

func (c *chatController) GetSession(ctx *fiber.Ctx) error {
	sessionId := ctx.Params("session_id")
	if err := checkSessionId(sessionId); err != nil {
		return err
	}

	res, err := c.service.GetSession(ctx.UserContext(), sessionId)
	if err != nil {
		return err
	}
	return ctx.JSON(res)
}

func (c *chatController) Greeting(ctx *fiber.Ctx) error {
	return ctx.JSON(c.service.Greeting())
}

func (c *chatController) ListPatients(ctx *fiber.Ctx) error {
	return ctx.JSON(c.service.ListPatients())
}

func checkSessionId(id string) error {
	if strings.TrimSpace(id) == "" || len(id) > maxSessionIdLength {
		return &serverutils.ValidationError{Errors: []serverutils.FieldError{{
			Field:   "session_id",
			Message: "Session id must be 1-128 characters",
		}}}
	}
	return nil
}

func (c *chatController) requireSessionParam(ctx *fiber.Ctx) error {
	if err := checkSessionId(ctx.Params("session_id")); err != nil {
		return err
	}
	return ctx.Next()
}

package controller

import (
	"discharge-assistant-be/internal/dto"

	"github.com/gofiber/fiber/v2"
)

type IHealthController interface {
	RegisterRoutes(r fiber.Router)
	Health(ctx *fiber.Ctx) error
}

type healthController struct {
	res dto.HealthResponse
}

func NewHealthController(serviceName, version string) IHealthController {
	return &healthController{res: dto.HealthResponse{Status: "online", Service: serviceName, Version: version}}
}

func (c *healthController) RegisterRoutes(r fiber.Router) {
	r.Get("/", c.Health)
	r.Get("/api/v1/", c.Health)
}

func (c *healthController) Health(ctx *fiber.Ctx) error {
	return ctx.JSON(c.res)
}

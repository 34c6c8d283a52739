package controller

import (
	"discharge-assistant-be/internal/dto"
	"discharge-assistant-be/internal/pkg/serverutils"
	"discharge-assistant-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IAdminController interface {
	RegisterRoutes(r fiber.Router)
	Ingest(ctx *fiber.Ctx) error
	IndexStats(ctx *fiber.Ctx) error
}

type adminController struct {
	service   service.IAdminService
	jwtSecret string
}

func NewAdminController(service service.IAdminService, jwtSecret string) IAdminController {
	return &adminController{service: service, jwtSecret: jwtSecret}
}

func (c *adminController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/api/v1/admin")
	h.Use(serverutils.JwtMiddleware(c.jwtSecret))
	h.Post("/ingest", c.Ingest)
	h.Get("/index", c.IndexStats)
}

func (c *adminController) Ingest(ctx *fiber.Ctx) error {
	var req dto.IngestDocumentRequest
	if len(ctx.Body()) > 0 {
		if err := ctx.BodyParser(&req); err != nil {
			return serverutils.NewBodyError(err)
		}
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	operator, _ := ctx.Locals("operator").(string)
	res, err := c.service.RequestIngestion(ctx.UserContext(), &req, operator)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusAccepted).JSON(serverutils.SuccessResponse("Ingestion queued", res))
}

func (c *adminController) IndexStats(ctx *fiber.Ctx) error {
	res, err := c.service.IndexStats(ctx.UserContext())
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get index stats", res))
}

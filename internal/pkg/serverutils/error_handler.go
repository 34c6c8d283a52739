package serverutils

import (
	"errors"

	"discharge-assistant-be/internal/pkg/logger"

	"github.com/gofiber/fiber/v2"
)

const InternalErrorMessage = "Internal server error. Please try again."

// ErrorHandler is installed as fiber.Config.ErrorHandler. Unexpected errors
// are logged and answered with a generic 500 that leaks no detail.
func ErrorHandler(log logger.ILogger) fiber.ErrorHandler {
	return func(ctx *fiber.Ctx, err error) error {
		var verr *ValidationError
		if errors.As(err, &verr) {
			log.Warn("HTTP", "Validation error in request", map[string]interface{}{
				"path":  ctx.Path(),
				"error": verr.Error(),
			})
			return ctx.Status(fiber.StatusBadRequest).JSON(ErrorResponse(InvalidPayloadMessage, verr.Errors...))
		}

		var ferr *fiber.Error
		if errors.As(err, &ferr) {
			return ctx.Status(ferr.Code).JSON(ErrorResponse(ferr.Message))
		}

		log.Error("HTTP", "Unhandled exception", map[string]interface{}{
			"method": ctx.Method(),
			"path":   ctx.Path(),
			"error":  err.Error(),
		})
		return ctx.Status(fiber.StatusInternalServerError).JSON(ErrorResponse(InternalErrorMessage))
	}
}

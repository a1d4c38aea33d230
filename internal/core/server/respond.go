package server

import (
	"context"

	"pronto-sync/internal/core/apperror"
	"pronto-sync/internal/core/logger"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ErrorResponse represents the structure of an error response.
type ErrorResponse struct {
	// Message is the error description.
	Message string `json:"message"`
	// RayID is the unique request identifier for debugging.
	RayID string `json:"ray_id"`
}

// RayID returns the request id assigned by the requestid middleware.
func RayID(c *fiber.Ctx) string {
	rayID, ok := c.Locals("requestid").(string)
	if !ok {
		return "unknown"
	}
	return rayID
}

// Context derives a request context carrying the ray id for logging.
func Context(c *fiber.Ctx) context.Context {
	return logger.WithRequestID(c.UserContext(), RayID(c))
}

// Validate runs struct tag validation on a request DTO.
func Validate(v any) error {
	if err := validate.Struct(v); err != nil {
		return apperror.Validation("%s", err.Error())
	}
	return nil
}

// Error writes err with the status derived from the error taxonomy.
// Internal errors are logged and masked.
func Error(c *fiber.Ctx, err error) error {
	status := apperror.HTTPStatus(err)
	msg := err.Error()

	if status == fiber.StatusInternalServerError {
		logger.FromContext(Context(c)).Error("Request failed",
			zap.String("path", c.Path()),
			zap.Error(err),
		)
		msg = "Internal Server Error"
	}

	return c.Status(status).JSON(ErrorResponse{
		Message: msg,
		RayID:   RayID(c),
	})
}

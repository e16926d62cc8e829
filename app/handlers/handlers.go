package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/mmutvidal/escapadas-go/app/dto"
)

// requestContext derives a bounded context for downstream flows. Pipeline
// runs scan many provider windows, so the ceiling is generous.
func requestContext(c fiber.Ctx, timeout time.Duration) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	if requestID := c.Get("X-Request-ID"); requestID != "" {
		ctx = context.WithValue(ctx, requestIDKey{}, requestID)
	}
	return ctx, cancel
}

type requestIDKey struct{}

// SuccessResponse writes the standard success envelope
func SuccessResponse(c fiber.Ctx, status int, message string, data any) error {
	return c.Status(status).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// ErrorResponse writes the standard error envelope
func ErrorResponse(c fiber.Ctx, status int, message, code string, details any) error {
	return c.Status(status).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: &dto.ErrorDetail{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

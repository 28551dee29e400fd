package serverutils

import (
	"errors"

	"travel-chatbot-be/pkg/retry"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware turns errors returned by handlers into BaseResponse bodies.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		var validationErr *ValidationError
		if errors.As(err, &validationErr) {
			return ctx.Status(fiber.StatusBadRequest).JSON(BaseResponse[map[string]string]{
				Success: false,
				Code:    fiber.StatusBadRequest,
				Message: "Validation failed",
				Data:    validationErr.Fields,
			})
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return ctx.Status(fiberErr.Code).JSON(ErrorResponse(fiberErr.Code, fiberErr.Message))
		}

		if errors.Is(err, retry.ErrProviderUnavailable) {
			return ctx.Status(fiber.StatusServiceUnavailable).JSON(ErrorResponse(fiber.StatusServiceUnavailable, "AI provider is temporarily unavailable, please try again later"))
		}

		return ctx.Status(fiber.StatusInternalServerError).JSON(ErrorResponse(fiber.StatusInternalServerError, err.Error()))
	}
}

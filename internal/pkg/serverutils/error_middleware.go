package serverutils

import (
	"errors"

	"agent-chat-be/internal/pkg/apperror"
	"agent-chat-be/internal/pkg/logger"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware translates errors bubbling out of handlers into the
// response envelope. Domain errors carry their own status; anything else is a
// 500 and gets logged with its cause.
func ErrorHandlerMiddleware(log logger.ILogger) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		if appErr, ok := apperror.As(err); ok {
			if appErr.Kind == apperror.KindInternal {
				log.Error("http", "unhandled error", map[string]interface{}{
					"path":   ctx.Path(),
					"method": ctx.Method(),
					"error":  appErr.Err,
				})
			}
			return ErrorResponse(ctx, appErr.Status(), appErr.Message)
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return ErrorResponse(ctx, fiberErr.Code, fiberErr.Message)
		}

		log.Error("http", "unhandled error", map[string]interface{}{
			"path":   ctx.Path(),
			"method": ctx.Method(),
			"error":  err,
		})
		return ErrorResponse(ctx, fiber.StatusInternalServerError, "internal server error")
	}
}

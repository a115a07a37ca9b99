package serverutils

import "github.com/gofiber/fiber/v2"

// BaseResponse is the envelope every endpoint returns.
type BaseResponse[T any] struct {
	Success bool   `json:"success"`
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    T      `json:"data,omitempty"`
}

func SuccessResponse[T any](ctx *fiber.Ctx, code int, message string, data T) error {
	return ctx.Status(code).JSON(BaseResponse[T]{
		Success: true,
		Code:    code,
		Message: message,
		Data:    data,
	})
}

func ErrorResponse(ctx *fiber.Ctx, code int, message string) error {
	return ctx.Status(code).JSON(BaseResponse[any]{
		Success: false,
		Code:    code,
		Message: message,
	})
}

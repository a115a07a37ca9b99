package serverutils

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

// ValidateRequest parses the JSON body into req and runs struct validation.
// A failure produces a 400 with the offending fields listed.
func ValidateRequest(ctx *fiber.Ctx, req interface{}) error {
	if err := ctx.BodyParser(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if err := validate.Struct(req); err != nil {
		var fields []string
		if errs, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range errs {
				fields = append(fields, fmt.Sprintf("%s (%s)", strings.ToLower(fe.Field()), fe.Tag()))
			}
		}
		return fiber.NewError(fiber.StatusBadRequest, "validation failed: "+strings.Join(fields, ", "))
	}
	return nil
}

package serverutils

import (
	"agent-chat-be/internal/pkg/token"
	"agent-chat-be/internal/repository/specification"
	"agent-chat-be/internal/repository/unitofwork"

	"github.com/gofiber/fiber/v2"
)

// NewJwtMiddleware authenticates the Bearer token and re-fetches the user so
// a deleted account is rejected even while its token is still unexpired.
// On success the user id lands in ctx.Locals("user_id").
func NewJwtMiddleware(uowFactory unitofwork.RepositoryFactory, issuer *token.Issuer) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		authHeader := ctx.Get("Authorization")
		if len(authHeader) < 7 || authHeader[:7] != "Bearer " {
			return ErrorResponse(ctx, fiber.StatusUnauthorized, "Missing token")
		}
		tokenStr := authHeader[7:]

		claims, err := issuer.Verify(tokenStr)
		if err != nil {
			return ErrorResponse(ctx, fiber.StatusUnauthorized, "Invalid token")
		}

		uow := uowFactory.NewUnitOfWork(ctx.UserContext())
		user, err := uow.UserRepository().FindOne(ctx.UserContext(), specification.ByID{ID: claims.UserId})
		if err != nil {
			return ErrorResponse(ctx, fiber.StatusInternalServerError, "internal server error")
		}
		if user == nil {
			return ErrorResponse(ctx, fiber.StatusUnauthorized, "Invalid token")
		}

		ctx.Locals("user_id", user.Id)
		return ctx.Next()
	}
}

// CurrentUserId reads the authenticated user id set by the JWT middleware.
func CurrentUserId(ctx *fiber.Ctx) uint {
	if id, ok := ctx.Locals("user_id").(uint); ok {
		return id
	}
	return 0
}

package controller

import (
	"agent-chat-be/internal/dto"
	"agent-chat-be/internal/pkg/apperror"
	"agent-chat-be/internal/pkg/serverutils"
	"agent-chat-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IAuthController interface {
	RegisterRoutes(r fiber.Router, authmw fiber.Handler)
	Register(ctx *fiber.Ctx) error
	Login(ctx *fiber.Ctx) error
	Me(ctx *fiber.Ctx) error
	VerifyEmail(ctx *fiber.Ctx) error
	ResendVerification(ctx *fiber.Ctx) error
	ForgotPassword(ctx *fiber.Ctx) error
	ResetPassword(ctx *fiber.Ctx) error
	VerifyResetToken(ctx *fiber.Ctx) error
}

type authController struct {
	authService service.IAuthService
	userService service.IUserService
}

func NewAuthController(authService service.IAuthService, userService service.IUserService) IAuthController {
	return &authController{
		authService: authService,
		userService: userService,
	}
}

func (c *authController) RegisterRoutes(r fiber.Router, authmw fiber.Handler) {
	h := r.Group("/auth")
	h.Post("/register", c.Register)
	h.Post("/login", c.Login)
	h.Get("/me", authmw, c.Me)
	h.Get("/verify-email", c.VerifyEmail)
	h.Post("/resend-verification", c.ResendVerification)
	h.Post("/forgot-password", c.ForgotPassword)
	h.Post("/reset-password", c.ResetPassword)
	h.Get("/verify-reset-token", c.VerifyResetToken)
}

func (c *authController) Register(ctx *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := serverutils.ValidateRequest(ctx, &req); err != nil {
		return err
	}

	res, err := c.authService.Register(ctx.UserContext(), &req)
	if err != nil {
		return err
	}

	return serverutils.SuccessResponse(ctx, fiber.StatusCreated, "User registered", res)
}

func (c *authController) Login(ctx *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := serverutils.ValidateRequest(ctx, &req); err != nil {
		return err
	}

	res, err := c.authService.Login(ctx.UserContext(), &req)
	if err != nil {
		return err
	}

	return serverutils.SuccessResponse(ctx, fiber.StatusOK, "Login successful", res)
}

func (c *authController) Me(ctx *fiber.Ctx) error {
	userId := serverutils.CurrentUserId(ctx)

	res, err := c.userService.GetProfile(ctx.UserContext(), userId)
	if err != nil {
		return err
	}

	return serverutils.SuccessResponse(ctx, fiber.StatusOK, "Success", res)
}

func (c *authController) VerifyEmail(ctx *fiber.Ctx) error {
	tokenStr := ctx.Query("token")
	if tokenStr == "" {
		return apperror.InvalidToken("missing verification token")
	}

	if err := c.authService.VerifyEmail(ctx.UserContext(), tokenStr); err != nil {
		return err
	}

	return serverutils.SuccessResponse[any](ctx, fiber.StatusOK, "Email verified", nil)
}

func (c *authController) ResendVerification(ctx *fiber.Ctx) error {
	var req dto.ResendVerificationRequest
	if err := serverutils.ValidateRequest(ctx, &req); err != nil {
		return err
	}

	if err := c.authService.ResendVerification(ctx.UserContext(), &req); err != nil {
		return err
	}

	// Same envelope whether or not the email exists.
	return serverutils.SuccessResponse[any](ctx, fiber.StatusOK, "If the email is registered, a verification link has been sent", nil)
}

func (c *authController) ForgotPassword(ctx *fiber.Ctx) error {
	var req dto.ForgotPasswordRequest
	if err := serverutils.ValidateRequest(ctx, &req); err != nil {
		return err
	}

	if err := c.authService.ForgotPassword(ctx.UserContext(), &req); err != nil {
		return err
	}

	return serverutils.SuccessResponse[any](ctx, fiber.StatusOK, "If the email is registered, a reset link has been sent", nil)
}

func (c *authController) ResetPassword(ctx *fiber.Ctx) error {
	var req dto.ResetPasswordRequest
	if err := serverutils.ValidateRequest(ctx, &req); err != nil {
		return err
	}

	if err := c.authService.ResetPassword(ctx.UserContext(), &req); err != nil {
		return err
	}

	return serverutils.SuccessResponse[any](ctx, fiber.StatusOK, "Password has been reset", nil)
}

func (c *authController) VerifyResetToken(ctx *fiber.Ctx) error {
	tokenStr := ctx.Query("token")
	if tokenStr == "" {
		return apperror.InvalidToken("missing reset token")
	}

	valid, err := c.authService.VerifyResetToken(ctx.UserContext(), tokenStr)
	if err != nil {
		return err
	}

	return serverutils.SuccessResponse(ctx, fiber.StatusOK, "Success", &dto.ResetTokenStatusResponse{Valid: valid})
}

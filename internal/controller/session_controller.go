package controller

import (
	"agent-chat-be/internal/dto"
	"agent-chat-be/internal/pkg/serverutils"
	"agent-chat-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

// parseIdParam reads a positive integer route parameter.
func parseIdParam(ctx *fiber.Ctx, name string) (uint, error) {
	id, err := ctx.ParamsInt(name)
	if err != nil || id <= 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "invalid "+name)
	}
	return uint(id), nil
}

type ISessionController interface {
	RegisterRoutes(r fiber.Router, authmw fiber.Handler)
	Create(ctx *fiber.Ctx) error
	List(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	Update(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
}

type sessionController struct {
	service service.ISessionService
}

func NewSessionController(service service.ISessionService) ISessionController {
	return &sessionController{service: service}
}

func (c *sessionController) RegisterRoutes(r fiber.Router, authmw fiber.Handler) {
	h := r.Group("/sessions")
	h.Use(authmw)
	h.Post("/", c.Create)
	h.Get("/", c.List)
	h.Get("/:id", c.Show)
	h.Patch("/:id", c.Update)
	h.Delete("/:id", c.Delete)
}

func (c *sessionController) Create(ctx *fiber.Ctx) error {
	userId := serverutils.CurrentUserId(ctx)

	var req dto.CreateSessionRequest
	if err := serverutils.ValidateRequest(ctx, &req); err != nil {
		return err
	}

	res, err := c.service.Create(ctx.UserContext(), userId, &req)
	if err != nil {
		return err
	}

	return serverutils.SuccessResponse(ctx, fiber.StatusCreated, "Session created", res)
}

func (c *sessionController) List(ctx *fiber.Ctx) error {
	userId := serverutils.CurrentUserId(ctx)

	res, err := c.service.List(ctx.UserContext(), userId)
	if err != nil {
		return err
	}

	return serverutils.SuccessResponse(ctx, fiber.StatusOK, "Success", res)
}

func (c *sessionController) Show(ctx *fiber.Ctx) error {
	userId := serverutils.CurrentUserId(ctx)
	id, err := parseIdParam(ctx, "id")
	if err != nil {
		return err
	}

	res, err := c.service.Get(ctx.UserContext(), id, userId)
	if err != nil {
		return err
	}

	return serverutils.SuccessResponse(ctx, fiber.StatusOK, "Success", res)
}

func (c *sessionController) Update(ctx *fiber.Ctx) error {
	userId := serverutils.CurrentUserId(ctx)
	id, err := parseIdParam(ctx, "id")
	if err != nil {
		return err
	}

	var req dto.UpdateSessionRequest
	if err := serverutils.ValidateRequest(ctx, &req); err != nil {
		return err
	}

	res, err := c.service.Update(ctx.UserContext(), id, userId, &req)
	if err != nil {
		return err
	}

	return serverutils.SuccessResponse(ctx, fiber.StatusOK, "Session updated", res)
}

func (c *sessionController) Delete(ctx *fiber.Ctx) error {
	userId := serverutils.CurrentUserId(ctx)
	id, err := parseIdParam(ctx, "id")
	if err != nil {
		return err
	}

	if err := c.service.Delete(ctx.UserContext(), id, userId); err != nil {
		return err
	}

	return serverutils.SuccessResponse[any](ctx, fiber.StatusOK, "Session deleted", nil)
}

package controller

import (
	"agent-chat-be/internal/dto"
	"agent-chat-be/internal/pkg/serverutils"
	"agent-chat-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IThreadController interface {
	RegisterRoutes(r fiber.Router, authmw fiber.Handler)
	Create(ctx *fiber.Ctx) error
	List(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	Update(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
}

type threadController struct {
	service service.IThreadService
}

func NewThreadController(service service.IThreadService) IThreadController {
	return &threadController{service: service}
}

func (c *threadController) RegisterRoutes(r fiber.Router, authmw fiber.Handler) {
	h := r.Group("/threads")
	h.Use(authmw)
	// Single-thread routes sit under /thread/:id so they can't collide with
	// the session-scoped collection routes.
	h.Get("/thread/:id", c.Show)
	h.Patch("/thread/:id", c.Update)
	h.Delete("/thread/:id", c.Delete)
	h.Post("/:session_id", c.Create)
	h.Get("/:session_id", c.List)
}

func (c *threadController) Create(ctx *fiber.Ctx) error {
	userId := serverutils.CurrentUserId(ctx)
	sessionId, err := parseIdParam(ctx, "session_id")
	if err != nil {
		return err
	}

	var req dto.CreateThreadRequest
	if err := serverutils.ValidateRequest(ctx, &req); err != nil {
		return err
	}

	res, err := c.service.Create(ctx.UserContext(), userId, sessionId, &req)
	if err != nil {
		return err
	}

	return serverutils.SuccessResponse(ctx, fiber.StatusCreated, "Thread created", res)
}

func (c *threadController) List(ctx *fiber.Ctx) error {
	userId := serverutils.CurrentUserId(ctx)
	sessionId, err := parseIdParam(ctx, "session_id")
	if err != nil {
		return err
	}

	res, err := c.service.List(ctx.UserContext(), userId, sessionId)
	if err != nil {
		return err
	}

	return serverutils.SuccessResponse(ctx, fiber.StatusOK, "Success", res)
}

func (c *threadController) Show(ctx *fiber.Ctx) error {
	userId := serverutils.CurrentUserId(ctx)
	id, err := parseIdParam(ctx, "id")
	if err != nil {
		return err
	}

	res, err := c.service.Get(ctx.UserContext(), userId, id)
	if err != nil {
		return err
	}

	return serverutils.SuccessResponse(ctx, fiber.StatusOK, "Success", res)
}

func (c *threadController) Update(ctx *fiber.Ctx) error {
	userId := serverutils.CurrentUserId(ctx)
	id, err := parseIdParam(ctx, "id")
	if err != nil {
		return err
	}

	var req dto.UpdateThreadRequest
	if err := serverutils.ValidateRequest(ctx, &req); err != nil {
		return err
	}

	res, err := c.service.UpdateTitle(ctx.UserContext(), userId, id, &req)
	if err != nil {
		return err
	}

	return serverutils.SuccessResponse(ctx, fiber.StatusOK, "Thread updated", res)
}

func (c *threadController) Delete(ctx *fiber.Ctx) error {
	userId := serverutils.CurrentUserId(ctx)
	id, err := parseIdParam(ctx, "id")
	if err != nil {
		return err
	}

	if err := c.service.Delete(ctx.UserContext(), userId, id); err != nil {
		return err
	}

	return serverutils.SuccessResponse[any](ctx, fiber.StatusOK, "Thread deleted", nil)
}

package controller

import (
	"agent-chat-be/internal/dto"
	"agent-chat-be/internal/pkg/serverutils"
	"agent-chat-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IMessageController interface {
	RegisterRoutes(r fiber.Router, authmw fiber.Handler)
	Send(ctx *fiber.Ctx) error
	List(ctx *fiber.Ctx) error
	Update(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
}

type messageController struct {
	service service.IMessageService
}

func NewMessageController(service service.IMessageService) IMessageController {
	return &messageController{service: service}
}

func (c *messageController) RegisterRoutes(r fiber.Router, authmw fiber.Handler) {
	h := r.Group("/messages")
	h.Use(authmw)
	h.Patch("/message/:id", c.Update)
	h.Delete("/message/:id", c.Delete)
	h.Post("/:thread_id", c.Send)
	h.Get("/:thread_id", c.List)
}

func (c *messageController) Send(ctx *fiber.Ctx) error {
	userId := serverutils.CurrentUserId(ctx)
	threadId, err := parseIdParam(ctx, "thread_id")
	if err != nil {
		return err
	}

	var req dto.SendMessageRequest
	if err := serverutils.ValidateRequest(ctx, &req); err != nil {
		return err
	}

	res, err := c.service.SendMessage(ctx.UserContext(), userId, threadId, &req)
	if err != nil {
		return err
	}

	return serverutils.SuccessResponse(ctx, fiber.StatusOK, "Success", res)
}

func (c *messageController) List(ctx *fiber.Ctx) error {
	userId := serverutils.CurrentUserId(ctx)
	threadId, err := parseIdParam(ctx, "thread_id")
	if err != nil {
		return err
	}

	res, err := c.service.List(ctx.UserContext(), userId, threadId)
	if err != nil {
		return err
	}

	return serverutils.SuccessResponse(ctx, fiber.StatusOK, "Success", res)
}

func (c *messageController) Update(ctx *fiber.Ctx) error {
	userId := serverutils.CurrentUserId(ctx)
	id, err := parseIdParam(ctx, "id")
	if err != nil {
		return err
	}

	var req dto.UpdateMessageRequest
	if err := serverutils.ValidateRequest(ctx, &req); err != nil {
		return err
	}

	res, err := c.service.UpdateContent(ctx.UserContext(), userId, id, &req)
	if err != nil {
		return err
	}

	return serverutils.SuccessResponse(ctx, fiber.StatusOK, "Message updated", res)
}

func (c *messageController) Delete(ctx *fiber.Ctx) error {
	userId := serverutils.CurrentUserId(ctx)
	id, err := parseIdParam(ctx, "id")
	if err != nil {
		return err
	}

	if err := c.service.Delete(ctx.UserContext(), userId, id); err != nil {
		return err
	}

	return serverutils.SuccessResponse[any](ctx, fiber.StatusOK, "Message deleted", nil)
}

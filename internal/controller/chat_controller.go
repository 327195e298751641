package controller

import (
	"strings"

	"turingtest-be/internal/dto"
	"turingtest-be/internal/pkg/serverutils"
	"turingtest-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IChatController interface {
	RegisterRoutes(r fiber.Router, auth fiber.Handler)
	CreateChat(ctx *fiber.Ctx) error
	ListChats(ctx *fiber.Ctx) error
	GetMessages(ctx *fiber.Ctx) error
	PostMessage(ctx *fiber.Ctx) error
}

type chatController struct {
	service service.IChatService
}

func NewChatController(service service.IChatService) IChatController {
	return &chatController{service: service}
}

func (c *chatController) RegisterRoutes(r fiber.Router, auth fiber.Handler) {
	h := r.Group("/chats", auth)
	h.Post("/", c.CreateChat)
	h.Get("/", c.ListChats)
	h.Get("/:chatId/messages", c.GetMessages)
	h.Post("/:chatId/messages", c.PostMessage)
}

func chatIdParam(ctx *fiber.Ctx) (string, error) {
	param := dto.ChatIdParam{ChatId: ctx.Params("chatId")}
	if err := serverutils.ValidateRequest(param); err != nil {
		return "", err
	}
	return strings.ToLower(param.ChatId), nil
}

func (c *chatController) CreateChat(ctx *fiber.Ctx) error {
	userId, email, err := serverutils.CurrentUser(ctx)
	if err != nil {
		return err
	}

	var req dto.CreateChatRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.CreateChat(ctx.UserContext(), userId, email, &req)
	if err != nil {
		return err
	}
	return ctx.Status(res.Status).JSON(res)
}

func (c *chatController) ListChats(ctx *fiber.Ctx) error {
	userId, _, err := serverutils.CurrentUser(ctx)
	if err != nil {
		return err
	}

	res, err := c.service.ListChats(ctx.UserContext(), userId)
	if err != nil {
		return err
	}
	return ctx.Status(res.Status).JSON(res)
}

func (c *chatController) GetMessages(ctx *fiber.Ctx) error {
	userId, _, err := serverutils.CurrentUser(ctx)
	if err != nil {
		return err
	}
	chatId, err := chatIdParam(ctx)
	if err != nil {
		return err
	}

	res, err := c.service.GetChatMessages(ctx.UserContext(), userId, chatId)
	if err != nil {
		return err
	}
	return ctx.Status(res.Status).JSON(res)
}

func (c *chatController) PostMessage(ctx *fiber.Ctx) error {
	userId, email, err := serverutils.CurrentUser(ctx)
	if err != nil {
		return err
	}
	chatId, err := chatIdParam(ctx)
	if err != nil {
		return err
	}

	var req dto.PostMessageRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}
	req.Content = strings.TrimSpace(req.Content)
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.PostMessage(ctx.UserContext(), userId, email, chatId, &req)
	if err != nil {
		return err
	}
	return ctx.Status(res.Status).JSON(res)
}

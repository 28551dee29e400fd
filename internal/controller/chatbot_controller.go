package controller

import (
	"travel-chatbot-be/internal/dto"
	"travel-chatbot-be/internal/pkg/serverutils"
	"travel-chatbot-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IChatbotController interface {
	RegisterRoutes(r fiber.Router)
	SendChat(ctx *fiber.Ctx) error
	ClearHistory(ctx *fiber.Ctx) error
}

type chatbotController struct {
	chatbotService service.IChatbotService
}

func NewChatbotController(chatbotService service.IChatbotService) IChatbotController {
	return &chatbotController{
		chatbotService: chatbotService,
	}
}

func (c *chatbotController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/chatbot/v1")
	h.Post("chat", c.SendChat)
	h.Delete("sessions/:sessionId/history", c.ClearHistory)
}

func (c *chatbotController) SendChat(ctx *fiber.Ctx) error {
	var req dto.SendChatRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.chatbotService.SendChat(ctx.UserContext(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success send chat", res))
}

func (c *chatbotController) ClearHistory(ctx *fiber.Ctx) error {
	sessionId := ctx.Params("sessionId")
	if sessionId == "" {
		return fiber.NewError(fiber.StatusBadRequest, "session id is required")
	}

	if err := c.chatbotService.ClearHistory(ctx.UserContext(), sessionId); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success clear history", nil))
}

package controller

import (
	"travel-chatbot-be/internal/dto"
	"travel-chatbot-be/internal/pkg/serverutils"
	"travel-chatbot-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ITranscriptController interface {
	RegisterRoutes(r fiber.Router)
	List(ctx *fiber.Ctx) error
}

type transcriptController struct {
	transcriptService service.ITranscriptService
}

func NewTranscriptController(transcriptService service.ITranscriptService) ITranscriptController {
	return &transcriptController{transcriptService: transcriptService}
}

func (c *transcriptController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/chatbot/v1")
	h.Get("transcripts", c.List)
}

func (c *transcriptController) List(ctx *fiber.Ctx) error {
	var q dto.TranscriptQuery
	if err := ctx.QueryParser(&q); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid query parameters")
	}

	if err := serverutils.ValidateRequest(q); err != nil {
		return err
	}

	page, err := c.transcriptService.List(ctx.UserContext(), &q)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Transcripts", page))
}

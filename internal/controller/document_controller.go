package controller

import (
	"errors"

	"travel-chatbot-be/internal/dto"
	"travel-chatbot-be/internal/pkg/serverutils"
	"travel-chatbot-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IDocumentController interface {
	RegisterRoutes(r fiber.Router)
	Ingest(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
	Stats(ctx *fiber.Ctx) error
	Source(ctx *fiber.Ctx) error
}

type documentController struct {
	documentService service.IDocumentService
}

func NewDocumentController(documentService service.IDocumentService) IDocumentController {
	return &documentController{documentService: documentService}
}

func (c *documentController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/document/v1")
	h.Get("stats", c.Stats)
	h.Get(":sourceId", c.Source)
	h.Post("", c.Ingest)
	h.Delete(":sourceId", c.Delete)
}

func (c *documentController) Ingest(ctx *fiber.Ctx) error {
	var req dto.PublishEmbedDocumentMessage
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	if err := c.documentService.Ingest(ctx.UserContext(), &req); err != nil {
		return err
	}

	return ctx.Status(fiber.StatusAccepted).JSON(serverutils.SuccessResponse[any]("Document queued for embedding", nil))
}

func (c *documentController) Delete(ctx *fiber.Ctx) error {
	if err := c.documentService.Delete(ctx.UserContext(), ctx.Params("sourceId")); err != nil {
		return err
	}
	return ctx.Status(fiber.StatusAccepted).JSON(serverutils.SuccessResponse[any]("Document queued for removal", nil))
}

func (c *documentController) Stats(ctx *fiber.Ctx) error {
	res, err := c.documentService.Stats(ctx.UserContext())
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Corpus stats", res))
}

func (c *documentController) Source(ctx *fiber.Ctx) error {
	res, err := c.documentService.Source(ctx.UserContext(), ctx.Params("sourceId"))
	if errors.Is(err, service.ErrSourceNotFound) {
		return fiber.NewError(fiber.StatusNotFound, "document source not found")
	}
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Document source", res))
}

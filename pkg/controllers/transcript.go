package controllers

import (
	"github.com/duolog/duolog-server/pkg/models"
	"github.com/gofiber/fiber/v2"
)

type TranscriptController struct {
	TranscriptModel *models.TranscriptModel
}

func NewTranscriptController(m *models.TranscriptModel) *TranscriptController {
	return &TranscriptController{TranscriptModel: m}
}

func (tc *TranscriptController) HandleAddTranscript(c *fiber.Ctx) error {
	req := new(models.AddTranscriptReq)
	if err := parseBody(c, req); err != nil {
		return sendErrorResponse(c, err)
	}

	info, err := tc.TranscriptModel.AddTranscript(c.UserContext(), userIdFrom(c), c.Params("id"), req)
	if err != nil {
		return sendErrorResponse(c, err)
	}
	c.Status(fiber.StatusCreated)
	return sendResponse(c, info)
}

func (tc *TranscriptController) HandleGetTranscripts(c *fiber.Ctx) error {
	list, err := tc.TranscriptModel.GetTranscripts(userIdFrom(c), c.Params("id"))
	if err != nil {
		return sendErrorResponse(c, err)
	}
	return sendResponse(c, list)
}

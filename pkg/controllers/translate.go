package controllers

import (
	"github.com/duolog/duolog-server/pkg/insights"
	"github.com/duolog/duolog-server/pkg/models"
	"github.com/gofiber/fiber/v2"
)

type TranslateController struct {
	TranslateModel *models.TranslateModel
	MeetingModel   *models.MeetingModel
}

func NewTranslateController(tm *models.TranslateModel, mm *models.MeetingModel) *TranslateController {
	return &TranslateController{
		TranslateModel: tm,
		MeetingModel:   mm,
	}
}

func (tc *TranslateController) HandleTranslate(c *fiber.Ctx) error {
	req := new(models.TranslateReq)
	if err := parseBody(c, req); err != nil {
		return sendErrorResponse(c, err)
	}

	var meeting *models.MeetingInfo
	if req.MeetingId != "" {
		var err error
		if meeting, err = tc.MeetingModel.GetMeetingInfo(userIdFrom(c), req.MeetingId); err != nil {
			return sendErrorResponse(c, err)
		}
	}
	res, err := tc.TranslateModel.Translate(c.UserContext(), req, glossaryOf(meeting))
	if err != nil {
		return sendErrorResponse(c, err)
	}
	return sendResponse(c, res)
}

func glossaryOf(m *models.MeetingInfo) []insights.GlossaryTerm {
	if m == nil {
		return nil
	}
	return m.Contexts
}

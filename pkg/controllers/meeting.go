package controllers

import (
	"github.com/duolog/duolog-server/pkg/models"
	"github.com/gofiber/fiber/v2"
)

// MeetingController holds dependencies for meeting related handlers.
type MeetingController struct {
	MeetingModel *models.MeetingModel
}

func NewMeetingController(m *models.MeetingModel) *MeetingController {
	return &MeetingController{MeetingModel: m}
}

func (mc *MeetingController) HandleCreateMeeting(c *fiber.Ctx) error {
	req := new(models.CreateMeetingReq)
	if err := parseBody(c, req); err != nil {
		return sendErrorResponse(c, err)
	}

	info, err := mc.MeetingModel.CreateMeeting(userIdFrom(c), req)
	if err != nil {
		return sendErrorResponse(c, err)
	}
	c.Status(fiber.StatusCreated)
	return sendResponse(c, info)
}

func (mc *MeetingController) HandleListMeetings(c *fiber.Ctx) error {
	res, err := mc.MeetingModel.ListMeetings(userIdFrom(c), c.QueryInt("offset", 0), c.QueryInt("limit", 20))
	if err != nil {
		return sendErrorResponse(c, err)
	}
	return sendResponse(c, res)
}

func (mc *MeetingController) HandleGetMeeting(c *fiber.Ctx) error {
	info, err := mc.MeetingModel.GetMeetingInfo(userIdFrom(c), c.Params("id"))
	if err != nil {
		return sendErrorResponse(c, err)
	}
	return sendResponse(c, info)
}

// HandleGetSharedMeeting needs no user, the share link is the credential.
func (mc *MeetingController) HandleGetSharedMeeting(c *fiber.Ctx) error {
	info, err := mc.MeetingModel.GetMeetingByShareLink(c.Params("link"))
	if err != nil {
		return sendErrorResponse(c, err)
	}
	return sendResponse(c, info)
}

func (mc *MeetingController) HandleUpdateMeeting(c *fiber.Ctx) error {
	req := new(models.UpdateMeetingReq)
	if err := parseBody(c, req); err != nil {
		return sendErrorResponse(c, err)
	}

	info, err := mc.MeetingModel.UpdateMeeting(userIdFrom(c), c.Params("id"), req)
	if err != nil {
		return sendErrorResponse(c, err)
	}
	return sendResponse(c, info)
}

func (mc *MeetingController) HandleDeleteMeeting(c *fiber.Ctx) error {
	if err := mc.MeetingModel.DeleteMeeting(userIdFrom(c), c.Params("id")); err != nil {
		return sendErrorResponse(c, err)
	}
	return sendResponse(c, nil)
}

func (mc *MeetingController) HandleStartMeeting(c *fiber.Ctx) error {
	info, err := mc.MeetingModel.StartMeeting(userIdFrom(c), c.Params("id"))
	if err != nil {
		return sendErrorResponse(c, err)
	}
	return sendResponse(c, info)
}

func (mc *MeetingController) HandleEndMeeting(c *fiber.Ctx) error {
	res, err := mc.MeetingModel.EndMeeting(userIdFrom(c), c.Params("id"))
	if err != nil {
		return sendErrorResponse(c, err)
	}
	return sendResponse(c, res)
}

package controllers

import (
	"errors"

	"github.com/duolog/duolog-server/pkg/config"
	"github.com/duolog/duolog-server/pkg/models"
	"github.com/gofiber/fiber/v2"
)

type commonResponse struct {
	Status bool        `json:"status"`
	Msg    string      `json:"msg"`
	Data   interface{} `json:"data,omitempty"`
}

func sendResponse(c *fiber.Ctx, data interface{}) error {
	return c.JSON(&commonResponse{
		Status: true,
		Msg:    "success",
		Data:   data,
	})
}

// sendErrorResponse replies with the status code matching err.
func sendErrorResponse(c *fiber.Ctx, err error) error {
	return c.Status(statusFor(err)).JSON(&commonResponse{
		Status: false,
		Msg:    err.Error(),
	})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrUserIdRequired):
		return fiber.StatusUnauthorized
	case errors.Is(err, models.ErrQuotaExceeded):
		return fiber.StatusPaymentRequired
	case errors.Is(err, models.ErrAccessDenied):
		return fiber.StatusForbidden
	case errors.Is(err, models.ErrMeetingNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, models.ErrSummaryRunning),
		errors.Is(err, models.ErrMeetingNotRunning):
		return fiber.StatusConflict
	case errors.Is(err, models.ErrNothingToSummarize),
		errors.Is(err, models.ErrTranslationParams),
		errors.Is(err, models.ErrEmptyTranscript),
		errors.Is(err, models.ErrSpeakerNotFound),
		errors.Is(err, models.ErrInvalidLanguages),
		errors.Is(err, models.ErrInvalidCommand),
		errors.Is(err, errInvalidBody):
		return fiber.StatusBadRequest
	}
	return fiber.StatusInternalServerError
}

var errInvalidBody = errors.New(config.InvalidRequestBody)

func parseBody(c *fiber.Ctx, out interface{}) error {
	if len(c.Body()) == 0 {
		return nil
	}
	if err := c.BodyParser(out); err != nil {
		return errInvalidBody
	}
	return nil
}

func userIdFrom(c *fiber.Ctx) string {
	userId, _ := c.Locals("userId").(string)
	return userId
}

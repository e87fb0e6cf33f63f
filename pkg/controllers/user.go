package controllers

import (
	"github.com/duolog/duolog-server/pkg/models"
	"github.com/gofiber/fiber/v2"
)

type UserController struct {
	UserModel *models.UserModel
}

func NewUserController(m *models.UserModel) *UserController {
	return &UserController{UserModel: m}
}

func (uc *UserController) HandleGetUserInfo(c *fiber.Ctx) error {
	info, err := uc.UserModel.GetUserInfo(userIdFrom(c))
	if err != nil {
		return sendErrorResponse(c, err)
	}
	return sendResponse(c, info)
}

// HandleUpgrade is called once the payment was handled elsewhere.
func (uc *UserController) HandleUpgrade(c *fiber.Ctx) error {
	info, err := uc.UserModel.Upgrade(userIdFrom(c))
	if err != nil {
		return sendErrorResponse(c, err)
	}
	return sendResponse(c, info)
}

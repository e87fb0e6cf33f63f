package controllers

import (
	"strings"

	"github.com/duolog/duolog-server/pkg/config"
	"github.com/duolog/duolog-server/pkg/models"
	"github.com/gofiber/fiber/v2"
)

// AuthController trusts the user id header set by the gateway in front of
// the server.
type AuthController struct {
	app *config.AppConfig
}

func NewAuthController(app *config.AppConfig) *AuthController {
	return &AuthController{app: app}
}

func (ac *AuthController) HandleVerifyUserHeader(c *fiber.Ctx) error {
	userId := strings.TrimSpace(c.Get(ac.app.Client.UserIdHeader))
	if userId == "" {
		return sendErrorResponse(c, models.ErrUserIdRequired)
	}
	c.Locals("userId", userId)
	return c.Next()
}

// HandleOptionalUserHeader is used where a share link may stand in for the
// user.
func (ac *AuthController) HandleOptionalUserHeader(c *fiber.Ctx) error {
	if userId := strings.TrimSpace(c.Get(ac.app.Client.UserIdHeader)); userId != "" {
		c.Locals("userId", userId)
	}
	return c.Next()
}

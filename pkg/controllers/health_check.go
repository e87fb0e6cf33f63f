package controllers

import (
	"context"
	"time"

	"github.com/duolog/duolog-server/pkg/config"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type HealthCheckController struct {
	app    *config.AppConfig
	logger *logrus.Entry
}

func NewHealthCheckController(app *config.AppConfig, logger *logrus.Logger) *HealthCheckController {
	return &HealthCheckController{
		app:    app,
		logger: logger.WithField("controller", "health_check"),
	}
}

func (hc *HealthCheckController) HandleHealthCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 3*time.Second)
	defer cancel()

	d, err := hc.app.DB.DB()
	if err == nil {
		err = d.PingContext(ctx)
	}
	if err != nil {
		hc.logger.WithError(err).Errorln("database is not reachable")
		return c.Status(fiber.StatusServiceUnavailable).SendString("database connection error")
	}
	if err = hc.app.RDS.Ping(ctx).Err(); err != nil {
		hc.logger.WithError(err).Errorln("redis is not reachable")
		return c.Status(fiber.StatusServiceUnavailable).SendString("redis connection error")
	}
	if !hc.app.NatsConn.IsConnected() {
		hc.logger.Errorln("nats is not connected")
		return c.Status(fiber.StatusServiceUnavailable).SendString("nats connection error")
	}

	return c.Status(fiber.StatusOK).SendString("Healthy")
}

package controllers

import (
	"context"

	"github.com/duolog/duolog-server/pkg/models"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/sirupsen/logrus"
)

type SummaryController struct {
	SummaryModel *models.SummaryModel
	cc           jetstream.ConsumeContext
	logger       *logrus.Entry
}

func NewSummaryController(m *models.SummaryModel, logger *logrus.Logger) *SummaryController {
	return &SummaryController{
		SummaryModel: m,
		logger:       logger.WithField("controller", "summary"),
	}
}

// StartSubscription makes this instance one of the summary job workers.
func (sc *SummaryController) StartSubscription(ctx context.Context) {
	cc, err := sc.SummaryModel.SubscribeToSummaryJobs(ctx)
	if err != nil {
		sc.logger.WithError(err).Fatalln("failed to subscribe to summary jobs")
	}
	sc.cc = cc
}

func (sc *SummaryController) Shutdown() {
	if sc.cc != nil {
		sc.cc.Stop()
	}
}

func (sc *SummaryController) HandleGetSummary(c *fiber.Ctx) error {
	summary, err := sc.SummaryModel.GetSummary(userIdFrom(c), c.Params("id"))
	if err != nil {
		return sendErrorResponse(c, err)
	}
	return sendResponse(c, summary)
}

func (sc *SummaryController) HandleGenerateSummary(c *fiber.Ctx) error {
	summary, err := sc.SummaryModel.GenerateSummary(c.UserContext(), userIdFrom(c), c.Params("id"))
	if err != nil {
		return sendErrorResponse(c, err)
	}
	return sendResponse(c, summary)
}

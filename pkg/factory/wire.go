//go:build wireinject
// +build wireinject

package factory

import (
	"context"

	"github.com/duolog/duolog-server/pkg/config"
	"github.com/duolog/duolog-server/pkg/controllers"
	"github.com/duolog/duolog-server/pkg/models"
	"github.com/duolog/duolog-server/pkg/services/db"
	"github.com/duolog/duolog-server/pkg/services/insights"
	"github.com/duolog/duolog-server/pkg/services/nats"
	"github.com/duolog/duolog-server/pkg/services/redis"
	"github.com/google/wire"
)

// build the dependency set for services
var serviceSet = wire.NewSet(
	dbservice.New,
	redisservice.New,
	natsservice.New,
	insightsservice.New,
)

// build the dependency set for models
var modelSet = wire.NewSet(
	models.NewUserModel,
	models.NewMeetingModel,
	models.NewTranslateModel,
	models.NewTranscriptModel,
	models.NewSummaryModel,
	models.NewCaptureModel,
)

// build the dependency set for controllers
var controllerSet = wire.NewSet(
	controllers.NewAuthController,
	controllers.NewHealthCheckController,
	controllers.NewUserController,
	controllers.NewMeetingController,
	controllers.NewTranscriptController,
	controllers.NewSummaryController,
	controllers.NewTranslateController,
	controllers.NewCaptureController,
)

// NewAppFactory is the injector function that wire will implement.
func NewAppFactory(ctx context.Context, appConfig *config.AppConfig) (*Application, error) {
	wire.Build(
		serviceSet,
		modelSet,
		controllerSet,
		wire.FieldsOf(new(*config.AppConfig), "DB", "RDS", "Logger"),

		wire.Struct(new(ApplicationControllers), "*"),
		wire.Struct(new(Application), "*"),
	)
	return nil, nil
}

package factory

import (
	"context"

	"github.com/duolog/duolog-server/pkg/config"
	"github.com/duolog/duolog-server/pkg/controllers"
	"github.com/duolog/duolog-server/pkg/services/db"
)

// ApplicationControllers holds all the controllers.
type ApplicationControllers struct {
	AuthController        *controllers.AuthController
	HealthCheckController *controllers.HealthCheckController
	UserController        *controllers.UserController
	MeetingController     *controllers.MeetingController
	TranscriptController  *controllers.TranscriptController
	SummaryController     *controllers.SummaryController
	TranslateController   *controllers.TranslateController
	CaptureController     *controllers.CaptureController
}

// Application is the root struct holding all dependencies.
type Application struct {
	Controllers *ApplicationControllers
	AppConfig   *config.AppConfig
	Ctx         context.Context
	ds          *dbservice.DatabaseService
}

func (a *Application) Boot() error {
	if err := a.ds.AutoMigrate(); err != nil {
		return err
	}
	a.Controllers.SummaryController.StartSubscription(a.Ctx)
	return nil
}

func (a *Application) Shutdown() {
	a.Controllers.SummaryController.Shutdown()
}

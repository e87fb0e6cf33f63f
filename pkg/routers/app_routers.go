package routers

import (
	"io"
	"runtime"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/duolog/duolog-server/pkg/config"
	"github.com/duolog/duolog-server/pkg/factory"
	"github.com/duolog/duolog-server/version"
	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	rr "github.com/gofiber/fiber/v2/middleware/recover"
)

type router struct {
	app  *fiber.App
	ctrl *factory.ApplicationControllers
}

func New(appConfig *config.AppConfig, ctrl *factory.ApplicationControllers) *fiber.App {
	cnf := fiber.Config{
		JSONEncoder: json.Marshal,
		JSONDecoder: json.Unmarshal,
		AppName:     "duolog version: " + version.Version + " runtime: " + runtime.Version(),
	}
	if appConfig.Client.ProxyHeader != "" {
		cnf.ProxyHeader = appConfig.Client.ProxyHeader
	}

	app := fiber.New(cnf)

	app.Use(logger.New(logger.Config{
		Done: func(c *fiber.Ctx, logString []byte) {
			appConfig.Logger.Debugln(string(logString))
		},
		Format: "${status} | ${latency} | ${ip} | ${method} | ${path} | ${error}",
		Output: io.Discard,
	}))

	if appConfig.Client.PrometheusConf.Enable {
		prometheus := fiberprometheus.New("duolog")
		prometheus.RegisterAt(app, appConfig.Client.PrometheusConf.MetricsPath)
		app.Use(prometheus.Middleware)
	}

	app.Use(rr.New())
	app.Use(cors.New(cors.Config{
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, " + appConfig.Client.UserIdHeader,
	}))

	r := &router{
		app:  app,
		ctrl: ctrl,
	}
	r.registerBaseRoutes()
	r.registerAPIRoutes()
	r.registerWebsocketRoutes()

	// must stay last
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).SendString("not found")
	})

	return app
}

func (r *router) registerBaseRoutes() {
	r.app.Get("/healthCheck", r.ctrl.HealthCheckController.HandleHealthCheck)
	r.app.Get("/share/:link", r.ctrl.MeetingController.HandleGetSharedMeeting)
}

func (r *router) registerAPIRoutes() {
	api := r.app.Group("/api", r.ctrl.AuthController.HandleVerifyUserHeader)

	api.Get("/user", r.ctrl.UserController.HandleGetUserInfo)
	api.Post("/user/upgrade", r.ctrl.UserController.HandleUpgrade)
	api.Post("/translate", r.ctrl.TranslateController.HandleTranslate)

	meetings := api.Group("/meetings")
	meetings.Post("/", r.ctrl.MeetingController.HandleCreateMeeting)
	meetings.Get("/", r.ctrl.MeetingController.HandleListMeetings)
	meetings.Get("/:id", r.ctrl.MeetingController.HandleGetMeeting)
	meetings.Put("/:id", r.ctrl.MeetingController.HandleUpdateMeeting)
	meetings.Delete("/:id", r.ctrl.MeetingController.HandleDeleteMeeting)
	meetings.Post("/:id/start", r.ctrl.MeetingController.HandleStartMeeting)
	meetings.Post("/:id/end", r.ctrl.MeetingController.HandleEndMeeting)

	meetings.Get("/:id/transcripts", r.ctrl.TranscriptController.HandleGetTranscripts)
	meetings.Post("/:id/transcripts", r.ctrl.TranscriptController.HandleAddTranscript)

	meetings.Get("/:id/summary", r.ctrl.SummaryController.HandleGetSummary)
	meetings.Post("/:id/summary", r.ctrl.SummaryController.HandleGenerateSummary)
}

func (r *router) registerWebsocketRoutes() {
	ws := r.app.Group("/ws", r.ctrl.CaptureController.HandleUpgradeCheck, r.ctrl.AuthController.HandleOptionalUserHeader)
	ws.Get("/meetings/:id/capture", r.ctrl.CaptureController.HandleCapture())
	ws.Get("/meetings/:id/live", r.ctrl.CaptureController.HandleLive())
}

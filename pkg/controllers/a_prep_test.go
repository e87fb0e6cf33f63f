package controllers

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/duolog/duolog-server/pkg/config"
	"github.com/duolog/duolog-server/pkg/models"
	"github.com/duolog/duolog-server/pkg/services/db"
	insightsservice "github.com/duolog/duolog-server/pkg/services/insights"
	natsservice "github.com/duolog/duolog-server/pkg/services/nats"
	"github.com/duolog/duolog-server/pkg/services/redis"
	"github.com/glebarez/sqlite"
	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	natsserver "github.com/nats-io/nats-server/v2/test"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type testApp struct {
	app  *fiber.App
	conf *config.AppConfig
	mr   *miniredis.Miniredis
	cm   *models.CaptureModel
}

func setupApp(t *testing.T) *testApp {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	gdb, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:ctrl_%s?mode=memory&cache=shared", name)), &gorm.Config{
		Logger: logger.Discard,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if d, err := gdb.DB(); err == nil {
			_ = d.Close()
		}
	})

	mr := miniredis.RunT(t)
	rc := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rc.Close() })

	opts := natsserver.DefaultTestOptions
	opts.Port = -1
	opts.JetStream = true
	opts.StoreDir = t.TempDir()
	srv := natsserver.RunServer(&opts)
	t.Cleanup(srv.Shutdown)
	nc, err := nats.Connect(srv.ClientURL())
	require.NoError(t, err)
	t.Cleanup(nc.Close)
	js, err := jetstream.New(nc)
	require.NoError(t, err)

	conf, err := config.New(&config.AppConfig{
		DB:        gdb,
		RDS:       rc,
		NatsConn:  nc,
		JetStream: js,
		Logger:    log,
		Quota:     config.QuotaSettings{FreeSeconds: 600},
	})
	require.NoError(t, err)

	ds := dbservice.New(gdb, log)
	require.NoError(t, ds.AutoMigrate())
	rs := redisservice.New(rc, log)
	ns := natsservice.New(conf, log)
	is := insightsservice.New(context.Background(), conf, log)

	um := models.NewUserModel(conf, ds, log)
	mm := models.NewMeetingModel(conf, ds, rs, ns, um, log)
	tm := models.NewTranslateModel(is, log)
	trm := models.NewTranscriptModel(conf, ds, rs, ns, mm, tm, log)
	sm := models.NewSummaryModel(conf, ds, rs, is, ns, mm, log)
	cm := models.NewCaptureModel(conf, ds, rs, is, mm, trm, log)

	auth := NewAuthController(conf)
	health := NewHealthCheckController(conf, log)
	user := NewUserController(um)
	meeting := NewMeetingController(mm)
	transcript := NewTranscriptController(trm)
	summary := NewSummaryController(sm, log)
	translate := NewTranslateController(tm, mm)
	capture := NewCaptureController(cm, mm, trm, ns, log)

	app := fiber.New(fiber.Config{
		JSONEncoder: json.Marshal,
		JSONDecoder: json.Unmarshal,
	})
	app.Get("/healthCheck", health.HandleHealthCheck)
	app.Get("/share/:link", meeting.HandleGetSharedMeeting)

	api := app.Group("/api", auth.HandleVerifyUserHeader)
	api.Get("/user", user.HandleGetUserInfo)
	api.Post("/user/upgrade", user.HandleUpgrade)
	api.Post("/translate", translate.HandleTranslate)
	api.Post("/meetings", meeting.HandleCreateMeeting)
	api.Get("/meetings", meeting.HandleListMeetings)
	api.Get("/meetings/:id", meeting.HandleGetMeeting)
	api.Put("/meetings/:id", meeting.HandleUpdateMeeting)
	api.Delete("/meetings/:id", meeting.HandleDeleteMeeting)
	api.Post("/meetings/:id/start", meeting.HandleStartMeeting)
	api.Post("/meetings/:id/end", meeting.HandleEndMeeting)
	api.Get("/meetings/:id/transcripts", transcript.HandleGetTranscripts)
	api.Post("/meetings/:id/transcripts", transcript.HandleAddTranscript)
	api.Get("/meetings/:id/summary", summary.HandleGetSummary)
	api.Post("/meetings/:id/summary", summary.HandleGenerateSummary)

	ws := app.Group("/ws", capture.HandleUpgradeCheck, auth.HandleOptionalUserHeader)
	ws.Get("/meetings/:id/capture", capture.HandleCapture())
	ws.Get("/meetings/:id/live", capture.HandleLive())

	return &testApp{app: app, conf: conf, mr: mr, cm: cm}
}

type apiResponse struct {
	Status bool            `json:"status"`
	Msg    string          `json:"msg"`
	Data   json.RawMessage `json:"data"`
}

// call sends a JSON request as userId and decodes the common response into
// out when given.
func (ta *testApp) call(t *testing.T, method, path, userId string, body interface{}, out interface{}) (int, *apiResponse) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if userId != "" {
		req.Header.Set(ta.conf.Client.UserIdHeader, userId)
	}

	resp, err := ta.app.Test(req, 5000)
	require.NoError(t, err)
	defer resp.Body.Close()

	res := new(apiResponse)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if resp.StatusCode != http.StatusUpgradeRequired && len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, res))
		if out != nil && len(res.Data) > 0 {
			require.NoError(t, json.Unmarshal(res.Data, out))
		}
	}
	return resp.StatusCode, res
}

package models

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/benbjohnson/clock"
	"github.com/duolog/duolog-server/pkg/capture"
	"github.com/duolog/duolog-server/pkg/config"
	"github.com/duolog/duolog-server/pkg/insights"
	"github.com/duolog/duolog-server/pkg/services/db"
	insightsservice "github.com/duolog/duolog-server/pkg/services/insights"
	natsservice "github.com/duolog/duolog-server/pkg/services/nats"
	"github.com/duolog/duolog-server/pkg/services/redis"
	"github.com/glebarez/sqlite"
	natsserver "github.com/nats-io/nats-server/v2/test"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type testEnv struct {
	app   *config.AppConfig
	clk   *clock.Mock
	mr    *miniredis.Miniredis
	ds    *dbservice.DatabaseService
	rs    *redisservice.RedisService
	ns    *natsservice.NatsService
	is    *insightsservice.InsightsService
	users *UserModel

	meetings    *MeetingModel
	transcripts *TranscriptModel
	summaries   *SummaryModel
	captures    *CaptureModel
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:models_%s?mode=memory&cache=shared", name)), &gorm.Config{
		Logger: logger.Discard,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if d, err := db.DB(); err == nil {
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

	app, err := config.New(&config.AppConfig{
		DB:        db,
		RDS:       rc,
		NatsConn:  nc,
		JetStream: js,
		Logger:    log,
		Quota:     config.QuotaSettings{
			FreeSeconds:    600,
			PremiumUserIds: []string{"vip"},
		},
	})
	require.NoError(t, err)

	env := &testEnv{
		app: app,
		clk: clock.NewMock(),
		mr:  mr,
		ds:  dbservice.New(db, log),
		rs:  redisservice.New(rc, log),
		ns:  natsservice.New(app, log),
		is:  insightsservice.New(context.Background(), app, log),
	}
	require.NoError(t, env.ds.AutoMigrate())
	env.clk.Set(time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC))

	env.users = NewUserModel(app, env.ds, log)
	env.meetings = NewMeetingModel(app, env.ds, env.rs, env.ns, env.users, log)
	env.meetings.clk = env.clk
	translate := NewTranslateModel(env.is, log)
	env.transcripts = NewTranscriptModel(app, env.ds, env.rs, env.ns, env.meetings, translate, log)
	env.summaries = NewSummaryModel(app, env.ds, env.rs, env.is, env.ns, env.meetings, log)
	env.captures = NewCaptureModel(app, env.ds, env.rs, env.is, env.meetings, env.transcripts, log)
	env.captures.clk = env.clk
	return env
}

func (e *testEnv) createMeeting(t *testing.T, userId string) *MeetingInfo {
	t.Helper()
	info, err := e.meetings.CreateMeeting(userId, &CreateMeetingReq{
		Title: "Weekly sync",
		Contexts: []insights.GlossaryTerm{
			{Term: "스프린트", Meaning: "sprint"},
		},
	})
	require.NoError(t, err)
	return info
}

// events collects meeting events published on NATS.
func (e *testEnv) events(t *testing.T, meetingId string) func() []*natsservice.MeetingEvent {
	t.Helper()
	var mu sync.Mutex
	var got []*natsservice.MeetingEvent
	sub, err := e.ns.SubscribeMeetingEvents(meetingId, func(ev *natsservice.MeetingEvent) {
		mu.Lock()
		got = append(got, ev)
		mu.Unlock()
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = sub.Unsubscribe() })
	require.NoError(t, e.app.NatsConn.Flush())

	return func() []*natsservice.MeetingEvent {
		mu.Lock()
		defer mu.Unlock()
		return append([]*natsservice.MeetingEvent(nil), got...)
	}
}

type fakeRecognizer struct {
	mu     sync.Mutex
	ev     capture.Events
	locale string
	starts int
}

func (r *fakeRecognizer) SetLanguage(locale string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.locale = locale
}

func (r *fakeRecognizer) Start() error {
	r.mu.Lock()
	r.starts++
	r.mu.Unlock()
	go r.ev.OnStart()
	return nil
}

func (r *fakeRecognizer) Stop() error {
	go r.ev.OnEnd()
	return nil
}

func (r *fakeRecognizer) Abort() error {
	return nil
}

func (r *fakeRecognizer) Locale() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.locale
}

type fakeFactory struct {
	mu        sync.Mutex
	supported bool
	recs      []*fakeRecognizer
}

func (f *fakeFactory) Supported() bool {
	return f.supported
}

func (f *fakeFactory) NewRecognizer(cfg capture.RecognizerConfig, ev capture.Events) (capture.Recognizer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r := &fakeRecognizer{ev: ev, locale: cfg.Locale}
	f.recs = append(f.recs, r)
	return r, nil
}

func (f *fakeFactory) last() *fakeRecognizer {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.recs) == 0 {
		return nil
	}
	return f.recs[len(f.recs)-1]
}

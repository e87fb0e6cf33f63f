package natsservice

import (
	"context"
	"fmt"
	"sync"

	"github.com/duolog/duolog-server/pkg/config"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/sirupsen/logrus"
)

type NatsService struct {
	ctx    context.Context
	app    *config.AppConfig
	nc     *nats.Conn
	js     jetstream.JetStream
	logger *logrus.Entry

	streamMu    sync.Mutex
	streamReady bool
}

func New(app *config.AppConfig, logger *logrus.Logger) *NatsService {
	if app == nil {
		app = config.GetConfig()
	}

	return &NatsService{
		ctx:    context.Background(),
		app:    app,
		nc:     app.NatsConn,
		js:     app.JetStream,
		logger: logger.WithField("service", "nats"),
	}
}

// MeetingSubject is where all live events of one meeting are published.
func (s *NatsService) MeetingSubject(meetingId string) string {
	return fmt.Sprintf("%s.%s.transcript", s.app.NatsInfo.Subjects.Transcripts, meetingId)
}

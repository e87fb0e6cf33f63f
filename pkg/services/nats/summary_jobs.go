package natsservice

import (
	"context"
	"errors"
	"time"

	"github.com/duolog/duolog-server/pkg/config"
	"github.com/goccy/go-json"
	"github.com/nats-io/nats.go/jetstream"
)

var ErrJetStreamNotAvailable = errors.New("NATS JetStream not available")

type SummaryJob struct {
	MeetingId   string `json:"meeting_id"`
	UserId      string `json:"user_id"`
	RequestedAt int64  `json:"requested_at"`
}

// ensureSummaryStream creates the work queue stream once per service. A job
// stays in it until one worker acks it.
func (s *NatsService) ensureSummaryStream(ctx context.Context) error {
	if s.js == nil {
		return ErrJetStreamNotAvailable
	}
	s.streamMu.Lock()
	defer s.streamMu.Unlock()
	if s.streamReady {
		return nil
	}

	_, err := s.js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:      config.SummaryJobStream,
		Retention: jetstream.WorkQueuePolicy,
		Subjects:  []string{s.app.NatsInfo.Subjects.SummaryJobs},
	})
	if err != nil {
		return err
	}
	s.streamReady = true
	return nil
}

func (s *NatsService) PublishSummaryJob(job *SummaryJob) error {
	ctx, cancel := context.WithTimeout(s.ctx, 5*time.Second)
	defer cancel()
	if err := s.ensureSummaryStream(ctx); err != nil {
		return err
	}

	data, err := json.Marshal(job)
	if err != nil {
		return err
	}
	_, err = s.js.Publish(ctx, s.app.NatsInfo.Subjects.SummaryJobs, data)
	return err
}

// ConsumeSummaryJobs binds to the durable worker consumer shared by all
// servers, so each job is handled by one of them. A job is acked when
// handler returns nil and redelivered otherwise, up to
// config.SummaryJobMaxDeliver times.
func (s *NatsService) ConsumeSummaryJobs(ctx context.Context, handler func(job *SummaryJob) error) (jetstream.ConsumeContext, error) {
	if err := s.ensureSummaryStream(ctx); err != nil {
		return nil, err
	}

	cons, err := s.js.CreateOrUpdateConsumer(ctx, config.SummaryJobStream, jetstream.ConsumerConfig{
		Durable:       s.app.NatsInfo.QueueGroup,
		AckPolicy:     jetstream.AckExplicitPolicy,
		AckWait:       config.SummaryJobAckWait,
		MaxDeliver:    config.SummaryJobMaxDeliver,
		FilterSubject: s.app.NatsInfo.Subjects.SummaryJobs,
	})
	if err != nil {
		return nil, err
	}

	cc, err := cons.Consume(func(msg jetstream.Msg) {
		job := new(SummaryJob)
		if err := json.Unmarshal(msg.Data(), job); err != nil {
			s.logger.WithError(err).Errorln("failed to unmarshal summary job")
			_ = msg.Term()
			return
		}
		s.logger.Infof("received summary job for meeting %s", job.MeetingId)

		if err := handler(job); err != nil {
			if nakErr := msg.Nak(); nakErr != nil {
				s.logger.WithError(nakErr).Errorln("failed to nak summary job")
			}
			return
		}
		if err := msg.Ack(); err != nil {
			s.logger.WithError(err).Errorln("failed to ack summary job")
		}
	}, jetstream.ConsumeErrHandler(func(_ jetstream.ConsumeContext, err error) {
		s.logger.WithError(err).Errorln("summary job consumer error")
	}))
	if err != nil {
		return nil, err
	}
	s.logger.Infof("successfully consuming %s from stream %s", s.app.NatsInfo.Subjects.SummaryJobs, config.SummaryJobStream)
	return cc, nil
}

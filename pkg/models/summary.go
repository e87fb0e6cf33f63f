package models

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/duolog/duolog-server/pkg/config"
	"github.com/duolog/duolog-server/pkg/dbmodels"
	"github.com/duolog/duolog-server/pkg/services/db"
	insightsservice "github.com/duolog/duolog-server/pkg/services/insights"
	natsservice "github.com/duolog/duolog-server/pkg/services/nats"
	"github.com/duolog/duolog-server/pkg/services/redis"
	"github.com/goccy/go-json"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

type SummaryContent struct {
	Lang        string `json:"lang"`
	Summary     string `json:"summary"`
	Decisions   string `json:"decisions"`
	ActionItems string `json:"action_items"`
}

type SummaryInfo struct {
	A       SummaryContent `json:"a"`
	B       SummaryContent `json:"b"`
	Mode    string         `json:"mode"`
	Created time.Time      `json:"created"`
}

type SummaryModel struct {
	app          *config.AppConfig
	ds           *dbservice.DatabaseService
	rs           *redisservice.RedisService
	is           *insightsservice.InsightsService
	natsService  *natsservice.NatsService
	meetingModel *MeetingModel
	logger       *logrus.Entry
}

func NewSummaryModel(app *config.AppConfig, ds *dbservice.DatabaseService, rs *redisservice.RedisService, is *insightsservice.InsightsService, natsService *natsservice.NatsService, meetingModel *MeetingModel, logger *logrus.Logger) *SummaryModel {
	return &SummaryModel{
		app:          app,
		ds:           ds,
		rs:           rs,
		is:           is,
		natsService:  natsService,
		meetingModel: meetingModel,
		logger:       logger.WithField("model", "summary"),
	}
}

func (m *SummaryModel) GetSummary(userId, meetingId string) (*SummaryInfo, error) {
	meeting, err := m.meetingModel.getOwnedMeeting(userId, meetingId)
	if err != nil {
		return nil, err
	}
	summary, err := m.ds.GetSummary(meetingId)
	if err != nil {
		return nil, err
	}
	if summary == nil {
		return nil, nil
	}
	return toSummaryInfo(summary, meeting.LanguageA, meeting.LanguageB), nil
}

func (m *SummaryModel) GenerateSummary(ctx context.Context, userId, meetingId string) (*SummaryInfo, error) {
	meeting, err := m.meetingModel.getOwnedMeeting(userId, meetingId)
	if err != nil {
		return nil, err
	}

	acquired, lockValue, err := m.rs.LockSummary(ctx, meetingId, m.app.Meeting.SummaryLockTTL)
	if err != nil {
		return nil, err
	}
	if !acquired {
		return nil, ErrSummaryRunning
	}
	defer func() {
		if err := m.rs.UnlockSummary(context.Background(), meetingId, lockValue); err != nil {
			m.logger.WithError(err).WithField("meetingId", meetingId).Warnln("failed to release summary lock")
		}
	}()

	return m.generate(ctx, meeting)
}

func (m *SummaryModel) generate(ctx context.Context, meeting *dbmodels.Meeting) (*SummaryInfo, error) {
	transcript, err := m.transcriptText(meeting.ID)
	if err != nil {
		return nil, err
	}
	if transcript == "" {
		return nil, ErrNothingToSummarize
	}

	log := m.logger.WithField("meetingId", meeting.ID)
	log.Infoln("generating summary")

	var contents [2]SummaryContent
	var modes [2]string
	wg, gctx := errgroup.WithContext(ctx)
	for i, lang := range []string{meeting.LanguageA, meeting.LanguageB} {
		wg.Go(func() error {
			res, mode, err := m.is.Summarize(gctx, transcript, lang)
			if err != nil {
				return err
			}
			contents[i] = SummaryContent{
				Lang:        lang,
				Summary:     res.Summary,
				Decisions:   res.Decisions,
				ActionItems: res.ActionItems,
			}
			modes[i] = string(mode)
			return nil
		})
	}
	if err = wg.Wait(); err != nil {
		log.WithError(err).Errorln("summary generation failed")
		return nil, err
	}

	mode := modes[0]
	if modes[1] != mode {
		// one of the languages fell back to the template
		mode = modes[0] + "," + modes[1]
	}
	summary := &dbmodels.MeetingSummary{
		MeetingId:    meeting.ID,
		SummaryA:     contents[0].Summary,
		DecisionsA:   contents[0].Decisions,
		ActionItemsA: contents[0].ActionItems,
		SummaryB:     contents[1].Summary,
		DecisionsB:   contents[1].Decisions,
		ActionItemsB: contents[1].ActionItems,
		Mode:         mode,
	}
	if err = m.ds.ReplaceSummary(summary); err != nil {
		return nil, err
	}

	info := toSummaryInfo(summary, meeting.LanguageA, meeting.LanguageB)
	m.publish(meeting.ID, info)
	return info, nil
}

// transcriptText renders the meeting as "Speaker: text" lines.
func (m *SummaryModel) transcriptText(meetingId string) (string, error) {
	speakers, err := m.ds.GetSpeakers(meetingId)
	if err != nil {
		return "", err
	}
	names := make(map[uint64]string, len(speakers))
	for _, s := range speakers {
		names[s.ID] = s.Name
	}

	transcripts, err := m.ds.GetTranscripts(meetingId)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	for _, t := range transcripts {
		name, ok := names[t.SpeakerId]
		if !ok {
			name = config.UnknownSpeaker
		}
		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(name)
		sb.WriteString(": ")
		sb.WriteString(t.OriginalText)
	}
	return sb.String(), nil
}

func (m *SummaryModel) publish(meetingId string, info *SummaryInfo) {
	data, err := json.Marshal(info)
	if err != nil {
		m.logger.WithError(err).Errorln("failed to marshal summary")
		return
	}
	err = m.natsService.PublishMeetingEvent(&natsservice.MeetingEvent{
		Type:      natsservice.MeetingEventSummary,
		MeetingId: meetingId,
		Data:      data,
	})
	if err != nil {
		m.logger.WithError(err).WithField("meetingId", meetingId).Errorln("failed to publish summary")
	}
}

// SubscribeToSummaryJobs processes summaries queued when meetings end. Jobs
// that can never succeed are acked as skipped, other failures are retried.
func (m *SummaryModel) SubscribeToSummaryJobs(ctx context.Context) (jetstream.ConsumeContext, error) {
	return m.natsService.ConsumeSummaryJobs(ctx, func(job *natsservice.SummaryJob) error {
		log := m.logger.WithFields(logrus.Fields{
			"meetingId": job.MeetingId,
			"userId":    job.UserId,
		})
		_, err := m.GenerateSummary(ctx, job.UserId, job.MeetingId)
		switch {
		case err == nil:
			log.Infoln("summary job done")
		case errors.Is(err, ErrNothingToSummarize),
			errors.Is(err, ErrSummaryRunning),
			errors.Is(err, ErrMeetingNotFound),
			errors.Is(err, ErrAccessDenied):
			log.WithError(err).Infoln("summary job skipped")
		default:
			log.WithError(err).Errorln("summary job failed")
			return err
		}
		return nil
	})
}

func toSummaryInfo(s *dbmodels.MeetingSummary, langA, langB string) *SummaryInfo {
	return &SummaryInfo{
		A: SummaryContent{
			Lang:        langA,
			Summary:     s.SummaryA,
			Decisions:   s.DecisionsA,
			ActionItems: s.ActionItemsA,
		},
		B: SummaryContent{
			Lang:        langB,
			Summary:     s.SummaryB,
			Decisions:   s.DecisionsB,
			ActionItems: s.ActionItemsB,
		},
		Mode:    s.Mode,
		Created: s.Created,
	}
}

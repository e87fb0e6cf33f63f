package models

import (
	"context"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/duolog/duolog-server/pkg/config"
	"github.com/duolog/duolog-server/pkg/dbmodels"
	"github.com/duolog/duolog-server/pkg/insights"
	"github.com/duolog/duolog-server/pkg/services/db"
	natsservice "github.com/duolog/duolog-server/pkg/services/nats"
	"github.com/duolog/duolog-server/pkg/services/redis"
	"github.com/sirupsen/logrus"
)

type SpeakerInfo struct {
	Id        uint64 `json:"id"`
	Name      string `json:"name"`
	Language  string `json:"language"`
	SortOrder int    `json:"order"`
}

type MeetingInfo struct {
	Id          string                  `json:"id"`
	Title       string                  `json:"title"`
	Description string                  `json:"description,omitempty"`
	MeetingType string                  `json:"meeting_type"`
	LanguageA   string                  `json:"language_a"`
	LanguageB   string                  `json:"language_b"`
	Status      string                  `json:"status"`
	ShareLink   string                  `json:"share_link"`
	StartedAt   *time.Time              `json:"started_at,omitempty"`
	EndedAt     *time.Time              `json:"ended_at,omitempty"`
	Duration    int64                   `json:"duration"`
	Created     time.Time               `json:"created"`
	Speakers    []*SpeakerInfo          `json:"speakers,omitempty"`
	Contexts    []insights.GlossaryTerm `json:"contexts,omitempty"`
	Summary     *SummaryInfo            `json:"summary,omitempty"`
}

type MeetingModel struct {
	ctx         context.Context
	app         *config.AppConfig
	ds          *dbservice.DatabaseService
	rs          *redisservice.RedisService
	natsService *natsservice.NatsService
	userModel   *UserModel
	clk         clock.Clock
	logger      *logrus.Entry
}

func NewMeetingModel(app *config.AppConfig, ds *dbservice.DatabaseService, rs *redisservice.RedisService, natsService *natsservice.NatsService, userModel *UserModel, logger *logrus.Logger) *MeetingModel {
	return &MeetingModel{
		ctx:         context.Background(),
		app:         app,
		ds:          ds,
		rs:          rs,
		natsService: natsService,
		userModel:   userModel,
		clk:         clock.New(),
		logger:      logger.WithField("model", "meeting"),
	}
}

// getOwnedMeeting loads the meeting and makes sure userId owns it.
func (m *MeetingModel) getOwnedMeeting(userId, meetingId string) (*dbmodels.Meeting, error) {
	if userId == "" {
		return nil, ErrUserIdRequired
	}
	meeting, err := m.ds.GetMeeting(meetingId)
	if err != nil {
		return nil, err
	}
	if meeting == nil {
		return nil, ErrMeetingNotFound
	}
	if meeting.UserId != userId {
		return nil, ErrAccessDenied
	}
	return meeting, nil
}

// GetOwnedMeeting is the access check used by the live capture session.
func (m *MeetingModel) GetOwnedMeeting(userId, meetingId string) (*dbmodels.Meeting, error) {
	return m.getOwnedMeeting(userId, meetingId)
}

func (m *MeetingModel) glossary(meetingId string) ([]insights.GlossaryTerm, error) {
	contexts, err := m.ds.GetMeetingContexts(meetingId)
	if err != nil {
		return nil, err
	}
	terms := make([]insights.GlossaryTerm, 0, len(contexts))
	for _, c := range contexts {
		terms = append(terms, insights.GlossaryTerm{Term: c.Term, Meaning: c.Meaning})
	}
	return terms, nil
}

func toMeetingInfo(meeting *dbmodels.Meeting) *MeetingInfo {
	return &MeetingInfo{
		Id:          meeting.ID,
		Title:       meeting.Title,
		Description: meeting.Description,
		MeetingType: meeting.MeetingType,
		LanguageA:   meeting.LanguageA,
		LanguageB:   meeting.LanguageB,
		Status:      meeting.Status,
		ShareLink:   meeting.ShareLink,
		StartedAt:   meeting.StartedAt,
		EndedAt:     meeting.EndedAt,
		Duration:    meeting.Duration,
		Created:     meeting.Created,
	}
}

func toSpeakerInfo(s *dbmodels.Speaker) *SpeakerInfo {
	return &SpeakerInfo{
		Id:        s.ID,
		Name:      s.Name,
		Language:  s.Language,
		SortOrder: s.SortOrder,
	}
}

func (m *MeetingModel) publishStatus(meetingId, status string) {
	err := m.natsService.PublishMeetingEvent(&natsservice.MeetingEvent{
		Type:      natsservice.MeetingEventStatus,
		MeetingId: meetingId,
		Status:    status,
	})
	if err != nil {
		m.logger.WithError(err).WithField("meetingId", meetingId).Errorln("failed to publish status event")
	}
}

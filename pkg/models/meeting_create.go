package models

import (
	"strings"

	"github.com/duolog/duolog-server/pkg/config"
	"github.com/duolog/duolog-server/pkg/dbmodels"
	"github.com/duolog/duolog-server/pkg/insights"
	"github.com/duolog/duolog-server/pkg/languages"
	"github.com/google/uuid"
)

type CreateMeetingReq struct {
	Title       string                  `json:"title"`
	Description string                  `json:"description"`
	MeetingType string                  `json:"meeting_type"`
	LanguageA   string                  `json:"language_a"`
	LanguageB   string                  `json:"language_b"`
	Speakers    []string                `json:"speakers"`
	Contexts    []insights.GlossaryTerm `json:"contexts"`
}

func (m *MeetingModel) CreateMeeting(userId string, req *CreateMeetingReq) (*MeetingInfo, error) {
	if _, err := m.userModel.GetUser(userId); err != nil {
		return nil, err
	}

	meeting := &dbmodels.Meeting{
		ID:          uuid.NewString(),
		UserId:      userId,
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		MeetingType: req.MeetingType,
		LanguageA:   languages.Normalize(req.LanguageA),
		LanguageB:   languages.Normalize(req.LanguageB),
		Status:      config.MeetingStatusScheduled,
		ShareLink:   uuid.NewString(),
	}
	if meeting.Title == "" {
		meeting.Title = config.DefaultMeetingTitle
	}
	if meeting.MeetingType == "" {
		meeting.MeetingType = config.DefaultMeetingType
	}
	if meeting.LanguageA == "" {
		meeting.LanguageA = m.app.Meeting.LanguageA
	}
	if meeting.LanguageB == "" {
		meeting.LanguageB = m.app.Meeting.LanguageB
	}
	if meeting.LanguageA == meeting.LanguageB {
		return nil, ErrInvalidLanguages
	}

	speakers := []dbmodels.Speaker{
		{MeetingId: meeting.ID, Name: "Speaker 1", Language: meeting.LanguageA, SortOrder: 1},
		{MeetingId: meeting.ID, Name: "Speaker 2", Language: meeting.LanguageB, SortOrder: 2},
	}
	for i, name := range req.Speakers {
		if i >= len(speakers) {
			break
		}
		if name = strings.TrimSpace(name); name != "" {
			speakers[i].Name = name
		}
	}

	var contexts []dbmodels.MeetingContext
	for _, c := range req.Contexts {
		term := strings.TrimSpace(c.Term)
		if term == "" {
			continue
		}
		contexts = append(contexts, dbmodels.MeetingContext{
			MeetingId: meeting.ID,
			Term:      term,
			Meaning:   strings.TrimSpace(c.Meaning),
		})
	}

	if err := m.ds.CreateMeeting(meeting, speakers, contexts); err != nil {
		return nil, err
	}
	m.logger.WithFields(map[string]interface{}{
		"meetingId": meeting.ID,
		"userId":    userId,
	}).Infoln("meeting created")

	return m.GetMeetingInfo(userId, meeting.ID)
}

package models

import (
	"github.com/duolog/duolog-server/pkg/config"
)

// StartMeeting puts the meeting in progress. Users without premium need free
// time left.
func (m *MeetingModel) StartMeeting(userId, meetingId string) (*MeetingInfo, error) {
	meeting, err := m.getOwnedMeeting(userId, meetingId)
	if err != nil {
		return nil, err
	}
	user, err := m.userModel.GetUser(userId)
	if err != nil {
		return nil, err
	}
	if !m.userModel.isPremium(user) && user.FreeTimeRemaining <= 0 {
		return nil, ErrQuotaExceeded
	}

	if meeting.Status != config.MeetingStatusInProgress {
		if _, err := m.ds.StartMeeting(meetingId, m.clk.Now().UTC()); err != nil {
			return nil, err
		}
		m.logger.WithField("meetingId", meetingId).Infoln("meeting started")
		m.publishStatus(meetingId, config.MeetingStatusInProgress)
	}

	return m.GetMeetingInfo(userId, meetingId)
}

package models

import (
	"math"

	"github.com/duolog/duolog-server/pkg/config"
	natsservice "github.com/duolog/duolog-server/pkg/services/nats"
)

type EndMeetingRes struct {
	Meeting *MeetingInfo `json:"meeting"`
	// CapturedSeconds is the time audio was streamed for recognition.
	CapturedSeconds   int64 `json:"captured_seconds"`
	FreeTimeRemaining int64 `json:"free_time_remaining"`
	SummaryQueued     bool  `json:"summary_queued"`
}

// EndMeeting completes the meeting and charges its duration to the owner.
func (m *MeetingModel) EndMeeting(userId, meetingId string) (*EndMeetingRes, error) {
	meeting, err := m.getOwnedMeeting(userId, meetingId)
	if err != nil {
		return nil, err
	}
	if meeting.Status == config.MeetingStatusCompleted {
		return nil, ErrMeetingNotRunning
	}
	user, err := m.userModel.GetUser(userId)
	if err != nil {
		return nil, err
	}

	now := m.clk.Now().UTC()
	startedAt := now
	if meeting.StartedAt != nil {
		startedAt = *meeting.StartedAt
	}
	duration := int64(math.Floor(now.Sub(startedAt).Seconds()))
	if duration < 0 {
		duration = 0
	}

	premium := m.userModel.isPremium(user)
	ended, err := m.ds.EndMeeting(meetingId, now, duration, userId, !premium)
	if err != nil {
		return nil, err
	}
	if ended == 0 {
		// another request completed it first
		return nil, ErrMeetingNotRunning
	}

	res := new(EndMeetingRes)
	if res.CapturedSeconds, err = m.rs.GetCaptureUsage(meetingId); err != nil {
		m.logger.WithError(err).WithField("meetingId", meetingId).Warnln("failed to read capture usage")
	}

	m.logger.WithFields(map[string]interface{}{
		"meetingId": meetingId,
		"duration":  duration,
		"captured":  res.CapturedSeconds,
	}).Infoln("meeting ended")
	m.publishStatus(meetingId, config.MeetingStatusCompleted)

	if m.app.Meeting.AutoSummarize {
		err = m.natsService.PublishSummaryJob(&natsservice.SummaryJob{
			MeetingId:   meetingId,
			UserId:      userId,
			RequestedAt: now.Unix(),
		})
		if err != nil {
			m.logger.WithError(err).Errorln("failed to queue summary job")
		} else {
			res.SummaryQueued = true
		}
	}

	if res.Meeting, err = m.GetMeetingInfo(userId, meetingId); err != nil {
		return nil, err
	}
	if user, err = m.userModel.GetUser(userId); err != nil {
		return nil, err
	}
	res.FreeTimeRemaining = user.FreeTimeRemaining
	return res, nil
}

package models

import "strings"

type SpeakerNameReq struct {
	Id   uint64 `json:"id"`
	Name string `json:"name"`
}

type UpdateMeetingReq struct {
	Title       *string          `json:"title"`
	Description *string          `json:"description"`
	Speakers    []SpeakerNameReq `json:"speakers"`
}

func (m *MeetingModel) UpdateMeeting(userId, meetingId string, req *UpdateMeetingReq) (*MeetingInfo, error) {
	if _, err := m.getOwnedMeeting(userId, meetingId); err != nil {
		return nil, err
	}

	update := make(map[string]interface{})
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title != "" {
			update["title"] = title
		}
	}
	if req.Description != nil {
		update["description"] = strings.TrimSpace(*req.Description)
	}
	if len(update) > 0 {
		if _, err := m.ds.UpdateMeeting(meetingId, update); err != nil {
			return nil, err
		}
	}

	for _, s := range req.Speakers {
		name := strings.TrimSpace(s.Name)
		if name == "" {
			continue
		}
		speaker, err := m.ds.GetSpeaker(meetingId, s.Id)
		if err != nil {
			return nil, err
		}
		if speaker == nil {
			return nil, ErrSpeakerNotFound
		}
		if _, err = m.ds.UpdateSpeakerName(meetingId, s.Id, name); err != nil {
			return nil, err
		}
	}

	return m.GetMeetingInfo(userId, meetingId)
}

func (m *MeetingModel) DeleteMeeting(userId, meetingId string) error {
	if _, err := m.getOwnedMeeting(userId, meetingId); err != nil {
		return err
	}
	if _, err := m.ds.DeleteMeeting(meetingId); err != nil {
		return err
	}
	if err := m.rs.DeleteTranscriptHistory(meetingId); err != nil {
		m.logger.WithError(err).WithField("meetingId", meetingId).Warnln("failed to delete transcript history")
	}
	m.logger.WithField("meetingId", meetingId).Infoln("meeting deleted")
	return nil
}

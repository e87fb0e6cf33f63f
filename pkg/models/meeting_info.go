package models

type MeetingListRes struct {
	Total    int64          `json:"total"`
	Meetings []*MeetingInfo `json:"meetings"`
}

// GetMeetingInfo returns the meeting with its speakers, glossary and summary.
func (m *MeetingModel) GetMeetingInfo(userId, meetingId string) (*MeetingInfo, error) {
	meeting, err := m.getOwnedMeeting(userId, meetingId)
	if err != nil {
		return nil, err
	}
	info := toMeetingInfo(meeting)

	speakers, err := m.ds.GetSpeakers(meetingId)
	if err != nil {
		return nil, err
	}
	for i := range speakers {
		info.Speakers = append(info.Speakers, toSpeakerInfo(&speakers[i]))
	}

	if info.Contexts, err = m.glossary(meetingId); err != nil {
		return nil, err
	}

	summary, err := m.ds.GetSummary(meetingId)
	if err != nil {
		return nil, err
	}
	if summary != nil {
		info.Summary = toSummaryInfo(summary, meeting.LanguageA, meeting.LanguageB)
	}
	return info, nil
}

// GetMeetingByShareLink is the read only view used by shared links, it
// doesn't require ownership.
func (m *MeetingModel) GetMeetingByShareLink(shareLink string) (*MeetingInfo, error) {
	meeting, err := m.ds.GetMeetingByShareLink(shareLink)
	if err != nil {
		return nil, err
	}
	if meeting == nil {
		return nil, ErrMeetingNotFound
	}
	return m.GetMeetingInfo(meeting.UserId, meeting.ID)
}

func (m *MeetingModel) ListMeetings(userId string, offset, limit int) (*MeetingListRes, error) {
	if userId == "" {
		return nil, ErrUserIdRequired
	}
	meetings, total, err := m.ds.GetMeetingsByUser(userId, offset, limit)
	if err != nil {
		return nil, err
	}

	res := &MeetingListRes{
		Total:    total,
		Meetings: make([]*MeetingInfo, 0, len(meetings)),
	}
	for i := range meetings {
		res.Meetings = append(res.Meetings, toMeetingInfo(&meetings[i]))
	}
	return res, nil
}

package dbservice

import (
	"errors"

	"github.com/duolog/duolog-server/pkg/dbmodels"
	"gorm.io/gorm"
)

func (s *DatabaseService) GetMeeting(meetingId string) (*dbmodels.Meeting, error) {
	info := new(dbmodels.Meeting)
	result := s.db.Where(&dbmodels.Meeting{ID: meetingId}).Take(info)
	switch {
	case errors.Is(result.Error, gorm.ErrRecordNotFound):
		return nil, nil
	case result.Error != nil:
		return nil, result.Error
	}

	return info, nil
}

func (s *DatabaseService) GetMeetingByShareLink(shareLink string) (*dbmodels.Meeting, error) {
	info := new(dbmodels.Meeting)
	result := s.db.Where(&dbmodels.Meeting{ShareLink: shareLink}).Take(info)
	switch {
	case errors.Is(result.Error, gorm.ErrRecordNotFound):
		return nil, nil
	case result.Error != nil:
		return nil, result.Error
	}

	return info, nil
}

// GetMeetingsByUser returns one page of the user's meetings, newest first,
// together with the total count.
func (s *DatabaseService) GetMeetingsByUser(userId string, offset, limit int) ([]dbmodels.Meeting, int64, error) {
	var meetings []dbmodels.Meeting
	var total int64
	if limit <= 0 {
		limit = 20
	}

	if err := s.db.Model(&dbmodels.Meeting{}).Where("user_id = ?", userId).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	result := s.db.Where("user_id = ?", userId).Order("created DESC").Order("id").Offset(offset).Limit(limit).Find(&meetings)
	switch {
	case errors.Is(result.Error, gorm.ErrRecordNotFound):
		return nil, 0, nil
	case result.Error != nil:
		return nil, 0, result.Error
	}

	return meetings, total, nil
}

func (s *DatabaseService) GetSpeakers(meetingId string) ([]dbmodels.Speaker, error) {
	var speakers []dbmodels.Speaker
	result := s.db.Where("meeting_id = ?", meetingId).Order("sort_order").Order("id").Find(&speakers)
	if result.Error != nil {
		return nil, result.Error
	}
	return speakers, nil
}

func (s *DatabaseService) GetSpeaker(meetingId string, speakerId uint64) (*dbmodels.Speaker, error) {
	info := new(dbmodels.Speaker)
	result := s.db.Where("meeting_id = ? AND id = ?", meetingId, speakerId).Take(info)
	switch {
	case errors.Is(result.Error, gorm.ErrRecordNotFound):
		return nil, nil
	case result.Error != nil:
		return nil, result.Error
	}

	return info, nil
}

func (s *DatabaseService) GetMeetingContexts(meetingId string) ([]dbmodels.MeetingContext, error) {
	var contexts []dbmodels.MeetingContext
	result := s.db.Where("meeting_id = ?", meetingId).Order("id").Find(&contexts)
	if result.Error != nil {
		return nil, result.Error
	}
	return contexts, nil
}

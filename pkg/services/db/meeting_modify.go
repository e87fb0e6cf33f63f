package dbservice

import (
	"time"

	"github.com/duolog/duolog-server/pkg/config"
	"github.com/duolog/duolog-server/pkg/dbmodels"
	"gorm.io/gorm"
)

// CreateMeeting stores the meeting with its speakers and glossary in one
// transaction. IDs are filled in on the passed values.
func (s *DatabaseService) CreateMeeting(meeting *dbmodels.Meeting, speakers []dbmodels.Speaker, contexts []dbmodels.MeetingContext) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(meeting).Error; err != nil {
			return err
		}
		for i := range speakers {
			speakers[i].MeetingId = meeting.ID
		}
		if len(speakers) > 0 {
			if err := tx.Create(&speakers).Error; err != nil {
				return err
			}
		}
		for i := range contexts {
			contexts[i].MeetingId = meeting.ID
		}
		if len(contexts) > 0 {
			if err := tx.Create(&contexts).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *DatabaseService) UpdateMeeting(meetingId string, update map[string]interface{}) (int64, error) {
	if len(update) == 0 {
		return 0, nil
	}
	result := s.db.Model(&dbmodels.Meeting{}).Where("id = ?", meetingId).Updates(update)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

func (s *DatabaseService) UpdateSpeakerName(meetingId string, speakerId uint64, name string) (int64, error) {
	result := s.db.Model(&dbmodels.Speaker{}).
		Where("meeting_id = ? AND id = ?", meetingId, speakerId).
		Update("name", name)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// StartMeeting marks the meeting in progress. A meeting that is already
// running keeps its original start time.
func (s *DatabaseService) StartMeeting(meetingId string, startedAt time.Time) (int64, error) {
	result := s.db.Model(&dbmodels.Meeting{}).
		Where("id = ?", meetingId).
		Not("status = ?", config.MeetingStatusInProgress).
		Updates(map[string]interface{}{
			"status":     config.MeetingStatusInProgress,
			"started_at": startedAt,
		})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// EndMeeting completes a meeting that isn't completed yet and charges the
// duration to its owner in the same transaction. It returns 0 when the
// meeting was already completed, nothing is charged then.
func (s *DatabaseService) EndMeeting(meetingId string, endedAt time.Time, duration int64, userId string, deductFreeTime bool) (int64, error) {
	var affected int64
	err := s.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&dbmodels.Meeting{}).
			Where("id = ?", meetingId).
			Not("status = ?", config.MeetingStatusCompleted).
			Updates(map[string]interface{}{
				"status":   config.MeetingStatusCompleted,
				"ended_at": endedAt,
				"duration": duration,
			})
		if result.Error != nil {
			return result.Error
		}
		affected = result.RowsAffected
		if affected == 0 {
			return nil
		}
		_, err := addUserMeetingTime(tx, userId, duration, deductFreeTime)
		return err
	})
	return affected, err
}

// DeleteMeeting removes the meeting and everything that belongs to it.
func (s *DatabaseService) DeleteMeeting(meetingId string) (int64, error) {
	var affected int64
	err := s.db.Transaction(func(tx *gorm.DB) error {
		children := []interface{}{
			&dbmodels.MeetingSummary{},
			&dbmodels.Transcript{},
			&dbmodels.MeetingContext{},
			&dbmodels.Speaker{},
		}
		for _, m := range children {
			if err := tx.Where("meeting_id = ?", meetingId).Delete(m).Error; err != nil {
				return err
			}
		}
		result := tx.Where("id = ?", meetingId).Delete(&dbmodels.Meeting{})
		if result.Error != nil {
			return result.Error
		}
		affected = result.RowsAffected
		return nil
	})
	return affected, err
}

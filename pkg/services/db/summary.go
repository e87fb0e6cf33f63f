package dbservice

import (
	"errors"

	"github.com/duolog/duolog-server/pkg/dbmodels"
	"gorm.io/gorm"
)

func (s *DatabaseService) GetSummary(meetingId string) (*dbmodels.MeetingSummary, error) {
	info := new(dbmodels.MeetingSummary)
	result := s.db.Where(&dbmodels.MeetingSummary{MeetingId: meetingId}).Take(info)
	switch {
	case errors.Is(result.Error, gorm.ErrRecordNotFound):
		return nil, nil
	case result.Error != nil:
		return nil, result.Error
	}

	return info, nil
}

// ReplaceSummary deletes any existing summary of the meeting and stores the
// new one.
func (s *DatabaseService) ReplaceSummary(summary *dbmodels.MeetingSummary) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("meeting_id = ?", summary.MeetingId).Delete(&dbmodels.MeetingSummary{}).Error; err != nil {
			return err
		}
		summary.ID = 0
		return tx.Create(summary).Error
	})
}

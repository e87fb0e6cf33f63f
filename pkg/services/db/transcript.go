package dbservice

import (
	"github.com/duolog/duolog-server/pkg/dbmodels"
)

func (s *DatabaseService) InsertTranscript(t *dbmodels.Transcript) error {
	return s.db.Create(t).Error
}

// GetTranscripts returns the transcripts of a meeting in speaking order.
func (s *DatabaseService) GetTranscripts(meetingId string) ([]dbmodels.Transcript, error) {
	var list []dbmodels.Transcript
	result := s.db.Where("meeting_id = ?", meetingId).Order("start_time").Order("id").Find(&list)
	if result.Error != nil {
		return nil, result.Error
	}
	return list, nil
}

func (s *DatabaseService) CountTranscripts(meetingId string) (int64, error) {
	var total int64
	result := s.db.Model(&dbmodels.Transcript{}).Where("meeting_id = ?", meetingId).Count(&total)
	if result.Error != nil {
		return 0, result.Error
	}
	return total, nil
}

package dbservice

import (
	"errors"

	"github.com/duolog/duolog-server/pkg/dbmodels"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func (s *DatabaseService) GetUser(userId string) (*dbmodels.User, error) {
	info := new(dbmodels.User)
	result := s.db.Where(&dbmodels.User{ID: userId}).Take(info)
	switch {
	case errors.Is(result.Error, gorm.ErrRecordNotFound):
		return nil, nil
	case result.Error != nil:
		return nil, result.Error
	}

	return info, nil
}

// GetOrCreateUser returns the user, creating it with freeSeconds on first use.
func (s *DatabaseService) GetOrCreateUser(userId string, freeSeconds int64, isPremium bool) (*dbmodels.User, error) {
	u := &dbmodels.User{
		ID:                userId,
		FreeTimeRemaining: freeSeconds,
		IsPremium:         isPremium,
	}
	// two requests of a new user may race here
	result := s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(u)
	if result.Error != nil {
		return nil, result.Error
	}
	return s.GetUser(userId)
}

// AddUserMeetingTime adds duration seconds to the total meeting time. When
// deductFreeTime is set, the same amount is taken from the free time, never
// going below zero.
func (s *DatabaseService) AddUserMeetingTime(userId string, duration int64, deductFreeTime bool) (int64, error) {
	return addUserMeetingTime(s.db, userId, duration, deductFreeTime)
}

func addUserMeetingTime(db *gorm.DB, userId string, duration int64, deductFreeTime bool) (int64, error) {
	update := map[string]interface{}{
		"total_meeting_time": gorm.Expr("total_meeting_time + ?", duration),
	}
	if deductFreeTime {
		update["free_time_remaining"] = gorm.Expr("CASE WHEN free_time_remaining > ? THEN free_time_remaining - ? ELSE 0 END", duration, duration)
	}

	result := db.Model(&dbmodels.User{}).Where("id = ?", userId).Updates(update)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

func (s *DatabaseService) SetUserPremium(userId string, isPremium bool) (int64, error) {
	result := s.db.Model(&dbmodels.User{}).Where("id = ?", userId).Update("is_premium", isPremium)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

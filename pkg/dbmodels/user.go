package dbmodels

import (
	"time"

	"github.com/duolog/duolog-server/pkg/config"
)

type User struct {
	ID                string    `gorm:"column:id;primaryKey;size:64"`
	FreeTimeRemaining int64     `gorm:"column:free_time_remaining;default:0;not null"`
	IsPremium         bool      `gorm:"column:is_premium;default:false;not null"`
	TotalMeetingTime  int64     `gorm:"column:total_meeting_time;default:0;not null"`
	Created           time.Time `gorm:"column:created;not null;autoCreateTime"`
	Modified          time.Time `gorm:"column:modified;not null;autoUpdateTime"`
}

func (m *User) TableName() string {
	return config.FormatDBTable("users")
}

package dbmodels

import (
	"time"

	"github.com/duolog/duolog-server/pkg/config"
)

type Meeting struct {
	ID          string     `gorm:"column:id;primaryKey;size:36"`
	UserId      string     `gorm:"column:user_id;not null;index;size:64"`
	Title       string     `gorm:"column:title;not null"`
	Description string     `gorm:"column:description"`
	MeetingType string     `gorm:"column:meeting_type;not null"`
	LanguageA   string     `gorm:"column:language_a;not null;size:16"`
	LanguageB   string     `gorm:"column:language_b;not null;size:16"`
	Status      string     `gorm:"column:status;not null;index;size:16"`
	ShareLink   string     `gorm:"column:share_link;uniqueIndex;size:36"`
	StartedAt   *time.Time `gorm:"column:started_at"`
	EndedAt     *time.Time `gorm:"column:ended_at"`
	// Duration is in seconds.
	Duration int64     `gorm:"column:duration;default:0;not null"`
	Created  time.Time `gorm:"column:created;not null;autoCreateTime"`
	Modified time.Time `gorm:"column:modified;not null;autoUpdateTime"`
}

func (m *Meeting) TableName() string {
	return config.FormatDBTable("meetings")
}

// OtherLanguage returns the meeting language that isn't lang.
func (m *Meeting) OtherLanguage(lang string) string {
	if lang == m.LanguageA {
		return m.LanguageB
	}
	return m.LanguageA
}

type Speaker struct {
	ID        uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	MeetingId string `gorm:"column:meeting_id;not null;index;size:36"`
	Name      string `gorm:"column:name;not null"`
	Language  string `gorm:"column:language;not null;size:16"`
	SortOrder int    `gorm:"column:sort_order;default:0;not null"`
}

func (m *Speaker) TableName() string {
	return config.FormatDBTable("speakers")
}

// MeetingContext is a glossary entry of a meeting.
type MeetingContext struct {
	ID        uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	MeetingId string `gorm:"column:meeting_id;not null;index;size:36"`
	Term      string `gorm:"column:term;not null"`
	Meaning   string `gorm:"column:meaning"`
}

func (m *MeetingContext) TableName() string {
	return config.FormatDBTable("meeting_contexts")
}

package dbmodels

import (
	"time"

	"github.com/duolog/duolog-server/pkg/config"
)

type Transcript struct {
	ID             uint64  `gorm:"column:id;primaryKey;autoIncrement"`
	MeetingId      string  `gorm:"column:meeting_id;not null;index;size:36"`
	SpeakerId      uint64  `gorm:"column:speaker_id;index"`
	OriginalText   string  `gorm:"column:original_text;type:text;not null"`
	TranslatedText string  `gorm:"column:translated_text;type:text"`
	OriginalLang   string  `gorm:"column:original_lang;not null;size:16"`
	TranslatedLang string  `gorm:"column:translated_lang;size:16"`
	Confidence     float64 `gorm:"column:confidence;default:0"`
	// StartTime and EndTime are seconds from the meeting start.
	StartTime float64   `gorm:"column:start_time;default:0"`
	EndTime   float64   `gorm:"column:end_time;default:0"`
	Created   time.Time `gorm:"column:created;not null;autoCreateTime"`
}

func (m *Transcript) TableName() string {
	return config.FormatDBTable("transcripts")
}

type MeetingSummary struct {
	ID           uint64    `gorm:"column:id;primaryKey;autoIncrement"`
	MeetingId    string    `gorm:"column:meeting_id;not null;uniqueIndex;size:36"`
	SummaryA     string    `gorm:"column:summary_a;type:text"`
	DecisionsA   string    `gorm:"column:decisions_a;type:text"`
	ActionItemsA string    `gorm:"column:action_items_a;type:text"`
	SummaryB     string    `gorm:"column:summary_b;type:text"`
	DecisionsB   string    `gorm:"column:decisions_b;type:text"`
	ActionItemsB string    `gorm:"column:action_items_b;type:text"`
	Mode         string    `gorm:"column:mode;size:16"`
	Created      time.Time `gorm:"column:created;not null;autoCreateTime"`
}

func (m *MeetingSummary) TableName() string {
	return config.FormatDBTable("meeting_summaries")
}

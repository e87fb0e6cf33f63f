package config

import "time"

const (
	DefaultInterimTranslationDelay = 300 * time.Millisecond

	// provider calls
	TranslationTimeout   = 10 * time.Second
	SummarizationTimeout = 2 * time.Minute

	SummaryJobStream     = "DUOLOG_SUMMARY_JOBS"
	SummaryJobAckWait    = SummarizationTimeout + 30*time.Second
	SummaryJobMaxDeliver = 3

	MeetingStatusScheduled  = "scheduled"
	MeetingStatusInProgress = "in-progress"
	MeetingStatusCompleted  = "completed"

	DefaultMeetingTitle = "New meeting"
	DefaultMeetingType  = "in-person"
)

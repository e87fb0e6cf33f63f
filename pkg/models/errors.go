package models

import (
	"errors"

	"github.com/duolog/duolog-server/pkg/config"
)

var (
	ErrMeetingNotFound    = errors.New(config.RequestedMeetingNotExist)
	ErrAccessDenied       = errors.New(config.MeetingAccessDenied)
	ErrUserIdRequired     = errors.New(config.UserIdRequired)
	ErrQuotaExceeded      = errors.New(config.FreeTimeExhausted)
	ErrNothingToSummarize = errors.New(config.NothingToSummarize)
	ErrSummaryRunning     = errors.New(config.SummaryAlreadyRunning)
	ErrTranslationParams  = errors.New(config.TranslationParamsRequired)
	ErrSpeakerNotFound    = errors.New("speaker does not belong to this meeting")
	ErrEmptyTranscript    = errors.New("transcript text is required")
	ErrMeetingNotRunning  = errors.New("meeting is not in progress")
	ErrInvalidLanguages   = errors.New("meeting languages must be two different codes")
	ErrInvalidCommand     = errors.New("unknown capture command")
)

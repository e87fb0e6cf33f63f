package config

const (
	RequestedMeetingNotExist  = "requested meeting does not exist"
	MeetingAccessDenied       = "you don't have permission for this meeting"
	UserIdRequired            = "user id is required"
	FreeTimeExhausted         = "free usage time is exhausted, please upgrade to premium"
	NothingToSummarize        = "there is no meeting content to summarize"
	SummaryAlreadyRunning     = "summary generation is already running for this meeting"
	TranslationParamsRequired = "text, sourceLang and targetLang are required"
	InvalidRequestBody        = "invalid request body"
	UnknownSpeaker            = "Unknown"
)

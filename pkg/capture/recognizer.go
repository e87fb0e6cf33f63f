package capture

import "fmt"

// ErrorCode is the category reported by a recognizer when a session fails.
type ErrorCode string

const (
	ErrorNoSpeech             ErrorCode = "no-speech"
	ErrorAborted              ErrorCode = "aborted"
	ErrorNetwork              ErrorCode = "network"
	ErrorAudioCapture         ErrorCode = "audio-capture"
	ErrorNotAllowed           ErrorCode = "not-allowed"
	ErrorServiceNotAllowed    ErrorCode = "service-not-allowed"
	ErrorLanguageNotSupported ErrorCode = "language-not-supported"
	ErrorBadGrammar           ErrorCode = "bad-grammar"
)

type RecognitionError struct {
	Code    ErrorCode
	Message string
}

func (e RecognitionError) Error() string {
	if e.Message == "" {
		return string(e.Code)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Result is one transcript fragment. Interim fragments may still change,
// final ones never do.
type Result struct {
	Transcript string  `json:"transcript"`
	Confidence float64 `json:"confidence"`
	IsFinal    bool    `json:"is_final"`
}

type ResultEvent struct {
	Results []Result
}

// Events are the handlers a recognizer invokes. A recognizer may call them
// from any goroutine; nil handlers must be tolerated by implementations.
type Events struct {
	OnStart       func()
	OnEnd         func()
	OnAudioStart  func()
	OnSpeechStart func()
	OnResult      func(ResultEvent)
	OnError       func(RecognitionError)
}

type RecognizerConfig struct {
	Continuous      bool
	InterimResults  bool
	MaxAlternatives int
	Locale          string
}

// Recognizer is one live handle to a streaming speech recognition backend.
// Start and Stop are asynchronous, the outcome arrives through Events.
type Recognizer interface {
	// SetLanguage changes the locale used by the next Start.
	SetLanguage(locale string)
	Start() error
	Stop() error
	// Abort stops without delivering pending results.
	Abort() error
}

type RecognizerFactory interface {
	// Supported reports whether recognizers can be created at all.
	Supported() bool
	NewRecognizer(cfg RecognizerConfig, ev Events) (Recognizer, error)
}

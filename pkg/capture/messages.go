package capture

import (
	"errors"
	"fmt"
)

var ErrNotSupported = errors.New("speech recognition is not supported")

const (
	msgNotSupported     = "Speech recognition is not available on this server."
	msgInitFailed       = "Speech recognition could not be initialized."
	msgNetworkExhausted = "A network error occurred, speech recognition has stopped."
	msgCheckMicrophone  = "Please check your microphone connection."
)

// ErrorMessage is the human readable text for a recognizer error category.
func ErrorMessage(code ErrorCode) string {
	switch code {
	case ErrorNotAllowed:
		return "Microphone access was denied. Please allow microphone permission."
	case ErrorNoSpeech:
		return "No speech was detected."
	case ErrorAudioCapture:
		return "No microphone was found."
	case ErrorNetwork:
		return "A network error occurred."
	case ErrorAborted:
		return "Speech recognition was aborted."
	case ErrorLanguageNotSupported:
		return "The selected language is not supported."
	case ErrorServiceNotAllowed:
		return "The speech recognition service is not available."
	}
	return fmt.Sprintf("Speech recognition error: %s", code)
}

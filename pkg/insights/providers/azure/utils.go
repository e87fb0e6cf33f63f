package azure

import (
	"github.com/Microsoft/cognitive-services-speech-sdk-go/common"
	"github.com/duolog/duolog-server/pkg/capture"
	"github.com/goccy/go-json"
)

// errorCodeFor maps an Azure cancellation to the recognizer error category
// the capture controller knows how to recover from.
func errorCodeFor(code common.CancellationErrorCode) capture.ErrorCode {
	switch code {
	case common.ConnectionFailure, common.ServiceTimeout, common.ServiceError, common.TooManyRequests:
		return capture.ErrorNetwork
	case common.AuthenticationFailure, common.Forbidden:
		return capture.ErrorNotAllowed
	case common.ServiceUnavailable:
		return capture.ErrorServiceNotAllowed
	case common.RuntimeError:
		return capture.ErrorAudioCapture
	case common.BadRequest:
		return capture.ErrorLanguageNotSupported
	}
	return capture.ErrorCode("unknown")
}

// confidenceFromJSON reads the confidence of the best hypothesis from the
// detailed recognition result.
func confidenceFromJSON(raw string) float64 {
	if raw == "" {
		return 0
	}
	var res struct {
		NBest []struct {
			Confidence float64 `json:"Confidence"`
		} `json:"NBest"`
	}
	if err := json.Unmarshal([]byte(raw), &res); err != nil || len(res.NBest) == 0 {
		return 0
	}
	return res.NBest[0].Confidence
}

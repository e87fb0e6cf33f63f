package azure

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Microsoft/cognitive-services-speech-sdk-go/audio"
	"github.com/Microsoft/cognitive-services-speech-sdk-go/common"
	"github.com/Microsoft/cognitive-services-speech-sdk-go/speech"
	"github.com/duolog/duolog-server/pkg/capture"
	"github.com/duolog/duolog-server/pkg/config"
	"github.com/duolog/duolog-server/pkg/insights"
	"github.com/sirupsen/logrus"
)

var errAlreadyStarted = errors.New("recognition has already started")

// recognizer implements capture.Recognizer. Every Start opens a new Azure
// session with its own push stream.
type recognizer struct {
	creds  config.CredentialsConfig
	feed   *insights.AudioFeed
	events capture.Events
	cfg    capture.RecognizerConfig
	log    *logrus.Entry

	mu      sync.Mutex
	locale  string
	current *session
	aborted bool
}

type session struct {
	speechConfig *speech.SpeechConfig
	audioConfig  *audio.AudioConfig
	stream       *audio.PushAudioInputStream
	rec          *speech.SpeechRecognizer
	detach       func()

	once sync.Once
}

func (r *recognizer) SetLanguage(locale string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.locale = locale
}

func (r *recognizer) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.aborted {
		return errors.New("recognizer was aborted")
	}
	if r.current != nil {
		return errAlreadyStarted
	}

	s, err := r.openSession(r.locale)
	if err != nil {
		return err
	}
	r.current = s
	r.hook(s)
	s.detach = r.feed.Attach(func(p []byte) error {
		return s.stream.Write(p)
	})

	go func() {
		// StartContinuousRecognitionAsync returns a channel with the outcome of the async operation.
		if err := <-s.rec.StartContinuousRecognitionAsync(); err != nil {
			r.log.WithError(err).Errorln("error starting azure recognition")
			r.emitError(capture.RecognitionError{Code: capture.ErrorNetwork, Message: err.Error()})
			r.finish(s, true)
		}
	}()
	return nil
}

func (r *recognizer) Stop() error {
	s := r.session()
	if s == nil {
		return nil
	}
	go func() {
		if err := <-s.rec.StopContinuousRecognitionAsync(); err != nil {
			r.log.WithError(err).Warnln("stopping azure recognition failed")
		}
		r.finish(s, true)
	}()
	return nil
}

// Abort closes the session right away, nothing is delivered afterwards.
func (r *recognizer) Abort() error {
	r.mu.Lock()
	r.aborted = true
	s := r.current
	r.mu.Unlock()

	if s != nil {
		go func() {
			<-s.rec.StopContinuousRecognitionAsync()
			r.finish(s, false)
		}()
	}
	return nil
}

func (r *recognizer) session() *session {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

func (r *recognizer) openSession(locale string) (*session, error) {
	s := new(session)
	var err error

	s.speechConfig, err = speech.NewSpeechConfigFromSubscription(r.creds.APIKey, r.creds.Region)
	if err != nil {
		return nil, err
	}
	if err = s.speechConfig.SetSpeechRecognitionLanguage(locale); err != nil {
		s.close()
		return nil, err
	}
	// the detailed format carries the confidence of the best hypothesis
	if err = s.speechConfig.SetOutputFormat(common.Detailed); err != nil {
		s.close()
		return nil, err
	}

	audioFormat, err := audio.GetWaveFormatPCM(16000, 16, 1)
	if err != nil {
		s.close()
		return nil, fmt.Errorf("could not create audio format: %v", err)
	}
	defer audioFormat.Close()

	s.stream, err = audio.CreatePushAudioInputStreamFromFormat(audioFormat)
	if err != nil {
		s.close()
		return nil, fmt.Errorf("could not create audio config from custom inputStream: %v", err)
	}
	s.audioConfig, err = audio.NewAudioConfigFromStreamInput(s.stream)
	if err != nil {
		s.close()
		return nil, err
	}
	s.rec, err = speech.NewSpeechRecognizerFromConfig(s.speechConfig, s.audioConfig)
	if err != nil {
		s.close()
		return nil, err
	}
	return s, nil
}

func (r *recognizer) hook(s *session) {
	s.rec.SessionStarted(func(event speech.SessionEventArgs) {
		defer event.Close()
		if !r.live(s) {
			return
		}
		r.log.Infoln("azure transcription started")
		if r.events.OnStart != nil {
			r.events.OnStart()
		}
		if r.events.OnAudioStart != nil {
			r.events.OnAudioStart()
		}
	})
	s.rec.SessionStopped(func(event speech.SessionEventArgs) {
		defer event.Close()
		r.log.Infoln("azure transcription stopped")
		r.sessionStopped(s)
	})
	s.rec.SpeechStartDetected(func(event speech.RecognitionEventArgs) {
		defer event.Close()
		if r.live(s) && r.events.OnSpeechStart != nil {
			r.events.OnSpeechStart()
		}
	})

	s.rec.Recognizing(func(event speech.SpeechRecognitionEventArgs) {
		defer event.Close()
		if !r.cfg.InterimResults || !r.live(s) || event.Result.Text == "" {
			return
		}
		r.emitResult(capture.Result{Transcript: event.Result.Text})
	})
	s.rec.Recognized(func(event speech.SpeechRecognitionEventArgs) {
		defer event.Close()
		if !r.live(s) {
			return
		}
		// NoMatch is a silent segment, the session keeps running
		if event.Result.Reason != common.RecognizedSpeech || event.Result.Text == "" {
			return
		}
		raw := event.Result.Properties.GetProperty(common.SpeechServiceResponseJSONResult, "")
		r.emitResult(capture.Result{
			Transcript: event.Result.Text,
			Confidence: confidenceFromJSON(raw),
			IsFinal:    true,
		})
	})

	s.rec.Canceled(func(event speech.SpeechRecognitionCanceledEventArgs) {
		defer event.Close()
		if event.Reason != common.Error {
			return
		}
		r.log.Infof("azure transcription canceled: %v", event.ErrorDetails)
		if r.live(s) {
			r.emitError(capture.RecognitionError{
				Code:    errorCodeFor(event.ErrorCode),
				Message: event.ErrorDetails,
			})
		}
	})
}

// sessionStopped runs on the SDK callback thread, which must return before
// the recognizer handle may be closed.
func (r *recognizer) sessionStopped(s *session) {
	go r.finish(s, true)
}

func (r *recognizer) live(s *session) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return !r.aborted && r.current == s
}

func (r *recognizer) emitResult(res capture.Result) {
	if r.events.OnResult != nil {
		r.events.OnResult(capture.ResultEvent{Results: []capture.Result{res}})
	}
}

func (r *recognizer) emitError(e capture.RecognitionError) {
	if r.events.OnError != nil {
		r.events.OnError(e)
	}
}

// finish releases s once. notify reports the end of the session unless the
// recognizer was aborted.
func (r *recognizer) finish(s *session, notify bool) {
	s.once.Do(func() {
		r.mu.Lock()
		wasCurrent := r.current == s
		if wasCurrent {
			r.current = nil
		}
		aborted := r.aborted
		r.mu.Unlock()

		if s.detach != nil {
			s.detach()
		}
		s.close()

		if notify && wasCurrent && !aborted && r.events.OnEnd != nil {
			r.events.OnEnd()
		}
	})
}

func (s *session) close() {
	if s.stream != nil {
		s.stream.CloseStream()
	}
	if s.rec != nil {
		s.rec.Close()
	}
	if s.audioConfig != nil {
		s.audioConfig.Close()
	}
	if s.stream != nil {
		s.stream.Close()
	}
	if s.speechConfig != nil {
		s.speechConfig.Close()
	}
}

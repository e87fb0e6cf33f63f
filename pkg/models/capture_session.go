package models

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/duolog/duolog-server/pkg/capture"
	"github.com/duolog/duolog-server/pkg/config"
	"github.com/duolog/duolog-server/pkg/dbmodels"
	"github.com/duolog/duolog-server/pkg/insights"
	"github.com/duolog/duolog-server/pkg/languages"
	"github.com/duolog/duolog-server/pkg/services/db"
	insightsservice "github.com/duolog/duolog-server/pkg/services/insights"
	"github.com/duolog/duolog-server/pkg/services/redis"
	"github.com/gammazero/workerpool"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type CaptureMessageType string

const (
	CaptureMsgState              CaptureMessageType = "state"
	CaptureMsgInterim            CaptureMessageType = "interim"
	CaptureMsgInterimTranslation CaptureMessageType = "interim_translation"
	CaptureMsgTranscript         CaptureMessageType = "transcript"
	CaptureMsgError              CaptureMessageType = "error"
	CaptureMsgEnd                CaptureMessageType = "end"
)

// CaptureMessage is sent from the server to the capturing client.
type CaptureMessage struct {
	Type       CaptureMessageType `json:"type"`
	State      string             `json:"state,omitempty"`
	Listening  bool               `json:"listening"`
	Text       string             `json:"text,omitempty"`
	Lang       string             `json:"lang,omitempty"`
	Mode       string             `json:"mode,omitempty"`
	Message    string             `json:"message,omitempty"`
	Transcript *TranscriptInfo    `json:"transcript,omitempty"`
}

type CaptureCommandType string

const (
	CaptureCmdStart    CaptureCommandType = "start"
	CaptureCmdStop     CaptureCommandType = "stop"
	CaptureCmdReset    CaptureCommandType = "reset"
	CaptureCmdLanguage CaptureCommandType = "language"
	CaptureCmdSpeaker  CaptureCommandType = "speaker"
)

// CaptureCommand is sent by the capturing client as a text frame.
type CaptureCommand struct {
	Type      CaptureCommandType `json:"type"`
	Lang      string             `json:"lang,omitempty"`
	SpeakerId uint64             `json:"speaker_id,omitempty"`
}

type CaptureSessionReq struct {
	UserId    string
	MeetingId string
	// SpeakerId 0 selects the first speaker.
	SpeakerId uint64
	Lang      string
}

type CaptureModel struct {
	ctx             context.Context
	app             *config.AppConfig
	ds              *dbservice.DatabaseService
	rs              *redisservice.RedisService
	is              *insightsservice.InsightsService
	meetingModel    *MeetingModel
	transcriptModel *TranscriptModel
	clk             clock.Clock
	logger          *logrus.Logger

	// newFactory builds the recognizer backend of a session.
	newFactory func(feed *insights.AudioFeed) capture.RecognizerFactory
}

func NewCaptureModel(app *config.AppConfig, ds *dbservice.DatabaseService, rs *redisservice.RedisService, is *insightsservice.InsightsService, meetingModel *MeetingModel, transcriptModel *TranscriptModel, logger *logrus.Logger) *CaptureModel {
	return &CaptureModel{
		ctx:             context.Background(),
		app:             app,
		ds:              ds,
		rs:              rs,
		is:              is,
		meetingModel:    meetingModel,
		transcriptModel: transcriptModel,
		clk:             clock.New(),
		logger:          logger,
		newFactory:      is.RecognizerFactory,
	}
}

// SetRecognizerFactory replaces the recognizer backend used by sessions
// created afterwards.
func (m *CaptureModel) SetRecognizerFactory(fn func(feed *insights.AudioFeed) capture.RecognizerFactory) {
	m.newFactory = fn
}

func (m *CaptureModel) timing() capture.Timing {
	c := m.app.Capture
	return capture.Timing{
		RestartDelay:             c.RestartDelay,
		MaxRestartDelay:          c.MaxRestartDelay,
		NoSpeechRestartDelay:     c.NoSpeechRestartDelay,
		AudioCaptureRestartDelay: c.AudioCaptureRestartDelay,
		RefreshStartDelay:        c.RefreshStartDelay,
		RefreshInterval:          c.RefreshInterval,
		StaleAfter:               c.StaleAfter,
		MaxConsecutiveErrors:     c.MaxConsecutiveErrors,
	}
}

// NewSession prepares a capture session for a speaker of the meeting.
// Capturing only begins with the start command.
func (m *CaptureModel) NewSession(req *CaptureSessionReq, send func(*CaptureMessage)) (*CaptureSession, error) {
	meeting, err := m.meetingModel.getOwnedMeeting(req.UserId, req.MeetingId)
	if err != nil {
		return nil, err
	}
	if meeting.Status == config.MeetingStatusCompleted {
		return nil, ErrMeetingNotRunning
	}

	speaker, err := m.findSpeaker(meeting.ID, req.SpeakerId)
	if err != nil {
		return nil, err
	}
	lang := languages.Normalize(req.Lang)
	if lang == "" {
		lang = speaker.Language
	}

	ctx, cancel := context.WithCancel(m.ctx)
	s := &CaptureSession{
		id:        uuid.NewString(),
		ctx:       ctx,
		cancel:    cancel,
		model:     m,
		meeting:   meeting,
		feed:      insights.NewAudioFeed(),
		finals:    workerpool.New(1),
		debouncer: NewDebouncer(m.clk, m.app.Capture.InterimTranslationDelay),
		send:      send,
		speakerId: speaker.ID,
		lang:      lang,
	}
	s.logger = m.logger.WithFields(logrus.Fields{
		"model":     "capture",
		"meetingId": meeting.ID,
		"sessionId": s.id,
	})

	interim := true
	if m.app.Capture.InterimResults != nil {
		interim = *m.app.Capture.InterimResults
	}
	s.controller = capture.NewController(m.newFactory(s.feed), capture.Options{
		Language:           lang,
		Continuous:         true,
		InterimResults:     interim,
		ResetErrorsOnStart: m.app.Capture.ResetErrorsOnStart,
		Timing:             m.timing(),
		OnResult:           s.onResult,
		OnError:            s.onError,
		OnEnd:              s.onEnd,
		OnInterim:          s.onInterim,
		OnStateChange:      s.onStateChange,
	}, capture.NewScheduler(m.clk), m.logger)

	return s, nil
}

func (m *CaptureModel) findSpeaker(meetingId string, speakerId uint64) (*dbmodels.Speaker, error) {
	if speakerId != 0 {
		speaker, err := m.ds.GetSpeaker(meetingId, speakerId)
		if err != nil {
			return nil, err
		}
		if speaker == nil {
			return nil, ErrSpeakerNotFound
		}
		return speaker, nil
	}

	speakers, err := m.ds.GetSpeakers(meetingId)
	if err != nil {
		return nil, err
	}
	if len(speakers) == 0 {
		return nil, ErrSpeakerNotFound
	}
	return &speakers[0], nil
}

// CaptureSession bridges one websocket to a capture controller. Final
// results are translated and stored one at a time, in order.
type CaptureSession struct {
	id         string
	ctx        context.Context
	cancel     context.CancelFunc
	model      *CaptureModel
	meeting    *dbmodels.Meeting
	feed       *insights.AudioFeed
	controller *capture.Controller
	finals     *workerpool.WorkerPool
	debouncer  *Debouncer
	send       func(*CaptureMessage)
	logger     *logrus.Entry

	mu            sync.Mutex
	speakerId     uint64
	lang          string
	usageRecorded bool
	closing       bool
	// set once no more finals may be queued
	closed bool
	// offset of the first interim result of the current utterance
	utteranceStart *float64
}

func (s *CaptureSession) Id() string {
	return s.id
}

// Controller exposes the underlying capture controller, mostly for status.
func (s *CaptureSession) Controller() *capture.Controller {
	return s.controller
}

// WriteAudio feeds PCM frames to the running recognizer.
func (s *CaptureSession) WriteAudio(p []byte) error {
	_, err := s.feed.Write(p)
	return err
}

func (s *CaptureSession) HandleCommand(cmd *CaptureCommand) error {
	switch cmd.Type {
	case CaptureCmdStart:
		s.controller.StartListening()
	case CaptureCmdStop:
		s.controller.StopListening()
	case CaptureCmdReset:
		s.debouncer.Cancel()
		s.controller.ResetTranscript()
	case CaptureCmdLanguage:
		lang := languages.Normalize(cmd.Lang)
		if lang == "" {
			return ErrInvalidCommand
		}
		s.setLanguage(lang)
	case CaptureCmdSpeaker:
		speaker, err := s.model.findSpeaker(s.meeting.ID, cmd.SpeakerId)
		if err != nil {
			return err
		}
		s.mu.Lock()
		s.speakerId = speaker.ID
		s.mu.Unlock()

		lang := languages.Normalize(cmd.Lang)
		if lang == "" {
			lang = speaker.Language
		}
		s.setLanguage(lang)
	default:
		return ErrInvalidCommand
	}
	return nil
}

func (s *CaptureSession) setLanguage(lang string) {
	s.mu.Lock()
	s.lang = lang
	s.mu.Unlock()
	s.debouncer.Cancel()
	s.controller.SetLanguage(lang)
}

func (s *CaptureSession) current() (uint64, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.speakerId, s.lang
}

// Close stops capturing, waits for pending transcripts and records usage.
func (s *CaptureSession) Close() {
	s.mu.Lock()
	if s.closing {
		s.mu.Unlock()
		return
	}
	s.closing = true
	s.mu.Unlock()

	s.debouncer.Cancel()
	// finals still queued in the controller are submitted before this returns
	s.controller.Close()
	s.debouncer.Cancel()

	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.finals.StopWait()
	s.endUsage()
	s.cancel()
	s.logger.Debugln("capture session closed")
}

func (s *CaptureSession) emit(msg *CaptureMessage) {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed && msg.Type != CaptureMsgTranscript {
		return
	}
	s.send(msg)
}

func (s *CaptureSession) sendError(message string) {
	s.emit(&CaptureMessage{
		Type:      CaptureMsgError,
		Message:   message,
		Listening: s.controller.IsListening(),
	})
}

func (s *CaptureSession) onStateChange(state capture.State) {
	switch state {
	case capture.StateListening:
		s.startUsage()
	case capture.StateIdle, capture.StateFailed:
		s.endUsage()
	}
	s.emit(&CaptureMessage{
		Type:      CaptureMsgState,
		State:     state.String(),
		Listening: state == capture.StateListening,
	})
}

func (s *CaptureSession) onError(message string) {
	s.sendError(message)
}

func (s *CaptureSession) onEnd() {
	s.emit(&CaptureMessage{Type: CaptureMsgEnd})
}

func (s *CaptureSession) onInterim(text string) {
	_, lang := s.current()
	s.emit(&CaptureMessage{
		Type:      CaptureMsgInterim,
		Text:      text,
		Lang:      lang,
		Listening: true,
	})

	if strings.TrimSpace(text) == "" {
		s.debouncer.Cancel()
		return
	}
	s.mu.Lock()
	if s.utteranceStart == nil {
		start := s.offset()
		s.utteranceStart = &start
	}
	s.mu.Unlock()

	s.debouncer.Call(func() {
		target := s.meeting.OtherLanguage(lang)
		out, mode := s.model.is.Translate(s.ctx, &insights.TranslationRequest{
			Text:       text,
			SourceLang: lang,
			TargetLang: target,
		})
		if s.ctx.Err() != nil {
			return
		}
		s.emit(&CaptureMessage{
			Type: CaptureMsgInterimTranslation,
			Text: out,
			Lang: target,
			Mode: string(mode),
		})
	})
}

func (s *CaptureSession) onResult(r capture.Result) {
	text := strings.TrimSpace(r.Transcript)
	if text == "" {
		return
	}
	s.debouncer.Cancel()

	speakerId, lang := s.current()
	end := s.offset()
	start := end
	s.mu.Lock()
	if s.utteranceStart != nil {
		start = *s.utteranceStart
		s.utteranceStart = nil
	}
	s.mu.Unlock()

	req := &AddTranscriptReq{
		SpeakerId:  speakerId,
		Text:       text,
		Lang:       lang,
		Confidence: r.Confidence,
		StartTime:  start,
		EndTime:    end,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		s.logger.WithField("text", text).Warnln("session closed, transcript dropped")
		return
	}
	s.finals.Submit(func() {
		info, err := s.model.transcriptModel.addTranscript(s.ctx, s.meeting, req)
		if err != nil {
			s.logger.WithError(err).Errorln("failed to store transcript")
			s.sendError(err.Error())
			return
		}
		s.emit(&CaptureMessage{
			Type:       CaptureMsgTranscript,
			Transcript: info,
			Listening:  s.controller.IsListening(),
		})
	})
}

// offset is the time in seconds since the meeting started.
func (s *CaptureSession) offset() float64 {
	if s.meeting.StartedAt == nil {
		return 0
	}
	d := s.model.clk.Now().Sub(*s.meeting.StartedAt)
	if d < 0 {
		return 0
	}
	return float64(d.Round(time.Millisecond)) / float64(time.Second)
}

func (s *CaptureSession) startUsage() {
	s.mu.Lock()
	if s.usageRecorded {
		s.mu.Unlock()
		return
	}
	s.usageRecorded = true
	s.mu.Unlock()

	if err := s.model.rs.CaptureSessionStarted(s.meeting.ID, s.id, s.model.clk.Now()); err != nil {
		s.logger.WithError(err).Warnln("failed to record capture start")
	}
}

func (s *CaptureSession) endUsage() {
	s.mu.Lock()
	if !s.usageRecorded {
		s.mu.Unlock()
		return
	}
	s.usageRecorded = false
	s.mu.Unlock()

	used, err := s.model.rs.CaptureSessionEnded(s.meeting.ID, s.id, s.model.clk.Now())
	if err != nil {
		s.logger.WithError(err).Warnln("failed to record capture end")
		return
	}
	s.logger.WithField("seconds", used).Debugln("capture usage recorded")
}

package models

import (
	"context"
	"strings"
	"time"

	"github.com/duolog/duolog-server/pkg/config"
	"github.com/duolog/duolog-server/pkg/dbmodels"
	"github.com/duolog/duolog-server/pkg/languages"
	"github.com/duolog/duolog-server/pkg/services/db"
	natsservice "github.com/duolog/duolog-server/pkg/services/nats"
	"github.com/duolog/duolog-server/pkg/services/redis"
	"github.com/goccy/go-json"
	"github.com/sirupsen/logrus"
)

type AddTranscriptReq struct {
	SpeakerId uint64 `json:"speaker_id"`
	Text      string `json:"text"`
	// Lang defaults to the language of the speaker.
	Lang           string  `json:"lang"`
	TranslatedText string  `json:"translated_text"`
	TranslatedLang string  `json:"translated_lang"`
	Confidence     float64 `json:"confidence"`
	StartTime      float64 `json:"start_time"`
	EndTime        float64 `json:"end_time"`
}

type TranscriptInfo struct {
	Id             uint64    `json:"id"`
	SpeakerId      uint64    `json:"speaker_id"`
	SpeakerName    string    `json:"speaker_name"`
	OriginalText   string    `json:"original_text"`
	OriginalLang   string    `json:"original_lang"`
	TranslatedText string    `json:"translated_text"`
	TranslatedLang string    `json:"translated_lang"`
	Confidence     float64   `json:"confidence"`
	StartTime      float64   `json:"start_time"`
	EndTime        float64   `json:"end_time"`
	Mode           string    `json:"mode,omitempty"`
	Created        time.Time `json:"created"`
}

type TranscriptModel struct {
	app          *config.AppConfig
	ds           *dbservice.DatabaseService
	rs           *redisservice.RedisService
	natsService  *natsservice.NatsService
	meetingModel *MeetingModel
	translator   *TranslateModel
	logger       *logrus.Entry
}

func NewTranscriptModel(app *config.AppConfig, ds *dbservice.DatabaseService, rs *redisservice.RedisService, natsService *natsservice.NatsService, meetingModel *MeetingModel, translator *TranslateModel, logger *logrus.Logger) *TranscriptModel {
	return &TranscriptModel{
		app:          app,
		ds:           ds,
		rs:           rs,
		natsService:  natsService,
		meetingModel: meetingModel,
		translator:   translator,
		logger:       logger.WithField("model", "transcript"),
	}
}

func (m *TranscriptModel) AddTranscript(ctx context.Context, userId, meetingId string, req *AddTranscriptReq) (*TranscriptInfo, error) {
	meeting, err := m.meetingModel.getOwnedMeeting(userId, meetingId)
	if err != nil {
		return nil, err
	}
	return m.addTranscript(ctx, meeting, req)
}

// addTranscript translates when needed, stores the utterance and pushes it
// to live viewers.
func (m *TranscriptModel) addTranscript(ctx context.Context, meeting *dbmodels.Meeting, req *AddTranscriptReq) (*TranscriptInfo, error) {
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return nil, ErrEmptyTranscript
	}
	speaker, err := m.ds.GetSpeaker(meeting.ID, req.SpeakerId)
	if err != nil {
		return nil, err
	}
	if speaker == nil {
		return nil, ErrSpeakerNotFound
	}

	lang := languages.Normalize(req.Lang)
	if lang == "" {
		lang = speaker.Language
	}
	target := languages.Normalize(req.TranslatedLang)
	if target == "" {
		target = meeting.OtherLanguage(lang)
	}

	var mode string
	translated := strings.TrimSpace(req.TranslatedText)
	if translated == "" {
		glossary, err := m.meetingModel.glossary(meeting.ID)
		if err != nil {
			return nil, err
		}
		res, err := m.translator.Translate(ctx, &TranslateReq{
			Text:       text,
			SourceLang: lang,
			TargetLang: target,
		}, glossary)
		if err != nil {
			return nil, err
		}
		translated, mode = res.TranslatedText, res.Mode
	}

	t := &dbmodels.Transcript{
		MeetingId:      meeting.ID,
		SpeakerId:      speaker.ID,
		OriginalText:   text,
		TranslatedText: translated,
		OriginalLang:   lang,
		TranslatedLang: target,
		Confidence:     req.Confidence,
		StartTime:      req.StartTime,
		EndTime:        req.EndTime,
	}
	if err = m.ds.InsertTranscript(t); err != nil {
		return nil, err
	}

	info := toTranscriptInfo(t, speaker.Name)
	info.Mode = mode
	m.broadcast(meeting.ID, info)
	return info, nil
}

func (m *TranscriptModel) broadcast(meetingId string, info *TranscriptInfo) {
	log := m.logger.WithFields(logrus.Fields{
		"meetingId":    meetingId,
		"transcriptId": info.Id,
	})

	err := m.rs.AddTranscriptToHistory(meetingId, &redisservice.TranscriptChunk{
		TranscriptId:   info.Id,
		SpeakerId:      info.SpeakerId,
		SpeakerName:    info.SpeakerName,
		OriginalLang:   info.OriginalLang,
		OriginalText:   info.OriginalText,
		TranslatedLang: info.TranslatedLang,
		TranslatedText: info.TranslatedText,
	}, m.app.Meeting.HistoryTTL)
	if err != nil {
		log.WithError(err).Warnln("failed to add transcript to live history")
	}

	data, err := json.Marshal(info)
	if err != nil {
		log.WithError(err).Errorln("failed to marshal transcript")
		return
	}
	err = m.natsService.PublishMeetingEvent(&natsservice.MeetingEvent{
		Type:      natsservice.MeetingEventTranscript,
		MeetingId: meetingId,
		Data:      data,
	})
	if err != nil {
		log.WithError(err).Errorln("failed to publish transcript")
	}
}

func (m *TranscriptModel) GetTranscripts(userId, meetingId string) ([]*TranscriptInfo, error) {
	if _, err := m.meetingModel.getOwnedMeeting(userId, meetingId); err != nil {
		return nil, err
	}
	return m.getTranscripts(meetingId)
}

func (m *TranscriptModel) getTranscripts(meetingId string) ([]*TranscriptInfo, error) {
	speakers, err := m.ds.GetSpeakers(meetingId)
	if err != nil {
		return nil, err
	}
	names := make(map[uint64]string, len(speakers))
	for _, s := range speakers {
		names[s.ID] = s.Name
	}

	transcripts, err := m.ds.GetTranscripts(meetingId)
	if err != nil {
		return nil, err
	}
	out := make([]*TranscriptInfo, 0, len(transcripts))
	for i := range transcripts {
		out = append(out, toTranscriptInfo(&transcripts[i], names[transcripts[i].SpeakerId]))
	}
	return out, nil
}

// LiveHistory is what a viewer joining a running meeting gets first.
func (m *TranscriptModel) LiveHistory(meetingId string) ([]*redisservice.TranscriptChunk, error) {
	return m.rs.GetTranscriptHistory(meetingId)
}

func toTranscriptInfo(t *dbmodels.Transcript, speakerName string) *TranscriptInfo {
	return &TranscriptInfo{
		Id:             t.ID,
		SpeakerId:      t.SpeakerId,
		SpeakerName:    speakerName,
		OriginalText:   t.OriginalText,
		OriginalLang:   t.OriginalLang,
		TranslatedText: t.TranslatedText,
		TranslatedLang: t.TranslatedLang,
		Confidence:     t.Confidence,
		StartTime:      t.StartTime,
		EndTime:        t.EndTime,
		Created:        t.Created,
	}
}

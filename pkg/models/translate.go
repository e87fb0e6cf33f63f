package models

import (
	"context"
	"strings"

	"github.com/duolog/duolog-server/pkg/insights"
	"github.com/duolog/duolog-server/pkg/languages"
	insightsservice "github.com/duolog/duolog-server/pkg/services/insights"
	"github.com/sirupsen/logrus"
)

type TranslateReq struct {
	Text       string `json:"text"`
	SourceLang string `json:"source_lang"`
	TargetLang string `json:"target_lang"`
	// MeetingId is optional, its glossary is used when given.
	MeetingId string `json:"meeting_id,omitempty"`
}

type TranslateRes struct {
	TranslatedText string `json:"translated_text"`
	SourceLang     string `json:"source_lang"`
	TargetLang     string `json:"target_lang"`
	Mode           string `json:"mode"`
}

type TranslateModel struct {
	is     *insightsservice.InsightsService
	logger *logrus.Entry
}

func NewTranslateModel(is *insightsservice.InsightsService, logger *logrus.Logger) *TranslateModel {
	return &TranslateModel{
		is:     is,
		logger: logger.WithField("model", "translate"),
	}
}

func (m *TranslateModel) Translate(ctx context.Context, req *TranslateReq, glossary []insights.GlossaryTerm) (*TranslateRes, error) {
	source := languages.Normalize(req.SourceLang)
	target := languages.Normalize(req.TargetLang)
	if strings.TrimSpace(req.Text) == "" || source == "" || target == "" {
		return nil, ErrTranslationParams
	}

	out, mode := m.is.Translate(ctx, &insights.TranslationRequest{
		Text:       req.Text,
		SourceLang: source,
		TargetLang: target,
		Glossary:   glossary,
	})
	return &TranslateRes{
		TranslatedText: out,
		SourceLang:     source,
		TargetLang:     target,
		Mode:           string(mode),
	}, nil
}

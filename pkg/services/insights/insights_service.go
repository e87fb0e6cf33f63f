package insightsservice

import (
	"context"
	"strings"

	"github.com/duolog/duolog-server/pkg/capture"
	"github.com/duolog/duolog-server/pkg/config"
	"github.com/duolog/duolog-server/pkg/insights"
	"github.com/duolog/duolog-server/pkg/insights/providers/azure"
	"github.com/duolog/duolog-server/pkg/insights/providers/google"
	"github.com/duolog/duolog-server/pkg/insights/providers/mock"
	"github.com/duolog/duolog-server/pkg/insights/providers/openai"
	"github.com/sirupsen/logrus"
)

// InsightsService hands out the configured AI backends. Translation and
// summarization fall back to the mock provider when nothing is configured or
// the configured provider fails.
type InsightsService struct {
	conf   *config.AppConfig
	logger *logrus.Entry

	translator     insights.Translator
	summarizer     insights.Summarizer
	mockTranslator insights.Translator
	mockSummarizer insights.Summarizer
	speechAccount  *config.ProviderAccount
}

func New(ctx context.Context, conf *config.AppConfig, logger *logrus.Logger) *InsightsService {
	s := &InsightsService{
		conf:           conf,
		logger:         logger.WithField("service", "insights"),
		mockTranslator: mock.NewTranslator(),
		mockSummarizer: mock.NewSummarizer(),
	}

	if p := s.newProvider(ctx, config.ServiceTranslation); p != nil {
		s.translator = p
	}
	if p := s.newProvider(ctx, config.ServiceSummarization); p != nil {
		s.summarizer = p
	}

	if _, acc, err := conf.Insights.GetServiceAccount(config.ServiceTranscription); err == nil {
		s.speechAccount = acc
	} else {
		s.logger.WithError(err).Warnln("speech recognition is not available")
	}
	return s
}

type textProvider interface {
	insights.Translator
	insights.Summarizer
}

// newProvider is a factory for the provider configured for serviceName.
func (s *InsightsService) newProvider(ctx context.Context, serviceName string) textProvider {
	svc, acc, err := s.conf.Insights.GetServiceAccount(serviceName)
	if err != nil {
		s.logger.WithError(err).Infof("%s will use the mock provider", serviceName)
		return nil
	}
	log := s.logger.WithFields(logrus.Fields{
		"provider": svc.Provider,
		"task":     serviceName,
	})

	var p textProvider
	switch svc.Provider {
	case "openai":
		p, err = openai.NewProvider(acc, svc, log)
	case "google":
		p, err = google.NewProvider(ctx, acc, svc, log)
	default:
		log.Errorf("unknown AI provider type: %s", svc.Provider)
		return nil
	}
	if err != nil {
		log.WithError(err).Errorln("failed to create provider")
		return nil
	}
	return p
}

// Translate never fails: when the provider can't answer the mock translation
// is returned. The mode tells which one produced the text; it is empty when
// nothing had to be translated.
func (s *InsightsService) Translate(ctx context.Context, req *insights.TranslationRequest) (string, insights.TranslationMode) {
	if req.SourceLang == req.TargetLang {
		return req.Text, ""
	}
	if strings.TrimSpace(req.Text) == "" {
		return "", ""
	}

	if s.translator != nil {
		tctx, cancel := context.WithTimeout(ctx, config.TranslationTimeout)
		defer cancel()

		out, err := s.translator.Translate(tctx, req)
		if err == nil && out != "" {
			return out, s.translator.Mode()
		}
		s.logger.WithError(err).WithField("mode", s.translator.Mode()).Warnln("translation failed, using mock")
	}

	out, _ := s.mockTranslator.Translate(ctx, req)
	return out, s.mockTranslator.Mode()
}

func (s *InsightsService) Summarize(ctx context.Context, transcript, lang string) (*insights.SummaryResult, insights.TranslationMode, error) {
	if s.summarizer != nil {
		sctx, cancel := context.WithTimeout(ctx, config.SummarizationTimeout)
		defer cancel()

		res, err := s.summarizer.Summarize(sctx, transcript, lang)
		if err == nil {
			return res, s.summarizer.Mode(), nil
		}
		if ctx.Err() != nil {
			return nil, "", ctx.Err()
		}
		s.logger.WithError(err).WithField("lang", lang).Warnln("summarization failed, using template")
	}

	res, err := s.mockSummarizer.Summarize(ctx, transcript, lang)
	return res, s.mockSummarizer.Mode(), err
}

// SpeechSupported reports whether live capture can be offered at all.
func (s *InsightsService) SpeechSupported() bool {
	return s.speechAccount != nil
}

// RecognizerFactory returns the recognizer backend for one capture session,
// reading its audio from feed.
func (s *InsightsService) RecognizerFactory(feed *insights.AudioFeed) capture.RecognizerFactory {
	if s.speechAccount == nil {
		return unsupported{}
	}
	f, err := azure.NewRecognizerFactory(s.speechAccount, feed, s.logger.WithField("provider", "azure"))
	if err != nil {
		s.logger.WithError(err).Errorln("failed to create recognizer factory")
		return unsupported{}
	}
	return f
}

type unsupported struct{}

func (unsupported) Supported() bool {
	return false
}

func (unsupported) NewRecognizer(capture.RecognizerConfig, capture.Events) (capture.Recognizer, error) {
	return nil, capture.ErrNotSupported
}

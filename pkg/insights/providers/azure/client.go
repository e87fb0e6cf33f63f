package azure

import (
	"fmt"

	"github.com/duolog/duolog-server/pkg/capture"
	"github.com/duolog/duolog-server/pkg/config"
	"github.com/duolog/duolog-server/pkg/insights"
	"github.com/sirupsen/logrus"
)

// RecognizerFactory creates Azure continuous speech recognizers that read
// their audio from a shared feed.
type RecognizerFactory struct {
	creds config.CredentialsConfig
	feed  *insights.AudioFeed
	log   *logrus.Entry
}

// NewRecognizerFactory creates a new factory. All recognizers it creates
// read from feed; only the one currently running receives frames.
func NewRecognizerFactory(account *config.ProviderAccount, feed *insights.AudioFeed, log *logrus.Entry) (*RecognizerFactory, error) {
	if account.Credentials.APIKey == "" || account.Credentials.Region == "" {
		return nil, fmt.Errorf("azure provider requires api_key (subscription key) and region")
	}
	return &RecognizerFactory{
		creds: account.Credentials,
		feed:  feed,
		log:   log,
	}, nil
}

func (f *RecognizerFactory) Supported() bool {
	return f != nil && f.creds.APIKey != "" && f.creds.Region != ""
}

func (f *RecognizerFactory) NewRecognizer(cfg capture.RecognizerConfig, ev capture.Events) (capture.Recognizer, error) {
	if !f.Supported() {
		return nil, capture.ErrNotSupported
	}
	return &recognizer{
		creds:  f.creds,
		feed:   f.feed,
		events: ev,
		cfg:    cfg,
		locale: cfg.Locale,
		log:    f.log.WithField("locale", cfg.Locale),
	}, nil
}

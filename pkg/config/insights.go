package config

import "fmt"

const (
	ServiceTranscription = "transcription"
	ServiceTranslation   = "translation"
	ServiceSummarization = "summarization"
)

// InsightsConfig is the main config block for the AI backed services.
type InsightsConfig struct {
	// The key is the provider type ("azure", "openai", "google"), the value is a list of accounts.
	Providers map[string][]ProviderAccount `yaml:"providers"`
	// The key is the service name: transcription, translation or summarization.
	Services map[string]ServiceConfig `yaml:"services"`
}

// ProviderAccount defines a single, uniquely identified set of credentials for a provider.
type ProviderAccount struct {
	ID          string                 `yaml:"id"`
	Credentials CredentialsConfig      `yaml:"credentials"`
	Options     map[string]interface{} `yaml:"options"`
}

// ServiceConfig references a provider type and a specific account ID.
type ServiceConfig struct {
	Provider string                 `yaml:"provider"`
	ID       string                 `yaml:"id"`
	Options  map[string]interface{} `yaml:"options"` // e.g. model
}

// CredentialsConfig only contains the most common credential fields,
// use Options for anything extra.
type CredentialsConfig struct {
	APIKey string `yaml:"api_key"`
	Region string `yaml:"region"`
}

// GetServiceAccount resolves the service and the provider account it points to.
func (i *InsightsConfig) GetServiceAccount(serviceName string) (*ServiceConfig, *ProviderAccount, error) {
	if i == nil {
		return nil, nil, fmt.Errorf("insights are not configured")
	}
	svc, ok := i.Services[serviceName]
	if !ok {
		return nil, nil, fmt.Errorf("service %s is not configured", serviceName)
	}

	for _, acc := range i.Providers[svc.Provider] {
		if acc.ID == svc.ID {
			return &svc, &acc, nil
		}
	}
	return nil, nil, fmt.Errorf("account %s for provider %s not found", svc.ID, svc.Provider)
}

// StringOption reads a string option, returning def when missing.
func (s *ServiceConfig) StringOption(key, def string) string {
	if s == nil || s.Options == nil {
		return def
	}
	if v, ok := s.Options[key].(string); ok && v != "" {
		return v
	}
	return def
}

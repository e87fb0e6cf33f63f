package google

import (
	"context"
	"fmt"
	"strings"

	"github.com/duolog/duolog-server/pkg/config"
	"github.com/duolog/duolog-server/pkg/insights"
	"github.com/duolog/duolog-server/pkg/languages"
	"github.com/sirupsen/logrus"
	"google.golang.org/genai"
)

const defaultModel = "gemini-2.5-flash"

// GoogleProvider translates and summarizes with Gemini models.
type GoogleProvider struct {
	client *genai.Client
	model  string
	logger *logrus.Entry
}

// NewProvider creates a new Google AI provider.
func NewProvider(ctx context.Context, providerAccount *config.ProviderAccount, serviceConfig *config.ServiceConfig, log *logrus.Entry) (*GoogleProvider, error) {
	if providerAccount.Credentials.APIKey == "" {
		return nil, fmt.Errorf("google provider requires api_key")
	}

	cc := &genai.ClientConfig{
		APIKey:  providerAccount.Credentials.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if ep, ok := providerAccount.Options["endpoint"].(string); ok && ep != "" {
		cc.HTTPOptions.BaseURL = ep
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &GoogleProvider{
		client: client,
		model:  serviceConfig.StringOption("model", defaultModel),
		logger: log,
	}, nil
}

func (p *GoogleProvider) Mode() insights.TranslationMode {
	return insights.ModeGoogle
}

func (p *GoogleProvider) Translate(ctx context.Context, req *insights.TranslationRequest) (string, error) {
	prompt := fmt.Sprintf("You are a professional translator. Translate the user's text from %s to %s. "+
		"Only respond with the translated text, nothing else. Maintain the original tone and context.",
		languages.PromptName(req.SourceLang), languages.PromptName(req.TargetLang))
	if g := insights.GlossaryPrompt(req.Glossary); g != "" {
		prompt += "\n\n" + g
	}

	text, err := p.generate(ctx, prompt, req.Text, 0.3, 1000)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

func (p *GoogleProvider) Summarize(ctx context.Context, transcript, lang string) (*insights.SummaryResult, error) {
	prompt := fmt.Sprintf("You are a professional meeting summarization assistant. Answer in %s. "+
		"Your response must be a single, valid JSON object with the keys 'summary', 'decisions' "+
		"(list of strings) and 'action_items' (list of strings).", languages.PromptName(lang))

	text, err := p.generate(ctx, prompt, transcript, 0.2, 1500)
	if err != nil {
		return nil, err
	}
	res, err := insights.ParseSummary(text)
	if err != nil {
		// fallback if the model didn't return proper JSON
		p.logger.WithError(err).Warn("failed to unmarshal summary JSON, using raw text as fallback")
		return &insights.SummaryResult{Summary: strings.TrimSpace(text)}, nil
	}
	return res, nil
}

func (p *GoogleProvider) generate(ctx context.Context, system, user string, temperature float32, maxTokens int32) (string, error) {
	resp, err := p.client.Models.GenerateContent(ctx, p.model, genai.Text(user), &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{
				genai.NewPartFromText(system),
			},
		},
		Temperature:     genai.Ptr(temperature),
		MaxOutputTokens: maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("google: generate content failed: %w", err)
	}
	if resp.UsageMetadata != nil {
		p.logger.WithFields(logrus.Fields{
			"model":             p.model,
			"prompt_tokens":     resp.UsageMetadata.PromptTokenCount,
			"completion_tokens": resp.UsageMetadata.CandidatesTokenCount,
		}).Debugln("generate content done")
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("google: empty response")
	}
	return text, nil
}

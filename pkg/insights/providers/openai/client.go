package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/duolog/duolog-server/pkg/config"
	"github.com/duolog/duolog-server/pkg/insights"
	"github.com/duolog/duolog-server/pkg/languages"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/sirupsen/logrus"
)

const (
	defaultModel       = "gpt-4o-mini"
	translateMaxTokens = 1000
	summaryMaxTokens   = 1500
)

// OpenAIProvider translates and summarizes with chat completions. Any
// OpenAI compatible endpoint can be used through the "endpoint" option.
type OpenAIProvider struct {
	client openai.Client
	model  string
	logger *logrus.Entry
}

func NewProvider(providerAccount *config.ProviderAccount, serviceConfig *config.ServiceConfig, log *logrus.Entry) (*OpenAIProvider, error) {
	if providerAccount.Credentials.APIKey == "" {
		return nil, fmt.Errorf("openai provider requires api_key")
	}

	opts := []option.RequestOption{
		option.WithAPIKey(providerAccount.Credentials.APIKey),
	}
	if ep, ok := providerAccount.Options["endpoint"].(string); ok && ep != "" {
		if !strings.HasSuffix(ep, "/") {
			ep += "/"
		}
		opts = append(opts, option.WithBaseURL(ep))
	}
	if retries, ok := providerAccount.Options["max_retries"].(int); ok {
		opts = append(opts, option.WithMaxRetries(retries))
	}

	return &OpenAIProvider{
		client: openai.NewClient(opts...),
		model:  serviceConfig.StringOption("model", defaultModel),
		logger: log,
	}, nil
}

func (p *OpenAIProvider) Mode() insights.TranslationMode {
	return insights.ModeOpenAI
}

func (p *OpenAIProvider) Translate(ctx context.Context, req *insights.TranslationRequest) (string, error) {
	prompt := fmt.Sprintf("You are a professional translator. Translate the following text from %s to %s. "+
		"Only respond with the translated text, nothing else. Maintain the original tone and context. "+
		"If the text contains proper nouns or technical terms, keep them as appropriate for the target language.",
		languages.PromptName(req.SourceLang), languages.PromptName(req.TargetLang))
	if g := insights.GlossaryPrompt(req.Glossary); g != "" {
		prompt += "\n\n" + g
	}

	text, err := p.complete(ctx, prompt, req.Text, 0.3, translateMaxTokens)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

func (p *OpenAIProvider) Summarize(ctx context.Context, transcript, lang string) (*insights.SummaryResult, error) {
	prompt := fmt.Sprintf("You are a professional meeting summarization assistant. Read the meeting transcript "+
		"and answer in %s. Your response must be a single, valid JSON object with the keys 'summary' "+
		"(a short paragraph), 'decisions' (a list of strings) and 'action_items' (a list of strings, "+
		"each naming the owner when known).", languages.PromptName(lang))

	text, err := p.complete(ctx, prompt, transcript, 0.2, summaryMaxTokens)
	if err != nil {
		return nil, err
	}
	res, err := insights.ParseSummary(text)
	if err != nil {
		p.logger.WithError(err).Warnln("failed to parse summary json, using raw text")
		return &insights.SummaryResult{Summary: strings.TrimSpace(text)}, nil
	}
	return res, nil
}

func (p *OpenAIProvider) complete(ctx context.Context, system, user string, temperature float64, maxTokens int64) (string, error) {
	resp, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(p.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
		Temperature:         openai.Float(temperature),
		MaxCompletionTokens: openai.Int(maxTokens),
	})
	if err != nil {
		return "", fmt.Errorf("openai: chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openai: empty response")
	}

	p.logger.WithFields(logrus.Fields{
		"model":             resp.Model,
		"prompt_tokens":     resp.Usage.PromptTokens,
		"completion_tokens": resp.Usage.CompletionTokens,
	}).Debugln("chat completion done")
	return resp.Choices[0].Message.Content, nil
}

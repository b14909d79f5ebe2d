package translate

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

const defaultOpenAIModel = "gpt-4o-mini"

// OpenAITranslator translates sentences using the OpenAI Chat Completions API.
// Any OpenAI-compatible endpoint works through baseURL.
type OpenAITranslator struct {
	apiKey string
	model  string
	client *openai.Client
}

func NewOpenAITranslator(apiKey, model, baseURL string) *OpenAITranslator {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = strings.TrimRight(baseURL, "/")
	}
	if model == "" {
		model = defaultOpenAIModel
	}
	return &OpenAITranslator{
		apiKey: apiKey,
		model:  model,
		client: openai.NewClientWithConfig(cfg),
	}
}

func (o *OpenAITranslator) Name() string {
	return "openai"
}

func (o *OpenAITranslator) Translate(ctx context.Context, text string, opts TranslateOptions) (string, error) {
	if o.apiKey == "" {
		return "", fmt.Errorf("openai: %w", ErrNotConfigured)
	}

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: BuildSystemPrompt(opts)},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
		Temperature: 0.3,
	})
	if err != nil {
		return "", fmt.Errorf("OpenAI API request: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("OpenAI returned no choices")
	}
	out := cleanModelOutput(resp.Choices[0].Message.Content)
	if out == "" {
		return "", fmt.Errorf("OpenAI returned an empty translation")
	}
	return out, nil
}

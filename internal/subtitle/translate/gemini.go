package translate

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"google.golang.org/genai"
)

const defaultGeminiModel = "gemini-2.0-flash"

// ModelResolver returns the current Gemini model from settings
type ModelResolver func() string

// GeminiTranslator translates sentences using the Google Gemini API
type GeminiTranslator struct {
	apiKey        string
	baseURL       string
	modelResolver ModelResolver // dynamically resolves model from DB

	once    sync.Once
	client  *genai.Client
	initErr error
}

func NewGeminiTranslator(apiKey, baseURL string, modelResolver ModelResolver) *GeminiTranslator {
	return &GeminiTranslator{
		apiKey:        apiKey,
		baseURL:       baseURL,
		modelResolver: modelResolver,
	}
}

func (g *GeminiTranslator) currentModel() string {
	if g.modelResolver != nil {
		if m := g.modelResolver(); m != "" {
			return m
		}
	}
	return defaultGeminiModel
}

func (g *GeminiTranslator) Name() string {
	return "gemini"
}

func (g *GeminiTranslator) getClient(ctx context.Context) (*genai.Client, error) {
	g.once.Do(func() {
		cfg := &genai.ClientConfig{
			APIKey:     g.apiKey,
			Backend:    genai.BackendGeminiAPI,
			HTTPClient: &http.Client{Timeout: 2 * time.Minute},
		}
		if g.baseURL != "" {
			cfg.HTTPOptions.BaseURL = g.baseURL
		}
		g.client, g.initErr = genai.NewClient(ctx, cfg)
	})
	return g.client, g.initErr
}

func (g *GeminiTranslator) Translate(ctx context.Context, text string, opts TranslateOptions) (string, error) {
	if g.apiKey == "" {
		return "", fmt.Errorf("gemini: %w", ErrNotConfigured)
	}
	client, err := g.getClient(ctx)
	if err != nil {
		return "", fmt.Errorf("gemini client: %w", err)
	}

	temperature := float32(0.3)
	result, err := client.Models.GenerateContent(ctx, g.currentModel(), genai.Text(text), &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(BuildSystemPrompt(opts), genai.RoleUser),
		Temperature:       &temperature,
	})
	if err != nil {
		return "", fmt.Errorf("Gemini API request: %w", err)
	}
	out := cleanModelOutput(result.Text())
	if out == "" {
		return "", fmt.Errorf("Gemini returned an empty translation")
	}
	return out, nil
}

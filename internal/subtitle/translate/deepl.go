package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const deeplAPIURL = "https://api-free.deepl.com/v2/translate"

// DeepLTranslator translates sentences using the DeepL API
type DeepLTranslator struct {
	apiKey     string
	endpoint   string
	httpClient *http.Client
}

func NewDeepLTranslator(apiKey, endpoint string) *DeepLTranslator {
	if endpoint == "" {
		endpoint = deeplAPIURL
	}
	return &DeepLTranslator{
		apiKey:   apiKey,
		endpoint: endpoint,
		httpClient: &http.Client{
			Timeout: 1 * time.Minute,
		},
	}
}

func (d *DeepLTranslator) Name() string {
	return "deepl"
}

func (d *DeepLTranslator) Translate(ctx context.Context, text string, opts TranslateOptions) (string, error) {
	if d.apiKey == "" {
		return "", fmt.Errorf("deepl: %w", ErrNotConfigured)
	}

	form := url.Values{}
	form.Set("text", text)
	form.Set("target_lang", deeplLangCode(opts.TargetLang))
	if opts.SourceLang != "" && opts.SourceLang != "auto" {
		// DeepL rejects regional variants as source languages.
		src := deeplLangCode(opts.SourceLang)
		if i := strings.IndexByte(src, '-'); i > 0 {
			src = src[:i]
		}
		form.Set("source_lang", src)
	}

	// Map preset to DeepL formality
	switch opts.Preset {
	case "documentary":
		form.Set("formality", "prefer_more")
	case "anime":
		form.Set("formality", "prefer_less")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, d.endpoint,
		strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	httpReq.Header.Set("Authorization", "DeepL-Auth-Key "+d.apiKey)

	resp, err := d.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("DeepL API request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	if resp.StatusCode != http.StatusOK {
		return "", &APIError{Engine: "deepl", StatusCode: resp.StatusCode, Body: string(body)}
	}

	var deeplResp struct {
		Translations []struct {
			Text string `json:"text"`
		} `json:"translations"`
	}
	if err := json.Unmarshal(body, &deeplResp); err != nil {
		return "", fmt.Errorf("parse response: %w", err)
	}
	if len(deeplResp.Translations) == 0 {
		return "", fmt.Errorf("DeepL returned no translations")
	}
	return deeplResp.Translations[0].Text, nil
}

// deeplLangCode converts ISO 639-1 codes to DeepL format
func deeplLangCode(code string) string {
	mapping := map[string]string{
		"ko": "KO",
		"en": "EN-US",
		"ja": "JA",
		"zh": "ZH",
		"de": "DE",
		"fr": "FR",
		"es": "ES",
		"it": "IT",
		"pt": "PT-BR",
		"ru": "RU",
		"nl": "NL",
		"pl": "PL",
	}
	if mapped, ok := mapping[strings.ToLower(code)]; ok {
		return mapped
	}
	return strings.ToUpper(code)
}

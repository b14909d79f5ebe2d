package translate

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const youdaoAPIURL = "https://openapi.youdao.com/api"

// YoudaoTranslator calls the Youdao OpenAPI text translation endpoint
// with v3 (SHA-256) request signing.
type YoudaoTranslator struct {
	appKey     string
	appSecret  string
	endpoint   string
	httpClient *http.Client
	log        *zap.Logger
	now        func() time.Time
}

func NewYoudaoTranslator(appKey, appSecret, endpoint string, logger *zap.Logger) *YoudaoTranslator {
	if endpoint == "" {
		endpoint = youdaoAPIURL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &YoudaoTranslator{
		appKey:    appKey,
		appSecret: appSecret,
		endpoint:  endpoint,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		log: logger.Named("youdao"),
		now: time.Now,
	}
}

func (y *YoudaoTranslator) Name() string {
	return "youdao"
}

type youdaoResponse struct {
	ErrorCode   string   `json:"errorCode"`
	Translation []string `json:"translation"`
}

func (y *YoudaoTranslator) Translate(ctx context.Context, text string, opts TranslateOptions) (string, error) {
	if y.appKey == "" || y.appSecret == "" {
		return "", fmt.Errorf("youdao: %w", ErrNotConfigured)
	}

	curtime := strconv.FormatInt(y.now().Unix(), 10)
	salt := uuid.New().String()

	form := url.Values{}
	form.Set("from", youdaoLangCode(opts.SourceLang))
	form.Set("to", youdaoLangCode(opts.TargetLang))
	form.Set("signType", "v3")
	form.Set("curtime", curtime)
	form.Set("appKey", y.appKey)
	form.Set("q", text)
	form.Set("salt", salt)
	form.Set("sign", youdaoSign(y.appKey, text, salt, curtime, y.appSecret))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, y.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := y.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("youdao request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if mt, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type")); strings.HasPrefix(mt, "audio/") {
		return "", fmt.Errorf("youdao returned audio (%s) instead of a translation", mt)
	}
	if resp.StatusCode != http.StatusOK {
		return "", &APIError{Engine: "youdao", StatusCode: resp.StatusCode, Body: string(body)}
	}

	var result youdaoResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("parse response: %w", err)
	}
	if result.ErrorCode != "0" {
		return "", fmt.Errorf("youdao errorCode: %s", result.ErrorCode)
	}
	if len(result.Translation) == 0 {
		return "", fmt.Errorf("youdao returned no translation")
	}

	y.log.Debug("translated", zap.Int("runes", len([]rune(text))))
	return result.Translation[0], nil
}

// youdaoSign computes the v3 signature:
// sha256(appKey + truncate(q) + salt + curtime + appSecret) in lowercase hex.
func youdaoSign(appKey, q, salt, curtime, appSecret string) string {
	sum := sha256.Sum256([]byte(appKey + youdaoTruncate(q) + salt + curtime + appSecret))
	return hex.EncodeToString(sum[:])
}

// youdaoTruncate keeps queries of up to 20 characters as-is; longer ones
// become first 10 + length + last 10.
func youdaoTruncate(q string) string {
	r := []rune(q)
	n := len(r)
	if n <= 20 {
		return q
	}
	return string(r[:10]) + strconv.Itoa(n) + string(r[n-10:])
}

func youdaoLangCode(code string) string {
	switch strings.ToLower(code) {
	case "", "auto":
		return "auto"
	case "zh", "zh-cn", "zh-hans", "zh-chs":
		return "zh-CHS"
	case "zh-tw", "zh-hant", "zh-cht":
		return "zh-CHT"
	}
	return code
}

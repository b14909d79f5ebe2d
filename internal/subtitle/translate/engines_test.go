package translate

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestYoudaoTruncate(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"short", "short"},
		{"exactly twenty chars", "exactly twenty chars"},
		{"abcdefghijklmnopqrstuvwxyz", "abcdefghij26qrstuvwxyz"},
		{"一二三四五六七八九十一二三四五六七八九十一", "一二三四五六七八九十21二三四五六七八九十一"},
	}
	for _, tt := range tests {
		if got := youdaoTruncate(tt.in); got != tt.want {
			t.Errorf("youdaoTruncate(%q) = %q; want %q", tt.in, got, tt.want)
		}
	}
}

func TestYoudaoTranslate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("ParseForm: %v", err)
		}
		f := r.PostForm
		if f.Get("from") != "en" || f.Get("to") != "zh-CHS" || f.Get("signType") != "v3" {
			t.Errorf("form = %v", f)
		}
		if f.Get("curtime") != "1700000000" {
			t.Errorf("curtime = %q", f.Get("curtime"))
		}
		want := youdaoSign("key", f.Get("q"), f.Get("salt"), f.Get("curtime"), "secret")
		if f.Get("sign") != want {
			t.Errorf("sign = %q; want %q", f.Get("sign"), want)
		}
		w.Header().Set("Content-Type", "application/json;charset=utf-8")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"errorCode":   "0",
			"translation": []string{"你好，世界。"},
		})
	}))
	defer srv.Close()

	y := NewYoudaoTranslator("key", "secret", srv.URL, nil)
	y.now = func() time.Time { return time.Unix(1700000000, 0) }

	got, err := y.Translate(context.Background(), "Hello, world.", TranslateOptions{SourceLang: "en", TargetLang: "zh"})
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if got != "你好，世界。" {
		t.Errorf("got %q", got)
	}
}

func TestYoudaoErrors(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		body        string
		want        string
	}{
		{"error code", "application/json", `{"errorCode":"108"}`, "errorCode: 108"},
		{"audio", "audio/mp3", "ID3", "audio"},
		{"empty", "application/json", `{"errorCode":"0","translation":[]}`, "no translation"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", tt.contentType)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewYoudaoTranslator("k", "s", srv.URL, nil).Translate(context.Background(), "Hi.", TranslateOptions{TargetLang: "zh"})
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("err = %v; want mention of %q", err, tt.want)
			}
		})
	}
}

func TestEnginesNotConfigured(t *testing.T) {
	engines := []Translator{
		NewYoudaoTranslator("", "", "", nil),
		NewDeepLTranslator("", ""),
		NewOpenAITranslator("", "", ""),
		NewGeminiTranslator("", "", nil),
	}
	for _, e := range engines {
		if _, err := e.Translate(context.Background(), "x", TranslateOptions{}); !errors.Is(err, ErrNotConfigured) {
			t.Errorf("%s: err = %v; want ErrNotConfigured", e.Name(), err)
		}
	}
}

func TestDeepLTranslate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "DeepL-Auth-Key dk" {
			t.Errorf("Authorization = %q", got)
		}
		r.ParseForm()
		if r.PostForm.Get("text") != "Good morning." {
			t.Errorf("text = %q", r.PostForm.Get("text"))
		}
		if r.PostForm.Get("target_lang") != "ZH" || r.PostForm.Get("source_lang") != "EN" {
			t.Errorf("langs = %v", r.PostForm)
		}
		if r.PostForm.Get("formality") != "prefer_less" {
			t.Errorf("formality = %q", r.PostForm.Get("formality"))
		}
		w.Write([]byte(`{"translations":[{"detected_source_language":"EN","text":"早上好。"}]}`))
	}))
	defer srv.Close()

	got, err := NewDeepLTranslator("dk", srv.URL).Translate(context.Background(), "Good morning.",
		TranslateOptions{SourceLang: "en", TargetLang: "zh", Preset: "anime"})
	if err != nil {
		t.Fatal(err)
	}
	if got != "早上好。" {
		t.Errorf("got %q", got)
	}
}

func TestDeepLStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", 456)
	}))
	defer srv.Close()

	_, err := NewDeepLTranslator("dk", srv.URL).Translate(context.Background(), "x", TranslateOptions{TargetLang: "zh"})
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != 456 {
		t.Fatalf("err = %v; want *APIError with 456", err)
	}
	if isTransientError(err) {
		t.Error("456 must not be retried")
	}
}

func TestOpenAITranslate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			t.Errorf("path = %s", r.URL.Path)
		}
		var req struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode: %v", err)
		}
		if req.Model != "test-model" || len(req.Messages) != 2 {
			t.Errorf("req = %+v", req)
		} else if req.Messages[1].Content != "See you." || !strings.Contains(req.Messages[0].Content, "Chinese") {
			t.Errorf("messages = %+v", req.Messages)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"x","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"\"再见。\"\n"},"finish_reason":"stop"}]}`))
	}))
	defer srv.Close()

	o := NewOpenAITranslator("sk", "test-model", srv.URL+"/v1")
	got, err := o.Translate(context.Background(), "See you.", TranslateOptions{SourceLang: "en", TargetLang: "zh"})
	if err != nil {
		t.Fatal(err)
	}
	if got != "再见。" {
		t.Errorf("got %q", got)
	}
}

func TestGeminiTranslate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "models/flash-test:generateContent") {
			t.Errorf("path = %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"谢谢。"}]},"finishReason":"STOP"}]}`))
	}))
	defer srv.Close()

	g := NewGeminiTranslator("gk", srv.URL+"/", func() string { return "flash-test" })
	got, err := g.Translate(context.Background(), "Thanks.", TranslateOptions{TargetLang: "zh"})
	if err != nil {
		t.Fatal(err)
	}
	if got != "谢谢。" {
		t.Errorf("got %q", got)
	}
}

func TestCleanModelOutput(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"  你好。 ", "你好。"},
		{"\"你好。\"", "你好。"},
		{"「你好。」", "你好。"},
		{"```\n你好。\n```", "你好。"},
		{"第一行\n第二行", "第一行 第二行"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := cleanModelOutput(tt.in); got != tt.want {
			t.Errorf("cleanModelOutput(%q) = %q; want %q", tt.in, got, tt.want)
		}
	}
}

func TestBuildSystemPrompt(t *testing.T) {
	p := BuildSystemPrompt(TranslateOptions{SourceLang: "en", TargetLang: "ja", Preset: "custom", CustomPrompt: "Use Kansai dialect."})
	if !strings.Contains(p, "English") || !strings.Contains(p, "Japanese") || !strings.HasSuffix(p, "Use Kansai dialect.") {
		t.Errorf("prompt = %q", p)
	}
	if strings.Contains(BuildSystemPrompt(TranslateOptions{Preset: "movie", CustomPrompt: "ignored"}), "ignored") {
		t.Error("custom prompt must only apply to the custom preset")
	}
}

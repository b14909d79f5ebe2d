package translate

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/video-stream/subreflow/internal/config"
	"github.com/video-stream/subreflow/internal/job"
	"github.com/video-stream/subreflow/internal/storage"
	"github.com/video-stream/subreflow/internal/subtitle/reflow"
)

// SettingsFunc reads a runtime setting, returning defaultVal when unset.
// (*db.Database).GetSetting has this shape.
type SettingsFunc func(key, defaultVal string) string

// EngineNames lists the built-in engines.
var EngineNames = []string{"youdao", "deepl", "openai", "gemini"}

// Service resolves translation engines and drives reflow runs for the CLI,
// the HTTP API and the job queue.
type Service struct {
	cfg      *config.Config
	settings SettingsFunc
	cache    CacheStore
	log      *zap.Logger

	mu      sync.Mutex
	engines map[string]cachedEngine
	custom  map[string]Translator
}

type cachedEngine struct {
	fingerprint string
	translator  Translator
}

// NewService creates a translation service. settings and cache may be nil.
func NewService(cfg *config.Config, settings SettingsFunc, cache CacheStore, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if settings == nil {
		settings = func(_, def string) string { return def }
	}
	return &Service{
		cfg:      cfg,
		settings: settings,
		cache:    cache,
		log:      logger.Named("translate"),
		engines:  make(map[string]cachedEngine),
		custom:   make(map[string]Translator),
	}
}

// RegisterEngine adds or replaces an engine by its Name.
func (s *Service) RegisterEngine(t Translator) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.custom[t.Name()] = t
	delete(s.engines, t.Name())
}

// Engines reports which engines are known and whether they have credentials.
func (s *Service) Engines() map[string]bool {
	out := make(map[string]bool)
	for _, name := range EngineNames {
		out[name] = s.configured(name)
	}
	s.mu.Lock()
	for name := range s.custom {
		out[name] = true
	}
	s.mu.Unlock()
	return out
}

func (s *Service) configured(name string) bool {
	e := s.cfg.Engines
	switch name {
	case "youdao":
		return s.settings("youdao_app_key", e.Youdao.AppKey) != "" && s.settings("youdao_app_secret", e.Youdao.AppSecret) != ""
	case "deepl":
		return s.settings("deepl_api_key", e.DeepL.APIKey) != ""
	case "openai":
		return s.settings("openai_api_key", e.OpenAI.APIKey) != ""
	case "gemini":
		return s.settings("gemini_api_key", e.Gemini.APIKey) != ""
	}
	return false
}

// Engine returns the named engine wrapped with retry and, when enabled,
// the translation cache. Settings stored in the database take precedence
// over the static configuration, so keys can be rotated without restart.
func (s *Service) Engine(name string) (Translator, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = s.cfg.Reflow.Engine
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if t, ok := s.custom[name]; ok {
		return s.wrap(t), nil
	}

	e := s.cfg.Engines
	var fp string
	var build func() Translator
	switch name {
	case "youdao":
		key := s.settings("youdao_app_key", e.Youdao.AppKey)
		secret := s.settings("youdao_app_secret", e.Youdao.AppSecret)
		fp = key + "\x00" + secret
		build = func() Translator { return NewYoudaoTranslator(key, secret, e.Youdao.URL, s.log) }
	case "deepl":
		key := s.settings("deepl_api_key", e.DeepL.APIKey)
		fp = key
		build = func() Translator { return NewDeepLTranslator(key, e.DeepL.URL) }
	case "openai":
		key := s.settings("openai_api_key", e.OpenAI.APIKey)
		model := s.settings("openai_model", e.OpenAI.Model)
		fp = key + "\x00" + model
		build = func() Translator { return NewOpenAITranslator(key, model, e.OpenAI.BaseURL) }
	case "gemini":
		key := s.settings("gemini_api_key", e.Gemini.APIKey)
		fp = key
		build = func() Translator {
			return NewGeminiTranslator(key, e.Gemini.BaseURL, func() string {
				return s.settings("gemini_model", e.Gemini.Model)
			})
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownEngine, name)
	}

	if c, ok := s.engines[name]; ok && c.fingerprint == fp {
		return c.translator, nil
	}
	t := s.wrap(build())
	s.engines[name] = cachedEngine{fingerprint: fp, translator: t}
	s.log.Info("engine ready", zap.String("engine", name))
	return t, nil
}

func (s *Service) wrap(t Translator) Translator {
	var out Translator = NewRetrying(t, s.log)
	if s.cfg.Reflow.Cache && s.cache != nil {
		out = NewCached(out, s.cache, s.log)
	}
	return out
}

// Resolve fills unset params from the configured reflow defaults.
func (s *Service) Resolve(p job.ReflowParams) job.ReflowParams {
	d := s.cfg.Reflow
	if p.Engine == "" {
		p.Engine = d.Engine
	}
	if p.SourceLang == "" {
		p.SourceLang = d.SourceLang
	}
	if p.TargetLang == "" {
		p.TargetLang = d.TargetLang
	}
	if p.Preset == "" {
		p.Preset = d.Preset
	}
	if p.MaxLineWidth <= 0 {
		p.MaxLineWidth = d.MaxLineWidth
	}
	if d.KeepLeftover {
		p.KeepLeftover = true
	}
	return p
}

func (s *Service) options(p job.ReflowParams) TranslateOptions {
	return TranslateOptions{
		SourceLang:   p.SourceLang,
		TargetLang:   p.TargetLang,
		Preset:       p.Preset,
		CustomPrompt: p.CustomPrompt,
	}
}

// Reflow translates and reflows SRT lines in memory.
func (s *Service) Reflow(ctx context.Context, lines []string, params job.ReflowParams, progress func(done, total int)) (*reflow.Result, error) {
	params = s.Resolve(params)
	engine, err := s.Engine(params.Engine)
	if err != nil {
		return nil, err
	}
	opts := s.options(params)

	start := time.Now()
	res, err := reflow.Process(ctx, lines, func(ctx context.Context, sentence string) (string, error) {
		return engine.Translate(ctx, sentence, opts)
	}, reflow.ProcessOptions{
		Options: reflow.Options{
			MaxLineWidth: params.MaxLineWidth,
			KeepLeftover: params.KeepLeftover,
		},
		SkipMalformedTimelines: s.cfg.Reflow.SkipMalformedTimelines,
		Concurrency:            s.cfg.Reflow.Concurrency,
		Progress:               progress,
	})
	if err != nil {
		return nil, err
	}

	if res.SkippedTimelines > 0 {
		s.log.Warn("skipped malformed timelines", zap.Int("count", res.SkippedTimelines))
	}
	if res.Dropped > 0 {
		s.log.Warn("dropped sentences without a timeline", zap.Int("count", res.Dropped))
	}
	s.log.Info("reflow complete",
		zap.String("engine", params.Engine),
		zap.Int("sentences", res.Blocks),
		zap.Int("cues", res.Cues),
		zap.Duration("took", time.Since(start)),
	)
	return res, nil
}

// TranslateFile reads input, reflows it and writes the result to output.
// Nothing is written when any step fails.
func (s *Service) TranslateFile(ctx context.Context, input, output string, params job.ReflowParams, progress func(done, total int)) (*reflow.Result, error) {
	lines, err := storage.ReadLines(input)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", input, err)
	}
	res, err := s.Reflow(ctx, lines, params, progress)
	if err != nil {
		return nil, err
	}
	if err := storage.WriteLinesAtomic(output, res.Lines); err != nil {
		return nil, fmt.Errorf("write %s: %w", output, err)
	}
	return res, nil
}

// TranslateText translates a single word or phrase without any reflow.
func (s *Service) TranslateText(ctx context.Context, text string, params job.ReflowParams) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("empty text")
	}
	params = s.Resolve(params)
	engine, err := s.Engine(params.Engine)
	if err != nil {
		return "", err
	}
	return engine.Translate(ctx, text, s.options(params))
}

// HandleJob processes a reflow job for a file under the media root. The
// output lands under the configured output path, mirroring the input's
// relative location.
func (s *Service) HandleJob(ctx context.Context, j *job.Job, updateProgress func(float64)) (interface{}, error) {
	var params job.ReflowParams
	if err := j.DecodeParams(&params); err != nil {
		return nil, fmt.Errorf("unmarshal params: %w", err)
	}
	params = s.Resolve(params)

	input, err := storage.ResolvePath(s.cfg.MediaPath, j.FilePath)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", j.FilePath, err)
	}
	rel := storage.OutputPath(filepath.Clean(j.FilePath), params.TargetLang)
	output := filepath.Join(s.cfg.OutputPath, rel)

	s.log.Info("reflow job started",
		zap.String("job", j.ID),
		zap.String("file", j.FilePath),
		zap.String("engine", params.Engine),
		zap.String("target", params.TargetLang),
	)

	start := time.Now()
	res, err := s.TranslateFile(ctx, input, output, params, func(done, total int) {
		if total > 0 {
			updateProgress(float64(done) / float64(total))
		}
	})
	if err != nil {
		return nil, err
	}

	return job.ReflowResult{
		OutputPath:       filepath.ToSlash(rel),
		Sentences:        res.Blocks,
		Cues:             res.Cues,
		Dropped:          res.Dropped,
		SkippedTimelines: res.SkippedTimelines,
		Duration:         time.Since(start).Seconds(),
	}, nil
}

// PresetNames returns the accepted presets, sorted.
func PresetNames() []string {
	out := append([]string(nil), Presets...)
	sort.Strings(out)
	return out
}

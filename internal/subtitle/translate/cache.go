package translate

import (
	"context"
	"crypto/sha256"
	"encoding/hex"

	"go.uber.org/zap"
)

// CacheStore persists finished translations. *db.Database implements it.
type CacheStore interface {
	CacheGet(engine, sourceLang, targetLang, text string) (string, bool, error)
	CachePut(engine, sourceLang, targetLang, text, translated string) error
}

// Cached answers repeated sentences from a CacheStore so a retried job
// does not pay for the same sentence twice. Cache failures are logged and
// never fail a translation.
type Cached struct {
	Translator
	store CacheStore
	log   *zap.Logger
}

func NewCached(t Translator, store CacheStore, logger *zap.Logger) *Cached {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cached{Translator: t, store: store, log: logger.Named("cache")}
}

// cacheEngine distinguishes prompt variants of the same LLM engine.
func cacheEngine(name string, opts TranslateOptions) string {
	if opts.Preset == "" {
		return name
	}
	key := name + "/" + opts.Preset
	if opts.Preset == "custom" && opts.CustomPrompt != "" {
		sum := sha256.Sum256([]byte(opts.CustomPrompt))
		key += "/" + hex.EncodeToString(sum[:4])
	}
	return key
}

func (c *Cached) Translate(ctx context.Context, text string, opts TranslateOptions) (string, error) {
	engine := cacheEngine(c.Name(), opts)
	if hit, ok, err := c.store.CacheGet(engine, opts.SourceLang, opts.TargetLang, text); err != nil {
		c.log.Warn("cache lookup failed", zap.Error(err))
	} else if ok {
		return hit, nil
	}

	out, err := c.Translator.Translate(ctx, text, opts)
	if err != nil {
		return "", err
	}
	if out != "" {
		if err := c.store.CachePut(engine, opts.SourceLang, opts.TargetLang, text, out); err != nil {
			c.log.Warn("cache store failed", zap.Error(err))
		}
	}
	return out, nil
}

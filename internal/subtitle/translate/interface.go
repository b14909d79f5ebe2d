package translate

import (
	"context"
	"errors"
)

var (
	// ErrNotConfigured is returned by an engine whose credentials are missing.
	ErrNotConfigured = errors.New("engine not configured")
	ErrUnknownEngine = errors.New("unknown translation engine")
)

// TranslateOptions configures translation behavior
type TranslateOptions struct {
	SourceLang   string `json:"source_lang"`
	TargetLang   string `json:"target_lang"`
	Preset       string `json:"preset"`        // "anime", "movie", "documentary", "custom"
	CustomPrompt string `json:"custom_prompt"` // for "custom" preset
}

// Translator is the common interface for all translation engines.
// Translate receives one whole sentence and returns its translation.
type Translator interface {
	Translate(ctx context.Context, text string, opts TranslateOptions) (string, error)
	// Name returns the engine name
	Name() string
}

package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix namespaces every environment override (SUBREFLOW_PORT, ...).
const EnvPrefix = "SUBREFLOW"

type Config struct {
	Port          int      `mapstructure:"port"`
	MediaPath     string   `mapstructure:"media_path"`
	DataPath      string   `mapstructure:"data_path"`
	DBPath        string   `mapstructure:"db_path"`
	OutputPath    string   `mapstructure:"output_path"`
	JWTSecret     string   `mapstructure:"jwt_secret"`
	AdminUsername string   `mapstructure:"admin_username"`
	AdminPassword string   `mapstructure:"admin_password"`
	LogLevel      string   `mapstructure:"log_level"`
	CORSOrigins   []string `mapstructure:"-"`

	RawCORSOrigins string `mapstructure:"cors_origins"`

	Reflow  ReflowConfig  `mapstructure:"reflow"`
	Engines EnginesConfig `mapstructure:"engines"`

	// GeneratedSecret is set when no JWT secret was configured.
	GeneratedSecret bool `mapstructure:"-"`
}

// ReflowConfig holds the defaults applied to every reflow run
type ReflowConfig struct {
	Engine                 string `mapstructure:"engine"`
	SourceLang             string `mapstructure:"source_lang"`
	TargetLang             string `mapstructure:"target_lang"`
	Preset                 string `mapstructure:"preset"`
	MaxLineWidth           int    `mapstructure:"max_line_width"`
	KeepLeftover           bool   `mapstructure:"keep_leftover"`
	Concurrency            int    `mapstructure:"concurrency"`
	SkipMalformedTimelines bool   `mapstructure:"skip_malformed_timelines"`
	Cache                  bool   `mapstructure:"cache"`
}

type EnginesConfig struct {
	Youdao struct {
		AppKey    string `mapstructure:"app_key"`
		AppSecret string `mapstructure:"app_secret"`
		URL       string `mapstructure:"url"`
	} `mapstructure:"youdao"`
	DeepL struct {
		APIKey string `mapstructure:"api_key"`
		URL    string `mapstructure:"url"`
	} `mapstructure:"deepl"`
	OpenAI struct {
		APIKey  string `mapstructure:"api_key"`
		Model   string `mapstructure:"model"`
		BaseURL string `mapstructure:"base_url"`
	} `mapstructure:"openai"`
	Gemini struct {
		APIKey  string `mapstructure:"api_key"`
		Model   string `mapstructure:"model"`
		BaseURL string `mapstructure:"base_url"`
	} `mapstructure:"gemini"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", 8080)
	v.SetDefault("media_path", "/media")
	v.SetDefault("data_path", "/data")
	v.SetDefault("db_path", "")
	v.SetDefault("output_path", "")
	v.SetDefault("jwt_secret", "")
	v.SetDefault("admin_username", "admin")
	v.SetDefault("admin_password", "admin")
	v.SetDefault("log_level", "info")
	v.SetDefault("cors_origins", "*")

	v.SetDefault("reflow.engine", "youdao")
	v.SetDefault("reflow.source_lang", "en")
	v.SetDefault("reflow.target_lang", "zh")
	v.SetDefault("reflow.preset", "movie")
	v.SetDefault("reflow.max_line_width", 18)
	v.SetDefault("reflow.keep_leftover", false)
	v.SetDefault("reflow.concurrency", 1)
	v.SetDefault("reflow.skip_malformed_timelines", false)
	v.SetDefault("reflow.cache", true)

	v.SetDefault("engines.youdao.app_key", "")
	v.SetDefault("engines.youdao.app_secret", "")
	v.SetDefault("engines.youdao.url", "")
	v.SetDefault("engines.deepl.api_key", "")
	v.SetDefault("engines.deepl.url", "")
	v.SetDefault("engines.openai.api_key", "")
	v.SetDefault("engines.openai.model", "gpt-4o-mini")
	v.SetDefault("engines.openai.base_url", "")
	v.SetDefault("engines.gemini.api_key", "")
	v.SetDefault("engines.gemini.model", "gemini-2.0-flash")
	v.SetDefault("engines.gemini.base_url", "")
}

// bare names kept from the server's original environment contract
var bareEnv = map[string]string{
	"port":                      "PORT",
	"media_path":                "MEDIA_PATH",
	"data_path":                 "DATA_PATH",
	"db_path":                   "DB_PATH",
	"jwt_secret":                "JWT_SECRET",
	"admin_username":            "ADMIN_USERNAME",
	"admin_password":            "ADMIN_PASSWORD",
	"cors_origins":              "CORS_ORIGINS",
	"engines.youdao.app_key":    "YOUDAO_APP_KEY",
	"engines.youdao.app_secret": "YOUDAO_APP_SECRET",
	"engines.deepl.api_key":     "DEEPL_API_KEY",
	"engines.openai.api_key":    "OPENAI_API_KEY",
	"engines.gemini.api_key":    "GEMINI_API_KEY",
}

// Load reads defaults, then the optional YAML file at path, then the
// environment. An empty path skips the file.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range bareEnv {
		prefixed := EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, prefixed, env); err != nil {
			return nil, fmt.Errorf("bind %s: %w", key, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) normalize() error {
	if c.DBPath == "" {
		c.DBPath = filepath.Join(c.DataPath, "subreflow.db")
	}
	if c.OutputPath == "" {
		c.OutputPath = filepath.Join(c.DataPath, "subtitles")
	}

	// JWT secret: require explicit setting or generate random
	if c.JWTSecret == "" {
		b := make([]byte, 32)
		if _, err := rand.Read(b); err != nil {
			return fmt.Errorf("generate jwt secret: %w", err)
		}
		c.JWTSecret = hex.EncodeToString(b)
		c.GeneratedSecret = true
	}

	// CORS origins: comma-separated list or "*" (default)
	c.CORSOrigins = nil
	for _, o := range strings.Split(c.RawCORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			c.CORSOrigins = append(c.CORSOrigins, o)
		}
	}
	if len(c.CORSOrigins) == 0 {
		c.CORSOrigins = []string{"*"}
	}

	c.Reflow.Engine = strings.ToLower(strings.TrimSpace(c.Reflow.Engine))
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	return nil
}

// Validate rejects values the reflow engine cannot work with
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("config: port out of range: %d", c.Port)
	}
	if c.Reflow.MaxLineWidth < 1 {
		return fmt.Errorf("config: reflow.max_line_width must be >= 1, got %d", c.Reflow.MaxLineWidth)
	}
	if c.Reflow.Concurrency < 1 {
		return fmt.Errorf("config: reflow.concurrency must be >= 1, got %d", c.Reflow.Concurrency)
	}
	if c.Reflow.TargetLang == "" {
		return fmt.Errorf("config: reflow.target_lang is required")
	}
	return nil
}

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != 8080 {
		t.Errorf("Port = %d; want 8080", cfg.Port)
	}
	if cfg.Reflow.MaxLineWidth != 18 {
		t.Errorf("MaxLineWidth = %d; want 18", cfg.Reflow.MaxLineWidth)
	}
	if cfg.Reflow.Concurrency != 1 {
		t.Errorf("Concurrency = %d; want 1", cfg.Reflow.Concurrency)
	}
	if cfg.Reflow.KeepLeftover {
		t.Errorf("KeepLeftover should default to false")
	}
	if cfg.DBPath != filepath.Join("/data", "subreflow.db") {
		t.Errorf("DBPath = %q", cfg.DBPath)
	}
	if !cfg.GeneratedSecret || len(cfg.JWTSecret) != 64 {
		t.Errorf("expected generated jwt secret, got %q", cfg.JWTSecret)
	}
	if len(cfg.CORSOrigins) != 1 || cfg.CORSOrigins[0] != "*" {
		t.Errorf("CORSOrigins = %v", cfg.CORSOrigins)
	}
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "subreflow.yaml")
	yaml := `
port: 9090
data_path: /srv/data
cors_origins: "https://a.example, https://b.example"
reflow:
  engine: DeepL
  target_lang: ja
  max_line_width: 24
  keep_leftover: true
engines:
  deepl:
    api_key: from-file
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("SUBREFLOW_REFLOW_CONCURRENCY", "4")
	t.Setenv("DEEPL_API_KEY", "from-env")
	t.Setenv("JWT_SECRET", "fixed")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != 9090 {
		t.Errorf("Port = %d", cfg.Port)
	}
	if cfg.Reflow.Engine != "deepl" {
		t.Errorf("Engine = %q", cfg.Reflow.Engine)
	}
	if cfg.Reflow.TargetLang != "ja" || cfg.Reflow.MaxLineWidth != 24 || !cfg.Reflow.KeepLeftover {
		t.Errorf("Reflow = %+v", cfg.Reflow)
	}
	if cfg.Reflow.Concurrency != 4 {
		t.Errorf("Concurrency = %d; want 4 from env", cfg.Reflow.Concurrency)
	}
	if cfg.Engines.DeepL.APIKey != "from-env" {
		t.Errorf("DeepL key = %q; env should win", cfg.Engines.DeepL.APIKey)
	}
	if cfg.JWTSecret != "fixed" || cfg.GeneratedSecret {
		t.Errorf("JWTSecret = %q generated=%v", cfg.JWTSecret, cfg.GeneratedSecret)
	}
	if cfg.DBPath != filepath.Join("/srv/data", "subreflow.db") {
		t.Errorf("DBPath = %q", cfg.DBPath)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "https://b.example" {
		t.Errorf("CORSOrigins = %v", cfg.CORSOrigins)
	}
}

func TestLoadRejectsBadWidth(t *testing.T) {
	t.Setenv("SUBREFLOW_REFLOW_MAX_LINE_WIDTH", "0")
	if _, err := Load(""); err == nil {
		t.Fatal("expected validation error for zero width")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

package app

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigFileYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
llm:
  base: http://localhost:8080/v1
  model: llama3
  maxInputChars: 16000
summary:
  verbosity: brief
  language: fi
extract:
  keywords: [terms, privacy]
  minTextChars: 80
store:
  path: /tmp/legallens.db
cache:
  dir: /tmp/llcache
verbose: true
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	fc, err := LoadConfigFile(path)
	if err != nil {
		t.Fatalf("LoadConfigFile: %v", err)
	}
	if fc.LLM.Model != "llama3" || fc.LLM.MaxInputChars != 16000 {
		t.Errorf("llm section: %+v", fc.LLM)
	}
	if fc.Summary.Verbosity != "brief" || fc.Summary.Language != "fi" {
		t.Errorf("summary section: %+v", fc.Summary)
	}
	if len(fc.Extract.Keywords) != 2 || fc.Extract.MinTextChars != 80 {
		t.Errorf("extract section: %+v", fc.Extract)
	}
	if fc.Cache.Dir != "/tmp/llcache" {
		t.Errorf("cache dir = %q", fc.Cache.Dir)
	}
	if !fc.Verbose {
		t.Errorf("verbose not set")
	}
}

func TestLoadConfigFileJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	content := `{"llm":{"model":"llama3"},"summary":{"verbosity":"detailed"}}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	fc, err := LoadConfigFile(path)
	if err != nil {
		t.Fatalf("LoadConfigFile: %v", err)
	}
	if fc.LLM.Model != "llama3" || fc.Summary.Verbosity != "detailed" {
		t.Errorf("got %+v", fc)
	}
}

func TestApplyFileConfigPreservesFlags(t *testing.T) {
	cfg := Config{LLMModel: "from-flag", Verbosity: "brief"}
	var fc FileConfig
	fc.LLM.Model = "from-file"
	fc.LLM.BaseURL = "http://localhost:8080/v1"
	fc.Summary.Verbosity = "detailed"
	fc.Store.Path = "/tmp/db"
	ApplyFileConfig(&cfg, fc)
	if cfg.LLMModel != "from-flag" {
		t.Errorf("explicit flag overwritten: %q", cfg.LLMModel)
	}
	if cfg.Verbosity != "brief" {
		t.Errorf("explicit verbosity overwritten: %q", cfg.Verbosity)
	}
	if cfg.LLMBaseURL != "http://localhost:8080/v1" {
		t.Errorf("unset field not filled: %q", cfg.LLMBaseURL)
	}
	if cfg.DBPath != "/tmp/db" {
		t.Errorf("store path not filled: %q", cfg.DBPath)
	}
}

func TestValidateConfig(t *testing.T) {
	if err := ValidateConfig(Config{}); err == nil {
		t.Error("missing model accepted")
	}
	if err := ValidateConfig(Config{LLMModel: "m", Verbosity: "chatty"}); err == nil {
		t.Error("unknown verbosity accepted")
	}
	if err := ValidateConfig(Config{LLMModel: "m", MinTextChars: -1}); err == nil {
		t.Error("negative limit accepted")
	}
	if err := ValidateConfig(Config{LLMModel: "m", Verbosity: "standard"}); err != nil {
		t.Errorf("valid config rejected: %v", err)
	}
}

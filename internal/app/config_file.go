package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	yaml "gopkg.in/yaml.v3"
)

// FileConfig represents the single-file configuration schema. Nested sections
// map naturally to flags and environment variables.
type FileConfig struct {
	LLM struct {
		BaseURL       string `yaml:"base" json:"base"`
		Model         string `yaml:"model" json:"model"`
		APIKey        string `yaml:"key" json:"key"`
		MaxInputChars int    `yaml:"maxInputChars" json:"maxInputChars"`
	} `yaml:"llm" json:"llm"`

	Summary struct {
		Verbosity     string `yaml:"verbosity" json:"verbosity"`
		SharedContext string `yaml:"sharedContext" json:"sharedContext"`
		Language      string `yaml:"language" json:"language"`
	} `yaml:"summary" json:"summary"`

	Extract struct {
		Keywords     []string `yaml:"keywords" json:"keywords"`
		MinTextChars int      `yaml:"minTextChars" json:"minTextChars"`
		UserAgent    string   `yaml:"userAgent" json:"userAgent"`
	} `yaml:"extract" json:"extract"`

	Store struct {
		Path string `yaml:"path" json:"path"`
	} `yaml:"store" json:"store"`

	Cache struct {
		Dir    string        `yaml:"dir" json:"dir"`
		MaxAge time.Duration `yaml:"maxAge" json:"maxAge"`
		Clear  bool          `yaml:"clear" json:"clear"`
	} `yaml:"cache" json:"cache"`

	Verbose      bool `yaml:"verbose" json:"verbose"`
	DebugVerbose bool `yaml:"debugVerbose" json:"debugVerbose"`
}

// LoadConfigFile reads YAML or JSON into FileConfig.
func LoadConfigFile(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	switch ext := filepath.Ext(path); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse yaml: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse json: %w", err)
		}
	default:
		// Try YAML then JSON
		if err := yaml.Unmarshal(b, &fc); err != nil {
			if jerr := json.Unmarshal(b, &fc); jerr != nil {
				return fc, fmt.Errorf("parse config: %v (yaml) / %v (json)", err, jerr)
			}
		}
	}
	return fc, nil
}

// ApplyFileConfig overlays values from FileConfig into cfg for any fields that
// are currently unset/zero in cfg. Flags should already have been parsed; this
// lets file config supply defaults while preserving explicit flags.
func ApplyFileConfig(cfg *Config, fc FileConfig) {
	if cfg == nil {
		return
	}
	if cfg.LLMBaseURL == "" && fc.LLM.BaseURL != "" {
		cfg.LLMBaseURL = fc.LLM.BaseURL
	}
	if cfg.LLMModel == "" && fc.LLM.Model != "" {
		cfg.LLMModel = fc.LLM.Model
	}
	if cfg.LLMAPIKey == "" && fc.LLM.APIKey != "" {
		cfg.LLMAPIKey = fc.LLM.APIKey
	}
	if cfg.MaxInputChars == 0 && fc.LLM.MaxInputChars > 0 {
		cfg.MaxInputChars = fc.LLM.MaxInputChars
	}
	if cfg.Verbosity == "" && fc.Summary.Verbosity != "" {
		cfg.Verbosity = fc.Summary.Verbosity
	}
	if cfg.SharedContext == "" && fc.Summary.SharedContext != "" {
		cfg.SharedContext = fc.Summary.SharedContext
	}
	if cfg.TargetLanguage == "" && fc.Summary.Language != "" {
		cfg.TargetLanguage = fc.Summary.Language
	}
	if len(cfg.LinkKeywords) == 0 && len(fc.Extract.Keywords) > 0 {
		cfg.LinkKeywords = append([]string{}, fc.Extract.Keywords...)
	}
	if cfg.MinTextChars == 0 && fc.Extract.MinTextChars > 0 {
		cfg.MinTextChars = fc.Extract.MinTextChars
	}
	if cfg.UserAgent == "" && fc.Extract.UserAgent != "" {
		cfg.UserAgent = fc.Extract.UserAgent
	}
	if cfg.DBPath == "" && fc.Store.Path != "" {
		cfg.DBPath = fc.Store.Path
	}
	if cfg.CacheDir == "" && fc.Cache.Dir != "" {
		cfg.CacheDir = fc.Cache.Dir
	}
	if cfg.CacheMaxAge == 0 && fc.Cache.MaxAge > 0 {
		cfg.CacheMaxAge = fc.Cache.MaxAge
	}
	if !cfg.CacheClear && fc.Cache.Clear {
		cfg.CacheClear = true
	}
	if !cfg.Verbose && fc.Verbose {
		cfg.Verbose = true
	}
	if !cfg.DebugVerbose && fc.DebugVerbose {
		cfg.DebugVerbose = true
	}
}

// ValidateConfig performs minimal schema validation for required settings.
func ValidateConfig(cfg Config) error {
	if strings.TrimSpace(cfg.LLMModel) == "" {
		return errors.New("config: llm.model is required (or set LLM_MODEL)")
	}
	switch cfg.Verbosity {
	case "", "brief", "standard", "detailed":
	default:
		return fmt.Errorf("config: unknown verbosity %q", cfg.Verbosity)
	}
	if cfg.MinTextChars < 0 || cfg.MaxInputChars < 0 {
		return errors.New("config: negative limits are not allowed")
	}
	return nil
}

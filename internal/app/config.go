package app

import "time"

// Config holds runtime configuration for the application.
type Config struct {
	// Model backend (OpenAI-compatible endpoint, typically local).
	LLMBaseURL    string
	LLMModel      string
	LLMAPIKey     string
	MaxInputChars int

	// Summarization
	Verbosity     string
	SharedContext string
	// TargetLanguage is a BCP 47 tag; when set and different from the
	// detected summary language, the summary is translated before delivery.
	TargetLanguage string

	// Extraction
	LinkKeywords []string
	MinTextChars int
	UserAgent    string

	// Persistence and caching
	DBPath      string
	CacheDir    string
	CacheMaxAge time.Duration
	CacheClear  bool

	// Behavior
	Verbose      bool
	DebugVerbose bool
}

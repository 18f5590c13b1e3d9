package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/keanesc/legal-lens/internal/app"
)

func main() {
	// Logging setup
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	var (
		pageURL      string
		outPath      string
		pdfPath      string
		configPath   string
		llmBaseURL   string
		llmModel     string
		llmKey       string
		maxInput     int
		verbosity    string
		targetLang   string
		keywords     string
		minTextChars int
		userAgent    string
		dbPath       string
		cacheDir     string
		cacheMaxAge  time.Duration
		cacheClear   bool
		save         bool
		verbose      bool
	)

	flag.StringVar(&pageURL, "url", "", "Page URL to scan for a legal document")
	flag.StringVar(&outPath, "out", "summary.md", "Path to write the simplified summary")
	flag.StringVar(&pdfPath, "pdf", "", "Optional path to also export the summary as PDF")
	flag.StringVar(&configPath, "config", os.Getenv("LEGALLENS_CONFIG"), "Path to YAML/JSON config file")
	flag.StringVar(&llmBaseURL, "llm.base", os.Getenv("LLM_BASE_URL"), "OpenAI-compatible base URL")
	flag.StringVar(&llmModel, "llm.model", os.Getenv("LLM_MODEL"), "Model name")
	flag.StringVar(&llmKey, "llm.key", os.Getenv("LLM_API_KEY"), "API key for OpenAI-compatible server")
	flag.IntVar(&maxInput, "llm.maxInputChars", 0, "Model input budget in characters (0 uses a conservative default)")
	flag.StringVar(&verbosity, "verbosity", "standard", "Summary length: brief, standard, or detailed")
	flag.StringVar(&targetLang, "lang", "", "Optional BCP 47 target language for the summary, e.g. 'fi'")
	flag.StringVar(&keywords, "keywords", "", "Comma-separated override of the legal link keywords")
	flag.IntVar(&minTextChars, "min.textChars", 0, "Minimum extracted text length for in-page fallbacks (0 uses default)")
	flag.StringVar(&userAgent, "ua", "legallens/1.0 (+https://github.com/keanesc/legal-lens)", "User-Agent for privileged fetches")
	flag.StringVar(&dbPath, "store.path", "", "Path to the sqlite database for persisted summaries (empty disables)")
	flag.StringVar(&cacheDir, "cache.dir", ".legallens-cache", "Cache directory path")
	flag.DurationVar(&cacheMaxAge, "cache.maxAge", 0, "Max age for cache entries before purge (e.g. 24h); 0 disables")
	flag.BoolVar(&cacheClear, "cache.clear", false, "Clear cache directory before run")
	flag.BoolVar(&save, "save", false, "Append the summary to the saved list (requires -store.path)")
	flag.BoolVar(&verbose, "v", false, "Verbose logging")
	flag.Parse()

	if verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	cfg := app.Config{
		LLMBaseURL:     llmBaseURL,
		LLMModel:       llmModel,
		LLMAPIKey:      llmKey,
		MaxInputChars:  maxInput,
		Verbosity:      verbosity,
		TargetLanguage: targetLang,
		MinTextChars:   minTextChars,
		UserAgent:      userAgent,
		DBPath:         dbPath,
		CacheDir:       cacheDir,
		CacheMaxAge:    cacheMaxAge,
		CacheClear:     cacheClear,
		Verbose:        verbose,
	}
	if s := strings.TrimSpace(keywords); s != "" {
		parts := strings.Split(s, ",")
		list := make([]string, 0, len(parts))
		for _, p := range parts {
			if v := strings.TrimSpace(p); v != "" {
				list = append(list, v)
			}
		}
		cfg.LinkKeywords = list
	}
	if strings.TrimSpace(configPath) != "" {
		fc, err := app.LoadConfigFile(configPath)
		if err != nil {
			log.Error().Err(err).Str("path", configPath).Msg("load config file failed")
			os.Exit(1)
		}
		app.ApplyFileConfig(&cfg, fc)
	}
	if err := app.ValidateConfig(cfg); err != nil {
		log.Error().Err(err).Msg("invalid configuration")
		os.Exit(1)
	}
	if strings.TrimSpace(pageURL) == "" {
		log.Error().Msg("missing required -url")
		flag.Usage()
		os.Exit(1)
	}

	if err := run(cfg, pageURL, outPath, pdfPath, save); err != nil {
		log.Error().Err(err).Msg("run failed")
		os.Exit(2)
	}
}

func run(cfg app.Config, pageURL, outPath, pdfPath string, save bool) error {
	ctx := context.Background()

	a, err := app.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("init app: %w", err)
	}
	defer a.Close()

	return a.Run(ctx, pageURL, outPath, pdfPath, save)
}

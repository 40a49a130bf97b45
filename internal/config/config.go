// Package config loads service configuration from the environment (with an
// optional .env file for local runs). Everything the pipeline needs is
// resolved here once and passed down; nothing else in the tree reads the
// environment.
package config

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port     string
	Env      string
	LogLevel string

	Source   SourceConfig
	LLM      LLMConfig
	Prompt   PromptConfig
	Pipeline PipelineConfig
}

// SourceConfig selects and parameterizes the upstream activity strategy.
type SourceConfig struct {
	Mode         string
	BaseURL      string
	SessionID    string
	AccessToken  string
	UserAgent    string
	Timeout      time.Duration
	CommentLimit int
	CacheSize    int
	CacheTTL     time.Duration
}

type LLMConfig struct {
	APIKey string
	Model  string
	RPM    int
	Burst  int
}

type PromptConfig struct {
	Dialect string
}

type PipelineConfig struct {
	PostLimit        int
	ExcerptMaxLen    int
	CommentSampleMax int
	UpstreamTimeout  time.Duration
	ModelTimeout     time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	port := flag.String("port", ":5000", "server port")
	flag.Parse()

	cfg, err := fromEnv()
	if err != nil {
		return nil, err
	}

	if envPort := os.Getenv("PORT"); envPort != "" {
		if strings.HasPrefix(envPort, ":") {
			*port = envPort
		} else {
			*port = ":" + envPort
		}
	}
	cfg.Port = *port

	return cfg, nil
}

func fromEnv() (*Config, error) {
	apiKey := strings.TrimSpace(os.Getenv("GEMINI_API_KEY"))
	if apiKey == "" {
		return nil, fmt.Errorf("config: GEMINI_API_KEY is required")
	}

	env := strings.TrimSpace(os.Getenv("APP_ENV"))
	if env == "" {
		env = "local"
	}

	return &Config{
		Env:      env,
		LogLevel: firstNonEmpty(strings.TrimSpace(os.Getenv("LOG_LEVEL")), "debug"),
		Source: SourceConfig{
			Mode:         firstNonEmpty(strings.TrimSpace(os.Getenv("SOURCE_MODE")), "scraper"),
			BaseURL:      strings.TrimSpace(os.Getenv("SOURCE_BASE_URL")),
			SessionID:    strings.TrimSpace(os.Getenv("IG_SESSION_ID")),
			AccessToken:  strings.TrimSpace(os.Getenv("IG_ACCESS_TOKEN")),
			UserAgent:    firstNonEmpty(strings.TrimSpace(os.Getenv("SOURCE_USER_AGENT")), "safepost/1.0"),
			Timeout:      getSeconds("SOURCE_TIMEOUT_SECONDS", 15),
			CommentLimit: getInt("SOURCE_COMMENT_LIMIT", 10),
			CacheSize:    getInt("SOURCE_CACHE_SIZE", 128),
			CacheTTL:     getSeconds("SOURCE_CACHE_TTL_SECONDS", 120),
		},
		LLM: LLMConfig{
			APIKey: apiKey,
			Model:  firstNonEmpty(strings.TrimSpace(os.Getenv("GEMINI_MODEL")), "gemini-2.5-flash"),
			RPM:    getInt("LLM_RPM", 15),
			Burst:  getInt("LLM_BURST", 1),
		},
		Prompt: PromptConfig{
			Dialect: strings.TrimSpace(os.Getenv("PROMPT_DIALECT")),
		},
		Pipeline: PipelineConfig{
			PostLimit:        getInt("POST_LIMIT", 5),
			ExcerptMaxLen:    getInt("EXCERPT_MAX_LEN", 100),
			CommentSampleMax: getInt("COMMENT_SAMPLE_MAX", 50),
			UpstreamTimeout:  getSeconds("UPSTREAM_TIMEOUT_SECONDS", 15),
			ModelTimeout:     getSeconds("MODEL_TIMEOUT_SECONDS", 60),
		},
	}, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func getInt(key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}

func getSeconds(key string, fallback int) time.Duration {
	return time.Duration(getInt(key, fallback)) * time.Second
}

package config

import (
	"testing"
	"time"
)

func TestFromEnv_RequiresAPIKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	if _, err := fromEnv(); err == nil {
		t.Fatalf("expected error without GEMINI_API_KEY")
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "key")

	cfg, err := fromEnv()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Env != "local" {
		t.Fatalf("env = %q", cfg.Env)
	}
	if cfg.Source.Mode != "scraper" {
		t.Fatalf("source mode = %q", cfg.Source.Mode)
	}
	if cfg.Pipeline.PostLimit != 5 || cfg.Pipeline.ExcerptMaxLen != 100 {
		t.Fatalf("pipeline bounds = %+v", cfg.Pipeline)
	}
	if cfg.LLM.Model != "gemini-2.5-flash" || cfg.LLM.RPM != 15 {
		t.Fatalf("llm config = %+v", cfg.LLM)
	}
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "key")
	t.Setenv("SOURCE_MODE", "graph")
	t.Setenv("IG_ACCESS_TOKEN", "tok")
	t.Setenv("POST_LIMIT", "3")
	t.Setenv("MODEL_TIMEOUT_SECONDS", "30")
	t.Setenv("PROMPT_DIALECT", "english_json")

	cfg, err := fromEnv()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Source.Mode != "graph" || cfg.Source.AccessToken != "tok" {
		t.Fatalf("source = %+v", cfg.Source)
	}
	if cfg.Pipeline.PostLimit != 3 {
		t.Fatalf("post limit = %d", cfg.Pipeline.PostLimit)
	}
	if cfg.Pipeline.ModelTimeout != 30*time.Second {
		t.Fatalf("model timeout = %v", cfg.Pipeline.ModelTimeout)
	}
	if cfg.Prompt.Dialect != "english_json" {
		t.Fatalf("dialect = %q", cfg.Prompt.Dialect)
	}
}

func TestGetInt_IgnoresGarbage(t *testing.T) {
	t.Setenv("POST_LIMIT", "many")
	if got := getInt("POST_LIMIT", 5); got != 5 {
		t.Fatalf("getInt = %d, want fallback", got)
	}
}

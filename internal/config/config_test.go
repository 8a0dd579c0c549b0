package config

import (
	"testing"
	"time"
)

func TestLoadConfig_MissingAPIKey(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")

	if _, err := LoadConfig(); err == nil {
		t.Fatalf("expected error when api key is missing")
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "sk-test")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.HTTPPort != "8000" {
		t.Fatalf("expected default port 8000, got %q", cfg.HTTPPort)
	}
	if cfg.LLMBaseURL != "https://api.anthropic.com" {
		t.Fatalf("unexpected base url %q", cfg.LLMBaseURL)
	}
	if cfg.LLMTimeout != 60*time.Second {
		t.Fatalf("expected 60s timeout, got %s", cfg.LLMTimeout)
	}
	if len(cfg.CORSAllowedOrigins) != 1 || cfg.CORSAllowedOrigins[0] != "http://localhost:5173" {
		t.Fatalf("unexpected origins %+v", cfg.CORSAllowedOrigins)
	}
	if cfg.RateLimitMax != 30 || cfg.RateLimitWindow != time.Minute {
		t.Fatalf("unexpected rate limit defaults max=%d window=%s", cfg.RateLimitMax, cfg.RateLimitWindow)
	}
	if !cfg.MetricsEnabled {
		t.Fatalf("expected metrics enabled by default")
	}
	if len(cfg.MetricsModels) != 2 {
		t.Fatalf("unexpected metrics models %+v", cfg.MetricsModels)
	}
}

func TestLoadConfig_NormalizesOrigins(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "sk-test")
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.example.com/ ,,https://b.example.com")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	want := []string{"https://a.example.com", "https://b.example.com"}
	if len(cfg.CORSAllowedOrigins) != len(want) {
		t.Fatalf("expected %d origins, got %+v", len(want), cfg.CORSAllowedOrigins)
	}
	for i := range want {
		if cfg.CORSAllowedOrigins[i] != want[i] {
			t.Fatalf("origin %d: expected %q, got %q", i, want[i], cfg.CORSAllowedOrigins[i])
		}
	}
}

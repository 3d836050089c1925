package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Port != "8080" {
		t.Errorf("expected default port 8080, got %s", cfg.Port)
	}
	if cfg.Mode != "stateful" {
		t.Errorf("expected default mode stateful, got %s", cfg.Mode)
	}
	if cfg.LLMProvider != "gemini" {
		t.Errorf("expected default provider gemini, got %s", cfg.LLMProvider)
	}
	if !cfg.UseMemoryQueue {
		t.Error("expected memory queue enabled by default")
	}
	if cfg.ReportTimeout != 10*time.Second {
		t.Errorf("expected 10s report timeout, got %s", cfg.ReportTimeout)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("HONEYPOT_MODE", "stateless")
	t.Setenv("LLM_PROVIDER", "bedrock")
	t.Setenv("SESSION_TTL", "1h")
	t.Setenv("WORKER_COUNT", "5")

	cfg := Load()

	if cfg.Mode != "stateless" {
		t.Errorf("expected stateless mode, got %s", cfg.Mode)
	}
	if cfg.LLMProvider != "bedrock" {
		t.Errorf("expected bedrock provider, got %s", cfg.LLMProvider)
	}
	if cfg.SessionTTL != time.Hour {
		t.Errorf("expected 1h session TTL, got %s", cfg.SessionTTL)
	}
	if cfg.WorkerCount != 5 {
		t.Errorf("expected 5 workers, got %d", cfg.WorkerCount)
	}
}

func TestValidateRequiresGeminiKey(t *testing.T) {
	cfg := Load()
	cfg.LLMProvider = "gemini"
	cfg.GeminiAPIKey = ""

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for missing gemini key")
	}

	cfg.GeminiAPIKey = "test-key"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}
}

func TestValidateDisabledProviderNeedsNoCredentials(t *testing.T) {
	cfg := Load()
	cfg.LLMProvider = "none"
	cfg.GeminiAPIKey = ""

	if err := cfg.Validate(); err != nil {
		t.Fatalf("fallback-only mode must validate without credentials: %v", err)
	}
}

func TestValidateRejectsUnknownProvider(t *testing.T) {
	cfg := Load()
	cfg.LLMProvider = "groq"

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for unknown provider")
	}
}

func TestValidateSQSQueueNeedsURL(t *testing.T) {
	cfg := Load()
	cfg.GeminiAPIKey = "test-key"
	cfg.UseMemoryQueue = false
	cfg.IntelQueueURL = ""

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for missing queue URL")
	}
}

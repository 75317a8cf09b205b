package config

import (
	"testing"
	"time"
)

func validConfig() Config {
	return Config{
		DatabaseURL:        "postgres://localhost/emocare",
		JWTSecret:          "test-secret-1234567890",
		PoolMaxConns:       3,
		ResponderProvider:  ProviderMock,
		CrisisRegion:       "CO",
		SuggestionTimezone: "UTC",
	}
}

func TestValidateAcceptsMockProvider(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
}

func TestValidateRejectsWeakSecrets(t *testing.T) {
	for _, secret := range []string{"", "dev", "short-secret"} {
		cfg := validConfig()
		cfg.JWTSecret = secret
		if err := cfg.Validate(); err == nil {
			t.Fatalf("expected secret %q to be rejected", secret)
		}
	}
}

func TestValidateRequiresProviderKey(t *testing.T) {
	cfg := validConfig()
	cfg.ResponderProvider = ProviderGemini
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected missing GEMINI_API_KEY to fail")
	}
	cfg.GeminiAPIKey = "key"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected gemini config to pass, got %v", err)
	}

	cfg.ResponderProvider = "claude"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected unknown provider to fail")
	}
}

func TestValidateRejectsUnknownTimezone(t *testing.T) {
	cfg := validConfig()
	cfg.SuggestionTimezone = "Mars/Olympus"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected invalid timezone to fail")
	}
}

func TestValidateRejectsUnknownCrisisRegion(t *testing.T) {
	cfg := validConfig()
	cfg.CrisisRegion = "ZZ"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected unknown crisis region to fail")
	}
}

func TestDurationsFallBackToDefaults(t *testing.T) {
	cfg := Config{}
	if cfg.ResponderTimeout() != 20*time.Second {
		t.Fatalf("unexpected responder timeout %s", cfg.ResponderTimeout())
	}
	if cfg.PoolAcquireTimeout() != 5*time.Second {
		t.Fatalf("unexpected acquire timeout %s", cfg.PoolAcquireTimeout())
	}
	if cfg.TokenTTL() != 7*24*time.Hour {
		t.Fatalf("unexpected token ttl %s", cfg.TokenTTL())
	}
}

func TestGetEnvCSVTrimsAndFallsBack(t *testing.T) {
	t.Setenv("TEST_CSV", " a, ,b ")
	got := getEnvCSV("TEST_CSV", []string{"x"})
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("unexpected csv result %v", got)
	}

	t.Setenv("TEST_CSV", " , ")
	got = getEnvCSV("TEST_CSV", []string{"x"})
	if len(got) != 1 || got[0] != "x" {
		t.Fatalf("expected fallback, got %v", got)
	}
}

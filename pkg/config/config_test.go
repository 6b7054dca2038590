package config

import (
	"testing"
	"time"
)

func TestLoad_Success(t *testing.T) {
	setMinimalEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	if cfg.API.BaseURL != "https://api.example.test" {
		t.Fatalf("unexpected base url %q", cfg.API.BaseURL)
	}
	if cfg.API.Timeout != 10*time.Second {
		t.Fatalf("expected default timeout 10s, got %v", cfg.API.Timeout)
	}
	if cfg.API.PageSize != 10 {
		t.Fatalf("expected default page size 10, got %d", cfg.API.PageSize)
	}
	if !cfg.App.IsDev() {
		t.Fatalf("expected default dev env, got %q", cfg.App.Env)
	}
}

func TestLoad_TrimsTrailingSlash(t *testing.T) {
	setMinimalEnv(t)
	t.Setenv("STOREFRONT_API_BASE_URL", "https://api.example.test/")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}
	if cfg.API.BaseURL != "https://api.example.test" {
		t.Fatalf("expected trailing slash trimmed, got %q", cfg.API.BaseURL)
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	if _, err := Load(); err == nil {
		t.Fatal("expected missing base url to return an error")
	}
}

func TestLoad_RejectsBadBaseURL(t *testing.T) {
	setMinimalEnv(t)
	t.Setenv("STOREFRONT_API_BASE_URL", "ftp://files.example.test")

	if _, err := Load(); err == nil {
		t.Fatal("expected non-http base url to return an error")
	}
}

func setMinimalEnv(t *testing.T) {
	t.Helper()

	t.Setenv("STOREFRONT_API_BASE_URL", "https://api.example.test")
}

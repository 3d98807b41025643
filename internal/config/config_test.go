package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("API_KEY", "")
	t.Setenv("PORT", "")
	t.Setenv("FITSWAP_ANALYSIS_MODEL", "")
	t.Setenv("FITSWAP_IMAGE_MODEL", "")
	t.Setenv("FITSWAP_FALLBACK_IMAGE_MODEL", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.APIKey != "test-key" {
		t.Errorf("APIKey = %q, want test-key", cfg.APIKey)
	}
	if cfg.AnalysisModel != DefaultAnalysisModel {
		t.Errorf("AnalysisModel = %q, want %q", cfg.AnalysisModel, DefaultAnalysisModel)
	}
	if cfg.ImageModel == cfg.FallbackImageModel {
		t.Error("primary and fallback image models are identical")
	}
	if cfg.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Port)
	}
	if cfg.RequestTimeout != 120*time.Second {
		t.Errorf("RequestTimeout = %v, want 120s", cfg.RequestTimeout)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("API_KEY", "legacy-key")
	t.Setenv("PORT", "3001")
	t.Setenv("FITSWAP_IMAGE_MODEL", "custom-image-model")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.APIKey != "legacy-key" {
		t.Errorf("APIKey = %q, want legacy-key fallback", cfg.APIKey)
	}
	if cfg.Port != 3001 {
		t.Errorf("Port = %d, want 3001", cfg.Port)
	}
	if cfg.ImageModel != "custom-image-model" {
		t.Errorf("ImageModel = %q, want custom-image-model", cfg.ImageModel)
	}
}

func TestLoadMissingKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("API_KEY", "")

	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "GEMINI_API_KEY") {
		t.Errorf("err = %v, want missing key error", err)
	}
}

func TestLoadInvalidPort(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("PORT", "not-a-port")

	if _, err := Load(); err == nil {
		t.Error("Load accepted an invalid PORT")
	}
}

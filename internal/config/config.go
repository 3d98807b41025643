// Package config resolves server configuration from the environment once at
// startup. The resulting struct is passed by dependency injection; business
// logic never reads environment variables directly.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Gemini model IDs used by the swap pipeline.
//
// The analysis model is a text-capable multimodal model; the image models
// accept image output. Primary and fallback image models are functionally
// interchangeable — the fallback is tried exactly once after a transport
// failure on the primary.
const (
	// DefaultAnalysisModel performs person/product image analysis.
	DefaultAnalysisModel = "gemini-3-pro-preview"

	// DefaultImageModel is the primary image generation/editing model.
	DefaultImageModel = "gemini-3-pro-image-preview"

	// DefaultFallbackImageModel is tried once when the primary image model
	// fails with a transport error.
	DefaultFallbackImageModel = "gemini-2.5-flash-image"
)

// Config holds everything the server needs at runtime.
type Config struct {
	// APIKey authenticates against the Gemini API.
	APIKey string

	// AnalysisModel is the model ID used for image analysis calls.
	AnalysisModel string

	// ImageModel is the primary model ID for image generation/editing.
	ImageModel string

	// FallbackImageModel is the alternate model ID used after a transport
	// failure on ImageModel.
	FallbackImageModel string

	// Port is the HTTP listen port.
	Port int

	// RequestTimeout bounds a single outbound model call. Applied at the
	// transport layer only, so the orchestrator's retry semantics are not
	// affected.
	RequestTimeout time.Duration
}

// Load reads configuration from the environment. A .env.local file in the
// working directory is loaded first if present, matching the deployment
// convention of the frontend this server pairs with.
func Load() (*Config, error) {
	if err := godotenv.Load(".env.local"); err == nil {
		log.Debug().Msg("Loaded environment from .env.local")
	}

	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		apiKey = os.Getenv("API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY not set; create a .env.local with GEMINI_API_KEY=<key> or export it")
	}

	cfg := &Config{
		APIKey:             apiKey,
		AnalysisModel:      envOr("FITSWAP_ANALYSIS_MODEL", DefaultAnalysisModel),
		ImageModel:         envOr("FITSWAP_IMAGE_MODEL", DefaultImageModel),
		FallbackImageModel: envOr("FITSWAP_FALLBACK_IMAGE_MODEL", DefaultFallbackImageModel),
		Port:               8080,
		RequestTimeout:     120 * time.Second,
	}

	if port := os.Getenv("PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			return nil, fmt.Errorf("invalid PORT %q: %w", port, err)
		}
		cfg.Port = p
	}

	log.Debug().
		Str("analysis_model", cfg.AnalysisModel).
		Str("image_model", cfg.ImageModel).
		Str("fallback_image_model", cfg.FallbackImageModel).
		Int("port", cfg.Port).
		Msg("Configuration loaded")

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

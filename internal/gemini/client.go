// Package gemini adapts the google.golang.org/genai SDK to the two call
// shapes the pipeline needs: multimodal image generation/editing and
// text-only image analysis. Everything above this package depends on the
// Invoker interface so tests can substitute recording fakes.
package gemini

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"google.golang.org/genai"

	"github.com/pchoi/fitswap/internal/imaging"
)

// GenerateRequest describes one image generation or editing call.
type GenerateRequest struct {
	// Model is the model identifier for this call. The orchestrator passes
	// the primary or fallback ID explicitly; the gateway holds no default.
	Model string

	// Prompt is the full text directive.
	Prompt string

	// Images are sent inline after the prompt, in order. May be empty for
	// pure text-to-image generation.
	Images []*imaging.Asset

	// AspectRatio is an optional output hint, e.g. "3:4". Empty means the
	// model default.
	AspectRatio string
}

// GenerateResult is the outcome of a generation call that completed without
// a transport error. ImageData is nil when the model answered with text only;
// the caller decides how to surface that condition.
type GenerateResult struct {
	ImageData []byte
	MIMEType  string
	Text      string
}

// AnalyzeRequest describes one text-only multimodal analysis call.
type AnalyzeRequest struct {
	Model  string
	Prompt string
	Image  *imaging.Asset
}

// Invoker is the boundary to the generative model.
type Invoker interface {
	GenerateImage(ctx context.Context, req GenerateRequest) (*GenerateResult, error)
	AnalyzeImage(ctx context.Context, req AnalyzeRequest) (string, error)
}

// Client implements Invoker over the Gemini API.
type Client struct {
	client *genai.Client
}

var _ Invoker = (*Client)(nil)

// NewClient creates a Gemini-backed Invoker.
func NewClient(ctx context.Context, apiKey string) (*Client, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &Client{client: client}, nil
}

// GenerateImage sends the prompt and images to the given model and extracts
// the first inline image part of the response. Text parts are collected and
// logged; a text-only response is returned with nil ImageData and no error,
// since the call itself succeeded.
func (c *Client) GenerateImage(ctx context.Context, req GenerateRequest) (*GenerateResult, error) {
	startTime := time.Now()
	log.Info().
		Str("model", req.Model).
		Int("prompt_length", len(req.Prompt)).
		Int("image_count", len(req.Images)).
		Str("aspect_ratio", req.AspectRatio).
		Msg("Sending generation request to Gemini")

	parts := []*genai.Part{genai.NewPartFromText(req.Prompt)}
	for _, img := range req.Images {
		parts = append(parts, genai.NewPartFromBytes(img.Data, img.MIMEType))
	}

	cfg := &genai.GenerateContentConfig{
		ResponseModalities: []string{"TEXT", "IMAGE"},
	}
	if req.AspectRatio != "" {
		cfg.ImageConfig = &genai.ImageConfig{AspectRatio: req.AspectRatio}
	}

	contents := []*genai.Content{{Role: "user", Parts: parts}}
	resp, err := c.client.Models.GenerateContent(ctx, req.Model, contents, cfg)
	duration := time.Since(startTime)
	if err != nil {
		log.Error().Err(err).Str("model", req.Model).Dur("duration", duration).Msg("Gemini generation call failed")
		return nil, fmt.Errorf("gemini %s: %w", req.Model, err)
	}

	result := &GenerateResult{}
	for _, candidate := range resp.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part.InlineData != nil && len(part.InlineData.Data) > 0 && result.ImageData == nil {
				result.ImageData = part.InlineData.Data
				result.MIMEType = part.InlineData.MIMEType
			}
			if part.Text != "" {
				result.Text += part.Text
			}
		}
	}

	if result.ImageData == nil {
		// The model explained itself instead of editing. Worth surfacing in
		// diagnostics even though the caller reports it as "no image".
		log.Warn().
			Str("model", req.Model).
			Str("text", truncate(result.Text, 200)).
			Dur("duration", duration).
			Msg("Generation response contained no image part")
		return result, nil
	}

	log.Info().
		Str("model", req.Model).
		Int("output_bytes", len(result.ImageData)).
		Str("output_mime", result.MIMEType).
		Dur("duration", duration).
		Msg("Generation complete")

	return result, nil
}

// AnalyzeImage sends one image plus an analysis prompt to a text-capable
// model and returns the concatenated text of the response.
func (c *Client) AnalyzeImage(ctx context.Context, req AnalyzeRequest) (string, error) {
	startTime := time.Now()
	log.Debug().
		Str("model", req.Model).
		Int("prompt_length", len(req.Prompt)).
		Int("image_bytes", len(req.Image.Data)).
		Msg("Sending image to Gemini for analysis")

	parts := []*genai.Part{
		genai.NewPartFromText(req.Prompt),
		genai.NewPartFromBytes(req.Image.Data, req.Image.MIMEType),
	}
	cfg := &genai.GenerateContentConfig{
		ResponseModalities: []string{"TEXT"},
	}

	contents := []*genai.Content{{Role: "user", Parts: parts}}
	resp, err := c.client.Models.GenerateContent(ctx, req.Model, contents, cfg)
	duration := time.Since(startTime)
	if err != nil {
		log.Error().Err(err).Str("model", req.Model).Dur("duration", duration).Msg("Gemini analysis call failed")
		return "", fmt.Errorf("gemini %s: %w", req.Model, err)
	}

	text := resp.Text()
	log.Debug().
		Int("response_length", len(text)).
		Dur("duration", duration).
		Msg("Analysis response received")

	return text, nil
}

// truncate shortens a string to maxLen, appending "..." if shortened.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

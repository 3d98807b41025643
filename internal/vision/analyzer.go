// Package vision turns an image into an AnalysisRecord: a narrative
// description plus a best-effort structured attribute tree, extracted from a
// single multimodal model call.
//
// Analysis is deliberately non-fatal. The model output is free text with
// labeled sections that may be missing, malformed, or wrapped in prose; every
// parse failure degrades to a minimal fallback record instead of an error, so
// a best-effort edit downstream is always preferred over none.
package vision

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/pchoi/fitswap/internal/gemini"
	"github.com/pchoi/fitswap/internal/imaging"
	"github.com/pchoi/fitswap/internal/jsonutil"
	"github.com/pchoi/fitswap/internal/prompt"
)

// Role selects the analysis instruction and the labeled sections expected in
// the response.
type Role string

const (
	RolePerson  Role = "person"
	RoleProduct Role = "product"
)

// analysisPrompt returns the instruction text for this role.
func (r Role) analysisPrompt() string {
	if r == RolePerson {
		return prompt.PersonAnalysisPrompt
	}
	return prompt.ProductAnalysisPrompt
}

// labels returns the description and JSON section labels for this role,
// e.g. "PERSON_DESCRIPTION:" and "PERSON_JSON:".
func (r Role) labels() (descLabel, jsonLabel string) {
	upper := strings.ToUpper(string(r))
	return upper + "_DESCRIPTION:", upper + "_JSON:"
}

// fallbackAttributes is the minimal attribute tree substituted when no
// parseable JSON can be extracted from the model response.
func (r Role) fallbackAttributes() map[string]any {
	if r == RolePerson {
		return map[string]any{"garment_to_replace": map[string]any{"type": "unknown"}}
	}
	return map[string]any{"garment_type": "unknown"}
}

// AnalysisRecord is the always-well-formed result of one analysis call.
// Attributes is never nil. Degraded marks records whose attributes are the
// role fallback rather than model output.
type AnalysisRecord struct {
	Role        Role
	Description string
	Attributes  map[string]any
	Degraded    bool
}

// ParseOutcome is the tagged result of attribute extraction: either a tree
// parsed from the response (Structured true) or the role fallback.
type ParseOutcome struct {
	Attributes map[string]any
	Structured bool
}

// Analyzer runs role-specific image analysis against a text-capable model.
type Analyzer struct {
	invoker gemini.Invoker
	model   string
}

func NewAnalyzer(invoker gemini.Invoker, model string) *Analyzer {
	return &Analyzer{invoker: invoker, model: model}
}

// Analyze describes the image in the given role. It always returns a usable
// record: transport and parse failures degrade to the role fallback and are
// logged, never propagated.
func (a *Analyzer) Analyze(ctx context.Context, img *imaging.Asset, role Role) *AnalysisRecord {
	text, err := a.invoker.AnalyzeImage(ctx, gemini.AnalyzeRequest{
		Model:  a.model,
		Prompt: role.analysisPrompt(),
		Image:  img,
	})
	if err != nil {
		log.Warn().Err(err).Str("role", string(role)).Msg("Image analysis call failed, continuing with fallback record")
		return &AnalysisRecord{
			Role:       role,
			Attributes: role.fallbackAttributes(),
			Degraded:   true,
		}
	}

	record := parseAnalysisResponse(text, role)
	if record.Degraded {
		log.Warn().Str("role", string(role)).Msg("Could not extract structured attributes from analysis response, using fallback record")
	}
	return record
}

// Describe returns a one-paragraph description of the image with no
// structured extraction. Unlike Analyze, failures propagate to the caller.
func (a *Analyzer) Describe(ctx context.Context, img *imaging.Asset) (string, error) {
	text, err := a.invoker.AnalyzeImage(ctx, gemini.AnalyzeRequest{
		Model:  a.model,
		Prompt: prompt.ReferenceDescriptionPrompt,
		Image:  img,
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// parseAnalysisResponse splits a model response into its labeled description
// and JSON sections. Tolerates a missing description label (the text before
// the JSON label, or the whole response, serves as description), a missing or
// malformed JSON section (a balanced object anywhere in the response is tried
// next), and finally substitutes the role fallback.
func parseAnalysisResponse(text string, role Role) *AnalysisRecord {
	descLabel, jsonLabel := role.labels()

	descPart := text
	jsonPart := ""
	if idx := strings.Index(text, jsonLabel); idx >= 0 {
		descPart = text[:idx]
		jsonPart = text[idx+len(jsonLabel):]
	}
	if idx := strings.Index(descPart, descLabel); idx >= 0 {
		descPart = descPart[idx+len(descLabel):]
	}

	outcome := extractAttributes(jsonPart, text, role)
	return &AnalysisRecord{
		Role:        role,
		Description: strings.TrimSpace(descPart),
		Attributes:  outcome.Attributes,
		Degraded:    !outcome.Structured,
	}
}

// extractAttributes attempts the labeled JSON section first, then a balanced
// object anywhere in the full response, then the role fallback.
func extractAttributes(labeled, full string, role Role) ParseOutcome {
	for _, candidate := range []string{labeled, full} {
		if candidate == "" {
			continue
		}
		attrs, err := jsonutil.ParseObject(candidate)
		if err != nil {
			log.Debug().Err(err).Str("role", string(role)).Msg("Candidate text contained no parseable JSON object")
			continue
		}
		return ParseOutcome{Attributes: attrs, Structured: true}
	}
	return ParseOutcome{Attributes: role.fallbackAttributes()}
}

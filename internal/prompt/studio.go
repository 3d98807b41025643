package prompt

import (
	"fmt"
	"strings"
)

// AssetSpec describes one sub-asset of a scene request (the model or the
// location). Prompt is the caller's free text; ReferenceDescription is the
// analyzed description of a supplied reference image, empty when none was
// given.
type AssetSpec struct {
	Prompt               string
	ReferenceDescription string
}

// SceneParams are the inputs for a scene generation prompt.
type SceneParams struct {
	Description string
	Gender      string
	AspectRatio string
	Model       AssetSpec
	Location    AssetSpec
}

// ObjectParams are the inputs for a standalone garment shot prompt.
type ObjectParams struct {
	Description string
	GarmentType string
}

const (
	defaultModelPrompt    = "A professional fashion model"
	defaultLocationPrompt = "A studio background"
)

// BuildScenePrompt assembles a text-to-image prompt for a fashion scene.
func BuildScenePrompt(params SceneParams) string {
	gender := params.Gender
	if gender == "" {
		gender = "Not specified"
	}

	var b strings.Builder
	b.WriteString("Generate a photorealistic fashion scene.\n")
	fmt.Fprintf(&b, "Aspect Ratio: %s.\n\n", params.AspectRatio)
	fmt.Fprintf(&b, "Scene Description: %s\n\n", params.Description)
	b.WriteString("Model Details:\n")
	fmt.Fprintf(&b, "Gender: %s\n", gender)
	fmt.Fprintf(&b, "Description: %s\n", orDefault(params.Model.Prompt, defaultModelPrompt))
	writeReference(&b, params.Model.ReferenceDescription)
	b.WriteString("\nLocation Details:\n")
	fmt.Fprintf(&b, "Description: %s\n", orDefault(params.Location.Prompt, defaultLocationPrompt))
	writeReference(&b, params.Location.ReferenceDescription)
	b.WriteString("\nLighting: Professional fashion photography lighting, high detail, 4k.")
	return b.String()
}

// BuildObjectPrompt assembles a text-to-image prompt for an isolated garment
// product shot.
func BuildObjectPrompt(params ObjectParams) string {
	var b strings.Builder
	b.WriteString("Generate a high-quality product shot of a fashion item.\n")
	fmt.Fprintf(&b, "Item Type: %s\n", params.GarmentType)
	fmt.Fprintf(&b, "Description: %s\n", params.Description)
	b.WriteString("Style: Isolated on a neutral background, professional product photography.")
	return b.String()
}

// BuildPosePrompt assembles the re-posing directive. Two variants: with
// garment reference images the model re-dresses and re-poses in one step;
// without them the garment already on the model is preserved as is.
func BuildPosePrompt(instruction string, hasGarments bool) string {
	var b strings.Builder
	b.WriteString("You are an expert fashion photographer and editor.\n\n")

	if hasGarments {
		b.WriteString("TASK: NEW POSE GENERATION & GARMENT SWAP\n")
		b.WriteString(orDefault(strings.TrimSpace(instruction), "Generate a new, dynamic fashion pose for the model."))
		b.WriteString("\n\nINPUTS:\n")
		b.WriteString("1. FIRST IMAGE (Scene/Model): Contains the target model (identity, face, body type) and the background location.\n")
		b.WriteString("2. SUBSEQUENT IMAGE(S) (Garment): Contains the garment(s) the model should be wearing.\n\n")
		b.WriteString("REQUIREMENTS:\n")
		b.WriteString("1. IDENTITY: Preserve the EXACT facial features, hair, skin tone, and body type of the model from the First Image.\n")
		b.WriteString("2. GARMENT: The model must be wearing the garment(s) shown in the Subsequent Image(s). The garment details (texture, logo, pattern) must be preserved.\n")
		b.WriteString("3. LOCATION: The background/environment must match the First Image (same lighting vibe, same setting).\n")
	} else {
		b.WriteString("TASK: NEW POSE GENERATION (RE-POSE)\n")
		b.WriteString(orDefault(strings.TrimSpace(instruction), "Generate a new, dynamic fashion pose for the model in the image."))
		b.WriteString("\n\nINPUTS:\n")
		b.WriteString("1. INPUT IMAGE: Contains the model wearing the correct garment in a specific location.\n\n")
		b.WriteString("REQUIREMENTS:\n")
		b.WriteString("1. IDENTITY: Preserve the EXACT facial features, hair, skin tone, and body type of the model.\n")
		b.WriteString("2. GARMENT: Preserve the EXACT garment the model is currently wearing (style, texture, color, logo, pattern).\n")
		b.WriteString("3. LOCATION: The background/environment must match the original image (same lighting vibe, same setting).\n")
	}

	b.WriteString("4. POSE: IGNORE the ")
	if hasGarments {
		b.WriteString("pose in the First Image.")
	} else {
		b.WriteString("current pose.")
	}
	b.WriteString(" Generate a COMPLETELY NEW, professional fashion pose.\n")
	b.WriteString("   - The pose should be natural and photorealistic.\n")
	b.WriteString("   - The garment should drape naturally in the new pose.\n\n")
	b.WriteString("OUTPUT:\n")
	b.WriteString("A photorealistic image of the SAME model, in the SAME location, wearing the SAME garment, but in a NEW pose.\n")
	b.WriteString("High quality, 4k, fashion photography style.")
	return b.String()
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

func writeReference(b *strings.Builder, description string) {
	if description == "" {
		return
	}
	fmt.Fprintf(b, "Reference: %s\n", description)
}

// Package prompt builds the text sent to the generative models.
//
// Analysis instructions are stored as text files under prompts/ and embedded
// at compile time. The swap directive and the studio prompts are assembled by
// pure functions: no network, no randomness, same output for same input.
package prompt

import (
	_ "embed"
)

// PersonAnalysisPrompt asks for a joint-by-joint pose breakdown plus a
// structured attribute tree, formatted as PERSON_DESCRIPTION / PERSON_JSON
// labeled sections.
//
//go:embed prompts/person-analysis.txt
var PersonAnalysisPrompt string

// ProductAnalysisPrompt asks for garment taxonomy (type, colors, materials,
// construction, graphics), formatted as PRODUCT_DESCRIPTION / PRODUCT_JSON
// labeled sections. Graphics reproduction is deferred to the image itself.
//
//go:embed prompts/product-analysis.txt
var ProductAnalysisPrompt string

// ReferenceDescriptionPrompt asks for a single descriptive paragraph of a
// reference image, with no structured output.
//
//go:embed prompts/reference-description.txt
var ReferenceDescriptionPrompt string

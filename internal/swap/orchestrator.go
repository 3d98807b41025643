// Package swap sequences the garment-swap pipeline: analyze the person
// image, analyze each product image in order, synthesize the editing
// directive, and invoke the image model with one bounded fallback retry.
package swap

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/pchoi/fitswap/internal/gemini"
	"github.com/pchoi/fitswap/internal/imaging"
	"github.com/pchoi/fitswap/internal/prompt"
	"github.com/pchoi/fitswap/internal/vision"
)

var (
	// ErrInvalidRequest marks a request missing the person image or any
	// product image. Rejected before any model call is made.
	ErrInvalidRequest = errors.New("swap requires a person image and at least one product image")

	// ErrNoImageProduced marks a generation call that completed but answered
	// with text only. Not retried: the transport worked, the model declined.
	ErrNoImageProduced = errors.New("no image generated in response")
)

// UnavailableError reports that both the primary and the fallback generation
// attempts failed. Both underlying messages are kept for diagnostics.
type UnavailableError struct {
	Primary  error
	Fallback error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("generation failed: %v. Fallback also failed: %v", e.Primary, e.Fallback)
}

func (e *UnavailableError) Unwrap() []error {
	return []error{e.Primary, e.Fallback}
}

// Request is one garment-swap invocation. Products order is meaningful: it
// assigns the PRODUCT IMAGE n labels in the directive.
type Request struct {
	Person      *imaging.Asset
	Products    []*imaging.Asset
	Instruction string
}

// Result is the full audit trail of a successful swap: the output image plus
// everything the pipeline derived along the way.
type Result struct {
	Image        *imaging.Asset
	Person       *vision.AnalysisRecord
	Products     []*vision.AnalysisRecord
	Directive    string
	Model        string
	UsedFallback bool
}

// Orchestrator runs the swap pipeline. Model identifiers are injected at
// construction; business logic never reads ambient configuration.
type Orchestrator struct {
	analyzer      *vision.Analyzer
	invoker       gemini.Invoker
	primaryModel  string
	fallbackModel string
}

func NewOrchestrator(analyzer *vision.Analyzer, invoker gemini.Invoker, primaryModel, fallbackModel string) *Orchestrator {
	return &Orchestrator{
		analyzer:      analyzer,
		invoker:       invoker,
		primaryModel:  primaryModel,
		fallbackModel: fallbackModel,
	}
}

// Run executes one swap. Analysis steps never fail the pipeline (they
// degrade to fallback records); generation gets exactly one retry with the
// fallback model, and only when the primary call itself fails. A completed
// call with no image part is final.
func (o *Orchestrator) Run(ctx context.Context, req Request) (*Result, error) {
	if req.Person == nil || len(req.Products) == 0 {
		return nil, ErrInvalidRequest
	}

	log.Info().Int("product_count", len(req.Products)).Msg("Starting garment swap workflow")

	person := o.analyzer.Analyze(ctx, req.Person, vision.RolePerson)
	log.Info().
		Int("description_length", len(person.Description)).
		Bool("degraded", person.Degraded).
		Msg("Person image analyzed")

	products := make([]*vision.AnalysisRecord, len(req.Products))
	for i, img := range req.Products {
		products[i] = o.analyzer.Analyze(ctx, img, vision.RoleProduct)
		log.Info().
			Int("product", i+1).
			Bool("degraded", products[i].Degraded).
			Msg("Product image analyzed")
	}

	directive := prompt.BuildSwapDirective(promptPerson(person), promptProducts(products), req.Instruction)
	log.Debug().Int("directive_length", len(directive)).Msg("Swap directive synthesized")

	images := make([]*imaging.Asset, 0, len(req.Products)+1)
	images = append(images, req.Person)
	images = append(images, req.Products...)

	genReq := gemini.GenerateRequest{
		Model:  o.primaryModel,
		Prompt: directive,
		Images: images,
	}

	model := o.primaryModel
	usedFallback := false
	generated, primaryErr := o.invoker.GenerateImage(ctx, genReq)
	if primaryErr != nil {
		log.Warn().Err(primaryErr).Str("fallback_model", o.fallbackModel).Msg("Primary generation failed, retrying with fallback model")
		genReq.Model = o.fallbackModel
		var fallbackErr error
		generated, fallbackErr = o.invoker.GenerateImage(ctx, genReq)
		if fallbackErr != nil {
			return nil, &UnavailableError{Primary: primaryErr, Fallback: fallbackErr}
		}
		model = o.fallbackModel
		usedFallback = true
	}

	if generated.ImageData == nil {
		return nil, ErrNoImageProduced
	}

	mimeType := generated.MIMEType
	if mimeType == "" {
		mimeType = "image/png"
	}

	log.Info().Str("model", model).Bool("used_fallback", usedFallback).Msg("Swap complete")

	return &Result{
		Image:        &imaging.Asset{Data: generated.ImageData, MIMEType: mimeType},
		Person:       person,
		Products:     products,
		Directive:    directive,
		Model:        model,
		UsedFallback: usedFallback,
	}, nil
}

func promptPerson(record *vision.AnalysisRecord) prompt.Person {
	return prompt.Person{Description: record.Description, Attributes: record.Attributes}
}

func promptProducts(records []*vision.AnalysisRecord) []prompt.Product {
	out := make([]prompt.Product, len(records))
	for i, r := range records {
		out[i] = prompt.Product{Description: r.Description, Attributes: r.Attributes}
	}
	return out
}

// Package studio covers the single-pass generation endpoints: fashion scene
// generation, standalone garment shots, and pose regeneration. Unlike the
// swap pipeline there is no multi-stage analysis and no fallback retry; each
// operation is one prompt-template call.
package studio

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/pchoi/fitswap/internal/gemini"
	"github.com/pchoi/fitswap/internal/imaging"
	"github.com/pchoi/fitswap/internal/prompt"
	"github.com/pchoi/fitswap/internal/vision"
)

// ErrNoImage marks a generation call that completed without an image part.
var ErrNoImage = errors.New("no image generated in response")

const (
	sceneAspectRatio  = "3:4"
	objectAspectRatio = "1:1"
)

// AssetConfig describes one sub-asset of a scene request. A reference image,
// when present, is described in a single analysis pass and both the
// description and the image itself are fed to generation.
type AssetConfig struct {
	Prompt         string
	ReferenceImage *imaging.Asset
}

// SceneRequest are the inputs for scene generation.
type SceneRequest struct {
	Description string
	Gender      string
	AspectRatio string
	Model       AssetConfig
	Location    AssetConfig
}

// ObjectRequest are the inputs for a standalone garment shot.
type ObjectRequest struct {
	Description string
	GarmentType string
}

// PoseRequest are the inputs for pose regeneration. Garments is optional;
// when present the model is re-dressed and re-posed in one step.
type PoseRequest struct {
	Scene       *imaging.Asset
	Garments    []*imaging.Asset
	Instruction string
}

// Service runs the single-pass generation operations.
type Service struct {
	analyzer *vision.Analyzer
	invoker  gemini.Invoker
	model    string
}

func NewService(analyzer *vision.Analyzer, invoker gemini.Invoker, imageModel string) *Service {
	return &Service{analyzer: analyzer, invoker: invoker, model: imageModel}
}

// GenerateScene produces a fashion scene from text plus optional model and
// location reference images. Reference description failures are logged and
// skipped; the reference image still accompanies the request.
func (s *Service) GenerateScene(ctx context.Context, req SceneRequest) (*imaging.Asset, error) {
	params := prompt.SceneParams{
		Description: req.Description,
		Gender:      req.Gender,
		AspectRatio: req.AspectRatio,
		Model:       prompt.AssetSpec{Prompt: req.Model.Prompt},
		Location:    prompt.AssetSpec{Prompt: req.Location.Prompt},
	}

	var images []*imaging.Asset
	if req.Model.ReferenceImage != nil {
		params.Model.ReferenceDescription = s.describeReference(ctx, req.Model.ReferenceImage, "model")
		images = append(images, req.Model.ReferenceImage)
	}
	if req.Location.ReferenceImage != nil {
		params.Location.ReferenceDescription = s.describeReference(ctx, req.Location.ReferenceImage, "location")
		images = append(images, req.Location.ReferenceImage)
	}

	return s.generate(ctx, gemini.GenerateRequest{
		Model:       s.model,
		Prompt:      prompt.BuildScenePrompt(params),
		Images:      images,
		AspectRatio: sceneAspectRatio,
	})
}

// GenerateObject produces an isolated product shot of a garment.
func (s *Service) GenerateObject(ctx context.Context, req ObjectRequest) (*imaging.Asset, error) {
	return s.generate(ctx, gemini.GenerateRequest{
		Model: s.model,
		Prompt: prompt.BuildObjectPrompt(prompt.ObjectParams{
			Description: req.Description,
			GarmentType: req.GarmentType,
		}),
		AspectRatio: objectAspectRatio,
	})
}

// RegeneratePose re-poses the model in the scene image, optionally dressing
// it in the supplied garment images at the same time.
func (s *Service) RegeneratePose(ctx context.Context, req PoseRequest) (*imaging.Asset, error) {
	images := append([]*imaging.Asset{req.Scene}, req.Garments...)
	return s.generate(ctx, gemini.GenerateRequest{
		Model:  s.model,
		Prompt: prompt.BuildPosePrompt(req.Instruction, len(req.Garments) > 0),
		Images: images,
	})
}

func (s *Service) generate(ctx context.Context, req gemini.GenerateRequest) (*imaging.Asset, error) {
	result, err := s.invoker.GenerateImage(ctx, req)
	if err != nil {
		return nil, err
	}
	if result.ImageData == nil {
		return nil, ErrNoImage
	}
	mimeType := result.MIMEType
	if mimeType == "" {
		mimeType = "image/png"
	}
	return &imaging.Asset{Data: result.ImageData, MIMEType: mimeType}, nil
}

func (s *Service) describeReference(ctx context.Context, img *imaging.Asset, kind string) string {
	description, err := s.analyzer.Describe(ctx, img)
	if err != nil {
		log.Warn().Err(err).Str("reference", kind).Msg("Reference image description failed, generating without it")
		return ""
	}
	return description
}

package web

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/pchoi/fitswap/internal/imaging"
	"github.com/pchoi/fitswap/internal/library"
	"github.com/pchoi/fitswap/internal/studio"
	"github.com/pchoi/fitswap/internal/swap"
)

// --- Swap ---

type swapRequest struct {
	SceneImage   string   `json:"sceneImage"`
	ObjectImages []string `json:"objectImages"`
	Instruction  string   `json:"instruction"`
}

type swapProductMetadata struct {
	Index       int            `json:"index"`
	Description string         `json:"description"`
	JSON        map[string]any `json:"json"`
}

type swapMetadata struct {
	PersonDescription string                `json:"personDescription"`
	PersonJSON        map[string]any        `json:"personJSON"`
	Products          []swapProductMetadata `json:"products"`
	Instruction       *string               `json:"instruction"`
	GarmentCount      int                   `json:"garmentCount"`
}

type swapResponse struct {
	ImageURL string       `json:"imageUrl"`
	Metadata swapMetadata `json:"metadata"`
}

func (s *Server) handleSwap(w http.ResponseWriter, r *http.Request) {
	var req swapRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if req.SceneImage == "" || len(req.ObjectImages) == 0 {
		httpError(w, http.StatusBadRequest, "Missing input images")
		return
	}

	person, err := s.decodeInput(r.Context(), req.SceneImage)
	if err != nil {
		respondDomainError(w, err, "Failed to read scene image")
		return
	}
	products := make([]*imaging.Asset, len(req.ObjectImages))
	for i, encoded := range req.ObjectImages {
		if products[i], err = s.decodeInput(r.Context(), encoded); err != nil {
			respondDomainError(w, err, "Failed to read product image")
			return
		}
	}

	result, err := s.swapper.Run(r.Context(), swap.Request{
		Person:      person,
		Products:    products,
		Instruction: req.Instruction,
	})
	if err != nil {
		respondDomainError(w, err, "Failed to process swap")
		return
	}

	respondJSON(w, http.StatusOK, swapResponse{
		ImageURL: result.Image.DataURI(),
		Metadata: buildSwapMetadata(result, req.Instruction),
	})
}

func buildSwapMetadata(result *swap.Result, instruction string) swapMetadata {
	products := make([]swapProductMetadata, len(result.Products))
	for i, record := range result.Products {
		products[i] = swapProductMetadata{
			Index:       i + 1,
			Description: record.Description,
			JSON:        record.Attributes,
		}
	}

	metadata := swapMetadata{
		PersonDescription: result.Person.Description,
		PersonJSON:        result.Person.Attributes,
		Products:          products,
		GarmentCount:      len(result.Products),
	}
	if instruction != "" {
		metadata.Instruction = &instruction
	}
	return metadata
}

// --- Generation ---

type generateRequest struct {
	Type   string          `json:"type"`
	Params json.RawMessage `json:"params"`
}

type assetConfigBody struct {
	Source         string `json:"source"`
	Prompt         string `json:"prompt"`
	ReferenceImage string `json:"referenceImage"`
}

type sceneParamsBody struct {
	Prompt         string          `json:"prompt"`
	Gender         string          `json:"gender"`
	AspectRatio    string          `json:"aspectRatio"`
	ModelConfig    assetConfigBody `json:"modelConfig"`
	LocationConfig assetConfigBody `json:"locationConfig"`
}

type objectParamsBody struct {
	Prompt string `json:"prompt"`
	Type   string `json:"type"`
}

type imageResponse struct {
	ImageURL string `json:"imageUrl"`
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	var (
		asset *imaging.Asset
		err   error
	)
	switch req.Type {
	case "scene":
		var params sceneParamsBody
		if err := json.Unmarshal(req.Params, &params); err != nil {
			httpError(w, http.StatusBadRequest, "Invalid generation parameters")
			return
		}
		asset, err = s.generateScene(r.Context(), params)
	case "object":
		var params objectParamsBody
		if err := json.Unmarshal(req.Params, &params); err != nil {
			httpError(w, http.StatusBadRequest, "Invalid generation parameters")
			return
		}
		asset, err = s.studio.GenerateObject(r.Context(), studio.ObjectRequest{
			Description: params.Prompt,
			GarmentType: params.Type,
		})
	default:
		httpError(w, http.StatusBadRequest, "Unknown generation type")
		return
	}
	if err != nil {
		respondDomainError(w, err, "Failed to generate image")
		return
	}

	respondJSON(w, http.StatusOK, imageResponse{ImageURL: asset.DataURI()})
}

func (s *Server) generateScene(ctx context.Context, params sceneParamsBody) (*imaging.Asset, error) {
	req := studio.SceneRequest{
		Description: params.Prompt,
		Gender:      params.Gender,
		AspectRatio: params.AspectRatio,
		Model:       studio.AssetConfig{Prompt: params.ModelConfig.Prompt},
		Location:    studio.AssetConfig{Prompt: params.LocationConfig.Prompt},
	}

	var err error
	if params.ModelConfig.ReferenceImage != "" {
		if req.Model.ReferenceImage, err = s.decodeInput(ctx, params.ModelConfig.ReferenceImage); err != nil {
			return nil, err
		}
	}
	if params.LocationConfig.ReferenceImage != "" {
		if req.Location.ReferenceImage, err = s.decodeInput(ctx, params.LocationConfig.ReferenceImage); err != nil {
			return nil, err
		}
	}

	return s.studio.GenerateScene(ctx, req)
}

// --- Pose ---

type poseRequest struct {
	SceneImage   string   `json:"sceneImage"`
	ObjectImages []string `json:"objectImages"`
	Instruction  string   `json:"instruction"`
}

func (s *Server) handlePose(w http.ResponseWriter, r *http.Request) {
	var req poseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if req.SceneImage == "" {
		httpError(w, http.StatusBadRequest, "Missing input image")
		return
	}

	scene, err := s.decodeInput(r.Context(), req.SceneImage)
	if err != nil {
		respondDomainError(w, err, "Failed to read scene image")
		return
	}
	garments := make([]*imaging.Asset, len(req.ObjectImages))
	for i, encoded := range req.ObjectImages {
		if garments[i], err = s.decodeInput(r.Context(), encoded); err != nil {
			respondDomainError(w, err, "Failed to read garment image")
			return
		}
	}

	asset, err := s.studio.RegeneratePose(r.Context(), studio.PoseRequest{
		Scene:       scene,
		Garments:    garments,
		Instruction: req.Instruction,
	})
	if err != nil {
		respondDomainError(w, err, "Failed to generate pose")
		return
	}

	respondJSON(w, http.StatusOK, imageResponse{ImageURL: asset.DataURI()})
}

// --- Library ---

type librarySaveRequest struct {
	Kind     library.Kind `json:"kind"`
	Name     string       `json:"name"`
	ImageURL string       `json:"imageUrl"`
}

func (s *Server) handleLibraryList(w http.ResponseWriter, r *http.Request) {
	kind := library.Kind(r.URL.Query().Get("kind"))
	if kind != "" && !kind.Valid() {
		httpError(w, http.StatusBadRequest, "Unknown element kind")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"elements": s.library.List(kind)})
}

func (s *Server) handleLibrarySave(w http.ResponseWriter, r *http.Request) {
	var req librarySaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if !req.Kind.Valid() {
		httpError(w, http.StatusBadRequest, "Unknown element kind")
		return
	}
	if req.ImageURL == "" {
		httpError(w, http.StatusBadRequest, "Missing element image")
		return
	}
	respondJSON(w, http.StatusCreated, s.library.Save(req.Kind, req.Name, req.ImageURL))
}

func (s *Server) handleLibraryGet(w http.ResponseWriter, r *http.Request) {
	element, err := s.library.Get(r.PathValue("id"))
	if err != nil {
		respondDomainError(w, err, "Failed to load element")
		return
	}
	respondJSON(w, http.StatusOK, element)
}

func (s *Server) handleLibraryDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.library.Delete(r.PathValue("id")); err != nil {
		respondDomainError(w, err, "Failed to delete element")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// decodeInput accepts the three client-side image forms: a remote URL, a
// data: URI, or bare base64.
func (s *Server) decodeInput(ctx context.Context, value string) (*imaging.Asset, error) {
	if strings.HasPrefix(value, "http://") || strings.HasPrefix(value, "https://") {
		return s.codec.FetchAndEncode(ctx, value)
	}
	return s.codec.DecodeBase64(value)
}


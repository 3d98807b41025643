// Package imaging converts caller-supplied images into the bounded, transport
// ready form the generation pipeline works with. Uploads and fetched resources
// are decoded, downscaled to a maximum long edge, and re-encoded at a fixed
// lossy quality so payloads stay well under the model API limits.
package imaging

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/chai2010/webp"
	"github.com/evanoberholster/imagemeta"
	"github.com/rs/zerolog/log"
	"golang.org/x/image/draw"
)

// MaxLongEdge is the maximum dimension (width or height) of an encoded asset.
const MaxLongEdge = 1024

// MaxUploadBytes caps the size of a raw input image (10 MiB).
const MaxUploadBytes = 10 << 20

// jpegQuality is the fixed re-encode quality for downscaled assets.
const jpegQuality = 85

// ErrAssetUnavailable indicates an input image could not be read or decoded.
// The HTTP layer maps it to a client error.
var ErrAssetUnavailable = errors.New("image asset unavailable")

// Asset is an encoded, size-bounded image ready for transport. Assets are
// created once and never mutated; they live for the duration of one request.
type Asset struct {
	Data     []byte
	MIMEType string
}

// Base64 returns the asset data as standard base64 text.
func (a *Asset) Base64() string {
	return base64.StdEncoding.EncodeToString(a.Data)
}

// DataURI returns the asset as a data: URI suitable for direct display.
func (a *Asset) DataURI() string {
	return fmt.Sprintf("data:%s;base64,%s", a.MIMEType, a.Base64())
}

// Codec encodes raw images into Assets. The zero value is not usable; use
// NewCodec.
type Codec struct {
	httpClient *http.Client
}

// NewCodec returns a Codec. A nil client gets a default with a fetch timeout.
func NewCodec(client *http.Client) *Codec {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Codec{httpClient: client}
}

// Encode decodes raw image bytes (JPEG, PNG, or WebP), downscales so the long
// edge is at most MaxLongEdge, and re-encodes as JPEG.
func (c *Codec) Encode(raw []byte) (*Asset, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: empty input", ErrAssetUnavailable)
	}
	if len(raw) > MaxUploadBytes {
		return nil, fmt.Errorf("%w: input is %d bytes, limit is %d", ErrAssetUnavailable, len(raw), MaxUploadBytes)
	}

	img, err := decodeImage(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAssetUnavailable, err)
	}

	probeMetadata(raw)

	bounds := img.Bounds()
	origWidth := bounds.Dx()
	origHeight := bounds.Dy()
	newWidth, newHeight := fitLongEdge(origWidth, origHeight, MaxLongEdge)

	if newWidth != origWidth || newHeight != origHeight {
		resized := image.NewRGBA(image.Rect(0, 0, newWidth, newHeight))
		draw.CatmullRom.Scale(resized, resized.Bounds(), img, bounds, draw.Over, nil)
		img = resized
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("%w: encode: %v", ErrAssetUnavailable, err)
	}

	log.Debug().
		Int("input_bytes", len(raw)).
		Int("output_bytes", buf.Len()).
		Int("orig_width", origWidth).
		Int("orig_height", origHeight).
		Int("width", newWidth).
		Int("height", newHeight).
		Msg("Image encoded")

	return &Asset{Data: buf.Bytes(), MIMEType: "image/jpeg"}, nil
}

// DecodeBase64 encodes an image supplied as base64 text. A data: URI prefix
// is tolerated; clients send both forms.
func (c *Codec) DecodeBase64(s string) (*Asset, error) {
	s = strings.TrimSpace(s)
	if idx := strings.Index(s, ";base64,"); strings.HasPrefix(s, "data:") && idx != -1 {
		s = s[idx+len(";base64,"):]
	}
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid base64: %v", ErrAssetUnavailable, err)
	}
	return c.Encode(raw)
}

// FetchAndEncode retrieves an image by URL and encodes it. Library items and
// previously generated results arrive as data: URIs; those are decoded
// locally without a network call.
func (c *Codec) FetchAndEncode(ctx context.Context, url string) (*Asset, error) {
	if strings.HasPrefix(url, "data:") {
		return c.DecodeBase64(url)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAssetUnavailable, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch: %v", ErrAssetUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: fetch returned status %d", ErrAssetUnavailable, resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, MaxUploadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrAssetUnavailable, err)
	}
	return c.Encode(raw)
}

// decodeImage sniffs the content type and decodes JPEG, PNG, or WebP.
func decodeImage(raw []byte) (image.Image, error) {
	contentType := http.DetectContentType(raw)
	switch contentType {
	case "image/jpeg":
		return jpeg.Decode(bytes.NewReader(raw))
	case "image/png":
		return png.Decode(bytes.NewReader(raw))
	case "image/webp":
		return webp.Decode(bytes.NewReader(raw))
	default:
		return nil, fmt.Errorf("unsupported content type %s", contentType)
	}
}

// fitLongEdge scales (width, height) down so the longer edge is at most max,
// preserving aspect ratio. Images already within bounds are untouched.
func fitLongEdge(width, height, max int) (int, int) {
	if width <= max && height <= max {
		return width, height
	}
	if width >= height {
		return max, height * max / width
	}
	return width * max / height, max
}

// probeMetadata logs camera EXIF info when present. Purely diagnostic; any
// failure is ignored since most generated or re-encoded images carry no EXIF.
func probeMetadata(raw []byte) {
	exifData, err := imagemeta.Decode(bytes.NewReader(raw))
	if err != nil {
		return
	}
	cameraMake := strings.TrimSpace(exifData.Make)
	cameraModel := strings.TrimSpace(exifData.Model)
	if cameraMake == "" && cameraModel == "" {
		return
	}
	log.Debug().
		Str("camera_make", cameraMake).
		Str("camera_model", cameraModel).
		Msg("Input image EXIF")
}

package prompt

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Person carries the analyzed scene image: a narrative description plus the
// extracted attribute tree. Attributes is never nil; a minimal fallback tree
// is substituted upstream when extraction fails.
type Person struct {
	Description string
	Attributes  map[string]any
}

// Product carries one analyzed garment image.
type Product struct {
	Description string
	Attributes  map[string]any
}

// BuildSwapDirective assembles the full editing directive for a garment swap.
//
// The directive gives the edit model three things a bare instruction cannot:
// an explicit source-of-truth order between the input images, a per-product
// section so multi-garment swaps map to the right source image, and an
// enumerated list of everything that must not change. The attribute trees are
// embedded as advisory context only; the images always win on conflict.
func BuildSwapDirective(person Person, products []Product, instruction string) string {
	plural := len(products) > 1
	garmentText := pluralize("garment", plural)
	productText := pluralize("product image", plural)

	var b strings.Builder

	b.WriteString("ROLE:\n\n")
	b.WriteString("You are a photorealistic garment replacement engine. You take:\n\n")
	b.WriteString("1. A person image with an existing outfit\n\n")
	fmt.Fprintf(&b, "2. %s that show target %s\n\n", capitalize(productText), garmentText)
	fmt.Fprintf(&b, "and you replace the original %s on the person with the target %s.\n\n", garmentText, garmentText)

	b.WriteString("REFERENCES AND STRUCTURE:\n\n")
	b.WriteString("PERSON IMAGE:\n\n")
	fmt.Fprintf(&b, "This image is the visual source of truth for the person, pose, camera angle, lighting, background, props, and all non garment elements. Nothing in this image should change except the %s that %s marked for replacement.\n\n",
		garmentText, isAre(plural))

	b.WriteString("PERSON DESCRIPTION:\n\n")
	b.WriteString(person.Description)
	b.WriteString("\n\n")

	b.WriteString("PERSON PARAMETERS JSON:\n\n")
	b.WriteString("Use this JSON only as a guide to interpret the person image. If there is any conflict, follow the image.\n\n")
	b.WriteString(renderAttributes(person.Attributes))
	b.WriteString("\n\n")

	for i, product := range products {
		n := i + 1
		fmt.Fprintf(&b, "PRODUCT IMAGE %d:\n\n", n)
		fmt.Fprintf(&b, "This image is the visual source of truth for target garment %d. Copy the garment exactly as shown in the product photo. Use it to match colors, materials, silhouette, and artwork.\n\n", n)
		fmt.Fprintf(&b, "PRODUCT %d DESCRIPTION:\n\n", n)
		b.WriteString(product.Description)
		b.WriteString("\n\n")
		fmt.Fprintf(&b, "PRODUCT %d PARAMETERS JSON:\n\n", n)
		b.WriteString("Use this JSON only as a guide to interpret the product image. If there is any conflict, follow the image.\n\n")
		b.WriteString(renderAttributes(product.Attributes))
		b.WriteString("\n\n")
	}

	if trimmed := strings.TrimSpace(instruction); trimmed != "" {
		b.WriteString("CUSTOM INSTRUCTIONS:\n\n")
		b.WriteString(trimmed)
		b.WriteString("\n\n")
	}

	b.WriteString("GENERAL EXPECTATIONS:\n\n")
	fmt.Fprintf(&b, "Output a single photorealistic image. The result should look like the person originally wore the target %s during the shoot.\n\n", garmentText)

	b.WriteString("INSTRUCTIONS FOR THE MODEL:\n\n")

	b.WriteString("1) Garment replacement only\n\n")
	if plural {
		fmt.Fprintf(&b, "Replace the garments described in PERSON_JSON with the %d garments from the product images. Remove the original garments and replace them with the target garments. Each product image corresponds to a specific garment to be swapped.\n\n", len(products))
	} else {
		b.WriteString("Replace the garment described in PERSON_JSON with the garment in the product image. Remove the original garment and replace it with the target garment.\n\n")
	}

	b.WriteString("2) Image priority order\n\n")
	b.WriteString("1. Person image controls pose, body, lighting, face, hair, props, scene.\n\n")
	fmt.Fprintf(&b, "2. %s %s garment design, colors, textures, graphics.\n\n", capitalize(productText), controls(plural))
	b.WriteString("3. JSON guides interpretation but never overrides visuals.\n\n")

	b.WriteString("3) Preserve all non garment elements\n\n")
	b.WriteString("Do not change any of the following:\n\n")
	for _, item := range preserveList {
		fmt.Fprintf(&b, "- %s\n", item)
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "4) Copy the target %s accurately\n\n", garmentText)
	fmt.Fprintf(&b, "Reproduce the %s from the %s exactly, including:\n\n", garmentText, productText)
	b.WriteString("- silhouette\n\n- materials\n\n- colors\n\n- all graphics, artwork, patches, and illustrations in the same shapes and positions\n\n")
	fmt.Fprintf(&b, "Do not design new %s. Do not modify graphics. Do not simplify or restyle elements.\n\n", garmentText)

	fmt.Fprintf(&b, "5) Fit %s to pose\n\n", garmentText)
	fmt.Fprintf(&b, "Match folds, compression, sleeve bending, and draping based on the body pose described in PERSON_JSON and visible in the person image.\n\n")

	b.WriteString("6) Lighting consistency\n\n")
	fmt.Fprintf(&b, "Apply the lighting of the person image to the new %s so %s naturally.\n\n", garmentText, blends(plural))

	b.WriteString("7) Interaction and realism\n\n")
	fmt.Fprintf(&b, "%s should layer naturally with hair, arms, and body.\n\n", capitalize(garmentText))
	b.WriteString("No clipping or floating.\n\nAdd realistic contact shadows.\n\n")

	b.WriteString("OUTPUT SUMMARY:\n\n")
	fmt.Fprintf(&b, "Create a final image where the person is wearing the %s from the %s. Everything else remains unchanged.\n\n", garmentText, productText)

	b.WriteString("VERIFICATION CHECKLIST:\n\n")
	b.WriteString("Before returning the image, confirm:\n\n")
	b.WriteString("- The pose is identical to the person image, joint for joint.\n")
	b.WriteString("- The face, hair, and identity are unchanged.\n")
	b.WriteString("- The background, lighting, and camera angle are unchanged.\n")
	fmt.Fprintf(&b, "- The only difference is the %s.", garmentText)

	return b.String()
}

// preserveList enumerates everything outside the swapped garment that must
// survive the edit untouched. Static scaffolding, not derived per call.
var preserveList = []string{
	"body orientation and every joint angle",
	"head tilt and rotation",
	"the person's face and expression",
	"hair",
	"hands and finger positions",
	"accessories and props",
	"background and surface",
	"lighting and shadows",
	"camera angle and framing",
}

// renderAttributes serializes an attribute tree as indented JSON. Map keys
// are sorted during marshaling, so the output is deterministic.
func renderAttributes(attrs map[string]any) string {
	data, err := json.MarshalIndent(attrs, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(data)
}

func pluralize(word string, plural bool) string {
	if plural {
		return word + "s"
	}
	return word
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func isAre(plural bool) string {
	if plural {
		return "are"
	}
	return "is"
}

func controls(plural bool) string {
	if plural {
		return "control"
	}
	return "controls"
}

func blends(plural bool) string {
	if plural {
		return "they blend"
	}
	return "it blends"
}

package prompt

import (
	"strings"
	"testing"
)

func testPerson() Person {
	return Person{
		Description: "A woman leaning against a railing, wearing a navy blazer.",
		Attributes: map[string]any{
			"body_pose": map[string]any{
				"position":   "standing, leaning on railing",
				"head_tilt":  "slight tilt to the left",
				"left_arm":   "bent at elbow, hand on railing",
				"right_arm":  "relaxed at side",
			},
			"garment_to_replace": map[string]any{
				"type":  "blazer",
				"color": "navy",
			},
		},
	}
}

func testProduct(desc, garmentType string) Product {
	return Product{
		Description: desc,
		Attributes: map[string]any{
			"garment_type": garmentType,
			"colors":       map[string]any{"primary": "forest green"},
		},
	}
}

func TestBuildSwapDirectiveDeterministic(t *testing.T) {
	person := testPerson()
	products := []Product{testProduct("A green hoodie with a chest patch.", "hoodie")}

	first := BuildSwapDirective(person, products, "keep the hood down")
	second := BuildSwapDirective(person, products, "keep the hood down")
	if first != second {
		t.Error("BuildSwapDirective is not deterministic for identical inputs")
	}
}

func TestBuildSwapDirectiveSingular(t *testing.T) {
	got := BuildSwapDirective(testPerson(), []Product{testProduct("A green hoodie.", "hoodie")}, "")

	if strings.Contains(got, "garments") {
		t.Error("single-product directive contains plural form \"garments\"")
	}
	if !strings.Contains(got, "PRODUCT IMAGE 1:") {
		t.Error("directive missing PRODUCT IMAGE 1 section")
	}
	if strings.Contains(got, "PRODUCT IMAGE 2:") {
		t.Error("single-product directive contains PRODUCT IMAGE 2 section")
	}
	if !strings.Contains(got, "Replace the garment described in PERSON_JSON with the garment in the product image.") {
		t.Error("directive missing singular replacement instruction")
	}
}

func TestBuildSwapDirectivePlural(t *testing.T) {
	products := []Product{
		testProduct("A green hoodie.", "hoodie"),
		testProduct("Black denim jeans.", "jeans"),
	}
	got := BuildSwapDirective(testPerson(), products, "")

	for _, want := range []string{
		"PRODUCT IMAGE 1:",
		"PRODUCT IMAGE 2:",
		"with the 2 garments from the product images",
		"Product images control garment design",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("plural directive missing %q", want)
		}
	}
}

func TestBuildSwapDirectiveCustomInstructions(t *testing.T) {
	person := testPerson()
	products := []Product{testProduct("A green hoodie.", "hoodie")}

	withInstruction := BuildSwapDirective(person, products, "make the fit oversized")
	if !strings.Contains(withInstruction, "CUSTOM INSTRUCTIONS:") {
		t.Error("directive missing custom instructions section")
	}
	if !strings.Contains(withInstruction, "make the fit oversized") {
		t.Error("directive missing verbatim instruction text")
	}

	for _, instruction := range []string{"", "   \n\t"} {
		got := BuildSwapDirective(person, products, instruction)
		if strings.Contains(got, "CUSTOM INSTRUCTIONS:") {
			t.Errorf("directive for instruction %q contains empty custom instructions section", instruction)
		}
	}
}

func TestBuildSwapDirectiveEmbedsAttributes(t *testing.T) {
	got := BuildSwapDirective(testPerson(), []Product{testProduct("A green hoodie.", "hoodie")}, "")

	for _, want := range []string{
		`"garment_type": "hoodie"`,
		`"type": "blazer"`,
		"If there is any conflict, follow the image.",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("directive missing %q", want)
		}
	}
}

func TestBuildSwapDirectiveSectionOrder(t *testing.T) {
	got := BuildSwapDirective(testPerson(), []Product{testProduct("A green hoodie.", "hoodie")}, "roll the sleeves")

	sections := []string{
		"ROLE:",
		"PERSON IMAGE:",
		"PERSON DESCRIPTION:",
		"PRODUCT IMAGE 1:",
		"CUSTOM INSTRUCTIONS:",
		"GENERAL EXPECTATIONS:",
		"INSTRUCTIONS FOR THE MODEL:",
		"OUTPUT SUMMARY:",
		"VERIFICATION CHECKLIST:",
	}
	prev := -1
	for _, section := range sections {
		idx := strings.Index(got, section)
		if idx < 0 {
			t.Fatalf("directive missing section %q", section)
		}
		if idx < prev {
			t.Errorf("section %q appears out of order", section)
		}
		prev = idx
	}
}

package domain

import (
	"strings"
	"testing"
)

func TestNewAttributeNameSanitises(t *testing.T) {
	name, err := NewAttributeName("  Water   Resistant ")
	if err != nil {
		t.Fatalf("sanitise: %v", err)
	}
	if name.String() != "Water Resistant" {
		t.Fatalf("unexpected sanitised value %q", name.String())
	}
}

func TestNewAttributeNameRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"empty":     "   ",
		"too long":  strings.Repeat("x", MaxAttributeNameLength+1),
		"forbidden": `<script>alert("x")</script>`,
	}
	for label, raw := range cases {
		if _, err := NewAttributeName(raw); err == nil {
			t.Fatalf("%s name accepted: %q", label, raw)
		}
	}
}

func TestAttributeNameEqualIgnoresCase(t *testing.T) {
	a, _ := NewAttributeName("Waterproof")
	b, _ := NewAttributeName("WATERPROOF")
	if !a.Equal(b) {
		t.Fatal("case-insensitive equality failed")
	}
}

func TestBoundedNameValidators(t *testing.T) {
	if err := ValidateGarmentName(strings.Repeat("g", MaxGarmentNameLength)); err != nil {
		t.Fatalf("max-length garment name rejected: %v", err)
	}
	if err := ValidateGarmentName(strings.Repeat("g", MaxGarmentNameLength+1)); err == nil {
		t.Fatal("over-length garment name accepted")
	}
	if err := ValidateCategory(""); err == nil {
		t.Fatal("empty category accepted")
	}
	if err := ValidateMaterialName(" "); err == nil {
		t.Fatal("blank material name accepted")
	}
	if err := ValidateSupplierName("Mill & Co"); err != nil {
		t.Fatalf("supplier name rejected: %v", err)
	}
	if err := ValidateChangeNote(""); err != nil {
		t.Fatalf("empty change note should be allowed: %v", err)
	}
	if err := ValidateChangeNote(strings.Repeat("n", MaxChangeNoteLength+1)); err == nil {
		t.Fatal("over-length change note accepted")
	}
}

package domain

import (
	"fmt"
	"strings"
)

// Name validation bounds shared by the value-object constructors.
const (
	MaxAttributeNameLength = 100
	MaxGarmentNameLength   = 200
	MaxCategoryLength      = 100
	MaxChangeNoteLength    = 500
	MaxMaterialNameLength  = 100
	MaxSupplierNameLength  = 200
)

// ForbiddenNameCharacters never appear in attribute names; they are rejected
// rather than escaped so stored names are safe to embed anywhere.
const ForbiddenNameCharacters = `<>&"'`

// AttributeName is a validated, sanitised attribute name.
type AttributeName struct {
	value string
}

// NewAttributeName validates and sanitises a raw attribute name. The result
// is trimmed with inner whitespace collapsed to single spaces.
func NewAttributeName(raw string) (AttributeName, error) {
	if strings.TrimSpace(raw) == "" {
		return AttributeName{}, fmt.Errorf("attribute name cannot be empty")
	}
	if len(raw) > MaxAttributeNameLength {
		return AttributeName{}, fmt.Errorf("attribute name cannot exceed %d characters", MaxAttributeNameLength)
	}
	if strings.ContainsAny(raw, ForbiddenNameCharacters) {
		return AttributeName{}, fmt.Errorf("attribute name contains forbidden characters: < > & \" '")
	}
	return AttributeName{value: strings.Join(strings.Fields(raw), " ")}, nil
}

// String returns the sanitised name.
func (n AttributeName) String() string { return n.value }

// Equal compares attribute names case-insensitively.
func (n AttributeName) Equal(other AttributeName) bool {
	return strings.EqualFold(n.value, other.value)
}

// ValidateGarmentName checks garment name bounds.
func ValidateGarmentName(name string) error {
	return validateBounded("garment name", name, MaxGarmentNameLength)
}

// ValidateCategory checks garment category bounds.
func ValidateCategory(category string) error {
	return validateBounded("category", category, MaxCategoryLength)
}

// ValidateChangeNote checks the optional change note bound.
func ValidateChangeNote(note string) error {
	if len(note) > MaxChangeNoteLength {
		return fmt.Errorf("change note cannot exceed %d characters", MaxChangeNoteLength)
	}
	return nil
}

// ValidateMaterialName checks material name bounds.
func ValidateMaterialName(name string) error {
	return validateBounded("material name", name, MaxMaterialNameLength)
}

// ValidateSupplierName checks supplier name bounds.
func ValidateSupplierName(name string) error {
	return validateBounded("supplier name", name, MaxSupplierNameLength)
}

func validateBounded(label, value string, max int) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s cannot be empty", label)
	}
	if len(value) > max {
		return fmt.Errorf("%s cannot exceed %d characters", label, max)
	}
	return nil
}

package core

import (
	"context"
	"fmt"

	"stitchcore/pkg/domain"
)

// NewAttributeCompatibilityRule returns the rule rejecting any garment whose
// assigned attributes contain a recorded incompatible pair.
func NewAttributeCompatibilityRule() domain.Rule {
	return attributeCompatibilityRule{}
}

type attributeCompatibilityRule struct{}

func (attributeCompatibilityRule) Name() string { return "attribute_compatibility" }

func (attributeCompatibilityRule) Evaluate(_ context.Context, view domain.RuleView, _ []domain.Change) (domain.Result, error) {
	pairs := view.ListIncompatibilities()
	if len(pairs) == 0 {
		return domain.Result{}, nil
	}
	res := domain.Result{}
	for _, garment := range view.ListGarments() {
		assigned := view.AttributesFor(garment.ID)
		if len(assigned) < 2 {
			continue
		}
		set := make(map[int64]bool, len(assigned))
		for _, row := range assigned {
			set[row.AttributeID] = true
		}
		for _, conflict := range conflictsWithin(view, pairs, set) {
			res.Violations = append(res.Violations, domain.Violation{
				Rule:     "attribute_compatibility",
				Severity: domain.SeverityBlock,
				Message:  fmt.Sprintf("garment %q carries incompatible attributes %q and %q", garment.Name, conflict.NameA, conflict.NameB),
				Entity:   domain.EntityGarment,
				EntityID: garment.ID,
			})
		}
	}
	return res, nil
}

// ConflictPair names the two endpoints of a violated incompatibility.
type ConflictPair struct {
	AttributeA int64  `json:"attribute_id_a"`
	AttributeB int64  `json:"attribute_id_b"`
	NameA      string `json:"name_a"`
	NameB      string `json:"name_b"`
}

// conflictsWithin returns the incompatibility pairs whose endpoints both fall
// inside the candidate set. The relation is unordered; it does not matter
// which endpoint was added last.
func conflictsWithin(view domain.RuleView, pairs []domain.AttributeIncompatibility, set map[int64]bool) []ConflictPair {
	var out []ConflictPair
	for _, pair := range pairs {
		if !set[pair.AttributeA] || !set[pair.AttributeB] {
			continue
		}
		out = append(out, ConflictPair{
			AttributeA: pair.AttributeA,
			AttributeB: pair.AttributeB,
			NameA:      attributeName(view, pair.AttributeA),
			NameB:      attributeName(view, pair.AttributeB),
		})
	}
	return out
}

func attributeName(view domain.RuleView, id int64) string {
	if attr, ok := view.FindAttribute(id); ok {
		return attr.Name
	}
	return fmt.Sprintf("attribute %d", id)
}

package core

import (
	"context"
	"fmt"

	"stitchcore/pkg/domain"
)

// NewMaterialCompositionRule returns the in-transaction rule enforcing that no
// garment's material percentages ever sum past 100.
func NewMaterialCompositionRule() domain.Rule {
	return materialCompositionRule{}
}

type materialCompositionRule struct{}

func (materialCompositionRule) Name() string { return "material_composition" }

func (materialCompositionRule) Evaluate(_ context.Context, view domain.RuleView, _ []domain.Change) (domain.Result, error) {
	res := domain.Result{}
	for _, garment := range view.ListGarments() {
		total := domain.TotalPercentage(view.MaterialsFor(garment.ID))
		if total.GreaterThan(domain.HundredPercent) {
			res.Violations = append(res.Violations, domain.Violation{
				Rule:     "material_composition",
				Severity: domain.SeverityBlock,
				Message:  fmt.Sprintf("garment %q material composition totals %s%%, which exceeds 100%%", garment.Name, total),
				Entity:   domain.EntityGarment,
				EntityID: garment.ID,
			})
		}
	}
	return res, nil
}

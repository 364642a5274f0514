package core

import (
	"context"
	"fmt"

	"stitchcore/pkg/domain"
)

// NewLifecycleGateRule returns the rule guarding garment lifecycle changes.
// Promotion to APPROVED or MASS_PRODUCTION requires the garment's material
// composition to total exactly 100%, and a garment in MASS_PRODUCTION can
// never be deleted.
func NewLifecycleGateRule() domain.Rule {
	return lifecycleGateRule{}
}

type lifecycleGateRule struct{}

func (lifecycleGateRule) Name() string { return "lifecycle_gate" }

func gatedState(state domain.LifecycleState) bool {
	return state == domain.StateApproved || state == domain.StateMassProd
}

func (lifecycleGateRule) Evaluate(_ context.Context, view domain.RuleView, changes []domain.Change) (domain.Result, error) {
	res := domain.Result{}
	for _, change := range changes {
		if change.Entity != domain.EntityGarment {
			continue
		}
		switch change.Action {
		case domain.ActionCreate, domain.ActionUpdate:
			after, ok := change.After.(domain.Garment)
			if !ok || !gatedState(after.LifecycleState) {
				continue
			}
			if before, ok := change.Before.(domain.Garment); ok && before.LifecycleState == after.LifecycleState {
				// state unchanged, gate already passed when it was set
				continue
			}
			total := domain.TotalPercentage(view.MaterialsFor(after.ID))
			if !total.Equal(domain.HundredPercent) {
				res.Violations = append(res.Violations, domain.Violation{
					Rule:     "lifecycle_gate",
					Severity: domain.SeverityBlock,
					Message:  fmt.Sprintf("garment %q cannot enter %s: material composition totals %s%%, exactly 100%% required", after.Name, after.LifecycleState, total),
					Entity:   domain.EntityGarment,
					EntityID: after.ID,
				})
			}
		case domain.ActionDelete:
			before, ok := change.Before.(domain.Garment)
			if !ok {
				continue
			}
			if before.LifecycleState == domain.StateMassProd {
				res.Violations = append(res.Violations, domain.Violation{
					Rule:     "lifecycle_gate",
					Severity: domain.SeverityBlock,
					Message:  fmt.Sprintf("garment %q is in mass production and cannot be deleted", before.Name),
					Entity:   domain.EntityGarment,
					EntityID: before.ID,
				})
			}
		}
	}
	return res, nil
}

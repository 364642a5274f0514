package core

import (
	"context"
	"fmt"
	"strings"

	"stitchcore/pkg/domain"
)

// CreateMaterial persists a new material with a unique name.
func (s *Service) CreateMaterial(ctx context.Context, name string) (Material, Result, error) {
	var created Material
	var res Result
	err := s.instrument(ctx, "create_material", func(ctx context.Context) (int64, error) {
		if err := domain.ValidateMaterialName(name); err != nil {
			return 0, domain.Validationf("%s", err)
		}
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
			var inner error
			created, inner = tx.CreateMaterial(Material{Name: strings.TrimSpace(name)})
			return inner
		})
		return created.ID, err
	})
	return created, res, err
}

// DeleteMaterial removes a material unless a garment composition still
// references it.
func (s *Service) DeleteMaterial(ctx context.Context, id int64) (Result, error) {
	var res Result
	err := s.instrument(ctx, "delete_material", func(ctx context.Context) (int64, error) {
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
			return tx.DeleteMaterial(id)
		})
		return id, err
	})
	return res, err
}

// ListMaterials returns every material ordered by name.
func (s *Service) ListMaterials(_ context.Context) []Material {
	return s.store.ListMaterials()
}

// CreateAttribute persists a new design attribute. The raw name passes
// through the value-object validation: trimmed, inner whitespace collapsed,
// bounded length, markup characters rejected.
func (s *Service) CreateAttribute(ctx context.Context, rawName string) (Attribute, Result, error) {
	var created Attribute
	var res Result
	err := s.instrument(ctx, "create_attribute", func(ctx context.Context) (int64, error) {
		name, err := domain.NewAttributeName(rawName)
		if err != nil {
			return 0, domain.Validationf("%s", err)
		}
		res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
			var inner error
			created, inner = tx.CreateAttribute(Attribute{Name: name.String()})
			return inner
		})
		return created.ID, err
	})
	return created, res, err
}

// DeleteAttribute removes an attribute unless it is assigned to a garment.
func (s *Service) DeleteAttribute(ctx context.Context, id int64) (Result, error) {
	var res Result
	err := s.instrument(ctx, "delete_attribute", func(ctx context.Context) (int64, error) {
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
			return tx.DeleteAttribute(id)
		})
		return id, err
	})
	return res, err
}

// ListAttributes returns every attribute ordered by name.
func (s *Service) ListAttributes(_ context.Context) []Attribute {
	return s.store.ListAttributes()
}

// RecordIncompatibility stores the unordered attribute pair (a, b). Self
// pairs are rejected; re-recording an existing pair in either order is a
// no-op.
func (s *Service) RecordIncompatibility(ctx context.Context, a, b int64) (domain.AttributeIncompatibility, Result, error) {
	var pair domain.AttributeIncompatibility
	var res Result
	err := s.instrument(ctx, "record_incompatibility", func(ctx context.Context) (int64, error) {
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
			var inner error
			pair, inner = tx.RecordIncompatibility(a, b)
			return inner
		})
		return pair.AttributeA, err
	})
	return pair, res, err
}

// CompatibilityReport is the outcome of checking a candidate attribute set.
type CompatibilityReport struct {
	Valid     bool           `json:"valid"`
	Conflicts []ConflictPair `json:"conflicts,omitempty"`
}

// CheckAttributeSet validates a candidate attribute set against the recorded
// incompatibility relation. Sets smaller than two can never conflict.
func (s *Service) CheckAttributeSet(ctx context.Context, ids []int64) (CompatibilityReport, error) {
	set := make(map[int64]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	if len(set) < 2 {
		return CompatibilityReport{Valid: true}, nil
	}
	report := CompatibilityReport{Valid: true}
	err := s.store.View(ctx, func(view TransactionView) error {
		report.Conflicts = conflictsWithin(view, view.ListIncompatibilities(), set)
		report.Valid = len(report.Conflicts) == 0
		return nil
	})
	if err != nil {
		return CompatibilityReport{}, err
	}
	return report, nil
}

// rejectConflicts turns conflicting pairs within set into a validation error
// naming every conflicting attribute pair.
func rejectConflicts(view TransactionView, set map[int64]bool) error {
	conflicts := conflictsWithin(view, view.ListIncompatibilities(), set)
	if len(conflicts) == 0 {
		return nil
	}
	parts := make([]string, 0, len(conflicts))
	for _, c := range conflicts {
		parts = append(parts, fmt.Sprintf("%q and %q", c.NameA, c.NameB))
	}
	return domain.Validationf("incompatible attributes: %s", strings.Join(parts, ", "))
}

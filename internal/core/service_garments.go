package core

import (
	"context"

	"github.com/shopspring/decimal"

	"stitchcore/pkg/domain"
)

// CreateGarmentInput carries the fields accepted at garment creation.
// AttributeIDs are validated as one set before anything is persisted; a
// conflict aborts the whole creation.
type CreateGarmentInput struct {
	Name           string
	Category       string
	LifecycleState LifecycleState
	BaseDesignID   *int64
	ChangeNote     *string
	AttributeIDs   []int64
}

// MaterialLine pairs a material with its percentage share of a garment.
type MaterialLine struct {
	Material   Material        `json:"material"`
	Percentage decimal.Decimal `json:"percentage"`
}

// SupplierEngagement aggregates a garment-supplier link with its offers and
// sample rounds.
type SupplierEngagement struct {
	Link     GarmentSupplier `json:"link"`
	Supplier Supplier        `json:"supplier"`
	Offers   []SupplierOffer `json:"offers"`
	Samples  []SampleSet     `json:"samples"`
}

// GarmentDetail is the aggregate view of one garment: its row, composition,
// attributes, derivative designs, and supplier engagements.
type GarmentDetail struct {
	Garment    Garment              `json:"garment"`
	Materials  []MaterialLine       `json:"materials"`
	Attributes []Attribute          `json:"attributes"`
	Variations []Garment            `json:"variations"`
	Suppliers  []SupplierEngagement `json:"suppliers"`
}

// TotalPercentage sums the detail's material shares.
func (d GarmentDetail) TotalPercentage() decimal.Decimal {
	total := decimal.Zero
	for _, line := range d.Materials {
		total = total.Add(line.Percentage)
	}
	return total
}

func validateGarmentInput(name, category string, note *string) error {
	if err := domain.ValidateGarmentName(name); err != nil {
		return domain.Validationf("%s", err)
	}
	if err := domain.ValidateCategory(category); err != nil {
		return domain.Validationf("%s", err)
	}
	if note != nil {
		if err := domain.ValidateChangeNote(*note); err != nil {
			return domain.Validationf("%s", err)
		}
	}
	return nil
}

// CreateGarment persists a new garment, attaching any inline attributes in
// the same transaction. The candidate attribute set is checked against the
// incompatibility relation before the garment row is created.
func (s *Service) CreateGarment(ctx context.Context, input CreateGarmentInput) (Garment, Result, error) {
	var created Garment
	var res Result
	err := s.instrument(ctx, "create_garment", func(ctx context.Context) (int64, error) {
		if err := validateGarmentInput(input.Name, input.Category, input.ChangeNote); err != nil {
			return 0, err
		}
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
			if len(input.AttributeIDs) > 0 {
				set := make(map[int64]bool, len(input.AttributeIDs))
				for _, id := range input.AttributeIDs {
					if _, ok := tx.FindAttribute(id); !ok {
						return domain.ErrNotFound{Entity: EntityAttribute, ID: id}
					}
					set[id] = true
				}
				if err := rejectConflicts(tx.Snapshot(), set); err != nil {
					return err
				}
			}
			var inner error
			created, inner = tx.CreateGarment(Garment{
				Name:           input.Name,
				Category:       input.Category,
				LifecycleState: input.LifecycleState,
				BaseDesignID:   input.BaseDesignID,
				ChangeNote:     input.ChangeNote,
			})
			if inner != nil {
				return inner
			}
			for _, id := range input.AttributeIDs {
				if _, inner = tx.AddGarmentAttribute(GarmentAttribute{GarmentID: created.ID, AttributeID: id}); inner != nil {
					return inner
				}
			}
			return nil
		})
		return created.ID, err
	})
	return created, res, err
}

// GetGarment composes the aggregate view of one garment. The boolean is
// false when the id does not exist; absence is not an error.
func (s *Service) GetGarment(ctx context.Context, id int64) (GarmentDetail, bool, error) {
	var detail GarmentDetail
	found := false
	err := s.store.View(ctx, func(view TransactionView) error {
		garment, ok := view.FindGarment(id)
		if !ok {
			return nil
		}
		found = true
		detail = GarmentDetail{
			Garment:    garment,
			Materials:  materialLines(view, id),
			Attributes: attributeList(view, id),
			Variations: view.VariationsOf(id),
			Suppliers:  supplierEngagements(view, id),
		}
		return nil
	})
	return detail, found, err
}

// ListGarments returns every garment, newest first.
func (s *Service) ListGarments(_ context.Context) []Garment {
	return s.store.ListGarments()
}

// ListVariations returns the garments derived from the given base design.
func (s *Service) ListVariations(ctx context.Context, baseDesignID int64) ([]Garment, error) {
	var out []Garment
	err := s.store.View(ctx, func(view TransactionView) error {
		out = view.VariationsOf(baseDesignID)
		return nil
	})
	return out, err
}

// UpdateGarmentInput carries a partial garment update; nil fields are left
// untouched.
type UpdateGarmentInput struct {
	Name           *string
	Category       *string
	LifecycleState *LifecycleState
	BaseDesignID   *int64
	ChangeNote     *string
}

func (u UpdateGarmentInput) empty() bool {
	return u.Name == nil && u.Category == nil && u.LifecycleState == nil && u.BaseDesignID == nil && u.ChangeNote == nil
}

// UpdateGarment applies a partial update. When no fields are supplied the
// operation is a no-op and reports applied=false rather than an error.
// Lifecycle promotion to APPROVED or MASS_PRODUCTION is gated on the
// garment's composition totalling exactly 100%.
func (s *Service) UpdateGarment(ctx context.Context, id int64, input UpdateGarmentInput) (Garment, bool, Result, error) {
	if input.empty() {
		garment, ok := s.store.GetGarment(id)
		if !ok {
			return Garment{}, false, Result{}, domain.ErrNotFound{Entity: EntityGarment, ID: id}
		}
		return garment, false, Result{}, nil
	}
	var updated Garment
	var res Result
	err := s.instrument(ctx, "update_garment", func(ctx context.Context) (int64, error) {
		if input.Name != nil {
			if err := domain.ValidateGarmentName(*input.Name); err != nil {
				return id, domain.Validationf("%s", err)
			}
		}
		if input.Category != nil {
			if err := domain.ValidateCategory(*input.Category); err != nil {
				return id, domain.Validationf("%s", err)
			}
		}
		if input.ChangeNote != nil {
			if err := domain.ValidateChangeNote(*input.ChangeNote); err != nil {
				return id, domain.Validationf("%s", err)
			}
		}
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
			var inner error
			updated, inner = tx.UpdateGarment(id, func(g *Garment) error {
				if input.Name != nil {
					g.Name = *input.Name
				}
				if input.Category != nil {
					g.Category = *input.Category
				}
				if input.LifecycleState != nil {
					g.LifecycleState = *input.LifecycleState
				}
				if input.BaseDesignID != nil {
					g.BaseDesignID = input.BaseDesignID
				}
				if input.ChangeNote != nil {
					g.ChangeNote = input.ChangeNote
				}
				return nil
			})
			return inner
		})
		return id, err
	})
	if err != nil {
		return Garment{}, false, res, err
	}
	return updated, true, res, nil
}

// DeleteGarment removes a garment and its relation rows. Deletion is blocked
// while the garment is in MASS_PRODUCTION.
func (s *Service) DeleteGarment(ctx context.Context, id int64) (Result, error) {
	var res Result
	err := s.instrument(ctx, "delete_garment", func(ctx context.Context) (int64, error) {
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
			return tx.DeleteGarment(id)
		})
		return id, err
	})
	return res, err
}

// AddMaterialToGarment adds or replaces one material share and returns the
// refreshed composition. The transaction commits only if the garment's total
// stays at or below 100%.
func (s *Service) AddMaterialToGarment(ctx context.Context, garmentID, materialID int64, percentage decimal.Decimal) ([]MaterialLine, Result, error) {
	var lines []MaterialLine
	var res Result
	err := s.instrument(ctx, "add_garment_material", func(ctx context.Context) (int64, error) {
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
			if _, inner := tx.UpsertGarmentMaterial(GarmentMaterial{GarmentID: garmentID, MaterialID: materialID, Percentage: percentage}); inner != nil {
				return inner
			}
			lines = materialLines(tx.Snapshot(), garmentID)
			return nil
		})
		return garmentID, err
	})
	if err != nil {
		return nil, res, err
	}
	return lines, res, nil
}

// AddAttributeToGarment assigns one attribute and returns the refreshed
// attribute list. The combined set of existing and candidate attributes is
// checked against the incompatibility relation inside the same transaction,
// so concurrent additions cannot both pass against a stale set.
func (s *Service) AddAttributeToGarment(ctx context.Context, garmentID, attributeID int64) ([]Attribute, Result, error) {
	var attrs []Attribute
	var res Result
	err := s.instrument(ctx, "add_garment_attribute", func(ctx context.Context) (int64, error) {
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
			if _, ok := tx.FindGarment(garmentID); !ok {
				return domain.ErrNotFound{Entity: EntityGarment, ID: garmentID}
			}
			if _, ok := tx.FindAttribute(attributeID); !ok {
				return domain.ErrNotFound{Entity: EntityAttribute, ID: attributeID}
			}
			view := tx.Snapshot()
			set := map[int64]bool{attributeID: true}
			for _, row := range view.AttributesFor(garmentID) {
				set[row.AttributeID] = true
			}
			if err := rejectConflicts(view, set); err != nil {
				return err
			}
			if _, inner := tx.AddGarmentAttribute(GarmentAttribute{GarmentID: garmentID, AttributeID: attributeID}); inner != nil {
				return inner
			}
			attrs = attributeList(tx.Snapshot(), garmentID)
			return nil
		})
		return garmentID, err
	})
	if err != nil {
		return nil, res, err
	}
	return attrs, res, nil
}

func materialLines(view TransactionView, garmentID int64) []MaterialLine {
	rows := view.MaterialsFor(garmentID)
	lines := make([]MaterialLine, 0, len(rows))
	for _, row := range rows {
		material, _ := view.FindMaterial(row.MaterialID)
		lines = append(lines, MaterialLine{Material: material, Percentage: row.Percentage})
	}
	return lines
}

func attributeList(view TransactionView, garmentID int64) []Attribute {
	rows := view.AttributesFor(garmentID)
	attrs := make([]Attribute, 0, len(rows))
	for _, row := range rows {
		if attr, ok := view.FindAttribute(row.AttributeID); ok {
			attrs = append(attrs, attr)
		}
	}
	return attrs
}

func supplierEngagements(view TransactionView, garmentID int64) []SupplierEngagement {
	links := view.SuppliersFor(garmentID)
	out := make([]SupplierEngagement, 0, len(links))
	for _, link := range links {
		supplier, _ := view.FindSupplier(link.SupplierID)
		out = append(out, SupplierEngagement{
			Link:     link,
			Supplier: supplier,
			Offers:   view.OffersFor(link.ID),
			Samples:  view.SamplesFor(link.ID),
		})
	}
	return out
}

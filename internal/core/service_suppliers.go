package core

import (
	"context"
	"time"

	"stitchcore/pkg/domain"
)

// CreateSupplier persists a new supplier.
func (s *Service) CreateSupplier(ctx context.Context, supplier Supplier) (Supplier, Result, error) {
	var created Supplier
	var res Result
	err := s.instrument(ctx, "create_supplier", func(ctx context.Context) (int64, error) {
		if err := domain.ValidateSupplierName(supplier.Name); err != nil {
			return 0, domain.Validationf("%s", err)
		}
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
			var inner error
			created, inner = tx.CreateSupplier(supplier)
			return inner
		})
		return created.ID, err
	})
	return created, res, err
}

// DeleteSupplier removes a supplier and its garment links.
func (s *Service) DeleteSupplier(ctx context.Context, id int64) (Result, error) {
	var res Result
	err := s.instrument(ctx, "delete_supplier", func(ctx context.Context) (int64, error) {
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
			return tx.DeleteSupplier(id)
		})
		return id, err
	})
	return res, err
}

// ListSuppliers returns every supplier ordered by name.
func (s *Service) ListSuppliers(_ context.Context) []Supplier {
	return s.store.ListSuppliers()
}

// LinkSupplier associates a supplier with a garment. An empty status starts
// the engagement at OFFERED.
func (s *Service) LinkSupplier(ctx context.Context, garmentID, supplierID int64, status SupplierStatus) (GarmentSupplier, Result, error) {
	var link GarmentSupplier
	var res Result
	err := s.instrument(ctx, "link_supplier", func(ctx context.Context) (int64, error) {
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
			var inner error
			link, inner = tx.LinkSupplier(GarmentSupplier{GarmentID: garmentID, SupplierID: supplierID, Status: status})
			return inner
		})
		return link.ID, err
	})
	return link, res, err
}

// UpdateSupplierStatus transitions a garment-supplier engagement.
func (s *Service) UpdateSupplierStatus(ctx context.Context, linkID int64, status SupplierStatus) (GarmentSupplier, Result, error) {
	var link GarmentSupplier
	var res Result
	err := s.instrument(ctx, "update_supplier_status", func(ctx context.Context) (int64, error) {
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
			var inner error
			link, inner = tx.UpdateGarmentSupplier(linkID, func(gs *GarmentSupplier) error {
				gs.Status = status
				return nil
			})
			return inner
		})
		return linkID, err
	})
	return link, res, err
}

// AddSupplierOffer records a price and lead-time quote against an engagement.
func (s *Service) AddSupplierOffer(ctx context.Context, offer SupplierOffer) (SupplierOffer, Result, error) {
	var created SupplierOffer
	var res Result
	err := s.instrument(ctx, "add_supplier_offer", func(ctx context.Context) (int64, error) {
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
			var inner error
			created, inner = tx.AddSupplierOffer(offer)
			return inner
		})
		return created.ID, err
	})
	return created, res, err
}

// AddSampleSet records a sample round against an engagement. An empty status
// starts at REQUESTED.
func (s *Service) AddSampleSet(ctx context.Context, sample SampleSet) (SampleSet, Result, error) {
	var created SampleSet
	var res Result
	err := s.instrument(ctx, "add_sample_set", func(ctx context.Context) (int64, error) {
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
			var inner error
			created, inner = tx.AddSampleSet(sample)
			return inner
		})
		return created.ID, err
	})
	return created, res, err
}

// UpdateSampleSetInput carries a partial sample-set update.
type UpdateSampleSetInput struct {
	Status     *SampleStatus
	ReceivedAt *time.Time
	Notes      *string
}

// UpdateSampleSet transitions a sample round. Moving to RECEIVED without an
// explicit timestamp stamps the current time.
func (s *Service) UpdateSampleSet(ctx context.Context, id int64, input UpdateSampleSetInput) (SampleSet, Result, error) {
	var updated SampleSet
	var res Result
	err := s.instrument(ctx, "update_sample_set", func(ctx context.Context) (int64, error) {
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
			var inner error
			updated, inner = tx.UpdateSampleSet(id, func(sample *SampleSet) error {
				if input.Status != nil {
					sample.Status = *input.Status
					if *input.Status == domain.SampleReceived && input.ReceivedAt == nil && sample.ReceivedAt == nil {
						now := s.clock.Now()
						sample.ReceivedAt = &now
					}
				}
				if input.ReceivedAt != nil {
					sample.ReceivedAt = input.ReceivedAt
				}
				if input.Notes != nil {
					sample.Notes = input.Notes
				}
				return nil
			})
			return inner
		})
		return id, err
	})
	return updated, res, err
}

// SupplierEngagements returns every engagement for a garment with offers and
// samples attached.
func (s *Service) SupplierEngagements(ctx context.Context, garmentID int64) ([]SupplierEngagement, error) {
	var out []SupplierEngagement
	err := s.store.View(ctx, func(view TransactionView) error {
		out = supplierEngagements(view, garmentID)
		return nil
	})
	return out, err
}

package memory

import (
	"strings"
	"time"

	"stitchcore/pkg/domain"
)

var _ domain.Transaction = (*transaction)(nil)

// transaction represents a mutation set applied to a copy of the store state.
type transaction struct {
	state   memoryState
	changes []Change
	now     time.Time
}

func (tx *transaction) recordChange(change Change) {
	tx.changes = append(tx.changes, change)
}

func (tx *transaction) nextID(entity domain.EntityType) int64 {
	tx.state.sequences[entity]++
	return tx.state.sequences[entity]
}

// Snapshot returns a read-only view over the transactional state.
func (tx *transaction) Snapshot() TransactionView {
	return newTransactionView(&tx.state)
}

// FindGarment retrieves a garment from the transactional state.
func (tx *transaction) FindGarment(id int64) (Garment, bool) {
	g, ok := tx.state.garments[id]
	if !ok {
		return Garment{}, false
	}
	return cloneGarment(g), true
}

// FindMaterial retrieves a material from the transactional state.
func (tx *transaction) FindMaterial(id int64) (Material, bool) {
	m, ok := tx.state.materials[id]
	return m, ok
}

// FindAttribute retrieves an attribute from the transactional state.
func (tx *transaction) FindAttribute(id int64) (Attribute, bool) {
	a, ok := tx.state.attributes[id]
	return a, ok
}

// FindSupplier retrieves a supplier from the transactional state.
func (tx *transaction) FindSupplier(id int64) (Supplier, bool) {
	s, ok := tx.state.suppliers[id]
	if !ok {
		return Supplier{}, false
	}
	return cloneSupplier(s), true
}

// FindGarmentSupplier retrieves a garment-supplier link from the transactional state.
func (tx *transaction) FindGarmentSupplier(id int64) (GarmentSupplier, bool) {
	gs, ok := tx.state.garmentSuppliers[id]
	return gs, ok
}

// CreateGarment stores a new garment within the transaction.
func (tx *transaction) CreateGarment(g Garment) (Garment, error) {
	if g.LifecycleState == "" {
		g.LifecycleState = domain.StateConcept
	}
	if !domain.ValidLifecycleState(g.LifecycleState) {
		return Garment{}, domain.Validationf("invalid lifecycle state %q", g.LifecycleState)
	}
	if g.BaseDesignID != nil {
		if _, ok := tx.state.garments[*g.BaseDesignID]; !ok {
			return Garment{}, domain.ErrNotFound{Entity: domain.EntityGarment, ID: *g.BaseDesignID}
		}
	}
	g.ID = tx.nextID(domain.EntityGarment)
	g.CreatedAt = tx.now
	g.UpdatedAt = tx.now
	tx.state.garments[g.ID] = cloneGarment(g)
	tx.recordChange(Change{Entity: domain.EntityGarment, Action: domain.ActionCreate, After: cloneGarment(g)})
	return cloneGarment(g), nil
}

// UpdateGarment mutates a garment using the provided mutator function.
func (tx *transaction) UpdateGarment(id int64, mutator func(*Garment) error) (Garment, error) {
	current, ok := tx.state.garments[id]
	if !ok {
		return Garment{}, domain.ErrNotFound{Entity: domain.EntityGarment, ID: id}
	}
	before := cloneGarment(current)
	if err := mutator(&current); err != nil {
		return Garment{}, err
	}
	if !domain.ValidLifecycleState(current.LifecycleState) {
		return Garment{}, domain.Validationf("invalid lifecycle state %q", current.LifecycleState)
	}
	if current.BaseDesignID != nil {
		if _, ok := tx.state.garments[*current.BaseDesignID]; !ok {
			return Garment{}, domain.ErrNotFound{Entity: domain.EntityGarment, ID: *current.BaseDesignID}
		}
	}
	current.ID = id
	current.CreatedAt = before.CreatedAt
	current.UpdatedAt = tx.now
	tx.state.garments[id] = cloneGarment(current)
	tx.recordChange(Change{Entity: domain.EntityGarment, Action: domain.ActionUpdate, Before: before, After: cloneGarment(current)})
	return cloneGarment(current), nil
}

// DeleteGarment removes a garment and its dependent relation rows. Variations
// pointing at the deleted garment keep existing with a cleared base design.
func (tx *transaction) DeleteGarment(id int64) error {
	current, ok := tx.state.garments[id]
	if !ok {
		return domain.ErrNotFound{Entity: domain.EntityGarment, ID: id}
	}
	delete(tx.state.garments, id)
	for key := range tx.state.garmentMaterials {
		if key.garment == id {
			delete(tx.state.garmentMaterials, key)
		}
	}
	for key := range tx.state.garmentAttributes {
		if key.garment == id {
			delete(tx.state.garmentAttributes, key)
		}
	}
	for linkID, link := range tx.state.garmentSuppliers {
		if link.GarmentID != id {
			continue
		}
		delete(tx.state.garmentSuppliers, linkID)
		tx.deleteLinkChildren(linkID)
	}
	for gid, g := range tx.state.garments {
		if g.BaseDesignID != nil && *g.BaseDesignID == id {
			g.BaseDesignID = nil
			g.UpdatedAt = tx.now
			tx.state.garments[gid] = g
		}
	}
	tx.recordChange(Change{Entity: domain.EntityGarment, Action: domain.ActionDelete, Before: cloneGarment(current)})
	return nil
}

// CreateMaterial stores a new material, enforcing name uniqueness.
func (tx *transaction) CreateMaterial(m Material) (Material, error) {
	for _, existing := range tx.state.materials {
		if strings.EqualFold(existing.Name, m.Name) {
			return Material{}, domain.ErrAlreadyExists{Entity: domain.EntityMaterial, Name: m.Name}
		}
	}
	m.ID = tx.nextID(domain.EntityMaterial)
	tx.state.materials[m.ID] = m
	tx.recordChange(Change{Entity: domain.EntityMaterial, Action: domain.ActionCreate, After: m})
	return m, nil
}

// DeleteMaterial removes a material unless any garment still references it.
func (tx *transaction) DeleteMaterial(id int64) error {
	current, ok := tx.state.materials[id]
	if !ok {
		return domain.ErrNotFound{Entity: domain.EntityMaterial, ID: id}
	}
	for key := range tx.state.garmentMaterials {
		if key.other == id {
			return domain.ErrInUse{Entity: domain.EntityMaterial, ID: id, Reason: "referenced by garment compositions"}
		}
	}
	delete(tx.state.materials, id)
	tx.recordChange(Change{Entity: domain.EntityMaterial, Action: domain.ActionDelete, Before: current})
	return nil
}

// CreateAttribute stores a new attribute, enforcing name uniqueness.
func (tx *transaction) CreateAttribute(a Attribute) (Attribute, error) {
	for _, existing := range tx.state.attributes {
		if strings.EqualFold(existing.Name, a.Name) {
			return Attribute{}, domain.ErrAlreadyExists{Entity: domain.EntityAttribute, Name: a.Name}
		}
	}
	a.ID = tx.nextID(domain.EntityAttribute)
	tx.state.attributes[a.ID] = a
	tx.recordChange(Change{Entity: domain.EntityAttribute, Action: domain.ActionCreate, After: a})
	return a, nil
}

// DeleteAttribute removes an attribute unless it is assigned to a garment.
// Incompatibility pairs referencing the attribute are removed with it.
func (tx *transaction) DeleteAttribute(id int64) error {
	current, ok := tx.state.attributes[id]
	if !ok {
		return domain.ErrNotFound{Entity: domain.EntityAttribute, ID: id}
	}
	for key := range tx.state.garmentAttributes {
		if key.other == id {
			return domain.ErrInUse{Entity: domain.EntityAttribute, ID: id, Reason: "assigned to garments"}
		}
	}
	for key, pair := range tx.state.incompatibilities {
		if pair.Involves(id) {
			delete(tx.state.incompatibilities, key)
		}
	}
	delete(tx.state.attributes, id)
	tx.recordChange(Change{Entity: domain.EntityAttribute, Action: domain.ActionDelete, Before: current})
	return nil
}

// RecordIncompatibility stores the canonical unordered pair. Re-recording an
// existing pair is a no-op.
func (tx *transaction) RecordIncompatibility(a, b int64) (AttributeIncompatibility, error) {
	pair, err := domain.NewIncompatibility(a, b)
	if err != nil {
		return AttributeIncompatibility{}, err
	}
	if _, ok := tx.state.attributes[pair.AttributeA]; !ok {
		return AttributeIncompatibility{}, domain.ErrNotFound{Entity: domain.EntityAttribute, ID: pair.AttributeA}
	}
	if _, ok := tx.state.attributes[pair.AttributeB]; !ok {
		return AttributeIncompatibility{}, domain.ErrNotFound{Entity: domain.EntityAttribute, ID: pair.AttributeB}
	}
	key := pairKey{pair.AttributeA, pair.AttributeB}
	if existing, ok := tx.state.incompatibilities[key]; ok {
		return existing, nil
	}
	tx.state.incompatibilities[key] = pair
	tx.recordChange(Change{Entity: domain.EntityIncompatibility, Action: domain.ActionCreate, After: pair})
	return pair, nil
}

// UpsertGarmentMaterial inserts a composition row or replaces the percentage
// of an existing (garment, material) pair.
func (tx *transaction) UpsertGarmentMaterial(gm GarmentMaterial) (GarmentMaterial, error) {
	if !gm.Percentage.IsPositive() || gm.Percentage.GreaterThan(domain.HundredPercent) {
		return GarmentMaterial{}, domain.Validationf("percentage must be greater than 0 and at most 100, got %s", gm.Percentage)
	}
	if _, ok := tx.state.garments[gm.GarmentID]; !ok {
		return GarmentMaterial{}, domain.ErrNotFound{Entity: domain.EntityGarment, ID: gm.GarmentID}
	}
	if _, ok := tx.state.materials[gm.MaterialID]; !ok {
		return GarmentMaterial{}, domain.ErrNotFound{Entity: domain.EntityMaterial, ID: gm.MaterialID}
	}
	key := relKey{gm.GarmentID, gm.MaterialID}
	if existing, ok := tx.state.garmentMaterials[key]; ok {
		tx.state.garmentMaterials[key] = gm
		tx.recordChange(Change{Entity: domain.EntityGarmentMaterial, Action: domain.ActionUpdate, Before: existing, After: gm})
		return gm, nil
	}
	tx.state.garmentMaterials[key] = gm
	tx.recordChange(Change{Entity: domain.EntityGarmentMaterial, Action: domain.ActionCreate, After: gm})
	return gm, nil
}

// AddGarmentAttribute assigns an attribute to a garment. Re-adding an
// existing assignment is a no-op.
func (tx *transaction) AddGarmentAttribute(ga GarmentAttribute) (GarmentAttribute, error) {
	if _, ok := tx.state.garments[ga.GarmentID]; !ok {
		return GarmentAttribute{}, domain.ErrNotFound{Entity: domain.EntityGarment, ID: ga.GarmentID}
	}
	if _, ok := tx.state.attributes[ga.AttributeID]; !ok {
		return GarmentAttribute{}, domain.ErrNotFound{Entity: domain.EntityAttribute, ID: ga.AttributeID}
	}
	key := relKey{ga.GarmentID, ga.AttributeID}
	if existing, ok := tx.state.garmentAttributes[key]; ok {
		return existing, nil
	}
	tx.state.garmentAttributes[key] = ga
	tx.recordChange(Change{Entity: domain.EntityGarmentAttribute, Action: domain.ActionCreate, After: ga})
	return ga, nil
}

// CreateSupplier stores a new supplier record.
func (tx *transaction) CreateSupplier(s Supplier) (Supplier, error) {
	s.ID = tx.nextID(domain.EntitySupplier)
	tx.state.suppliers[s.ID] = cloneSupplier(s)
	tx.recordChange(Change{Entity: domain.EntitySupplier, Action: domain.ActionCreate, After: cloneSupplier(s)})
	return cloneSupplier(s), nil
}

// DeleteSupplier removes a supplier together with its garment links, offers
// and sample sets.
func (tx *transaction) DeleteSupplier(id int64) error {
	current, ok := tx.state.suppliers[id]
	if !ok {
		return domain.ErrNotFound{Entity: domain.EntitySupplier, ID: id}
	}
	for linkID, link := range tx.state.garmentSuppliers {
		if link.SupplierID != id {
			continue
		}
		delete(tx.state.garmentSuppliers, linkID)
		tx.deleteLinkChildren(linkID)
	}
	delete(tx.state.suppliers, id)
	tx.recordChange(Change{Entity: domain.EntitySupplier, Action: domain.ActionDelete, Before: cloneSupplier(current)})
	return nil
}

func (tx *transaction) deleteLinkChildren(linkID int64) {
	for offerID, offer := range tx.state.offers {
		if offer.GarmentSupplierID == linkID {
			delete(tx.state.offers, offerID)
		}
	}
	for sampleID, sample := range tx.state.samples {
		if sample.GarmentSupplierID == linkID {
			delete(tx.state.samples, sampleID)
		}
	}
}

// LinkSupplier creates a garment-supplier link with an engagement status.
func (tx *transaction) LinkSupplier(gs GarmentSupplier) (GarmentSupplier, error) {
	if gs.Status == "" {
		gs.Status = domain.SupplierOffered
	}
	if !domain.ValidSupplierStatus(gs.Status) {
		return GarmentSupplier{}, domain.Validationf("invalid supplier status %q", gs.Status)
	}
	if _, ok := tx.state.garments[gs.GarmentID]; !ok {
		return GarmentSupplier{}, domain.ErrNotFound{Entity: domain.EntityGarment, ID: gs.GarmentID}
	}
	if _, ok := tx.state.suppliers[gs.SupplierID]; !ok {
		return GarmentSupplier{}, domain.ErrNotFound{Entity: domain.EntitySupplier, ID: gs.SupplierID}
	}
	gs.ID = tx.nextID(domain.EntityGarmentSupplier)
	gs.CreatedAt = tx.now
	gs.UpdatedAt = tx.now
	tx.state.garmentSuppliers[gs.ID] = gs
	tx.recordChange(Change{Entity: domain.EntityGarmentSupplier, Action: domain.ActionCreate, After: gs})
	return gs, nil
}

// UpdateGarmentSupplier mutates a garment-supplier link.
func (tx *transaction) UpdateGarmentSupplier(id int64, mutator func(*GarmentSupplier) error) (GarmentSupplier, error) {
	current, ok := tx.state.garmentSuppliers[id]
	if !ok {
		return GarmentSupplier{}, domain.ErrNotFound{Entity: domain.EntityGarmentSupplier, ID: id}
	}
	before := current
	if err := mutator(&current); err != nil {
		return GarmentSupplier{}, err
	}
	if !domain.ValidSupplierStatus(current.Status) {
		return GarmentSupplier{}, domain.Validationf("invalid supplier status %q", current.Status)
	}
	current.ID = id
	current.GarmentID = before.GarmentID
	current.SupplierID = before.SupplierID
	current.CreatedAt = before.CreatedAt
	current.UpdatedAt = tx.now
	tx.state.garmentSuppliers[id] = current
	tx.recordChange(Change{Entity: domain.EntityGarmentSupplier, Action: domain.ActionUpdate, Before: before, After: current})
	return current, nil
}

// AddSupplierOffer records a price offer against a garment-supplier link.
func (tx *transaction) AddSupplierOffer(o SupplierOffer) (SupplierOffer, error) {
	if _, ok := tx.state.garmentSuppliers[o.GarmentSupplierID]; !ok {
		return SupplierOffer{}, domain.ErrNotFound{Entity: domain.EntityGarmentSupplier, ID: o.GarmentSupplierID}
	}
	if !o.Price.IsPositive() {
		return SupplierOffer{}, domain.Validationf("offer price must be positive, got %s", o.Price)
	}
	if o.LeadTimeDays < 0 {
		return SupplierOffer{}, domain.Validationf("lead time cannot be negative, got %d", o.LeadTimeDays)
	}
	if o.Currency == "" {
		o.Currency = "USD"
	}
	o.ID = tx.nextID(domain.EntitySupplierOffer)
	o.CreatedAt = tx.now
	tx.state.offers[o.ID] = o
	tx.recordChange(Change{Entity: domain.EntitySupplierOffer, Action: domain.ActionCreate, After: o})
	return o, nil
}

// AddSampleSet records a sample round against a garment-supplier link.
func (tx *transaction) AddSampleSet(s SampleSet) (SampleSet, error) {
	if _, ok := tx.state.garmentSuppliers[s.GarmentSupplierID]; !ok {
		return SampleSet{}, domain.ErrNotFound{Entity: domain.EntityGarmentSupplier, ID: s.GarmentSupplierID}
	}
	if s.Status == "" {
		s.Status = domain.SampleRequested
	}
	if !domain.ValidSampleStatus(s.Status) {
		return SampleSet{}, domain.Validationf("invalid sample status %q", s.Status)
	}
	s.ID = tx.nextID(domain.EntitySampleSet)
	tx.state.samples[s.ID] = cloneSample(s)
	tx.recordChange(Change{Entity: domain.EntitySampleSet, Action: domain.ActionCreate, After: cloneSample(s)})
	return cloneSample(s), nil
}

// UpdateSampleSet mutates a sample set record.
func (tx *transaction) UpdateSampleSet(id int64, mutator func(*SampleSet) error) (SampleSet, error) {
	current, ok := tx.state.samples[id]
	if !ok {
		return SampleSet{}, domain.ErrNotFound{Entity: domain.EntitySampleSet, ID: id}
	}
	before := cloneSample(current)
	if err := mutator(&current); err != nil {
		return SampleSet{}, err
	}
	if !domain.ValidSampleStatus(current.Status) {
		return SampleSet{}, domain.Validationf("invalid sample status %q", current.Status)
	}
	current.ID = id
	current.GarmentSupplierID = before.GarmentSupplierID
	tx.state.samples[id] = cloneSample(current)
	tx.recordChange(Change{Entity: domain.EntitySampleSet, Action: domain.ActionUpdate, Before: before, After: cloneSample(current)})
	return cloneSample(current), nil
}

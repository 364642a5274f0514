// Package memory implements the in-memory transactional store backing the
// durable persistence tiers. Writers are serialized; every transaction runs
// against a copy of the state and commits only when no registered rule
// reports a blocking violation.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"stitchcore/pkg/domain"
)

// Compile-time contract assertion ensuring the store satisfies the domain interface.
var _ domain.PersistentStore = (*Store)(nil)

type (
	Garment                  = domain.Garment
	Material                 = domain.Material
	Attribute                = domain.Attribute
	Supplier                 = domain.Supplier
	GarmentMaterial          = domain.GarmentMaterial
	GarmentAttribute         = domain.GarmentAttribute
	AttributeIncompatibility = domain.AttributeIncompatibility
	GarmentSupplier          = domain.GarmentSupplier
	SupplierOffer            = domain.SupplierOffer
	SampleSet                = domain.SampleSet
	Change                   = domain.Change
	Result                   = domain.Result
	RulesEngine              = domain.RulesEngine
	Transaction              = domain.Transaction
	TransactionView          = domain.TransactionView
)

type pairKey struct {
	a, b int64
}

type relKey struct {
	garment, other int64
}

type memoryState struct {
	garments          map[int64]Garment
	materials         map[int64]Material
	attributes        map[int64]Attribute
	suppliers         map[int64]Supplier
	garmentMaterials  map[relKey]GarmentMaterial
	garmentAttributes map[relKey]GarmentAttribute
	incompatibilities map[pairKey]AttributeIncompatibility
	garmentSuppliers  map[int64]GarmentSupplier
	offers            map[int64]SupplierOffer
	samples           map[int64]SampleSet
	sequences         map[domain.EntityType]int64
}

// Snapshot is the JSON-serialisable export of committed state used by the
// durable backends.
type Snapshot struct {
	Garments          []Garment                  `json:"garments"`
	Materials         []Material                 `json:"materials"`
	Attributes        []Attribute                `json:"attributes"`
	Suppliers         []Supplier                 `json:"suppliers"`
	GarmentMaterials  []GarmentMaterial          `json:"garment_materials"`
	GarmentAttributes []GarmentAttribute         `json:"garment_attributes"`
	Incompatibilities []AttributeIncompatibility `json:"attribute_incompatibilities"`
	GarmentSuppliers  []GarmentSupplier          `json:"garment_suppliers"`
	Offers            []SupplierOffer            `json:"supplier_offers"`
	Samples           []SampleSet                `json:"sample_sets"`
	Sequences         map[string]int64           `json:"sequences"`
}

func newMemoryState() memoryState {
	return memoryState{
		garments:          make(map[int64]Garment),
		materials:         make(map[int64]Material),
		attributes:        make(map[int64]Attribute),
		suppliers:         make(map[int64]Supplier),
		garmentMaterials:  make(map[relKey]GarmentMaterial),
		garmentAttributes: make(map[relKey]GarmentAttribute),
		incompatibilities: make(map[pairKey]AttributeIncompatibility),
		garmentSuppliers:  make(map[int64]GarmentSupplier),
		offers:            make(map[int64]SupplierOffer),
		samples:           make(map[int64]SampleSet),
		sequences:         make(map[domain.EntityType]int64),
	}
}

func snapshotFromMemoryState(state memoryState) Snapshot {
	snapshot := Snapshot{Sequences: make(map[string]int64, len(state.sequences))}
	for _, g := range state.garments {
		snapshot.Garments = append(snapshot.Garments, cloneGarment(g))
	}
	for _, m := range state.materials {
		snapshot.Materials = append(snapshot.Materials, m)
	}
	for _, a := range state.attributes {
		snapshot.Attributes = append(snapshot.Attributes, a)
	}
	for _, s := range state.suppliers {
		snapshot.Suppliers = append(snapshot.Suppliers, cloneSupplier(s))
	}
	for _, gm := range state.garmentMaterials {
		snapshot.GarmentMaterials = append(snapshot.GarmentMaterials, gm)
	}
	for _, ga := range state.garmentAttributes {
		snapshot.GarmentAttributes = append(snapshot.GarmentAttributes, ga)
	}
	for _, pair := range state.incompatibilities {
		snapshot.Incompatibilities = append(snapshot.Incompatibilities, pair)
	}
	for _, gs := range state.garmentSuppliers {
		snapshot.GarmentSuppliers = append(snapshot.GarmentSuppliers, gs)
	}
	for _, o := range state.offers {
		snapshot.Offers = append(snapshot.Offers, o)
	}
	for _, s := range state.samples {
		snapshot.Samples = append(snapshot.Samples, cloneSample(s))
	}
	for entity, seq := range state.sequences {
		snapshot.Sequences[string(entity)] = seq
	}
	sort.Slice(snapshot.Garments, func(i, j int) bool { return snapshot.Garments[i].ID < snapshot.Garments[j].ID })
	sort.Slice(snapshot.Materials, func(i, j int) bool { return snapshot.Materials[i].ID < snapshot.Materials[j].ID })
	sort.Slice(snapshot.Attributes, func(i, j int) bool { return snapshot.Attributes[i].ID < snapshot.Attributes[j].ID })
	sort.Slice(snapshot.Suppliers, func(i, j int) bool { return snapshot.Suppliers[i].ID < snapshot.Suppliers[j].ID })
	sort.Slice(snapshot.GarmentSuppliers, func(i, j int) bool { return snapshot.GarmentSuppliers[i].ID < snapshot.GarmentSuppliers[j].ID })
	sort.Slice(snapshot.Offers, func(i, j int) bool { return snapshot.Offers[i].ID < snapshot.Offers[j].ID })
	sort.Slice(snapshot.Samples, func(i, j int) bool { return snapshot.Samples[i].ID < snapshot.Samples[j].ID })
	sort.Slice(snapshot.GarmentMaterials, func(i, j int) bool {
		l, r := snapshot.GarmentMaterials[i], snapshot.GarmentMaterials[j]
		if l.GarmentID == r.GarmentID {
			return l.MaterialID < r.MaterialID
		}
		return l.GarmentID < r.GarmentID
	})
	sort.Slice(snapshot.GarmentAttributes, func(i, j int) bool {
		l, r := snapshot.GarmentAttributes[i], snapshot.GarmentAttributes[j]
		if l.GarmentID == r.GarmentID {
			return l.AttributeID < r.AttributeID
		}
		return l.GarmentID < r.GarmentID
	})
	sort.Slice(snapshot.Incompatibilities, func(i, j int) bool {
		l, r := snapshot.Incompatibilities[i], snapshot.Incompatibilities[j]
		if l.AttributeA == r.AttributeA {
			return l.AttributeB < r.AttributeB
		}
		return l.AttributeA < r.AttributeA
	})
	return snapshot
}

func memoryStateFromSnapshot(s Snapshot) memoryState {
	state := newMemoryState()
	for _, g := range s.Garments {
		state.garments[g.ID] = cloneGarment(g)
	}
	for _, m := range s.Materials {
		state.materials[m.ID] = m
	}
	for _, a := range s.Attributes {
		state.attributes[a.ID] = a
	}
	for _, sup := range s.Suppliers {
		state.suppliers[sup.ID] = cloneSupplier(sup)
	}
	for _, gm := range s.GarmentMaterials {
		state.garmentMaterials[relKey{gm.GarmentID, gm.MaterialID}] = gm
	}
	for _, ga := range s.GarmentAttributes {
		state.garmentAttributes[relKey{ga.GarmentID, ga.AttributeID}] = ga
	}
	for _, pair := range s.Incompatibilities {
		state.incompatibilities[pairKey{pair.AttributeA, pair.AttributeB}] = pair
	}
	for _, gs := range s.GarmentSuppliers {
		state.garmentSuppliers[gs.ID] = gs
	}
	for _, o := range s.Offers {
		state.offers[o.ID] = o
	}
	for _, smp := range s.Samples {
		state.samples[smp.ID] = cloneSample(smp)
	}
	for entity, seq := range s.Sequences {
		state.sequences[domain.EntityType(entity)] = seq
	}
	return state
}

func (s memoryState) clone() memoryState {
	cloned := newMemoryState()
	for k, v := range s.garments {
		cloned.garments[k] = cloneGarment(v)
	}
	for k, v := range s.materials {
		cloned.materials[k] = v
	}
	for k, v := range s.attributes {
		cloned.attributes[k] = v
	}
	for k, v := range s.suppliers {
		cloned.suppliers[k] = cloneSupplier(v)
	}
	for k, v := range s.garmentMaterials {
		cloned.garmentMaterials[k] = v
	}
	for k, v := range s.garmentAttributes {
		cloned.garmentAttributes[k] = v
	}
	for k, v := range s.incompatibilities {
		cloned.incompatibilities[k] = v
	}
	for k, v := range s.garmentSuppliers {
		cloned.garmentSuppliers[k] = v
	}
	for k, v := range s.offers {
		cloned.offers[k] = v
	}
	for k, v := range s.samples {
		cloned.samples[k] = cloneSample(v)
	}
	for k, v := range s.sequences {
		cloned.sequences[k] = v
	}
	return cloned
}

func cloneGarment(g Garment) Garment {
	cp := g
	if g.BaseDesignID != nil {
		id := *g.BaseDesignID
		cp.BaseDesignID = &id
	}
	if g.ChangeNote != nil {
		note := *g.ChangeNote
		cp.ChangeNote = &note
	}
	return cp
}

func cloneSupplier(s Supplier) Supplier {
	cp := s
	if s.ContactEmail != nil {
		email := *s.ContactEmail
		cp.ContactEmail = &email
	}
	return cp
}

func cloneSample(s SampleSet) SampleSet {
	cp := s
	if s.ReceivedAt != nil {
		at := *s.ReceivedAt
		cp.ReceivedAt = &at
	}
	if s.Notes != nil {
		notes := *s.Notes
		cp.Notes = &notes
	}
	return cp
}

// Store provides the in-memory transactional store for the core domain.
type Store struct {
	mu     sync.RWMutex
	state  memoryState
	engine *RulesEngine
	nowFn  func() time.Time
}

// NewStore constructs an in-memory store backed by the provided rules engine.
func NewStore(engine *RulesEngine) *Store {
	if engine == nil {
		engine = domain.NewRulesEngine()
	}
	return &Store{
		state:  newMemoryState(),
		engine: engine,
		nowFn:  func() time.Time { return time.Now().UTC() },
	}
}

// ExportState returns a snapshot of committed state.
func (s *Store) ExportState() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return snapshotFromMemoryState(s.state)
}

// ImportState replaces committed state with the snapshot contents.
func (s *Store) ImportState(snapshot Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = memoryStateFromSnapshot(snapshot)
}

// RulesEngine exposes the engine so callers can register additional rules.
func (s *Store) RulesEngine() *RulesEngine {
	return s.engine
}

// SetNowFunc overrides the transaction clock; intended for tests.
func (s *Store) SetNowFunc(fn func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if fn != nil {
		s.nowFn = fn
	}
}

// Close releases no resources for the in-memory tier.
func (s *Store) Close() error { return nil }

// RunInTransaction executes fn within a transactional copy of the store
// state. Registered rules evaluate against the post-mutation snapshot; a
// blocking violation aborts the commit and surfaces as RuleViolationError.
func (s *Store) RunInTransaction(ctx context.Context, fn func(tx Transaction) error) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &transaction{
		state: s.state.clone(),
		now:   s.nowFn(),
	}

	if err := fn(tx); err != nil {
		return Result{}, err
	}

	var result Result
	if s.engine != nil {
		view := newTransactionView(&tx.state)
		res, err := s.engine.Evaluate(ctx, view, tx.changes)
		if err != nil {
			return Result{}, err
		}
		result = res
		if res.HasBlocking() {
			return res, domain.RuleViolationError{Result: res}
		}
	}

	s.state = tx.state
	return result, nil
}

// View executes fn against a read-only snapshot of the store state.
func (s *Store) View(_ context.Context, fn func(TransactionView) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot := s.state.clone()
	view := newTransactionView(&snapshot)
	return fn(view)
}

// Read helpers ---------------------------------------------------------------

// GetGarment retrieves a garment by id from committed state.
func (s *Store) GetGarment(id int64) (Garment, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.state.garments[id]
	if !ok {
		return Garment{}, false
	}
	return cloneGarment(g), true
}

// ListGarments returns all garments from committed state, newest first.
func (s *Store) ListGarments() []Garment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Garment, 0, len(s.state.garments))
	for _, g := range s.state.garments {
		out = append(out, cloneGarment(g))
	}
	domain.SortGarmentsNewestFirst(out)
	return out
}

// ListMaterials returns all materials ordered by name.
func (s *Store) ListMaterials() []Material {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Material, 0, len(s.state.materials))
	for _, m := range s.state.materials {
		out = append(out, m)
	}
	sortMaterialsByName(out)
	return out
}

// ListAttributes returns all attributes ordered by name.
func (s *Store) ListAttributes() []Attribute {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Attribute, 0, len(s.state.attributes))
	for _, a := range s.state.attributes {
		out = append(out, a)
	}
	sortAttributesByName(out)
	return out
}

// ListSuppliers returns all suppliers ordered by name.
func (s *Store) ListSuppliers() []Supplier {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Supplier, 0, len(s.state.suppliers))
	for _, sup := range s.state.suppliers {
		out = append(out, cloneSupplier(sup))
	}
	sortSuppliersByName(out)
	return out
}

func sortMaterialsByName(materials []Material) {
	sort.Slice(materials, func(i, j int) bool {
		return strings.ToLower(materials[i].Name) < strings.ToLower(materials[j].Name)
	})
}

func sortAttributesByName(attributes []Attribute) {
	sort.Slice(attributes, func(i, j int) bool {
		return strings.ToLower(attributes[i].Name) < strings.ToLower(attributes[j].Name)
	})
}

func sortSuppliersByName(suppliers []Supplier) {
	sort.Slice(suppliers, func(i, j int) bool {
		return strings.ToLower(suppliers[i].Name) < strings.ToLower(suppliers[j].Name)
	})
}

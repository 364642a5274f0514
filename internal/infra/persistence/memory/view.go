package memory

import (
	"sort"

	"stitchcore/pkg/domain"
)

var _ domain.TransactionView = (*transactionView)(nil)

// transactionView is a read-only adapter over a memoryState. Views handed to
// rules and callers never share pointers with committed state.
type transactionView struct {
	state *memoryState
}

func newTransactionView(state *memoryState) *transactionView {
	return &transactionView{state: state}
}

func (v *transactionView) ListGarments() []Garment {
	out := make([]Garment, 0, len(v.state.garments))
	for _, g := range v.state.garments {
		out = append(out, cloneGarment(g))
	}
	domain.SortGarmentsNewestFirst(out)
	return out
}

func (v *transactionView) FindGarment(id int64) (Garment, bool) {
	g, ok := v.state.garments[id]
	if !ok {
		return Garment{}, false
	}
	return cloneGarment(g), true
}

func (v *transactionView) FindAttribute(id int64) (Attribute, bool) {
	a, ok := v.state.attributes[id]
	return a, ok
}

func (v *transactionView) FindMaterial(id int64) (Material, bool) {
	m, ok := v.state.materials[id]
	return m, ok
}

func (v *transactionView) FindSupplier(id int64) (Supplier, bool) {
	s, ok := v.state.suppliers[id]
	if !ok {
		return Supplier{}, false
	}
	return cloneSupplier(s), true
}

func (v *transactionView) FindGarmentSupplier(id int64) (GarmentSupplier, bool) {
	gs, ok := v.state.garmentSuppliers[id]
	return gs, ok
}

func (v *transactionView) FindSampleSet(id int64) (SampleSet, bool) {
	s, ok := v.state.samples[id]
	if !ok {
		return SampleSet{}, false
	}
	return cloneSample(s), true
}

// MaterialsFor returns the composition rows of a garment ordered by material id.
func (v *transactionView) MaterialsFor(garmentID int64) []GarmentMaterial {
	var out []GarmentMaterial
	for key, gm := range v.state.garmentMaterials {
		if key.garment == garmentID {
			out = append(out, gm)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MaterialID < out[j].MaterialID })
	return out
}

// AttributesFor returns the attribute assignments of a garment ordered by attribute id.
func (v *transactionView) AttributesFor(garmentID int64) []GarmentAttribute {
	var out []GarmentAttribute
	for key, ga := range v.state.garmentAttributes {
		if key.garment == garmentID {
			out = append(out, ga)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AttributeID < out[j].AttributeID })
	return out
}

// ListIncompatibilities returns every recorded pair in canonical order.
func (v *transactionView) ListIncompatibilities() []AttributeIncompatibility {
	out := make([]AttributeIncompatibility, 0, len(v.state.incompatibilities))
	for _, pair := range v.state.incompatibilities {
		out = append(out, pair)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].AttributeA == out[j].AttributeA {
			return out[i].AttributeB < out[j].AttributeB
		}
		return out[i].AttributeA < out[j].AttributeA
	})
	return out
}

func (v *transactionView) ListMaterials() []Material {
	out := make([]Material, 0, len(v.state.materials))
	for _, m := range v.state.materials {
		out = append(out, m)
	}
	sortMaterialsByName(out)
	return out
}

func (v *transactionView) ListAttributes() []Attribute {
	out := make([]Attribute, 0, len(v.state.attributes))
	for _, a := range v.state.attributes {
		out = append(out, a)
	}
	sortAttributesByName(out)
	return out
}

func (v *transactionView) ListSuppliers() []Supplier {
	out := make([]Supplier, 0, len(v.state.suppliers))
	for _, s := range v.state.suppliers {
		out = append(out, cloneSupplier(s))
	}
	sortSuppliersByName(out)
	return out
}

// VariationsOf returns garments deriving from the given base design, newest first.
func (v *transactionView) VariationsOf(baseDesignID int64) []Garment {
	var out []Garment
	for _, g := range v.state.garments {
		if g.BaseDesignID != nil && *g.BaseDesignID == baseDesignID {
			out = append(out, cloneGarment(g))
		}
	}
	domain.SortGarmentsNewestFirst(out)
	return out
}

// SuppliersFor returns the supplier links of a garment ordered by link id.
func (v *transactionView) SuppliersFor(garmentID int64) []GarmentSupplier {
	var out []GarmentSupplier
	for _, gs := range v.state.garmentSuppliers {
		if gs.GarmentID == garmentID {
			out = append(out, gs)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// OffersFor returns the offers recorded against a garment-supplier link.
func (v *transactionView) OffersFor(garmentSupplierID int64) []SupplierOffer {
	var out []SupplierOffer
	for _, o := range v.state.offers {
		if o.GarmentSupplierID == garmentSupplierID {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// SamplesFor returns the sample rounds recorded against a garment-supplier link.
func (v *transactionView) SamplesFor(garmentSupplierID int64) []SampleSet {
	var out []SampleSet
	for _, s := range v.state.samples {
		if s.GarmentSupplierID == garmentSupplierID {
			out = append(out, cloneSample(s))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

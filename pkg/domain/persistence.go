package domain

import "context"

// Transaction exposes the domain operations that a persistence implementation
// must support within an atomic scope.
type Transaction interface {
	Snapshot() TransactionView
	CreateGarment(Garment) (Garment, error)
	UpdateGarment(id int64, mutator func(*Garment) error) (Garment, error)
	DeleteGarment(id int64) error
	CreateMaterial(Material) (Material, error)
	DeleteMaterial(id int64) error
	CreateAttribute(Attribute) (Attribute, error)
	DeleteAttribute(id int64) error
	RecordIncompatibility(a, b int64) (AttributeIncompatibility, error)
	UpsertGarmentMaterial(GarmentMaterial) (GarmentMaterial, error)
	AddGarmentAttribute(GarmentAttribute) (GarmentAttribute, error)
	CreateSupplier(Supplier) (Supplier, error)
	DeleteSupplier(id int64) error
	LinkSupplier(GarmentSupplier) (GarmentSupplier, error)
	UpdateGarmentSupplier(id int64, mutator func(*GarmentSupplier) error) (GarmentSupplier, error)
	AddSupplierOffer(SupplierOffer) (SupplierOffer, error)
	AddSampleSet(SampleSet) (SampleSet, error)
	UpdateSampleSet(id int64, mutator func(*SampleSet) error) (SampleSet, error)
	FindGarment(id int64) (Garment, bool)
	FindMaterial(id int64) (Material, bool)
	FindAttribute(id int64) (Attribute, bool)
	FindSupplier(id int64) (Supplier, bool)
	FindGarmentSupplier(id int64) (GarmentSupplier, bool)
}

// TransactionView provides read-only access to snapshot data, extending the
// rule view with relation queries used by higher layers.
type TransactionView interface {
	RuleView
	ListMaterials() []Material
	ListAttributes() []Attribute
	ListSuppliers() []Supplier
	FindMaterial(id int64) (Material, bool)
	FindSupplier(id int64) (Supplier, bool)
	FindGarmentSupplier(id int64) (GarmentSupplier, bool)
	FindSampleSet(id int64) (SampleSet, bool)
	VariationsOf(baseDesignID int64) []Garment
	SuppliersFor(garmentID int64) []GarmentSupplier
	OffersFor(garmentSupplierID int64) []SupplierOffer
	SamplesFor(garmentSupplierID int64) []SampleSet
}

// PersistentStore is a minimal abstraction over durable backends. It mirrors
// the subset of store capabilities used directly by higher layers.
type PersistentStore interface {
	RunInTransaction(ctx context.Context, fn func(Transaction) error) (Result, error)
	View(ctx context.Context, fn func(TransactionView) error) error
	GetGarment(id int64) (Garment, bool)
	ListGarments() []Garment
	ListMaterials() []Material
	ListAttributes() []Attribute
	ListSuppliers() []Supplier
	Close() error
}

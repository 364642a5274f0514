package core

import "stitchcore/pkg/domain"

type (
	EntityType         = domain.EntityType
	LifecycleState     = domain.LifecycleState
	SupplierStatus     = domain.SupplierStatus
	SampleStatus       = domain.SampleStatus
	Severity           = domain.Severity
	Base               = domain.Base
	Garment            = domain.Garment
	Material           = domain.Material
	Attribute          = domain.Attribute
	Supplier           = domain.Supplier
	GarmentMaterial    = domain.GarmentMaterial
	GarmentAttribute   = domain.GarmentAttribute
	GarmentSupplier    = domain.GarmentSupplier
	SupplierOffer      = domain.SupplierOffer
	SampleSet          = domain.SampleSet
	Change             = domain.Change
	Action             = domain.Action
	Violation          = domain.Violation
	Result             = domain.Result
	RulesEngine        = domain.RulesEngine
	RuleViolationError = domain.RuleViolationError
)

const (
	EntityGarment          = domain.EntityGarment
	EntityMaterial         = domain.EntityMaterial
	EntityAttribute        = domain.EntityAttribute
	EntitySupplier         = domain.EntitySupplier
	EntityGarmentMaterial  = domain.EntityGarmentMaterial
	EntityGarmentAttribute = domain.EntityGarmentAttribute
	EntityIncompatibility  = domain.EntityIncompatibility
	EntityGarmentSupplier  = domain.EntityGarmentSupplier
	EntitySupplierOffer    = domain.EntitySupplierOffer
	EntitySampleSet        = domain.EntitySampleSet
)

const (
	StateConcept  = domain.StateConcept
	StateDesign   = domain.StateDesign
	StateSample   = domain.StateSample
	StateApproved = domain.StateApproved
	StateMassProd = domain.StateMassProd
)

const (
	SeverityBlock = domain.SeverityBlock
	SeverityWarn  = domain.SeverityWarn
	SeverityLog   = domain.SeverityLog
)

const (
	ActionCreate = domain.ActionCreate
	ActionUpdate = domain.ActionUpdate
	ActionDelete = domain.ActionDelete
)

// NewRulesEngine re-exports the domain constructor for callers configuring
// custom rule sets.
func NewRulesEngine() *RulesEngine { return domain.NewRulesEngine() }

// Package domain defines the core persistent entities, value types, and
// rule evaluation primitives used by stitchcore.
package domain

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// EntityType identifies the type of record stored in the core domain.
type EntityType string

// Supported entity type identifiers used in Change records and persistence buckets.
const (
	// EntityGarment identifies a garment record.
	EntityGarment EntityType = "garment"
	// EntityMaterial identifies a material record.
	EntityMaterial EntityType = "material"
	// EntityAttribute identifies a design attribute record.
	EntityAttribute EntityType = "attribute"
	// EntitySupplier identifies a supplier record.
	EntitySupplier EntityType = "supplier"
	// EntityGarmentMaterial identifies a garment-material composition row.
	EntityGarmentMaterial EntityType = "garment_material"
	// EntityGarmentAttribute identifies a garment-attribute assignment row.
	EntityGarmentAttribute EntityType = "garment_attribute"
	// EntityIncompatibility identifies an attribute incompatibility pair.
	EntityIncompatibility EntityType = "attribute_incompatibility"
	// EntityGarmentSupplier identifies a garment-supplier link record.
	EntityGarmentSupplier EntityType = "garment_supplier"
	// EntitySupplierOffer identifies a supplier price offer record.
	EntitySupplierOffer EntityType = "supplier_offer"
	// EntitySampleSet identifies a sample approval record.
	EntitySampleSet EntityType = "sample_set"
)

// LifecycleState represents the canonical garment lifecycle states.
type LifecycleState string

// Canonical garment lifecycle states from concept through mass production.
const (
	// StateConcept indicates an early idea not yet in design.
	StateConcept LifecycleState = "CONCEPT"
	// StateDesign indicates active design work.
	StateDesign LifecycleState = "DESIGN"
	// StateSample indicates physical sampling is underway.
	StateSample   LifecycleState = "SAMPLE"
	StateApproved LifecycleState = "APPROVED"
	StateMassProd LifecycleState = "MASS_PRODUCTION"
)

// LifecycleStates lists every valid garment lifecycle state.
var LifecycleStates = []LifecycleState{StateConcept, StateDesign, StateSample, StateApproved, StateMassProd}

// ValidLifecycleState reports whether s is one of the canonical states.
func ValidLifecycleState(s LifecycleState) bool {
	for _, v := range LifecycleStates {
		if v == s {
			return true
		}
	}
	return false
}

// SupplierStatus enumerates garment-supplier engagement states.
type SupplierStatus string

// Canonical supplier engagement statuses for a garment-supplier link.
const (
	SupplierOffered  SupplierStatus = "OFFERED"
	SupplierSampling SupplierStatus = "SAMPLING"
	SupplierApproved SupplierStatus = "APPROVED"
	SupplierRejected SupplierStatus = "REJECTED"
	SupplierInStore  SupplierStatus = "IN_STORE"
)

// SupplierStatuses lists every valid garment-supplier status.
var SupplierStatuses = []SupplierStatus{SupplierOffered, SupplierSampling, SupplierApproved, SupplierRejected, SupplierInStore}

// ValidSupplierStatus reports whether s is a canonical supplier status.
func ValidSupplierStatus(s SupplierStatus) bool {
	for _, v := range SupplierStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// SampleStatus enumerates sample-set approval states.
type SampleStatus string

// Canonical sample approval statuses.
const (
	SampleRequested SampleStatus = "REQUESTED"
	SampleReceived  SampleStatus = "RECEIVED"
	SamplePassed    SampleStatus = "PASSED"
	SampleFailed    SampleStatus = "FAILED"
)

// SampleStatuses lists every valid sample status.
var SampleStatuses = []SampleStatus{SampleRequested, SampleReceived, SamplePassed, SampleFailed}

// ValidSampleStatus reports whether s is a canonical sample status.
func ValidSampleStatus(s SampleStatus) bool {
	for _, v := range SampleStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// Severity captures rule outcomes.
type Severity string

// Rule evaluation severities determine commit behavior and logging.
const (
	// SeverityBlock blocks transaction commit.
	SeverityBlock Severity = "block"
	// SeverityWarn logs a warning but allows commit.
	SeverityWarn Severity = "warn"
	SeverityLog  Severity = "log"
)

// Base contains common fields for timestamped domain records.
type Base struct {
	ID        int64     `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Garment represents a tracked garment design.
type Garment struct {
	Base
	Name           string         `json:"name"`
	Category       string         `json:"category"`
	LifecycleState LifecycleState `json:"lifecycle_state"`
	// BaseDesignID points at the garment this design derives from. Variation
	// edges form a conventional forest; cycles are not rejected by the store.
	BaseDesignID *int64  `json:"base_design_id"`
	ChangeNote   *string `json:"change_note,omitempty"`
}

// Material represents a fabric or component with a unique name.
type Material struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Attribute represents a named design attribute with a unique name.
type Attribute struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Supplier represents a manufacturing partner.
type Supplier struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	ContactEmail *string `json:"contact_email,omitempty"`
}

// GarmentMaterial assigns a percentage of a material to a garment. The
// (garment, material) pair is unique; re-adding replaces the percentage.
type GarmentMaterial struct {
	GarmentID  int64           `json:"garment_id"`
	MaterialID int64           `json:"material_id"`
	Percentage decimal.Decimal `json:"percentage"`
}

// GarmentAttribute assigns an attribute to a garment.
type GarmentAttribute struct {
	GarmentID   int64 `json:"garment_id"`
	AttributeID int64 `json:"attribute_id"`
}

// AttributeIncompatibility is an unordered attribute pair that may never
// co-occur on one garment, stored canonically with the smaller id first.
type AttributeIncompatibility struct {
	AttributeA int64 `json:"attribute_id_a"`
	AttributeB int64 `json:"attribute_id_b"`
}

// NewIncompatibility canonicalises an attribute pair, rejecting self-pairs.
func NewIncompatibility(a, b int64) (AttributeIncompatibility, error) {
	if a == b {
		return AttributeIncompatibility{}, fmt.Errorf("attribute %d cannot be incompatible with itself", a)
	}
	if a > b {
		a, b = b, a
	}
	return AttributeIncompatibility{AttributeA: a, AttributeB: b}, nil
}

// Involves reports whether the pair references the given attribute id.
func (p AttributeIncompatibility) Involves(id int64) bool {
	return p.AttributeA == id || p.AttributeB == id
}

// GarmentSupplier links a supplier to a garment with an engagement status.
type GarmentSupplier struct {
	Base
	GarmentID  int64          `json:"garment_id"`
	SupplierID int64          `json:"supplier_id"`
	Status     SupplierStatus `json:"status"`
}

// SupplierOffer records a price and lead time quoted for a garment-supplier link.
type SupplierOffer struct {
	ID                int64           `json:"id"`
	GarmentSupplierID int64           `json:"garment_supplier_id"`
	Price             decimal.Decimal `json:"price"`
	Currency          string          `json:"currency"`
	LeadTimeDays      int             `json:"lead_time_days"`
	CreatedAt         time.Time       `json:"created_at"`
}

// SampleSet records a physical sample round for a garment-supplier link.
type SampleSet struct {
	ID                int64        `json:"id"`
	GarmentSupplierID int64        `json:"garment_supplier_id"`
	Status            SampleStatus `json:"status"`
	ReceivedAt        *time.Time   `json:"received_at"`
	Notes             *string      `json:"notes,omitempty"`
}

// HundredPercent is the exact composition total required for lifecycle
// promotion to APPROVED or MASS_PRODUCTION.
var HundredPercent = decimal.NewFromInt(100)

// TotalPercentage sums the material percentages of the given rows.
func TotalPercentage(rows []GarmentMaterial) decimal.Decimal {
	total := decimal.Zero
	for _, row := range rows {
		total = total.Add(row.Percentage)
	}
	return total
}

// Change describes a mutation applied to an entity during a transaction.
type Change struct {
	Entity EntityType
	Action Action
	Before any
	After  any
}

// Action indicates the type of modification performed.
type Action string

// Change actions enumerate supported mutations captured for rule evaluation
// and the audit trail.
const (
	// ActionCreate indicates an entity was created.
	ActionCreate Action = "create"
	// ActionUpdate indicates an entity was updated.
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Violation reports a failed rule evaluation.
type Violation struct {
	Rule     string
	Severity Severity
	Message  string
	Entity   EntityType
	EntityID int64
}

// Result aggregates violations from the rules engine.
type Result struct {
	Violations []Violation
}

// Merge appends violations from another result.
func (r *Result) Merge(other Result) {
	if len(other.Violations) == 0 {
		return
	}
	r.Violations = append(r.Violations, other.Violations...)
}

// HasBlocking returns true if the result contains blocking violations.
func (r Result) HasBlocking() bool {
	for _, v := range r.Violations {
		if v.Severity == SeverityBlock {
			return true
		}
	}
	return false
}

// BlockingMessages returns the messages of blocking violations in rule order.
func (r Result) BlockingMessages() []string {
	var out []string
	for _, v := range r.Violations {
		if v.Severity == SeverityBlock {
			out = append(out, v.Message)
		}
	}
	return out
}

// RuleViolationError is returned when blocking violations are present.
type RuleViolationError struct {
	Result Result
}

func (e RuleViolationError) Error() string {
	msgs := e.Result.BlockingMessages()
	if len(msgs) == 0 {
		return "transaction blocked by rules"
	}
	return "transaction blocked: " + strings.Join(msgs, "; ")
}

// SortGarmentsNewestFirst orders garments by creation time descending,
// breaking ties by id descending so listings are stable.
func SortGarmentsNewestFirst(garments []Garment) {
	sort.Slice(garments, func(i, j int) bool {
		if garments[i].CreatedAt.Equal(garments[j].CreatedAt) {
			return garments[i].ID > garments[j].ID
		}
		return garments[i].CreatedAt.After(garments[j].CreatedAt)
	})
}

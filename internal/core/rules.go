package core

import "stitchcore/pkg/domain"

// NewDefaultRulesEngine returns an engine preloaded with the guards every
// deployment relies on: the material composition cap, the lifecycle
// promotion gate, and the attribute incompatibility check.
func NewDefaultRulesEngine() *domain.RulesEngine {
	engine := domain.NewRulesEngine()
	engine.Register(NewMaterialCompositionRule())
	engine.Register(NewLifecycleGateRule())
	engine.Register(NewAttributeCompatibilityRule())
	return engine
}

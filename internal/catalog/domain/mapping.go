// Package domain provides core business rules for the catalog bounded
// context: task mappings, templates, and product bundling rules.
package domain

// Strategy tells the estimate generation engine how a task becomes priced
// output. The set is closed; generation pattern-matches exhaustively.
type Strategy string

const (
	// StrategyDirect emits one line item per task.
	StrategyDirect Strategy = "direct"
	// StrategyBundleToProduct collapses a product group into one line item.
	StrategyBundleToProduct Strategy = "bundle_to_product"
	// StrategyBundleToService collapses a service group into one line item.
	StrategyBundleToService Strategy = "bundle_to_service"
	// StrategyExclude drops the task from generation output entirely.
	StrategyExclude Strategy = "exclude"
)

// StepType classifies what kind of work or input a task represents.
type StepType string

const (
	StepProduct   StepType = "product"
	StepComponent StepType = "component"
	StepLabor     StepType = "labor"
	StepMaterial  StepType = "material"
	StepOverhead  StepType = "overhead"
)

// PricingMethod selects how a product bundle is priced.
type PricingMethod string

const (
	// PricingSumComponents sums rate x quantity across the group's tasks,
	// filtered by the rule's component-inclusion flags.
	PricingSumComponents PricingMethod = "sum_components"
	// PricingTemplateBase uses the matched work order template's base price.
	PricingTemplateBase PricingMethod = "template_base"
	// PricingCustomCalculation defers to a registered custom price function.
	PricingCustomCalculation PricingMethod = "custom_calculation"
)

// ValidStrategy reports whether s is a known mapping strategy.
func ValidStrategy(s Strategy) bool {
	switch s {
	case StrategyDirect, StrategyBundleToProduct, StrategyBundleToService, StrategyExclude:
		return true
	}
	return false
}

// ValidStepType reports whether s is a known step type.
func ValidStepType(s StepType) bool {
	switch s {
	case StepProduct, StepComponent, StepLabor, StepMaterial, StepOverhead:
		return true
	}
	return false
}

// ValidPricingMethod reports whether m is a known pricing method.
func ValidPricingMethod(m PricingMethod) bool {
	switch m {
	case PricingSumComponents, PricingTemplateBase, PricingCustomCalculation:
		return true
	}
	return false
}

// Mapping is the reusable policy view a task template carries.
type Mapping struct {
	Strategy     Strategy
	StepType     StepType
	ProductType  string
	LineItemName string
	LineItemDesc string
}

// Resolved is a task's effective mapping after defaulting.
type Resolved struct {
	Strategy     Strategy
	StepType     StepType
	ProductType  string
	LineItemName string
	LineItemDesc string
}

// Resolve returns a task's effective mapping. Absent a template or mapping
// (nil), strategy defaults to direct and step type to labor, with an empty
// product type. Blank fields on a present mapping default the same way.
func Resolve(m *Mapping) Resolved {
	r := Resolved{
		Strategy: StrategyDirect,
		StepType: StepLabor,
	}
	if m == nil {
		return r
	}
	if m.Strategy != "" {
		r.Strategy = m.Strategy
	}
	if m.StepType != "" {
		r.StepType = m.StepType
	}
	r.ProductType = m.ProductType
	r.LineItemName = m.LineItemName
	r.LineItemDesc = m.LineItemDesc
	return r
}

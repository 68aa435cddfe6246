package domain

import (
	"github.com/alimtiger/Minibini-sub000/platform/apperr"

	"github.com/google/uuid"
)

// BundlingRule matches a product-type label to a line-item naming template
// and a pricing method. Rules are ordered by priority (lower wins), then
// name.
type BundlingRule struct {
	ID                 uuid.UUID
	Name               string
	ProductType        string
	WorkOrderTemplate  *uuid.UUID // restricts the rule to one template when set
	LineItemTemplate   string
	Pricing            PricingMethod
	IncludeMaterials   bool
	IncludeLabor       bool
	IncludeOverhead    bool
	Priority           int
	Active             bool
	TemplateBasePrice  *int64 // cents; resolved from the template at load time
}

// ValidateRule checks a bundling rule at definition time. A template_base
// rule must reference a work order template carrying a base price; this is
// rejected here, at save time, so generation may assume every stored rule
// is usable.
func ValidateRule(r BundlingRule, templateBasePrice *int64) error {
	if r.ProductType == "" {
		return apperr.Validation("bundling rule requires a product type")
	}
	if !ValidPricingMethod(r.Pricing) {
		return apperr.Newf(apperr.KindValidation, "unknown pricing method %q", r.Pricing)
	}
	if r.Pricing == PricingTemplateBase {
		if r.WorkOrderTemplate == nil {
			return apperr.InvariantViolation(
				"template_base pricing requires a work order template")
		}
		if templateBasePrice == nil {
			return apperr.InvariantViolation(
				"template_base pricing requires a template with a base price")
		}
	}
	return nil
}

// MatchRule selects the rule that applies to a product group: the
// highest-priority active rule whose product type matches, preferring rules
// scoped to the group's template. The rules slice must already be ordered
// by priority then name; the first match wins.
func MatchRule(rules []BundlingRule, productType string, templateID *uuid.UUID) (BundlingRule, bool) {
	// Template-scoped rules take precedence over global rules of equal
	// standing, so scan for a scoped match first.
	if templateID != nil {
		for _, r := range rules {
			if !r.Active || r.ProductType != productType {
				continue
			}
			if r.WorkOrderTemplate != nil && *r.WorkOrderTemplate == *templateID {
				return r, true
			}
		}
	}
	for _, r := range rules {
		if !r.Active || r.ProductType != productType {
			continue
		}
		if r.WorkOrderTemplate == nil {
			return r, true
		}
	}
	return BundlingRule{}, false
}

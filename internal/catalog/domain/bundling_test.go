package domain

import (
	"testing"

	"github.com/alimtiger/Minibini-sub000/platform/apperr"

	"github.com/google/uuid"
)

func TestResolve_Defaults(t *testing.T) {
	r := Resolve(nil)
	if r.Strategy != StrategyDirect {
		t.Fatalf("expected default strategy direct, got %s", r.Strategy)
	}
	if r.StepType != StepLabor {
		t.Fatalf("expected default step type labor, got %s", r.StepType)
	}
	if r.ProductType != "" {
		t.Fatalf("expected empty product type, got %q", r.ProductType)
	}
}

func TestResolve_MappingWins(t *testing.T) {
	r := Resolve(&Mapping{
		Strategy:    StrategyBundleToProduct,
		StepType:    StepMaterial,
		ProductType: "cabinet",
	})
	if r.Strategy != StrategyBundleToProduct || r.StepType != StepMaterial || r.ProductType != "cabinet" {
		t.Fatalf("mapping values must take precedence, got %+v", r)
	}
}

func TestResolve_BlankFieldsDefault(t *testing.T) {
	r := Resolve(&Mapping{ProductType: "gate"})
	if r.Strategy != StrategyDirect || r.StepType != StepLabor {
		t.Fatalf("blank mapping fields must default, got %+v", r)
	}
}

func TestValidateRule_TemplateBaseRequiresBasePrice(t *testing.T) {
	templateID := uuid.New()

	err := ValidateRule(BundlingRule{
		Name:              "fixed",
		ProductType:       "shed",
		Pricing:           PricingTemplateBase,
		WorkOrderTemplate: &templateID,
	}, nil)
	if !apperr.Is(err, apperr.KindInvariantViolation) {
		t.Fatalf("expected invariant violation for missing base price, got %v", err)
	}

	err = ValidateRule(BundlingRule{
		Name:        "fixed",
		ProductType: "shed",
		Pricing:     PricingTemplateBase,
	}, nil)
	if !apperr.Is(err, apperr.KindInvariantViolation) {
		t.Fatalf("expected invariant violation for missing template, got %v", err)
	}

	base := int64(100000)
	if err := ValidateRule(BundlingRule{
		Name:              "fixed",
		ProductType:       "shed",
		Pricing:           PricingTemplateBase,
		WorkOrderTemplate: &templateID,
	}, &base); err != nil {
		t.Fatalf("expected valid rule, got %v", err)
	}
}

func TestMatchRule_FirstMatchWinsInPriorityOrder(t *testing.T) {
	// Rules arrive ordered by priority then name, as the repository loads
	// them; the matcher takes the first applicable rule.
	rules := []BundlingRule{
		{Name: "alpha", ProductType: "cabinet", Priority: 1, Active: true},
		{Name: "beta", ProductType: "cabinet", Priority: 2, Active: true},
	}
	got, ok := MatchRule(rules, "cabinet", nil)
	if !ok || got.Name != "alpha" {
		t.Fatalf("expected alpha to win, got %+v ok=%v", got, ok)
	}
}

func TestMatchRule_SkipsInactiveAndWrongType(t *testing.T) {
	rules := []BundlingRule{
		{Name: "off", ProductType: "cabinet", Priority: 1, Active: false},
		{Name: "other", ProductType: "bench", Priority: 1, Active: true},
		{Name: "match", ProductType: "cabinet", Priority: 5, Active: true},
	}
	got, ok := MatchRule(rules, "cabinet", nil)
	if !ok || got.Name != "match" {
		t.Fatalf("expected match rule, got %+v ok=%v", got, ok)
	}
}

func TestMatchRule_TemplateScopedRulePreferred(t *testing.T) {
	templateID := uuid.New()
	otherID := uuid.New()
	rules := []BundlingRule{
		{Name: "global", ProductType: "cabinet", Priority: 1, Active: true},
		{Name: "scoped", ProductType: "cabinet", Priority: 2, Active: true, WorkOrderTemplate: &templateID},
	}

	got, ok := MatchRule(rules, "cabinet", &templateID)
	if !ok || got.Name != "scoped" {
		t.Fatalf("expected template-scoped rule preferred, got %+v", got)
	}

	// A rule scoped to a different template never matches.
	got, ok = MatchRule(rules, "cabinet", &otherID)
	if !ok || got.Name != "global" {
		t.Fatalf("expected fallback to global rule, got %+v", got)
	}

	got, ok = MatchRule(rules, "cabinet", nil)
	if !ok || got.Name != "global" {
		t.Fatalf("expected global rule without template scope, got %+v", got)
	}
}

func TestMatchRule_NoMatch(t *testing.T) {
	if _, ok := MatchRule(nil, "cabinet", nil); ok {
		t.Fatal("expected no match against empty rule set")
	}
}

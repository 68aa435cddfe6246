package domain

import (
	"testing"
	"time"

	catalogdomain "github.com/alimtiger/Minibini-sub000/internal/catalog/domain"
	"github.com/alimtiger/Minibini-sub000/platform/apperr"

	"github.com/google/uuid"
)

func strPtr(s string) *string { return &s }

func taskAt(offset int, name string, rateCents, qtyMilli int64, mapping *catalogdomain.Mapping) TaskView {
	base := time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC)
	return TaskView{
		ID:        uuid.New(),
		Name:      name,
		Unit:      "hour",
		RateCents: rateCents,
		QtyMilli:  qtyMilli,
		CreatedAt: base.Add(time.Duration(offset) * time.Minute),
		Mapping:   mapping,
	}
}

func bundleMapping(step catalogdomain.StepType, productType string) *catalogdomain.Mapping {
	return &catalogdomain.Mapping{
		Strategy:    catalogdomain.StrategyBundleToProduct,
		StepType:    step,
		ProductType: productType,
	}
}

func TestGenerateLines_EmptyWorksheetYieldsNoLines(t *testing.T) {
	lines, err := GenerateLines(nil, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(lines) != 0 {
		t.Fatalf("expected no lines for a taskless worksheet, got %d", len(lines))
	}
}

func TestGenerateLines_DirectTasks(t *testing.T) {
	tasks := []TaskView{
		taskAt(0, "Sand frame", 5000, 2000, nil),
		taskAt(1, "Assemble", 7500, 1500, &catalogdomain.Mapping{
			Strategy:     catalogdomain.StrategyDirect,
			StepType:     catalogdomain.StepLabor,
			LineItemDesc: "Assembly labor",
		}),
	}

	lines, err := GenerateLines(tasks, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}

	// Defaulted mapping: description falls back to the task name.
	if lines[0].Description != "Sand frame" {
		t.Fatalf("expected task name description, got %q", lines[0].Description)
	}
	if lines[0].TotalCents != 10000 {
		t.Fatalf("expected 2.0 x 50.00 = 100.00, got %d", lines[0].TotalCents)
	}
	if lines[1].Description != "Assembly labor" {
		t.Fatalf("expected mapping description, got %q", lines[1].Description)
	}
	if lines[1].TotalCents != 11250 {
		t.Fatalf("expected 1.5 x 75.00 = 112.50, got %d", lines[1].TotalCents)
	}
	if lines[0].LineNo != 1 || lines[1].LineNo != 2 {
		t.Fatalf("expected dense 1-based line numbers, got %d and %d", lines[0].LineNo, lines[1].LineNo)
	}
	if lines[0].TaskID == nil || *lines[0].TaskID != tasks[0].ID {
		t.Fatal("direct line must back-reference its task")
	}
}

func TestGenerateLines_ExcludedTasksNeverAppear(t *testing.T) {
	excluded := taskAt(0, "Internal setup", 9999, 5000, &catalogdomain.Mapping{
		Strategy: catalogdomain.StrategyExclude,
	})
	kept := taskAt(1, "Paint", 4000, 1000, nil)

	lines, err := GenerateLines([]TaskView{excluded, kept}, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(lines))
	}
	if lines[0].Description != "Paint" {
		t.Fatalf("expected only the kept task, got %q", lines[0].Description)
	}
}

func TestGenerateLines_ProductBundleSumComponents(t *testing.T) {
	// Spec arithmetic case: 150x6 + 30x40 + 100x8 = 2900.00 exactly.
	a := taskAt(0, "Build carcass", 15000, 6000, bundleMapping(catalogdomain.StepLabor, "cabinet"))
	b := taskAt(1, "Plywood", 3000, 40000, bundleMapping(catalogdomain.StepMaterial, "cabinet"))
	c := taskAt(2, "Finish", 10000, 8000, bundleMapping(catalogdomain.StepLabor, "cabinet"))
	a.InstanceProductID = strPtr("cab-1")
	b.InstanceProductID = strPtr("cab-1")
	c.InstanceProductID = strPtr("cab-1")

	rules := []catalogdomain.BundlingRule{{
		ID:               uuid.New(),
		Name:             "cabinet-rule",
		ProductType:      "cabinet",
		LineItemTemplate: "Custom {product_type} ({product_id})",
		Pricing:          catalogdomain.PricingSumComponents,
		IncludeMaterials: true,
		IncludeLabor:     true,
		IncludeOverhead:  true,
		Priority:         1,
		Active:           true,
	}}

	lines, err := GenerateLines([]TaskView{a, b, c}, rules, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(lines) != 1 {
		t.Fatalf("expected a single bundled line, got %d", len(lines))
	}
	line := lines[0]
	if line.TotalCents != 290000 {
		t.Fatalf("expected exactly 2900.00, got %d cents", line.TotalCents)
	}
	if line.QtyMilli != QtyOne {
		t.Fatalf("bundled product line must have quantity 1, got %d", line.QtyMilli)
	}
	if line.Description != "Custom cabinet (cab-1)" {
		t.Fatalf("unexpected description %q", line.Description)
	}
}

func TestGenerateLines_SumComponentsInclusionFlags(t *testing.T) {
	labor := taskAt(0, "Weld", 10000, 2000, bundleMapping(catalogdomain.StepLabor, "gate"))
	material := taskAt(1, "Steel", 5000, 4000, bundleMapping(catalogdomain.StepMaterial, "gate"))
	overhead := taskAt(2, "Shop time", 2000, 1000, bundleMapping(catalogdomain.StepOverhead, "gate"))
	labor.InstanceProductID = strPtr("gate-1")
	material.InstanceProductID = strPtr("gate-1")
	overhead.InstanceProductID = strPtr("gate-1")

	rules := []catalogdomain.BundlingRule{{
		Name:         "gate-labor-only",
		ProductType:  "gate",
		Pricing:      catalogdomain.PricingSumComponents,
		IncludeLabor: true,
		Active:       true,
	}}

	lines, err := GenerateLines([]TaskView{labor, material, overhead}, rules, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(lines))
	}
	// Only labor included: 100.00 x 2 = 200.00.
	if lines[0].TotalCents != 20000 {
		t.Fatalf("expected 200.00, got %d", lines[0].TotalCents)
	}
}

func TestGenerateLines_TasksWithoutInstanceMappingAreSingletons(t *testing.T) {
	a := taskAt(0, "Bench", 10000, 1000, bundleMapping(catalogdomain.StepLabor, "bench"))
	b := taskAt(1, "Bench", 10000, 1000, bundleMapping(catalogdomain.StepLabor, "bench"))

	lines, err := GenerateLines([]TaskView{a, b}, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(lines) != 2 {
		t.Fatalf("expected two singleton bundles, got %d lines", len(lines))
	}
}

func TestGenerateLines_TemplateBasePricing(t *testing.T) {
	templateID := uuid.New()
	base := int64(150000)
	task := taskAt(0, "Install", 5000, 2000, bundleMapping(catalogdomain.StepLabor, "shed"))
	task.InstanceProductID = strPtr("shed-1")
	task.WorkOrderTemplateID = &templateID

	rules := []catalogdomain.BundlingRule{{
		Name:              "shed-fixed",
		ProductType:       "shed",
		WorkOrderTemplate: &templateID,
		Pricing:           catalogdomain.PricingTemplateBase,
		TemplateBasePrice: &base,
		Active:            true,
	}}

	lines, err := GenerateLines([]TaskView{task}, rules, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lines[0].TotalCents != 150000 {
		t.Fatalf("expected template base price 1500.00, got %d", lines[0].TotalCents)
	}
}

func TestGenerateLines_CustomCalculation(t *testing.T) {
	task := taskAt(0, "Carve", 10000, 3000, bundleMapping(catalogdomain.StepLabor, "sign"))
	task.InstanceProductID = strPtr("sign-1")

	rules := []catalogdomain.BundlingRule{{
		Name:        "sign-custom",
		ProductType: "sign",
		Pricing:     catalogdomain.PricingCustomCalculation,
		Active:      true,
	}}

	// Without a registered function the rule is unusable.
	_, err := GenerateLines([]TaskView{task}, rules, nil)
	if !apperr.Is(err, apperr.KindInvariantViolation) {
		t.Fatalf("expected invariant violation without custom func, got %v", err)
	}

	custom := map[string]CustomPriceFunc{
		"sign-custom": func(group TaskGroup) (int64, error) {
			return 42000, nil
		},
	}
	lines, err := GenerateLines([]TaskView{task}, rules, custom)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lines[0].TotalCents != 42000 {
		t.Fatalf("expected custom price 420.00, got %d", lines[0].TotalCents)
	}
}

func TestGenerateLines_ServiceBundleSumsQuantities(t *testing.T) {
	mapping := &catalogdomain.Mapping{
		Strategy:    catalogdomain.StrategyBundleToService,
		StepType:    catalogdomain.StepLabor,
		ProductType: "site-visit",
	}
	d := taskAt(0, "Travel out", 8000, 2000, mapping)
	e := taskAt(1, "Travel back", 8000, 3000, mapping)

	lines, err := GenerateLines([]TaskView{d, e}, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(lines) != 1 {
		t.Fatalf("expected one service bundle, got %d", len(lines))
	}
	line := lines[0]
	if line.QtyMilli != 5000 {
		t.Fatalf("expected summed quantity 5.0, got %d", line.QtyMilli)
	}
	if line.TotalCents != 40000 {
		t.Fatalf("expected 2x80 + 3x80 = 400.00, got %d", line.TotalCents)
	}
	if line.Description != "Travel out, Travel back" {
		t.Fatalf("expected constituent task names, got %q", line.Description)
	}
}

func TestGenerateLines_StableEmissionOrder(t *testing.T) {
	productMapping := bundleMapping(catalogdomain.StepLabor, "table")
	serviceMapping := &catalogdomain.Mapping{
		Strategy:    catalogdomain.StrategyBundleToService,
		StepType:    catalogdomain.StepLabor,
		ProductType: "delivery",
	}

	// Interleave creation order across strategies.
	service := taskAt(0, "Deliver", 6000, 1000, serviceMapping)
	product := taskAt(1, "Build table", 20000, 4000, productMapping)
	direct := taskAt(2, "Consult", 12000, 1000, nil)
	product.InstanceProductID = strPtr("table-1")

	lines, err := GenerateLines([]TaskView{service, product, direct}, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if lines[0].Description != "Consult" {
		t.Fatalf("direct items must come first, got %q", lines[0].Description)
	}
	if lines[1].Description != "table-1" {
		t.Fatalf("product bundles second, got %q", lines[1].Description)
	}
	if lines[2].Description != "Deliver" {
		t.Fatalf("service bundles last, got %q", lines[2].Description)
	}
	for i, line := range lines {
		if line.LineNo != i+1 {
			t.Fatalf("expected dense line numbers, got %d at index %d", line.LineNo, i)
		}
	}
}

func TestExtendedAmount_Exactness(t *testing.T) {
	if got := ExtendedAmount(6000, 15000); got != 90000 {
		t.Fatalf("6 x 150.00 = 900.00, got %d", got)
	}
	if got := ExtendedAmount(1500, 333); got != 500 {
		t.Fatalf("1.5 x 3.33 = 5.00 (half-up), got %d", got)
	}
	if got := ExtendedAmount(0, 15000); got != 0 {
		t.Fatalf("zero quantity must price to zero, got %d", got)
	}
}

package domain

import (
	"sort"
	"strings"
	"time"

	catalogdomain "github.com/alimtiger/Minibini-sub000/internal/catalog/domain"
	"github.com/alimtiger/Minibini-sub000/platform/apperr"

	"github.com/google/uuid"
)

// unitEach is the unit placed on bundled product lines, which always carry
// quantity 1.
const unitEach = "ea"

// QtyOne is one whole unit in quantity thousandths.
const QtyOne int64 = 1000

// TaskView is a worksheet task as the generation engine sees it: the task
// row joined with its template's mapping and its instance mapping.
type TaskView struct {
	ID        uuid.UUID
	Name      string
	Unit      string
	RateCents int64
	QtyMilli  int64
	CreatedAt time.Time

	// Mapping is the template's task mapping; nil when the task has no
	// template or the template has no mapping.
	Mapping *catalogdomain.Mapping

	// InstanceProductID groups bundled tasks; nil means singleton.
	InstanceProductID *string
	// InstanceNumber distinguishes repeated products ("chair #1" vs "#2").
	InstanceNumber *int

	// WorkOrderTemplateID scopes bundling rule matching when the task
	// descends from a work order template.
	WorkOrderTemplateID *uuid.UUID
}

// ResolvedTask is a task with its effective mapping resolved.
type ResolvedTask struct {
	TaskView
	Resolved catalogdomain.Resolved
}

// TaskGroup is a set of tasks collapsing into one bundled line item.
type TaskGroup struct {
	Key                 string
	ProductType         string
	WorkOrderTemplateID *uuid.UUID
	Tasks               []ResolvedTask
}

// CustomPriceFunc prices a task group for a bundling rule using
// custom_calculation. There is no default formula; rules using custom
// pricing must have a function registered under the rule's name.
type CustomPriceFunc func(group TaskGroup) (int64, error)

// LineDraft is one generated estimate line item before persistence. LineNo
// is dense and 1-based in emission order.
type LineDraft struct {
	LineNo         int
	Description    string
	QtyMilli       int64
	Unit           string
	UnitPriceCents int64
	TotalCents     int64
	// TaskID back-references the originating task on direct lines.
	TaskID *uuid.UUID
}

// GenerateLines converts a worksheet's tasks into ordered, priced line
// items: direct items first in task creation order, then product bundles,
// then service bundles, each block ordered by first-encountered task.
// Excluded tasks never contribute, directly or through a bundle.
func GenerateLines(tasks []TaskView, rules []catalogdomain.BundlingRule, custom map[string]CustomPriceFunc) ([]LineDraft, error) {
	ordered := make([]TaskView, len(tasks))
	copy(ordered, tasks)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].CreatedAt.Before(ordered[j].CreatedAt)
	})

	var (
		direct        []ResolvedTask
		productGroups []*TaskGroup
		serviceGroups []*TaskGroup
	)
	productByKey := make(map[string]*TaskGroup)
	serviceByKey := make(map[string]*TaskGroup)

	for _, t := range ordered {
		rt := ResolvedTask{TaskView: t, Resolved: catalogdomain.Resolve(t.Mapping)}

		switch rt.Resolved.Strategy {
		case catalogdomain.StrategyExclude:
			continue
		case catalogdomain.StrategyDirect:
			direct = append(direct, rt)
		case catalogdomain.StrategyBundleToProduct:
			key := productGroupKey(rt)
			group, ok := productByKey[key]
			if !ok {
				group = &TaskGroup{
					Key:                 key,
					ProductType:         rt.Resolved.ProductType,
					WorkOrderTemplateID: rt.WorkOrderTemplateID,
				}
				productByKey[key] = group
				productGroups = append(productGroups, group)
			}
			group.Tasks = append(group.Tasks, rt)
		case catalogdomain.StrategyBundleToService:
			key := serviceGroupKey(rt)
			group, ok := serviceByKey[key]
			if !ok {
				group = &TaskGroup{
					Key:         key,
					ProductType: rt.Resolved.ProductType,
				}
				serviceByKey[key] = group
				serviceGroups = append(serviceGroups, group)
			}
			group.Tasks = append(group.Tasks, rt)
		default:
			return nil, apperr.Newf(apperr.KindValidation,
				"task %s has unknown mapping strategy %q", rt.ID, rt.Resolved.Strategy)
		}
	}

	lines := make([]LineDraft, 0, len(direct)+len(productGroups)+len(serviceGroups))

	for _, rt := range direct {
		taskID := rt.ID
		desc := rt.Resolved.LineItemDesc
		if desc == "" {
			desc = rt.Name
		}
		lines = append(lines, LineDraft{
			Description:    desc,
			QtyMilli:       rt.QtyMilli,
			Unit:           rt.Unit,
			UnitPriceCents: rt.RateCents,
			TotalCents:     ExtendedAmount(rt.QtyMilli, rt.RateCents),
			TaskID:         &taskID,
		})
	}

	for _, group := range productGroups {
		line, err := priceProductGroup(*group, rules, custom)
		if err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}

	for _, group := range serviceGroups {
		lines = append(lines, priceServiceGroup(*group))
	}

	for i := range lines {
		lines[i].LineNo = i + 1
	}
	return lines, nil
}

// productGroupKey groups bundled tasks by their instance mapping's product
// identifier; tasks without one form singleton groups keyed by task
// identity.
func productGroupKey(rt ResolvedTask) string {
	if rt.InstanceProductID != nil && *rt.InstanceProductID != "" {
		return "product:" + *rt.InstanceProductID
	}
	return "task:" + rt.ID.String()
}

// serviceGroupKey groups service tasks by product identifier when one is
// present, falling back to the mapping's product/service type label.
func serviceGroupKey(rt ResolvedTask) string {
	if rt.InstanceProductID != nil && *rt.InstanceProductID != "" {
		return "product:" + *rt.InstanceProductID
	}
	if rt.Resolved.ProductType != "" {
		return "type:" + rt.Resolved.ProductType
	}
	return "task:" + rt.ID.String()
}

func priceProductGroup(group TaskGroup, rules []catalogdomain.BundlingRule, custom map[string]CustomPriceFunc) (LineDraft, error) {
	rule, matched := MatchBundlingRule(rules, group)
	if !matched {
		// No governing rule: price the bundle as the plain sum of its
		// components with no inclusion filtering.
		var total int64
		for _, rt := range group.Tasks {
			total += ExtendedAmount(rt.QtyMilli, rt.RateCents)
		}
		return LineDraft{
			Description:    groupLabel(group),
			QtyMilli:       QtyOne,
			Unit:           unitEach,
			UnitPriceCents: total,
			TotalCents:     total,
		}, nil
	}

	var total int64
	switch rule.Pricing {
	case catalogdomain.PricingSumComponents:
		for _, rt := range group.Tasks {
			if includeStep(rule, rt.Resolved.StepType) {
				total += ExtendedAmount(rt.QtyMilli, rt.RateCents)
			}
		}
	case catalogdomain.PricingTemplateBase:
		if rule.TemplateBasePrice == nil {
			return LineDraft{}, apperr.Newf(apperr.KindInvariantViolation,
				"bundling rule %q uses template_base pricing without a base-priced template", rule.Name)
		}
		total = *rule.TemplateBasePrice
	case catalogdomain.PricingCustomCalculation:
		fn, ok := custom[rule.Name]
		if !ok {
			return LineDraft{}, apperr.Newf(apperr.KindInvariantViolation,
				"bundling rule %q uses custom_calculation but no price function is registered", rule.Name)
		}
		priced, err := fn(group)
		if err != nil {
			return LineDraft{}, err
		}
		total = priced
	default:
		return LineDraft{}, apperr.Newf(apperr.KindValidation,
			"bundling rule %q has unknown pricing method %q", rule.Name, rule.Pricing)
	}

	return LineDraft{
		Description:    RenderLineItemName(rule.LineItemTemplate, group),
		QtyMilli:       QtyOne,
		Unit:           unitEach,
		UnitPriceCents: total,
		TotalCents:     total,
	}, nil
}

func priceServiceGroup(group TaskGroup) LineDraft {
	var (
		qty   int64
		total int64
		names []string
	)
	unit := ""
	for _, rt := range group.Tasks {
		qty += rt.QtyMilli
		total += ExtendedAmount(rt.QtyMilli, rt.RateCents)
		names = append(names, rt.Name)
		if unit == "" {
			unit = rt.Unit
		}
	}

	return LineDraft{
		Description:    strings.Join(names, ", "),
		QtyMilli:       qty,
		Unit:           unit,
		UnitPriceCents: UnitPriceFor(total, qty),
		TotalCents:     total,
	}
}

// MatchBundlingRule selects the bundling rule governing a product group.
func MatchBundlingRule(rules []catalogdomain.BundlingRule, group TaskGroup) (catalogdomain.BundlingRule, bool) {
	return catalogdomain.MatchRule(rules, group.ProductType, group.WorkOrderTemplateID)
}

// includeStep applies a rule's component-inclusion flags to a task's step
// type. Product and component steps are the bundled product itself and are
// always included.
func includeStep(rule catalogdomain.BundlingRule, step catalogdomain.StepType) bool {
	switch step {
	case catalogdomain.StepMaterial:
		return rule.IncludeMaterials
	case catalogdomain.StepLabor:
		return rule.IncludeLabor
	case catalogdomain.StepOverhead:
		return rule.IncludeOverhead
	}
	return true
}

// RenderLineItemName expands a bundling rule's naming template for a group.
// Supported placeholders: {product_type} and {product_id}.
func RenderLineItemName(template string, group TaskGroup) string {
	if template == "" {
		return groupLabel(group)
	}
	name := strings.ReplaceAll(template, "{product_type}", group.ProductType)
	name = strings.ReplaceAll(name, "{product_id}", groupProductID(group))
	return name
}

func groupLabel(group TaskGroup) string {
	if id := groupProductID(group); id != "" {
		return id
	}
	if group.ProductType != "" {
		return group.ProductType
	}
	if len(group.Tasks) > 0 {
		return group.Tasks[0].Name
	}
	return group.Key
}

func groupProductID(group TaskGroup) string {
	for _, rt := range group.Tasks {
		if rt.InstanceProductID != nil && *rt.InstanceProductID != "" {
			return *rt.InstanceProductID
		}
	}
	return ""
}

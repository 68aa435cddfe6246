package service

import (
	"context"
	"time"

	"github.com/alimtiger/Minibini-sub000/internal/catalog/domain"
	"github.com/alimtiger/Minibini-sub000/internal/catalog/repository"
	"github.com/alimtiger/Minibini-sub000/internal/catalog/transport"
	"github.com/alimtiger/Minibini-sub000/platform/logger"

	"github.com/google/uuid"
)

// Service contains catalog business logic: task mappings, bundling rules,
// and templates.
type Service struct {
	repo *repository.Repository
	log  *logger.Logger
}

// New creates a new catalog service.
func New(repo *repository.Repository, log *logger.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// CreateMapping defines a new task mapping. Blank strategy and step type
// stay blank in storage; defaults apply when the mapping is resolved.
func (s *Service) CreateMapping(ctx context.Context, req transport.CreateMappingRequest) (*repository.TaskMapping, error) {
	now := time.Now()
	m := &repository.TaskMapping{
		ID:           uuid.New(),
		Name:         req.Name,
		StepType:     req.StepType,
		Strategy:     req.Strategy,
		ProductType:  req.ProductType,
		LineItemName: req.LineItemName,
		LineItemDesc: req.LineItemDesc,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.CreateMapping(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// GetMapping retrieves a mapping by ID.
func (s *Service) GetMapping(ctx context.Context, id uuid.UUID) (*repository.TaskMapping, error) {
	return s.repo.GetMapping(ctx, id)
}

// ListMappings retrieves all mappings.
func (s *Service) ListMappings(ctx context.Context) ([]repository.TaskMapping, error) {
	return s.repo.ListMappings(ctx)
}

// UpdateMapping edits a mapping. Estimates already generated keep their
// lines; mapping changes only affect future generation runs.
func (s *Service) UpdateMapping(ctx context.Context, id uuid.UUID, req transport.UpdateMappingRequest) (*repository.TaskMapping, error) {
	m, err := s.repo.GetMapping(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		m.Name = *req.Name
	}
	if req.StepType != nil {
		m.StepType = *req.StepType
	}
	if req.Strategy != nil {
		m.Strategy = *req.Strategy
	}
	if req.ProductType != nil {
		m.ProductType = *req.ProductType
	}
	if req.LineItemName != nil {
		m.LineItemName = *req.LineItemName
	}
	if req.LineItemDesc != nil {
		m.LineItemDesc = *req.LineItemDesc
	}
	m.UpdatedAt = time.Now()
	if err := s.repo.UpdateMapping(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// DeleteMapping removes a mapping.
func (s *Service) DeleteMapping(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteMapping(ctx, id)
}

// CreateRule defines a new bundling rule. Rules with template_base pricing
// are checked against their template's base price at save time.
func (s *Service) CreateRule(ctx context.Context, req transport.CreateRuleRequest) (*repository.BundlingRule, error) {
	now := time.Now()
	rule := &repository.BundlingRule{
		ID:                  uuid.New(),
		Name:                req.Name,
		ProductType:         req.ProductType,
		WorkOrderTemplateID: req.WorkOrderTemplateID,
		LineItemTemplate:    req.LineItemTemplate,
		PricingMethod:       req.PricingMethod,
		IncludeMaterials:    boolOr(req.IncludeMaterials, true),
		IncludeLabor:        boolOr(req.IncludeLabor, true),
		IncludeOverhead:     boolOr(req.IncludeOverhead, true),
		Priority:            req.Priority,
		Active:              boolOr(req.Active, true),
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if err := s.validateRule(ctx, rule); err != nil {
		return nil, err
	}
	if err := s.repo.CreateRule(ctx, rule); err != nil {
		return nil, err
	}
	s.log.Info("bundling rule created", "rule_id", rule.ID, "name", rule.Name)
	return rule, nil
}

// GetRule retrieves a bundling rule by ID.
func (s *Service) GetRule(ctx context.Context, id uuid.UUID) (*repository.BundlingRule, error) {
	return s.repo.GetRule(ctx, id)
}

// ListRules retrieves all bundling rules in evaluation order.
func (s *Service) ListRules(ctx context.Context) ([]repository.BundlingRule, error) {
	return s.repo.ListRules(ctx)
}

// UpdateRule edits a bundling rule, re-running save-time validation.
func (s *Service) UpdateRule(ctx context.Context, id uuid.UUID, req transport.UpdateRuleRequest) (*repository.BundlingRule, error) {
	rule, err := s.repo.GetRule(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		rule.Name = *req.Name
	}
	if req.ProductType != nil {
		rule.ProductType = *req.ProductType
	}
	if req.WorkOrderTemplateID != nil {
		rule.WorkOrderTemplateID = req.WorkOrderTemplateID
	}
	if req.LineItemTemplate != nil {
		rule.LineItemTemplate = *req.LineItemTemplate
	}
	if req.PricingMethod != nil {
		rule.PricingMethod = *req.PricingMethod
	}
	if req.IncludeMaterials != nil {
		rule.IncludeMaterials = *req.IncludeMaterials
	}
	if req.IncludeLabor != nil {
		rule.IncludeLabor = *req.IncludeLabor
	}
	if req.IncludeOverhead != nil {
		rule.IncludeOverhead = *req.IncludeOverhead
	}
	if req.Priority != nil {
		rule.Priority = *req.Priority
	}
	if req.Active != nil {
		rule.Active = *req.Active
	}
	rule.UpdatedAt = time.Now()

	if err := s.validateRule(ctx, rule); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateRule(ctx, rule); err != nil {
		return nil, err
	}
	return rule, nil
}

// DeleteRule removes a bundling rule.
func (s *Service) DeleteRule(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteRule(ctx, id)
}

func (s *Service) validateRule(ctx context.Context, rule *repository.BundlingRule) error {
	var basePrice *int64
	if rule.WorkOrderTemplateID != nil {
		tmpl, err := s.repo.GetTemplate(ctx, *rule.WorkOrderTemplateID)
		if err != nil {
			return err
		}
		basePrice = tmpl.BasePriceCents
	}
	return domain.ValidateRule(toDomainRule(rule, basePrice), basePrice)
}

func toDomainRule(r *repository.BundlingRule, basePrice *int64) domain.BundlingRule {
	return domain.BundlingRule{
		ID:                r.ID,
		Name:              r.Name,
		ProductType:       r.ProductType,
		WorkOrderTemplate: r.WorkOrderTemplateID,
		LineItemTemplate:  r.LineItemTemplate,
		Pricing:           domain.PricingMethod(r.PricingMethod),
		IncludeMaterials:  r.IncludeMaterials,
		IncludeLabor:      r.IncludeLabor,
		IncludeOverhead:   r.IncludeOverhead,
		Priority:          r.Priority,
		Active:            r.Active,
		TemplateBasePrice: basePrice,
	}
}

// ActiveRules returns the active bundling rules in evaluation order with
// template base prices resolved, ready for estimate generation.
func (s *Service) ActiveRules(ctx context.Context) ([]domain.BundlingRule, error) {
	rows, err := s.repo.ListActiveRulesForGeneration(ctx)
	if err != nil {
		return nil, err
	}
	rules := make([]domain.BundlingRule, 0, len(rows))
	for i := range rows {
		rules = append(rules, toDomainRule(&rows[i].BundlingRule, rows[i].TemplateBasePrice))
	}
	return rules, nil
}

// MappingView resolves a stored mapping row into the policy view tasks
// carry into generation. A nil row maps to nil, which resolves to the
// unmapped defaults downstream.
func MappingView(m *repository.TaskMapping) *domain.Mapping {
	if m == nil {
		return nil
	}
	return &domain.Mapping{
		Strategy:     domain.Strategy(m.Strategy),
		StepType:     domain.StepType(m.StepType),
		ProductType:  m.ProductType,
		LineItemName: m.LineItemName,
		LineItemDesc: m.LineItemDesc,
	}
}

// CreateTemplate defines a new work order template.
func (s *Service) CreateTemplate(ctx context.Context, req transport.CreateTemplateRequest) (*repository.WorkOrderTemplate, error) {
	now := time.Now()
	t := &repository.WorkOrderTemplate{
		ID:             uuid.New(),
		Name:           req.Name,
		Description:    req.Description,
		BasePriceCents: req.BasePriceCents,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.repo.CreateTemplate(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// GetTemplate retrieves a work order template by ID.
func (s *Service) GetTemplate(ctx context.Context, id uuid.UUID) (*repository.WorkOrderTemplate, error) {
	return s.repo.GetTemplate(ctx, id)
}

// ListTemplates retrieves all work order templates.
func (s *Service) ListTemplates(ctx context.Context) ([]repository.WorkOrderTemplate, error) {
	return s.repo.ListTemplates(ctx)
}

// UpdateTemplate edits a work order template.
func (s *Service) UpdateTemplate(ctx context.Context, id uuid.UUID, req transport.UpdateTemplateRequest) (*repository.WorkOrderTemplate, error) {
	t, err := s.repo.GetTemplate(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		t.Name = *req.Name
	}
	if req.Description != nil {
		t.Description = *req.Description
	}
	if req.BasePriceCents != nil {
		t.BasePriceCents = req.BasePriceCents
	}
	t.UpdatedAt = time.Now()
	if err := s.repo.UpdateTemplate(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// DeleteTemplate removes a work order template.
func (s *Service) DeleteTemplate(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteTemplate(ctx, id)
}

// CreateTaskTemplate defines a new task template.
func (s *Service) CreateTaskTemplate(ctx context.Context, req transport.CreateTaskTemplateRequest) (*repository.TaskTemplate, error) {
	if req.MappingID != nil {
		if _, err := s.repo.GetMapping(ctx, *req.MappingID); err != nil {
			return nil, err
		}
	}
	if req.ParentID != nil {
		if _, err := s.repo.GetTaskTemplate(ctx, *req.ParentID); err != nil {
			return nil, err
		}
	}
	t := &repository.TaskTemplate{
		ID:        uuid.New(),
		ParentID:  req.ParentID,
		Name:      req.Name,
		Unit:      req.Unit,
		RateCents: req.RateCents,
		MappingID: req.MappingID,
		CreatedAt: time.Now(),
	}
	if err := s.repo.CreateTaskTemplate(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// ListTaskTemplates retrieves all task templates.
func (s *Service) ListTaskTemplates(ctx context.Context) ([]repository.TaskTemplate, error) {
	return s.repo.ListTaskTemplates(ctx)
}

// AddTemplateTask links a task template into a work order template.
func (s *Service) AddTemplateTask(ctx context.Context, templateID uuid.UUID, req transport.AddTemplateTaskRequest) (*repository.TemplateTask, error) {
	if _, err := s.repo.GetTemplate(ctx, templateID); err != nil {
		return nil, err
	}
	if _, err := s.repo.GetTaskTemplate(ctx, req.TaskTemplateID); err != nil {
		return nil, err
	}
	link := &repository.TemplateTask{
		ID:             uuid.New(),
		TemplateID:     templateID,
		TaskTemplateID: req.TaskTemplateID,
		EstQtyMilli:    req.EstQtyMilli,
		SortOrder:      req.SortOrder,
	}
	if err := s.repo.AddTemplateTask(ctx, link); err != nil {
		return nil, err
	}
	return link, nil
}

// ListTemplateTasks retrieves a template's task links.
func (s *Service) ListTemplateTasks(ctx context.Context, templateID uuid.UUID) ([]repository.TemplateTask, error) {
	if _, err := s.repo.GetTemplate(ctx, templateID); err != nil {
		return nil, err
	}
	return s.repo.ListTemplateTasks(ctx, templateID)
}

// RemoveTemplateTask unlinks a task from a work order template.
func (s *Service) RemoveTemplateTask(ctx context.Context, templateID, linkID uuid.UUID) error {
	return s.repo.RemoveTemplateTask(ctx, templateID, linkID)
}

func boolOr(v *bool, fallback bool) bool {
	if v != nil {
		return *v
	}
	return fallback
}

package transport

import (
	"time"

	"github.com/alimtiger/Minibini-sub000/internal/catalog/repository"

	"github.com/google/uuid"
)

type CreateMappingRequest struct {
	Name         string `json:"name" validate:"required,max=200"`
	StepType     string `json:"stepType" validate:"omitempty,oneof=product component labor material overhead"`
	Strategy     string `json:"strategy" validate:"omitempty,oneof=direct bundle_to_product bundle_to_service exclude"`
	ProductType  string `json:"productType" validate:"max=120"`
	LineItemName string `json:"lineItemName" validate:"max=200"`
	LineItemDesc string `json:"lineItemDesc" validate:"max=2000"`
}

type UpdateMappingRequest struct {
	Name         *string `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	StepType     *string `json:"stepType,omitempty" validate:"omitempty,oneof=product component labor material overhead"`
	Strategy     *string `json:"strategy,omitempty" validate:"omitempty,oneof=direct bundle_to_product bundle_to_service exclude"`
	ProductType  *string `json:"productType,omitempty" validate:"omitempty,max=120"`
	LineItemName *string `json:"lineItemName,omitempty" validate:"omitempty,max=200"`
	LineItemDesc *string `json:"lineItemDesc,omitempty" validate:"omitempty,max=2000"`
}

type MappingResponse struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	StepType     string    `json:"stepType"`
	Strategy     string    `json:"strategy"`
	ProductType  string    `json:"productType,omitempty"`
	LineItemName string    `json:"lineItemName,omitempty"`
	LineItemDesc string    `json:"lineItemDesc,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func ToMappingResponse(m *repository.TaskMapping) MappingResponse {
	return MappingResponse{
		ID:           m.ID,
		Name:         m.Name,
		StepType:     m.StepType,
		Strategy:     m.Strategy,
		ProductType:  m.ProductType,
		LineItemName: m.LineItemName,
		LineItemDesc: m.LineItemDesc,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func ToMappingResponses(mappings []repository.TaskMapping) []MappingResponse {
	out := make([]MappingResponse, 0, len(mappings))
	for i := range mappings {
		out = append(out, ToMappingResponse(&mappings[i]))
	}
	return out
}

type CreateRuleRequest struct {
	Name                string     `json:"name" validate:"required,max=200"`
	ProductType         string     `json:"productType" validate:"required,max=120"`
	WorkOrderTemplateID *uuid.UUID `json:"workOrderTemplateId,omitempty"`
	LineItemTemplate    string     `json:"lineItemTemplate" validate:"max=500"`
	PricingMethod       string     `json:"pricingMethod" validate:"required,oneof=sum_components template_base custom_calculation"`
	IncludeMaterials    *bool      `json:"includeMaterials,omitempty"`
	IncludeLabor        *bool      `json:"includeLabor,omitempty"`
	IncludeOverhead     *bool      `json:"includeOverhead,omitempty"`
	Priority            int        `json:"priority" validate:"gte=0"`
	Active              *bool      `json:"active,omitempty"`
}

type UpdateRuleRequest struct {
	Name                *string    `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	ProductType         *string    `json:"productType,omitempty" validate:"omitempty,min=1,max=120"`
	WorkOrderTemplateID *uuid.UUID `json:"workOrderTemplateId,omitempty"`
	LineItemTemplate    *string    `json:"lineItemTemplate,omitempty" validate:"omitempty,max=500"`
	PricingMethod       *string    `json:"pricingMethod,omitempty" validate:"omitempty,oneof=sum_components template_base custom_calculation"`
	IncludeMaterials    *bool      `json:"includeMaterials,omitempty"`
	IncludeLabor        *bool      `json:"includeLabor,omitempty"`
	IncludeOverhead     *bool      `json:"includeOverhead,omitempty"`
	Priority            *int       `json:"priority,omitempty" validate:"omitempty,gte=0"`
	Active              *bool      `json:"active,omitempty"`
}

type RuleResponse struct {
	ID                  uuid.UUID  `json:"id"`
	Name                string     `json:"name"`
	ProductType         string     `json:"productType"`
	WorkOrderTemplateID *uuid.UUID `json:"workOrderTemplateId,omitempty"`
	LineItemTemplate    string     `json:"lineItemTemplate,omitempty"`
	PricingMethod       string     `json:"pricingMethod"`
	IncludeMaterials    bool       `json:"includeMaterials"`
	IncludeLabor        bool       `json:"includeLabor"`
	IncludeOverhead     bool       `json:"includeOverhead"`
	Priority            int        `json:"priority"`
	Active              bool       `json:"active"`
	CreatedAt           time.Time  `json:"createdAt"`
	UpdatedAt           time.Time  `json:"updatedAt"`
}

func ToRuleResponse(r *repository.BundlingRule) RuleResponse {
	return RuleResponse{
		ID:                  r.ID,
		Name:                r.Name,
		ProductType:         r.ProductType,
		WorkOrderTemplateID: r.WorkOrderTemplateID,
		LineItemTemplate:    r.LineItemTemplate,
		PricingMethod:       r.PricingMethod,
		IncludeMaterials:    r.IncludeMaterials,
		IncludeLabor:        r.IncludeLabor,
		IncludeOverhead:     r.IncludeOverhead,
		Priority:            r.Priority,
		Active:              r.Active,
		CreatedAt:           r.CreatedAt,
		UpdatedAt:           r.UpdatedAt,
	}
}

func ToRuleResponses(rules []repository.BundlingRule) []RuleResponse {
	out := make([]RuleResponse, 0, len(rules))
	for i := range rules {
		out = append(out, ToRuleResponse(&rules[i]))
	}
	return out
}

type CreateTemplateRequest struct {
	Name           string `json:"name" validate:"required,max=200"`
	Description    string `json:"description" validate:"max=2000"`
	BasePriceCents *int64 `json:"basePriceCents,omitempty" validate:"omitempty,gte=0"`
}

type UpdateTemplateRequest struct {
	Name           *string `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Description    *string `json:"description,omitempty" validate:"omitempty,max=2000"`
	BasePriceCents *int64  `json:"basePriceCents,omitempty" validate:"omitempty,gte=0"`
}

type TemplateResponse struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	Description    string    `json:"description,omitempty"`
	BasePriceCents *int64    `json:"basePriceCents,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

func ToTemplateResponse(t *repository.WorkOrderTemplate) TemplateResponse {
	return TemplateResponse{
		ID:             t.ID,
		Name:           t.Name,
		Description:    t.Description,
		BasePriceCents: t.BasePriceCents,
		CreatedAt:      t.CreatedAt,
		UpdatedAt:      t.UpdatedAt,
	}
}

func ToTemplateResponses(templates []repository.WorkOrderTemplate) []TemplateResponse {
	out := make([]TemplateResponse, 0, len(templates))
	for i := range templates {
		out = append(out, ToTemplateResponse(&templates[i]))
	}
	return out
}

type CreateTaskTemplateRequest struct {
	ParentID  *uuid.UUID `json:"parentId,omitempty"`
	Name      string     `json:"name" validate:"required,max=200"`
	Unit      string     `json:"unit" validate:"required,max=20"`
	RateCents int64      `json:"rateCents" validate:"gte=0"`
	MappingID *uuid.UUID `json:"mappingId,omitempty"`
}

type TaskTemplateResponse struct {
	ID        uuid.UUID  `json:"id"`
	ParentID  *uuid.UUID `json:"parentId,omitempty"`
	Name      string     `json:"name"`
	Unit      string     `json:"unit"`
	RateCents int64      `json:"rateCents"`
	MappingID *uuid.UUID `json:"mappingId,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

func ToTaskTemplateResponse(t *repository.TaskTemplate) TaskTemplateResponse {
	return TaskTemplateResponse{
		ID:        t.ID,
		ParentID:  t.ParentID,
		Name:      t.Name,
		Unit:      t.Unit,
		RateCents: t.RateCents,
		MappingID: t.MappingID,
		CreatedAt: t.CreatedAt,
	}
}

func ToTaskTemplateResponses(templates []repository.TaskTemplate) []TaskTemplateResponse {
	out := make([]TaskTemplateResponse, 0, len(templates))
	for i := range templates {
		out = append(out, ToTaskTemplateResponse(&templates[i]))
	}
	return out
}

type AddTemplateTaskRequest struct {
	TaskTemplateID uuid.UUID `json:"taskTemplateId" validate:"required"`
	EstQtyMilli    int64     `json:"estQtyMilli" validate:"gt=0"`
	SortOrder      int       `json:"sortOrder" validate:"gte=0"`
}

type TemplateTaskResponse struct {
	ID             uuid.UUID `json:"id"`
	TaskTemplateID uuid.UUID `json:"taskTemplateId"`
	EstQtyMilli    int64     `json:"estQtyMilli"`
	SortOrder      int       `json:"sortOrder"`
}

func ToTemplateTaskResponses(links []repository.TemplateTask) []TemplateTaskResponse {
	out := make([]TemplateTaskResponse, 0, len(links))
	for _, link := range links {
		out = append(out, TemplateTaskResponse{
			ID:             link.ID,
			TaskTemplateID: link.TaskTemplateID,
			EstQtyMilli:    link.EstQtyMilli,
			SortOrder:      link.SortOrder,
		})
	}
	return out
}

// Package jobs provides the jobs bounded context module.
package jobs

import (
	apphttp "github.com/alimtiger/Minibini-sub000/internal/http"
	"github.com/alimtiger/Minibini-sub000/internal/jobs/handler"
	"github.com/alimtiger/Minibini-sub000/internal/jobs/repository"
	"github.com/alimtiger/Minibini-sub000/internal/jobs/service"
	"github.com/alimtiger/Minibini-sub000/platform/events"
	"github.com/alimtiger/Minibini-sub000/platform/logger"
	"github.com/alimtiger/Minibini-sub000/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the jobs bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	repo    *repository.Repository
}

// NewModule creates and initializes the jobs module with all its dependencies.
func NewModule(pool *pgxpool.Pool, eventBus events.Bus, log *logger.Logger, val *validator.Validator) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, eventBus, log)
	h := handler.New(svc, val)

	return &Module{handler: h, service: svc, repo: repo}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "jobs"
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// Repository returns the repository for cross-module cascade wiring.
func (m *Module) Repository() *repository.Repository {
	return m.repo
}

// RegisterRoutes mounts job routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/jobs"))
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)

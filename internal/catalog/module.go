// Package catalog provides the catalog bounded context module: task
// mappings, bundling rules, and templates.
package catalog

import (
	"github.com/alimtiger/Minibini-sub000/internal/catalog/handler"
	"github.com/alimtiger/Minibini-sub000/internal/catalog/repository"
	"github.com/alimtiger/Minibini-sub000/internal/catalog/service"
	apphttp "github.com/alimtiger/Minibini-sub000/internal/http"
	"github.com/alimtiger/Minibini-sub000/platform/logger"
	"github.com/alimtiger/Minibini-sub000/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the catalog bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	repo    *repository.Repository
}

// NewModule creates and initializes the catalog module with all its dependencies.
func NewModule(pool *pgxpool.Pool, log *logger.Logger, val *validator.Validator) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, log)
	h := handler.New(svc, val)

	return &Module{handler: h, service: svc, repo: repo}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "catalog"
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// Repository returns the repository for cross-module adapter wiring.
func (m *Module) Repository() *repository.Repository {
	return m.repo
}

// RegisterRoutes mounts catalog routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/catalog"))
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)

// Package estimates provides the estimates bounded context module:
// generation from worksheets, the status engine and its cascade, and the
// revision chain.
package estimates

import (
	"github.com/alimtiger/Minibini-sub000/internal/estimates/handler"
	"github.com/alimtiger/Minibini-sub000/internal/estimates/ports"
	"github.com/alimtiger/Minibini-sub000/internal/estimates/repository"
	"github.com/alimtiger/Minibini-sub000/internal/estimates/service"
	apphttp "github.com/alimtiger/Minibini-sub000/internal/http"
	"github.com/alimtiger/Minibini-sub000/platform/config"
	"github.com/alimtiger/Minibini-sub000/platform/events"
	"github.com/alimtiger/Minibini-sub000/platform/logger"
	"github.com/alimtiger/Minibini-sub000/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the estimates bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	repo    *repository.Repository
}

// NewModule creates and initializes the estimates module with all its dependencies.
func NewModule(
	pool *pgxpool.Pool,
	worksheets ports.WorksheetSource,
	rules ports.RuleSource,
	jobs ports.JobCascader,
	eventBus events.Bus,
	cfg config.EstimateConfig,
	log *logger.Logger,
	val *validator.Validator,
) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, worksheets, rules, jobs, eventBus, cfg, log)
	h := handler.New(svc, val)

	return &Module{handler: h, service: svc, repo: repo}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "estimates"
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// Repository returns the repository for cross-module adapter wiring.
func (m *Module) Repository() *repository.Repository {
	return m.repo
}

// RegisterRoutes mounts estimate routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/estimates"))
	m.handler.RegisterJobRoutes(ctx.Protected.Group("/jobs"))
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)

// Package worksheets provides the estimating worksheets bounded context
// module.
package worksheets

import (
	apphttp "github.com/alimtiger/Minibini-sub000/internal/http"
	"github.com/alimtiger/Minibini-sub000/internal/worksheets/handler"
	"github.com/alimtiger/Minibini-sub000/internal/worksheets/ports"
	"github.com/alimtiger/Minibini-sub000/internal/worksheets/repository"
	"github.com/alimtiger/Minibini-sub000/internal/worksheets/service"
	"github.com/alimtiger/Minibini-sub000/platform/logger"
	"github.com/alimtiger/Minibini-sub000/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the worksheets bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	repo    *repository.Repository
}

// NewModule creates and initializes the worksheets module with all its dependencies.
func NewModule(
	pool *pgxpool.Pool,
	jobs ports.JobChecker,
	templateTasks ports.TemplateTaskSource,
	log *logger.Logger,
	val *validator.Validator,
) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, jobs, templateTasks, log)
	h := handler.New(svc, val)

	return &Module{handler: h, service: svc, repo: repo}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "worksheets"
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// Repository returns the repository for cross-module cascade wiring.
func (m *Module) Repository() *repository.Repository {
	return m.repo
}

// RegisterRoutes mounts worksheet routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/worksheets"))
	m.handler.RegisterJobRoutes(ctx.Protected.Group("/jobs"))
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)

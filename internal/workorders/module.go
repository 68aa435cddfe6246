// Package workorders provides the execution-side bounded context module:
// work orders created directly, from templates, or from accepted
// estimates.
package workorders

import (
	apphttp "github.com/alimtiger/Minibini-sub000/internal/http"
	"github.com/alimtiger/Minibini-sub000/internal/workorders/handler"
	"github.com/alimtiger/Minibini-sub000/internal/workorders/ports"
	"github.com/alimtiger/Minibini-sub000/internal/workorders/repository"
	"github.com/alimtiger/Minibini-sub000/internal/workorders/service"
	"github.com/alimtiger/Minibini-sub000/platform/logger"
	"github.com/alimtiger/Minibini-sub000/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the work orders bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the work orders module with all its dependencies.
func NewModule(
	pool *pgxpool.Pool,
	jobs ports.JobChecker,
	templateTasks ports.TemplateTaskSource,
	estimates ports.EstimateSource,
	log *logger.Logger,
	val *validator.Validator,
) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, jobs, templateTasks, estimates, log)
	h := handler.New(svc, val)

	return &Module{handler: h, service: svc}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "workorders"
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts work order routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/workorders"))
	m.handler.RegisterJobRoutes(ctx.Protected.Group("/jobs"))
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)

// Package realtors provides the realtor administration bounded context module.
package realtors

import (
	"homematch_backend/internal/events"
	apphttp "homematch_backend/internal/http"
	"homematch_backend/internal/realtors/handler"
	"homematch_backend/internal/realtors/repository"
	"homematch_backend/internal/realtors/service"
	"homematch_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the realtors bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the realtors module with all its dependencies.
func NewModule(pool *pgxpool.Pool, eventBus events.Bus, val *validator.Validator) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, eventBus)

	return &Module{
		handler: handler.New(svc, val),
		service: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "realtors"
}

// Service returns the realtor service for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts realtor routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/realtors"))
	m.handler.RegisterAdminRoutes(ctx.Admin.Group("/realtors"))
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)

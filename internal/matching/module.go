// Package matching provides the lead matching and distribution bounded
// context module.
package matching

import (
	"context"

	"homematch_backend/internal/events"
	apphttp "homematch_backend/internal/http"
	"homematch_backend/internal/matching/handler"
	"homematch_backend/internal/matching/repository"
	"homematch_backend/internal/matching/service"
	"homematch_backend/internal/scheduler"
	"homematch_backend/platform/config"
	"homematch_backend/platform/logger"
	"homematch_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the matching bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the matching module. When auto-assign on
// intake is enabled, every new lead triggers an assignment attempt as soon as
// it is captured; failures there are logged and the lead stays in the backlog
// for the next distribution run.
func NewModule(pool *pgxpool.Pool, eventBus events.Bus, val *validator.Validator, cfg config.MatchingConfig, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, eventBus, log)

	if cfg.GetAutoAssignOnIntake() {
		eventBus.Subscribe(events.LeadCreated{}.EventName(), events.HandlerFunc(func(ctx context.Context, e events.Event) error {
			created, ok := e.(events.LeadCreated)
			if !ok {
				return nil
			}
			// Best effort: the bus already logs handler errors and the
			// lead remains unassigned on failure.
			_, err := svc.AutoAssign(ctx, created.LeadID)
			return err
		}))
	}

	return &Module{
		handler: handler.New(svc, val),
		service: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "matching"
}

// SetDistributionScheduler wires the optional background queue used by
// async distribution requests.
func (m *Module) SetDistributionScheduler(sched scheduler.DistributionScheduler) {
	m.handler.SetDistributionScheduler(sched)
}

// Service returns the matching service for external use (scheduler worker,
// CLI distribution runs).
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts matching routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/matching"))
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)

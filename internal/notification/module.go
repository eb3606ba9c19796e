// Package notification turns domain events into outbound notifications.
// It registers event handlers instead of HTTP routes.
package notification

import (
	"context"

	"homematch_backend/internal/email"
	"homematch_backend/internal/events"
	leadrepo "homematch_backend/internal/leads/repository"
	realtorrepo "homematch_backend/internal/realtors/repository"
	"homematch_backend/platform/logger"

	"github.com/google/uuid"
)

// LeadReader loads lead contact details for notifications.
type LeadReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (leadrepo.Lead, error)
}

// RealtorReader loads realtor contact details for notifications.
type RealtorReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (realtorrepo.Realtor, error)
}

type Module struct {
	sender   email.Sender
	log      *logger.Logger
	leads    LeadReader
	realtors RealtorReader
}

func New(sender email.Sender, log *logger.Logger) *Module {
	return &Module{sender: sender, log: log}
}

// SetReaders wires the cross-context readers used to resolve contact details.
func (m *Module) SetReaders(leads LeadReader, realtors RealtorReader) {
	m.leads = leads
	m.realtors = realtors
}

// RegisterHandlers subscribes the module to the domain events it reacts to.
func (m *Module) RegisterHandlers(bus events.Bus) {
	bus.Subscribe(events.LeadAssigned{}.EventName(), events.HandlerFunc(m.handleLeadAssigned))
	bus.Subscribe(events.DistributionCompleted{}.EventName(), events.HandlerFunc(m.handleDistributionCompleted))
}

func (m *Module) handleLeadAssigned(ctx context.Context, e events.Event) error {
	assigned, ok := e.(events.LeadAssigned)
	if !ok {
		return nil
	}
	if m.leads == nil || m.realtors == nil {
		return nil
	}

	lead, err := m.leads.GetByID(ctx, assigned.LeadID)
	if err != nil {
		return err
	}
	realtor, err := m.realtors.GetByID(ctx, assigned.RealtorID)
	if err != nil {
		return err
	}

	err = m.sender.SendLeadAssignedEmail(ctx, realtor.Email, email.LeadAssignedData{
		RealtorName: realtor.FullName,
		BuyerName:   lead.BuyerName,
		City:        lead.City,
		State:       lead.State,
		Phone:       lead.Phone,
		MatchReason: assigned.MatchReason,
	})
	if err != nil {
		// Notification failure never unwinds an assignment.
		m.log.Error("failed to send assignment email", "leadId", assigned.LeadID, "realtorId", assigned.RealtorID, "error", err)
		return err
	}

	m.log.Info("assignment email sent", "leadId", assigned.LeadID, "realtorId", assigned.RealtorID)
	return nil
}

func (m *Module) handleDistributionCompleted(_ context.Context, e events.Event) error {
	run, ok := e.(events.DistributionCompleted)
	if !ok {
		return nil
	}

	m.log.Info("distribution run completed", "attempted", run.Attempted, "assigned", run.Assigned, "failed", run.Failed)
	return nil
}

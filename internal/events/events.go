// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"homematch_backend/platform/events"
	"homematch_backend/platform/logger"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// InMemoryBus is a type alias to the platform InMemoryBus
type InMemoryBus = events.InMemoryBus

// NewInMemoryBus creates a new in-memory event bus.
func NewInMemoryBus(log *logger.Logger) *InMemoryBus {
	return events.NewInMemoryBus(log)
}

// =============================================================================
// Lead Domain Events
// =============================================================================

// LeadCreated is published when a new lead is captured by intake.
type LeadCreated struct {
	BaseEvent
	LeadID uuid.UUID `json:"leadId"`
	City   string    `json:"city"`
}

func (e LeadCreated) EventName() string { return "leads.lead.created" }

// LeadAssigned is published when a lead is committed to a realtor.
type LeadAssigned struct {
	BaseEvent
	LeadID      uuid.UUID `json:"leadId"`
	RealtorID   uuid.UUID `json:"realtorId"`
	MatchReason string    `json:"matchReason,omitempty"`
}

func (e LeadAssigned) EventName() string { return "matching.lead.assigned" }

// DistributionCompleted is published after a bulk distribution pass finishes.
type DistributionCompleted struct {
	BaseEvent
	Attempted int `json:"attempted"`
	Assigned  int `json:"assigned"`
	Failed    int `json:"failed"`
}

func (e DistributionCompleted) EventName() string { return "matching.distribution.completed" }

// =============================================================================
// Realtor Domain Events
// =============================================================================

// RealtorVerified is published when a realtor's verification is approved.
type RealtorVerified struct {
	BaseEvent
	RealtorID uuid.UUID `json:"realtorId"`
}

func (e RealtorVerified) EventName() string { return "realtors.realtor.verified" }

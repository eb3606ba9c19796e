// Package service implements lead intake and management.
// Assignment state is owned by the matching engine; this service never
// mutates it.
package service

import (
	"context"

	"homematch_backend/internal/events"
	"homematch_backend/internal/leads/repository"
	"homematch_backend/internal/leads/transport"
	"homematch_backend/platform/apperr"
	"homematch_backend/platform/phone"

	"github.com/google/uuid"
)

type Service struct {
	repo *repository.Repository
	bus  events.Bus
}

func New(repo *repository.Repository, bus events.Bus) *Service {
	return &Service{repo: repo, bus: bus}
}

func (s *Service) Create(ctx context.Context, req transport.CreateLeadRequest) (transport.LeadResponse, error) {
	params := repository.CreateLeadParams{
		BuyerName: req.BuyerName,
		Phone:     phone.NormalizeE164(req.Phone),
		City:      req.City,
		State:     req.State,
		ZipCode:   req.ZipCode,
	}
	if req.Email != "" {
		params.Email = &req.Email
	}
	if req.Language != "" {
		params.Language = &req.Language
	}
	if req.Interest != "" {
		params.Interest = &req.Interest
	}

	lead, err := s.repo.Create(ctx, params)
	if err != nil {
		return transport.LeadResponse{}, apperr.Wrap(apperr.KindInternal, "failed to create lead", err)
	}

	s.bus.Publish(ctx, events.LeadCreated{
		BaseEvent: events.NewBaseEvent(),
		LeadID:    lead.ID,
		City:      lead.City,
	})

	return toResponse(lead), nil
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (transport.LeadResponse, error) {
	lead, err := s.repo.GetByID(ctx, id)
	if err == repository.ErrNotFound {
		return transport.LeadResponse{}, apperr.NotFound("lead not found")
	}
	if err != nil {
		return transport.LeadResponse{}, apperr.Wrap(apperr.KindInternal, "failed to load lead", err)
	}
	return toResponse(lead), nil
}

func (s *Service) List(ctx context.Context, req transport.ListLeadsRequest) (transport.LeadListResponse, error) {
	params := repository.ListParams{Limit: req.Limit, Offset: req.Offset}
	if req.Status != nil {
		status := string(*req.Status)
		params.Status = &status
	}

	leads, total, err := s.repo.List(ctx, params)
	if err != nil {
		return transport.LeadListResponse{}, apperr.Wrap(apperr.KindInternal, "failed to list leads", err)
	}

	return transport.LeadListResponse{Leads: toResponses(leads), Total: total}, nil
}

// ListUnassigned returns the current distribution backlog, oldest first.
func (s *Service) ListUnassigned(ctx context.Context) ([]transport.LeadResponse, error) {
	leads, err := s.repo.ListUnassigned(ctx)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to list unassigned leads", err)
	}
	return toResponses(leads), nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.repo.Delete(ctx, id)
	if err == repository.ErrNotFound {
		return apperr.NotFound("lead not found")
	}
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "failed to delete lead", err)
	}
	return nil
}

func toResponse(lead repository.Lead) transport.LeadResponse {
	return transport.LeadResponse{
		ID:                lead.ID,
		BuyerName:         lead.BuyerName,
		Phone:             lead.Phone,
		Email:             lead.Email,
		City:              lead.City,
		State:             lead.State,
		ZipCode:           lead.ZipCode,
		Language:          lead.Language,
		Interest:          lead.Interest,
		Status:            transport.LeadStatus(lead.Status),
		AssignedRealtorID: lead.AssignedRealtorID,
		AssignedAt:        lead.AssignedAt,
		CreatedAt:         lead.CreatedAt,
	}
}

func toResponses(leads []repository.Lead) []transport.LeadResponse {
	responses := make([]transport.LeadResponse, 0, len(leads))
	for _, lead := range leads {
		responses = append(responses, toResponse(lead))
	}
	return responses
}

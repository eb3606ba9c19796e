// Package service implements realtor administration. The engine's
// current_lead_count is mutated only by the matching committer; this service
// manages profile, verification, and availability flags.
package service

import (
	"context"

	"homematch_backend/internal/events"
	"homematch_backend/internal/realtors/repository"
	"homematch_backend/internal/realtors/transport"
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

func (s *Service) Create(ctx context.Context, req transport.CreateRealtorRequest) (transport.RealtorResponse, error) {
	realtor, err := s.repo.Create(ctx, repository.CreateRealtorParams{
		FullName:      req.FullName,
		Email:         req.Email,
		Phone:         phone.NormalizeE164(req.Phone),
		ServiceCities: orEmpty(req.ServiceCities),
		ServiceZips:   orEmpty(req.ServiceZips),
		ServiceStates: orEmpty(req.ServiceStates),
		Languages:     orEmpty(req.Languages),
		Capacity:      req.Capacity,
	})
	if err != nil {
		return transport.RealtorResponse{}, apperr.Wrap(apperr.KindInternal, "failed to create realtor", err)
	}
	return toResponse(realtor), nil
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (transport.RealtorResponse, error) {
	realtor, err := s.repo.GetByID(ctx, id)
	if err == repository.ErrNotFound {
		return transport.RealtorResponse{}, apperr.NotFound("realtor not found")
	}
	if err != nil {
		return transport.RealtorResponse{}, apperr.Wrap(apperr.KindInternal, "failed to load realtor", err)
	}
	return toResponse(realtor), nil
}

func (s *Service) List(ctx context.Context) ([]transport.RealtorResponse, error) {
	realtors, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to list realtors", err)
	}

	responses := make([]transport.RealtorResponse, 0, len(realtors))
	for _, realtor := range realtors {
		responses = append(responses, toResponse(realtor))
	}
	return responses, nil
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, req transport.UpdateRealtorRequest) (transport.RealtorResponse, error) {
	params := repository.UpdateRealtorParams{
		FullName:      req.FullName,
		ServiceCities: req.ServiceCities,
		ServiceZips:   req.ServiceZips,
		ServiceStates: req.ServiceStates,
		Languages:     req.Languages,
		Capacity:      req.Capacity,
	}
	if req.Phone != nil {
		normalized := phone.NormalizeE164(*req.Phone)
		params.Phone = &normalized
	}

	realtor, err := s.repo.Update(ctx, id, params)
	if err == repository.ErrNotFound {
		return transport.RealtorResponse{}, apperr.NotFound("realtor not found")
	}
	if err != nil {
		return transport.RealtorResponse{}, apperr.Wrap(apperr.KindInternal, "failed to update realtor", err)
	}
	return toResponse(realtor), nil
}

func (s *Service) SetVerification(ctx context.Context, id uuid.UUID, req transport.SetVerificationRequest) (transport.RealtorResponse, error) {
	realtor, err := s.repo.SetVerificationStatus(ctx, id, string(req.Status))
	if err == repository.ErrNotFound {
		return transport.RealtorResponse{}, apperr.NotFound("realtor not found")
	}
	if err != nil {
		return transport.RealtorResponse{}, apperr.Wrap(apperr.KindInternal, "failed to update verification status", err)
	}

	if realtor.VerificationStatus == repository.StatusVerified {
		s.bus.Publish(ctx, events.RealtorVerified{
			BaseEvent: events.NewBaseEvent(),
			RealtorID: realtor.ID,
		})
	}

	return toResponse(realtor), nil
}

func (s *Service) SetActive(ctx context.Context, id uuid.UUID, active bool) (transport.RealtorResponse, error) {
	realtor, err := s.repo.SetActive(ctx, id, active)
	if err == repository.ErrNotFound {
		return transport.RealtorResponse{}, apperr.NotFound("realtor not found")
	}
	if err != nil {
		return transport.RealtorResponse{}, apperr.Wrap(apperr.KindInternal, "failed to update realtor", err)
	}
	return toResponse(realtor), nil
}

func orEmpty(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

func toResponse(realtor repository.Realtor) transport.RealtorResponse {
	return transport.RealtorResponse{
		ID:                 realtor.ID,
		FullName:           realtor.FullName,
		Email:              realtor.Email,
		Phone:              realtor.Phone,
		VerificationStatus: transport.VerificationStatus(realtor.VerificationStatus),
		ServiceCities:      realtor.ServiceCities,
		ServiceZips:        realtor.ServiceZips,
		ServiceStates:      realtor.ServiceStates,
		Languages:          realtor.Languages,
		CurrentLeadCount:   realtor.CurrentLeadCount,
		Capacity:           realtor.Capacity,
		Active:             realtor.Active,
		CreatedAt:          realtor.CreatedAt,
	}
}

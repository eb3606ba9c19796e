// Package service implements lead matching and distribution: previewing
// ranked candidates, committing single assignments, and running bulk
// distribution over the unassigned backlog.
package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"homematch_backend/internal/events"
	"homematch_backend/internal/matching/repository"
	"homematch_backend/internal/matching/scoring"
	"homematch_backend/internal/matching/transport"
	"homematch_backend/platform/apperr"
	"homematch_backend/platform/logger"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const defaultLeaderboardLimit = 10

// Store is the persistence surface the matcher needs. Satisfied by
// repository.Repository; tests substitute in-memory fakes.
type Store interface {
	GetLead(ctx context.Context, id uuid.UUID) (repository.Lead, error)
	GetRealtor(ctx context.Context, id uuid.UUID) (repository.Candidate, error)
	ListUnassignedLeads(ctx context.Context) ([]repository.Lead, error)
	ListEligibleRealtors(ctx context.Context) ([]repository.Candidate, error)
	Assign(ctx context.Context, leadID, realtorID uuid.UUID) error
	GetLeadCounts(ctx context.Context) (repository.LeadCounts, error)
	GetRealtorStats(ctx context.Context) (repository.RealtorStats, error)
	ListRealtorsByLoad(ctx context.Context, limit int, mostLoaded bool) ([]repository.RealtorLoad, error)
}

type Service struct {
	store Store
	bus   events.Bus
	log   *logger.Logger
}

func New(store Store, bus events.Bus, log *logger.Logger) *Service {
	return &Service{store: store, bus: bus, log: log}
}

// PreviewMatches ranks all eligible realtors for a lead without committing
// anything. Works for assigned leads too so the dashboard can show why a
// past assignment ranked the way it did.
func (s *Service) PreviewMatches(ctx context.Context, leadID uuid.UUID) (transport.MatchPreviewResponse, error) {
	lead, err := s.store.GetLead(ctx, leadID)
	if errors.Is(err, repository.ErrLeadNotFound) {
		return transport.MatchPreviewResponse{}, apperr.NotFound("lead not found")
	}
	if err != nil {
		return transport.MatchPreviewResponse{}, apperr.Wrap(apperr.KindInternal, "failed to load lead", err)
	}

	ranked, err := s.rankCandidates(ctx, lead)
	if err != nil {
		return transport.MatchPreviewResponse{}, err
	}

	candidates := make([]transport.MatchCandidateResponse, 0, len(ranked))
	for _, res := range ranked {
		candidates = append(candidates, toCandidateResponse(res))
	}

	return transport.MatchPreviewResponse{
		Lead:       toLeadSummary(lead),
		Candidates: candidates,
	}, nil
}

// AutoAssign picks the best-ranked candidate and commits the assignment.
// If the top candidate loses the commit race it falls through to the next
// one rather than failing the request.
func (s *Service) AutoAssign(ctx context.Context, leadID uuid.UUID) (transport.AssignmentResponse, error) {
	lead, err := s.store.GetLead(ctx, leadID)
	if errors.Is(err, repository.ErrLeadNotFound) {
		return transport.AssignmentResponse{}, apperr.NotFound("lead not found")
	}
	if err != nil {
		return transport.AssignmentResponse{}, apperr.Wrap(apperr.KindInternal, "failed to load lead", err)
	}
	if lead.Status != "UNASSIGNED" {
		return transport.AssignmentResponse{}, apperr.Conflict("lead is already assigned")
	}

	ranked, err := s.rankCandidates(ctx, lead)
	if err != nil {
		return transport.AssignmentResponse{}, err
	}
	if len(ranked) == 0 {
		return transport.AssignmentResponse{}, apperr.Conflict("no eligible realtors available for this lead")
	}

	resp, err := s.commitBest(ctx, lead, ranked)
	if err != nil {
		return transport.AssignmentResponse{}, err
	}
	return resp, nil
}

// ManualAssign commits a lead to an operator-chosen realtor. The commit
// path re-validates eligibility and capacity, so a stale dashboard cannot
// overfill a realtor.
func (s *Service) ManualAssign(ctx context.Context, leadID uuid.UUID, req transport.ManualAssignRequest) (transport.AssignmentResponse, error) {
	err := s.store.Assign(ctx, leadID, req.RealtorID)
	if err != nil {
		s.log.AssignmentEvent(leadID.String(), req.RealtorID.String(), false, err.Error())
		return transport.AssignmentResponse{}, translateAssignError(err)
	}

	s.log.AssignmentEvent(leadID.String(), req.RealtorID.String(), true, "")
	s.publishAssigned(ctx, leadID, req.RealtorID, "manual assignment")

	resp := transport.AssignmentResponse{
		LeadID:     leadID,
		RealtorID:  req.RealtorID,
		Reason:     "manual assignment",
		AssignedAt: time.Now().UTC(),
	}
	if realtor, err := s.store.GetRealtor(ctx, req.RealtorID); err == nil {
		resp.RealtorName = realtor.FullName
	}
	return resp, nil
}

// DistributeAll walks the unassigned backlog oldest first and auto-assigns
// each lead independently. One lead failing never aborts the batch; failures
// are reported per lead. Running it twice in a row is harmless because the
// second pass finds an empty backlog.
func (s *Service) DistributeAll(ctx context.Context) (transport.DistributionRunResponse, error) {
	backlog, err := s.store.ListUnassignedLeads(ctx)
	if err != nil {
		return transport.DistributionRunResponse{}, apperr.Wrap(apperr.KindInternal, "failed to load unassigned leads", err)
	}

	run := transport.DistributionRunResponse{
		Attempted: len(backlog),
		Failures:  make([]transport.DistributionFailure, 0),
	}

	for _, lead := range backlog {
		if ctx.Err() != nil {
			return transport.DistributionRunResponse{}, apperr.Wrap(apperr.KindInternal, "distribution interrupted", ctx.Err())
		}

		// Re-rank per lead: each commit changes realtor capacity, so a
		// snapshot taken once for the whole batch would go stale.
		ranked, err := s.rankCandidates(ctx, lead)
		if err != nil {
			run.Failures = append(run.Failures, transport.DistributionFailure{
				LeadID: lead.ID,
				Reason: "failed to load candidates",
			})
			continue
		}
		if len(ranked) == 0 {
			run.Failures = append(run.Failures, transport.DistributionFailure{
				LeadID: lead.ID,
				Reason: "no eligible realtors available",
			})
			continue
		}

		if _, err := s.commitBest(ctx, lead, ranked); err != nil {
			run.Failures = append(run.Failures, transport.DistributionFailure{
				LeadID: lead.ID,
				Reason: failureReason(err),
			})
			continue
		}
		run.Assigned++
	}

	run.Failed = len(run.Failures)
	run.Message = fmt.Sprintf("%d of %d leads assigned", run.Assigned, run.Attempted)

	s.bus.Publish(ctx, events.DistributionCompleted{
		BaseEvent: events.NewBaseEvent(),
		Attempted: run.Attempted,
		Assigned:  run.Assigned,
		Failed:    run.Failed,
	})

	return run, nil
}

// Analytics assembles the distribution dashboard numbers. Lead and realtor
// aggregates are independent queries, so they run concurrently.
func (s *Service) Analytics(ctx context.Context) (transport.AnalyticsResponse, error) {
	var (
		leadCounts   repository.LeadCounts
		realtorStats repository.RealtorStats
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		leadCounts, err = s.store.GetLeadCounts(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		realtorStats, err = s.store.GetRealtorStats(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return transport.AnalyticsResponse{}, apperr.Wrap(apperr.KindInternal, "failed to load analytics", err)
	}

	resp := transport.AnalyticsResponse{
		TotalLeads:         leadCounts.Total,
		AssignedLeads:      leadCounts.Assigned,
		UnassignedLeads:    leadCounts.Unassigned,
		LeadsCreated7d:     leadCounts.CreatedLast7Days,
		LeadsAssigned7d:    leadCounts.AssignedLast7Days,
		VerifiedRealtors:   realtorStats.Verified,
		ActiveRealtors:     realtorStats.ActiveVerified,
		RealtorsAtCapacity: realtorStats.AtCapacity,
	}
	if leadCounts.Total > 0 {
		resp.AssignmentRate = round2(float64(leadCounts.Assigned) / float64(leadCounts.Total))
	}
	if realtorStats.ActiveVerified > 0 {
		resp.AvgLeadsPerRealtor = round2(float64(realtorStats.TotalAssignedLeads) / float64(realtorStats.ActiveVerified))
	}

	return resp, nil
}

// TopPerformers returns the most loaded active verified realtors.
func (s *Service) TopPerformers(ctx context.Context, limit int) ([]transport.RealtorLoadResponse, error) {
	return s.leaderboard(ctx, limit, true)
}

// Underutilized returns active verified realtors with the most spare capacity.
func (s *Service) Underutilized(ctx context.Context, limit int) ([]transport.RealtorLoadResponse, error) {
	return s.leaderboard(ctx, limit, false)
}

func (s *Service) leaderboard(ctx context.Context, limit int, mostLoaded bool) ([]transport.RealtorLoadResponse, error) {
	if limit <= 0 {
		limit = defaultLeaderboardLimit
	}

	loads, err := s.store.ListRealtorsByLoad(ctx, limit, mostLoaded)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to load realtor leaderboard", err)
	}

	responses := make([]transport.RealtorLoadResponse, 0, len(loads))
	for _, load := range loads {
		resp := transport.RealtorLoadResponse{
			RealtorID:        load.ID,
			FullName:         load.FullName,
			CurrentLeadCount: load.CurrentLeadCount,
			Capacity:         load.Capacity,
		}
		if load.Capacity > 0 {
			resp.Utilization = round2(float64(load.CurrentLeadCount) / float64(load.Capacity))
		}
		responses = append(responses, resp)
	}
	return responses, nil
}

// rankCandidates scores every eligible realtor and sorts best first. The
// tie-break chain is total, then location, then language, then fewest
// current leads, then realtor ID, so equal-scoring candidates order the
// same way on every run.
func (s *Service) rankCandidates(ctx context.Context, lead repository.Lead) ([]scoring.Result, error) {
	candidates, err := s.store.ListEligibleRealtors(ctx)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to load eligible realtors", err)
	}

	ranked := make([]scoring.Result, 0, len(candidates))
	for _, cand := range candidates {
		ranked = append(ranked, scoring.Score(lead, cand))
	}

	sort.Slice(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.Total != b.Total {
			return a.Total > b.Total
		}
		if a.LocationScore != b.LocationScore {
			return a.LocationScore > b.LocationScore
		}
		if a.LanguageScore != b.LanguageScore {
			return a.LanguageScore > b.LanguageScore
		}
		if a.Candidate.CurrentLeadCount != b.Candidate.CurrentLeadCount {
			return a.Candidate.CurrentLeadCount < b.Candidate.CurrentLeadCount
		}
		return a.Candidate.ID.String() < b.Candidate.ID.String()
	})

	return ranked, nil
}

// commitBest tries ranked candidates in order until one commit succeeds.
// Candidates that lost capacity or eligibility since ranking are skipped;
// a lead-side failure stops immediately because retrying other realtors
// cannot help.
func (s *Service) commitBest(ctx context.Context, lead repository.Lead, ranked []scoring.Result) (transport.AssignmentResponse, error) {
	for _, res := range ranked {
		err := s.store.Assign(ctx, lead.ID, res.Candidate.ID)
		if err == nil {
			s.log.AssignmentEvent(lead.ID.String(), res.Candidate.ID.String(), true, "")
			s.publishAssigned(ctx, lead.ID, res.Candidate.ID, res.Reason)
			return transport.AssignmentResponse{
				LeadID:      lead.ID,
				RealtorID:   res.Candidate.ID,
				RealtorName: res.Candidate.FullName,
				TotalScore:  res.Total,
				Reason:      res.Reason,
				AssignedAt:  time.Now().UTC(),
			}, nil
		}
		if errors.Is(err, repository.ErrRealtorAtCapacity) || errors.Is(err, repository.ErrRealtorNotEligible) || errors.Is(err, repository.ErrRealtorNotFound) {
			s.log.AssignmentEvent(lead.ID.String(), res.Candidate.ID.String(), false, err.Error())
			continue
		}
		return transport.AssignmentResponse{}, translateAssignError(err)
	}
	return transport.AssignmentResponse{}, apperr.Conflict("no eligible realtors available for this lead")
}

func (s *Service) publishAssigned(ctx context.Context, leadID, realtorID uuid.UUID, reason string) {
	s.bus.Publish(ctx, events.LeadAssigned{
		BaseEvent:   events.NewBaseEvent(),
		LeadID:      leadID,
		RealtorID:   realtorID,
		MatchReason: reason,
	})
}

func translateAssignError(err error) error {
	switch {
	case errors.Is(err, repository.ErrLeadNotFound):
		return apperr.NotFound("lead not found")
	case errors.Is(err, repository.ErrRealtorNotFound):
		return apperr.NotFound("realtor not found")
	case errors.Is(err, repository.ErrAlreadyAssigned):
		return apperr.Conflict("lead is already assigned")
	case errors.Is(err, repository.ErrRealtorAtCapacity):
		return apperr.Conflict("realtor is at capacity")
	case errors.Is(err, repository.ErrRealtorNotEligible):
		return apperr.Conflict("realtor is not eligible to receive leads")
	default:
		return apperr.Wrap(apperr.KindInternal, "failed to assign lead", err)
	}
}

func failureReason(err error) string {
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func toLeadSummary(lead repository.Lead) transport.LeadSummary {
	return transport.LeadSummary{
		ID:        lead.ID,
		BuyerName: lead.BuyerName,
		City:      lead.City,
		State:     lead.State,
		ZipCode:   lead.ZipCode,
		Language:  lead.Language,
		Status:    lead.Status,
		CreatedAt: lead.CreatedAt,
	}
}

func toCandidateResponse(res scoring.Result) transport.MatchCandidateResponse {
	return transport.MatchCandidateResponse{
		RealtorID:         res.Candidate.ID,
		RealtorName:       res.Candidate.FullName,
		LocationScore:     res.LocationScore,
		LanguageScore:     res.LanguageScore,
		VerificationScore: res.VerificationScore,
		AvailabilityScore: res.AvailabilityScore,
		TotalScore:        res.Total,
		Reason:            res.Reason,
		CurrentLeadCount:  res.Candidate.CurrentLeadCount,
		Capacity:          res.Candidate.Capacity,
	}
}

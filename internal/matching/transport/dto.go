package transport

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs
type ManualAssignRequest struct {
	RealtorID uuid.UUID `json:"realtorId" validate:"required"`
}

type LeaderboardRequest struct {
	Limit int `form:"limit" validate:"omitempty,min=1,max=100"`
}

// LeadSummary is the lead context echoed with previews and assignments.
type LeadSummary struct {
	ID        uuid.UUID `json:"id"`
	BuyerName string    `json:"buyerName"`
	City      string    `json:"city"`
	State     string    `json:"state"`
	ZipCode   string    `json:"zipCode"`
	Language  *string   `json:"language,omitempty"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

// MatchCandidateResponse is one ranked candidate with its score breakdown.
type MatchCandidateResponse struct {
	RealtorID         uuid.UUID `json:"realtorId"`
	RealtorName       string    `json:"realtorName"`
	LocationScore     int       `json:"locationScore"`
	LanguageScore     int       `json:"languageScore"`
	VerificationScore int       `json:"verificationScore"`
	AvailabilityScore int       `json:"availabilityScore"`
	TotalScore        int       `json:"totalScore"`
	Reason            string    `json:"reason"`
	CurrentLeadCount  int       `json:"currentLeadCount"`
	Capacity          int       `json:"capacity"`
}

type MatchPreviewResponse struct {
	Lead       LeadSummary              `json:"lead"`
	Candidates []MatchCandidateResponse `json:"candidates"`
}

type AssignmentResponse struct {
	LeadID      uuid.UUID `json:"leadId"`
	RealtorID   uuid.UUID `json:"realtorId"`
	RealtorName string    `json:"realtorName,omitempty"`
	TotalScore  int       `json:"totalScore,omitempty"`
	Reason      string    `json:"reason"`
	AssignedAt  time.Time `json:"assignedAt"`
}

// DistributionFailure records one lead a batch run could not place.
type DistributionFailure struct {
	LeadID uuid.UUID `json:"leadId"`
	Reason string    `json:"reason"`
}

type DistributionRunResponse struct {
	Attempted int                   `json:"attempted"`
	Assigned  int                   `json:"assigned"`
	Failed    int                   `json:"failed"`
	Failures  []DistributionFailure `json:"failures"`
	Message   string                `json:"message"`
}

type AnalyticsResponse struct {
	TotalLeads         int     `json:"totalLeads"`
	AssignedLeads      int     `json:"assignedLeads"`
	UnassignedLeads    int     `json:"unassignedLeads"`
	AssignmentRate     float64 `json:"assignmentRate"`
	LeadsCreated7d     int     `json:"leadsCreatedLast7Days"`
	LeadsAssigned7d    int     `json:"leadsAssignedLast7Days"`
	VerifiedRealtors   int     `json:"verifiedRealtors"`
	ActiveRealtors     int     `json:"activeRealtors"`
	RealtorsAtCapacity int     `json:"realtorsAtCapacity"`
	AvgLeadsPerRealtor float64 `json:"avgLeadsPerRealtor"`
}

// RealtorLoadResponse is one leaderboard row.
type RealtorLoadResponse struct {
	RealtorID        uuid.UUID `json:"realtorId"`
	FullName         string    `json:"fullName"`
	CurrentLeadCount int       `json:"currentLeadCount"`
	Capacity         int       `json:"capacity"`
	Utilization      float64   `json:"utilization"`
}

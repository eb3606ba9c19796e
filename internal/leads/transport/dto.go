package transport

import (
	"time"

	"github.com/google/uuid"
)

// LeadStatus is the assignment state of a lead.
type LeadStatus string

const (
	LeadStatusUnassigned LeadStatus = "UNASSIGNED"
	LeadStatusAssigned   LeadStatus = "ASSIGNED"
)

// Request DTOs
type CreateLeadRequest struct {
	BuyerName string `json:"buyerName" validate:"required,min=1,max=200"`
	Phone     string `json:"phone" validate:"omitempty,min=5,max=20"`
	Email     string `json:"email,omitempty" validate:"omitempty,email"`
	City      string `json:"city" validate:"required,min=1,max=100"`
	State     string `json:"state" validate:"omitempty,max=50"`
	ZipCode   string `json:"zipCode" validate:"omitempty,max=20"`
	Language  string `json:"language,omitempty" validate:"omitempty,max=50"`
	Interest  string `json:"interest,omitempty" validate:"omitempty,max=100"`
}

type ListLeadsRequest struct {
	Status *LeadStatus `form:"status" validate:"omitempty,oneof=UNASSIGNED ASSIGNED"`
	Limit  int         `form:"limit" validate:"omitempty,min=1,max=200"`
	Offset int         `form:"offset" validate:"omitempty,min=0"`
}

// Response DTOs
type LeadResponse struct {
	ID                uuid.UUID  `json:"id"`
	BuyerName         string     `json:"buyerName"`
	Phone             string     `json:"phone,omitempty"`
	Email             *string    `json:"email,omitempty"`
	City              string     `json:"city"`
	State             string     `json:"state,omitempty"`
	ZipCode           string     `json:"zipCode,omitempty"`
	Language          *string    `json:"language,omitempty"`
	Interest          *string    `json:"interest,omitempty"`
	Status            LeadStatus `json:"status"`
	AssignedRealtorID *uuid.UUID `json:"assignedRealtorId,omitempty"`
	AssignedAt        *time.Time `json:"assignedAt,omitempty"`
	CreatedAt         time.Time  `json:"createdAt"`
}

type LeadListResponse struct {
	Leads []LeadResponse `json:"leads"`
	Total int            `json:"total"`
}

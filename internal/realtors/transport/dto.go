package transport

import (
	"time"

	"github.com/google/uuid"
)

// VerificationStatus is the review state of a realtor profile.
type VerificationStatus string

const (
	VerificationPending  VerificationStatus = "PENDING"
	VerificationVerified VerificationStatus = "VERIFIED"
	VerificationRejected VerificationStatus = "REJECTED"
)

// Request DTOs
type CreateRealtorRequest struct {
	FullName      string   `json:"fullName" validate:"required,min=1,max=200"`
	Email         string   `json:"email" validate:"required,email"`
	Phone         string   `json:"phone,omitempty" validate:"omitempty,min=5,max=20"`
	ServiceCities []string `json:"serviceCities" validate:"omitempty,dive,min=1,max=100"`
	ServiceZips   []string `json:"serviceZips" validate:"omitempty,dive,min=1,max=20"`
	ServiceStates []string `json:"serviceStates" validate:"omitempty,dive,min=1,max=50"`
	Languages     []string `json:"languages" validate:"omitempty,dive,min=1,max=50"`
	Capacity      int      `json:"capacity" validate:"required,min=1,max=500"`
}

type UpdateRealtorRequest struct {
	FullName      *string  `json:"fullName,omitempty" validate:"omitempty,min=1,max=200"`
	Phone         *string  `json:"phone,omitempty" validate:"omitempty,min=5,max=20"`
	ServiceCities []string `json:"serviceCities,omitempty" validate:"omitempty,dive,min=1,max=100"`
	ServiceZips   []string `json:"serviceZips,omitempty" validate:"omitempty,dive,min=1,max=20"`
	ServiceStates []string `json:"serviceStates,omitempty" validate:"omitempty,dive,min=1,max=50"`
	Languages     []string `json:"languages,omitempty" validate:"omitempty,dive,min=1,max=50"`
	Capacity      *int     `json:"capacity,omitempty" validate:"omitempty,min=1,max=500"`
}

type SetVerificationRequest struct {
	Status VerificationStatus `json:"status" validate:"required,oneof=PENDING VERIFIED REJECTED"`
}

// Response DTOs
type RealtorResponse struct {
	ID                 uuid.UUID          `json:"id"`
	FullName           string             `json:"fullName"`
	Email              string             `json:"email"`
	Phone              string             `json:"phone,omitempty"`
	VerificationStatus VerificationStatus `json:"verificationStatus"`
	ServiceCities      []string           `json:"serviceCities"`
	ServiceZips        []string           `json:"serviceZips"`
	ServiceStates      []string           `json:"serviceStates"`
	Languages          []string           `json:"languages"`
	CurrentLeadCount   int                `json:"currentLeadCount"`
	Capacity           int                `json:"capacity"`
	Active             bool               `json:"active"`
	CreatedAt          time.Time          `json:"createdAt"`
}

// Package repository is the matching engine's read and commit path over
// persisted leads and realtors.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Sentinel errors for the assignment commit. Services translate these to
// typed API errors.
var (
	ErrLeadNotFound       = errors.New("lead not found")
	ErrAlreadyAssigned    = errors.New("lead already assigned")
	ErrRealtorNotFound    = errors.New("realtor not found")
	ErrRealtorAtCapacity  = errors.New("realtor at capacity")
	ErrRealtorNotEligible = errors.New("realtor not eligible")
)

const (
	statusUnassigned = "UNASSIGNED"
	statusAssigned   = "ASSIGNED"
	statusVerified   = "VERIFIED"
)

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Lead is the matching view of a lead: just the fields scoring needs.
type Lead struct {
	ID        uuid.UUID
	BuyerName string
	City      string
	State     string
	ZipCode   string
	Language  *string
	Interest  *string
	Status    string
	CreatedAt time.Time
}

// Candidate is the matching view of a realtor eligible to receive leads.
type Candidate struct {
	ID                 uuid.UUID
	FullName           string
	VerificationStatus string
	ServiceCities      []string
	ServiceZips        []string
	ServiceStates      []string
	Languages          []string
	CurrentLeadCount   int
	Capacity           int
}

func (r *Repository) GetLead(ctx context.Context, id uuid.UUID) (Lead, error) {
	var lead Lead
	err := r.pool.QueryRow(ctx, `
		SELECT id, buyer_name, city, state, zip_code, language, interest, status, created_at
		FROM leads WHERE id = $1
	`, id).Scan(
		&lead.ID, &lead.BuyerName, &lead.City, &lead.State, &lead.ZipCode,
		&lead.Language, &lead.Interest, &lead.Status, &lead.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Lead{}, ErrLeadNotFound
	}
	if err != nil {
		return Lead{}, err
	}
	return lead, nil
}

// GetRealtor loads one realtor in the matching view, regardless of current
// eligibility.
func (r *Repository) GetRealtor(ctx context.Context, id uuid.UUID) (Candidate, error) {
	var cand Candidate
	err := r.pool.QueryRow(ctx, `
		SELECT id, full_name, verification_status, service_cities, service_zips,
			service_states, languages, current_lead_count, capacity
		FROM realtors WHERE id = $1
	`, id).Scan(
		&cand.ID, &cand.FullName, &cand.VerificationStatus, &cand.ServiceCities,
		&cand.ServiceZips, &cand.ServiceStates, &cand.Languages,
		&cand.CurrentLeadCount, &cand.Capacity,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Candidate{}, ErrRealtorNotFound
	}
	if err != nil {
		return Candidate{}, err
	}
	return cand, nil
}

// ListUnassignedLeads returns the distribution backlog oldest first so batch
// runs process leads fairly.
func (r *Repository) ListUnassignedLeads(ctx context.Context) ([]Lead, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, buyer_name, city, state, zip_code, language, interest, status, created_at
		FROM leads
		WHERE status = $1
		ORDER BY created_at ASC
	`, statusUnassigned)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	leads := make([]Lead, 0)
	for rows.Next() {
		var lead Lead
		if err := rows.Scan(
			&lead.ID, &lead.BuyerName, &lead.City, &lead.State, &lead.ZipCode,
			&lead.Language, &lead.Interest, &lead.Status, &lead.CreatedAt,
		); err != nil {
			return nil, err
		}
		leads = append(leads, lead)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return leads, nil
}

// ListEligibleRealtors returns candidates that are active, verified, and
// under capacity. Realtors at capacity are hard-filtered here, not just
// scored low.
func (r *Repository) ListEligibleRealtors(ctx context.Context) ([]Candidate, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, full_name, verification_status, service_cities, service_zips,
			service_states, languages, current_lead_count, capacity
		FROM realtors
		WHERE active = true
			AND verification_status = $1
			AND current_lead_count < capacity
	`, statusVerified)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	candidates := make([]Candidate, 0)
	for rows.Next() {
		var cand Candidate
		if err := rows.Scan(
			&cand.ID, &cand.FullName, &cand.VerificationStatus, &cand.ServiceCities,
			&cand.ServiceZips, &cand.ServiceStates, &cand.Languages,
			&cand.CurrentLeadCount, &cand.Capacity,
		); err != nil {
			return nil, err
		}
		candidates = append(candidates, cand)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return candidates, nil
}

// Assign commits a lead to a realtor with an at-most-one-winner guarantee.
// Both state transitions happen in one transaction via conditional updates:
// the lead row flips UNASSIGNED -> ASSIGNED only if still unassigned, and the
// realtor's lead count increments only while under capacity and eligible.
// Concurrent callers race on the row locks; losers observe zero affected rows
// and get a typed sentinel back. Eligibility is re-validated here because
// realtor state may have changed since the matcher ranked it.
func (r *Repository) Assign(ctx context.Context, leadID, realtorID uuid.UUID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		UPDATE leads
		SET status = $1, assigned_realtor_id = $2, assigned_at = now(), updated_at = now()
		WHERE id = $3 AND status = $4
	`, statusAssigned, realtorID, leadID, statusUnassigned)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return r.classifyLeadFailure(ctx, tx, leadID)
	}

	tag, err = tx.Exec(ctx, `
		UPDATE realtors
		SET current_lead_count = current_lead_count + 1, updated_at = now()
		WHERE id = $1
			AND active = true
			AND verification_status = $2
			AND current_lead_count < capacity
	`, realtorID, statusVerified)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return r.classifyRealtorFailure(ctx, tx, realtorID)
	}

	return tx.Commit(ctx)
}

func (r *Repository) classifyLeadFailure(ctx context.Context, tx pgx.Tx, leadID uuid.UUID) error {
	var status string
	err := tx.QueryRow(ctx, `SELECT status FROM leads WHERE id = $1`, leadID).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrLeadNotFound
	}
	if err != nil {
		return err
	}
	return ErrAlreadyAssigned
}

func (r *Repository) classifyRealtorFailure(ctx context.Context, tx pgx.Tx, realtorID uuid.UUID) error {
	var (
		active    bool
		status    string
		leadCount int
		capacity  int
	)
	err := tx.QueryRow(ctx, `
		SELECT active, verification_status, current_lead_count, capacity
		FROM realtors WHERE id = $1
	`, realtorID).Scan(&active, &status, &leadCount, &capacity)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrRealtorNotFound
	}
	if err != nil {
		return err
	}
	if !active || status != statusVerified {
		return ErrRealtorNotEligible
	}
	return ErrRealtorAtCapacity
}

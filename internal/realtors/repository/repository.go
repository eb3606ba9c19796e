package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("realtor not found")

// Verification states for realtors.
const (
	StatusVerified = "VERIFIED"
	StatusPending  = "PENDING"
	StatusRejected = "REJECTED"
)

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

type Realtor struct {
	ID                 uuid.UUID
	FullName           string
	Email              string
	Phone              string
	VerificationStatus string
	ServiceCities      []string
	ServiceZips        []string
	ServiceStates      []string
	Languages          []string
	CurrentLeadCount   int
	Capacity           int
	Active             bool
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

type CreateRealtorParams struct {
	FullName      string
	Email         string
	Phone         string
	ServiceCities []string
	ServiceZips   []string
	ServiceStates []string
	Languages     []string
	Capacity      int
}

type UpdateRealtorParams struct {
	FullName      *string
	Phone         *string
	ServiceCities []string
	ServiceZips   []string
	ServiceStates []string
	Languages     []string
	Capacity      *int
}

const realtorColumns = `id, full_name, email, phone, verification_status, service_cities,
	service_zips, service_states, languages, current_lead_count, capacity, active,
	created_at, updated_at`

func scanRealtor(row pgx.Row) (Realtor, error) {
	var realtor Realtor
	err := row.Scan(
		&realtor.ID, &realtor.FullName, &realtor.Email, &realtor.Phone,
		&realtor.VerificationStatus, &realtor.ServiceCities, &realtor.ServiceZips,
		&realtor.ServiceStates, &realtor.Languages, &realtor.CurrentLeadCount,
		&realtor.Capacity, &realtor.Active, &realtor.CreatedAt, &realtor.UpdatedAt,
	)
	return realtor, err
}

func (r *Repository) Create(ctx context.Context, params CreateRealtorParams) (Realtor, error) {
	realtor, err := scanRealtor(r.pool.QueryRow(ctx, `
		INSERT INTO realtors (full_name, email, phone, service_cities, service_zips,
			service_states, languages, capacity)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+realtorColumns,
		params.FullName, params.Email, params.Phone, params.ServiceCities,
		params.ServiceZips, params.ServiceStates, params.Languages, params.Capacity,
	))
	if err != nil {
		return Realtor{}, err
	}
	return realtor, nil
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (Realtor, error) {
	realtor, err := scanRealtor(r.pool.QueryRow(ctx, `
		SELECT `+realtorColumns+` FROM realtors WHERE id = $1
	`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Realtor{}, ErrNotFound
	}
	if err != nil {
		return Realtor{}, err
	}
	return realtor, nil
}

func (r *Repository) List(ctx context.Context) ([]Realtor, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+realtorColumns+` FROM realtors ORDER BY full_name ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectRealtors(rows)
}

func (r *Repository) Update(ctx context.Context, id uuid.UUID, params UpdateRealtorParams) (Realtor, error) {
	realtor, err := scanRealtor(r.pool.QueryRow(ctx, `
		UPDATE realtors SET
			full_name = COALESCE($2, full_name),
			phone = COALESCE($3, phone),
			service_cities = COALESCE($4, service_cities),
			service_zips = COALESCE($5, service_zips),
			service_states = COALESCE($6, service_states),
			languages = COALESCE($7, languages),
			capacity = COALESCE($8, capacity),
			updated_at = now()
		WHERE id = $1
		RETURNING `+realtorColumns,
		id, params.FullName, params.Phone, params.ServiceCities, params.ServiceZips,
		params.ServiceStates, params.Languages, params.Capacity,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return Realtor{}, ErrNotFound
	}
	if err != nil {
		return Realtor{}, err
	}
	return realtor, nil
}

// SetVerificationStatus performs the verification status transition bookkeeping.
func (r *Repository) SetVerificationStatus(ctx context.Context, id uuid.UUID, status string) (Realtor, error) {
	realtor, err := scanRealtor(r.pool.QueryRow(ctx, `
		UPDATE realtors SET verification_status = $2, updated_at = now()
		WHERE id = $1
		RETURNING `+realtorColumns,
		id, status,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return Realtor{}, ErrNotFound
	}
	if err != nil {
		return Realtor{}, err
	}
	return realtor, nil
}

func (r *Repository) SetActive(ctx context.Context, id uuid.UUID, active bool) (Realtor, error) {
	realtor, err := scanRealtor(r.pool.QueryRow(ctx, `
		UPDATE realtors SET active = $2, updated_at = now()
		WHERE id = $1
		RETURNING `+realtorColumns,
		id, active,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return Realtor{}, ErrNotFound
	}
	if err != nil {
		return Realtor{}, err
	}
	return realtor, nil
}

func collectRealtors(rows pgx.Rows) ([]Realtor, error) {
	realtors := make([]Realtor, 0)
	for rows.Next() {
		var realtor Realtor
		if err := rows.Scan(
			&realtor.ID, &realtor.FullName, &realtor.Email, &realtor.Phone,
			&realtor.VerificationStatus, &realtor.ServiceCities, &realtor.ServiceZips,
			&realtor.ServiceStates, &realtor.Languages, &realtor.CurrentLeadCount,
			&realtor.Capacity, &realtor.Active, &realtor.CreatedAt, &realtor.UpdatedAt,
		); err != nil {
			return nil, err
		}
		realtors = append(realtors, realtor)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return realtors, nil
}

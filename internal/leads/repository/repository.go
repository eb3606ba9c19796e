package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("lead not found")

// Assignment state values for leads.
const (
	StatusUnassigned = "UNASSIGNED"
	StatusAssigned   = "ASSIGNED"
)

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

type Lead struct {
	ID                uuid.UUID
	BuyerName         string
	Phone             string
	Email             *string
	City              string
	State             string
	ZipCode           string
	Language          *string
	Interest          *string
	Status            string
	AssignedRealtorID *uuid.UUID
	AssignedAt        *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

type CreateLeadParams struct {
	BuyerName string
	Phone     string
	Email     *string
	City      string
	State     string
	ZipCode   string
	Language  *string
	Interest  *string
}

const leadColumns = `id, buyer_name, phone, email, city, state, zip_code, language, interest,
	status, assigned_realtor_id, assigned_at, created_at, updated_at`

func scanLead(row pgx.Row) (Lead, error) {
	var lead Lead
	err := row.Scan(
		&lead.ID, &lead.BuyerName, &lead.Phone, &lead.Email, &lead.City, &lead.State,
		&lead.ZipCode, &lead.Language, &lead.Interest, &lead.Status,
		&lead.AssignedRealtorID, &lead.AssignedAt, &lead.CreatedAt, &lead.UpdatedAt,
	)
	return lead, err
}

func (r *Repository) Create(ctx context.Context, params CreateLeadParams) (Lead, error) {
	lead, err := scanLead(r.pool.QueryRow(ctx, `
		INSERT INTO leads (buyer_name, phone, email, city, state, zip_code, language, interest)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+leadColumns,
		params.BuyerName, params.Phone, params.Email, params.City, params.State,
		params.ZipCode, params.Language, params.Interest,
	))
	if err != nil {
		return Lead{}, err
	}
	return lead, nil
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (Lead, error) {
	lead, err := scanLead(r.pool.QueryRow(ctx, `
		SELECT `+leadColumns+` FROM leads WHERE id = $1
	`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Lead{}, ErrNotFound
	}
	if err != nil {
		return Lead{}, err
	}
	return lead, nil
}

type ListParams struct {
	Status *string
	Limit  int
	Offset int
}

// List returns leads newest first, optionally filtered by assignment status,
// along with the total count for pagination.
func (r *Repository) List(ctx context.Context, params ListParams) ([]Lead, int, error) {
	limit := params.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+leadColumns+`, COUNT(*) OVER() AS total
		FROM leads
		WHERE ($1::text IS NULL OR status = $1)
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, params.Status, limit, params.Offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	leads := make([]Lead, 0)
	total := 0
	for rows.Next() {
		var lead Lead
		if err := rows.Scan(
			&lead.ID, &lead.BuyerName, &lead.Phone, &lead.Email, &lead.City, &lead.State,
			&lead.ZipCode, &lead.Language, &lead.Interest, &lead.Status,
			&lead.AssignedRealtorID, &lead.AssignedAt, &lead.CreatedAt, &lead.UpdatedAt,
			&total,
		); err != nil {
			return nil, 0, err
		}
		leads = append(leads, lead)
	}
	if rows.Err() != nil {
		return nil, 0, rows.Err()
	}

	return leads, total, nil
}

// ListUnassigned returns all unassigned leads oldest first so batch
// distribution processes them fairly.
func (r *Repository) ListUnassigned(ctx context.Context) ([]Lead, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+leadColumns+`
		FROM leads
		WHERE status = $1
		ORDER BY created_at ASC
	`, StatusUnassigned)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	leads := make([]Lead, 0)
	for rows.Next() {
		var lead Lead
		if err := rows.Scan(
			&lead.ID, &lead.BuyerName, &lead.Phone, &lead.Email, &lead.City, &lead.State,
			&lead.ZipCode, &lead.Language, &lead.Interest, &lead.Status,
			&lead.AssignedRealtorID, &lead.AssignedAt, &lead.CreatedAt, &lead.UpdatedAt,
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

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM leads WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

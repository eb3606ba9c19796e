package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound   = errors.New("user not found")
	ErrEmailTaken = errors.New("email already registered")
)

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

type User struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string
	Roles        []string
	CreatedAt    time.Time
}

type CreateUserParams struct {
	Email        string
	PasswordHash string
	Roles        []string
}

func (r *Repository) Create(ctx context.Context, params CreateUserParams) (User, error) {
	var user User
	err := r.pool.QueryRow(ctx, `
		INSERT INTO users (email, password_hash, roles)
		VALUES (lower($1), $2, $3)
		ON CONFLICT (email) DO NOTHING
		RETURNING id, email, password_hash, roles, created_at
	`, params.Email, params.PasswordHash, params.Roles).Scan(
		&user.ID, &user.Email, &user.PasswordHash, &user.Roles, &user.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrEmailTaken
	}
	if err != nil {
		return User{}, err
	}
	return user, nil
}

func (r *Repository) GetByEmail(ctx context.Context, email string) (User, error) {
	var user User
	err := r.pool.QueryRow(ctx, `
		SELECT id, email, password_hash, roles, created_at
		FROM users WHERE email = lower($1)
	`, email).Scan(
		&user.ID, &user.Email, &user.PasswordHash, &user.Roles, &user.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, err
	}
	return user, nil
}

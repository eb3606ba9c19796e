// Package service implements authentication: credential checks and access
// token issuance for the dashboard.
package service

import (
	"context"
	"errors"
	"time"

	"homematch_backend/internal/auth/repository"
	"homematch_backend/internal/auth/transport"
	"homematch_backend/platform/apperr"
	"homematch_backend/platform/config"
	"homematch_backend/platform/logger"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const tokenTypeAccess = "access"

// UserStore is the persistence surface auth needs. Satisfied by
// repository.Repository; tests substitute fakes.
type UserStore interface {
	Create(ctx context.Context, params repository.CreateUserParams) (repository.User, error)
	GetByEmail(ctx context.Context, email string) (repository.User, error)
}

type Service struct {
	store UserStore
	cfg   config.AuthServiceConfig
	log   *logger.Logger
}

func New(store UserStore, cfg config.AuthServiceConfig, log *logger.Logger) *Service {
	return &Service{store: store, cfg: cfg, log: log}
}

// Login verifies credentials and returns a signed access token. Unknown
// email and wrong password produce the same error so the endpoint cannot be
// used to probe for accounts.
func (s *Service) Login(ctx context.Context, req transport.LoginRequest) (transport.LoginResponse, error) {
	user, err := s.store.GetByEmail(ctx, req.Email)
	if errors.Is(err, repository.ErrNotFound) {
		s.log.AuthEvent("login", req.Email, false, "unknown email")
		return transport.LoginResponse{}, apperr.Unauthorized("invalid credentials")
	}
	if err != nil {
		return transport.LoginResponse{}, apperr.Wrap(apperr.KindInternal, "failed to load user", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		s.log.AuthEvent("login", req.Email, false, "password mismatch")
		return transport.LoginResponse{}, apperr.Unauthorized("invalid credentials")
	}

	ttl := s.cfg.GetAccessTokenTTL()
	token, err := s.signAccessToken(user.ID, user.Roles, ttl)
	if err != nil {
		return transport.LoginResponse{}, apperr.Wrap(apperr.KindInternal, "failed to sign token", err)
	}

	s.log.AuthEvent("login", req.Email, true, "")
	return transport.LoginResponse{
		AccessToken: token,
		ExpiresIn:   int64(ttl.Seconds()),
		User:        toUserResponse(user),
	}, nil
}

// CreateUser registers a dashboard user. Admin-only; there is no public
// signup.
func (s *Service) CreateUser(ctx context.Context, req transport.CreateUserRequest) (transport.UserResponse, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return transport.UserResponse{}, apperr.Wrap(apperr.KindInternal, "failed to hash password", err)
	}

	roles := req.Roles
	if len(roles) == 0 {
		roles = []string{"agent"}
	}

	user, err := s.store.Create(ctx, repository.CreateUserParams{
		Email:        req.Email,
		PasswordHash: string(hash),
		Roles:        roles,
	})
	if errors.Is(err, repository.ErrEmailTaken) {
		return transport.UserResponse{}, apperr.Conflict("email already registered")
	}
	if err != nil {
		return transport.UserResponse{}, apperr.Wrap(apperr.KindInternal, "failed to create user", err)
	}

	return toUserResponse(user), nil
}

func (s *Service) signAccessToken(userID uuid.UUID, roles []string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   userID.String(),
		"roles": roles,
		"type":  tokenTypeAccess,
		"iat":   now.Unix(),
		"exp":   now.Add(ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.GetJWTAccessSecret()))
}

func toUserResponse(user repository.User) transport.UserResponse {
	return transport.UserResponse{
		ID:        user.ID,
		Email:     user.Email,
		Roles:     user.Roles,
		CreatedAt: user.CreatedAt,
	}
}

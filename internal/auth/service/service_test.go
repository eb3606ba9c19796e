package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"homematch_backend/internal/auth/repository"
	"homematch_backend/internal/auth/transport"
	"homematch_backend/platform/apperr"
	"homematch_backend/platform/logger"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "test-secret-test-secret-test-secret"

type fakeUserStore struct {
	users map[string]repository.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[string]repository.User)}
}

func (f *fakeUserStore) addUser(email, password string, roles []string) repository.User {
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	user := repository.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: string(hash),
		Roles:        roles,
		CreatedAt:    time.Now(),
	}
	f.users[email] = user
	return user
}

func (f *fakeUserStore) Create(_ context.Context, params repository.CreateUserParams) (repository.User, error) {
	if _, ok := f.users[params.Email]; ok {
		return repository.User{}, repository.ErrEmailTaken
	}
	user := repository.User{
		ID:           uuid.New(),
		Email:        params.Email,
		PasswordHash: params.PasswordHash,
		Roles:        params.Roles,
		CreatedAt:    time.Now(),
	}
	f.users[params.Email] = user
	return user, nil
}

func (f *fakeUserStore) GetByEmail(_ context.Context, email string) (repository.User, error) {
	user, ok := f.users[email]
	if !ok {
		return repository.User{}, repository.ErrNotFound
	}
	return user, nil
}

type testAuthConfig struct{}

func (testAuthConfig) GetJWTAccessSecret() string       { return testSecret }
func (testAuthConfig) GetAccessTokenTTL() time.Duration { return 15 * time.Minute }

func newTestService(store UserStore) *Service {
	return New(store, testAuthConfig{}, logger.New("development"))
}

func TestLoginIssuesValidToken(t *testing.T) {
	store := newFakeUserStore()
	user := store.addUser("agent@example.com", "correct horse battery", []string{"agent", "admin"})

	svc := newTestService(store)
	resp, err := svc.Login(context.Background(), transport.LoginRequest{
		Email:    "agent@example.com",
		Password: "correct horse battery",
	})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	if resp.ExpiresIn != int64((15 * time.Minute).Seconds()) {
		t.Fatalf("expiresIn = %d", resp.ExpiresIn)
	}
	if resp.User.ID != user.ID {
		t.Fatalf("user id = %s, want %s", resp.User.ID, user.ID)
	}

	token, err := jwt.Parse(resp.AccessToken, func(token *jwt.Token) (interface{}, error) {
		return []byte(testSecret), nil
	})
	if err != nil || !token.Valid {
		t.Fatalf("issued token does not verify: %v", err)
	}

	claims := token.Claims.(jwt.MapClaims)
	sub, _ := claims.GetSubject()
	if sub != user.ID.String() {
		t.Fatalf("sub = %q, want user ID", sub)
	}
	if claims["type"] != "access" {
		t.Fatalf("type claim = %v", claims["type"])
	}
	roles, ok := claims["roles"].([]interface{})
	if !ok || len(roles) != 2 {
		t.Fatalf("roles claim = %v", claims["roles"])
	}
}

func TestLoginWrongPassword(t *testing.T) {
	store := newFakeUserStore()
	store.addUser("agent@example.com", "right password!", []string{"agent"})

	svc := newTestService(store)
	_, err := svc.Login(context.Background(), transport.LoginRequest{
		Email:    "agent@example.com",
		Password: "wrong password!",
	})
	if !apperr.Is(err, apperr.KindUnauthorized) {
		t.Fatalf("err = %v, want unauthorized", err)
	}
}

func TestLoginUnknownEmailSameError(t *testing.T) {
	svc := newTestService(newFakeUserStore())
	_, err := svc.Login(context.Background(), transport.LoginRequest{
		Email:    "nobody@example.com",
		Password: "whatever pass",
	})
	if !apperr.Is(err, apperr.KindUnauthorized) {
		t.Fatalf("err = %v, want unauthorized", err)
	}

	var appErr *apperr.Error
	if !errors.As(err, &appErr) || appErr.Message != "invalid credentials" {
		t.Fatalf("message = %v, must not reveal whether the account exists", err)
	}
}

func TestCreateUserDefaultsRole(t *testing.T) {
	store := newFakeUserStore()
	svc := newTestService(store)

	user, err := svc.CreateUser(context.Background(), transport.CreateUserRequest{
		Email:    "new@example.com",
		Password: "long enough pass",
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if len(user.Roles) != 1 || user.Roles[0] != "agent" {
		t.Fatalf("roles = %v, want default agent role", user.Roles)
	}

	stored := store.users["new@example.com"]
	if stored.PasswordHash == "long enough pass" {
		t.Fatalf("password stored in plain text")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("long enough pass")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	store := newFakeUserStore()
	store.addUser("taken@example.com", "some password", []string{"agent"})

	svc := newTestService(store)
	_, err := svc.CreateUser(context.Background(), transport.CreateUserRequest{
		Email:    "taken@example.com",
		Password: "another password",
	})
	if !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("err = %v, want conflict", err)
	}
}

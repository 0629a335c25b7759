package api

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/phrazzld/triage-api/internal/domain"
	"github.com/phrazzld/triage-api/internal/service/auth"
	"github.com/phrazzld/triage-api/internal/store"
)

// memOperatorStore is an in-memory OperatorStore for handler tests. It
// hashes like the real store so login verification works end to end.
type memOperatorStore struct {
	byEmail map[string]*domain.Operator
}

func newMemOperatorStore() *memOperatorStore {
	return &memOperatorStore{byEmail: make(map[string]*domain.Operator)}
}

func (s *memOperatorStore) Create(_ context.Context, operator *domain.Operator) error {
	if _, exists := s.byEmail[operator.Email]; exists {
		return store.ErrEmailExists
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(operator.Password), bcrypt.MinCost)
	if err != nil {
		return err
	}
	operator.HashedPassword = string(hash)
	operator.Password = ""
	s.byEmail[operator.Email] = operator
	return nil
}

func (s *memOperatorStore) GetByID(_ context.Context, id uuid.UUID) (*domain.Operator, error) {
	for _, op := range s.byEmail {
		if op.ID == id {
			return op, nil
		}
	}
	return nil, store.ErrOperatorNotFound
}

func (s *memOperatorStore) GetByEmail(_ context.Context, email string) (*domain.Operator, error) {
	op, ok := s.byEmail[email]
	if !ok {
		return nil, store.ErrOperatorNotFound
	}
	return op, nil
}

func (s *memOperatorStore) WithTx(_ *sql.Tx) store.OperatorStore {
	return s
}

// stubJWTService issues predictable tokens and accepts only the ones it
// issued.
type stubJWTService struct {
	refreshClaims *auth.Claims
	refreshErr    error
}

func (s *stubJWTService) GenerateToken(_ context.Context, operatorID uuid.UUID) (string, error) {
	return "access-" + operatorID.String(), nil
}

func (s *stubJWTService) ValidateToken(_ context.Context, _ string) (*auth.Claims, error) {
	return nil, auth.ErrInvalidToken
}

func (s *stubJWTService) GenerateRefreshToken(_ context.Context, operatorID uuid.UUID) (string, error) {
	return "refresh-" + operatorID.String(), nil
}

func (s *stubJWTService) ValidateRefreshToken(_ context.Context, _ string) (*auth.Claims, error) {
	if s.refreshErr != nil {
		return nil, s.refreshErr
	}
	return s.refreshClaims, nil
}

func newAuthHandlerFixture() (*AuthHandler, *memOperatorStore, *stubJWTService) {
	operators := newMemOperatorStore()
	jwt := &stubJWTService{}
	return NewAuthHandler(operators, jwt, auth.NewBcryptVerifier()), operators, jwt
}

func postJSON(t *testing.T, handler http.HandlerFunc, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(body))
	req := httptest.NewRequest(http.MethodPost, target, &buf)
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func TestRegisterCreatesOperatorAndIssuesTokens(t *testing.T) {
	t.Parallel()

	h, operators, _ := newAuthHandlerFixture()

	rec := postJSON(t, h.Register, "/api/auth/register", RegisterRequest{
		Email:    "op@example.com",
		Password: "a-long-enough-password",
	})

	require.Equal(t, http.StatusCreated, rec.Code)

	var resp AuthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEqual(t, uuid.Nil, resp.UserID)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)

	stored, err := operators.GetByEmail(context.Background(), "op@example.com")
	require.NoError(t, err)
	assert.Empty(t, stored.Password, "plaintext must not survive registration")
	assert.NotEmpty(t, stored.HashedPassword)
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	t.Parallel()

	h, _, _ := newAuthHandlerFixture()
	body := RegisterRequest{Email: "op@example.com", Password: "a-long-enough-password"}

	rec := postJSON(t, h.Register, "/api/auth/register", body)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = postJSON(t, h.Register, "/api/auth/register", body)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestRegisterValidatesPayload(t *testing.T) {
	t.Parallel()

	h, _, _ := newAuthHandlerFixture()

	tests := []struct {
		name string
		req  RegisterRequest
	}{
		{"bad email", RegisterRequest{Email: "not-an-email", Password: "a-long-enough-password"}},
		{"short password", RegisterRequest{Email: "op@example.com", Password: "short"}},
		{"empty payload", RegisterRequest{}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := postJSON(t, h.Register, "/api/auth/register", tc.req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestLoginSucceedsWithValidCredentials(t *testing.T) {
	t.Parallel()

	h, _, _ := newAuthHandlerFixture()
	rec := postJSON(t, h.Register, "/api/auth/register", RegisterRequest{
		Email:    "op@example.com",
		Password: "a-long-enough-password",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = postJSON(t, h.Login, "/api/auth/login", LoginRequest{
		Email:    "op@example.com",
		Password: "a-long-enough-password",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp AuthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.AccessToken)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	t.Parallel()

	h, _, _ := newAuthHandlerFixture()
	rec := postJSON(t, h.Register, "/api/auth/register", RegisterRequest{
		Email:    "op@example.com",
		Password: "a-long-enough-password",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = postJSON(t, h.Login, "/api/auth/login", LoginRequest{
		Email:    "op@example.com",
		Password: "the-wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = postJSON(t, h.Login, "/api/auth/login", LoginRequest{
		Email:    "unknown@example.com",
		Password: "a-long-enough-password",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code, "unknown email must look identical to a bad password")
}

func TestRefreshTokenIssuesNewPair(t *testing.T) {
	t.Parallel()

	h, _, jwt := newAuthHandlerFixture()
	operatorID := uuid.New()
	jwt.refreshClaims = &auth.Claims{OperatorID: operatorID, TokenType: "refresh"}

	rec := postJSON(t, h.RefreshToken, "/api/auth/refresh", RefreshTokenRequest{
		RefreshToken: "refresh-" + operatorID.String(),
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp RefreshTokenResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "access-"+operatorID.String(), resp.AccessToken)
	assert.Equal(t, "refresh-"+operatorID.String(), resp.RefreshToken)
}

func TestRefreshTokenRejectsInvalidToken(t *testing.T) {
	t.Parallel()

	h, _, jwt := newAuthHandlerFixture()
	jwt.refreshErr = auth.ErrInvalidRefreshToken

	rec := postJSON(t, h.RefreshToken, "/api/auth/refresh", RefreshTokenRequest{
		RefreshToken: "garbage",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
